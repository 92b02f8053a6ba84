package adapters

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toyz/axonmvc/pkg/mvc"
	"github.com/toyz/axonmvc/pkg/routing"
)

// doFunc executes one request against the adapter under test
type doFunc func(t *testing.T, req *http.Request) *http.Response

// adapterFactory creates the adapter under test and its request executor
type adapterFactory func(dispatcher *mvc.Dispatcher, opts ...Option) (WebServer, doFunc)

func newGreetingController() mvc.Controller {
	return mvc.NewActionController("Greeting").
		Handle("index", func(_ context.Context, c *mvc.ActionController) (mvc.ActionOutcome, error) {
			c.Response().SetContent(fmt.Sprintf("%s, %s!", c.Argument("greeting"), c.Argument("name")))
			return mvc.Continue(), nil
		}, func(args *mvc.Arguments) error {
			if _, err := args.New("name", "string"); err != nil {
				return err
			}
			greeting, err := args.New("greeting", "string")
			if err != nil {
				return err
			}
			greeting.SetDefaultValue("Hello")
			return nil
		}).
		Handle("show", func(_ context.Context, c *mvc.ActionController) (mvc.ActionOutcome, error) {
			c.Response().SetContent(fmt.Sprintf("item %d", c.Argument("id")))
			return mvc.Continue(), nil
		}, func(args *mvc.Arguments) error {
			_, err := args.New("id", "int")
			return err
		}).
		Handle("files", func(_ context.Context, c *mvc.ActionController) (mvc.ActionOutcome, error) {
			c.Response().SetHeader("Content-Type", "text/plain")
			c.Response().SetContent(fmt.Sprint(c.Argument("path")))
			return mvc.Continue(), nil
		}, func(args *mvc.Arguments) error {
			_, err := args.New("path", "string")
			return err
		}).
		Handle("submit", func(_ context.Context, c *mvc.ActionController) (mvc.ActionOutcome, error) {
			c.Response().SetContent("created " + c.Argument("title").(string))
			return mvc.Continue(), nil
		}, func(args *mvc.Arguments) error {
			title, err := args.New("title", "string")
			if err != nil {
				return err
			}
			title.SetRequired(true).SetValidation("min=3")
			return nil
		}).
		Handle("moved", func(_ context.Context, c *mvc.ActionController) (mvc.ActionOutcome, error) {
			return c.Redirect("/greet/moved?x=1&y=2")
		}).
		Handle("conflict", func(context.Context, *mvc.ActionController) (mvc.ActionOutcome, error) {
			return mvc.ActionOutcome{}, mvc.ErrConflict("already exists")
		}).
		Handle("boom", func(context.Context, *mvc.ActionController) (mvc.ActionOutcome, error) {
			return mvc.ActionOutcome{}, errors.New("database password leaked")
		})
}

func greetingRoute(name, method, pattern, action string) routing.Route {
	return routing.MustNewRoute(name, method, pattern, map[string]string{
		routing.PackageDefault:    "Demo",
		routing.ControllerDefault: "Greeting",
		routing.ActionDefault:     action,
	})
}

func testRoutes() routing.Table {
	return routing.Table{
		greetingRoute("greet", "GET", "/greet/{name}", "index"),
		greetingRoute("show", "", "/items/{id:int}", "show"),
		greetingRoute("files", "GET", "/files/{*path}", "files"),
		greetingRoute("submit", "POST", "/submit", "submit"),
		greetingRoute("moved", "GET", "/moved", "moved"),
		greetingRoute("conflict", "GET", "/conflict", "conflict"),
		greetingRoute("boom", "GET", "/boom", "boom"),
		routing.MustNewRoute("missing", "GET", "/missing", map[string]string{
			routing.PackageDefault:    "Demo",
			routing.ControllerDefault: "Nowhere",
		}),
	}
}

func newTestDispatcher(t *testing.T) *mvc.Dispatcher {
	t.Helper()
	registry := mvc.NewInMemoryControllerRegistry()
	require.NoError(t, registry.Register("Demo", "Greeting", newGreetingController))
	return mvc.NewDispatcher(registry)
}

func setupAdapter(t *testing.T, factory adapterFactory, opts ...Option) (WebServer, doFunc) {
	t.Helper()
	server, do := factory(newTestDispatcher(t), opts...)
	for _, route := range testRoutes() {
		require.NoError(t, server.RegisterRoute(route))
	}
	return server, do
}

// assertStartReturns fails unless Start on a stopped server returns promptly
func assertStartReturns(t *testing.T, server WebServer) {
	t.Helper()
	done := make(chan error, 1)
	go func() {
		done <- server.Start("127.0.0.1:0")
	}()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatalf("%s kept serving after Stop", server.Name())
	}
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(body)
}

func readError(t *testing.T, resp *http.Response) string {
	t.Helper()
	var payload map[string]string
	require.NoError(t, json.Unmarshal([]byte(readBody(t, resp)), &payload))
	return payload["error"]
}

// runAdapterSuite checks the behaviour every adapter must share
func runAdapterSuite(t *testing.T, factory adapterFactory) {
	t.Run("default routes address controllers by path", func(t *testing.T) {
		server, do := factory(newTestDispatcher(t))
		for _, route := range routing.DefaultRoutes() {
			require.NoError(t, server.RegisterRoute(route))
		}

		resp := do(t, mustRequest(t, "GET", "/Demo/Greeting/index?name=Ada", nil))
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "Hello, Ada!", readBody(t, resp))

		resp = do(t, mustRequest(t, "GET", "/Greeting/index", nil))
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		resp.Body.Close()
	})

	t.Run("route params and query values reach the action", func(t *testing.T) {
		_, do := setupAdapter(t, factory)
		resp := do(t, mustRequest(t, "GET", "/greet/Ada?greeting=Hi", nil))

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "text/html; charset=utf-8", resp.Header.Get("Content-Type"))
		assert.Equal(t, "Hi, Ada!", readBody(t, resp))
	})

	t.Run("argument defaults apply", func(t *testing.T) {
		_, do := setupAdapter(t, factory)
		resp := do(t, mustRequest(t, "GET", "/greet/Grace", nil))

		assert.Equal(t, "Hello, Grace!", readBody(t, resp))
	})

	t.Run("typed params are converted", func(t *testing.T) {
		_, do := setupAdapter(t, factory)
		resp := do(t, mustRequest(t, "DELETE", "/items/42", nil))

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "item 42", readBody(t, resp))
	})

	t.Run("invalid typed params are not found", func(t *testing.T) {
		_, do := setupAdapter(t, factory)
		resp := do(t, mustRequest(t, "GET", "/items/abc", nil))

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Contains(t, readError(t, resp), "{id:int}")
	})

	t.Run("wildcard captures the rest of the path", func(t *testing.T) {
		_, do := setupAdapter(t, factory)
		resp := do(t, mustRequest(t, "GET", "/files/docs/guide.txt", nil))

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "text/plain", resp.Header.Get("Content-Type"))
		assert.Equal(t, "docs/guide.txt", readBody(t, resp))
	})

	t.Run("form values are mapped", func(t *testing.T) {
		_, do := setupAdapter(t, factory)
		form := url.Values{"title": {"Hello world"}}
		req := mustRequest(t, "POST", "/submit", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		resp := do(t, req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "created Hello world", readBody(t, resp))
	})

	t.Run("invalid arguments yield bad request", func(t *testing.T) {
		_, do := setupAdapter(t, factory)
		form := url.Values{"title": {"Hi"}}
		req := mustRequest(t, "POST", "/submit", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		resp := do(t, req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Contains(t, readBody(t, resp), "title")
	})

	t.Run("invalid arguments are detailed for JSON clients", func(t *testing.T) {
		_, do := setupAdapter(t, factory)
		form := url.Values{"title": {"Hi"}}
		req := mustRequest(t, "POST", "/submit", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req.Header.Set("Accept", "application/json")
		resp := do(t, req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		var payload struct {
			Error   string              `json:"error"`
			Details map[string][]string `json:"details"`
		}
		require.NoError(t, json.Unmarshal([]byte(readBody(t, resp)), &payload))
		assert.Equal(t, "invalid arguments", payload.Error)
		assert.Len(t, payload.Details["title"], 1)
	})

	t.Run("redirects", func(t *testing.T) {
		_, do := setupAdapter(t, factory)
		resp := do(t, mustRequest(t, "GET", "/moved", nil))

		assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
		assert.Equal(t, "/greet/moved?x=1&y=2", resp.Header.Get("Location"))
		assert.Contains(t, readBody(t, resp), `content="0;url=/greet/moved?x=1&amp;y=2"`)
	})

	t.Run("http errors keep their status", func(t *testing.T) {
		_, do := setupAdapter(t, factory)
		resp := do(t, mustRequest(t, "GET", "/conflict", nil))

		assert.Equal(t, http.StatusConflict, resp.StatusCode)
		assert.Equal(t, "already exists", readError(t, resp))
	})

	t.Run("internal errors are hidden", func(t *testing.T) {
		_, do := setupAdapter(t, factory)
		resp := do(t, mustRequest(t, "GET", "/boom", nil))

		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		assert.Equal(t, "Internal Server Error", readError(t, resp))
	})

	t.Run("unknown controllers are not found", func(t *testing.T) {
		_, do := setupAdapter(t, factory)
		resp := do(t, mustRequest(t, "GET", "/missing", nil))

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Contains(t, readError(t, resp), "Nowhere")
	})

	t.Run("middleware wraps dispatch", func(t *testing.T) {
		var order []string
		trace := func(name string) Middleware {
			return func(next Handler) Handler {
				return func(ctx context.Context, req *mvc.WebRequest, resp *mvc.WebResponse) error {
					order = append(order, name)
					return next(ctx, req, resp)
				}
			}
		}

		server, do := setupAdapter(t, factory, WithMiddleware(trace("first")))
		server.Use(trace("second"))
		server.Use(func(next Handler) Handler {
			return func(ctx context.Context, req *mvc.WebRequest, resp *mvc.WebResponse) error {
				req.SetArgument("greeting", "Howdy")
				return next(ctx, req, resp)
			}
		})

		resp := do(t, mustRequest(t, "GET", "/greet/Linus", nil))

		assert.Equal(t, "Howdy, Linus!", readBody(t, resp))
		assert.Equal(t, []string{"first", "second"}, order)
	})
}

func mustRequest(t *testing.T, method, target string, body io.Reader) *http.Request {
	t.Helper()
	req, err := http.NewRequest(method, target, body)
	require.NoError(t, err)
	return req
}

func TestNew(t *testing.T) {
	dispatcher := newTestDispatcher(t)

	tests := []struct {
		name     string
		expected string
	}{
		{name: "echo", expected: "Echo"},
		{name: "Gin", expected: "Gin"},
		{name: "FIBER", expected: "Fiber"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server, err := New(tt.name, dispatcher)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, server.Name())
		})
	}

	_, err := New("chi", dispatcher)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "echo, fiber, gin")
}

func TestStatusForError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{"http error", mvc.ErrForbidden("nope"), http.StatusForbidden},
		{"wrapped http error", fmt.Errorf("action: %w", mvc.ErrNotFound("gone")), http.StatusNotFound},
		{"no such controller", mvc.NewNoSuchControllerError("Demo", "Nowhere"), http.StatusNotFound},
		{"no such action", mvc.NewNoSuchActionError("Greeting", "nope"), http.StatusNotFound},
		{"parameter error", routing.NewParameterError("show", routing.Variable{Name: "id", Type: "int"}, errors.New("invalid syntax")), http.StatusNotFound},
		{"zero parameter error", &routing.ParameterError{Route: "show", Variable: "id"}, http.StatusNotFound},
		{"unsupported request", unsupportedRequestError(t), http.StatusUnsupportedMediaType},
		{"deadline", context.DeadlineExceeded, http.StatusServiceUnavailable},
		{"canceled", fmt.Errorf("dispatch: %w", context.Canceled), http.StatusServiceUnavailable},
		{"infinite loop", mvc.NewInfiniteLoopError(99), http.StatusInternalServerError},
		{"plain", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, StatusForError(tt.err))
		})
	}
}

func unsupportedRequestError(t *testing.T) error {
	t.Helper()
	c := mvc.NewRequestHandlingController()
	_, err := c.ProcessRequest(context.Background(), mvc.NewCLIRequest([]string{"help"}), mvc.NewResponse())
	require.Error(t, err)
	return err
}
