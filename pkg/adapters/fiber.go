package adapters

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/toyz/axonmvc/pkg/mvc"
	"github.com/toyz/axonmvc/pkg/routing"
)

// FiberAdapter wraps a Fiber app to implement WebServer
type FiberAdapter struct {
	app    *fiber.App
	bridge *bridge

	mu       sync.Mutex
	listener net.Listener
	stopped  bool
}

// NewFiberAdapter creates a new Fiber adapter instance
func NewFiberAdapter(dispatcher *mvc.Dispatcher, opts ...Option) *FiberAdapter {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			var e *fiber.Error
			if errors.As(err, &e) {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{"error": err.Error()})
		},
	})

	return &FiberAdapter{app: app, bridge: newBridge(dispatcher, opts)}
}

// NewDefaultFiberAdapter creates a new Fiber adapter that recovers from panics
func NewDefaultFiberAdapter(dispatcher *mvc.Dispatcher, opts ...Option) *FiberAdapter {
	adapter := NewFiberAdapter(dispatcher, opts...)
	adapter.app.Use(recover.New())
	return adapter
}

// RegisterRoute registers a route with the Fiber app
func (fa *FiberAdapter) RegisterRoute(route routing.Route) (err error) {
	handler := fa.convertRoute(route)
	path := route.Pattern.FiberPath()
	defer recoverRegistration(route, path, &err)

	if route.MatchesAnyMethod() {
		fa.app.All(path, handler)
		return nil
	}
	fa.app.Add(route.Method, path, handler)
	return nil
}

// Use adds global middleware
func (fa *FiberAdapter) Use(middleware Middleware) {
	fa.bridge.use(middleware)
}

// Start serves the app on addr until Stop is called. It returns at once
// when Stop already ran.
func (fa *FiberAdapter) Start(addr string) error {
	fa.mu.Lock()
	if fa.stopped {
		fa.mu.Unlock()
		return nil
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		fa.mu.Unlock()
		return err
	}
	fa.listener = ln
	fa.mu.Unlock()

	err = fa.app.Listener(ln)

	fa.mu.Lock()
	defer fa.mu.Unlock()
	if fa.stopped {
		return nil
	}
	return err
}

// Stop gracefully shuts down the server started by Start. Start calls
// that follow Stop return immediately.
func (fa *FiberAdapter) Stop(ctx context.Context) error {
	fa.mu.Lock()
	fa.stopped = true
	ln := fa.listener
	fa.mu.Unlock()

	if ln == nil {
		return nil
	}
	err := fa.app.ShutdownWithContext(ctx)
	// the listener is still open when Stop wins the race against Listener
	_ = ln.Close()
	return err
}

// Name returns the adapter name
func (fa *FiberAdapter) Name() string {
	return "Fiber"
}

// GetApp returns the underlying Fiber app
func (fa *FiberAdapter) GetApp() *fiber.App {
	return fa.app
}

// convertRoute builds the fiber.Handler serving route. Fiber reuses its
// buffers after the handler returns, so every value is copied.
func (fa *FiberAdapter) convertRoute(route routing.Route) fiber.Handler {
	return func(c *fiber.Ctx) error {
		uri, err := url.ParseRequestURI(strings.Clone(c.OriginalURL()))
		if err != nil {
			return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}
		values, err := fiberValues(c)
		if err != nil {
			return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}

		header := make(http.Header)
		for name, vals := range c.GetReqHeaders() {
			for _, v := range vals {
				header.Add(name, strings.Clone(v))
			}
		}

		resp, err := fa.bridge.serve(c.UserContext(), route, incoming{
			method:     strings.Clone(c.Method()),
			uri:        uri,
			header:     header,
			remoteAddr: strings.Clone(c.IP()),
			values:     values,
			params: routeParams(route, func(v routing.Variable) string {
				if v.Wildcard {
					return strings.Clone(c.Params("*"))
				}
				return strings.Clone(c.Params(v.Name))
			}),
		})
		if err != nil {
			status, body := fa.bridge.failure(route, err)
			return c.Status(status).JSON(body)
		}

		for name, vals := range resp.Headers() {
			for _, v := range vals {
				c.Append(name, v)
			}
		}
		c.Set(fiber.HeaderContentType, contentType(resp))
		return c.Status(resp.StatusCode()).SendString(resp.Content())
	}
}

// fiberValues collects query and body values of the request
func fiberValues(c *fiber.Ctx) (url.Values, error) {
	values := make(url.Values)
	c.Request().URI().QueryArgs().VisitAll(func(key, value []byte) {
		values.Add(string(key), string(value))
	})

	if strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEMultipartForm) {
		form, err := c.MultipartForm()
		if err != nil {
			return nil, err
		}
		for name, vals := range form.Value {
			for _, v := range vals {
				values.Add(name, v)
			}
		}
		return values, nil
	}

	c.Request().PostArgs().VisitAll(func(key, value []byte) {
		values.Add(string(key), string(value))
	})
	return values, nil
}
