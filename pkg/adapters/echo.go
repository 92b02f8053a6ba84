package adapters

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/toyz/axonmvc/pkg/mvc"
	"github.com/toyz/axonmvc/pkg/routing"
)

// EchoAdapter implements WebServer for Echo v4
type EchoAdapter struct {
	engine *echo.Echo
	bridge *bridge
}

// NewEchoAdapter creates a new Echo adapter
func NewEchoAdapter(e *echo.Echo, dispatcher *mvc.Dispatcher, opts ...Option) *EchoAdapter {
	return &EchoAdapter{engine: e, bridge: newBridge(dispatcher, opts)}
}

// NewDefaultEchoAdapter creates a new Echo adapter with a quiet Echo
// instance that recovers from panics
func NewDefaultEchoAdapter(dispatcher *mvc.Dispatcher, opts ...Option) *EchoAdapter {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())
	return NewEchoAdapter(e, dispatcher, opts...)
}

// RegisterRoute registers a route with the Echo server
func (ea *EchoAdapter) RegisterRoute(route routing.Route) (err error) {
	handler := ea.convertRoute(route)
	path := route.Pattern.EchoPath()
	defer recoverRegistration(route, path, &err)

	if route.MatchesAnyMethod() {
		ea.engine.Any(path, handler)
		return nil
	}
	ea.engine.Add(route.Method, path, handler)
	return nil
}

// Use adds global middleware
func (ea *EchoAdapter) Use(middleware Middleware) {
	ea.bridge.use(middleware)
}

// Start starts the server
func (ea *EchoAdapter) Start(addr string) error {
	if err := ea.engine.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop stops the server
func (ea *EchoAdapter) Stop(ctx context.Context) error {
	return ea.engine.Shutdown(ctx)
}

// Name returns the adapter name
func (ea *EchoAdapter) Name() string {
	return "Echo"
}

// GetEngine returns the underlying Echo instance
func (ea *EchoAdapter) GetEngine() *echo.Echo {
	return ea.engine
}

// convertRoute builds the echo.HandlerFunc serving route
func (ea *EchoAdapter) convertRoute(route routing.Route) echo.HandlerFunc {
	return func(c echo.Context) error {
		r := c.Request()
		values, err := formValues(r)
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
		}

		resp, err := ea.bridge.serve(r.Context(), route, incoming{
			method:     r.Method,
			uri:        r.URL,
			header:     r.Header,
			remoteAddr: c.RealIP(),
			values:     values,
			params: routeParams(route, func(v routing.Variable) string {
				if v.Wildcard {
					return c.Param("*")
				}
				return c.Param(v.Name)
			}),
		})
		if err != nil {
			status, body := ea.bridge.failure(route, err)
			return c.JSON(status, body)
		}

		header := c.Response().Header()
		for name, values := range resp.Headers() {
			header[name] = values
		}
		return c.Blob(resp.StatusCode(), contentType(resp), []byte(resp.Content()))
	}
}
