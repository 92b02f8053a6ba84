package adapters

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"

	"github.com/toyz/axonmvc/pkg/mvc"
	"github.com/toyz/axonmvc/pkg/routing"
)

// GinAdapter implements WebServer for the Gin framework
type GinAdapter struct {
	engine *gin.Engine
	bridge *bridge

	mu      sync.Mutex
	server  *http.Server
	stopped bool
}

// NewGinAdapter creates a new Gin adapter
func NewGinAdapter(g *gin.Engine, dispatcher *mvc.Dispatcher, opts ...Option) *GinAdapter {
	return &GinAdapter{engine: g, bridge: newBridge(dispatcher, opts)}
}

// NewDefaultGinAdapter creates a new Gin adapter with a Gin engine that
// recovers from panics
func NewDefaultGinAdapter(dispatcher *mvc.Dispatcher, opts ...Option) *GinAdapter {
	g := gin.New()
	g.Use(gin.Recovery())
	return NewGinAdapter(g, dispatcher, opts...)
}

// RegisterRoute registers a route with the Gin engine
func (ga *GinAdapter) RegisterRoute(route routing.Route) (err error) {
	handler := ga.convertRoute(route)
	path := route.Pattern.GinPath()
	defer recoverRegistration(route, path, &err)

	if route.MatchesAnyMethod() {
		ga.engine.Any(path, handler)
		return nil
	}
	ga.engine.Handle(route.Method, path, handler)
	return nil
}

// Use adds global middleware
func (ga *GinAdapter) Use(middleware Middleware) {
	ga.bridge.use(middleware)
}

// Start serves the engine on addr until Stop is called. It returns at once
// when Stop already ran.
func (ga *GinAdapter) Start(addr string) error {
	ga.mu.Lock()
	if ga.stopped {
		ga.mu.Unlock()
		return nil
	}
	ga.server = &http.Server{Addr: addr, Handler: ga.engine}
	server := ga.server
	ga.mu.Unlock()

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop gracefully shuts down the server started by Start. Start calls
// that follow Stop return immediately.
func (ga *GinAdapter) Stop(ctx context.Context) error {
	ga.mu.Lock()
	ga.stopped = true
	server := ga.server
	ga.mu.Unlock()

	if server == nil {
		return nil
	}
	return server.Shutdown(ctx)
}

// Name returns the adapter name
func (ga *GinAdapter) Name() string {
	return "Gin"
}

// GetEngine returns the underlying Gin engine
func (ga *GinAdapter) GetEngine() *gin.Engine {
	return ga.engine
}

// convertRoute builds the gin.HandlerFunc serving route
func (ga *GinAdapter) convertRoute(route routing.Route) gin.HandlerFunc {
	return func(c *gin.Context) {
		values, err := formValues(c.Request)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		resp, err := ga.bridge.serve(c.Request.Context(), route, incoming{
			method:     c.Request.Method,
			uri:        c.Request.URL,
			header:     c.Request.Header,
			remoteAddr: c.ClientIP(),
			values:     values,
			params: routeParams(route, func(v routing.Variable) string {
				value := c.Param(route.Pattern.GinParam(v.Name))
				if v.Wildcard {
					// catch-all values keep their leading slash in Gin
					return strings.TrimPrefix(value, "/")
				}
				return value
			}),
		})
		if err != nil {
			status, body := ga.bridge.failure(route, err)
			c.JSON(status, body)
			return
		}

		for name, values := range resp.Headers() {
			for _, value := range values {
				c.Writer.Header().Add(name, value)
			}
		}
		c.Data(resp.StatusCode(), contentType(resp), []byte(resp.Content()))
	}
}
