// Package adapters bridges web frameworks to the mvc dispatcher. Every
// adapter turns a matched framework route into a mvc.WebRequest, runs the
// dispatch loop and writes the mvc.Response back.
package adapters

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	axonerrors "github.com/toyz/axonmvc/internal/errors"
	"github.com/toyz/axonmvc/pkg/mvc"
	"github.com/toyz/axonmvc/pkg/routing"
)

// WebServer defines the contract for web server implementations
type WebServer interface {
	// Route registration; routes the framework rejects return an error
	RegisterRoute(route routing.Route) error

	// Global middleware, applied around the dispatch loop
	Use(middleware Middleware)

	// Server lifecycle
	Start(addr string) error
	Stop(ctx context.Context) error

	// Server information
	Name() string
}

// Handler processes one web request
type Handler func(ctx context.Context, req *mvc.WebRequest, resp *mvc.WebResponse) error

// Middleware wraps a Handler
type Middleware func(next Handler) Handler

// Option configures an adapter
type Option func(*bridge)

// WithLogger sets the logger used for request errors
func WithLogger(logger *slog.Logger) Option {
	return func(b *bridge) {
		b.logger = logger
	}
}

// WithMiddleware adds middlewares, outermost first
func WithMiddleware(middlewares ...Middleware) Option {
	return func(b *bridge) {
		b.middlewares = append(b.middlewares, middlewares...)
	}
}

// Adapter names accepted by New
const (
	EchoName  = "echo"
	GinName   = "gin"
	FiberName = "fiber"
)

// Names returns the adapter names accepted by New
func Names() []string {
	return []string{EchoName, FiberName, GinName}
}

// New creates the adapter called name with its framework defaults
func New(name string, dispatcher *mvc.Dispatcher, opts ...Option) (WebServer, error) {
	switch strings.ToLower(name) {
	case EchoName:
		return NewDefaultEchoAdapter(dispatcher, opts...), nil
	case GinName:
		return NewDefaultGinAdapter(dispatcher, opts...), nil
	case FiberName:
		return NewDefaultFiberAdapter(dispatcher, opts...), nil
	default:
		return nil, axonerrors.WrapConfigurationError("adapter", "select",
			axonerrors.Newf(axonerrors.ConfigurationErrorCode, "unknown adapter %q, expected one of %s",
				name, strings.Join(Names(), ", ")))
	}
}

// bridge holds the framework independent part of every adapter
type bridge struct {
	dispatcher  *mvc.Dispatcher
	logger      *slog.Logger
	middlewares []Middleware
}

func newBridge(dispatcher *mvc.Dispatcher, opts []Option) *bridge {
	b := &bridge{
		dispatcher: dispatcher,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func (b *bridge) use(middleware Middleware) {
	b.middlewares = append(b.middlewares, middleware)
}

// incoming is the framework neutral view of a matched request
type incoming struct {
	method     string
	uri        *url.URL
	header     http.Header
	remoteAddr string
	values     url.Values
	params     map[string]string
}

// serve builds the request, applies route and runs the middleware chain
// around the dispatcher. The returned response is complete unless err is set.
func (b *bridge) serve(ctx context.Context, route routing.Route, in incoming) (*mvc.WebResponse, error) {
	req := mvc.NewWebRequest(in.method, in.uri)
	req.SetHeaders(in.header)
	req.SetRemoteAddr(in.remoteAddr)
	for name, values := range in.values {
		switch len(values) {
		case 0:
		case 1:
			req.SetArgument(name, values[0])
		default:
			req.SetArgument(name, append([]string(nil), values...))
		}
	}

	if err := route.Apply(req, in.params); err != nil {
		return nil, err
	}

	handler := Handler(func(ctx context.Context, req *mvc.WebRequest, resp *mvc.WebResponse) error {
		return b.dispatcher.Dispatch(ctx, req, resp)
	})
	for i := len(b.middlewares) - 1; i >= 0; i-- {
		handler = b.middlewares[i](handler)
	}

	resp := mvc.NewResponse()
	if err := handler(ctx, req, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// errorBody is the JSON payload of failed requests
type errorBody struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

// failure logs err and returns the status and body sent to the client
func (b *bridge) failure(route routing.Route, err error) (int, errorBody) {
	status := StatusForError(err)
	if status >= http.StatusInternalServerError {
		b.logger.Error("request failed", "route", route.Name, "status", status, "error", err)
		return status, errorBody{Error: http.StatusText(status)}
	}
	b.logger.Debug("request rejected", "route", route.Name, "status", status, "error", err)

	var httpErr *mvc.HttpError
	if errors.As(err, &httpErr) {
		return status, errorBody{Error: httpErr.Message, Details: httpErr.Details}
	}
	return status, errorBody{Error: err.Error()}
}

// StatusForError maps dispatch errors to HTTP status codes
func StatusForError(err error) int {
	var (
		httpErr        *mvc.HttpError
		unsupported    *mvc.UnsupportedRequestTypeError
		noController   *mvc.NoSuchControllerError
		noAction       *mvc.NoSuchActionError
		invalidArgs    *mvc.InvalidArgumentsError
		parameterError *routing.ParameterError
	)

	switch {
	case errors.As(err, &httpErr):
		return httpErr.StatusCode
	case errors.As(err, &unsupported):
		return http.StatusUnsupportedMediaType
	case errors.As(err, &noController), errors.As(err, &noAction), errors.As(err, &parameterError):
		return http.StatusNotFound
	case errors.As(err, &invalidArgs):
		return http.StatusBadRequest
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// contentType returns the response's Content-Type or the HTML default
func contentType(resp mvc.Response) string {
	if ct := resp.Header("Content-Type"); ct != "" {
		return ct
	}
	return "text/html; charset=utf-8"
}

// formValues parses query and body values of r
func formValues(r *http.Request) (url.Values, error) {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			return nil, err
		}
		return r.Form, nil
	}
	if err := r.ParseForm(); err != nil {
		return nil, err
	}
	return r.Form, nil
}

// routeParams collects the values of the pattern variables through param
// recoverRegistration turns a framework panic raised while registering
// route into a routing error stored in err
func recoverRegistration(route routing.Route, path string, err *error) {
	r := recover()
	if r == nil {
		return
	}
	*err = axonerrors.Newf(axonerrors.RoutingErrorCode, "route %q: cannot register %s %s: %v",
		route.Name, route.Method, path, r).
		WithContext("route", route.Name).
		WithContext("path", path)
}

func routeParams(route routing.Route, param func(v routing.Variable) string) map[string]string {
	params := make(map[string]string)
	for _, v := range route.Pattern.Variables() {
		value := param(v)
		if unescaped, err := url.PathUnescape(value); err == nil {
			value = unescaped
		}
		params[v.Name] = value
	}
	return params
}
