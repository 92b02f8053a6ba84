package routing

import (
	"net/http"
	"strings"

	axonerrors "github.com/toyz/axonmvc/internal/errors"
	"github.com/toyz/axonmvc/pkg/mvc"
)

// Keys of Route.Defaults that fill the internal slots. Every other key is
// a default request argument.
const (
	PackageDefault    = "@" + PackageSlot
	ControllerDefault = "@" + ControllerSlot
	ActionDefault     = "@" + ActionSlot
)

// MethodAny matches every HTTP method
const MethodAny = "ANY"

// Route binds a pattern to a controller target
type Route struct {
	Name     string
	Method   string
	Pattern  *Pattern
	Defaults map[string]string
}

// NewRoute parses pattern and returns a route. An empty method matches
// every method.
func NewRoute(name, method, pattern string, defaults map[string]string) (Route, error) {
	p, err := ParsePattern(pattern)
	if err != nil {
		return Route{}, err
	}

	method = strings.ToUpper(strings.TrimSpace(method))
	if method == "" {
		method = MethodAny
	}
	if !isKnownMethod(method) {
		return Route{}, axonerrors.Newf(axonerrors.RoutingErrorCode, "route %q: unknown method %q", name, method).
			WithContext("route", name)
	}

	copied := make(map[string]string, len(defaults))
	for k, v := range defaults {
		copied[k] = v
	}
	return Route{Name: name, Method: method, Pattern: p, Defaults: copied}, nil
}

// MustNewRoute is like NewRoute but panics on error
func MustNewRoute(name, method, pattern string, defaults map[string]string) Route {
	r, err := NewRoute(name, method, pattern, defaults)
	if err != nil {
		panic(err)
	}
	return r
}

func isKnownMethod(method string) bool {
	switch method {
	case MethodAny, http.MethodGet, http.MethodHead, http.MethodPost, http.MethodPut,
		http.MethodPatch, http.MethodDelete, http.MethodOptions:
		return true
	}
	return false
}

// MatchesAnyMethod reports whether the route accepts every method
func (r Route) MatchesAnyMethod() bool {
	return r.Method == MethodAny || r.Method == ""
}

// ParameterError is returned when a matched path value does not convert to
// the type declared by its variable.
type ParameterError struct {
	*axonerrors.BaseError
	Route    string
	Variable string
}

// NewParameterError reports that the value of variable in route could not
// be converted
func NewParameterError(route string, variable Variable, cause error) *ParameterError {
	return &ParameterError{
		BaseError: axonerrors.Wrapf(axonerrors.RoutingErrorCode, cause,
			"route %q: value of %s is not a valid %s", route, variable.String(), variable.Type),
		Route:    route,
		Variable: variable.Name,
	}
}

// Apply fills req from the matched params. Defaults come first: slot
// defaults always apply, argument defaults only when req does not carry
// the argument yet. Matched params override both.
func (r Route) Apply(req mvc.Request, params map[string]string) error {
	for key, value := range r.Defaults {
		switch key {
		case PackageDefault:
			req.SetControllerPackageKey(value)
		case ControllerDefault:
			req.SetControllerName(value)
		case ActionDefault:
			req.SetControllerActionName(value)
		default:
			if !req.HasArgument(key) {
				req.SetArgument(key, value)
			}
		}
	}

	for _, v := range r.Pattern.Variables() {
		value, ok := params[v.Name]
		if !ok || (value == "" && !v.Wildcard) {
			continue
		}

		if v.Internal {
			switch v.Name {
			case PackageSlot:
				req.SetControllerPackageKey(value)
			case ControllerSlot:
				req.SetControllerName(value)
			case ActionSlot:
				req.SetControllerActionName(value)
			}
			continue
		}

		if v.Type == "" {
			req.SetArgument(v.Name, value)
			continue
		}
		converted, err := mvc.ConvertValue(v.Type, value)
		if err != nil {
			return NewParameterError(r.Name, v, err)
		}
		req.SetArgument(v.Name, converted)
	}
	return nil
}

// Match matches method and path against the route and applies it to req
func (r Route) Match(req mvc.Request, method, path string) (bool, error) {
	if !r.MatchesAnyMethod() && !strings.EqualFold(r.Method, method) {
		return false, nil
	}
	params, ok := r.Pattern.Match(path)
	if !ok {
		return false, nil
	}
	return true, r.Apply(req, params)
}

// Table is an ordered list of routes
type Table []Route

// Resolve applies the first route matching method and path to req
func (t Table) Resolve(req mvc.Request, method, path string) (Route, bool, error) {
	for _, route := range t {
		ok, err := route.Match(req, method, path)
		if err != nil {
			return route, true, err
		}
		if ok {
			return route, true, nil
		}
	}
	return Route{}, false, nil
}

// DefaultRoutes returns the fallback routes addressing controllers by path
func DefaultRoutes() Table {
	return Table{
		MustNewRoute("default", MethodAny, "/", nil),
		MustNewRoute("default-controller", MethodAny, "/{@controller}", nil),
		MustNewRoute("default-action", MethodAny, "/{@controller}/{@action}", nil),
		MustNewRoute("default-package", MethodAny, "/{@package}/{@controller}/{@action}", nil),
	}
}
