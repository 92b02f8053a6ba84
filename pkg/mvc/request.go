package mvc

import (
	"net/http"
	"net/url"
)

// RequestType is a capability tag a request can satisfy
type RequestType string

const (
	// GenericRequestType is satisfied by every request
	GenericRequestType RequestType = "generic"

	// WebRequestType is satisfied by requests that came in over HTTP
	WebRequestType RequestType = "web"

	// CLIRequestType is satisfied by requests built from command line input
	CLIRequestType RequestType = "cli"
)

const (
	DefaultActionName = "index"
	DefaultController = "Standard"
	DefaultPackageKey = "Default"
)

// Request is one inbound call that is routed to a controller action.
// The dispatched flag tells the dispatch loop whether routing is complete.
type Request interface {
	// Type returns the most specific tag of the request
	Type() RequestType
	// Is reports whether the request satisfies tag
	Is(tag RequestType) bool

	IsDispatched() bool
	SetDispatched(dispatched bool)

	ControllerActionName() string
	SetControllerActionName(name string)
	ControllerName() string
	SetControllerName(name string)
	ControllerPackageKey() string
	SetControllerPackageKey(key string)

	// Arguments returns a copy of the raw argument values
	Arguments() map[string]any
	SetArguments(arguments map[string]any)
	SetArgument(name string, value any)
	Argument(name string) (any, bool)
	HasArgument(name string) bool
}

// BaseRequest implements the routing state shared by all request variants
type BaseRequest struct {
	dispatched     bool
	actionName     string
	controllerName string
	packageKey     string
	arguments      map[string]any
}

// NewRequest creates a generic request
func NewRequest() *BaseRequest {
	return &BaseRequest{arguments: make(map[string]any)}
}

// Type returns GenericRequestType
func (r *BaseRequest) Type() RequestType {
	return GenericRequestType
}

// Is reports whether tag is GenericRequestType
func (r *BaseRequest) Is(tag RequestType) bool {
	return tag == GenericRequestType
}

func (r *BaseRequest) IsDispatched() bool {
	return r.dispatched
}

func (r *BaseRequest) SetDispatched(dispatched bool) {
	r.dispatched = dispatched
}

// ControllerActionName returns the target action, "index" when unset
func (r *BaseRequest) ControllerActionName() string {
	if r.actionName == "" {
		return DefaultActionName
	}
	return r.actionName
}

func (r *BaseRequest) SetControllerActionName(name string) {
	r.actionName = name
}

// ControllerName returns the target controller, "Standard" when unset
func (r *BaseRequest) ControllerName() string {
	if r.controllerName == "" {
		return DefaultController
	}
	return r.controllerName
}

func (r *BaseRequest) SetControllerName(name string) {
	r.controllerName = name
}

// ControllerPackageKey returns the target package, "Default" when unset
func (r *BaseRequest) ControllerPackageKey() string {
	if r.packageKey == "" {
		return DefaultPackageKey
	}
	return r.packageKey
}

func (r *BaseRequest) SetControllerPackageKey(key string) {
	r.packageKey = key
}

func (r *BaseRequest) Arguments() map[string]any {
	out := make(map[string]any, len(r.arguments))
	for k, v := range r.arguments {
		out[k] = v
	}
	return out
}

// SetArguments replaces all arguments
func (r *BaseRequest) SetArguments(arguments map[string]any) {
	r.arguments = make(map[string]any, len(arguments))
	for k, v := range arguments {
		r.arguments[k] = v
	}
}

func (r *BaseRequest) SetArgument(name string, value any) {
	if r.arguments == nil {
		r.arguments = make(map[string]any)
	}
	r.arguments[name] = value
}

func (r *BaseRequest) Argument(name string) (any, bool) {
	v, ok := r.arguments[name]
	return v, ok
}

func (r *BaseRequest) HasArgument(name string) bool {
	_, ok := r.arguments[name]
	return ok
}

// WebRequest is a request that arrived over HTTP
type WebRequest struct {
	BaseRequest
	method     string
	uri        *url.URL
	header     http.Header
	remoteAddr string
}

// NewWebRequest creates a web request for method and uri
func NewWebRequest(method string, uri *url.URL) *WebRequest {
	if uri == nil {
		uri = &url.URL{Path: "/"}
	}
	return &WebRequest{
		BaseRequest: BaseRequest{arguments: make(map[string]any)},
		method:      method,
		uri:         uri,
		header:      make(http.Header),
	}
}

// Type returns WebRequestType
func (r *WebRequest) Type() RequestType {
	return WebRequestType
}

// Is reports whether tag is WebRequestType or GenericRequestType
func (r *WebRequest) Is(tag RequestType) bool {
	return tag == WebRequestType || r.BaseRequest.Is(tag)
}

func (r *WebRequest) Method() string {
	return r.method
}

func (r *WebRequest) URI() *url.URL {
	return r.uri
}

func (r *WebRequest) Header(name string) string {
	return r.header.Get(name)
}

func (r *WebRequest) Headers() http.Header {
	return r.header
}

func (r *WebRequest) SetHeaders(header http.Header) {
	r.header = header.Clone()
	if r.header == nil {
		r.header = make(http.Header)
	}
}

func (r *WebRequest) RemoteAddr() string {
	return r.remoteAddr
}

func (r *WebRequest) SetRemoteAddr(addr string) {
	r.remoteAddr = addr
}

// CLIRequest is a request built from command line tokens
type CLIRequest struct {
	BaseRequest
	command []string
}

// NewCLIRequest creates a request for the given command line tokens
func NewCLIRequest(command []string) *CLIRequest {
	return &CLIRequest{
		BaseRequest: BaseRequest{arguments: make(map[string]any)},
		command:     append([]string(nil), command...),
	}
}

// Type returns CLIRequestType
func (r *CLIRequest) Type() RequestType {
	return CLIRequestType
}

// Is reports whether tag is CLIRequestType or GenericRequestType
func (r *CLIRequest) Is(tag RequestType) bool {
	return tag == CLIRequestType || r.BaseRequest.Is(tag)
}

// Command returns the raw command line tokens
func (r *CLIRequest) Command() []string {
	return append([]string(nil), r.command...)
}
