// Package mvc implements request handling controllers: request variants,
// responses, controller arguments, the dispatch loop and the outcome
// values actions hand back to it.
package mvc

import (
	"context"
	"fmt"
	"html"
	"log/slog"
	"net/http"
	"strings"

	axonerrors "github.com/toyz/axonmvc/internal/errors"
	"github.com/toyz/axonmvc/pkg/property"
)

// Controller processes requests routed to it
type Controller interface {
	CanProcessRequest(req Request) bool
	ProcessRequest(ctx context.Context, req Request, resp Response) (ActionOutcome, error)
}

// PropertyMapper maps raw request arguments onto a controller's arguments
type PropertyMapper interface {
	SetTarget(target property.Target)
	RegisterFilter(filter property.Filter, propertyName string)
	RegisterPropertyEditor(editor property.PropertyEditor, propertyName, format string)
	RegisterValidator(validator property.Validator)
	SetAllowedProperties(names []string)
	Map(source map[string]any) error
	MappingResults() *property.MappingResults
}

// RequestHandlingController is the base for controllers. It checks the
// request variant, marks the request dispatched and maps the request
// arguments onto the declared controller arguments. It holds one request at
// a time and must not be shared between concurrent requests.
type RequestHandlingController struct {
	name                   string
	request                Request
	response               Response
	arguments              *Arguments
	propertyMapper         PropertyMapper
	validatorFactory       ValidatorFactory
	supportedRequestTypes  []RequestType
	argumentsInitializer   func(args *Arguments) error
	argumentMappingResults *property.MappingResults
	logger                 *slog.Logger
}

// Option configures a RequestHandlingController
type Option func(*RequestHandlingController)

// WithName sets the controller name used in errors and logs
func WithName(name string) Option {
	return func(c *RequestHandlingController) {
		c.name = name
	}
}

func WithPropertyMapper(mapper PropertyMapper) Option {
	return func(c *RequestHandlingController) {
		c.propertyMapper = mapper
	}
}

func WithArguments(args *Arguments) Option {
	return func(c *RequestHandlingController) {
		c.arguments = args
	}
}

func WithValidatorFactory(factory ValidatorFactory) Option {
	return func(c *RequestHandlingController) {
		c.validatorFactory = factory
	}
}

// WithSupportedRequestTypes replaces the default set of supported request
// tags, which only holds WebRequestType.
func WithSupportedRequestTypes(types ...RequestType) Option {
	return func(c *RequestHandlingController) {
		c.supportedRequestTypes = append([]RequestType(nil), types...)
	}
}

// WithArgumentsInitializer sets the hook that declares the controller's
// arguments before mapping.
func WithArgumentsInitializer(fn func(args *Arguments) error) Option {
	return func(c *RequestHandlingController) {
		c.argumentsInitializer = fn
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *RequestHandlingController) {
		c.logger = logger
	}
}

// NewRequestHandlingController creates a controller supporting web requests
func NewRequestHandlingController(opts ...Option) *RequestHandlingController {
	c := &RequestHandlingController{
		name:                  "RequestHandlingController",
		arguments:             NewArguments(),
		validatorFactory:      NewArgumentsValidator,
		supportedRequestTypes: []RequestType{WebRequestType},
		logger:                slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.propertyMapper == nil {
		c.propertyMapper = property.NewMapper(property.WithLogger(c.logger))
	}
	return c
}

func (c *RequestHandlingController) Name() string {
	return c.name
}

// SupportedRequestTypes returns the tags this controller accepts
func (c *RequestHandlingController) SupportedRequestTypes() []RequestType {
	return append([]RequestType(nil), c.supportedRequestTypes...)
}

// CanProcessRequest reports whether req satisfies any supported tag
func (c *RequestHandlingController) CanProcessRequest(req Request) bool {
	if req == nil {
		return false
	}
	for _, tag := range c.supportedRequestTypes {
		if req.Is(tag) {
			return true
		}
	}
	return false
}

// ProcessRequest checks the request variant, stores req and resp, marks
// the request dispatched and maps its arguments. Nothing is stored when the
// request type is not supported.
func (c *RequestHandlingController) ProcessRequest(ctx context.Context, req Request, resp Response) (ActionOutcome, error) {
	if !c.CanProcessRequest(req) {
		return ActionOutcome{}, c.unsupportedProcessRequest(req)
	}
	if err := ctx.Err(); err != nil {
		return ActionOutcome{}, err
	}

	c.request = req
	c.request.SetDispatched(true)
	c.response = resp

	if err := c.InitializeArguments(); err != nil {
		return ActionOutcome{}, err
	}
	if err := c.MapRequestArgumentsToLocalArguments(); err != nil {
		return ActionOutcome{}, err
	}
	return Continue(), nil
}

func (c *RequestHandlingController) unsupportedProcessRequest(req Request) error {
	requestType := RequestType("<nil>")
	if req != nil {
		requestType = req.Type()
	}
	supported := make([]string, len(c.supportedRequestTypes))
	for i, tag := range c.supportedRequestTypes {
		supported[i] = string(tag)
	}
	message := fmt.Sprintf("%s does not support requests of type %q. Supported types are: %s",
		c.name, requestType, strings.Join(supported, " "))
	return newUnsupportedRequestTypeError(RefUnsupportedProcessRequest, message, c.name, requestType, c.supportedRequestTypes)
}

// ForwardOption narrows the target of a forward
type ForwardOption func(*ActionOutcome)

// ToController forwards to another controller
func ToController(name string) ForwardOption {
	return func(o *ActionOutcome) {
		o.Controller = name
	}
}

// ToPackage forwards to a controller of another package
func ToPackage(key string) ForwardOption {
	return func(o *ActionOutcome) {
		o.Package = key
	}
}

// WithForwardArguments replaces the request arguments for the forwarded action
func WithForwardArguments(arguments map[string]any) ForwardOption {
	return func(o *ActionOutcome) {
		o.Arguments = arguments
	}
}

// Forward rewrites the current request to target actionName and marks it
// as not dispatched. Only the targets given as options change. The
// returned outcome must be handed back to the dispatch loop.
func (c *RequestHandlingController) Forward(actionName string, opts ...ForwardOption) (ActionOutcome, error) {
	if c.request == nil {
		return ActionOutcome{}, ErrNoActiveRequest
	}

	target := ActionOutcome{Kind: OutcomeForward}
	for _, opt := range opts {
		opt(&target)
	}

	c.request.SetDispatched(false)
	c.request.SetControllerActionName(actionName)
	if target.Controller != "" {
		c.request.SetControllerName(target.Controller)
	}
	if target.Package != "" {
		c.request.SetControllerPackageKey(target.Package)
	}
	if target.Arguments != nil {
		c.request.SetArguments(target.Arguments)
	}

	target.Action = c.request.ControllerActionName()
	target.Controller = c.request.ControllerName()
	target.Package = c.request.ControllerPackageKey()
	c.logger.Debug("forwarding request",
		"controller", c.name,
		"to_package", target.Package,
		"to_controller", target.Controller,
		"to_action", target.Action)
	return target, nil
}

type redirectOptions struct {
	delay      int
	statusCode int
}

// RedirectOption configures Redirect
type RedirectOption func(*redirectOptions)

// WithDelay sets the refresh delay in seconds
func WithDelay(seconds int) RedirectOption {
	return func(o *redirectOptions) {
		o.delay = seconds
	}
}

// WithRedirectStatus sets the redirect status code, "303 See Other" by default
func WithRedirectStatus(code int) RedirectOption {
	return func(o *redirectOptions) {
		o.statusCode = code
	}
}

// Redirect finalizes the response as a redirect to uri. It only supports
// web requests.
func (c *RequestHandlingController) Redirect(uri string, opts ...RedirectOption) (ActionOutcome, error) {
	if c.request == nil {
		return ActionOutcome{}, ErrNoActiveRequest
	}
	if !c.request.Is(WebRequestType) {
		return ActionOutcome{}, newUnsupportedRequestTypeError(RefUnsupportedRedirect,
			"Redirect only supports web requests", c.name, c.request.Type(), []RequestType{WebRequestType})
	}

	o := redirectOptions{statusCode: http.StatusSeeOther}
	for _, opt := range opts {
		opt(&o)
	}

	escapedURI := html.EscapeString(uri)
	c.response.SetContent(fmt.Sprintf(`<html><head><meta http-equiv="refresh" content="%d;url=%s"/></head></html>`, o.delay, escapedURI))
	c.response.SetStatus(o.statusCode)
	c.response.SetHeader("Location", uri)

	c.logger.Debug("redirecting request", "controller", c.name, "uri", uri, "status", o.statusCode)
	return Terminate(), nil
}

type statusOptions struct {
	message    string
	content    string
	hasContent bool
}

// StatusOption configures ThrowStatus
type StatusOption func(*statusOptions)

// WithStatusMessage sets a custom status message
func WithStatusMessage(message string) StatusOption {
	return func(o *statusOptions) {
		o.message = message
	}
}

// WithContent sets the body explaining the status
func WithContent(content string) StatusOption {
	return func(o *statusOptions) {
		o.content = content
		o.hasContent = true
	}
}

// ThrowStatus finalizes the response with the given status. Without
// explicit content the status line becomes the body. It only supports web
// requests.
func (c *RequestHandlingController) ThrowStatus(code int, opts ...StatusOption) (ActionOutcome, error) {
	if c.request == nil {
		return ActionOutcome{}, ErrNoActiveRequest
	}
	if !c.request.Is(WebRequestType) {
		return ActionOutcome{}, newUnsupportedRequestTypeError(RefUnsupportedThrowStatus,
			"ThrowStatus only supports web requests", c.name, c.request.Type(), []RequestType{WebRequestType})
	}

	var o statusOptions
	for _, opt := range opts {
		opt(&o)
	}

	c.response.SetStatus(code, o.message)
	content := o.content
	if !o.hasContent {
		content = c.response.Status()
	}
	c.response.SetContent(content)

	c.logger.Debug("sending status", "controller", c.name, "status", c.response.Status())
	return Terminate(), nil
}

// Arguments returns the arguments declared for this controller
func (c *RequestHandlingController) Arguments() *Arguments {
	return c.arguments
}

// Argument returns the value of the named argument, nil when it is unknown
func (c *RequestHandlingController) Argument(name string) any {
	v, _ := c.arguments.Property(name)
	return v
}

// Request returns the request being processed, nil before ProcessRequest
func (c *RequestHandlingController) Request() Request {
	return c.request
}

// Response returns the response being written, nil before ProcessRequest
func (c *RequestHandlingController) Response() Response {
	return c.response
}

// ArgumentMappingResults returns the results of the last argument mapping
func (c *RequestHandlingController) ArgumentMappingResults() *property.MappingResults {
	return c.argumentMappingResults
}

// InitializeArguments declares the controller's arguments. It runs the
// initializer set with WithArgumentsInitializer and does nothing otherwise.
func (c *RequestHandlingController) InitializeArguments() error {
	if c.argumentsInitializer == nil {
		return nil
	}
	return c.argumentsInitializer(c.arguments)
}

// MapRequestArgumentsToLocalArguments maps the raw request arguments onto
// the declared arguments. Arguments named in mapping errors become invalid
// and carry the error; warnings are attached without changing validity.
func (c *RequestHandlingController) MapRequestArgumentsToLocalArguments() error {
	if c.request == nil {
		return ErrNoActiveRequest
	}

	c.propertyMapper.SetTarget(c.arguments)
	for _, arg := range c.arguments.All() {
		if filter := arg.Filter(); filter != nil {
			c.propertyMapper.RegisterFilter(filter, arg.Name())
		}
		if editor := arg.PropertyEditor(); editor != nil {
			c.propertyMapper.RegisterPropertyEditor(editor, arg.Name(), arg.PropertyEditorInputFormat())
		}
	}

	c.propertyMapper.RegisterValidator(c.validatorFactory(c.arguments))
	c.propertyMapper.SetAllowedProperties(append(c.arguments.Names(), c.arguments.ShortNames()...))
	if err := c.propertyMapper.Map(c.request.Arguments()); err != nil {
		return axonerrors.Wrapf(axonerrors.MappingErrorCode, err, "%s could not map request arguments", c.name)
	}

	c.argumentMappingResults = c.propertyMapper.MappingResults()
	if c.argumentMappingResults == nil {
		return nil
	}

	for _, perr := range c.argumentMappingResults.Errors() {
		if arg, ok := c.arguments.Get(perr.Property); ok {
			arg.SetValidity(false)
			arg.AddError(perr.Err)
		}
	}
	for _, warning := range c.argumentMappingResults.Warnings() {
		if arg, ok := c.arguments.Get(warning.Property); ok {
			arg.AddWarning(warning.Err)
		}
	}

	if c.argumentMappingResults.HasErrors() {
		c.logger.Debug("argument mapping reported errors",
			"controller", c.name,
			"errors", len(c.argumentMappingResults.Errors()))
	}
	return nil
}
