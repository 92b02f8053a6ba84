package mvc

import (
	"context"
	"net/http"
	"sort"
	"strings"
)

// ActionFunc is the body of a controller action. It reads its arguments
// from c and reports how it ended.
type ActionFunc func(ctx context.Context, c *ActionController) (ActionOutcome, error)

// ArgumentsDeclaration declares the arguments of a single action
type ArgumentsDeclaration func(args *Arguments) error

type actionEntry struct {
	name    string
	handler ActionFunc
	declare []ArgumentsDeclaration
}

// ActionController routes a processed request to one of its named actions.
// Action names are matched case-insensitively.
type ActionController struct {
	*RequestHandlingController

	actions      map[string]actionEntry
	errorAction  ActionFunc
	baseInitFunc func(args *Arguments) error
}

// NewActionController creates an action controller called name
func NewActionController(name string, opts ...Option) *ActionController {
	base := NewRequestHandlingController(append([]Option{WithName(name)}, opts...)...)
	c := &ActionController{
		RequestHandlingController: base,
		actions:                   make(map[string]actionEntry),
		baseInitFunc:              base.argumentsInitializer,
	}
	c.errorAction = defaultErrorAction
	return c
}

// Handle registers an action under name. The declarations run before the
// request arguments are mapped.
func (c *ActionController) Handle(name string, handler ActionFunc, declare ...ArgumentsDeclaration) *ActionController {
	c.actions[strings.ToLower(name)] = actionEntry{
		name:    name,
		handler: handler,
		declare: declare,
	}
	return c
}

// SetErrorAction sets the action invoked instead of the requested one when
// argument mapping left invalid arguments behind.
func (c *ActionController) SetErrorAction(handler ActionFunc) *ActionController {
	c.errorAction = handler
	return c
}

// Actions returns the registered action names, sorted
func (c *ActionController) Actions() []string {
	names := make([]string, 0, len(c.actions))
	for _, entry := range c.actions {
		names = append(names, entry.name)
	}
	sort.Strings(names)
	return names
}

// HasAction reports whether an action called name is registered
func (c *ActionController) HasAction(name string) bool {
	_, ok := c.actions[strings.ToLower(name)]
	return ok
}

// ProcessRequest resolves the requested action, maps its arguments and
// invokes it.
func (c *ActionController) ProcessRequest(ctx context.Context, req Request, resp Response) (ActionOutcome, error) {
	if !c.CanProcessRequest(req) {
		return c.RequestHandlingController.ProcessRequest(ctx, req, resp)
	}

	actionName := req.ControllerActionName()
	entry, ok := c.actions[strings.ToLower(actionName)]
	if !ok {
		return ActionOutcome{}, NewNoSuchActionError(c.Name(), actionName)
	}

	c.argumentsInitializer = func(args *Arguments) error {
		if c.baseInitFunc != nil {
			if err := c.baseInitFunc(args); err != nil {
				return err
			}
		}
		for _, declare := range entry.declare {
			if err := declare(args); err != nil {
				return err
			}
		}
		return nil
	}

	if _, err := c.RequestHandlingController.ProcessRequest(ctx, req, resp); err != nil {
		return ActionOutcome{}, err
	}

	if !c.Arguments().Valid() && c.errorAction != nil {
		c.logger.Debug("invoking error action", "controller", c.Name(), "action", entry.name)
		return c.errorAction(ctx, c)
	}

	c.logger.Debug("invoking action", "controller", c.Name(), "action", entry.name)
	return entry.handler(ctx, c)
}

// defaultErrorAction answers web requests with 400. JSON clients get the
// failures per argument; other requests get an *InvalidArgumentsError.
func defaultErrorAction(_ context.Context, c *ActionController) (ActionOutcome, error) {
	invalid := newInvalidArgumentsError(c.Arguments())
	req, ok := c.Request().(*WebRequest)
	if !ok {
		return ActionOutcome{}, invalid
	}
	if strings.Contains(req.Header("Accept"), "application/json") {
		return ActionOutcome{}, ErrBadRequest("invalid arguments").WithDetails(invalid.Messages())
	}
	return c.ThrowStatus(http.StatusBadRequest, WithContent(invalid.Message))
}
