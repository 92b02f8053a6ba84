package mvc

import (
	"context"
	"log/slog"
)

// DefaultMaxDispatchIterations bounds the number of dispatch passes per request
const DefaultMaxDispatchIterations = 99

// Dispatcher routes a request to controllers until one of them marks it
// dispatched.
type Dispatcher struct {
	registry      ControllerRegistry
	logger        *slog.Logger
	maxIterations int
}

// DispatcherOption configures a Dispatcher
type DispatcherOption func(*Dispatcher)

func WithDispatcherLogger(logger *slog.Logger) DispatcherOption {
	return func(d *Dispatcher) {
		d.logger = logger
	}
}

// WithMaxIterations overrides DefaultMaxDispatchIterations
func WithMaxIterations(n int) DispatcherOption {
	return func(d *Dispatcher) {
		if n > 0 {
			d.maxIterations = n
		}
	}
}

// NewDispatcher creates a dispatcher resolving controllers from registry.
// A nil registry uses DefaultControllerRegistry.
func NewDispatcher(registry ControllerRegistry, opts ...DispatcherOption) *Dispatcher {
	if registry == nil {
		registry = DefaultControllerRegistry
	}
	d := &Dispatcher{
		registry:      registry,
		logger:        slog.Default(),
		maxIterations: DefaultMaxDispatchIterations,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Registry returns the registry controllers are resolved from
func (d *Dispatcher) Registry() ControllerRegistry {
	return d.registry
}

// Dispatch runs the dispatch loop for req. Every pass resolves a fresh
// controller for the request's current target. Forwards clear the
// dispatched flag and cause another pass.
func (d *Dispatcher) Dispatch(ctx context.Context, req Request, resp Response) error {
	iterations := 0
	for !req.IsDispatched() {
		iterations++
		if iterations > d.maxIterations {
			d.logger.Warn("dispatch loop limit reached",
				"package", req.ControllerPackageKey(),
				"controller", req.ControllerName(),
				"action", req.ControllerActionName(),
				"iterations", d.maxIterations)
			return NewInfiniteLoopError(d.maxIterations)
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		controller, err := d.registry.Resolve(req.ControllerPackageKey(), req.ControllerName())
		if err != nil {
			return err
		}

		outcome, err := controller.ProcessRequest(ctx, req, resp)
		if err != nil {
			d.logger.Debug("dispatch pass failed",
				"controller", req.ControllerName(),
				"action", req.ControllerActionName(),
				"error", err)
			return err
		}

		d.logger.Debug("dispatch pass finished",
			"iteration", iterations,
			"outcome", outcome.Kind.String(),
			"package", req.ControllerPackageKey(),
			"controller", req.ControllerName(),
			"action", req.ControllerActionName())
	}
	return nil
}
