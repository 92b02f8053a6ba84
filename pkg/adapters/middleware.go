package adapters

import (
	"context"
	"log/slog"
	"time"

	"github.com/toyz/axonmvc/pkg/locale"
	"github.com/toyz/axonmvc/pkg/mvc"
)

// RequestLogger logs every dispatched request with its final status
func RequestLogger(logger *slog.Logger) Middleware {
	return func(next Handler) Handler {
		return func(ctx context.Context, req *mvc.WebRequest, resp *mvc.WebResponse) error {
			start := time.Now()
			err := next(ctx, req, resp)

			attrs := []any{
				"method", req.Method(),
				"path", req.URI().Path,
				"controller", req.ControllerName(),
				"action", req.ControllerActionName(),
				"duration", time.Since(start),
			}
			if err != nil {
				logger.Warn("request dispatch failed", append(attrs, "status", StatusForError(err), "error", err)...)
				return err
			}
			logger.Info("request dispatched", append(attrs, "status", resp.StatusCode())...)
			return nil
		}
	}
}

// LocaleNegotiation sets argument to the locale negotiated from the
// Accept-Language header unless the request already carries it.
func LocaleNegotiation(detector *locale.Detector, argument string) Middleware {
	return func(next Handler) Handler {
		return func(ctx context.Context, req *mvc.WebRequest, resp *mvc.WebResponse) error {
			if !req.HasArgument(argument) {
				req.SetArgument(argument, detector.DetectFromAcceptLanguage(req.Header("Accept-Language")).String())
			}
			return next(ctx, req, resp)
		}
	}
}
