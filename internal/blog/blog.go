// Package blog is a small post board served by the mvc dispatcher. It
// shows the controllers, routes and arguments of a complete application.
package blog

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/toyz/axonmvc/pkg/locale"
	"github.com/toyz/axonmvc/pkg/mvc"
	"github.com/toyz/axonmvc/pkg/routing"
)

// PackageKey is the package the post controllers are registered under
const PackageKey = "Blog"

// App holds the shared state of the blog controllers
type App struct {
	Store    *Store
	Detector *locale.Detector
	Logger   *slog.Logger
}

// NewApp creates a blog with an empty store
func NewApp(detector *locale.Detector, logger *slog.Logger) *App {
	if logger == nil {
		logger = slog.Default()
	}
	return &App{Store: NewStore(), Detector: detector, Logger: logger}
}

// Register adds the blog controllers to registry
func (a *App) Register(registry mvc.ControllerRegistry) error {
	registrations := []struct {
		packageKey string
		name       string
		factory    mvc.ControllerFactory
	}{
		{PackageKey, "Posts", func() mvc.Controller { return NewPostsController(a.Store, a.Detector, a.Logger) }},
		{mvc.DefaultPackageKey, mvc.DefaultController, func() mvc.Controller { return newStandardController(a.Logger) }},
		{mvc.DefaultPackageKey, "Status", func() mvc.Controller { return newStatusController(a.Store, a.Logger) }},
	}

	for _, r := range registrations {
		if err := registry.Register(r.packageKey, r.name, r.factory); err != nil {
			return err
		}
	}
	return nil
}

func postsRoute(name, method, pattern, action string) routing.Route {
	return routing.MustNewRoute(name, method, pattern, map[string]string{
		routing.PackageDefault:    PackageKey,
		routing.ControllerDefault: "Posts",
		routing.ActionDefault:     action,
	})
}

// Routes returns the blog routes followed by the generic controller routes
func Routes() routing.Table {
	routes := routing.Table{
		postsRoute("posts", "GET", "/posts", "index"),
		postsRoute("post-create", "POST", "/posts", "create"),
		postsRoute("post", "GET", "/posts/{post:uuid}", "show"),
		postsRoute("post-delete", routing.MethodAny, "/posts/{post:uuid}/delete", "delete"),
		postsRoute("archive", "GET", "/archive/{*path}", "legacy"),
	}
	return append(routes, routing.DefaultRoutes()...)
}

// newStandardController serves "/" by forwarding to the post list
func newStandardController(logger *slog.Logger) mvc.Controller {
	return mvc.NewActionController(mvc.DefaultController, mvc.WithLogger(logger)).
		Handle("index", func(_ context.Context, c *mvc.ActionController) (mvc.ActionOutcome, error) {
			return c.Forward("index", mvc.ToController("Posts"), mvc.ToPackage(PackageKey))
		})
}

// newStatusController reports the size of the store to web and CLI clients
func newStatusController(store *Store, logger *slog.Logger) mvc.Controller {
	return mvc.NewActionController("Status",
		mvc.WithLogger(logger),
		mvc.WithSupportedRequestTypes(mvc.WebRequestType, mvc.CLIRequestType)).
		Handle("index", func(_ context.Context, c *mvc.ActionController) (mvc.ActionOutcome, error) {
			if c.Request().Is(mvc.WebRequestType) {
				c.Response().SetHeader("Content-Type", "text/plain; charset=utf-8")
			}
			c.Response().SetContent(fmt.Sprintf("posts: %d\n", store.Len()))
			return mvc.Continue(), nil
		})
}
