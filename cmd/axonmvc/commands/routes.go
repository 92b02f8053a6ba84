package commands

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/toyz/axonmvc/internal/blog"
	"github.com/toyz/axonmvc/pkg/mvc"
	"github.com/toyz/axonmvc/pkg/routing"
)

func (c *CLI) newRoutesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "routes",
		Short: "List routes and registered controllers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			routes := blog.Routes()
			file, err := cmd.Flags().GetString("routes")
			if err != nil {
				return err
			}
			if file != "" {
				loaded, err := routing.LoadRoutes(file)
				if err != nil {
					return err
				}
				routes = append(loaded, routes...)
			}

			c.console.Section("Routes")
			rows := make([][]string, 0, len(routes))
			for _, route := range routes {
				rows = append(rows, []string{route.Name, route.Method, route.Pattern.String(), routeTarget(route)})
			}
			c.console.Table([]string{"NAME", "METHOD", "PATTERN", "TARGET"}, rows)

			c.console.Raw("\n")
			c.console.Section("Controllers")
			rows = rows[:0]
			for _, info := range c.registry.Controllers() {
				types := make([]string, len(info.SupportedRequestTypes))
				for i, t := range info.SupportedRequestTypes {
					types[i] = string(t)
				}
				rows = append(rows, []string{info.PackageKey, info.Name, strings.Join(info.Actions, ", "), strings.Join(types, ", ")})
			}
			c.console.Table([]string{"PACKAGE", "CONTROLLER", "ACTIONS", "REQUESTS"}, rows)
			return nil
		},
	}

	cmd.Flags().String("routes", "", "YAML file with additional routes")
	return cmd
}

// routeTarget describes the controller a route addresses
func routeTarget(route routing.Route) string {
	parts := []string{
		slotTarget(route, routing.PackageSlot, routing.PackageDefault, mvc.DefaultPackageKey),
		slotTarget(route, routing.ControllerSlot, routing.ControllerDefault, mvc.DefaultController),
		slotTarget(route, routing.ActionSlot, routing.ActionDefault, mvc.DefaultActionName),
	}
	return strings.Join(parts, "/")
}

func slotTarget(route routing.Route, slot, defaultKey, fallback string) string {
	for _, v := range route.Pattern.Variables() {
		if v.Internal && v.Name == slot {
			return v.String()
		}
	}
	if value, ok := route.Defaults[defaultKey]; ok {
		return value
	}
	return fallback
}
