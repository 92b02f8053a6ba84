package commands

import (
	"strings"

	"github.com/spf13/cobra"

	axonerrors "github.com/toyz/axonmvc/internal/errors"
	"github.com/toyz/axonmvc/pkg/mvc"
)

func (c *CLI) newExecCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "exec <controller> [action] [name=value...]",
		Short: "Dispatch a command line request to a controller",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			packageKey, err := cmd.Flags().GetString("package")
			if err != nil {
				return err
			}

			req := mvc.NewCLIRequest(args)
			req.SetControllerPackageKey(packageKey)
			req.SetControllerName(args[0])

			rest := args[1:]
			if len(rest) > 0 && !strings.Contains(rest[0], "=") {
				req.SetControllerActionName(rest[0])
				rest = rest[1:]
			}
			for _, pair := range rest {
				name, value, ok := strings.Cut(pair, "=")
				if !ok || name == "" {
					return axonerrors.Newf(axonerrors.InvalidArgumentNameErrorCode, "argument %q is not of the form name=value", pair)
				}
				req.SetArgument(name, value)
			}

			resp := mvc.NewResponse()
			if err := c.dispatcher.Dispatch(cmd.Context(), req, resp); err != nil {
				return err
			}
			c.console.Raw(resp.Content())
			return nil
		},
	}

	cmd.Flags().String("package", mvc.DefaultPackageKey, "Package of the controller")
	return cmd
}
