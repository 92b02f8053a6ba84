package commands

import (
	"github.com/spf13/cobra"

	"github.com/toyz/axonmvc/internal/blog"
	"github.com/toyz/axonmvc/pkg/adapters"
	"github.com/toyz/axonmvc/pkg/server"
)

// LocaleArgument is the request argument filled from Accept-Language
const LocaleArgument = "locale"

func (c *CLI) newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the blog over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := c.serverConfig(cmd)
			if err != nil {
				return err
			}

			srv, err := server.New(cfg, c.dispatcher, blog.Routes(),
				server.WithLogger(c.logger),
				server.WithMiddleware(adapters.LocaleNegotiation(c.app.Detector, LocaleArgument)))
			if err != nil {
				return err
			}

			c.console.Info("Serving %d routes with %s on %s", len(srv.Routes()), srv.WebServer().Name(), cfg.Addr())
			if err := srv.Run(cmd.Context()); err != nil {
				return err
			}
			c.console.Success("Server stopped")
			return nil
		},
	}

	flags := cmd.Flags()
	flags.String("adapter", adapters.EchoName, "Web framework serving requests (echo, gin, fiber)")
	flags.String("host", "", "Host to bind to")
	flags.StringP("port", "p", "8080", "Port to listen on")
	flags.String("routes", "", "YAML file with additional routes")
	flags.Duration("shutdown-timeout", 0, "Timeout for graceful shutdown")

	return cmd
}

// serverConfig reads the environment and applies the flags set explicitly
func (c *CLI) serverConfig(cmd *cobra.Command) (*server.Config, error) {
	cfg, err := server.ConfigFromEnv()
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	for name, target := range map[string]*string{
		"adapter": &cfg.Adapter,
		"host":    &cfg.Host,
		"port":    &cfg.Port,
		"routes":  &cfg.RoutesFile,
	} {
		if flags.Changed(name) {
			if *target, err = flags.GetString(name); err != nil {
				return nil, err
			}
		}
	}
	if flags.Changed("shutdown-timeout") {
		if cfg.ShutdownTimeout, err = flags.GetDuration("shutdown-timeout"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("log-level") {
		if err := cfg.LogLevel.UnmarshalText([]byte(flags.Lookup("log-level").Value.String())); err != nil {
			return nil, err
		}
	}

	return cfg, cfg.Validate()
}
