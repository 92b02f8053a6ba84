// Package commands implements the CLI commands for axonmvc.
package commands

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/toyz/axonmvc/internal/blog"
	"github.com/toyz/axonmvc/internal/console"
	axonerrors "github.com/toyz/axonmvc/internal/errors"
	"github.com/toyz/axonmvc/pkg/locale"
	"github.com/toyz/axonmvc/pkg/mvc"
)

// CLI represents the command line interface for axonmvc.
type CLI struct {
	rootCmd *cobra.Command
	out     io.Writer
	errOut  io.Writer

	console    *console.Console
	logger     *slog.Logger
	app        *blog.App
	registry   *mvc.InMemoryControllerRegistry
	dispatcher *mvc.Dispatcher
}

// New creates a new CLI writing to out and errOut.
func New(out, errOut io.Writer) *CLI {
	rootCmd := &cobra.Command{
		Use:           "axonmvc",
		Short:         "Serve and inspect the axonmvc blog",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.SetOut(out)
	rootCmd.SetErr(errOut)

	rootCmd.PersistentFlags().String("log-level", getEnvOrDefault("AXONMVC_LOG_LEVEL", "info"), "Minimum log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().Bool("no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().StringSlice("locales", []string{"en", "de", "fr"}, "Available locales, the first one is the fallback")

	c := &CLI{
		rootCmd: rootCmd,
		out:     out,
		errOut:  errOut,
	}
	rootCmd.PersistentPreRunE = c.setup

	rootCmd.AddCommand(c.newServeCmd())
	rootCmd.AddCommand(c.newRoutesCmd())
	rootCmd.AddCommand(c.newExecCmd())

	return c
}

// Execute runs the root command with the given context.
func (c *CLI) Execute(ctx context.Context) error {
	c.rootCmd.SetContext(ctx)
	return c.rootCmd.Execute()
}

// SetArgs sets the arguments for the root command. Used for testing.
func (c *CLI) SetArgs(args []string) {
	c.rootCmd.SetArgs(args)
}

// setup builds the logger, console and controllers shared by all commands
func (c *CLI) setup(cmd *cobra.Command, _ []string) error {
	flags := cmd.Flags()

	rawLevel, err := flags.GetString("log-level")
	if err != nil {
		return err
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(rawLevel)); err != nil {
		return axonerrors.WrapConfigurationError("log-level", "parse", err)
	}

	noColor, err := flags.GetBool("no-color")
	if err != nil {
		return err
	}
	if noColor {
		color.NoColor = true
	}

	identifiers, err := flags.GetStringSlice("locales")
	if err != nil {
		return err
	}
	detector, err := newDetector(identifiers)
	if err != nil {
		return err
	}

	c.logger = slog.New(slog.NewTextHandler(c.errOut, &slog.HandlerOptions{Level: level}))
	c.console = console.New(c.out, c.errOut, console.LevelInfo)
	c.app = blog.NewApp(detector, c.logger)
	c.registry = mvc.NewInMemoryControllerRegistry()
	if err := c.app.Register(c.registry); err != nil {
		return err
	}
	c.dispatcher = mvc.NewDispatcher(c.registry, mvc.WithDispatcherLogger(c.logger))
	return nil
}

func newDetector(identifiers []string) (*locale.Detector, error) {
	if len(identifiers) == 0 {
		return nil, axonerrors.WrapConfigurationError("locales", "parse",
			axonerrors.New(axonerrors.ConfigurationErrorCode, "at least one locale is required"))
	}

	locales := make([]*locale.Locale, 0, len(identifiers))
	for _, identifier := range identifiers {
		l, err := locale.New(identifier)
		if err != nil {
			return nil, axonerrors.WrapConfigurationError("locales", "parse", err)
		}
		locales = append(locales, l)
	}
	return locale.NewDetector(locales[0], locales[1:]...), nil
}

// getEnvOrDefault returns environment variable value or default
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
