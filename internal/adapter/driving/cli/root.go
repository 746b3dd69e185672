package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/ericfisherdev/towerpanel/internal/application"
)

// skipBootstrap marks commands that run without configuration.
const skipBootstrap = "skip-bootstrap"

type cli struct {
	boot Bootstrap
	opts Options
	app  *App
}

// Run executes the CLI with args and returns the command's error. The App
// built for the command is always closed before Run returns.
func Run(ctx context.Context, boot Bootstrap, args []string, stdout, stderr io.Writer) error {
	c := &cli{boot: boot}
	c.opts.Stderr = stderr

	root := c.rootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(ctx)
	if c.app != nil {
		if closeErr := c.app.Close(); closeErr != nil {
			err = errors.Join(err, closeErr)
		}
	}
	return err
}

func (c *cli) rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "towerpanel",
		Short: "Manage the telecommunication tower inventory",
		Long: `towerpanel is a client for the tower inventory backend.

It keeps a login session across runs, lists and edits towers, providers
and blankspot areas, and shows the history of every tower.

The backend URL comes from TOWERPANEL_API_BASE_URL or the config file.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: c.bootstrap,
	}

	cmd.PersistentFlags().StringVar(&c.opts.ConfigPath, "config", "", "Path to a YAML config file")
	cmd.PersistentFlags().BoolVarP(&c.opts.Verbose, "verbose", "v", false, "Enable debug logging")
	cmd.PersistentFlags().BoolVar(&c.opts.JSON, "json", false, "Write results as JSON")

	cmd.AddCommand(
		c.loginCmd(),
		c.logoutCmd(),
		c.passwdCmd(),
		c.whoamiCmd(),
		c.towersCmd(),
		c.providersCmd(),
		c.blankspotsCmd(),
		c.uiCmd(),
		c.routesCmd(),
	)
	return cmd
}

func (c *cli) bootstrap(cmd *cobra.Command, _ []string) error {
	if cmd.Annotations[skipBootstrap] == "true" || cmd.Name() == "help" {
		return nil
	}

	app, err := c.boot(cmd.Context(), c.opts)
	if err != nil {
		return err
	}
	c.app = app

	if err := app.UI.InitializeDarkMode(cmd.Context()); err != nil {
		app.Logger.Warn("applying dark mode preference", "error", err)
	}
	return nil
}

// guard fails with a login hint when route is protected and the session
// is anonymous.
func (c *cli) guard(route string) error {
	if err := c.app.Guard.Require(route); err != nil {
		if errors.Is(err, application.ErrLoginRequired) {
			return fmt.Errorf("%s requires a session: run 'towerpanel login' first: %w", route, err)
		}
		return err
	}
	return nil
}

// emit writes v as JSON when --json is set and calls table otherwise.
func (c *cli) emit(cmd *cobra.Command, v any, table func(io.Writer) error) error {
	if c.opts.JSON {
		return writeJSON(cmd.OutOrStdout(), v)
	}
	return table(cmd.OutOrStdout())
}

// mutationOpts turns the --local-patch flag into store options.
func mutationOpts(localPatch bool) []application.MutationOption {
	if localPatch {
		return []application.MutationOption{application.WithReconciler(application.LocalPatch{})}
	}
	return nil
}

func parseID(s string) (uint, error) {
	id, err := strconv.ParseUint(s, 10, 0)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid id %q: must be a positive integer", s)
	}
	return uint(id), nil
}

func parseFloat(name, s string) (float64, error) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", name, s, err)
	}
	return f, nil
}
