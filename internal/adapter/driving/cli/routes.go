package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

func (c *cli) routesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "routes",
		Short: "Inspect navigation routes",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "check PATH",
		Short: "Show where navigating to PATH ends for the current session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			target := c.app.Guard.Resolve(args[0])
			_, known := c.app.Guard.Lookup(args[0])
			result := map[string]any{
				"path":          args[0],
				"target":        target,
				"known":         known,
				"authenticated": c.app.Session.IsAuthenticated(),
			}
			return c.emit(cmd, result, func(w io.Writer) error {
				_, err := fmt.Fprintf(w, "%s -> %s\n", args[0], target)
				return err
			})
		},
	})
	return cmd
}
