package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/ericfisherdev/towerpanel/internal/application"
)

func (c *cli) towersWatchCmd() *cobra.Command {
	var (
		interval time.Duration
		count    int
	)

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Refresh and print the tower list until interrupted",
		Long: `Refresh towers, providers and blankspot areas on a schedule and print the
tower list after every refresh.

Without --interval the delay adapts to how recently a tower changed: every
15s when something changed within the hour, up to every 15m when nothing
changed for a week.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if interval < 0 {
				return fmt.Errorf("invalid --interval %s: must not be negative", interval)
			}

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			var (
				cycles  int
				lastErr error
			)
			watcher := application.NewWatchService(c.app.Workspace, interval, c.app.Logger)
			watcher.Run(ctx, func(wc application.WatchCycle) {
				cycles++
				lastErr = wc.Err
				if err := c.printWatchCycle(cmd, wc); err != nil {
					lastErr = err
					cancel()
					return
				}
				if count > 0 && cycles >= count {
					cancel()
				}
			})
			if cmd.Context().Err() != nil {
				// Interrupted by the user.
				return nil
			}
			return lastErr
		},
	}
	cmd.Flags().DurationVar(&interval, "interval", 0, "Fixed refresh interval (default: adaptive)")
	cmd.Flags().IntVar(&count, "count", 0, "Stop after this many refreshes (0 runs until interrupted)")
	return cmd
}

func (c *cli) printWatchCycle(cmd *cobra.Command, wc application.WatchCycle) error {
	towers := c.app.Workspace.Towers.List()
	if c.opts.JSON {
		return writeJSON(cmd.OutOrStdout(), map[string]any{
			"at":     wc.At,
			"tier":   wc.Tier.String(),
			"next":   wc.Next.String(),
			"towers": towers,
		})
	}

	w := cmd.OutOrStdout()
	if wc.Err != nil {
		fmt.Fprintln(w, c.app.Palette.Warn("Refresh failed: "+wc.Err.Error()))
	}
	status := fmt.Sprintf("Refreshed %s, %s towers, activity %s, next refresh in %s",
		wc.At.Format(time.TimeOnly), humanize.Comma(int64(len(towers))), wc.Tier, wc.Next)
	if _, err := fmt.Fprintln(w, c.app.Palette.Muted(status)); err != nil {
		return err
	}
	return renderTowers(w, c.app.Palette, towers)
}

