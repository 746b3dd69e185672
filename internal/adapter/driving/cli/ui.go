package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/ericfisherdev/towerpanel/internal/domain/model"
)

func (c *cli) uiCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ui",
		Short: "Display preferences",
	}
	cmd.AddCommand(c.uiDarkModeCmd(), c.uiShowCmd())
	return cmd
}

func (c *cli) uiDarkModeCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "dark-mode [toggle]",
		Short:     "Show or toggle dark mode",
		Long:      "Without arguments, print whether dark mode is on. With toggle, flip and persist it.",
		Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"toggle"},
		RunE: func(cmd *cobra.Command, args []string) error {
			dark := c.app.UI.Snapshot().DarkMode
			if len(args) == 1 {
				var err error
				if dark, err = c.app.UI.ToggleDarkMode(cmd.Context()); err != nil {
					return err
				}
			}
			return c.emit(cmd, map[string]any{"dark_mode": dark}, func(w io.Writer) error {
				state := "off"
				if dark {
					state = "on"
				}
				_, err := fmt.Fprintf(w, "%s %s\n", c.app.Palette.Header("Dark mode:"), state)
				return err
			})
		},
	}
}

// uiShowCmd opens the detail sidebar on a tower and renders it.
func (c *cli) uiShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show ID",
		Short: "Show the detail sidebar for a tower",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			tower, err := c.app.Workspace.Towers.Fetch(cmd.Context(), id)
			if err != nil {
				return err
			}

			c.app.UI.OpenDetailSidebar(tower)
			defer c.app.UI.CloseDetailSidebar()

			snap := c.app.UI.Snapshot()
			item, ok := snap.DetailItem.(model.Tower)
			if !snap.DetailSidebarVisible || !ok {
				return nil
			}
			return c.printTower(cmd, item)
		},
	}
}
