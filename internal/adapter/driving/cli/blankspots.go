package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/ericfisherdev/towerpanel/internal/domain/model"
)

const blankspotsRoute = "/admin/blankspots"

type blankspotFlags struct {
	name        string
	kelurahan   string
	coordinates string
	areaType    string
	color       string
	localPatch  bool
}

func (f *blankspotFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.name, "name", "", "Area name")
	cmd.Flags().StringVar(&f.kelurahan, "kelurahan", "", "Kelurahan (urban village)")
	cmd.Flags().StringVar(&f.coordinates, "coordinates", "", `Polygon as JSON, e.g. '[[-6.2,106.8],[-6.3,106.9],[-6.25,106.7]]'`)
	cmd.Flags().StringVar(&f.areaType, "type", "", "Area type")
	cmd.Flags().StringVar(&f.color, "color", "", "Display color, e.g. #ff0000")
	cmd.Flags().BoolVar(&f.localPatch, "local-patch", false, "Patch the cached list instead of refetching it")
}

func (f *blankspotFlags) input(cmd *cobra.Command, base model.BlankspotInput) (model.BlankspotInput, error) {
	in := base
	changed := cmd.Flags().Changed
	if changed("name") {
		in.Name = f.name
	}
	if changed("kelurahan") {
		in.Kelurahan = f.kelurahan
	}
	if changed("coordinates") {
		in.Coordinates = f.coordinates
	}
	if changed("type") {
		in.Type = f.areaType
	}
	if changed("color") {
		in.Color = f.color
	}

	// Reject a malformed polygon before it reaches the backend.
	if _, err := (model.BlankspotArea{Coordinates: in.Coordinates}).Polygon(); err != nil {
		return model.BlankspotInput{}, fmt.Errorf("invalid --coordinates: %w", err)
	}
	return in, nil
}

func (c *cli) blankspotsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "blankspots",
		Aliases: []string{"blankspot"},
		Short:   "List and manage blankspot areas",
	}
	cmd.AddCommand(
		c.blankspotsListCmd(),
		c.blankspotsCreateCmd(),
		c.blankspotsUpdateCmd(),
		c.blankspotsDeleteCmd(),
	)
	return cmd
}

func (c *cli) printBlankspot(cmd *cobra.Command, a model.BlankspotArea) error {
	return c.emit(cmd, a, func(w io.Writer) error {
		return renderBlankspots(w, c.app.Palette, []model.BlankspotArea{a})
	})
}

func (c *cli) blankspotsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all blankspot areas",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store := c.app.Workspace.Blankspots
			if err := store.FetchAll(cmd.Context()); err != nil {
				return err
			}
			areas := store.List()
			return c.emit(cmd, areas, func(w io.Writer) error {
				return renderBlankspots(w, c.app.Palette, areas)
			})
		},
	}
}

func (c *cli) blankspotsCreateCmd() *cobra.Command {
	var f blankspotFlags

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a blankspot area",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := c.guard(blankspotsRoute); err != nil {
				return err
			}
			in, err := f.input(cmd, model.BlankspotInput{})
			if err != nil {
				return err
			}
			if in.Name == "" {
				return errors.New("--name is required")
			}
			area, err := c.app.Workspace.Blankspots.Create(cmd.Context(), in, mutationOpts(f.localPatch)...)
			if err != nil && area.ID == 0 {
				return err
			}
			if printErr := c.printBlankspot(cmd, area); printErr != nil {
				return printErr
			}
			return err
		},
	}
	f.register(cmd)
	return cmd
}

func (c *cli) blankspotsUpdateCmd() *cobra.Command {
	var f blankspotFlags

	cmd := &cobra.Command{
		Use:   "update ID",
		Short: "Update a blankspot area",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.guard(blankspotsRoute); err != nil {
				return err
			}
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			store := c.app.Workspace.Blankspots
			if err := store.FetchAll(cmd.Context()); err != nil {
				return err
			}
			current, ok := store.Get(id)
			if !ok {
				return fmt.Errorf("blankspot area %d: %w", id, model.ErrNotFound)
			}

			in, err := f.input(cmd, model.BlankspotInput{
				Name:        current.Name,
				Kelurahan:   current.Kelurahan,
				Coordinates: current.Coordinates,
				Type:        current.Type,
				Color:       current.Color,
			})
			if err != nil {
				return err
			}
			area, err := store.Update(cmd.Context(), id, in, mutationOpts(f.localPatch)...)
			if err != nil && area.ID == 0 {
				return err
			}
			if printErr := c.printBlankspot(cmd, area); printErr != nil {
				return printErr
			}
			return err
		},
	}
	f.register(cmd)
	return cmd
}

func (c *cli) blankspotsDeleteCmd() *cobra.Command {
	var localPatch bool

	cmd := &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a blankspot area",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.guard(blankspotsRoute); err != nil {
				return err
			}
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := c.app.Workspace.Blankspots.Delete(cmd.Context(), id, mutationOpts(localPatch)...); err != nil {
				return err
			}
			return c.emit(cmd, map[string]any{"deleted": id}, func(w io.Writer) error {
				_, err := fmt.Fprintf(w, "Blankspot area %d deleted.\n", id)
				return err
			})
		},
	}
	cmd.Flags().BoolVar(&localPatch, "local-patch", false, "Patch the cached list instead of refetching it")
	return cmd
}
