package cli

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/ericfisherdev/towerpanel/internal/domain/model"
)

const (
	towersRoute   = "/admin/towers"
	timelineRoute = "/admin/timeline"
)

// towerFlags are the editable tower fields shared by create and update.
type towerFlags struct {
	latitude   float64
	longitude  float64
	kelurahan  string
	kecamatan  string
	address    string
	tinggi     float64
	tipe       string
	providers  []uint
	photo      string
	localPatch bool
}

func (f *towerFlags) register(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&f.latitude, "lat", 0, "Latitude")
	cmd.Flags().Float64Var(&f.longitude, "lon", 0, "Longitude")
	cmd.Flags().StringVar(&f.kelurahan, "kelurahan", "", "Kelurahan (urban village)")
	cmd.Flags().StringVar(&f.kecamatan, "kecamatan", "", "Kecamatan (district)")
	cmd.Flags().StringVar(&f.address, "address", "", "Street address")
	cmd.Flags().Float64Var(&f.tinggi, "tinggi", 0, "Height in meters")
	cmd.Flags().StringVar(&f.tipe, "tipe", "", "Tower type")
	cmd.Flags().UintSliceVar(&f.providers, "provider", nil, "Owning provider ID (repeatable)")
	cmd.Flags().StringVar(&f.photo, "photo", "", "Image file to upload")
	cmd.Flags().BoolVar(&f.localPatch, "local-patch", false, "Patch the cached list instead of refetching it")
}

// input builds a TowerInput from base, overriding the fields whose flags
// were given on the command line.
func (f *towerFlags) input(cmd *cobra.Command, base model.TowerInput) (model.TowerInput, error) {
	in := base
	changed := cmd.Flags().Changed
	if changed("lat") {
		in.Latitude = f.latitude
	}
	if changed("lon") {
		in.Longitude = f.longitude
	}
	if changed("kelurahan") {
		in.Kelurahan = f.kelurahan
	}
	if changed("kecamatan") {
		in.Kecamatan = f.kecamatan
	}
	if changed("address") {
		in.Address = f.address
	}
	if changed("tinggi") {
		in.Tinggi = f.tinggi
	}
	if changed("tipe") {
		in.Tipe = f.tipe
	}
	if changed("provider") {
		in.ProviderIDs = f.providers
	}
	if f.photo != "" {
		photo, err := readAttachment(f.photo)
		if err != nil {
			return model.TowerInput{}, err
		}
		in.Photo = photo
	}
	return in, nil
}

func readAttachment(path string) (*model.Attachment, error) {
	data, err := os.ReadFile(path) //nolint:gosec // user-selected upload
	if err != nil {
		return nil, fmt.Errorf("reading photo: %w", err)
	}
	return &model.Attachment{
		Filename:    filepath.Base(path),
		ContentType: http.DetectContentType(data),
		Data:        data,
	}, nil
}

// inputFromTower is the update payload that leaves tower t unchanged.
func inputFromTower(t model.Tower) model.TowerInput {
	ids := make([]uint, 0, len(t.Providers))
	for _, p := range t.Providers {
		ids = append(ids, p.ID)
	}
	return model.TowerInput{
		Latitude:    t.Latitude,
		Longitude:   t.Longitude,
		Kelurahan:   t.Kelurahan,
		Kecamatan:   t.Kecamatan,
		Address:     t.Address,
		Tinggi:      t.Tinggi,
		Tipe:        t.Tipe,
		ProviderIDs: ids,
	}
}

func (c *cli) towersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "towers",
		Aliases: []string{"tower"},
		Short:   "List and manage towers",
	}
	cmd.AddCommand(
		c.towersListCmd(),
		c.towersShowCmd(),
		c.towersCreateCmd(),
		c.towersUpdateCmd(),
		c.towersDeleteCmd(),
		c.towersOwnershipCmd(),
		c.towersRelocateCmd(),
		c.towersDismantleCmd(),
		c.towersHistoryCmd(),
		c.towersReportCmd(),
		c.towersWatchCmd(),
	)
	return cmd
}

// fetchTower refreshes the tower list and returns tower id from it, so a
// following mutation can patch the cached entry.
func (c *cli) fetchTower(ctx context.Context, id uint) (model.Tower, error) {
	towers := c.app.Workspace.Towers
	if err := towers.FetchAll(ctx); err != nil {
		return model.Tower{}, err
	}
	tower, ok := towers.Get(id)
	if !ok {
		return model.Tower{}, fmt.Errorf("tower %d: %w", id, model.ErrNotFound)
	}
	return tower, nil
}

// loadForPatch fills the tower cache before a LocalPatch mutation, which
// merges the response into the entry this process already holds.
func (c *cli) loadForPatch(ctx context.Context, localPatch bool) error {
	towers := c.app.Workspace.Towers
	if !localPatch || len(towers.List()) > 0 {
		return nil
	}
	return towers.FetchAll(ctx)
}

// printMutatedTower prints tower id as the cache holds it after
// reconciliation. The backend's response lacks providers for most tower
// mutations, so it is only printed when reconciliation failed.
func (c *cli) printMutatedTower(cmd *cobra.Command, id uint, resp model.Tower, reconcileErr error) error {
	tower := resp
	if reconcileErr == nil {
		if cached, ok := c.app.Workspace.Towers.Get(id); ok {
			tower = cached
		}
	}
	if err := c.printTower(cmd, tower); err != nil {
		return err
	}
	return reconcileErr
}

func (c *cli) printTower(cmd *cobra.Command, t model.Tower) error {
	return c.emit(cmd, t, func(w io.Writer) error {
		return renderTowerDetail(w, c.app.Palette, t)
	})
}

func (c *cli) towersListCmd() *cobra.Command {
	var status string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List all towers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store := c.app.Workspace.Towers
			if err := store.FetchAll(cmd.Context()); err != nil {
				return err
			}

			towers := store.List()
			if status != "" {
				filtered := towers[:0]
				for _, t := range towers {
					if string(t.Status) == status {
						filtered = append(filtered, t)
					}
				}
				towers = filtered
			}

			return c.emit(cmd, towers, func(w io.Writer) error {
				return renderTowers(w, c.app.Palette, towers)
			})
		},
	}
	cmd.Flags().StringVar(&status, "status", "", "Only show towers with this status (active or dismantled)")
	return cmd
}

func (c *cli) towersShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show ID",
		Short: "Show one tower",
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
			return c.printTower(cmd, tower)
		},
	}
}

func (c *cli) towersCreateCmd() *cobra.Command {
	var f towerFlags

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a tower",
		Long: `Create a tower. With --photo the tower is uploaded as multipart form data
together with the image, otherwise it is sent as JSON unless form_payloads
is enabled in the configuration.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := c.guard(towersRoute); err != nil {
				return err
			}
			in, err := f.input(cmd, model.TowerInput{})
			if err != nil {
				return err
			}
			tower, err := c.app.Workspace.Towers.Create(cmd.Context(), in, mutationOpts(f.localPatch)...)
			if err != nil && tower.ID == 0 {
				return err
			}
			if printErr := c.printTower(cmd, tower); printErr != nil {
				return printErr
			}
			return err
		},
	}
	f.register(cmd)
	return cmd
}

func (c *cli) towersUpdateCmd() *cobra.Command {
	var f towerFlags

	cmd := &cobra.Command{
		Use:   "update ID",
		Short: "Update a tower's details",
		Long: `Update a tower. Fields whose flags are not given keep their current value.
Use the relocate and ownership commands to move a tower or change its owner
with a history entry of the matching kind.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.guard(towersRoute); err != nil {
				return err
			}
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			current, err := c.fetchTower(cmd.Context(), id)
			if err != nil {
				return err
			}
			in, err := f.input(cmd, inputFromTower(current))
			if err != nil {
				return err
			}
			tower, err := c.app.Workspace.Towers.Update(cmd.Context(), id, in, mutationOpts(f.localPatch)...)
			if err != nil && tower.ID == 0 {
				return err
			}
			return c.printMutatedTower(cmd, id, tower, err)
		},
	}
	f.register(cmd)
	return cmd
}

func (c *cli) towersDeleteCmd() *cobra.Command {
	var localPatch bool

	cmd := &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a tower",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.guard(towersRoute); err != nil {
				return err
			}
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := c.app.Workspace.Towers.Delete(cmd.Context(), id, mutationOpts(localPatch)...); err != nil {
				return err
			}
			return c.emit(cmd, map[string]any{"deleted": id}, func(w io.Writer) error {
				_, err := fmt.Fprintf(w, "Tower %d deleted.\n", id)
				return err
			})
		},
	}
	cmd.Flags().BoolVar(&localPatch, "local-patch", false, "Patch the cached list instead of refetching it")
	return cmd
}

func (c *cli) towersOwnershipCmd() *cobra.Command {
	var localPatch bool

	cmd := &cobra.Command{
		Use:   "ownership ID PROVIDER_ID",
		Short: "Transfer a tower to another provider",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.guard(towersRoute); err != nil {
				return err
			}
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			providerID, err := parseID(args[1])
			if err != nil {
				return err
			}
			if err := c.loadForPatch(cmd.Context(), localPatch); err != nil {
				return err
			}
			if providers := c.app.Workspace.Providers; localPatch && len(providers.List()) == 0 {
				if err := providers.FetchAll(cmd.Context()); err != nil {
					return err
				}
			}
			// The ownership response may predate the new association.
			tower, err := c.app.Workspace.Towers.ChangeOwnership(cmd.Context(), id, providerID, mutationOpts(localPatch)...)
			if err != nil && tower.ID == 0 {
				return err
			}
			return c.printMutatedTower(cmd, id, tower, err)
		},
	}
	cmd.Flags().BoolVar(&localPatch, "local-patch", false, "Patch the cached list instead of refetching it")
	return cmd
}

func (c *cli) towersRelocateCmd() *cobra.Command {
	var localPatch bool

	cmd := &cobra.Command{
		Use:   "relocate ID LAT LON",
		Short: "Move a tower to new coordinates",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.guard(towersRoute); err != nil {
				return err
			}
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			lat, err := parseFloat("latitude", args[1])
			if err != nil {
				return err
			}
			lon, err := parseFloat("longitude", args[2])
			if err != nil {
				return err
			}
			if err := c.loadForPatch(cmd.Context(), localPatch); err != nil {
				return err
			}
			tower, err := c.app.Workspace.Towers.Relocate(cmd.Context(), id, lat, lon, mutationOpts(localPatch)...)
			if err != nil && tower.ID == 0 {
				return err
			}
			return c.printMutatedTower(cmd, id, tower, err)
		},
	}
	cmd.Flags().BoolVar(&localPatch, "local-patch", false, "Patch the cached list instead of refetching it")
	return cmd
}

func (c *cli) towersDismantleCmd() *cobra.Command {
	var localPatch bool

	cmd := &cobra.Command{
		Use:   "dismantle ID",
		Short: "Mark a tower as dismantled",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.guard(towersRoute); err != nil {
				return err
			}
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := c.loadForPatch(cmd.Context(), localPatch); err != nil {
				return err
			}
			tower, err := c.app.Workspace.Towers.Dismantle(cmd.Context(), id, mutationOpts(localPatch)...)
			if err != nil && tower.ID == 0 {
				return err
			}
			return c.printMutatedTower(cmd, id, tower, err)
		},
	}
	cmd.Flags().BoolVar(&localPatch, "local-patch", false, "Patch the cached list instead of refetching it")
	return cmd
}

func (c *cli) towersHistoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "history ID",
		Short: "Show the event history of a tower",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.guard(timelineRoute); err != nil {
				return err
			}
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			events, err := c.app.Workspace.Towers.FetchHistory(cmd.Context(), id)
			if err != nil {
				return err
			}
			return c.emit(cmd, events, func(w io.Writer) error {
				return renderHistory(w, c.app.Palette, events, time.Now())
			})
		},
	}
}

func (c *cli) towersReportCmd() *cobra.Command {
	var asHTML bool

	cmd := &cobra.Command{
		Use:   "report ID",
		Short: "Write a markdown report of a tower and its history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.guard(timelineRoute); err != nil {
				return err
			}
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			tower, err := c.app.Workspace.Towers.Fetch(cmd.Context(), id)
			if err != nil {
				return err
			}
			events, err := c.app.Workspace.Towers.FetchHistory(cmd.Context(), id)
			if err != nil {
				return err
			}

			out := TowerReport(tower, events)
			if asHTML {
				if out, err = RenderMarkdown(out); err != nil {
					return err
				}
			}
			_, err = io.WriteString(cmd.OutOrStdout(), out)
			return err
		},
	}
	cmd.Flags().BoolVar(&asHTML, "html", false, "Render the report as sanitized HTML")
	return cmd
}
