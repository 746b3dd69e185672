package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/ericfisherdev/towerpanel/internal/domain/model"
)

const providersRoute = "/admin/providers"

func (c *cli) providersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "providers",
		Aliases: []string{"provider"},
		Short:   "List and manage providers",
	}
	cmd.AddCommand(
		c.providersListCmd(),
		c.providersCreateCmd(),
		c.providersUpdateCmd(),
		c.providersDeleteCmd(),
	)
	return cmd
}

func (c *cli) printProvider(cmd *cobra.Command, p model.Provider) error {
	return c.emit(cmd, p, func(w io.Writer) error {
		return renderProviders(w, c.app.Palette, []model.Provider{p})
	})
}

func (c *cli) providersListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all providers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store := c.app.Workspace.Providers
			if err := store.FetchAll(cmd.Context()); err != nil {
				return err
			}
			providers := store.List()
			return c.emit(cmd, providers, func(w io.Writer) error {
				return renderProviders(w, c.app.Palette, providers)
			})
		},
	}
}

func (c *cli) providersCreateCmd() *cobra.Command {
	var in model.ProviderInput
	var localPatch bool

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a provider",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := c.guard(providersRoute); err != nil {
				return err
			}
			if in.Name == "" {
				return errors.New("--name is required")
			}
			provider, err := c.app.Workspace.Providers.Create(cmd.Context(), in, mutationOpts(localPatch)...)
			if err != nil && provider.ID == 0 {
				return err
			}
			if printErr := c.printProvider(cmd, provider); printErr != nil {
				return printErr
			}
			return err
		},
	}
	cmd.Flags().StringVar(&in.Name, "name", "", "Provider name")
	cmd.Flags().StringVar(&in.Address, "address", "", "Provider address")
	cmd.Flags().BoolVar(&localPatch, "local-patch", false, "Patch the cached list instead of refetching it")
	return cmd
}

func (c *cli) providersUpdateCmd() *cobra.Command {
	var name, address string
	var localPatch bool

	cmd := &cobra.Command{
		Use:   "update ID",
		Short: "Update a provider",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.guard(providersRoute); err != nil {
				return err
			}
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			store := c.app.Workspace.Providers
			if err := store.FetchAll(cmd.Context()); err != nil {
				return err
			}
			current, ok := store.Get(id)
			if !ok {
				return fmt.Errorf("provider %d: %w", id, model.ErrNotFound)
			}

			in := model.ProviderInput{Name: current.Name, Address: current.Address}
			if cmd.Flags().Changed("name") {
				in.Name = name
			}
			if cmd.Flags().Changed("address") {
				in.Address = address
			}

			provider, err := store.Update(cmd.Context(), id, in, mutationOpts(localPatch)...)
			if err != nil && provider.ID == 0 {
				return err
			}
			if printErr := c.printProvider(cmd, provider); printErr != nil {
				return printErr
			}
			return err
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "Provider name")
	cmd.Flags().StringVar(&address, "address", "", "Provider address")
	cmd.Flags().BoolVar(&localPatch, "local-patch", false, "Patch the cached list instead of refetching it")
	return cmd
}

func (c *cli) providersDeleteCmd() *cobra.Command {
	var localPatch bool

	cmd := &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a provider",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.guard(providersRoute); err != nil {
				return err
			}
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := c.app.Workspace.Providers.Delete(cmd.Context(), id, mutationOpts(localPatch)...); err != nil {
				return err
			}
			return c.emit(cmd, map[string]any{"deleted": id}, func(w io.Writer) error {
				_, err := fmt.Fprintf(w, "Provider %d deleted.\n", id)
				return err
			})
		},
	}
	cmd.Flags().BoolVar(&localPatch, "local-patch", false, "Patch the cached list instead of refetching it")
	return cmd
}
