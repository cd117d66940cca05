package carrierctl

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Apurer/go-gin-carrier-checkout/internal/domains/shipping/adapters/seed"
	shipdomain "github.com/Apurer/go-gin-carrier-checkout/internal/domains/shipping/domain"
)

// NewInstancesCommand groups the shipping instance admin commands.
func NewInstancesCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "instances",
		Short: "Manage shipping method instances",
	}
	cmd.AddCommand(newInstancesListCommand(rootOpts))
	cmd.AddCommand(newInstancesImportCommand(rootOpts))
	cmd.AddCommand(newInstancesExportCommand(rootOpts))
	return cmd
}

func newInstancesListCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List configured instances",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), rootOpts.Timeout)
			defer cancel()
			client, err := newClient(rootOpts)
			if err != nil {
				return err
			}
			instances, err := client.Instances(ctx)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if rootOpts.Format == "json" {
				return writeJSON(out, instances)
			}
			if len(instances) == 0 {
				fmt.Fprintln(out, "no shipping instances configured")
				return nil
			}
			for _, inst := range instances {
				fmt.Fprintf(out, "%d\t%s\t%s\t%s\n", inst.ID, inst.MethodID, inst.Title, strings.Join(inst.Options, ", "))
			}
			return nil
		},
	}
}

func newInstancesImportCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "import <seed.yaml>",
		Short: "Configure instances from a YAML seed file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			file, err := seed.Load(args[0])
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), rootOpts.Timeout)
			defer cancel()
			client, err := newClient(rootOpts)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, entry := range file.Instances {
				inst, err := client.ConfigureInstance(ctx, entry)
				if err != nil {
					return fmt.Errorf("configure instance %d: %w", entry.ID, err)
				}
				if rootOpts.Format == "text" {
					fmt.Fprintf(out, "configured instance %d (%s)\n", inst.ID, inst.MethodID)
				}
			}
			if rootOpts.Format == "json" {
				return writeJSON(out, map[string]int{"configured": len(file.Instances)})
			}
			return nil
		},
	}
}

func newInstancesExportCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "export",
		Short: "Write the configured instances as a YAML seed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), rootOpts.Timeout)
			defer cancel()
			client, err := newClient(rootOpts)
			if err != nil {
				return err
			}
			instances, err := client.Instances(ctx)
			if err != nil {
				return err
			}
			converted := make([]*shipdomain.Instance, 0, len(instances))
			for _, inst := range instances {
				converted = append(converted, inst.Domain())
			}
			return seed.Export(cmd.OutOrStdout(), converted)
		},
	}
}
