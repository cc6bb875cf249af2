package main

import (
	"encoding/json"

	"github.com/spf13/cobra"
)

func (a *app) integrationsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "integrations",
		Aliases: []string{"integration"},
		Short:   "Inspect configured scrape targets",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List all integrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			list, err := a.client().Integrations().List(cmd.Context())
			if err != nil {
				return err
			}
			renderIntegrations(cmd.OutOrStdout(), list)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "get <origin>",
		Short: "Show the active integration for an origin",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := a.client().Integrations().GetByOrigin(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(in)
		},
	})
	return cmd
}
