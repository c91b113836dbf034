package main

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"modelarena/internal/models"
)

func newModelsCommand(opts *rootOptions) *cobra.Command {
	var provider string

	cmd := &cobra.Command{
		Use:   "models",
		Short: "List the available models with pricing and ratings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := opts.load(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer a.close()

			infos := a.catalog.Infos()
			if provider != "" {
				infos = a.catalog.ByProvider(models.Provider(provider))
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, modelTable(infos, a.ladder.Rating))
			fmt.Fprintf(out, "%d of %d models\n", len(infos), a.catalog.Count())
			return nil
		},
	}

	cmd.Flags().StringVarP(&provider, "provider", "p", "", "Only list models served by this provider")

	return cmd
}

func modelTable(infos []models.ModelInfo, elo func(string) int) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("ID", "NAME", "PROVIDER", "IN $/1K", "OUT $/1K", "CONTEXT", "ELO")
	for _, info := range infos {
		t.Row(
			info.ID,
			info.Name,
			string(info.Provider),
			fmt.Sprintf("%.4f", info.InputCostPer1K),
			fmt.Sprintf("%.4f", info.OutputCostPer1K),
			fmt.Sprintf("%d", info.ContextWindow),
			fmt.Sprintf("%d", elo(info.ID)),
		)
	}
	return t.String()
}
