package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"modelarena/internal/attach"
	"modelarena/internal/orchestrator"
	"modelarena/internal/ui"
)

func newCompareCommand(opts *rootOptions) *cobra.Command {
	var (
		modelIDs []string
		files    []string
		asJSON   bool
	)

	cmd := &cobra.Command{
		Use:   "compare <prompt>",
		Short: "Send one prompt to several models and compare the answers",
		Example: `  modelarena compare "Explain quicksort"
  modelarena compare --models gpt-4,command-r "Write a limerick"
  modelarena compare -f main.go "Review this code"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.load(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer a.close()

			if len(modelIDs) == 0 {
				modelIDs = a.cfg.Defaults.Models
			}
			infos, missing := a.catalog.Resolve(modelIDs)
			if len(missing) > 0 {
				return fmt.Errorf("unknown model: %s", strings.Join(missing, ", "))
			}

			atts := make([]attach.Attachment, 0, len(files))
			for _, f := range files {
				att, err := attach.Load(f)
				if err != nil {
					return err
				}
				atts = append(atts, att)
			}

			prompt := attach.Prepend(strings.Join(args, " "), atts...)
			cmp, err := a.orch.Compare(cmd.Context(), prompt, infos)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(cmp)
			}

			name := func(id string) string {
				if info, ok := a.catalog.Info(id); ok {
					return info.Name
				}
				return id
			}
			fmt.Fprintln(out, ui.RenderComparison(cmp, name))
			for _, r := range cmp.Results {
				printAnswer(out, name(r.ModelID), r)
			}
			return nil
		},
	}

	cmd.Flags().StringSliceVarP(&modelIDs, "models", "m", nil, "Model ids to compare (default defaults.models)")
	cmd.Flags().StringArrayVarP(&files, "file", "f", nil, "Attach a file to the prompt (repeatable)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the comparison as JSON")

	return cmd
}

func printAnswer(w io.Writer, name string, r orchestrator.Result) {
	fmt.Fprintf(w, "\n## %s\n\n%s\n", name, r.Content)
}
