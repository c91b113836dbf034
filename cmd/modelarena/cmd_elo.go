package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"modelarena/internal/rating"
)

func newEloCommand() *cobra.Command {
	var (
		draw      bool
		k         int
		overrides []string
	)

	cmd := &cobra.Command{
		Use:   "elo <winner> <loser>",
		Short: "Show how one result would move two ratings",
		Long: `Apply a single result to the built-in ratings and print the change.

Models without a built-in rating start at 1500. Use --rating id=value to
override a starting rating.`,
		Example: `  modelarena elo command-r gpt-4
  modelarena elo gpt-4 claude-3-opus --draw
  modelarena elo my-model gpt-4 --rating my-model=1400`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			winner, loser := args[0], args[1]
			if winner == loser {
				return rating.ErrSameModel
			}

			baseline := rating.BuiltinRatings()
			for _, o := range overrides {
				id, value, ok := strings.Cut(o, "=")
				if !ok {
					return fmt.Errorf("invalid --rating %q, want id=value", o)
				}
				r, err := strconv.Atoi(value)
				if err != nil {
					return fmt.Errorf("invalid --rating %q: %w", o, err)
				}
				baseline[id] = r
			}

			updated := rating.UpdateK(baseline, winner, loser, draw, k)

			out := cmd.OutOrStdout()
			for _, id := range []string{winner, loser} {
				before := baseline.Get(id)
				after := updated[id]
				fmt.Fprintf(out, "%-16s %5d -> %5d (%+d)\n", id, before, after, after-before)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&draw, "draw", false, "Record a draw instead of a win")
	cmd.Flags().IntVar(&k, "k", rating.KFactor, "Sensitivity constant")
	cmd.Flags().StringArrayVar(&overrides, "rating", nil, "Starting rating override as id=value (repeatable)")

	return cmd
}
