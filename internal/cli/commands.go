package cli

import (
	"fmt"
	"strings"

	"github.com/riskibarqy/mlb-predictions/internal/domain/prediction"
	"github.com/spf13/cobra"
)

func newPredictCmd(load AppLoader) *cobra.Command {
	var (
		date    string
		kind    string
		refresh bool
		asJSON  bool
	)

	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Score every game of a date",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := load()
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			if kind != "" {
				prop, err := prediction.ParseProposition(kind)
				if err != nil {
					return err
				}
				items, metadata, err := a.Predictions.GetPredictionsByType(ctx, date, string(prop), refresh)
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd, map[string]any{"predictions": items, "metadata": metadata})
				}
				return formatPredictions(cmd.OutOrStdout(), prop, items)
			}

			set, err := a.Predictions.GetAllPredictions(ctx, date, refresh)
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd, set)
			}
			for _, prop := range prediction.AllPropositions {
				if err := formatPredictions(cmd.OutOrStdout(), prop, set.Predictions[prop]); err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "date as YYYY-MM-DD (default: today in APP_TIMEZONE)")
	cmd.Flags().StringVar(&kind, "type", "", "only this proposition (key or alias)")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "clear caches and fetch fresh data")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of tables")
	return cmd
}

func newGamesCmd(load AppLoader) *cobra.Command {
	var (
		date    string
		refresh bool
		asJSON  bool
	)

	cmd := &cobra.Command{
		Use:   "games",
		Short: "List the resolved schedule of a date",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := load()
			if err != nil {
				return err
			}
			schedule, err := a.Schedule.GetGamesForDate(cmd.Context(), date, refresh)
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd, schedule)
			}
			return formatGames(cmd.OutOrStdout(), schedule)
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "date as YYYY-MM-DD (default: today in APP_TIMEZONE)")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "bypass cached schedule and pitcher lookups")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of a table")
	return cmd
}

func newPitcherCmd(load AppLoader) *cobra.Command {
	var (
		refresh bool
		asJSON  bool
	)

	cmd := &cobra.Command{
		Use:   "pitcher <team> <name>",
		Short: "Resolve one pitcher's ERA through the source chain",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := load()
			if err != nil {
				return err
			}
			fact := a.Reconciler.ResolvePitcherERA(cmd.Context(), strings.TrimSpace(args[0]), strings.TrimSpace(args[1]), refresh)
			if asJSON {
				return writeJSON(cmd, fact)
			}
			return formatFact(cmd.OutOrStdout(), fact)
		},
	}

	cmd.Flags().BoolVar(&refresh, "refresh", false, "skip cached lookups")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of a table")
	return cmd
}

func newCacheCmd(load AppLoader) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect or reset the on-disk cache",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Remove every cached namespace",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := load()
			if err != nil {
				return err
			}
			a.Store.ClearAll(cmd.Context())
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "cleared cache under %s\n", a.Store.Dir())
			return err
		},
	})
	return cmd
}
