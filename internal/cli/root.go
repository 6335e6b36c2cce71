package cli

import (
	"fmt"
	"os"

	sonic "github.com/bytedance/sonic"
	"github.com/riskibarqy/mlb-predictions/internal/app"
	"github.com/riskibarqy/mlb-predictions/internal/config"
	"github.com/riskibarqy/mlb-predictions/internal/platform/logging"
	"github.com/spf13/cobra"
)

// AppLoader builds the application the subcommands run against.
type AppLoader func() (*app.App, error)

// LoadFromEnv reads the service configuration. Logs go to stderr so that
// stdout stays machine readable.
func LoadFromEnv() (*app.App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logger := logging.NewJSONWriter(os.Stderr, cfg.LogLevel)
	logging.SetDefault(logger)
	return app.New(cfg, logger)
}

// NewRootCmd wires every subcommand. The loader runs lazily so that help
// and version never touch the environment.
func NewRootCmd(load AppLoader, version string) *cobra.Command {
	root := &cobra.Command{
		Use:   "mlbctl",
		Short: "Operate the MLB prediction service from the command line",
		Long: `mlbctl runs the same pitcher reconciliation, schedule resolution and
prediction scoring as the HTTP service, sharing its cache directory.

Example:
  mlbctl predict --date 2025-04-16
  mlbctl pitcher "New York Yankees" "Gerrit Cole"
  mlbctl cache clear`,
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	root.AddCommand(
		newPredictCmd(load),
		newGamesCmd(load),
		newPitcherCmd(load),
		newCacheCmd(load),
		&cobra.Command{
			Use:   "version",
			Short: "Print version information",
			Run: func(cmd *cobra.Command, _ []string) {
				fmt.Fprintf(cmd.OutOrStdout(), "mlbctl %s\n", version)
			},
		},
	)
	return root
}

func writeJSON(cmd *cobra.Command, value any) error {
	raw, err := sonic.ConfigStd.MarshalIndent(value, "", "  ")
	if err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(raw))
	return err
}
