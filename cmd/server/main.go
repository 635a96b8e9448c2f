package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"discadian/internal/platform/config"
	"discadian/internal/platform/logger"
)

var (
	cfg config.Server
	log *slog.Logger
)

func newRootCmd() *cobra.Command {
	var dataDir, nationsFile string

	rootCmd := &cobra.Command{
		Use:   "discadian",
		Short: "Discord verification and reconciliation against the EarthMC registry",
		Long: `discadian verifies Discord members against their EarthMC player, keeps
guild roles aligned with each player's nation, town and county, and
periodically reconciles every verified identity with the registry.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cfg, err = config.FromEnv()
			if err != nil {
				return err
			}
			if dataDir != "" {
				cfg.DataDir = dataDir
			}
			if nationsFile != "" {
				cfg.NationsFile = nationsFile
			}
			log = logger.New(cfg.LogLevel, cfg.LogFormat)
			slog.SetDefault(log)
			return nil
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "Data directory (env: DISCADIAN_DATA_DIR)")
	rootCmd.PersistentFlags().StringVar(&nationsFile, "nations", "", "Nations config file (env: DISCADIAN_NATIONS_FILE)")

	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newReconcileCmd())
	rootCmd.AddCommand(newMigrateCmd())
	rootCmd.AddCommand(newExportCmd())
	rootCmd.AddCommand(newRebuildIndexesCmd())
	rootCmd.AddCommand(newCleanupCmd())
	rootCmd.AddCommand(newTokenCmd())

	return rootCmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
