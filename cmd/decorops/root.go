package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"decorops/internal/config"
	"decorops/internal/dataservice"
	"decorops/internal/logging"
)

var (
	cfgFile string
	cfg     config.Config
	logger  *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:           "decorops",
	Short:         "Decor operations dashboard backend",
	Long:          `Serves the decor studio dashboard: the event stage board, costing, materials, inventory and reports.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return err
		}
		logger, err = logging.New(cfg.Logging.Level, cfg.Logging.Format)
		if err != nil {
			return fmt.Errorf("init logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")
}

func newDataClient() *dataservice.Client {
	return dataservice.New(cfg.DataService.BaseURL, cfg.DataService.Token, cfg.DataService.Timeout, logger)
}
