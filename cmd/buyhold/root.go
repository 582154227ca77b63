package main

import (
	"github.com/rpgo/buyhold/internal/calculation"
	"github.com/rpgo/buyhold/internal/config"
	"github.com/spf13/cobra"
)

// app holds the state shared by every subcommand.
type app struct {
	configPath string
	dataDir    string
	verbose    bool
	logger     *cliLogger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "buyhold",
		Short: "Simulate fixed real withdrawals from a buy-and-hold index portfolio",
		Long: `buyhold replays a lump-sum index investment against every historical start year,
withdrawing a fixed, inflation-adjusted share of the starting principal each year.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			a.logger = newCLILogger(cmd.ErrOrStderr(), a.verbose)
		},
	}

	flags := root.PersistentFlags()
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "log per-run debug output")
	flags.StringVarP(&a.configPath, "config", "c", "", "YAML configuration file")
	flags.StringVar(&a.dataDir, "data-dir", "", "directory holding the historical data files")

	root.AddCommand(newSimulateCmd(a), newImportCmd(a), newSeriesCmd(a), newServeCmd(a))
	return root
}

// loadConfig returns the effective configuration: defaults, file, environment, then
// the persistent flags.
func (a *app) loadConfig() (*config.FileConfig, error) {
	cfg, err := config.NewInputParser().Load(a.configPath)
	if err != nil {
		return nil, err
	}
	if a.dataDir != "" {
		cfg.Data.Dir = a.dataDir
	}
	return cfg, nil
}

func (a *app) dataManager(dir string) *calculation.HistoricalDataManager {
	m := calculation.NewHistoricalDataManager(dir)
	m.Logger = a.logger
	return m
}
