package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rpgo/buyhold/internal/calculation"
	"github.com/rpgo/buyhold/internal/config"
	"github.com/rpgo/buyhold/internal/domain"
	"github.com/rpgo/buyhold/internal/output"
	"github.com/rpgo/buyhold/internal/storage"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

type simulateOptions struct {
	spending   string
	numYears   int
	principal  string
	onlyYear   int
	workers    int
	format     string
	csvPrefix  string
	sqlitePath string
	saveReport string
}

func newSimulateCmd(a *app) *cobra.Command {
	opts := &simulateOptions{}
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Run the simulation for every eligible start year",
		Example: `  buyhold simulate --spending-percentage 4 --num-years 30
  buyhold simulate --only-year 1966 --format console
  buyhold simulate --output-csv-prefix out/run --sqlite results.db`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.loadConfig()
			if err != nil {
				return err
			}
			if err := opts.apply(cmd, cfg); err != nil {
				return err
			}
			return a.simulate(cmd, cfg, opts.saveReport)
		},
	}

	defaults := domain.DefaultSimulationConfig()
	flags := cmd.Flags()
	flags.StringVarP(&opts.spending, "spending-percentage", "s", defaults.SpendingPercentage.String(), "yearly withdrawal as a percentage of the starting principal")
	flags.IntVarP(&opts.numYears, "num-years", "n", defaults.NumYears, "years each run must fund")
	flags.StringVarP(&opts.principal, "starting-principal", "p", defaults.StartingPrincipal.String(), "initial investment in dollars")
	flags.IntVar(&opts.onlyYear, "only-year", 0, "simulate this start year only")
	flags.IntVarP(&opts.workers, "workers", "w", 0, "concurrent runs (0 = every CPU, 1 = sequential)")
	flags.StringVarP(&opts.format, "format", "f", "", fmt.Sprintf("report format (%s)", strings.Join(output.AvailableFormatterNames(), ", ")))
	flags.StringVar(&opts.csvPrefix, "output-csv-prefix", "", "write tab-delimited tables named <prefix>_*.csv")
	flags.StringVar(&opts.sqlitePath, "sqlite", "", "save the batch to this SQLite database")
	flags.StringVar(&opts.saveReport, "save-report", "", "also write the report to a timestamped file in this directory")
	return cmd
}

// apply copies explicitly set flags over the loaded configuration and revalidates it.
func (o *simulateOptions) apply(cmd *cobra.Command, cfg *config.FileConfig) error {
	flags := cmd.Flags()
	if flags.Changed("spending-percentage") {
		v, err := decimal.NewFromString(o.spending)
		if err != nil {
			return fmt.Errorf("%w: invalid --spending-percentage %q", domain.ErrConfig, o.spending)
		}
		cfg.Simulation.SpendingPercentage = v
	}
	if flags.Changed("num-years") {
		cfg.Simulation.NumYears = o.numYears
	}
	if flags.Changed("starting-principal") {
		v, err := decimal.NewFromString(o.principal)
		if err != nil {
			return fmt.Errorf("%w: invalid --starting-principal %q", domain.ErrConfig, o.principal)
		}
		cfg.Simulation.StartingPrincipal = v
	}
	if flags.Changed("only-year") {
		cfg.Data.OnlyYear = o.onlyYear
	}
	if flags.Changed("workers") {
		cfg.Data.Workers = o.workers
	}
	if flags.Changed("format") {
		cfg.Output.Format = o.format
	}
	if flags.Changed("output-csv-prefix") {
		cfg.Output.CSVPrefix = o.csvPrefix
	}
	if flags.Changed("sqlite") {
		cfg.Output.SQLitePath = o.sqlitePath
	}

	if err := config.NewInputParser().ValidateConfiguration(cfg); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}
	if output.GetFormatterByName(cfg.Output.Format) == nil {
		return fmt.Errorf("%w: %q. Try one of: %s", output.ErrUnsupportedFormat, cfg.Output.Format,
			strings.Join(output.AvailableFormatterNames(), ", "))
	}
	return nil
}

// simulate runs the whole batch before writing anything, so a data or configuration
// error never leaves a partial report behind.
func (a *app) simulate(cmd *cobra.Command, cfg *config.FileConfig, saveReport string) error {
	series, err := a.dataManager(cfg.Data.Dir).LoadSeries()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	harness := calculation.NewHarness(series)
	harness.Workers = cfg.Data.Workers
	harness.SetLogger(a.logger)

	var result *domain.BatchResult
	if cfg.Data.OnlyYear != 0 {
		result, err = harness.RunYears(ctx, cfg.Simulation, []int{cfg.Data.OnlyYear})
	} else {
		result, err = harness.RunAll(ctx, cfg.Simulation)
	}
	if err != nil {
		return err
	}

	if err := output.WriteReport(cmd.OutOrStdout(), result, cfg.Output.Format); err != nil {
		return err
	}

	if cfg.Output.CSVPrefix != "" {
		paths, err := output.NewPrefixFileWriter(cfg.Output.CSVPrefix).WriteAll(result, series)
		if err != nil {
			return err
		}
		a.logger.Infof("wrote %d tables with prefix %s", len(paths), cfg.Output.CSVPrefix)
	}

	if saveReport != "" {
		path, err := output.GenerateReport(result, cfg.Output.Format, saveReport)
		if err != nil {
			return err
		}
		a.logger.Infof("report saved to %s", path)
	}

	if cfg.Output.SQLitePath != "" {
		id, err := saveBatch(ctx, cfg.Output.SQLitePath, result)
		if err != nil {
			return err
		}
		a.logger.Infof("saved batch %s to %s", id, cfg.Output.SQLitePath)
	}
	return nil
}

func saveBatch(ctx context.Context, path string, result *domain.BatchResult) (string, error) {
	store, err := storage.Open(path)
	if err != nil {
		return "", err
	}
	defer store.Close()
	return store.SaveBatch(ctx, result)
}
