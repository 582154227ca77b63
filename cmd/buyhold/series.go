package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/rpgo/buyhold/internal/calculation"
	"github.com/rpgo/buyhold/internal/domain"
	"github.com/rpgo/buyhold/internal/output"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newSeriesCmd(a *app) *cobra.Command {
	var (
		numYears int
		format   string
	)
	cmd := &cobra.Command{
		Use:   "series",
		Short: "Describe the loaded historical series",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.loadConfig()
			if err != nil {
				return err
			}
			series, err := a.dataManager(cfg.Data.Dir).LoadSeries()
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("num-years") {
				numYears = cfg.Simulation.NumYears
			}
			if numYears <= 0 {
				return fmt.Errorf("%w: number of years must be positive, got %d", domain.ErrConfig, numYears)
			}

			stats := series.Statistics()
			w := cmd.OutOrStdout()
			switch format {
			case "json":
				enc := json.NewEncoder(w)
				enc.SetIndent("", "  ")
				return enc.Encode(stats)
			case "yaml", "yml":
				return yaml.NewEncoder(w).Encode(stats)
			case "", "text":
				return writeSeriesText(w, stats, series.EligibleStartYears(numYears), numYears)
			default:
				return fmt.Errorf("%w: %q (use text, json or yaml)", output.ErrUnsupportedFormat, format)
			}
		},
	}
	cmd.Flags().IntVarP(&numYears, "num-years", "n", 0, "horizon used to count eligible start years (default from config)")
	cmd.Flags().StringVarP(&format, "format", "f", "text", "text, json or yaml")
	return cmd
}

func writeSeriesText(w io.Writer, stats calculation.SeriesStatistics, eligible []int, numYears int) error {
	info := stats.Info
	lines := []string{
		fmt.Sprintf("Series: %s", info.Name),
		fmt.Sprintf("Source: %s", info.Source),
		fmt.Sprintf("Records: %d, simulatable years %d-%d", info.Records, info.FirstYear, info.LastYear),
		distributionLine("Nominal return", stats.Returns),
		distributionLine("Inflation", stats.Inflation),
	}
	if len(eligible) == 0 {
		lines = append(lines, fmt.Sprintf("No start year can fund %d years", numYears))
	} else {
		lines = append(lines, fmt.Sprintf("Start years for %d-year runs: %d (%d-%d)",
			numYears, len(eligible), eligible[0], eligible[len(eligible)-1]))
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

func distributionLine(label string, d calculation.DistributionStats) string {
	return fmt.Sprintf("%s: mean %s, median %s, std dev %s, min %s, max %s (%d years)", label,
		output.FormatFraction(d.Mean), output.FormatFraction(d.Median), output.FormatFraction(d.StdDev),
		output.FormatFraction(d.Min), output.FormatFraction(d.Max), d.Count)
}
