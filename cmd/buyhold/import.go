package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rpgo/buyhold/internal/calculation"
	"github.com/spf13/cobra"
)

func newImportCmd(a *app) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Build the yearly market table from the raw price and inflation files",
		Long: fmt.Sprintf(`import reads %s (daily prices) and %s (monthly inflation)
from the data directory and writes the merged yearly table used by simulate.`,
			calculation.PriceFileName, calculation.InflationFileName),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.loadConfig()
			if err != nil {
				return err
			}
			records, err := a.dataManager(cfg.Data.Dir).ImportRaw()
			if err != nil {
				return err
			}

			if out == "-" {
				return calculation.WriteYearlyCSV(cmd.OutOrStdout(), records)
			}
			if out == "" {
				out = filepath.Join(cfg.Data.Dir, calculation.YearlyFileName)
			}
			if err := writeFile(out, func(w io.Writer) error { return calculation.WriteYearlyCSV(w, records) }); err != nil {
				return err
			}
			a.logger.Infof("imported %d years (%d-%d) into %s", len(records), records[0].Year, records[len(records)-1].Year, out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default <data-dir>/"+calculation.YearlyFileName+", - for stdout)")
	return cmd
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
