package calculation

import (
	"context"
	"fmt"
	"runtime"
	"sort"
	"sync"

	"github.com/rpgo/buyhold/internal/domain"
)

// Harness runs the simulator once per start year and collects the batch.
type Harness struct {
	Series *ReturnSeries
	// Workers bounds concurrent runs. Zero or less means runtime.NumCPU(); 1 runs sequentially.
	Workers int
	Logger  Logger
}

// NewHarness creates a harness over series.
func NewHarness(series *ReturnSeries) *Harness {
	return &Harness{
		Series: series,
		Logger: NopLogger{},
	}
}

// SetLogger sets the logger for the harness. If nil is provided, a no-op logger is used.
func (h *Harness) SetLogger(l Logger) {
	if l == nil {
		h.Logger = NopLogger{}
		return
	}
	h.Logger = l
}

// RunAll runs one simulation per eligible start year, ordered by start year.
// It fails with domain.ErrConfig when the history is too short for the horizon.
func (h *Harness) RunAll(ctx context.Context, cfg domain.SimulationConfig) (*domain.BatchResult, error) {
	if err := h.check(cfg); err != nil {
		return nil, err
	}
	years := h.Series.EligibleStartYears(cfg.NumYears)
	if len(years) == 0 {
		return nil, fmt.Errorf("%w: %d-year horizon exceeds the %d simulatable years of history (%d-%d)",
			domain.ErrConfig, cfg.NumYears, h.Series.SimulatableYears(), h.Series.FirstYear(), h.Series.LastYear())
	}
	return h.run(ctx, cfg, years)
}

// RunYears runs the given start years only. Every year must be eligible for the horizon.
func (h *Harness) RunYears(ctx context.Context, cfg domain.SimulationConfig, startYears []int) (*domain.BatchResult, error) {
	if err := h.check(cfg); err != nil {
		return nil, err
	}
	if len(startYears) == 0 {
		return nil, fmt.Errorf("%w: no start years requested", domain.ErrConfig)
	}

	years := make([]int, 0, len(startYears))
	seen := make(map[int]bool, len(startYears))
	for _, y := range startYears {
		if seen[y] {
			continue
		}
		seen[y] = true
		if !h.Series.IsEligible(y, cfg.NumYears) {
			return nil, fmt.Errorf("%w: a %d-year run cannot start in %d (simulatable years %d-%d)",
				domain.ErrConfig, cfg.NumYears, y, h.Series.FirstYear(), h.Series.LastYear())
		}
		years = append(years, y)
	}
	sort.Ints(years)
	return h.run(ctx, cfg, years)
}

func (h *Harness) check(cfg domain.SimulationConfig) error {
	if h.Series == nil {
		return fmt.Errorf("%w: historical series not loaded", domain.ErrData)
	}
	return cfg.Validate()
}

func (h *Harness) run(ctx context.Context, cfg domain.SimulationConfig, years []int) (*domain.BatchResult, error) {
	sim := NewSimulator(h.Series)
	sim.SetLogger(h.logger())

	workers := h.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	results := make([]domain.RunResult, len(years))
	errs := make([]error, len(years))

	if workers == 1 {
		for i, year := range years {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			results[i], errs[i] = sim.Run(year, cfg)
		}
	} else {
		var wg sync.WaitGroup
		semaphore := make(chan struct{}, workers)
		for i, year := range years {
			wg.Add(1)
			go func(idx, startYear int) {
				defer wg.Done()
				semaphore <- struct{}{}
				defer func() { <-semaphore }()

				if err := ctx.Err(); err != nil {
					errs[idx] = err
					return
				}
				results[idx], errs[idx] = sim.Run(startYear, cfg)
			}(i, year)
		}
		wg.Wait()
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	summary := Summarize(results)
	h.logger().Infof("simulated %d start years (%d-%d) over %d years: %d survived",
		summary.NumRuns, years[0], years[len(years)-1], cfg.NumYears, summary.NumSurvived)

	return &domain.BatchResult{
		Config:  cfg,
		Series:  h.Series.Info(),
		Runs:    results,
		Summary: summary,
	}, nil
}

func (h *Harness) logger() Logger {
	if h.Logger == nil {
		return NopLogger{}
	}
	return h.Logger
}
