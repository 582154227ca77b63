// Package storage persists simulation batches in SQLite.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rpgo/buyhold/internal/domain"
	"github.com/rpgo/buyhold/internal/storage/migrations"
	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a batch ID is not in the store.
var ErrNotFound = errors.New("batch not found")

// BatchRecord is the stored header of a batch: everything except the runs.
type BatchRecord struct {
	ID        string                  `json:"id"`
	CreatedAt time.Time               `json:"created_at"`
	Config    domain.SimulationConfig `json:"config"`
	Series    domain.SeriesInfo       `json:"series"`
	Summary   domain.BatchSummary     `json:"summary"`
}

// Store persists batch results in a SQLite database.
type Store struct {
	db *sql.DB

	now   func() time.Time
	newID func() string
}

// Open opens (or creates) the database at path and applies the embedded migrations.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := filepath.Clean(path) + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := applyMigrations(context.Background(), db, migrations.FS); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{db: db, now: time.Now, newID: uuid.NewString}, nil
}

// Close closes the database handle.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// SaveBatch stores a batch with all of its runs and outcomes and returns its new ID.
func (s *Store) SaveBatch(ctx context.Context, result *domain.BatchResult) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if result == nil {
		return "", fmt.Errorf("batch result is required")
	}

	id := s.newID()
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("begin save batch: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	cfg, info, sum := result.Config, result.Series, result.Summary
	p := sum.FinalBalanceReal
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO batches (
		   id, created_at,
		   spending_percentage, num_years, starting_principal,
		   series_name, series_source, series_first_year, series_last_year, series_records,
		   num_runs, num_survived, success_rate,
		   real_p10, real_p25, real_p50, real_p75, real_p90,
		   median_years_lasted, best_start_year, worst_start_year
		 ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, s.now().UTC().UnixMilli(),
		cfg.SpendingPercentage.String(), cfg.NumYears, cfg.StartingPrincipal.String(),
		info.Name, info.Source, info.FirstYear, info.LastYear, info.Records,
		sum.NumRuns, sum.NumSurvived, sum.SuccessRate.String(),
		p.P10.String(), p.P25.String(), p.P50.String(), p.P75.String(), p.P90.String(),
		sum.MedianYearsLasted, sum.BestStartYear, sum.WorstStartYear,
	); err != nil {
		return "", fmt.Errorf("insert batch: %w", err)
	}

	runStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO runs (
		   batch_id, start_year, survived, final_balance, final_balance_real,
		   cumulative_inflation, real_gain_percent, years_lasted, depletion_year, total_withdrawn_nominal
		 ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return "", fmt.Errorf("prepare run insert: %w", err)
	}
	defer runStmt.Close()

	outcomeStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO outcomes (
		   batch_id, start_year, year_index, calendar_year, start_balance, nominal_return,
		   withdrawal_real, withdrawal_nominal, end_balance, depleted
		 ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return "", fmt.Errorf("prepare outcome insert: %w", err)
	}
	defer outcomeStmt.Close()

	for _, r := range result.Runs {
		if _, err := runStmt.ExecContext(ctx,
			id, r.StartYear, boolToInt(r.Survived), r.FinalBalance.String(), r.FinalBalanceReal.String(),
			r.CumulativeInflation.String(), r.RealGainPercent.String(), r.YearsLasted, r.DepletionYear,
			r.TotalWithdrawnNominal.String(),
		); err != nil {
			return "", fmt.Errorf("insert run %d: %w", r.StartYear, err)
		}
		for _, o := range r.Outcomes {
			if _, err := outcomeStmt.ExecContext(ctx,
				id, r.StartYear, o.YearIndex, o.CalendarYear, o.StartBalance.String(), o.NominalReturn.String(),
				o.WithdrawalAmountReal.String(), o.WithdrawalAmountNominal.String(), o.EndBalance.String(),
				boolToInt(o.Depleted),
			); err != nil {
				return "", fmt.Errorf("insert outcome %d/%d: %w", r.StartYear, o.YearIndex, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit save batch: %w", err)
	}
	return id, nil
}

const batchColumns = `id, created_at,
	spending_percentage, num_years, starting_principal,
	series_name, series_source, series_first_year, series_last_year, series_records,
	num_runs, num_survived, success_rate,
	real_p10, real_p25, real_p50, real_p75, real_p90,
	median_years_lasted, best_start_year, worst_start_year`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBatch(row rowScanner) (BatchRecord, error) {
	var (
		rec       BatchRecord
		createdAt int64
		dec       [8]string
	)
	err := row.Scan(
		&rec.ID, &createdAt,
		&dec[0], &rec.Config.NumYears, &dec[1],
		&rec.Series.Name, &rec.Series.Source, &rec.Series.FirstYear, &rec.Series.LastYear, &rec.Series.Records,
		&rec.Summary.NumRuns, &rec.Summary.NumSurvived, &dec[2],
		&dec[3], &dec[4], &dec[5], &dec[6], &dec[7],
		&rec.Summary.MedianYearsLasted, &rec.Summary.BestStartYear, &rec.Summary.WorstStartYear,
	)
	if err != nil {
		return BatchRecord{}, err
	}
	rec.CreatedAt = time.UnixMilli(createdAt).UTC()

	p := &rec.Summary.FinalBalanceReal
	targets := []*decimal.Decimal{
		&rec.Config.SpendingPercentage, &rec.Config.StartingPrincipal, &rec.Summary.SuccessRate,
		&p.P10, &p.P25, &p.P50, &p.P75, &p.P90,
	}
	if err := parseDecimals(dec[:], targets...); err != nil {
		return BatchRecord{}, fmt.Errorf("batch %s: %w", rec.ID, err)
	}
	return rec, nil
}

// LoadBatch reads a stored batch back, runs ordered by start year.
func (s *Store) LoadBatch(ctx context.Context, id string) (*domain.BatchResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, fmt.Errorf("batch id is required")
	}

	rec, err := scanBatch(s.db.QueryRowContext(ctx, `SELECT `+batchColumns+` FROM batches WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("get batch: %w", err)
	}

	runs, err := s.loadRuns(ctx, id)
	if err != nil {
		return nil, err
	}
	return &domain.BatchResult{Config: rec.Config, Series: rec.Series, Runs: runs, Summary: rec.Summary}, nil
}

func (s *Store) loadRuns(ctx context.Context, id string) ([]domain.RunResult, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT start_year, survived, final_balance, final_balance_real, cumulative_inflation,
		        real_gain_percent, years_lasted, depletion_year, total_withdrawn_nominal
		   FROM runs
		  WHERE batch_id = ?
		  ORDER BY start_year ASC`, id)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	runs := []domain.RunResult{}
	byYear := map[int]int{}
	for rows.Next() {
		var (
			r        domain.RunResult
			survived int
			dec      [5]string
		)
		if err := rows.Scan(&r.StartYear, &survived, &dec[0], &dec[1], &dec[2], &dec[3],
			&r.YearsLasted, &r.DepletionYear, &dec[4]); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		r.Survived = survived != 0
		if err := parseDecimals(dec[:], &r.FinalBalance, &r.FinalBalanceReal, &r.CumulativeInflation,
			&r.RealGainPercent, &r.TotalWithdrawnNominal); err != nil {
			return nil, fmt.Errorf("run %d: %w", r.StartYear, err)
		}
		byYear[r.StartYear] = len(runs)
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}

	outcomeRows, err := s.db.QueryContext(ctx,
		`SELECT start_year, year_index, calendar_year, start_balance, nominal_return,
		        withdrawal_real, withdrawal_nominal, end_balance, depleted
		   FROM outcomes
		  WHERE batch_id = ?
		  ORDER BY start_year ASC, year_index ASC`, id)
	if err != nil {
		return nil, fmt.Errorf("list outcomes: %w", err)
	}
	defer outcomeRows.Close()

	for outcomeRows.Next() {
		var (
			startYear int
			o         domain.YearOutcome
			depleted  int
			dec       [5]string
		)
		if err := outcomeRows.Scan(&startYear, &o.YearIndex, &o.CalendarYear,
			&dec[0], &dec[1], &dec[2], &dec[3], &dec[4], &depleted); err != nil {
			return nil, fmt.Errorf("scan outcome: %w", err)
		}
		o.Depleted = depleted != 0
		if err := parseDecimals(dec[:], &o.StartBalance, &o.NominalReturn, &o.WithdrawalAmountReal,
			&o.WithdrawalAmountNominal, &o.EndBalance); err != nil {
			return nil, fmt.Errorf("outcome %d/%d: %w", startYear, o.YearIndex, err)
		}
		i, ok := byYear[startYear]
		if !ok {
			return nil, fmt.Errorf("outcome for unknown run %d", startYear)
		}
		runs[i].Outcomes = append(runs[i].Outcomes, o)
	}
	if err := outcomeRows.Err(); err != nil {
		return nil, fmt.Errorf("list outcomes: %w", err)
	}
	return runs, nil
}

// ListBatches returns up to limit batch headers, newest first. A limit of zero or less
// returns every batch.
func (s *Store) ListBatches(ctx context.Context, limit int) ([]BatchRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	query := `SELECT ` + batchColumns + ` FROM batches ORDER BY created_at DESC, id ASC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list batches: %w", err)
	}
	defer rows.Close()

	records := []BatchRecord{}
	for rows.Next() {
		rec, err := scanBatch(rows)
		if err != nil {
			return nil, fmt.Errorf("scan batch: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list batches: %w", err)
	}
	return records, nil
}

// DeleteBatch removes a batch together with its runs and outcomes.
func (s *Store) DeleteBatch(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM batches WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete batch: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete batch: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

func parseDecimals(values []string, targets ...*decimal.Decimal) error {
	for i, target := range targets {
		d, err := decimal.NewFromString(values[i])
		if err != nil {
			return fmt.Errorf("invalid decimal %q: %w", values[i], err)
		}
		*target = d
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
