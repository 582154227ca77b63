package api

import (
	"github.com/rpgo/buyhold/internal/calculation"
	"github.com/rpgo/buyhold/internal/domain"
	"github.com/rpgo/buyhold/internal/storage"
	"github.com/shopspring/decimal"
)

// SimulateRequest is the body of POST /api/v1/simulate. Zero values fall back to the
// default configuration; StartYears limits the batch to the listed start years.
type SimulateRequest struct {
	SpendingPercentage decimal.Decimal `json:"spending_percentage"`
	NumYears           int             `json:"num_years"`
	StartingPrincipal  decimal.Decimal `json:"starting_principal"`
	StartYears         []int           `json:"start_years,omitempty"`
	Format             string          `json:"format,omitempty"` // any report format; empty means JSON
	Save               bool            `json:"save,omitempty"`
}

// SimulationConfig applies the defaults to the request fields.
func (r SimulateRequest) SimulationConfig() domain.SimulationConfig {
	cfg := domain.DefaultSimulationConfig()
	if !r.SpendingPercentage.IsZero() {
		cfg.SpendingPercentage = r.SpendingPercentage
	}
	if r.NumYears != 0 {
		cfg.NumYears = r.NumYears
	}
	if !r.StartingPrincipal.IsZero() {
		cfg.StartingPrincipal = r.StartingPrincipal
	}
	return cfg
}

// SimulateResponse wraps a batch returned as JSON.
type SimulateResponse struct {
	ID     string              `json:"id,omitempty"`
	Cached bool                `json:"cached"`
	Result *domain.BatchResult `json:"result"`
}

// SeriesResponse describes the loaded history.
type SeriesResponse struct {
	Statistics  calculation.SeriesStatistics `json:"statistics"`
	StartYears  []int                        `json:"eligible_start_years"`
	ForNumYears int                          `json:"for_num_years"`
}

// BatchListResponse lists stored batches.
type BatchListResponse struct {
	Batches []storage.BatchRecord `json:"batches"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error details
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
