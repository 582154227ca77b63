package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rpgo/buyhold/internal/calculation"
	"github.com/rpgo/buyhold/internal/domain"
	"github.com/rpgo/buyhold/internal/storage"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// testSeries covers 2000-2005; without a final close, 2000-2004 are simulatable.
func testSeries(t *testing.T) *calculation.ReturnSeries {
	t.Helper()
	index := []int64{100, 110, 121, 115, 130, 140}
	var records []domain.YearlyMarketRecord
	for i, v := range index {
		records = append(records, domain.YearlyMarketRecord{
			Year:       2000 + i,
			IndexValue: decimal.NewFromInt(v),
			CPI:        decimal.NewFromInt(100 + int64(2*i)),
		})
	}
	series, err := calculation.NewReturnSeries(records)
	require.NoError(t, err)
	series.Name = "test index"
	series.Source = "memory"
	return series
}

type fakeStore struct {
	mu      sync.Mutex
	batches map[string]*domain.BatchResult
	order   []string
}

func newFakeStore() *fakeStore {
	return &fakeStore{batches: map[string]*domain.BatchResult{}}
}

func (f *fakeStore) SaveBatch(_ context.Context, result *domain.BatchResult) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := fmt.Sprintf("batch-%d", len(f.order)+1)
	f.batches[id] = result
	f.order = append(f.order, id)
	return id, nil
}

func (f *fakeStore) LoadBatch(_ context.Context, id string) (*domain.BatchResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.batches[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", storage.ErrNotFound, id)
	}
	return b, nil
}

func (f *fakeStore) ListBatches(_ context.Context, limit int) ([]storage.BatchRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []storage.BatchRecord
	for i := len(f.order) - 1; i >= 0; i-- {
		if limit > 0 && len(out) == limit {
			break
		}
		b := f.batches[f.order[i]]
		out = append(out, storage.BatchRecord{ID: f.order[i], Config: b.Config, Series: b.Series, Summary: b.Summary})
	}
	return out, nil
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) ErrorDetail {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Error
}

func TestHealth(t *testing.T) {
	srv := NewServer(testSeries(t), Options{})
	w := do(t, srv.Handler(), http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestSimulate(t *testing.T) {
	srv := NewServer(testSeries(t), Options{Workers: 2})
	h := srv.Handler()

	w := do(t, h, http.MethodPost, "/api/v1/simulate", `{"spending_percentage":5,"num_years":3,"starting_principal":"100000"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp SimulateResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Cached)
	assert.Empty(t, resp.ID)
	require.Len(t, resp.Result.Runs, 3)
	assert.Equal(t, []int{2000, 2001, 2002}, []int{resp.Result.Runs[0].StartYear, resp.Result.Runs[1].StartYear, resp.Result.Runs[2].StartYear})
	assert.True(t, resp.Result.Config.StartingPrincipal.Equal(decimal.NewFromInt(100000)))
	assert.Equal(t, "test index", resp.Result.Series.Name)

	// identical request is answered from the cache
	w = do(t, h, http.MethodPost, "/api/v1/simulate", `{"spending_percentage":"5","num_years":3,"starting_principal":100000}`)
	require.Equal(t, http.StatusOK, w.Code)
	var again SimulateResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &again))
	assert.True(t, again.Cached)
	require.Len(t, again.Result.Runs, 3)
	assert.True(t, again.Result.Runs[2].FinalBalance.Equal(resp.Result.Runs[2].FinalBalance))
}

func TestSimulate_StartYears(t *testing.T) {
	srv := NewServer(testSeries(t), Options{})
	w := do(t, srv.Handler(), http.MethodPost, "/api/v1/simulate", `{"num_years":2,"start_years":[2003,2000]}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp SimulateResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Result.Runs, 2)
	assert.Equal(t, 2000, resp.Result.Runs[0].StartYear)
	assert.Equal(t, 2003, resp.Result.Runs[1].StartYear)
}

func TestSimulate_Errors(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantCode   string
	}{
		{"malformed body", `{"num_years":`, http.StatusBadRequest, "INVALID_REQUEST"},
		{"default horizon longer than history", `{}`, http.StatusBadRequest, "INVALID_CONFIG"},
		{"spending above 100", `{"num_years":2,"spending_percentage":150}`, http.StatusBadRequest, "INVALID_CONFIG"},
		{"ineligible start year", `{"num_years":3,"start_years":[2004]}`, http.StatusBadRequest, "INVALID_CONFIG"},
		{"unknown format", `{"num_years":2,"format":"pdf"}`, http.StatusBadRequest, "UNSUPPORTED_FORMAT"},
		{"save without store", `{"num_years":2,"save":true}`, http.StatusNotImplemented, "STORE_DISABLED"},
	}
	srv := NewServer(testSeries(t), Options{})
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, srv.Handler(), http.MethodPost, "/api/v1/simulate", tt.body)
			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantCode, decodeError(t, w).Code)
		})
	}
}

func TestSimulate_Report(t *testing.T) {
	srv := NewServer(testSeries(t), Options{})

	w := do(t, srv.Handler(), http.MethodPost, "/api/v1/simulate", `{"num_years":2,"format":"summary"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/plain; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Body.String(), "BUY-AND-HOLD SIMULATION SUMMARY")

	w = do(t, srv.Handler(), http.MethodPost, "/api/v1/simulate", `{"num_years":2,"format":"csv"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv; charset=utf-8", w.Header().Get("Content-Type"))
	assert.True(t, strings.HasPrefix(w.Body.String(), "StartYear,EndYear"))
}

func TestSimulate_SaveAndFetch(t *testing.T) {
	store := newFakeStore()
	srv := NewServer(testSeries(t), Options{Store: store})
	h := srv.Handler()

	w := do(t, h, http.MethodPost, "/api/v1/simulate", `{"num_years":2,"save":true}`)
	require.Equal(t, http.StatusOK, w.Code)
	var resp SimulateResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "batch-1", resp.ID)

	w = do(t, h, http.MethodPost, "/api/v1/simulate", `{"num_years":3,"save":true,"format":"html"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "batch-2", w.Header().Get("X-Batch-ID"))
	assert.Contains(t, w.Body.String(), "<!DOCTYPE html>")

	w = do(t, h, http.MethodGet, "/api/v1/batches?limit=1", "")
	require.Equal(t, http.StatusOK, w.Code)
	var list BatchListResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list.Batches, 1)
	assert.Equal(t, "batch-2", list.Batches[0].ID)
	assert.Equal(t, 3, list.Batches[0].Config.NumYears)

	w = do(t, h, http.MethodGet, "/api/v1/batches/batch-1", "")
	require.Equal(t, http.StatusOK, w.Code)
	var fetched SimulateResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &fetched))
	assert.Equal(t, "batch-1", fetched.ID)
	assert.Len(t, fetched.Result.Runs, 4)

	w = do(t, h, http.MethodGet, "/api/v1/batches/batch-1?format=yaml", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/yaml", w.Header().Get("Content-Type"))

	w = do(t, h, http.MethodGet, "/api/v1/batches/nope", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "NOT_FOUND", decodeError(t, w).Code)

	w = do(t, h, http.MethodGet, "/api/v1/batches?limit=x", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestBatchesWithoutStore(t *testing.T) {
	srv := NewServer(testSeries(t), Options{})
	w := do(t, srv.Handler(), http.MethodGet, "/api/v1/batches", "")
	assert.Equal(t, http.StatusNotImplemented, w.Code)
	assert.Equal(t, "STORE_DISABLED", decodeError(t, w).Code)
}

func TestSeriesInfo(t *testing.T) {
	srv := NewServer(testSeries(t), Options{})

	w := do(t, srv.Handler(), http.MethodGet, "/api/v1/series?num_years=3", "")
	require.Equal(t, http.StatusOK, w.Code)
	var resp SeriesResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, []int{2000, 2001, 2002}, resp.StartYears)
	assert.Equal(t, 3, resp.ForNumYears)
	assert.Equal(t, 2004, resp.Statistics.Info.LastYear)
	assert.Equal(t, 5, resp.Statistics.Returns.Count)

	w = do(t, srv.Handler(), http.MethodGet, "/api/v1/series", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Empty(t, resp.StartYears, "30-year default exceeds the history")

	w = do(t, srv.Handler(), http.MethodGet, "/api/v1/series?num_years=-1", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestErrorHandlerRecoversPanics(t *testing.T) {
	router := gin.New()
	router.Use(errorHandler(calculation.NopLogger{}))
	router.GET("/boom", func(c *gin.Context) { panic("boom") })
	router.GET("/oops", func(c *gin.Context) { panic(fmt.Errorf("oops")) })

	w := do(t, router, http.MethodGet, "/boom", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, ErrorDetail{Code: "INTERNAL_ERROR", Message: "boom"}, decodeError(t, w))

	w = do(t, router, http.MethodGet, "/oops", "")
	assert.Equal(t, "An unexpected error occurred", decodeError(t, w).Message)
}
