// Package api exposes the simulator over HTTP.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rpgo/buyhold/internal/calculation"
	"github.com/rpgo/buyhold/internal/domain"
	"github.com/rpgo/buyhold/internal/output"
	"github.com/rpgo/buyhold/internal/storage"
)

// BatchStore is the persistence the server needs; *storage.Store implements it.
type BatchStore interface {
	SaveBatch(ctx context.Context, result *domain.BatchResult) (string, error)
	LoadBatch(ctx context.Context, id string) (*domain.BatchResult, error)
	ListBatches(ctx context.Context, limit int) ([]storage.BatchRecord, error)
}

// Options configures a Server. Every field is optional.
type Options struct {
	Store    BatchStore
	Cache    Cache
	CacheTTL time.Duration
	Workers  int
	Logger   calculation.Logger
}

// Server serves simulations over one loaded series.
type Server struct {
	series  *calculation.ReturnSeries
	store   BatchStore
	cache   Cache
	ttl     time.Duration
	workers int
	logger  calculation.Logger
	router  *gin.Engine
}

// NewServer builds the router. Without a cache an in-process one is used; without a store
// the batch endpoints answer 501.
func NewServer(series *calculation.ReturnSeries, opts Options) *Server {
	s := &Server{
		series:  series,
		store:   opts.Store,
		cache:   opts.Cache,
		ttl:     opts.CacheTTL,
		workers: opts.Workers,
		logger:  opts.Logger,
	}
	if s.logger == nil {
		s.logger = calculation.NopLogger{}
	}
	if s.cache == nil {
		s.cache = NewMemoryCache()
	}

	router := gin.New()
	router.Use(requestLogger(s.logger))
	router.Use(errorHandler(s.logger))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api/v1")
	{
		api.POST("/simulate", s.simulate)
		api.GET("/series", s.seriesInfo)
		api.GET("/batches", s.listBatches)
		api.GET("/batches/:id", s.getBatch)
	}
	s.router = router
	return s
}

// Handler returns the HTTP handler serving every route.
func (s *Server) Handler() http.Handler { return s.router }

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	s.logger.Infof("listening on %s", addr)

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// simulate handles POST /api/v1/simulate
func (s *Server) simulate(c *gin.Context) {
	var req SimulateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}
	if req.Format != "" && output.GetFormatterByName(req.Format) == nil {
		abortWithError(c, http.StatusBadRequest, "UNSUPPORTED_FORMAT",
			fmt.Sprintf("unknown format %q, try one of: %s", req.Format, strings.Join(output.AvailableFormatterNames(), ", ")))
		return
	}
	if req.Save && s.store == nil {
		abortWithError(c, http.StatusNotImplemented, "STORE_DISABLED", "result store is not configured")
		return
	}

	ctx := c.Request.Context()
	cfg := req.SimulationConfig()
	key := s.cacheKey(cfg, req.StartYears)

	result, cached := s.lookup(ctx, key)
	if !cached {
		harness := calculation.NewHarness(s.series)
		harness.Workers = s.workers
		harness.SetLogger(s.logger)

		var err error
		if len(req.StartYears) > 0 {
			result, err = harness.RunYears(ctx, cfg, req.StartYears)
		} else {
			result, err = harness.RunAll(ctx, cfg)
		}
		if err != nil {
			writeRunError(c, err)
			return
		}
		s.remember(ctx, key, result)
	}

	var id string
	if req.Save {
		var err error
		if id, err = s.store.SaveBatch(ctx, result); err != nil {
			abortWithError(c, http.StatusInternalServerError, "STORE_ERROR", err.Error())
			return
		}
	}

	if req.Format == "" || output.NormalizeFormatName(req.Format) == "json" {
		c.JSON(http.StatusOK, SimulateResponse{ID: id, Cached: cached, Result: result})
		return
	}
	if id != "" {
		c.Header("X-Batch-ID", id)
	}
	s.render(c, result, req.Format)
}

// seriesInfo handles GET /api/v1/series
func (s *Server) seriesInfo(c *gin.Context) {
	numYears := domain.DefaultSimulationConfig().NumYears
	if v := c.Query("num_years"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			abortWithError(c, http.StatusBadRequest, "INVALID_REQUEST", fmt.Sprintf("num_years must be a positive integer, got %q", v))
			return
		}
		numYears = n
	}
	years := s.series.EligibleStartYears(numYears)
	if years == nil {
		years = []int{}
	}
	c.JSON(http.StatusOK, SeriesResponse{
		Statistics:  s.series.Statistics(),
		StartYears:  years,
		ForNumYears: numYears,
	})
}

// listBatches handles GET /api/v1/batches
func (s *Server) listBatches(c *gin.Context) {
	if s.store == nil {
		abortWithError(c, http.StatusNotImplemented, "STORE_DISABLED", "result store is not configured")
		return
	}
	limit := 50
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			abortWithError(c, http.StatusBadRequest, "INVALID_REQUEST", fmt.Sprintf("limit must be an integer, got %q", v))
			return
		}
		limit = n
	}
	records, err := s.store.ListBatches(c.Request.Context(), limit)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "STORE_ERROR", err.Error())
		return
	}
	c.JSON(http.StatusOK, BatchListResponse{Batches: records})
}

// getBatch handles GET /api/v1/batches/:id
func (s *Server) getBatch(c *gin.Context) {
	if s.store == nil {
		abortWithError(c, http.StatusNotImplemented, "STORE_DISABLED", "result store is not configured")
		return
	}
	id := c.Param("id")
	result, err := s.store.LoadBatch(c.Request.Context(), id)
	if errors.Is(err, storage.ErrNotFound) {
		abortWithError(c, http.StatusNotFound, "NOT_FOUND", err.Error())
		return
	}
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "STORE_ERROR", err.Error())
		return
	}

	format := c.Query("format")
	if format == "" || output.NormalizeFormatName(format) == "json" {
		c.JSON(http.StatusOK, SimulateResponse{ID: id, Result: result})
		return
	}
	s.render(c, result, format)
}

func (s *Server) render(c *gin.Context, result *domain.BatchResult, format string) {
	var buf bytes.Buffer
	if err := output.WriteReport(&buf, result, format); err != nil {
		status, code := http.StatusInternalServerError, "REPORT_ERROR"
		if errors.Is(err, output.ErrUnsupportedFormat) {
			status, code = http.StatusBadRequest, "UNSUPPORTED_FORMAT"
		}
		abortWithError(c, status, code, err.Error())
		return
	}
	c.Data(http.StatusOK, contentType(format), buf.Bytes())
}

func contentType(format string) string {
	switch output.ExtensionFor(format) {
	case "html":
		return "text/html; charset=utf-8"
	case "csv":
		return "text/csv; charset=utf-8"
	case "yaml":
		return "application/yaml"
	default:
		return "text/plain; charset=utf-8"
	}
}

// cacheKey identifies a batch by series and normalized request.
func (s *Server) cacheKey(cfg domain.SimulationConfig, startYears []int) string {
	years := append([]int(nil), startYears...)
	sort.Ints(years)
	info := s.series.Info()
	return fmt.Sprintf("buyhold:simulate:%s:%d-%d:%s:%d:%s:%v",
		info.Source, info.FirstYear, info.LastYear,
		cfg.SpendingPercentage.String(), cfg.NumYears, cfg.StartingPrincipal.String(), years)
}

func (s *Server) lookup(ctx context.Context, key string) (*domain.BatchResult, bool) {
	raw, ok := s.cache.Get(ctx, key)
	if !ok {
		return nil, false
	}
	var result domain.BatchResult
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		s.logger.Warnf("discarding unreadable cache entry %s: %v", key, err)
		return nil, false
	}
	return &result, true
}

func (s *Server) remember(ctx context.Context, key string, result *domain.BatchResult) {
	raw, err := json.Marshal(result)
	if err != nil {
		s.logger.Warnf("cannot cache %s: %v", key, err)
		return
	}
	if err := s.cache.Set(ctx, key, string(raw), s.ttl); err != nil {
		s.logger.Warnf("cache write failed for %s: %v", key, err)
	}
}

func writeRunError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrConfig):
		abortWithError(c, http.StatusBadRequest, "INVALID_CONFIG", err.Error())
	case errors.Is(err, domain.ErrData):
		abortWithError(c, http.StatusUnprocessableEntity, "DATA_ERROR", err.Error())
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		abortWithError(c, http.StatusServiceUnavailable, "CANCELLED", err.Error())
	default:
		abortWithError(c, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
	}
}

func abortWithError(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, ErrorResponse{
		Error: ErrorDetail{Code: code, Message: message},
	})
}
