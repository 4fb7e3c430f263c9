// Package api exposes the analysis pipeline over HTTP.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/sirupsen/logrus"

	"StockScope/internal/analyzer"
	"StockScope/internal/collector"
	"StockScope/internal/format"
	"StockScope/internal/logging"
	"StockScope/internal/model"
	"StockScope/internal/recorder"
	"StockScope/internal/session"
)

// MarketData is the subset of the data provider used by the stateless endpoints.
type MarketData interface {
	FetchLatestQuote(ctx context.Context, symbol string) (*model.Quote, error)
	FetchMarketSummary(ctx context.Context) []model.IndexSummary
	FetchNews(ctx context.Context, symbol string, limit int) ([]model.NewsItem, error)
}

// Deps are the collaborators the server needs.
type Deps struct {
	Analyzer    *analyzer.Analyzer
	Market      MarketData
	Sessions    *session.Store
	Recorder    recorder.Recorder
	Logger      logrus.FieldLogger
	CORSOrigins []string
}

// Server is the HTTP API server.
type Server struct {
	router   chi.Router
	analyzer *analyzer.Analyzer
	market   MarketData
	sessions *session.Store
	recorder recorder.Recorder
	log      logrus.FieldLogger
	origins  []string
	now      func() time.Time
}

// NewServer creates a configured API server with all routes and middleware.
func NewServer(d Deps) *Server {
	rec := d.Recorder
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	s := &Server{
		analyzer: d.Analyzer,
		market:   d.Market,
		sessions: d.Sessions,
		recorder: rec,
		log:      d.Logger,
		origins:  d.CORSOrigins,
		now:      time.Now,
	}
	s.router = s.buildRouter()
	return s
}

// Router returns the chi router for testing.
func (s *Server) Router() chi.Router {
	return s.router
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	httpSrv := &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.WithField("addr", addr).Info("http server listening")
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.log.Info("shutting down http server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return httpSrv.Shutdown(shutdownCtx)
}

func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logging.Middleware(s.log))
	r.Use(middleware.Recoverer)

	origins := []string{"*"}
	if len(s.origins) > 0 {
		origins = s.origins
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID", "Content-Disposition"},
		MaxAge:         300,
	}))

	r.Get("/health", s.handleHealth)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/sessions", s.handleCreateSession)
		r.Route("/sessions/{id}", func(r chi.Router) {
			r.Delete("/", s.handleDeleteSession)
			r.Post("/analyze", s.handleAnalyze)
			r.Get("/analysis", s.handleAnalysis)
			r.Get("/export", s.handleExport)
		})

		r.Get("/quote/{symbol}", s.handleQuote)
		r.Get("/market/summary", s.handleMarketSummary)
		r.Get("/news/{symbol}", s.handleNews)
		r.Get("/periods", s.handlePeriods)
		r.Get("/fetches", s.handleFetches)
	})

	return r
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// writeFailure maps pipeline errors onto HTTP statuses.
func (s *Server) writeFailure(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, format.ErrInvalidSymbol):
		writeError(w, http.StatusBadRequest, "Invalid stock symbol format")
	case errors.Is(err, collector.ErrNotFound):
		writeError(w, http.StatusNotFound, "No data found for this symbol")
	case errors.Is(err, analyzer.ErrNoData):
		writeError(w, http.StatusNotFound, "No stock data loaded")
	default:
		s.log.WithError(err).Error("request failed")
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
