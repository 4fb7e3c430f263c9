package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"StockScope/internal/export"
	"StockScope/internal/format"
	"StockScope/internal/model"
	"StockScope/internal/session"
)

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":   "ok",
		"sessions": s.sessions.Len(),
	})
}

func (s *Server) handleCreateSession(w http.ResponseWriter, _ *http.Request) {
	sess := s.sessions.Create()
	writeJSON(w, http.StatusCreated, map[string]string{"id": sess.ID})
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	if !s.sessions.Delete(chi.URLParam(r, "id")) {
		writeError(w, http.StatusNotFound, "unknown session")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// session resolves the {id} URL parameter, writing a 404 when it is unknown.
func (s *Server) session(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	sess, ok := s.sessions.Get(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, "unknown session")
	}
	return sess, ok
}

type analyzeRequest struct {
	Symbol     string `json:"symbol"`
	Period     string `json:"period"`
	Financials *bool  `json:"financials,omitempty"`
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}

	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	period, err := model.ParsePeriod(req.Period)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	a := s.analyzer
	if req.Financials != nil {
		a = a.WithFinancials(*req.Financials)
	}
	res, err := a.Analyze(r.Context(), sess, req.Symbol, period)
	if err != nil {
		s.writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleAnalysis(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	res, err := s.analyzer.Current(sess)
	if err != nil {
		s.writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	b := sess.Bundle()
	if b == nil {
		writeError(w, http.StatusNotFound, "No stock data loaded")
		return
	}

	now := s.now()
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.Filename(b, now)))
	if err := s.analyzer.Export(w, sess, now); err != nil {
		s.log.WithError(err).Error("export failed")
	}
}

func (s *Server) handleQuote(w http.ResponseWriter, r *http.Request) {
	symbol, err := format.NormalizeSymbol(chi.URLParam(r, "symbol"))
	if err != nil {
		s.writeFailure(w, err)
		return
	}
	q, err := s.market.FetchLatestQuote(r.Context(), symbol)
	if err != nil {
		s.writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, q)
}

func (s *Server) handleMarketSummary(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.market.FetchMarketSummary(r.Context()))
}

func (s *Server) handleNews(w http.ResponseWriter, r *http.Request) {
	symbol, err := format.NormalizeSymbol(chi.URLParam(r, "symbol"))
	if err != nil {
		s.writeFailure(w, err)
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	items, err := s.market.FetchNews(r.Context(), symbol, limit)
	if err != nil {
		s.writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

type periodResponse struct {
	Code    string `json:"code"`
	Label   string `json:"label"`
	Default bool   `json:"default,omitempty"`
}

func (s *Server) handlePeriods(w http.ResponseWriter, _ *http.Request) {
	periods := model.Periods()
	out := make([]periodResponse, len(periods))
	for i, p := range periods {
		out[i] = periodResponse{Code: string(p), Label: p.Label(), Default: p == model.DefaultPeriod}
	}
	writeJSON(w, http.StatusOK, out)
}

type fetchResponse struct {
	Timestamp  time.Time `json:"timestamp"`
	Operation  string    `json:"operation"`
	Symbol     string    `json:"symbol,omitempty"`
	Period     string    `json:"period,omitempty"`
	Outcome    string    `json:"outcome"`
	Reason     string    `json:"reason,omitempty"`
	Points     int       `json:"points"`
	DurationMs int64     `json:"duration_ms"`
}

func (s *Server) handleFetches(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	events, err := s.recorder.RecentFetches(limit)
	if err != nil {
		s.writeFailure(w, err)
		return
	}
	out := make([]fetchResponse, len(events))
	for i, e := range events {
		out[i] = fetchResponse{
			Timestamp:  e.Timestamp,
			Operation:  e.Operation,
			Symbol:     e.Symbol,
			Period:     e.Period,
			Outcome:    e.Outcome,
			Reason:     e.Reason,
			Points:     e.Points,
			DurationMs: e.Duration.Milliseconds(),
		}
	}
	writeJSON(w, http.StatusOK, out)
}
