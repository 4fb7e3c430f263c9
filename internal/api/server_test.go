package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StockScope/internal/analyzer"
	"StockScope/internal/collector"
	"StockScope/internal/model"
	"StockScope/internal/recorder"
	"StockScope/internal/session"
)

type fakeRecorder struct {
	mu     sync.Mutex
	events []recorder.FetchEvent
}

func (f *fakeRecorder) RecordFetch(evt *recorder.FetchEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append([]recorder.FetchEvent{*evt}, f.events...)
	return nil
}

func (f *fakeRecorder) RecentFetches(int) ([]recorder.FetchEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.events, nil
}

func (f *fakeRecorder) Close() error { return nil }

type testEnv struct {
	srv     *Server
	fetcher *collector.MockFetcher
	store   *session.Store
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	log, _ := test.NewNullLogger()
	f := &collector.MockFetcher{
		Price: 120,
		News:  []model.NewsItem{{Title: "one"}, {Title: "two"}, {Title: "three"}},
	}
	rec := &fakeRecorder{}
	col := collector.NewCollector(f, rec, time.Second, log)
	store := session.NewStore(log)
	srv := NewServer(Deps{
		Analyzer: analyzer.New(col, analyzer.Options{RiskFreeRate: 0.02}, log),
		Market:   col,
		Sessions: store,
		Recorder: rec,
		Logger:   log,
	})
	srv.now = func() time.Time { return time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC) }
	return &testEnv{srv: srv, fetcher: f, store: store}
}

func (e *testEnv) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	e.srv.Router().ServeHTTP(rr, req)
	return rr
}

func (e *testEnv) newSession(t *testing.T) string {
	t.Helper()
	rr := e.do(t, http.MethodPost, "/api/v1/sessions", nil)
	require.Equal(t, http.StatusCreated, rr.Code)
	var resp map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.NotEmpty(t, resp["id"])
	return resp["id"]
}

func errorMessage(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	var resp errorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	return resp.Error
}

func TestHealth(t *testing.T) {
	e := newTestEnv(t)
	rr := e.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"status":"ok"`)
}

func TestAnalyzeFlow(t *testing.T) {
	e := newTestEnv(t)
	id := e.newSession(t)

	rr := e.do(t, http.MethodGet, "/api/v1/sessions/"+id+"/analysis", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "No stock data loaded", errorMessage(t, rr))

	rr = e.do(t, http.MethodPost, "/api/v1/sessions/"+id+"/analyze", analyzeRequest{Symbol: "aapl", Period: "6mo"})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var res analyzer.Analysis
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &res))
	assert.Equal(t, "AAPL", res.Bundle.Symbol)
	assert.Equal(t, model.Period6Months, res.Bundle.Period)
	assert.Len(t, res.Indicators.RSI14, len(res.Bundle.History))
	assert.Equal(t, 126, res.Summary.Points)

	rr = e.do(t, http.MethodGet, "/api/v1/sessions/"+id+"/analysis", nil)
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = e.do(t, http.MethodGet, "/api/v1/sessions/"+id+"/export", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "text/csv", rr.Header().Get("Content-Type"))
	assert.Contains(t, rr.Header().Get("Content-Disposition"), "AAPL_6mo_20240601.csv")
	assert.True(t, strings.HasPrefix(rr.Body.String(), "# Stock Analysis Report"))
}

func TestAnalyze_Errors(t *testing.T) {
	e := newTestEnv(t)
	id := e.newSession(t)

	rr := e.do(t, http.MethodPost, "/api/v1/sessions/"+id+"/analyze", analyzeRequest{Symbol: "AAPL!"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "Invalid stock symbol format", errorMessage(t, rr))

	rr = e.do(t, http.MethodPost, "/api/v1/sessions/"+id+"/analyze", analyzeRequest{Symbol: "AAPL", Period: "7y"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = e.do(t, http.MethodPost, "/api/v1/sessions/nope/analyze", analyzeRequest{Symbol: "AAPL"})
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "unknown session", errorMessage(t, rr))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/sessions/"+id+"/analyze", strings.NewReader("{"))
	rec := httptest.NewRecorder()
	e.srv.Router().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAnalyze_NotFoundKeepsPrevious(t *testing.T) {
	e := newTestEnv(t)
	id := e.newSession(t)

	rr := e.do(t, http.MethodPost, "/api/v1/sessions/"+id+"/analyze", analyzeRequest{Symbol: "MSFT"})
	require.Equal(t, http.StatusOK, rr.Code)

	e.fetcher.Err = errors.New("upstream down")
	rr = e.do(t, http.MethodPost, "/api/v1/sessions/"+id+"/analyze", analyzeRequest{Symbol: "ZZZZ"})
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "No data found for this symbol", errorMessage(t, rr))

	e.fetcher.Err = nil
	rr = e.do(t, http.MethodGet, "/api/v1/sessions/"+id+"/analysis", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var res analyzer.Analysis
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &res))
	assert.Equal(t, "MSFT", res.Bundle.Symbol)
}

func TestAnalyze_WithFinancials(t *testing.T) {
	e := newTestEnv(t)
	id := e.newSession(t)
	on := true

	rr := e.do(t, http.MethodPost, "/api/v1/sessions/"+id+"/analyze", analyzeRequest{Symbol: "MSFT", Financials: &on})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"financials":{}`)
}

func TestDeleteSession(t *testing.T) {
	e := newTestEnv(t)
	id := e.newSession(t)

	rr := e.do(t, http.MethodDelete, "/api/v1/sessions/"+id, nil)
	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Zero(t, e.store.Len())

	rr = e.do(t, http.MethodDelete, "/api/v1/sessions/"+id, nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestQuote(t *testing.T) {
	e := newTestEnv(t)

	rr := e.do(t, http.MethodGet, "/api/v1/quote/msft", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var q model.Quote
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &q))
	assert.Equal(t, "MSFT", q.Symbol)

	rr = e.do(t, http.MethodGet, "/api/v1/quote/123456", nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestMarketSummary(t *testing.T) {
	e := newTestEnv(t)

	rr := e.do(t, http.MethodGet, "/api/v1/market/summary", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var summary []model.IndexSummary
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &summary))
	require.Len(t, summary, len(collector.MarketIndices))
	assert.Equal(t, "S&P 500", summary[0].Name)
}

func TestNews(t *testing.T) {
	e := newTestEnv(t)

	rr := e.do(t, http.MethodGet, "/api/v1/news/AAPL?limit=2", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var items []model.NewsItem
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &items))
	assert.Len(t, items, 2)
}

func TestPeriods(t *testing.T) {
	e := newTestEnv(t)

	rr := e.do(t, http.MethodGet, "/api/v1/periods", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var periods []periodResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &periods))
	require.Len(t, periods, 6)
	assert.Equal(t, "1mo", periods[0].Code)
	assert.Equal(t, "1 Year", periods[3].Label)
	assert.True(t, periods[3].Default)
}

func TestFetches(t *testing.T) {
	e := newTestEnv(t)
	e.do(t, http.MethodGet, "/api/v1/quote/AAPL", nil)

	rr := e.do(t, http.MethodGet, "/api/v1/fetches?limit=5", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var events []fetchResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &events))
	require.Len(t, events, 1)
	assert.Equal(t, "quote", events[0].Operation)
	assert.Equal(t, "AAPL", events[0].Symbol)
}
