package analyzer

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StockScope/internal/collector"
	"StockScope/internal/format"
	"StockScope/internal/model"
	"StockScope/internal/session"
)

func newTestAnalyzer(f collector.Fetcher, opts Options) (*Analyzer, *session.Session) {
	log, _ := test.NewNullLogger()
	c := collector.NewCollector(f, nil, time.Second, log)
	st := session.NewStore(log)
	return New(c, opts, log), st.Create()
}

func TestAnalyze_Success(t *testing.T) {
	a, sess := newTestAnalyzer(&collector.MockFetcher{Price: 150}, Options{RiskFreeRate: 0.02})

	res, err := a.Analyze(context.Background(), sess, "  aapl ", model.Period1Year)
	require.NoError(t, err)
	assert.Equal(t, "AAPL", res.Bundle.Symbol)
	assert.Len(t, res.Indicators.SMA20, len(res.Bundle.History))
	assert.Equal(t, len(res.Bundle.History), res.Summary.Points)
	assert.True(t, res.Summary.Volatility.Valid)
	assert.Same(t, res.Bundle, sess.Bundle())
	assert.Nil(t, res.Bundle.Financials)
	require.NotNil(t, res.Outlook)
	assert.Len(t, res.Outlook.Factors, 5)
}

func TestAnalyze_IncludeFinancials(t *testing.T) {
	a, sess := newTestAnalyzer(&collector.MockFetcher{}, Options{IncludeFinancials: true})

	res, err := a.Analyze(context.Background(), sess, "MSFT", model.Period1Month)
	require.NoError(t, err)
	require.NotNil(t, res.Bundle.Financials)
	assert.True(t, res.Bundle.Financials.IsEmpty())
}

func TestAnalyze_InvalidSymbolLeavesSessionAlone(t *testing.T) {
	a, sess := newTestAnalyzer(&collector.MockFetcher{}, Options{})

	for _, raw := range []string{"", "   ", "AAPL!", "TOOLONGSYMBOL"} {
		_, err := a.Analyze(context.Background(), sess, raw, model.Period1Year)
		assert.ErrorIs(t, err, format.ErrInvalidSymbol, raw)
	}
	assert.Nil(t, sess.Bundle())
}

func TestAnalyze_FailedFetchKeepsPreviousBundle(t *testing.T) {
	f := &collector.MockFetcher{}
	a, sess := newTestAnalyzer(f, Options{})

	first, err := a.Analyze(context.Background(), sess, "AAPL", model.Period6Months)
	require.NoError(t, err)

	f.Err = errors.New("upstream down")
	_, err = a.Analyze(context.Background(), sess, "ZZZZ", model.Period6Months)
	assert.ErrorIs(t, err, collector.ErrNotFound)

	assert.Same(t, first.Bundle, sess.Bundle())
	assert.Equal(t, "AAPL", sess.Bundle().Symbol)
}

func TestCurrent(t *testing.T) {
	a, sess := newTestAnalyzer(&collector.MockFetcher{}, Options{})

	_, err := a.Current(sess)
	assert.ErrorIs(t, err, ErrNoData)

	_, err = a.Analyze(context.Background(), sess, "NVDA", model.Period3Months)
	require.NoError(t, err)

	res, err := a.Current(sess)
	require.NoError(t, err)
	assert.Equal(t, "NVDA", res.Bundle.Symbol)
	assert.Equal(t, 63, res.Summary.Points)
}

func TestExport(t *testing.T) {
	a, sess := newTestAnalyzer(&collector.MockFetcher{}, Options{})

	var buf bytes.Buffer
	assert.ErrorIs(t, a.Export(&buf, sess, time.Now()), ErrNoData)

	_, err := a.Analyze(context.Background(), sess, "BRK.B", model.Period1Month)
	require.NoError(t, err)

	buf.Reset()
	require.NoError(t, a.Export(&buf, sess, time.Now()))
	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "# Stock Analysis Report\n"))
	assert.Contains(t, out, "Symbol,BRK.B\n")
	assert.Contains(t, out, "# Historical Price Data\n")
	// header + 21 bars
	lines := strings.Split(strings.TrimSpace(out[strings.Index(out, "Date,"):]), "\n")
	assert.Len(t, lines, 22)
}

func TestReport(t *testing.T) {
	a, sess := newTestAnalyzer(&collector.MockFetcher{}, Options{})

	_, err := a.Report(sess)
	assert.ErrorIs(t, err, ErrNoData)

	_, err = a.Analyze(context.Background(), sess, "TSLA", model.Period1Year)
	require.NoError(t, err)
	out, err := a.Report(sess)
	require.NoError(t, err)
	assert.Contains(t, out, "TSLA")
	assert.Contains(t, out, "Trend:")
	assert.Contains(t, out, "Outlook:")
}
