// Package analyzer runs the validate, fetch, compute pipeline against a session.
package analyzer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/sirupsen/logrus"

	"StockScope/internal/calculator"
	"StockScope/internal/export"
	"StockScope/internal/format"
	"StockScope/internal/model"
	"StockScope/internal/session"
	"StockScope/internal/strategy"
)

// ErrNoData is returned when a session has no cached bundle yet.
var ErrNoData = errors.New("no stock data loaded")

// Provider is the data source the pipeline pulls from.
type Provider interface {
	Fetch(ctx context.Context, symbol string, period model.Period) (*model.StockBundle, error)
	FetchFinancials(ctx context.Context, b *model.StockBundle) *model.StockBundle
}

// Options tune the pipeline.
type Options struct {
	RiskFreeRate      float64
	IncludeFinancials bool
}

// Analysis is the full result for one bundle.
type Analysis struct {
	Bundle     *model.StockBundle    `json:"bundle"`
	Indicators model.IndicatorSeries `json:"indicators"`
	Summary    model.SummaryStats    `json:"summary"`
	Outlook    *model.Outlook        `json:"outlook"`
}

// Analyzer wires the data provider to the metric computations.
type Analyzer struct {
	provider Provider
	opts     Options
	log      logrus.FieldLogger
}

// New creates an Analyzer.
func New(p Provider, opts Options, log logrus.FieldLogger) *Analyzer {
	return &Analyzer{provider: p, opts: opts, log: log}
}

// WithFinancials returns a copy of the analyzer with statement fetching switched on or off.
func (a *Analyzer) WithFinancials(on bool) *Analyzer {
	cp := *a
	cp.opts.IncludeFinancials = on
	return &cp
}

// Analyze validates the raw symbol, fetches the bundle and computes indicators and
// summary statistics. Only a successful fetch replaces the session's cached bundle.
func (a *Analyzer) Analyze(ctx context.Context, sess *session.Session, rawSymbol string, period model.Period) (*Analysis, error) {
	symbol, err := format.NormalizeSymbol(rawSymbol)
	if err != nil {
		return nil, err
	}

	bundle, err := a.provider.Fetch(ctx, symbol, period)
	if err != nil {
		return nil, err
	}
	if a.opts.IncludeFinancials {
		bundle = a.provider.FetchFinancials(ctx, bundle)
	}

	res := a.compute(bundle)
	sess.Replace(bundle)

	a.log.WithFields(logrus.Fields{
		"session": sess.ID,
		"symbol":  symbol,
		"period":  period,
		"trend":   res.Summary.Trend,
	}).Info("analysis complete")
	return res, nil
}

// Current recomputes the analysis from the session's cached bundle.
func (a *Analyzer) Current(sess *session.Session) (*Analysis, error) {
	b := sess.Bundle()
	if b == nil {
		return nil, ErrNoData
	}
	return a.compute(b), nil
}

// Export writes the CSV report for the session's cached bundle.
func (a *Analyzer) Export(w io.Writer, sess *session.Session, now time.Time) error {
	b := sess.Bundle()
	if b == nil {
		return ErrNoData
	}
	if err := export.WriteCSV(w, b, now); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}

// Report renders the cached analysis as plain text.
func (a *Analyzer) Report(sess *session.Session) (string, error) {
	res, err := a.Current(sess)
	if err != nil {
		return "", err
	}
	return format.FormatReport(res.Bundle, &res.Indicators, &res.Summary) + format.FormatOutlook(res.Outlook), nil
}

func (a *Analyzer) compute(b *model.StockBundle) *Analysis {
	opts := calculator.DefaultSummaryOptions()
	opts.RiskFreeRate = a.opts.RiskFreeRate
	ind := calculator.ComputeIndicators(b.History)
	return &Analysis{
		Bundle:     b,
		Indicators: ind,
		Summary:    calculator.ComputeSummary(b.History, opts),
		Outlook:    strategy.Evaluate(&ind, b.History),
	}
}
