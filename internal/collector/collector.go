package collector

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"StockScope/internal/model"
	"StockScope/internal/recorder"
)

// ErrNotFound is the single failure callers see for any fetch problem.
// The underlying cause is logged and recorded.
var ErrNotFound = errors.New("no data found for symbol")

// DefaultTimeout bounds each provider call.
const DefaultTimeout = 10 * time.Second

// DefaultNewsLimit is the headline count used when the caller passes zero.
const DefaultNewsLimit = 5

// MarketIndex names an index shown in the market summary.
type MarketIndex struct {
	Name   string
	Symbol string
}

// MarketIndices are the indices reported by FetchMarketSummary, in display order.
var MarketIndices = []MarketIndex{
	{Name: "S&P 500", Symbol: "^GSPC"},
	{Name: "Dow Jones", Symbol: "^DJI"},
	{Name: "NASDAQ", Symbol: "^IXIC"},
	{Name: "Russell 2000", Symbol: "^RUT"},
}

// Collector is the data provider used by the rest of the application.
type Collector struct {
	Fetcher  Fetcher
	Recorder recorder.Recorder
	Timeout  time.Duration

	log logrus.FieldLogger
}

// NewCollector creates a new Collector. A nil recorder disables the audit trail.
func NewCollector(fetcher Fetcher, rec recorder.Recorder, timeout time.Duration, log logrus.FieldLogger) *Collector {
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Collector{
		Fetcher:  fetcher,
		Recorder: rec,
		Timeout:  timeout,
		log:      log.WithField("source", fetcher.Name()),
	}
}

// call runs fn under the per-call timeout and turns a panic from a malformed
// response into an ordinary error.
func (c *Collector) call(ctx context.Context, fn func(context.Context) error) (err error) {
	ctx, cancel := context.WithTimeout(ctx, c.Timeout)
	defer cancel()
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("provider panic: %v", r)
		}
	}()
	return fn(ctx)
}

func (c *Collector) record(evt recorder.FetchEvent, start time.Time, cause error) {
	evt.Timestamp = start
	evt.Duration = time.Since(start)
	if evt.Outcome == "" {
		evt.Outcome = recorder.OutcomeOK
	}
	if cause != nil {
		evt.Reason = cause.Error()
	}
	if err := c.Recorder.RecordFetch(&evt); err != nil {
		c.log.WithError(err).Warn("record fetch event")
	}
}

// notFound logs and records cause, returning ErrNotFound.
func (c *Collector) notFound(evt recorder.FetchEvent, start time.Time, cause error) error {
	c.log.WithFields(logrus.Fields{
		"op":     evt.Operation,
		"symbol": evt.Symbol,
		"period": evt.Period,
	}).WithError(cause).Warn("fetch failed")
	evt.Outcome = recorder.OutcomeNotFound
	c.record(evt, start, cause)
	return ErrNotFound
}

// Fetch retrieves descriptive info and daily history for a normalized symbol.
func (c *Collector) Fetch(ctx context.Context, symbol string, period model.Period) (*model.StockBundle, error) {
	start := time.Now()
	evt := recorder.FetchEvent{Operation: "fetch", Symbol: symbol, Period: string(period)}

	var info model.Info
	err := c.call(ctx, func(ctx context.Context) error {
		var err error
		info, err = c.Fetcher.FetchInfo(ctx, symbol)
		return err
	})
	if err != nil {
		return nil, c.notFound(evt, start, fmt.Errorf("info: %w", err))
	}
	if info.IsEmpty() {
		return nil, c.notFound(evt, start, errors.New("info: empty"))
	}

	var history []model.PricePoint
	err = c.call(ctx, func(ctx context.Context) error {
		var err error
		history, err = c.Fetcher.FetchHistory(ctx, symbol, period)
		return err
	})
	if err != nil {
		return nil, c.notFound(evt, start, fmt.Errorf("history: %w", err))
	}
	if len(history) == 0 {
		return nil, c.notFound(evt, start, errors.New("history: empty"))
	}

	evt.Points = len(history)
	c.record(evt, start, nil)
	c.log.WithFields(logrus.Fields{
		"symbol": symbol,
		"period": period,
		"points": len(history),
	}).Debug("fetched bundle")

	return &model.StockBundle{
		Symbol:    symbol,
		Period:    period,
		Info:      info,
		History:   history,
		FetchedAt: start,
	}, nil
}

// FetchFinancials returns a copy of b carrying whichever statement tables are available.
// Failure leaves every table nil.
func (c *Collector) FetchFinancials(ctx context.Context, b *model.StockBundle) *model.StockBundle {
	start := time.Now()
	evt := recorder.FetchEvent{Operation: "financials", Symbol: b.Symbol, Period: string(b.Period)}

	var fin *model.Financials
	err := c.call(ctx, func(ctx context.Context) error {
		var err error
		fin, err = c.Fetcher.FetchStatements(ctx, b.Symbol)
		return err
	})
	if err != nil || fin == nil {
		if err == nil {
			err = errors.New("no statements")
		}
		evt.Outcome = recorder.OutcomePartial
		c.log.WithField("symbol", b.Symbol).WithError(err).Info("financial statements unavailable")
		c.record(evt, start, err)
		return b.WithFinancials(&model.Financials{})
	}

	if fin.IsEmpty() {
		evt.Outcome = recorder.OutcomePartial
	}
	c.record(evt, start, nil)
	return b.WithFinancials(fin)
}

// FetchLatestQuote returns the most recent daily bar for symbol.
func (c *Collector) FetchLatestQuote(ctx context.Context, symbol string) (*model.Quote, error) {
	start := time.Now()
	evt := recorder.FetchEvent{Operation: "quote", Symbol: symbol, Period: string(model.Period1Day)}

	var bars []model.PricePoint
	err := c.call(ctx, func(ctx context.Context) error {
		var err error
		bars, err = c.Fetcher.FetchHistory(ctx, symbol, model.Period1Day)
		return err
	})
	if err != nil {
		return nil, c.notFound(evt, start, err)
	}
	if len(bars) == 0 {
		return nil, c.notFound(evt, start, errors.New("history: empty"))
	}

	last := bars[len(bars)-1]
	evt.Points = len(bars)
	c.record(evt, start, nil)
	return &model.Quote{
		Symbol:       symbol,
		Open:         last.Open,
		High:         last.High,
		Low:          last.Low,
		Close:        last.Close,
		Volume:       last.Volume,
		CurrentPrice: last.Close,
		Time:         last.Time,
	}, nil
}

// FetchMarketSummary reports the day-over-day move of each index in MarketIndices.
// Indices that fail are skipped; the rest keep display order.
func (c *Collector) FetchMarketSummary(ctx context.Context) []model.IndexSummary {
	results := make([]*model.IndexSummary, len(MarketIndices))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(len(MarketIndices))
	for i, idx := range MarketIndices {
		g.Go(func() error {
			results[i] = c.fetchIndex(gctx, idx)
			return nil
		})
	}
	_ = g.Wait()

	summary := make([]model.IndexSummary, 0, len(results))
	for _, r := range results {
		if r != nil {
			summary = append(summary, *r)
		}
	}
	return summary
}

func (c *Collector) fetchIndex(ctx context.Context, idx MarketIndex) *model.IndexSummary {
	start := time.Now()
	evt := recorder.FetchEvent{Operation: "index", Symbol: idx.Symbol, Period: string(model.Period2Days)}

	var bars []model.PricePoint
	err := c.call(ctx, func(ctx context.Context) error {
		var err error
		bars, err = c.Fetcher.FetchHistory(ctx, idx.Symbol, model.Period2Days)
		return err
	})
	if err == nil && len(bars) == 0 {
		err = errors.New("history: empty")
	}
	if err != nil {
		_ = c.notFound(evt, start, err)
		return nil
	}

	current := bars[len(bars)-1].Close
	previous := current
	if len(bars) > 1 {
		previous = bars[len(bars)-2].Close
	}
	if previous == 0 {
		_ = c.notFound(evt, start, errors.New("zero previous close"))
		return nil
	}

	evt.Points = len(bars)
	c.record(evt, start, nil)
	change := current - previous
	return &model.IndexSummary{
		Name:          idx.Name,
		Symbol:        idx.Symbol,
		Current:       current,
		Change:        change,
		ChangePercent: change / previous * 100,
	}
}

// FetchNews returns up to limit recent headlines for symbol.
func (c *Collector) FetchNews(ctx context.Context, symbol string, limit int) ([]model.NewsItem, error) {
	if limit <= 0 {
		limit = DefaultNewsLimit
	}
	start := time.Now()
	evt := recorder.FetchEvent{Operation: "news", Symbol: symbol}

	var items []model.NewsItem
	err := c.call(ctx, func(ctx context.Context) error {
		var err error
		items, err = c.Fetcher.FetchNews(ctx, symbol, limit)
		return err
	})
	if err != nil {
		return nil, c.notFound(evt, start, err)
	}
	if len(items) > limit {
		items = items[:limit]
	}
	evt.Points = len(items)
	c.record(evt, start, nil)
	return items, nil
}

// Compare fetches several symbols over the same period. Symbols that fail are omitted.
func (c *Collector) Compare(ctx context.Context, symbols []string, period model.Period) map[string]*model.StockBundle {
	out := make(map[string]*model.StockBundle, len(symbols))
	for _, s := range symbols {
		b, err := c.Fetch(ctx, s, period)
		if err != nil {
			continue
		}
		out[s] = b
	}
	return out
}
