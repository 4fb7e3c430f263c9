package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/guregu/null/v6"
	"github.com/mmcdole/gofeed"
	"golang.org/x/time/rate"

	"StockScope/internal/model"
)

const (
	DefaultBaseURL   = "https://query1.finance.yahoo.com"
	DefaultNewsURL   = "https://feeds.finance.yahoo.com/rss/2.0/headline"
	DefaultUserAgent = "Mozilla/5.0"
	DefaultRateLimit = 5
)

// YahooOptions configures a YahooFetcher. Zero values fall back to the defaults above.
type YahooOptions struct {
	BaseURL       string
	NewsURL       string
	Proxy         string
	UserAgent     string
	RatePerSecond float64
}

// YahooFetcher implements Fetcher using the Yahoo Finance public API.
type YahooFetcher struct {
	Client    *http.Client
	BaseURL   string
	NewsURL   string
	UserAgent string
	SymbolMap map[string]string // maps user-facing aliases to Yahoo tickers

	limiter *rate.Limiter
}

// NewYahooFetcher creates a new Yahoo Finance fetcher.
func NewYahooFetcher(opts YahooOptions) *YahooFetcher {
	transport := &http.Transport{}
	if opts.Proxy != "" {
		if u, err := url.Parse(opts.Proxy); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.NewsURL == "" {
		opts.NewsURL = DefaultNewsURL
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	if opts.RatePerSecond <= 0 {
		opts.RatePerSecond = DefaultRateLimit
	}
	burst := int(opts.RatePerSecond)
	if burst < 1 {
		burst = 1
	}
	return &YahooFetcher{
		Client: &http.Client{
			Timeout:   30 * time.Second,
			Transport: transport,
		},
		BaseURL:   strings.TrimRight(opts.BaseURL, "/"),
		NewsURL:   opts.NewsURL,
		UserAgent: opts.UserAgent,
		SymbolMap: map[string]string{
			"SPX":   "^GSPC",
			"SP500": "^GSPC",
			"DJI":   "^DJI",
			"IXIC":  "^IXIC",
			"RUT":   "^RUT",
		},
		limiter: rate.NewLimiter(rate.Limit(opts.RatePerSecond), burst),
	}
}

func (f *YahooFetcher) Name() string { return "yahoo" }

func (f *YahooFetcher) yahooSymbol(symbol string) string {
	if mapped, ok := f.SymbolMap[symbol]; ok {
		return mapped
	}
	return symbol
}

// getJSON issues a rate-limited GET and decodes the body into out.
func (f *YahooFetcher) getJSON(ctx context.Context, path string, params url.Values, out interface{}) error {
	if err := f.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	u := f.BaseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", f.UserAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := f.Client.Do(req)
	if err != nil {
		return fmt.Errorf("yahoo fetch: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("yahoo read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("yahoo: status %d, body: %s", resp.StatusCode, truncate(string(body), 200))
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("yahoo decode: %w", err)
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// yahooChart is the response structure from the v8 chart API.
// Price arrays carry nulls for days without trading.
type yahooChart struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []*float64 `json:"open"`
					High   []*float64 `json:"high"`
					Low    []*float64 `json:"low"`
					Close  []*float64 `json:"close"`
					Volume []*float64 `json:"volume"`
				} `json:"quote"`
				AdjClose []struct {
					AdjClose []*float64 `json:"adjclose"`
				} `json:"adjclose"`
			} `json:"indicators"`
		} `json:"result"`
		Error *yahooError `json:"error"`
	} `json:"chart"`
}

type yahooError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

func at(vals []*float64, i int) *float64 {
	if i < len(vals) {
		return vals[i]
	}
	return nil
}

func deref(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}

// FetchHistory returns daily bars for the period, oldest first.
func (f *YahooFetcher) FetchHistory(ctx context.Context, symbol string, period model.Period) ([]model.PricePoint, error) {
	params := url.Values{}
	params.Set("interval", "1d")
	params.Set("range", string(period))
	params.Set("includeAdjustedClose", "true")

	var chart yahooChart
	path := "/v8/finance/chart/" + url.PathEscape(f.yahooSymbol(symbol))
	if err := f.getJSON(ctx, path, params, &chart); err != nil {
		return nil, err
	}
	if chart.Chart.Error != nil {
		return nil, fmt.Errorf("yahoo api error: %s", chart.Chart.Error.Description)
	}
	if len(chart.Chart.Result) == 0 || len(chart.Chart.Result[0].Timestamp) == 0 {
		return nil, fmt.Errorf("yahoo: no data returned")
	}

	result := chart.Chart.Result[0]
	if len(result.Indicators.Quote) == 0 {
		return nil, fmt.Errorf("yahoo: no quote block")
	}
	quote := result.Indicators.Quote[0]
	var adj []*float64
	if len(result.Indicators.AdjClose) > 0 {
		adj = result.Indicators.AdjClose[0].AdjClose
	}

	bars := make([]model.PricePoint, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		c := at(quote.Close, i)
		if c == nil {
			continue // skip null bars (holidays etc.)
		}
		bar := model.PricePoint{
			Time:   time.Unix(ts, 0).UTC(),
			Open:   deref(at(quote.Open, i)),
			High:   deref(at(quote.High, i)),
			Low:    deref(at(quote.Low, i)),
			Close:  *c,
			Volume: deref(at(quote.Volume, i)),
		}
		if a := at(adj, i); a != nil {
			bar.AdjClose = null.FloatFrom(*a)
		}
		bars = append(bars, bar)
	}

	sort.SliceStable(bars, func(i, j int) bool { return bars[i].Time.Before(bars[j].Time) })
	return dedupeDays(bars), nil
}

// dedupeDays keeps the last bar for each calendar day so times strictly increase.
// Yahoo appends a live bar for the current session that can share a day with the last close.
func dedupeDays(bars []model.PricePoint) []model.PricePoint {
	if len(bars) < 2 {
		return bars
	}
	out := bars[:1]
	for _, b := range bars[1:] {
		last := &out[len(out)-1]
		if sameDay(last.Time, b.Time) || !b.Time.After(last.Time) {
			*last = b
			continue
		}
		out = append(out, b)
	}
	return out
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// yfValue is the {"raw": ..., "fmt": ...} wrapper used by quoteSummary. Missing values arrive as {}.
type yfValue struct {
	Raw *float64 `json:"raw"`
	Fmt string   `json:"fmt"`
}

func (v yfValue) float() null.Float {
	if v.Raw == nil {
		return null.Float{}
	}
	return model.Float(*v.Raw)
}

func str(s string) null.String {
	return null.NewString(s, s != "")
}

type quoteSummary struct {
	QuoteSummary struct {
		Result []json.RawMessage `json:"result"`
		Error  *yahooError       `json:"error"`
	} `json:"quoteSummary"`
}

type infoModules struct {
	Price struct {
		LongName                   string  `json:"longName"`
		ShortName                  string  `json:"shortName"`
		Currency                   string  `json:"currency"`
		ExchangeName               string  `json:"exchangeName"`
		RegularMarketPrice         yfValue `json:"regularMarketPrice"`
		RegularMarketChangePercent yfValue `json:"regularMarketChangePercent"`
		RegularMarketVolume        yfValue `json:"regularMarketVolume"`
		MarketCap                  yfValue `json:"marketCap"`
	} `json:"price"`
	AssetProfile struct {
		Sector   string `json:"sector"`
		Industry string `json:"industry"`
	} `json:"assetProfile"`
	SummaryDetail struct {
		TrailingPE    yfValue `json:"trailingPE"`
		Beta          yfValue `json:"beta"`
		DividendYield yfValue `json:"dividendYield"`
		MarketCap     yfValue `json:"marketCap"`
		Volume        yfValue `json:"volume"`
	} `json:"summaryDetail"`
	DefaultKeyStatistics struct {
		Beta yfValue `json:"beta"`
	} `json:"defaultKeyStatistics"`
	FinancialData struct {
		CurrentPrice yfValue `json:"currentPrice"`
	} `json:"financialData"`
}

func (f *YahooFetcher) quoteSummary(ctx context.Context, symbol string, modules []string, out interface{}) error {
	params := url.Values{}
	params.Set("modules", strings.Join(modules, ","))

	var qs quoteSummary
	path := "/v10/finance/quoteSummary/" + url.PathEscape(f.yahooSymbol(symbol))
	if err := f.getJSON(ctx, path, params, &qs); err != nil {
		return err
	}
	if qs.QuoteSummary.Error != nil {
		return fmt.Errorf("yahoo api error: %s", qs.QuoteSummary.Error.Description)
	}
	if len(qs.QuoteSummary.Result) == 0 {
		return fmt.Errorf("yahoo: empty quoteSummary")
	}
	if err := json.Unmarshal(qs.QuoteSummary.Result[0], out); err != nil {
		return fmt.Errorf("yahoo decode modules: %w", err)
	}
	return nil
}

// FetchInfo returns the descriptive fields. ChangePercent is converted to percent units.
func (f *YahooFetcher) FetchInfo(ctx context.Context, symbol string) (model.Info, error) {
	var m infoModules
	modules := []string{"price", "assetProfile", "summaryDetail", "defaultKeyStatistics", "financialData"}
	if err := f.quoteSummary(ctx, symbol, modules, &m); err != nil {
		return model.Info{}, err
	}

	name := m.Price.LongName
	if name == "" {
		name = m.Price.ShortName
	}
	info := model.Info{
		LongName:      str(name),
		Sector:        str(m.AssetProfile.Sector),
		Industry:      str(m.AssetProfile.Industry),
		Currency:      str(m.Price.Currency),
		Exchange:      str(m.Price.ExchangeName),
		MarketCap:     m.Price.MarketCap.float(),
		TrailingPE:    m.SummaryDetail.TrailingPE.float(),
		Beta:          m.SummaryDetail.Beta.float(),
		DividendYield: m.SummaryDetail.DividendYield.float(),
		CurrentPrice:  m.FinancialData.CurrentPrice.float(),
		Volume:        m.SummaryDetail.Volume.float(),
	}
	if !info.MarketCap.Valid {
		info.MarketCap = m.SummaryDetail.MarketCap.float()
	}
	if !info.Beta.Valid {
		info.Beta = m.DefaultKeyStatistics.Beta.float()
	}
	if !info.CurrentPrice.Valid {
		info.CurrentPrice = m.Price.RegularMarketPrice.float()
	}
	if !info.Volume.Valid {
		info.Volume = m.Price.RegularMarketVolume.float()
	}
	if cp := m.Price.RegularMarketChangePercent.float(); cp.Valid {
		info.ChangePercent = null.FloatFrom(cp.Float64 * 100)
	}
	return info, nil
}

type statementModules struct {
	Income struct {
		Statements []map[string]json.RawMessage `json:"incomeStatementHistory"`
	} `json:"incomeStatementHistoryQuarterly"`
	Balance struct {
		Statements []map[string]json.RawMessage `json:"balanceSheetStatements"`
	} `json:"balanceSheetHistory"`
	CashFlow struct {
		Statements []map[string]json.RawMessage `json:"cashflowStatements"`
	} `json:"cashflowStatementHistory"`
}

// FetchStatements returns whichever statement tables the provider has.
func (f *YahooFetcher) FetchStatements(ctx context.Context, symbol string) (*model.Financials, error) {
	var m statementModules
	modules := []string{"incomeStatementHistoryQuarterly", "balanceSheetHistory", "cashflowStatementHistory"}
	if err := f.quoteSummary(ctx, symbol, modules, &m); err != nil {
		return nil, err
	}
	return &model.Financials{
		QuarterlyIncome: statementTable("Quarterly Financials", m.Income.Statements),
		BalanceSheet:    statementTable("Balance Sheet", m.Balance.Statements),
		CashFlow:        statementTable("Cash Flow", m.CashFlow.Statements),
	}, nil
}

func statementTable(name string, statements []map[string]json.RawMessage) *model.FinancialTable {
	if len(statements) == 0 {
		return nil
	}
	table := &model.FinancialTable{Name: name}
	for _, st := range statements {
		p := model.FinancialPeriod{Items: make(map[string]float64)}
		for key, raw := range st {
			var v yfValue
			if err := json.Unmarshal(raw, &v); err != nil || v.Raw == nil {
				continue // maxAge and other scalars
			}
			if key == "endDate" {
				p.EndDate = time.Unix(int64(*v.Raw), 0).UTC()
				continue
			}
			p.Items[key] = *v.Raw
		}
		if p.EndDate.IsZero() && len(p.Items) == 0 {
			continue
		}
		table.Periods = append(table.Periods, p)
	}
	if len(table.Periods) == 0 {
		return nil
	}
	sort.SliceStable(table.Periods, func(i, j int) bool {
		return table.Periods[i].EndDate.After(table.Periods[j].EndDate)
	})
	return table
}

// FetchNews reads the headline RSS feed for the symbol.
func (f *YahooFetcher) FetchNews(ctx context.Context, symbol string, limit int) ([]model.NewsItem, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	params := url.Values{}
	params.Set("s", f.yahooSymbol(symbol))
	params.Set("region", "US")
	params.Set("lang", "en-US")

	parser := gofeed.NewParser()
	parser.Client = f.Client
	parser.UserAgent = f.UserAgent
	feed, err := parser.ParseURLWithContext(f.NewsURL+"?"+params.Encode(), ctx)
	if err != nil {
		return nil, fmt.Errorf("parse news feed: %w", err)
	}

	items := make([]model.NewsItem, 0, len(feed.Items))
	for _, it := range feed.Items {
		if limit > 0 && len(items) >= limit {
			break
		}
		n := model.NewsItem{
			Title:     strings.TrimSpace(it.Title),
			Link:      it.Link,
			Publisher: feed.Title,
		}
		if len(it.Authors) > 0 && it.Authors[0] != nil && it.Authors[0].Name != "" {
			n.Publisher = it.Authors[0].Name
		}
		if it.PublishedParsed != nil {
			n.Published = it.PublishedParsed.UTC()
		}
		items = append(items, n)
	}
	return items, nil
}
