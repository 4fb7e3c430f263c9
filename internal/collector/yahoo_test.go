package collector

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StockScope/internal/model"
)

const chartFixture = `{"chart":{"result":[{
  "timestamp":[1704205800,1704292200,1704378600,1704465000],
  "indicators":{
    "quote":[{
      "open":[185.0,null,182.1,181.9],
      "high":[186.5,null,183.0,182.7],
      "low":[183.4,null,180.8,180.1],
      "close":[185.6,null,181.9,181.2],
      "volume":[82488700,null,58414500,71983600]
    }],
    "adjclose":[{"adjclose":[184.9,null,181.2,null]}]
  }}],"error":null}}`

const infoFixture = `{"quoteSummary":{"result":[{
  "price":{"longName":"Apple Inc.","currency":"USD","exchangeName":"NasdaqGS",
    "regularMarketPrice":{"raw":181.2,"fmt":"181.20"},
    "regularMarketChangePercent":{"raw":-0.0038,"fmt":"-0.38%"},
    "regularMarketVolume":{"raw":71983600},
    "marketCap":{"raw":2.8e12,"fmt":"2.8T"}},
  "assetProfile":{"sector":"Technology","industry":"Consumer Electronics"},
  "summaryDetail":{"trailingPE":{"raw":28.4},"beta":{},"dividendYield":{"raw":0.0052}},
  "defaultKeyStatistics":{"beta":{"raw":1.29}},
  "financialData":{}
}],"error":null}}`

const statementsFixture = `{"quoteSummary":{"result":[{
  "incomeStatementHistoryQuarterly":{"incomeStatementHistory":[
    {"maxAge":1,"endDate":{"raw":1696032000,"fmt":"2023-09-30"},"totalRevenue":{"raw":8.9498e10},"netIncome":{"raw":2.2956e10}},
    {"maxAge":1,"endDate":{"raw":1703980800,"fmt":"2023-12-31"},"totalRevenue":{"raw":1.19575e11},"netIncome":{"raw":3.3916e10},"ebit":{}}
  ]},
  "balanceSheetHistory":{"balanceSheetStatements":[]}
}],"error":null}}`

const rssFixture = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0"><channel><title>Yahoo! Finance: AAPL News</title>
<item><title>Apple ships new chips</title><link>https://example.com/a</link><pubDate>Wed, 03 Jan 2024 14:00:00 +0000</pubDate></item>
<item><title>Apple earnings preview</title><link>https://example.com/b</link><pubDate>Tue, 02 Jan 2024 10:00:00 +0000</pubDate></item>
<item><title>Third story</title><link>https://example.com/c</link></item>
</channel></rss>`

func newYahooServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/v8/finance/chart/AAPL", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "1d", r.URL.Query().Get("interval"))
		assert.Equal(t, "6mo", r.URL.Query().Get("range"))
		assert.Equal(t, "test-agent", r.Header.Get("User-Agent"))
		w.Write([]byte(chartFixture))
	})
	mux.HandleFunc("/v8/finance/chart/ZZZZ", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found, symbol may be delisted"}}}`))
	})
	mux.HandleFunc("/v10/finance/quoteSummary/AAPL", func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.Query().Get("modules"), "balanceSheetHistory") {
			w.Write([]byte(statementsFixture))
			return
		}
		w.Write([]byte(infoFixture))
	})
	mux.HandleFunc("/rss", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "AAPL", r.URL.Query().Get("s"))
		w.Header().Set("Content-Type", "application/rss+xml")
		w.Write([]byte(rssFixture))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newTestYahoo(srv *httptest.Server) *YahooFetcher {
	return NewYahooFetcher(YahooOptions{
		BaseURL:       srv.URL,
		NewsURL:       srv.URL + "/rss",
		UserAgent:     "test-agent",
		RatePerSecond: 100,
	})
}

func TestYahooFetcher_FetchHistory(t *testing.T) {
	f := newTestYahoo(newYahooServer(t))

	bars, err := f.FetchHistory(context.Background(), "AAPL", model.Period6Months)
	require.NoError(t, err)
	require.Len(t, bars, 3, "null bar skipped")

	assert.Equal(t, 185.6, bars[0].Close)
	assert.Equal(t, 82488700.0, bars[0].Volume)
	assert.True(t, bars[0].AdjClose.Valid)
	assert.InDelta(t, 184.9, bars[0].AdjClose.Float64, 1e-9)
	assert.False(t, bars[2].AdjClose.Valid)
	for i := 1; i < len(bars); i++ {
		assert.True(t, bars[i].Time.After(bars[i-1].Time))
	}
}

func TestYahooFetcher_FetchHistory_NotFound(t *testing.T) {
	f := newTestYahoo(newYahooServer(t))

	_, err := f.FetchHistory(context.Background(), "ZZZZ", model.Period1Year)
	assert.Error(t, err)
}

func TestYahooFetcher_FetchInfo(t *testing.T) {
	f := newTestYahoo(newYahooServer(t))

	info, err := f.FetchInfo(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.Equal(t, "Apple Inc.", info.LongName.String)
	assert.Equal(t, "Technology", info.Sector.String)
	assert.Equal(t, "NasdaqGS", info.Exchange.String)
	assert.InDelta(t, 2.8e12, info.MarketCap.Float64, 1)
	assert.InDelta(t, 28.4, info.TrailingPE.Float64, 1e-9)
	assert.InDelta(t, 1.29, info.Beta.Float64, 1e-9, "falls back to key statistics")
	assert.InDelta(t, 181.2, info.CurrentPrice.Float64, 1e-9, "falls back to market price")
	assert.InDelta(t, -0.38, info.ChangePercent.Float64, 1e-9)
	assert.InDelta(t, 0.0052, info.DividendYield.Float64, 1e-12)
}

func TestYahooFetcher_FetchStatements(t *testing.T) {
	f := newTestYahoo(newYahooServer(t))

	fin, err := f.FetchStatements(context.Background(), "AAPL")
	require.NoError(t, err)
	require.NotNil(t, fin.QuarterlyIncome)
	assert.Nil(t, fin.BalanceSheet)
	assert.Nil(t, fin.CashFlow)

	periods := fin.QuarterlyIncome.Periods
	require.Len(t, periods, 2)
	assert.Equal(t, time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC), periods[0].EndDate)
	assert.Equal(t, 1.19575e11, periods[0].Items["totalRevenue"])
	assert.NotContains(t, periods[0].Items, "maxAge")
	assert.NotContains(t, periods[0].Items, "ebit")
}

func TestYahooFetcher_FetchNews(t *testing.T) {
	f := newTestYahoo(newYahooServer(t))

	items, err := f.FetchNews(context.Background(), "AAPL", 2)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "Apple ships new chips", items[0].Title)
	assert.Equal(t, "https://example.com/a", items[0].Link)
	assert.Equal(t, "Yahoo! Finance: AAPL News", items[0].Publisher)
	assert.Equal(t, 2024, items[0].Published.Year())
}

func TestDedupeDays(t *testing.T) {
	day := time.Date(2024, 1, 2, 14, 30, 0, 0, time.UTC)
	bars := []model.PricePoint{
		{Time: day, Close: 1},
		{Time: day.Add(24 * time.Hour), Close: 2},
		{Time: day.Add(25 * time.Hour), Close: 3},
	}
	out := dedupeDays(bars)
	require.Len(t, out, 2)
	assert.Equal(t, 3.0, out[1].Close)
}
