package format

import (
	"fmt"
	"strings"
	"time"

	"github.com/guregu/null/v6"

	"StockScope/internal/model"
)

// FormatReport renders a plain-text analysis of a bundle for terminal output.
func FormatReport(b *model.StockBundle, ind *model.IndicatorSeries, s *model.SummaryStats) string {
	var sb strings.Builder
	info := b.Info

	name := b.Symbol
	if info.LongName.Valid {
		name = info.LongName.String
	}
	sb.WriteString(fmt.Sprintf("%s (%s) | %s\n", name, b.Symbol, b.Period.Label()))
	sb.WriteString(fmt.Sprintf("Sector: %s | Industry: %s\n", orNA(info.Sector), orNA(info.Industry)))
	if n := len(b.History); n > 0 {
		sb.WriteString(fmt.Sprintf("Range: %s (%d trading days)\n", FormatDateRange(b.History[0].Time, b.History[n-1].Time), n))
	}
	sb.WriteString("\n")

	price := info.CurrentPrice
	if !price.Valid {
		price = b.LastClose()
	}
	sb.WriteString(fmt.Sprintf("Current Price:  %s (%s)\n", FormatCurrency(price), FormatPercentage(info.ChangePercent, 2)))
	sb.WriteString(fmt.Sprintf("Market Cap:     %s\n", FormatCurrency(info.MarketCap)))
	sb.WriteString(fmt.Sprintf("P/E Ratio:      %s\n", FormatPE(info.TrailingPE)))
	sb.WriteString(fmt.Sprintf("Dividend Yield: %s\n", FormatFraction(info.DividendYield, 2)))
	sb.WriteString(fmt.Sprintf("Volume:         %s\n", FormatVolume(volume(b))))
	sb.WriteString(fmt.Sprintf("Beta:           %s\n\n", FormatRatio(info.Beta)))

	if ind != nil {
		sb.WriteString("Indicators (latest):\n")
		sb.WriteString(fmt.Sprintf("  SMA 20/50/200: %s / %s / %s\n",
			FormatCurrency(ind.SMA20.Latest()), FormatCurrency(ind.SMA50.Latest()), FormatCurrency(ind.SMA200.Latest())))
		sb.WriteString(fmt.Sprintf("  MACD: %s (signal %s)\n", FormatRatio(ind.MACD.Latest()), FormatRatio(ind.MACDSignal.Latest())))
		sb.WriteString(fmt.Sprintf("  RSI 14: %s\n", FormatRatio(ind.RSI14.Latest())))
		sb.WriteString(fmt.Sprintf("  Bollinger: %s - %s\n\n",
			FormatCurrency(ind.BollingerLower.Latest()), FormatCurrency(ind.BollingerUpper.Latest())))
	}

	if s != nil {
		sb.WriteString("Summary:\n")
		sb.WriteString(fmt.Sprintf("  Trend:        %s\n", s.Trend))
		sb.WriteString(fmt.Sprintf("  Volatility:   %s\n", FormatFraction(s.Volatility, 2)))
		sb.WriteString(fmt.Sprintf("  Sharpe Ratio: %s\n", FormatRatio(s.SharpeRatio)))
		sb.WriteString(fmt.Sprintf("  Max Drawdown: %s\n", FormatFraction(s.MaxDrawdown, 2)))
		sb.WriteString(fmt.Sprintf("  Period Range: %s - %s\n", FormatCurrency(s.PeriodLow), FormatCurrency(s.PeriodHigh)))
	}

	sb.WriteString(fmt.Sprintf("\nFetched %s\n", b.FetchedAt.Format(time.DateTime)))
	return sb.String()
}

// FormatMarketSummary renders one line per index.
func FormatMarketSummary(indices []model.IndexSummary) string {
	if len(indices) == 0 {
		return "Market summary unavailable\n"
	}
	var sb strings.Builder
	for _, idx := range indices {
		sb.WriteString(fmt.Sprintf("%-14s %12.2f %+10.2f (%+.2f%%)\n", idx.Name, idx.Current, idx.Change, idx.ChangePercent))
	}
	return sb.String()
}

// FormatQuote renders a single-day snapshot.
func FormatQuote(q *model.Quote) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s %s\n", q.Symbol, q.Time.Format(time.DateOnly)))
	sb.WriteString(fmt.Sprintf("Price: %s | Open: %s | High: %s | Low: %s\n",
		FormatCurrency(null.FloatFrom(q.CurrentPrice)), FormatCurrency(null.FloatFrom(q.Open)),
		FormatCurrency(null.FloatFrom(q.High)), FormatCurrency(null.FloatFrom(q.Low))))
	sb.WriteString(fmt.Sprintf("Volume: %s\n", FormatVolume(null.FloatFrom(q.Volume))))
	return sb.String()
}

// FormatOutlook renders the factor breakdown of a technical outlook.
func FormatOutlook(o *model.Outlook) string {
	if o == nil {
		return ""
	}
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("\nOutlook: %s (score %+.3f)\n", o.Label, o.TotalScore))
	for _, f := range o.Factors {
		sb.WriteString(fmt.Sprintf("  %-17s %+.1f x %.2f = %+.3f  %s\n", f.Name, f.RawScore, f.Weight, f.Weighted, f.Commentary))
	}
	if o.Warning != "" {
		sb.WriteString("  ! " + o.Warning + "\n")
	}
	return sb.String()
}

func orNA(s null.String) string {
	if !s.Valid || s.String == "" {
		return NotAvailable
	}
	return s.String
}

func volume(b *model.StockBundle) null.Float {
	if b.Info.Volume.Valid {
		return b.Info.Volume
	}
	if n := len(b.History); n > 0 {
		return null.FloatFrom(b.History[n-1].Volume)
	}
	return null.Float{}
}
