package model

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/guregu/null/v6"
)

// Period is a lookback window for historical data, stored as the provider range code.
type Period string

const (
	Period1Month  Period = "1mo"
	Period3Months Period = "3mo"
	Period6Months Period = "6mo"
	Period1Year   Period = "1y"
	Period2Years  Period = "2y"
	Period5Years  Period = "5y"

	// Internal lookbacks used by quote and market summary lookups.
	Period1Day  Period = "1d"
	Period2Days Period = "2d"
)

// DefaultPeriod is used when the caller does not pick one.
const DefaultPeriod = Period1Year

var periodLabels = map[Period]string{
	Period1Month:  "1 Month",
	Period3Months: "3 Months",
	Period6Months: "6 Months",
	Period1Year:   "1 Year",
	Period2Years:  "2 Years",
	Period5Years:  "5 Years",
}

// Periods lists the user-selectable periods in display order.
func Periods() []Period {
	return []Period{Period1Month, Period3Months, Period6Months, Period1Year, Period2Years, Period5Years}
}

// Label returns the display label, e.g. "6 Months".
func (p Period) Label() string {
	if l, ok := periodLabels[p]; ok {
		return l
	}
	return string(p)
}

// ParsePeriod accepts a range code ("6mo") or a display label ("6 Months").
// An empty string yields DefaultPeriod.
func ParsePeriod(s string) (Period, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return DefaultPeriod, nil
	}
	for _, p := range Periods() {
		if strings.EqualFold(s, string(p)) || strings.EqualFold(s, p.Label()) {
			return p, nil
		}
	}
	return "", fmt.Errorf("unknown period %q", s)
}

// PricePoint is a single daily bar.
type PricePoint struct {
	Time     time.Time  `json:"time"`
	Open     float64    `json:"open"`
	High     float64    `json:"high"`
	Low      float64    `json:"low"`
	Close    float64    `json:"close"`
	Volume   float64    `json:"volume"`
	AdjClose null.Float `json:"adj_close"`
}

// Info holds descriptive fields for a symbol. Every field may be absent.
type Info struct {
	LongName      null.String `json:"long_name"`
	Sector        null.String `json:"sector"`
	Industry      null.String `json:"industry"`
	Currency      null.String `json:"currency"`
	Exchange      null.String `json:"exchange"`
	MarketCap     null.Float  `json:"market_cap"`
	TrailingPE    null.Float  `json:"trailing_pe"`
	Beta          null.Float  `json:"beta"`
	DividendYield null.Float  `json:"dividend_yield"` // fraction, 0.005 == 0.5%
	CurrentPrice  null.Float  `json:"current_price"`
	ChangePercent null.Float  `json:"change_percent"`
	Volume        null.Float  `json:"volume"`
}

// IsEmpty reports whether the provider returned nothing usable.
func (i Info) IsEmpty() bool {
	return !i.LongName.Valid && !i.Sector.Valid && !i.Industry.Valid &&
		!i.MarketCap.Valid && !i.CurrentPrice.Valid && !i.Exchange.Valid
}

// FinancialPeriod is one column of a financial statement.
type FinancialPeriod struct {
	EndDate time.Time          `json:"end_date"`
	Items   map[string]float64 `json:"items"`
}

// FinancialTable is a named financial statement, most recent period first.
type FinancialTable struct {
	Name    string            `json:"name"`
	Periods []FinancialPeriod `json:"periods"`
}

// Financials groups the optional statement tables. A nil table means the provider had none.
type Financials struct {
	QuarterlyIncome *FinancialTable `json:"quarterly_financials,omitempty"`
	BalanceSheet    *FinancialTable `json:"balance_sheet,omitempty"`
	CashFlow        *FinancialTable `json:"cash_flow,omitempty"`
}

// IsEmpty reports whether no table is present.
func (f *Financials) IsEmpty() bool {
	return f == nil || (f.QuarterlyIncome == nil && f.BalanceSheet == nil && f.CashFlow == nil)
}

// StockBundle is the result of one successful fetch. It is not mutated after construction.
type StockBundle struct {
	Symbol     string       `json:"symbol"`
	Period     Period       `json:"period"`
	Info       Info         `json:"info"`
	History    []PricePoint `json:"history"`
	Financials *Financials  `json:"financials,omitempty"`
	FetchedAt  time.Time    `json:"fetched_at"`
}

// WithFinancials returns a copy of the bundle carrying the given tables.
func (b *StockBundle) WithFinancials(f *Financials) *StockBundle {
	cp := *b
	cp.Financials = f
	return &cp
}

// Closes extracts the closing prices in order.
func (b *StockBundle) Closes() []float64 {
	return Closes(b.History)
}

// LastClose returns the most recent close, invalid when there is no history.
func (b *StockBundle) LastClose() null.Float {
	if len(b.History) == 0 {
		return null.Float{}
	}
	return null.FloatFrom(b.History[len(b.History)-1].Close)
}

// Closes extracts the closing prices of the given bars.
func Closes(points []PricePoint) []float64 {
	closes := make([]float64, len(points))
	for i, p := range points {
		closes[i] = p.Close
	}
	return closes
}

// Quote is a single-day snapshot.
type Quote struct {
	Symbol       string    `json:"symbol"`
	Open         float64   `json:"open"`
	High         float64   `json:"high"`
	Low          float64   `json:"low"`
	Close        float64   `json:"close"`
	Volume       float64   `json:"volume"`
	CurrentPrice float64   `json:"current_price"`
	Time         time.Time `json:"time"`
}

// IndexSummary is the day-over-day move of a market index.
type IndexSummary struct {
	Name          string  `json:"name"`
	Symbol        string  `json:"symbol"`
	Current       float64 `json:"current"`
	Change        float64 `json:"change"`
	ChangePercent float64 `json:"change_percent"`
}

// NewsItem is a headline about a symbol.
type NewsItem struct {
	Title     string    `json:"title"`
	Link      string    `json:"link"`
	Publisher string    `json:"publisher,omitempty"`
	Published time.Time `json:"published"`
}

// Float wraps v as a nullable value, treating NaN and infinities as absent.
func Float(v float64) null.Float {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return null.Float{}
	}
	return null.FloatFrom(v)
}
