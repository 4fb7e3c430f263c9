package model

import "github.com/guregu/null/v6"

// Series is a derived per-bar series aligned index-for-index with the source history.
// Positions before an indicator's lookback are invalid, never zero.
type Series []null.Float

// Latest returns the last valid value, if any.
func (s Series) Latest() null.Float {
	for i := len(s) - 1; i >= 0; i-- {
		if s[i].Valid {
			return s[i]
		}
	}
	return null.Float{}
}

// At returns the value at index i, invalid when i is out of range.
func (s Series) At(i int) null.Float {
	if i < 0 || i >= len(s) {
		return null.Float{}
	}
	return s[i]
}

// IndicatorSeries holds all derived technical series for one history.
type IndicatorSeries struct {
	SMA20           Series `json:"sma_20"`
	SMA50           Series `json:"sma_50"`
	SMA200          Series `json:"sma_200"`
	EMA12           Series `json:"ema_12"`
	EMA26           Series `json:"ema_26"`
	MACD            Series `json:"macd"`
	MACDSignal      Series `json:"macd_signal"`
	RSI14           Series `json:"rsi_14"`
	BollingerUpper  Series `json:"bollinger_upper"`
	BollingerMiddle Series `json:"bollinger_middle"`
	BollingerLower  Series `json:"bollinger_lower"`
}

// Trend labels.
const (
	TrendUpward       = "Upward"
	TrendDownward     = "Downward"
	TrendSideways     = "Sideways"
	TrendInsufficient = "Insufficient Data"
)

// SummaryStats are scalar statistics over a full price series.
type SummaryStats struct {
	Points      int        `json:"points"`
	Returns     []float64  `json:"returns"`
	Volatility  null.Float `json:"volatility"`
	SharpeRatio null.Float `json:"sharpe_ratio"`
	MaxDrawdown null.Float `json:"max_drawdown"`
	Trend       string     `json:"trend"`
	PeriodHigh  null.Float `json:"period_high"`
	PeriodLow   null.Float `json:"period_low"`
}
