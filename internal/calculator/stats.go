package calculator

import (
	"math"

	"github.com/guregu/null/v6"

	"StockScope/internal/model"
)

const (
	// TradingDaysPerYear annualises daily statistics.
	TradingDaysPerYear = 252
	// DefaultRiskFreeRate is the annual rate used for the Sharpe ratio.
	DefaultRiskFreeRate = 0.02
	// DefaultTrendWindow is the moving-average window used for trend detection.
	DefaultTrendWindow = 20
	// trendThresholdPct is the moving-average change that counts as a trend.
	trendThresholdPct = 2.0
)

// Returns computes simple day-over-day percent changes. The first point has no
// predecessor and is dropped, as is any change from a non-positive price.
func Returns(prices []float64) []float64 {
	if len(prices) < 2 {
		return []float64{}
	}
	out := make([]float64, 0, len(prices)-1)
	for i := 1; i < len(prices); i++ {
		if prices[i-1] <= 0 {
			continue
		}
		out = append(out, (prices[i]-prices[i-1])/prices[i-1])
	}
	return out
}

// Volatility returns the annualised sample standard deviation of returns.
// It needs at least two returns.
func Volatility(returns []float64, periods int) null.Float {
	if len(returns) < 2 {
		return null.Float{}
	}
	return model.Float(stdDev(returns) * math.Sqrt(float64(periods)))
}

// SharpeRatio returns the annualised mean excess return over the per-period
// risk-free rate divided by the standard deviation of returns. It is undefined
// for fewer than two returns or when returns have no dispersion.
func SharpeRatio(returns []float64, riskFreeRate float64, periods int) null.Float {
	if len(returns) < 2 {
		return null.Float{}
	}
	sd := stdDev(returns)
	if sd == 0 {
		return null.Float{}
	}
	periodRf := riskFreeRate / float64(periods)
	excess := 0.0
	for _, r := range returns {
		excess += r - periodRf
	}
	excess /= float64(len(returns))
	return model.Float(excess / sd * math.Sqrt(float64(periods)))
}

// MaxDrawdown returns the most negative (price - running peak) / running peak.
// The result is <= 0, and 0 only when prices never fall below a prior peak.
func MaxDrawdown(prices []float64) null.Float {
	if len(prices) == 0 {
		return null.Float{}
	}
	peak := prices[0]
	worst := 0.0
	seen := false
	for _, p := range prices {
		if p > peak {
			peak = p
		}
		if peak <= 0 {
			continue
		}
		seen = true
		if dd := (p - peak) / peak; dd < worst {
			worst = dd
		}
	}
	if !seen {
		return null.Float{}
	}
	return null.FloatFrom(worst)
}

// DetermineTrend compares the latest window-period moving average with the one
// about half a window earlier and classifies the change at a ±2% threshold.
func DetermineTrend(prices []float64, window int) string {
	if window <= 0 || len(prices) < window {
		return model.TrendInsufficient
	}
	ma := SMA(prices, window)
	current := ma[len(ma)-1]
	previous := ma.At(len(ma) - (window+1)/2)
	if !current.Valid || !previous.Valid || previous.Float64 == 0 {
		return model.TrendInsufficient
	}

	changePct := (current.Float64 - previous.Float64) / previous.Float64 * 100
	switch {
	case changePct > trendThresholdPct:
		return model.TrendUpward
	case changePct < -trendThresholdPct:
		return model.TrendDownward
	default:
		return model.TrendSideways
	}
}

// SummaryOptions tunes ComputeSummary.
type SummaryOptions struct {
	RiskFreeRate float64
	TrendWindow  int
}

// DefaultSummaryOptions returns the standard settings.
func DefaultSummaryOptions() SummaryOptions {
	return SummaryOptions{RiskFreeRate: DefaultRiskFreeRate, TrendWindow: DefaultTrendWindow}
}

// ComputeSummary computes scalar statistics over the closing prices of bars.
// Empty or short input yields invalid values and an "Insufficient Data" trend.
func ComputeSummary(bars []model.PricePoint, opts SummaryOptions) model.SummaryStats {
	if opts.TrendWindow <= 0 {
		opts.TrendWindow = DefaultTrendWindow
	}
	prices := model.Closes(bars)
	returns := Returns(prices)
	high, low := PriceRange(bars)

	return model.SummaryStats{
		Points:      len(prices),
		Returns:     returns,
		Volatility:  Volatility(returns, TradingDaysPerYear),
		SharpeRatio: SharpeRatio(returns, opts.RiskFreeRate, TradingDaysPerYear),
		MaxDrawdown: MaxDrawdown(prices),
		Trend:       DetermineTrend(prices, opts.TrendWindow),
		PeriodHigh:  high,
		PeriodLow:   low,
	}
}
