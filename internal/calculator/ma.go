package calculator

import (
	"StockScope/internal/model"
)

// SMA computes the simple moving average of values over period.
// Positions with fewer than period trailing values are left invalid.
func SMA(values []float64, period int) model.Series {
	out := make(model.Series, len(values))
	if period <= 0 || len(values) < period {
		return out
	}
	sum := 0.0
	for i := 0; i < period; i++ {
		sum += values[i]
	}
	out[period-1] = model.Float(sum / float64(period))
	for i := period; i < len(values); i++ {
		sum += values[i] - values[i-period]
		out[i] = model.Float(sum / float64(period))
	}
	return out
}

// EMA computes the exponentially weighted mean with smoothing 2/(span+1).
// Weights are normalised over the points seen so far, so the series is defined
// from the first value onward and converges to the recursive EMA as it grows.
// Invalid inputs are skipped and yield invalid outputs.
func EMA(values model.Series, span int) model.Series {
	out := make(model.Series, len(values))
	if span <= 0 {
		return out
	}
	decay := 1 - 2/(float64(span)+1)
	var num, den float64
	for i, v := range values {
		if !v.Valid {
			continue
		}
		num = v.Float64 + decay*num
		den = 1 + decay*den
		out[i] = model.Float(num / den)
	}
	return out
}

// EMAOf is EMA over a plain slice.
func EMAOf(values []float64, span int) model.Series {
	return EMA(toSeries(values), span)
}

// MACD returns EMA(12)-EMA(26) and its EMA(9) signal line.
func MACD(closes []float64) (macd, signal model.Series) {
	return MACDWith(closes, 12, 26, 9)
}

// MACDWith is MACD with explicit spans.
func MACDWith(closes []float64, fast, slow, signalSpan int) (macd, signal model.Series) {
	macd = diff(EMAOf(closes, fast), EMAOf(closes, slow))
	return macd, EMA(macd, signalSpan)
}

func diff(a, b model.Series) model.Series {
	out := make(model.Series, len(a))
	for i := range a {
		if i < len(b) && a[i].Valid && b[i].Valid {
			out[i] = model.Float(a[i].Float64 - b[i].Float64)
		}
	}
	return out
}

func toSeries(values []float64) model.Series {
	out := make(model.Series, len(values))
	for i, v := range values {
		out[i] = model.Float(v)
	}
	return out
}
