package calculator

import (
	"math"

	"StockScope/internal/model"
)

// Bollinger returns the middle band (SMA) and the bands k sample standard
// deviations above and below it, over the trailing period closes.
func Bollinger(closes []float64, period int, k float64) (upper, middle, lower model.Series) {
	middle = SMA(closes, period)
	sd := RollingStdDev(closes, period)
	upper = make(model.Series, len(closes))
	lower = make(model.Series, len(closes))
	for i := range closes {
		if !middle[i].Valid || !sd[i].Valid {
			continue
		}
		upper[i] = model.Float(middle[i].Float64 + k*sd[i].Float64)
		lower[i] = model.Float(middle[i].Float64 - k*sd[i].Float64)
	}
	return upper, middle, lower
}

// RollingStdDev is the sample (n-1) standard deviation over a trailing window.
func RollingStdDev(values []float64, period int) model.Series {
	out := make(model.Series, len(values))
	if period < 2 || len(values) < period {
		return out
	}
	for i := period - 1; i < len(values); i++ {
		out[i] = model.Float(stdDev(values[i-period+1 : i+1]))
	}
	return out
}

func mean(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range data {
		sum += v
	}
	return sum / float64(len(data))
}

// stdDev is the sample standard deviation; callers guarantee len(data) >= 2.
func stdDev(data []float64) float64 {
	m := mean(data)
	ss := 0.0
	for _, v := range data {
		d := v - m
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(data)-1))
}
