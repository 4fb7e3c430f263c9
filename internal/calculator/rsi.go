package calculator

import (
	"StockScope/internal/model"
)

// RSI computes the relative strength index from simple rolling means of gains and
// losses over the trailing period price changes. The first defined value is at
// index period.
//
// When the average loss is zero the ratio is undefined: the result is 100 if there
// were gains and 50 for a completely flat window.
func RSI(closes []float64, period int) model.Series {
	out := make(model.Series, len(closes))
	if period <= 0 || len(closes) < period+1 {
		return out
	}

	gains := make([]float64, len(closes))
	losses := make([]float64, len(closes))
	for i := 1; i < len(closes); i++ {
		change := closes[i] - closes[i-1]
		if change > 0 {
			gains[i] = change
		} else {
			losses[i] = -change
		}
	}

	var sumGain, sumLoss float64
	for i := 1; i <= period; i++ {
		sumGain += gains[i]
		sumLoss += losses[i]
	}
	out[period] = model.Float(rsiValue(sumGain/float64(period), sumLoss/float64(period)))

	for i := period + 1; i < len(closes); i++ {
		sumGain += gains[i] - gains[i-period]
		sumLoss += losses[i] - losses[i-period]
		out[i] = model.Float(rsiValue(sumGain/float64(period), sumLoss/float64(period)))
	}
	return out
}

// rolling sums drift slightly below zero on long series
const epsilon = 1e-12

func rsiValue(avgGain, avgLoss float64) float64 {
	if avgLoss <= epsilon {
		if avgGain <= epsilon {
			return 50
		}
		return 100
	}
	rs := avgGain / avgLoss
	return 100 - 100/(1+rs)
}
