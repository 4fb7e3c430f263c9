package calculator

import (
	"math"

	"github.com/guregu/null/v6"

	"StockScope/internal/model"
)

// PriceRange scans the bars and returns the highest high and lowest low.
// Both are invalid for an empty history.
func PriceRange(bars []model.PricePoint) (high, low null.Float) {
	if len(bars) == 0 {
		return null.Float{}, null.Float{}
	}
	h := math.Inf(-1)
	l := math.Inf(1)
	for _, b := range bars {
		if b.High > h {
			h = b.High
		}
		if b.Low < l {
			l = b.Low
		}
	}
	return model.Float(h), model.Float(l)
}

// RangePosition returns where current sits within [low, high], clamped to 0..1.
// A zero-width range yields 0.5.
func RangePosition(current, high, low float64) null.Float {
	if high < low {
		return null.Float{}
	}
	if high == low {
		return null.FloatFrom(0.5)
	}
	pos := (current - low) / (high - low)
	return null.FloatFrom(math.Max(0, math.Min(1, pos)))
}
