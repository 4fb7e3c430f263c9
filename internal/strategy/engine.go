// Package strategy scores the latest indicator readings into a technical outlook.
package strategy

import (
	"StockScope/internal/calculator"
	"StockScope/internal/model"
)

// Tiers maps a total score to an outlook label, highest first.
var Tiers = []struct {
	MinScore float64
	Label    string
}{
	{1.2, "Deeply Oversold"},
	{0.5, "Oversold"},
	{-0.5, "Neutral"},
	{-1.2, "Overbought"},
}

// DefaultLabel is used for scores below every tier.
const DefaultLabel = "Deeply Overbought"

// recentWindow is the number of bars used for the short-term high/low check.
const recentWindow = 30

func mapTier(totalScore float64) string {
	for _, t := range Tiers {
		if totalScore >= t.MinScore {
			return t.Label
		}
	}
	return DefaultLabel
}

// snapshot is the latest state the factors read from.
type snapshot struct {
	price      float64
	sma20      float64
	sma50      float64
	sma200     float64
	rsi        float64
	macd       float64
	macdSignal float64
	position   float64 // 0..1 within the period range
	recentHigh float64
	recentLow  float64

	hasSMA200, hasAlignment, hasRSI, hasMACD, hasPosition bool
}

func takeSnapshot(ind *model.IndicatorSeries, bars []model.PricePoint) snapshot {
	var s snapshot
	if len(bars) == 0 {
		return s
	}
	s.price = bars[len(bars)-1].Close

	if v := ind.SMA200.Latest(); v.Valid && v.Float64 != 0 {
		s.sma200, s.hasSMA200 = v.Float64, true
	}
	sma20, sma50 := ind.SMA20.Latest(), ind.SMA50.Latest()
	if sma20.Valid && sma50.Valid {
		s.sma20, s.sma50, s.hasAlignment = sma20.Float64, sma50.Float64, true
	}
	if v := ind.RSI14.Latest(); v.Valid {
		s.rsi, s.hasRSI = v.Float64, true
	}
	macd, sig := ind.MACD.Latest(), ind.MACDSignal.Latest()
	if macd.Valid && sig.Valid {
		s.macd, s.macdSignal, s.hasMACD = macd.Float64, sig.Float64, true
	}

	high, low := calculator.PriceRange(bars)
	if high.Valid && low.Valid {
		if pos := calculator.RangePosition(s.price, high.Float64, low.Float64); pos.Valid {
			s.position, s.hasPosition = pos.Float64, true
		}
	}
	recent := bars
	if len(recent) > recentWindow {
		recent = recent[len(recent)-recentWindow:]
	}
	rh, rl := calculator.PriceRange(recent)
	s.recentHigh, s.recentLow = rh.Float64, rl.Float64
	return s
}

// Evaluate scores the latest readings of ind against the price history it was computed from.
func Evaluate(ind *model.IndicatorSeries, bars []model.PricePoint) *model.Outlook {
	s := takeSnapshot(ind, bars)

	f1 := scoreSMA200Deviation(s)
	f2 := scoreRSI(s)
	f3 := scoreMACD(s)
	f5 := scoreTrendTracker(s)

	otherFactorsAvg := (f1.RawScore + f2.RawScore + f3.RawScore + f5.RawScore) / 4.0
	f4 := scoreRangePosition(s, otherFactorsAvg)

	factors := []model.FactorScore{f1, f2, f3, f4, f5}
	var total float64
	for _, f := range factors {
		total += f.Weighted
	}

	out := &model.Outlook{
		Factors:    factors,
		TotalScore: total,
		Label:      mapTier(total),
	}
	if s.hasRSI && s.rsi > 85 {
		out.Warning = "RSI above 85: extended rally"
	} else if s.hasRSI && s.rsi < 15 {
		out.Warning = "RSI below 15: capitulation-level selling"
	}
	return out
}
