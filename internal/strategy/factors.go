package strategy

import (
	"fmt"
	"math"

	"StockScope/internal/model"
)

func factor(name string, score, weight float64, commentary string) model.FactorScore {
	return model.FactorScore{
		Name:       name,
		RawScore:   score,
		Weight:     weight,
		Weighted:   score * weight,
		Commentary: commentary,
	}
}

// scoreSMA200Deviation scores how far the price sits from its 200-day average.
// Weight: 0.35
func scoreSMA200Deviation(s snapshot) model.FactorScore {
	const name, weight = "SMA200 Deviation", 0.35
	if !s.hasSMA200 {
		return factor(name, 0, weight, "SMA200 unavailable")
	}
	deviation := (s.price - s.sma200) / s.sma200 * 100

	var score float64
	switch {
	case deviation <= -20:
		score = 2.0
	case deviation <= -10:
		score = 1.5
	case deviation <= -5:
		score = 1.0
	case deviation <= 0:
		score = 0.5
	case deviation <= 5:
		score = 0
	case deviation <= 10:
		score = -0.5
	case deviation <= 15:
		score = -1.0
	case deviation <= 20:
		score = -1.5
	default:
		score = -2.0
	}
	return factor(name, score, weight, fmt.Sprintf("%+.1f%% from SMA200", deviation))
}

// scoreRSI scores the 14-day RSI.
// Weight: 0.25
func scoreRSI(s snapshot) model.FactorScore {
	const name, weight = "RSI 14", 0.25
	if !s.hasRSI {
		return factor(name, 0, weight, "RSI unavailable")
	}
	rsi := s.rsi

	var score float64
	switch {
	case rsi <= 25:
		score = 2.0
	case rsi <= 30:
		score = 1.5
	case rsi <= 40:
		score = 1.0
	case rsi <= 45:
		score = 0.5
	case rsi <= 55:
		score = 0
	case rsi <= 60:
		score = -0.5
	case rsi <= 70:
		score = -1.0
	case rsi <= 80:
		score = -1.5
	default:
		score = -2.0
	}
	return factor(name, score, weight, fmt.Sprintf("RSI=%.0f", rsi))
}

// scoreMACD scores the MACD line against its signal line.
// Weight: 0.15
func scoreMACD(s snapshot) model.FactorScore {
	const name, weight = "MACD", 0.15
	if !s.hasMACD {
		return factor(name, 0, weight, "MACD unavailable")
	}

	var score float64
	var commentary string
	switch {
	case s.macd > s.macdSignal && s.macd < 0:
		score, commentary = 1.0, "above signal, below zero"
	case s.macd > s.macdSignal:
		score, commentary = 0.5, "above signal"
	case s.macd < s.macdSignal && s.macd > 0:
		score, commentary = -1.0, "below signal, above zero"
	case s.macd < s.macdSignal:
		score, commentary = -0.5, "below signal"
	default:
		commentary = "on signal"
	}
	return factor(name, score, weight, commentary)
}

// scoreRangePosition scores where the price sits in the period's high/low range.
// Weight: 0.10
// Above 95% of the range the score only reaches -2 when the other factors agree (avg < -1).
func scoreRangePosition(s snapshot, otherFactorsAvg float64) model.FactorScore {
	const name, weight = "Range Position", 0.10
	if !s.hasPosition {
		return factor(name, 0, weight, "range unavailable")
	}
	pos := s.position * 100

	var score float64
	switch {
	case pos <= 10:
		score = 2.0
	case pos <= 20:
		score = 1.5
	case pos <= 30:
		score = 1.0
	case pos <= 40:
		score = 0.5
	case pos <= 60:
		score = 0
	case pos <= 70:
		score = -0.5
	case pos <= 80:
		score = -1.0
	case pos <= 95:
		score = -1.5
	default:
		if otherFactorsAvg < -1 {
			score = -2.0
		} else {
			score = -1.0
		}
	}
	return factor(name, score, weight, fmt.Sprintf("position=%.0f%%", pos))
}

// scoreTrendTracker scores moving-average alignment and recent extremes.
// Weight: 0.15
// Bullish alignment: price > SMA20 > SMA50
// Bearish alignment: price < SMA20 < SMA50
func scoreTrendTracker(s snapshot) model.FactorScore {
	const name, weight = "Trend Tracker", 0.15
	if !s.hasAlignment {
		return factor(name, 0, weight, "moving averages unavailable")
	}
	bullish := s.price > s.sma20 && s.sma20 > s.sma50
	bearish := s.price < s.sma20 && s.sma20 < s.sma50

	nearHigh := s.recentHigh > 0 && math.Abs(s.price-s.recentHigh)/s.recentHigh < 0.01
	nearLow := s.recentLow > 0 && math.Abs(s.price-s.recentLow)/s.recentLow < 0.01

	switch {
	case bullish && nearHigh:
		return factor(name, 1.5, weight, "bullish alignment, 30-day high")
	case bullish:
		return factor(name, 1.0, weight, "bullish alignment")
	case bearish && nearLow:
		return factor(name, -1.0, weight, "bearish alignment, 30-day low")
	case bearish:
		return factor(name, -0.5, weight, "bearish alignment")
	default:
		return factor(name, 0, weight, "range-bound")
	}
}
