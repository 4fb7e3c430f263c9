package calculator

import "StockScope/internal/model"

// ComputeIndicators derives every technical series from the closing prices.
// Each series has one entry per bar.
func ComputeIndicators(bars []model.PricePoint) model.IndicatorSeries {
	closes := model.Closes(bars)
	macd, signal := MACD(closes)
	upper, middle, lower := Bollinger(closes, 20, 2)

	return model.IndicatorSeries{
		SMA20:           middle,
		SMA50:           SMA(closes, 50),
		SMA200:          SMA(closes, 200),
		EMA12:           EMAOf(closes, 12),
		EMA26:           EMAOf(closes, 26),
		MACD:            macd,
		MACDSignal:      signal,
		RSI14:           RSI(closes, 14),
		BollingerUpper:  upper,
		BollingerMiddle: middle,
		BollingerLower:  lower,
	}
}
