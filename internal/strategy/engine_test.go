package strategy

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StockScope/internal/calculator"
	"StockScope/internal/model"
)

func linearBars(n int, start, step float64) []model.PricePoint {
	t0 := time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC)
	bars := make([]model.PricePoint, n)
	for i := range bars {
		p := start + float64(i)*step
		bars[i] = model.PricePoint{Time: t0.AddDate(0, 0, i), Open: p, High: p, Low: p, Close: p, Volume: 1000}
	}
	return bars
}

func findFactor(t *testing.T, o *model.Outlook, name string) model.FactorScore {
	t.Helper()
	for _, f := range o.Factors {
		if f.Name == name {
			return f
		}
	}
	t.Fatalf("factor %q not found", name)
	return model.FactorScore{}
}

func TestEvaluate_Empty(t *testing.T) {
	o := Evaluate(&model.IndicatorSeries{}, nil)
	require.Len(t, o.Factors, 5)
	assert.Zero(t, o.TotalScore)
	assert.Equal(t, "Neutral", o.Label)
	assert.Empty(t, o.Warning)
}

func TestEvaluate_SteadyDecline(t *testing.T) {
	bars := linearBars(250, 300, -1)
	ind := calculator.ComputeIndicators(bars)

	o := Evaluate(&ind, bars)
	require.Len(t, o.Factors, 5)
	assert.Equal(t, 2.0, findFactor(t, o, "SMA200 Deviation").RawScore)
	assert.Equal(t, 2.0, findFactor(t, o, "RSI 14").RawScore)
	assert.Equal(t, 2.0, findFactor(t, o, "Range Position").RawScore)
	assert.Equal(t, -1.0, findFactor(t, o, "Trend Tracker").RawScore)
	assert.Greater(t, o.TotalScore, 1.0)
	assert.Contains(t, []string{"Oversold", "Deeply Oversold"}, o.Label)
	assert.NotEmpty(t, o.Warning)
}

func TestEvaluate_SteadyRally(t *testing.T) {
	bars := linearBars(250, 50, 1)
	ind := calculator.ComputeIndicators(bars)

	o := Evaluate(&ind, bars)
	assert.Equal(t, -2.0, findFactor(t, o, "SMA200 Deviation").RawScore)
	assert.Equal(t, -2.0, findFactor(t, o, "RSI 14").RawScore)
	assert.Equal(t, -1.0, findFactor(t, o, "Range Position").RawScore, "capped while other factors average above -1")
	assert.Equal(t, 1.5, findFactor(t, o, "Trend Tracker").RawScore)
	assert.Less(t, o.TotalScore, -0.5)
	assert.Equal(t, "RSI above 85: extended rally", o.Warning)
}

func TestEvaluate_ShortHistory(t *testing.T) {
	bars := linearBars(30, 100, 0.5)
	ind := calculator.ComputeIndicators(bars)

	o := Evaluate(&ind, bars)
	f := findFactor(t, o, "SMA200 Deviation")
	assert.Zero(t, f.RawScore)
	assert.Equal(t, "SMA200 unavailable", f.Commentary)
	assert.Equal(t, "moving averages unavailable", findFactor(t, o, "Trend Tracker").Commentary)
}

func TestMapTier_AllBoundaries(t *testing.T) {
	tests := []struct {
		score float64
		label string
	}{
		{2.0, "Deeply Oversold"},
		{1.2, "Deeply Oversold"},
		{1.0, "Oversold"},
		{0.5, "Oversold"},
		{0.4, "Neutral"},
		{0.0, "Neutral"},
		{-0.5, "Neutral"},
		{-0.6, "Overbought"},
		{-1.2, "Overbought"},
		{-1.3, "Deeply Overbought"},
		{-2.0, "Deeply Overbought"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.label, mapTier(tt.score), "score %.1f", tt.score)
	}
}

func TestScoreRangePosition_NonlinearTop(t *testing.T) {
	s := snapshot{position: 0.99, hasPosition: true}

	assert.Equal(t, -1.0, scoreRangePosition(s, -0.5).RawScore)
	assert.Equal(t, -2.0, scoreRangePosition(s, -1.5).RawScore)
}

func TestScoreMACD(t *testing.T) {
	tests := []struct {
		name        string
		macd, sig   float64
		wantScore   float64
		wantComment string
	}{
		{"recovering", -1, -2, 1.0, "above signal, below zero"},
		{"rising", 2, 1, 0.5, "above signal"},
		{"rolling over", 1, 2, -1.0, "below signal, above zero"},
		{"falling", -2, -1, -0.5, "below signal"},
		{"flat", 0, 0, 0, "on signal"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := scoreMACD(snapshot{macd: tt.macd, macdSignal: tt.sig, hasMACD: true})
			assert.Equal(t, tt.wantScore, f.RawScore)
			assert.Equal(t, tt.wantComment, f.Commentary)
			assert.InDelta(t, tt.wantScore*0.15, f.Weighted, 1e-12)
		})
	}
}
