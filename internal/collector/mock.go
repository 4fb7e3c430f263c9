package collector

import (
	"context"
	"math"
	"time"

	"github.com/guregu/null/v6"

	"StockScope/internal/model"
)

// MockFetcher returns controllable, deterministic data for development and testing.
// Set Err to make every call fail.
type MockFetcher struct {
	Price      float64
	Info       *model.Info
	History    []model.PricePoint
	Financials *model.Financials
	News       []model.NewsItem
	Err        error

	// End anchors the generated history; zero means today.
	End time.Time
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchInfo(_ context.Context, symbol string) (model.Info, error) {
	if m.Err != nil {
		return model.Info{}, m.Err
	}
	if m.Info != nil {
		return *m.Info, nil
	}
	return model.Info{
		LongName:     null.StringFrom(symbol + " Corp."),
		Sector:       null.StringFrom("Technology"),
		Currency:     null.StringFrom("USD"),
		Exchange:     null.StringFrom("NMS"),
		MarketCap:    null.FloatFrom(m.basePrice() * 1e9),
		CurrentPrice: null.FloatFrom(m.basePrice()),
	}, nil
}

func (m *MockFetcher) FetchHistory(_ context.Context, _ string, period model.Period) ([]model.PricePoint, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	if m.History != nil {
		return m.History, nil
	}
	return m.generateBars(tradingDays(period)), nil
}

func (m *MockFetcher) FetchStatements(_ context.Context, _ string) (*model.Financials, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	if m.Financials != nil {
		return m.Financials, nil
	}
	return &model.Financials{}, nil
}

func (m *MockFetcher) FetchNews(_ context.Context, _ string, limit int) ([]model.NewsItem, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	if limit > 0 && len(m.News) > limit {
		return m.News[:limit], nil
	}
	return m.News, nil
}

func (m *MockFetcher) basePrice() float64 {
	if m.Price > 0 {
		return m.Price
	}
	return 100
}

func tradingDays(p model.Period) int {
	switch p {
	case model.Period1Day:
		return 1
	case model.Period2Days:
		return 2
	case model.Period1Month:
		return 21
	case model.Period3Months:
		return 63
	case model.Period6Months:
		return 126
	case model.Period2Years:
		return 504
	case model.Period5Years:
		return 1260
	default:
		return 252
	}
}

func (m *MockFetcher) generateBars(count int) []model.PricePoint {
	end := m.End
	if end.IsZero() {
		end = time.Now().UTC().Truncate(24 * time.Hour)
	}
	base := m.basePrice()
	bars := make([]model.PricePoint, count)
	for i := 0; i < count; i++ {
		p := base * (1 + float64(i-count/2)*0.001 + 0.01*math.Sin(float64(i)/5))
		bars[i] = model.PricePoint{
			Time:     end.AddDate(0, 0, -(count - 1 - i)),
			Open:     p * 0.999,
			High:     p * 1.005,
			Low:      p * 0.995,
			Close:    p,
			Volume:   1000000,
			AdjClose: null.FloatFrom(p),
		}
	}
	return bars
}
