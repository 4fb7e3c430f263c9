package collector

import (
	"context"

	"StockScope/internal/model"
)

// Fetcher is a market-data source adapter.
type Fetcher interface {
	FetchInfo(ctx context.Context, symbol string) (model.Info, error)
	FetchHistory(ctx context.Context, symbol string, period model.Period) ([]model.PricePoint, error)
	FetchStatements(ctx context.Context, symbol string) (*model.Financials, error)
	FetchNews(ctx context.Context, symbol string, limit int) ([]model.NewsItem, error)
	Name() string
}
