package market

import "context"

// TickerFetcher returns one best-bid/best-ask/last observation for a product.
type TickerFetcher interface {
	FetchTicker(ctx context.Context, product string) (Ticker, error)
}

// HealthProber reports the exchange market status. Exchanges without a
// health endpoint do not implement it; callers treat an absent (nil)
// prober as always healthy.
type HealthProber interface {
	Health(ctx context.Context, product string) (Health, error)
}

// OrderSubmitter submits one order to the exchange.
type OrderSubmitter interface {
	SubmitOrder(ctx context.Context, order Order) error
}

// PositionQuerier reads the caller's open positions (leveraged products)
// or recent executions (spot products).
type PositionQuerier interface {
	Positions(ctx context.Context, product string) ([]Position, error)
	Executions(ctx context.Context, product string) ([]Position, error)
}

// Exchange is the capability set a fully featured backend provides.
// The concrete implementation is selected once at startup from configuration.
type Exchange interface {
	TickerFetcher
	OrderSubmitter
	PositionQuerier
}
