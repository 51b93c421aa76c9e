package market

import "time"

// Ticker represents one point-in-time market read.
// It is immutable once created; CapturedAt is the local wall clock at fetch
// time, Timestamp is whatever the exchange reported (kept opaque).
type Ticker struct {
	Product    string
	CapturedAt time.Time
	Timestamp  string

	BestBid float64
	BestAsk float64
	Last    float64

	// Depth and volume fields are reported by bitFlyer only; they stay zero
	// for exchanges that do not expose them.
	BestBidSize     float64
	BestAskSize     float64
	TotalBidDepth   float64
	TotalAskDepth   float64
	Volume          float64
	VolumeByProduct float64
}

// IsZero reports whether the ticker carries no market data yet.
func (t Ticker) IsZero() bool {
	return t.BestBid == 0 && t.BestAsk == 0 && t.Last == 0
}

// Snapshot combines the most recent ticker with the latest value of each
// moving-average series. Indicator values are 0 until their window fills.
type Snapshot struct {
	Ticker Ticker
	SMA30  float64
	SMA60  float64
	WMA30  float64
	WMA60  float64
}

type Side string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

type OrderType string

const (
	OrderTypeLimit  OrderType = "LIMIT"
	OrderTypeMarket OrderType = "MARKET"
)

// Order is a request to submit one order to the exchange.
// Price and ExpireMinutes apply to limit orders only.
type Order struct {
	Product       string
	Type          OrderType
	Side          Side
	Price         float64
	Size          float64
	ExpireMinutes int
}

// Position is an exchange-reported open position or, for spot products,
// a past execution viewed as an open entry.
type Position struct {
	Product  string
	Side     Side
	Price    float64
	Size     float64
	OpenedAt time.Time
}

// Health is the exchange-reported market status.
type Health string

const (
	HealthNormal    Health = "NORMAL"
	HealthBusy      Health = "BUSY"
	HealthVeryBusy  Health = "VERY BUSY"
	HealthSuperBusy Health = "SUPER BUSY"
	HealthNoOrder   Health = "NO ORDER"
	HealthStop      Health = "STOP"
)

// Healthy reports whether the market accepts orders at normal load.
func (h Health) Healthy() bool {
	return h == HealthNormal
}
