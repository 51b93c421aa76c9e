// Package scalping implements the entry-side decision engine: it pulls
// snapshot bundles from the poller and opens small long positions on
// short-term upward momentum of the mid-price. It never enters short.
package scalping

import (
	"context"
	"errors"
	"time"

	"vcts/internal/ipc"
	"vcts/internal/market"
	"vcts/internal/shutdown"

	"go.uber.org/zap"
)

// SnapshotSource is one get-snapshot round trip; *ipc.SnapshotClient
// satisfies it.
type SnapshotSource interface {
	Snapshot() (market.Snapshot, error)
}

// Config carries the scalping loop parameters.
type Config struct {
	Product       string
	Interval      time.Duration
	Size          float64
	ExpireMinutes int
}

// Engine is the scalping decision loop.
type Engine struct {
	cfg       Config
	exchange  market.OrderSubmitter
	prober    market.HealthProber // nil for exchanges without a health endpoint
	snapshots SnapshotSource
	stop      *shutdown.Flag
	logger    *zap.Logger

	prevMid float64
	seeded  bool
}

// New creates the engine. prober may be nil; the engine then treats the
// market as always healthy.
func New(cfg Config, exchange market.OrderSubmitter, prober market.HealthProber, snapshots SnapshotSource, stop *shutdown.Flag, logger *zap.Logger) *Engine {
	return &Engine{
		cfg:       cfg,
		exchange:  exchange,
		prober:    prober,
		snapshots: snapshots,
		stop:      stop,
		logger:    logger,
	}
}

// MidPrice derives a single representative price from best bid and best ask:
// the tighter side of the spread plus a quarter of the spread width. The
// skewed form (rather than the plain average) biases a buy-only engine
// toward the cheaper side.
func MidPrice(t market.Ticker) float64 {
	lo, hi := t.BestBid, t.BestAsk
	if hi < lo {
		lo, hi = hi, lo
	}
	return lo + (hi-lo)/4
}

// healthy gates the tick on the exchange-reported market status. Exchanges
// without a health probe are always healthy.
func (e *Engine) healthy(ctx context.Context) bool {
	if e.prober == nil {
		return true
	}
	status, err := e.prober.Health(ctx, e.cfg.Product)
	if err != nil {
		e.logger.Warn("health probe failed", zap.Error(err))
		return false
	}
	if !status.Healthy() {
		e.logger.Debug("market not accepting orders", zap.String("status", string(status)))
		return false
	}
	return true
}

// Tick runs one decision cycle: skip entirely when the market is unhealthy,
// otherwise compare the current mid-price with the previous observation and
// enter long on a rise. The previous mid-price updates on every evaluated
// tick, whichever branch was taken; equality triggers neither branch.
func (e *Engine) Tick(ctx context.Context) {
	if !e.healthy(ctx) {
		return
	}

	s, err := e.snapshots.Snapshot()
	if err != nil {
		e.logger.Warn("snapshot unavailable", zap.Error(err))
		return
	}
	if s.Ticker.IsZero() {
		e.logger.Debug("no market data yet")
		return
	}

	mid := MidPrice(s.Ticker)
	if !e.seeded {
		e.prevMid = mid
		e.seeded = true
		return
	}

	switch {
	case mid > e.prevMid:
		e.logger.Info("entry long", zap.Float64("mid_price", mid))
		if !e.entryLong(ctx, mid) {
			e.logger.Error("could not get position")
		}
	case mid < e.prevMid:
		e.logger.Info("time to short, do nothing", zap.Float64("mid_price", mid))
	}

	e.prevMid = mid
}

// entryLong places a limit-buy order at the given price and reports whether
// the exchange accepted it. Authentication failures are logged and counted
// as a failed attempt, never fatal to the loop.
func (e *Engine) entryLong(ctx context.Context, price float64) bool {
	err := e.exchange.SubmitOrder(ctx, market.Order{
		Product:       e.cfg.Product,
		Type:          market.OrderTypeLimit,
		Side:          market.SideBuy,
		Price:         price,
		Size:          e.cfg.Size,
		ExpireMinutes: e.cfg.ExpireMinutes,
	})
	if err != nil {
		if errors.Is(err, market.ErrAuth) {
			e.logger.Error("order rejected: authentication", zap.Error(err))
		} else {
			e.logger.Error("order submission failed", zap.Error(err))
		}
		return false
	}
	return true
}

// Run executes the decision loop until the stop flag is observed. The flag
// is checked once per iteration, before the next sleep.
func (e *Engine) Run(ctx context.Context) {
	for {
		if e.stop.IsSet() {
			e.logger.Info("stop flag observed, exiting")
			return
		}

		e.Tick(ctx)

		time.Sleep(e.cfg.Interval)
	}
}

// ensure the ipc client keeps satisfying the source interface.
var _ SnapshotSource = (*ipc.SnapshotClient)(nil)
