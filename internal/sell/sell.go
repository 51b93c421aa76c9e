// Package sell implements the exit-side decision engine: it polls the
// caller's open positions (or, for spot products, recent executions) and
// closes them at market when the last-trade price crosses the profit or
// stop-loss border.
package sell

import (
	"context"
	"errors"
	"strings"
	"time"

	"vcts/internal/market"
	"vcts/internal/shutdown"

	"go.uber.org/zap"
)

// SnapshotSource is one get-snapshot round trip; *ipc.SnapshotClient
// satisfies it.
type SnapshotSource interface {
	Snapshot() (market.Snapshot, error)
}

// Config carries the sell loop parameters. ProfitBorder and CutBorder are
// price multipliers relative to the entry price (e.g., 1.05 and 0.98).
type Config struct {
	Product      string
	Interval     time.Duration
	Size         float64
	ProfitBorder float64
	CutBorder    float64
}

// Manager is the position-manager loop.
type Manager struct {
	cfg       Config
	exchange  market.OrderSubmitter
	querier   market.PositionQuerier
	snapshots SnapshotSource
	stop      *shutdown.Flag
	logger    *zap.Logger
}

// New creates the manager.
func New(cfg Config, exchange market.OrderSubmitter, querier market.PositionQuerier, snapshots SnapshotSource, stop *shutdown.Flag, logger *zap.Logger) *Manager {
	return &Manager{
		cfg:       cfg,
		exchange:  exchange,
		querier:   querier,
		snapshots: snapshots,
		stop:      stop,
		logger:    logger,
	}
}

// isFXProduct reports whether the product is a leveraged/margin pair, which
// is queried via open positions rather than raw executions.
func isFXProduct(product string) bool {
	return strings.HasPrefix(strings.ToLower(product), "fx_")
}

// openPositions queries the position list appropriate for the product kind.
func (m *Manager) openPositions(ctx context.Context) ([]market.Position, error) {
	if isFXProduct(m.cfg.Product) {
		return m.querier.Positions(ctx, m.cfg.Product)
	}
	return m.querier.Executions(ctx, m.cfg.Product)
}

// shouldSell applies the border rule: above the entry price the position is
// closed only beyond the profit border, at or below it only beyond the cut
// border. Everything in between is held.
func (m *Manager) shouldSell(pos market.Position, last float64) bool {
	upper := pos.Price * m.cfg.ProfitBorder
	lower := pos.Price * m.cfg.CutBorder

	if last > pos.Price {
		if last > upper {
			return true
		}
		m.logger.Info("position positive, hold",
			zap.Float64("position_price", pos.Price),
			zap.Float64("last_price", last),
		)
		return false
	}
	if last < lower {
		return true
	}
	m.logger.Info("position negative, hold",
		zap.Float64("position_price", pos.Price),
		zap.Float64("last_price", last),
	)
	return false
}

// checkPositions runs one decision cycle over every open position. A failed
// position query skips the whole cycle; a failed close order is logged and
// re-evaluated on the next cycle.
func (m *Manager) checkPositions(ctx context.Context) {
	positions, err := m.openPositions(ctx)
	if err != nil {
		if errors.Is(err, market.ErrQuery) {
			m.logger.Warn("position query failed, skipping cycle", zap.Error(err))
		} else {
			m.logger.Warn("skipping cycle", zap.Error(err))
		}
		return
	}
	if len(positions) == 0 {
		m.logger.Debug("no open positions")
		return
	}
	m.logger.Debug("positions found", zap.Int("count", len(positions)))

	for _, pos := range positions {
		s, err := m.snapshots.Snapshot()
		if err != nil {
			m.logger.Warn("snapshot unavailable", zap.Error(err))
			continue
		}
		last := s.Ticker.Last
		if last == 0 {
			m.logger.Debug("no market data yet")
			continue
		}

		if !m.shouldSell(pos, last) {
			continue
		}

		m.logger.Info("closing position",
			zap.Float64("position_price", pos.Price),
			zap.Float64("last_price", last),
		)
		if !m.placeOrder(ctx, market.OrderTypeMarket, market.SideSell) {
			m.logger.Error("close order failed, will re-evaluate next cycle")
		}
	}
}

// placeOrder submits the close order and reports whether it was accepted.
func (m *Manager) placeOrder(ctx context.Context, kind market.OrderType, side market.Side) bool {
	err := m.exchange.SubmitOrder(ctx, market.Order{
		Product: m.cfg.Product,
		Type:    kind,
		Side:    side,
		Size:    m.cfg.Size,
	})
	if err != nil {
		if errors.Is(err, market.ErrAuth) {
			m.logger.Error("order rejected: authentication", zap.Error(err))
		} else {
			m.logger.Error("order submission failed", zap.Error(err))
		}
		return false
	}
	return true
}

// Run executes the decision loop until the stop flag is observed, checked
// at the top of each iteration before sleeping.
func (m *Manager) Run(ctx context.Context) {
	for {
		if m.stop.IsSet() {
			m.logger.Info("stop flag observed, exiting")
			return
		}

		m.checkPositions(ctx)

		time.Sleep(m.cfg.Interval)
	}
}
