// Package polling owns the canonical market history. One Poller loop
// fetches tickers from the configured exchange, maintains the bounded
// history and moving-average series, persists each observation, and answers
// snapshot requests from the decision workers.
package polling

import (
	"context"
	"time"

	"vcts/internal/ipc"
	"vcts/internal/market"
	"vcts/internal/shutdown"

	"go.uber.org/zap"
)

// Moving-average window sizes, in tickers.
const (
	windowShort = 30
	windowLong  = 60
)

// Sink persists one observation. Failures are logged by the poller and do
// not affect the in-memory history.
type Sink interface {
	Append(t market.Ticker) error
}

// Config carries the poller loop parameters.
type Config struct {
	Product    string
	Interval   time.Duration
	Count      int // number of fetches, negative = run until stopped
	MaxHistory int
}

// Poller is the ticker aggregator. It is the only writer of History and of
// the four indicator series.
type Poller struct {
	cfg     Config
	fetcher market.TickerFetcher
	ch      *ipc.Channel
	stop    *shutdown.Flag
	sinks   []Sink
	logger  *zap.Logger

	history *History
	sma30   *Series
	sma60   *Series
	wma30   *Series
	wma60   *Series
}

// New creates a poller. The channel may be nil when no worker consumes
// snapshots (e.g., record-only runs).
func New(cfg Config, fetcher market.TickerFetcher, ch *ipc.Channel, stop *shutdown.Flag, logger *zap.Logger, sinks ...Sink) *Poller {
	return &Poller{
		cfg:     cfg,
		fetcher: fetcher,
		ch:      ch,
		stop:    stop,
		sinks:   sinks,
		logger:  logger,
		history: NewHistory(cfg.MaxHistory),
		sma30:   NewSeries(cfg.MaxHistory),
		sma60:   NewSeries(cfg.MaxHistory),
		wma30:   NewSeries(cfg.MaxHistory),
		wma60:   NewSeries(cfg.MaxHistory),
	}
}

// Warmup preloads history from previously persisted tickers so indicators
// resume across restarts. It must be called before Run.
func (p *Poller) Warmup(tickers []market.Ticker) {
	for _, t := range tickers {
		p.history.Append(t)
		p.appendIndicators()
	}
	p.logger.Info("history warmed up", zap.Int("tickers", p.history.Len()))
}

// Update pulls one ticker, appends it to history, recomputes all four
// indicator values, and persists the observation. On fetch failure the
// history and series are left exactly as before the call; the failure is
// reported, not retried here.
func (p *Poller) Update(ctx context.Context) (market.Ticker, error) {
	t, err := p.fetcher.FetchTicker(ctx, p.cfg.Product)
	if err != nil {
		return market.Ticker{}, err
	}

	p.history.Append(t)
	p.appendIndicators()

	for _, sink := range p.sinks {
		if err := sink.Append(t); err != nil {
			p.logger.Warn("failed to persist ticker", zap.Error(err))
		}
	}

	return t, nil
}

func (p *Poller) appendIndicators() {
	p.sma30.Append(SMA(p.history, windowShort))
	p.sma60.Append(SMA(p.history, windowLong))
	p.wma30.Append(WMA(p.history, windowShort))
	p.wma60.Append(WMA(p.history, windowLong))
}

// Snapshot returns the latest ticker plus the latest indicator values.
// With an empty history every field is zero-valued; callers treat that as
// "no data yet", not as an error.
func (p *Poller) Snapshot() market.Snapshot {
	latest, _ := p.history.Latest()
	return market.Snapshot{
		Ticker: latest,
		SMA30:  p.sma30.Latest(),
		SMA60:  p.sma60.Latest(),
		WMA30:  p.wma30.Latest(),
		WMA60:  p.wma60.Latest(),
	}
}

// Run executes the aggregator loop: update the cache, answer at most one
// pending snapshot request, sleep. It returns when the stop flag is set or
// the configured fetch count is exhausted.
func (p *Poller) Run(ctx context.Context) {
	remaining := p.cfg.Count
	for {
		if p.stop.IsSet() {
			p.logger.Info("stop flag observed, exiting")
			return
		}
		if p.cfg.Count >= 0 && remaining <= 0 {
			p.logger.Info("fetch count exhausted, exiting")
			return
		}
		remaining--

		t, err := p.Update(ctx)
		if err != nil {
			p.logger.Error("failed to fetch ticker", zap.Error(err))
		} else {
			p.logger.Debug("ticker stored",
				zap.Float64("last", t.Last),
				zap.Float64("sma30", p.sma30.Latest()),
				zap.Float64("sma60", p.sma60.Latest()),
				zap.Float64("wma30", p.wma30.Latest()),
				zap.Float64("wma60", p.wma60.Latest()),
			)
		}

		p.serve()

		time.Sleep(p.cfg.Interval)
	}
}

// serve answers one pending snapshot request, non-blocking when none is
// waiting. The snapshot is built here, inside the same loop iteration that
// produced the latest observation, so indicators and ticker never tear.
func (p *Poller) serve() {
	if p.ch == nil {
		return
	}
	cmd, ok := p.ch.TryReceiveRequest()
	if !ok {
		return
	}
	switch cmd {
	case ipc.CommandGetSnapshot:
		p.ch.Respond(p.Snapshot())
	default:
		p.logger.Warn("unknown command", zap.String("cmd", string(cmd)))
		p.ch.Respond(p.Snapshot())
	}
}
