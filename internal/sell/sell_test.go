package sell

import (
	"context"
	"fmt"
	"testing"
	"time"

	"vcts/internal/market"
	"vcts/internal/shutdown"

	"go.uber.org/zap"
)

type fakeSubmitter struct {
	orders []market.Order
	err    error
}

func (f *fakeSubmitter) SubmitOrder(ctx context.Context, o market.Order) error {
	if f.err != nil {
		return f.err
	}
	f.orders = append(f.orders, o)
	return nil
}

type fakeQuerier struct {
	positions      []market.Position
	executions     []market.Position
	err            error
	positionCalls  int
	executionCalls int
}

func (f *fakeQuerier) Positions(ctx context.Context, product string) ([]market.Position, error) {
	f.positionCalls++
	if f.err != nil {
		return nil, f.err
	}
	return f.positions, nil
}

func (f *fakeQuerier) Executions(ctx context.Context, product string) ([]market.Position, error) {
	f.executionCalls++
	if f.err != nil {
		return nil, f.err
	}
	return f.executions, nil
}

type fakeSource struct {
	last float64
	err  error
}

func (f *fakeSource) Snapshot() (market.Snapshot, error) {
	if f.err != nil {
		return market.Snapshot{}, f.err
	}
	return market.Snapshot{Ticker: market.Ticker{Last: f.last}}, nil
}

func newTestManager(product string, sub *fakeSubmitter, q *fakeQuerier, src SnapshotSource) *Manager {
	cfg := Config{
		Product:      product,
		Interval:     time.Millisecond,
		Size:         0.001,
		ProfitBorder: 1.05,
		CutBorder:    0.98,
	}
	return New(cfg, sub, q, src, shutdown.NewFlag(), zap.NewNop())
}

// go test -v --run TestBorderRule
func TestBorderRule(t *testing.T) {
	// Position opened at 100 with profit border 1.05 and cut border 0.98.
	tests := []struct {
		last float64
		sell bool
	}{
		{104, false}, // positive but inside the profit border: hold
		{106, true},  // beyond the profit border: lock in profit
		{99, false},  // negative but inside the cut border: hold
		{97, true},   // beyond the cut border: stop-loss
		{100, false}, // flat: hold
	}

	for _, tt := range tests {
		sub := &fakeSubmitter{}
		q := &fakeQuerier{positions: []market.Position{{Price: 100, Size: 0.001, Side: market.SideBuy}}}
		m := newTestManager("fx_btc_jpy", sub, q, &fakeSource{last: tt.last})

		m.checkPositions(context.Background())

		sold := len(sub.orders) == 1
		if sold != tt.sell {
			t.Errorf("last=%v: sold=%v, want %v", tt.last, sold, tt.sell)
		}
		if sold {
			o := sub.orders[0]
			if o.Type != market.OrderTypeMarket || o.Side != market.SideSell {
				t.Errorf("last=%v: unexpected close order %+v", tt.last, o)
			}
		}
	}
}

// go test -v --run TestFXProductQueriesPositions
func TestFXProductQueriesPositions(t *testing.T) {
	q := &fakeQuerier{}
	m := newTestManager("fx_btc_jpy", &fakeSubmitter{}, q, &fakeSource{last: 100})

	m.checkPositions(context.Background())

	if q.positionCalls != 1 || q.executionCalls != 0 {
		t.Errorf("fx product: positions=%d executions=%d, want 1/0", q.positionCalls, q.executionCalls)
	}
}

// go test -v --run TestSpotProductQueriesExecutions
func TestSpotProductQueriesExecutions(t *testing.T) {
	q := &fakeQuerier{}
	m := newTestManager("btc_jpy", &fakeSubmitter{}, q, &fakeSource{last: 100})

	m.checkPositions(context.Background())

	if q.positionCalls != 0 || q.executionCalls != 1 {
		t.Errorf("spot product: positions=%d executions=%d, want 0/1", q.positionCalls, q.executionCalls)
	}
}

// go test -v --run TestQueryFailureSkipsCycle
func TestQueryFailureSkipsCycle(t *testing.T) {
	sub := &fakeSubmitter{}
	q := &fakeQuerier{err: fmt.Errorf("%w: status 500", market.ErrQuery)}
	m := newTestManager("fx_btc_jpy", sub, q, &fakeSource{last: 1})

	m.checkPositions(context.Background())

	if len(sub.orders) != 0 {
		t.Errorf("orders submitted on a skipped cycle: %d", len(sub.orders))
	}
}

// go test -v --run TestSubmitFailureReEvaluatedNextCycle
func TestSubmitFailureReEvaluatedNextCycle(t *testing.T) {
	sub := &fakeSubmitter{err: fmt.Errorf("%w: status 503", market.ErrFetch)}
	q := &fakeQuerier{positions: []market.Position{{Price: 100, Size: 0.001}}}
	m := newTestManager("fx_btc_jpy", sub, q, &fakeSource{last: 110})

	ctx := context.Background()
	m.checkPositions(ctx)

	// Next cycle the submitter recovers; the same position sells.
	sub.err = nil
	m.checkPositions(ctx)

	if len(sub.orders) != 1 {
		t.Errorf("expected 1 order after recovery, got %d", len(sub.orders))
	}
}

// go test -v --run TestSnapshotTimeoutHoldsPosition
func TestSnapshotTimeoutHoldsPosition(t *testing.T) {
	sub := &fakeSubmitter{}
	q := &fakeQuerier{positions: []market.Position{{Price: 100, Size: 0.001}}}
	m := newTestManager("fx_btc_jpy", sub, q, &fakeSource{err: fmt.Errorf("ipc: receive timeout")})

	m.checkPositions(context.Background())

	if len(sub.orders) != 0 {
		t.Errorf("orders submitted without market data: %d", len(sub.orders))
	}
}

// go test -v --run TestSellRunExitsOnStopFlag
func TestSellRunExitsOnStopFlag(t *testing.T) {
	q := &fakeQuerier{}
	m := newTestManager("btc_jpy", &fakeSubmitter{}, q, &fakeSource{last: 100})

	done := make(chan struct{})
	go func() {
		m.Run(context.Background())
		close(done)
	}()

	time.Sleep(10 * time.Millisecond)
	m.stop.Set()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("manager did not exit after stop flag was set")
	}
}
