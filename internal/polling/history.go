package polling

import "vcts/internal/market"

// History is the bounded, insertion-ordered ticker series. The poller
// goroutine is its only writer and reader; it is intentionally
// unsynchronized — all mutation and every snapshot happen inside one loop
// iteration, so other components only ever see copies.
type History struct {
	cap     int
	tickers []market.Ticker
}

// NewHistory creates a history capped at the given length.
func NewHistory(capacity int) *History {
	return &History{
		cap:     capacity,
		tickers: make([]market.Ticker, 0, capacity),
	}
}

// Append adds a ticker, evicting the oldest entry once the cap is exceeded.
// Eviction is purely positional (FIFO), never usage-based.
func (h *History) Append(t market.Ticker) {
	h.tickers = append(h.tickers, t)
	if over := len(h.tickers) - h.cap; over > 0 {
		h.tickers = h.tickers[over:]
	}
}

// Len returns the number of stored tickers.
func (h *History) Len() int {
	return len(h.tickers)
}

// Latest returns the most recent ticker, if any.
func (h *History) Latest() (market.Ticker, bool) {
	if len(h.tickers) == 0 {
		return market.Ticker{}, false
	}
	return h.tickers[len(h.tickers)-1], true
}

// At returns the ticker at offset i from the oldest entry.
func (h *History) At(i int) market.Ticker {
	return h.tickers[i]
}

// Series is a bounded sequence of indicator values with the same FIFO
// eviction policy as History.
type Series struct {
	cap  int
	vals []float64
}

// NewSeries creates a series capped at the given length.
func NewSeries(capacity int) *Series {
	return &Series{
		cap:  capacity,
		vals: make([]float64, 0, capacity),
	}
}

// Append adds a value, evicting the oldest once the cap is exceeded.
func (s *Series) Append(v float64) {
	s.vals = append(s.vals, v)
	if over := len(s.vals) - s.cap; over > 0 {
		s.vals = s.vals[over:]
	}
}

// Len returns the number of stored values.
func (s *Series) Len() int {
	return len(s.vals)
}

// Latest returns the most recent value, or 0 when the series is empty.
func (s *Series) Latest() float64 {
	if len(s.vals) == 0 {
		return 0
	}
	return s.vals[len(s.vals)-1]
}
