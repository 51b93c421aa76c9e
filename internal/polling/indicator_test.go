package polling

import (
	"math"
	"testing"

	"vcts/internal/market"
)

func historyOf(prices ...float64) *History {
	h := NewHistory(len(prices) + 10)
	for _, p := range prices {
		h.Append(market.Ticker{Last: p})
	}
	return h
}

// go test -v --run TestSMABelowThreshold
func TestSMABelowThreshold(t *testing.T) {
	h := historyOf(100, 101, 102)

	for _, k := range []int{4, 30, 60} {
		if got := SMA(h, k); got != 0 {
			t.Errorf("SMA(%d) with 3 tickers: got %v, want sentinel 0", k, got)
		}
		if got := WMA(h, k); got != 0 {
			t.Errorf("WMA(%d) with 3 tickers: got %v, want sentinel 0", k, got)
		}
	}

	if got := SMA(h, 3); got == 0 {
		t.Error("SMA(3) with 3 tickers must return a real value")
	}
}

// go test -v --run TestSMAKnownValues
func TestSMAKnownValues(t *testing.T) {
	h := historyOf(1, 2, 3, 4, 5, 6)

	// Mean of the most recent 3 entries (4, 5, 6).
	if got, want := SMA(h, 3), 5.0; got != want {
		t.Errorf("SMA(3): got %v, want %v", got, want)
	}
	// Mean over the whole window.
	if got, want := SMA(h, 6), 3.5; got != want {
		t.Errorf("SMA(6): got %v, want %v", got, want)
	}
}

// go test -v --run TestWMAKnownValues
func TestWMAKnownValues(t *testing.T) {
	h := historyOf(10, 1, 2, 3)

	// Window (1, 2, 3) with weights (1, 2, 3): (1*1 + 2*2 + 3*3) / 6.
	want := 14.0 / 6.0
	if got := WMA(h, 3); math.Abs(got-want) > 1e-12 {
		t.Errorf("WMA(3): got %v, want %v", got, want)
	}
}

// go test -v --run TestConstantSeriesAveragesAgree
func TestConstantSeriesAveragesAgree(t *testing.T) {
	const price = 4200000.0
	prices := make([]float64, 60)
	for i := range prices {
		prices[i] = price
	}
	h := historyOf(prices...)

	for _, k := range []int{30, 60} {
		if got := SMA(h, k); got != price {
			t.Errorf("SMA(%d) on constant series: got %v, want %v", k, got, price)
		}
		if got := WMA(h, k); math.Abs(got-price) > 1e-9 {
			t.Errorf("WMA(%d) on constant series: got %v, want %v", k, got, price)
		}
	}
}
