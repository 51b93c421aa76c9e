package coincheck

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"vcts/internal/market"
)

// go test -v --run TestCoincheckFetchTicker
func TestCoincheckFetchTicker(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/ticker" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(TickerResponse{
			Last:      4200050,
			Bid:       4200000,
			Ask:       4200100,
			High:      4300000,
			Low:       4100000,
			Volume:    "50.29627103",
			Timestamp: 1714528984,
		})
	}))
	defer srv.Close()

	client := NewRESTClient(srv.URL, "", "", 5*time.Second)

	tick, err := client.FetchTicker(context.Background(), "btc_jpy")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tick.BestBid != 4200000 || tick.BestAsk != 4200100 || tick.Last != 4200050 {
		t.Errorf("unexpected ticker: %+v", tick)
	}
	if tick.Product != "btc_jpy" {
		t.Errorf("got product=%q, want btc_jpy", tick.Product)
	}
	if tick.CapturedAt.IsZero() {
		t.Error("CapturedAt not set")
	}
}

// go test -v --run TestCoincheckFetchTickerServerError
func TestCoincheckFetchTickerServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "service unavailable", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := NewRESTClient(srv.URL, "", "", 5*time.Second)

	_, err := client.FetchTicker(context.Background(), "btc_jpy")
	if !errors.Is(err, market.ErrFetch) {
		t.Fatalf("expected ErrFetch, got %v", err)
	}
}

// go test -v --run TestCoincheckSubmitOrderSignsRequest
func TestCoincheckSubmitOrderSignsRequest(t *testing.T) {
	var gotBody OrderRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/exchange/orders" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		for _, h := range []string{"ACCESS-KEY", "ACCESS-NONCE", "ACCESS-SIGNATURE"} {
			if r.Header.Get(h) == "" {
				t.Errorf("missing header %s", h)
			}
		}
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode body: %v", err)
		}
		json.NewEncoder(w).Encode(OrderResponse{Success: true, ID: 12345})
	}))
	defer srv.Close()

	client := NewRESTClient(srv.URL, "key", "secret", 5*time.Second)

	err := client.SubmitOrder(context.Background(), market.Order{
		Product: "btc_jpy",
		Type:    market.OrderTypeLimit,
		Side:    market.SideBuy,
		Price:   4200000,
		Size:    0.01,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotBody.Pair != "btc_jpy" || gotBody.OrderType != "buy" {
		t.Errorf("unexpected order body: %+v", gotBody)
	}
	if gotBody.Rate != "4200000" || gotBody.Amount != "0.01" {
		t.Errorf("limit order fields not set: %+v", gotBody)
	}
}

// go test -v --run TestCoincheckMarketSellOrderType
func TestCoincheckMarketSellOrderType(t *testing.T) {
	var gotBody OrderRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode body: %v", err)
		}
		json.NewEncoder(w).Encode(OrderResponse{Success: true})
	}))
	defer srv.Close()

	client := NewRESTClient(srv.URL, "key", "secret", 5*time.Second)

	err := client.SubmitOrder(context.Background(), market.Order{
		Product: "btc_jpy",
		Type:    market.OrderTypeMarket,
		Side:    market.SideSell,
		Size:    0.01,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotBody.OrderType != "market_sell" {
		t.Errorf("got order_type=%q, want market_sell", gotBody.OrderType)
	}
	if gotBody.Rate != "" {
		t.Errorf("market order must not carry a rate: %+v", gotBody)
	}
}

// go test -v --run TestCoincheckOrderRejected
func TestCoincheckOrderRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(OrderResponse{Success: false, Error: "Amount is too small"})
	}))
	defer srv.Close()

	client := NewRESTClient(srv.URL, "key", "secret", 5*time.Second)

	err := client.SubmitOrder(context.Background(), market.Order{
		Product: "btc_jpy",
		Type:    market.OrderTypeMarket,
		Side:    market.SideSell,
		Size:    0.0001,
	})
	if err == nil {
		t.Fatal("expected error for rejected order")
	}
}

// go test -v --run TestCoincheckAuthRejected
func TestCoincheckAuthRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"success":false,"error":"invalid authentication"}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	client := NewRESTClient(srv.URL, "bad", "bad", 5*time.Second)

	err := client.SubmitOrder(context.Background(), market.Order{
		Product: "btc_jpy",
		Type:    market.OrderTypeMarket,
		Side:    market.SideSell,
		Size:    0.01,
	})
	if !errors.Is(err, market.ErrAuth) {
		t.Fatalf("expected ErrAuth, got %v", err)
	}
}

// go test -v --run TestCoincheckExecutionsDecode
func TestCoincheckExecutionsDecode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/exchange/orders/transactions" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		w.Write([]byte(`{
			"success": true,
			"transactions": [
				{
					"id": 38,
					"order_id": 49,
					"created_at": "2024-05-01T02:03:04Z",
					"funds": {"btc": "0.1", "jpy": "-409613.5"},
					"pair": "btc_jpy",
					"rate": "4096135.0",
					"fee_currency": "JPY",
					"fee": "6.135",
					"liquidity": "T",
					"side": "buy"
				}
			]
		}`))
	}))
	defer srv.Close()

	client := NewRESTClient(srv.URL, "key", "secret", 5*time.Second)

	positions, err := client.Executions(context.Background(), "btc_jpy")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(positions) != 1 {
		t.Fatalf("expected 1 position, got %d", len(positions))
	}
	p := positions[0]
	if p.Side != market.SideBuy || p.Price != 4096135.0 || p.Size != 0.1 {
		t.Errorf("unexpected position: %+v", p)
	}
	if p.OpenedAt.IsZero() {
		t.Error("OpenedAt not parsed")
	}
}

// go test -v --run TestCoincheckPositionsUnsupported
func TestCoincheckPositionsUnsupported(t *testing.T) {
	client := NewRESTClient("http://unused", "key", "secret", 5*time.Second)

	_, err := client.Positions(context.Background(), "btc_jpy")
	if !errors.Is(err, market.ErrQuery) {
		t.Fatalf("expected ErrQuery, got %v", err)
	}
}
