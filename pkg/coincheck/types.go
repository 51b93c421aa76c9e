package coincheck

// TickerResponse represents the /api/ticker payload. coincheck serves
// btc_jpy only and reports no depth fields.
type TickerResponse struct {
	Last      float64 `json:"last"`
	Bid       float64 `json:"bid"`
	Ask       float64 `json:"ask"`
	High      float64 `json:"high"`
	Low       float64 `json:"low"`
	Volume    string  `json:"volume"`
	Timestamp int64   `json:"timestamp"` // unix seconds
}

// OrderRequest represents the /api/exchange/orders request body.
type OrderRequest struct {
	Pair      string `json:"pair"`       // "btc_jpy"
	OrderType string `json:"order_type"` // "buy", "sell", "market_buy", "market_sell"
	Rate      string `json:"rate,omitempty"`
	Amount    string `json:"amount,omitempty"`
}

// OrderResponse represents the /api/exchange/orders response.
type OrderResponse struct {
	Success bool   `json:"success"`
	ID      int64  `json:"id"`
	Error   string `json:"error"`
}

// TransactionsResponse represents the /api/exchange/orders/transactions payload.
type TransactionsResponse struct {
	Success      bool          `json:"success"`
	Error        string        `json:"error"`
	Transactions []Transaction `json:"transactions"`
}

// Transaction is one past execution.
type Transaction struct {
	ID        int64  `json:"id"`
	OrderID   int64  `json:"order_id"`
	CreatedAt string `json:"created_at"` // ISO 8601
	Funds     struct {
		BTC string `json:"btc"`
		JPY string `json:"jpy"`
	} `json:"funds"`
	Pair        string `json:"pair"`
	Rate        string `json:"rate"`
	FeeCurrency string `json:"fee_currency"`
	Fee         string `json:"fee"`
	Liquidity   string `json:"liquidity"`
	Side        string `json:"side"` // "buy" or "sell"
}
