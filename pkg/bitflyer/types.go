package bitflyer

// TickerResponse represents the /v1/ticker payload.
type TickerResponse struct {
	ProductCode     string  `json:"product_code"` // e.g., "BTC_JPY"
	Timestamp       string  `json:"timestamp"`    // exchange-reported, ISO 8601
	TickID          int64   `json:"tick_id"`
	BestBid         float64 `json:"best_bid"`
	BestAsk         float64 `json:"best_ask"`
	BestBidSize     float64 `json:"best_bid_size"`
	BestAskSize     float64 `json:"best_ask_size"`
	TotalBidDepth   float64 `json:"total_bid_depth"`
	TotalAskDepth   float64 `json:"total_ask_depth"`
	LTP             float64 `json:"ltp"` // last traded price
	Volume          float64 `json:"volume"`
	VolumeByProduct float64 `json:"volume_by_product"`
}

// HealthResponse represents the /v1/gethealth payload.
// Status is one of "NORMAL", "BUSY", "VERY BUSY", "SUPER BUSY", "NO ORDER", "STOP".
type HealthResponse struct {
	Status string `json:"status"`
}

// ChildOrderRequest represents the /v1/me/sendchildorder request body.
type ChildOrderRequest struct {
	ProductCode    string  `json:"product_code"`
	ChildOrderType string  `json:"child_order_type"` // "LIMIT" or "MARKET"
	Side           string  `json:"side"`             // "BUY" or "SELL"
	Price          float64 `json:"price,omitempty"`  // LIMIT only
	Size           float64 `json:"size"`
	MinuteToExpire int     `json:"minute_to_expire,omitempty"`
	TimeInForce    string  `json:"time_in_force,omitempty"` // "GTC"
}

// ChildOrderResponse represents the /v1/me/sendchildorder response.
type ChildOrderResponse struct {
	ChildOrderAcceptanceID string `json:"child_order_acceptance_id"`
}

// PositionResponse represents one entry of the /v1/me/getpositions payload.
type PositionResponse struct {
	ProductCode       string  `json:"product_code"`
	Side              string  `json:"side"`
	Price             float64 `json:"price"`
	Size              float64 `json:"size"`
	Commission        float64 `json:"commission"`
	SwapPointAccum    float64 `json:"swap_point_accumulate"`
	RequireCollateral float64 `json:"require_collateral"`
	OpenDate          string  `json:"open_date"` // ISO 8601
	Leverage          float64 `json:"leverage"`
	PNL               float64 `json:"pnl"`
}

// ExecutionResponse represents one entry of the /v1/me/getexecutions payload.
type ExecutionResponse struct {
	ID                     int64   `json:"id"`
	ChildOrderID           string  `json:"child_order_id"`
	Side                   string  `json:"side"`
	Price                  float64 `json:"price"`
	Size                   float64 `json:"size"`
	Commission             float64 `json:"commission"`
	ExecDate               string  `json:"exec_date"` // ISO 8601
	ChildOrderAcceptanceID string  `json:"child_order_acceptance_id"`
}

// errorResponse is the envelope bitFlyer returns on non-200 statuses.
type errorResponse struct {
	Status       int    `json:"status"`
	ErrorMessage string `json:"error_message"`
}
