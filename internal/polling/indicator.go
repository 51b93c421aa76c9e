package polling

// SMA calculates the simple moving average of the last-trade price over the
// most recent k tickers. It returns 0 until the history holds at least k
// entries; callers treat that as "not enough data yet", not as an error.
func SMA(h *History, k int) float64 {
	if h.Len() < k {
		return 0
	}

	sum := 0.0
	for i := h.Len() - k; i < h.Len(); i++ {
		sum += h.At(i).Last
	}
	return sum / float64(k)
}

// WMA calculates the weighted moving average of the last-trade price over
// the most recent k tickers. The newest entry carries weight k, the one
// before it k-1, down to weight 1 for the oldest of the window; the weighted
// sum is divided by k(k+1)/2. Same below-threshold policy as SMA.
func WMA(h *History, k int) float64 {
	if h.Len() < k {
		return 0
	}

	sum := 0.0
	weight := 1
	for i := h.Len() - k; i < h.Len(); i++ {
		sum += h.At(i).Last * float64(weight)
		weight++
	}
	return sum / float64(k*(k+1)/2)
}
