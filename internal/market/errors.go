package market

import "errors"

// Error kinds. Exchange clients wrap their failures onto one of these so
// the worker loops can classify with errors.Is. None of them is fatal to
// the loop that observes it.
var (
	// ErrFetch marks a network or HTTP failure while reading market data.
	// The owning cycle is skipped; history is never modified on fetch failure.
	ErrFetch = errors.New("market: fetch failed")

	// ErrAuth marks a credential rejection on a private endpoint.
	// The attempt is counted as failed and the loop continues.
	ErrAuth = errors.New("market: authentication rejected")

	// ErrQuery marks a position/execution query failure.
	// The decision cycle that needed the result is skipped.
	ErrQuery = errors.New("market: query failed")
)
