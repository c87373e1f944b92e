package interfaces

import (
	"context"
	"time"

	"volatility-scanner/src/models"
)

// -----------------------------------------------------------------------------
// ISymbolSelector ranks instruments by traded volume.
// -----------------------------------------------------------------------------

type ISymbolSelector interface {

	// -----------------------------------------------------------------------------

	// TopSymbols returns up to max instrument symbols quoted in the
	// reference currency, ordered by descending trailing-24h quote volume.
	// Returns a MarketUnavailable error when the ranking query fails or
	// yields malformed data; callers treat that as retryable.
	TopSymbols(ctx context.Context, max int) ([]string, error)
}

// -----------------------------------------------------------------------------
// IStreamDialer opens one multiplexed interval-bar subscription.
// -----------------------------------------------------------------------------

type IStreamDialer interface {

	// -----------------------------------------------------------------------------

	// Dial subscribes to the interval-bar stream of every given symbol at
	// the given time frame over a single connection.
	Dial(ctx context.Context, symbols []string, timeFrame string) (IBarStream, error)
}

// -----------------------------------------------------------------------------
// IBarStream is a live multiplexed bar feed.
// -----------------------------------------------------------------------------

type IBarStream interface {

	// -----------------------------------------------------------------------------

	// ReadBar blocks for at most timeout waiting for the next bar update.
	// Timeouts and abrupt closure surface as StreamDisrupted; a single
	// undecodable message surfaces as MalformedMessage.
	ReadBar(timeout time.Duration) (models.MIntervalBar, error)

	// -----------------------------------------------------------------------------

	// Close releases the underlying connection.
	Close() error
}
