// Package feed provides token price sources for the trading loop.
package feed

import (
	"context"
	"errors"
	"time"
)

// ErrNoPrice means the source answered but carried no usable price for the
// requested mint.
var ErrNoPrice = errors.New("no price available")

// Sample is one observed price. Confidence is the source's own quality
// rating on a 0..100 scale; sources that report none use 100.
type Sample struct {
	Price      float64
	Confidence float64
	Time       time.Time
}

// PriceFeed answers the current USD price of a token mint. Implementations
// must be safe to call repeatedly from the trading loop; transient failures
// come back as errors, never as zero prices.
type PriceFeed interface {
	Price(ctx context.Context, mint string) (Sample, error)
}
