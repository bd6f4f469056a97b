package collector

import (
	"context"

	"TrendSentinel/internal/model"
)

// Fetcher defines the interface for retrieving raw series payloads.
type Fetcher interface {
	Fetch(ctx context.Context, code int, window model.LookbackWindow) (*model.RawPayload, error)
	Name() string
}
