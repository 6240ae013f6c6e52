package match

import (
	"context"
	"time"

	"github.com/joseph-ayodele/orders-intake/internal/entity"
)

// BatchMatcher resolves free-text descriptions against the product catalog.
type BatchMatcher interface {
	MatchBatch(ctx context.Context, queries []string, limit int) (entity.MatchBatchResult, error)
}

// Config for the matching service client.
type Config struct {
	BaseURL string        // "/match/batch" is appended
	Timeout time.Duration // per-call bound
}
