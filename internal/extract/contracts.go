package extract

import (
	"context"
	"time"

	"github.com/joseph-ayodele/orders-intake/internal/entity"
)

// ItemExtractor turns an uploaded purchase document into raw line items.
type ItemExtractor interface {
	Extract(ctx context.Context, document []byte, filename string) ([]entity.RawExtractedItem, error)
}

// Config for the extraction service client.
type Config struct {
	URL     string        // full endpoint URL, the document is POSTed here
	Timeout time.Duration // per-call bound
}
