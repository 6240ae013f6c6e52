package extract

import (
	"context"
	"log/slog"
	"net/http"
	"path/filepath"
	"time"

	"github.com/joseph-ayodele/orders-intake/constants"
	"github.com/joseph-ayodele/orders-intake/internal/common"
	"github.com/joseph-ayodele/orders-intake/internal/entity"
	"github.com/joseph-ayodele/orders-intake/internal/upstream"
)

const serviceName = "extraction"

// Client implements ItemExtractor against the remote extraction service.
type Client struct {
	url    string
	up     *upstream.Client
	logger *slog.Logger
}

func NewClient(cfg Config, httpClient *http.Client, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	return &Client{
		url:    cfg.URL,
		up:     upstream.NewClient(serviceName, httpClient, cfg.Timeout, logger),
		logger: logger,
	}
}

// Extract forwards the document to the extraction service and maps every
// returned record to a RawExtractedItem, keeping rows with missing fields.
func (c *Client) Extract(ctx context.Context, document []byte, filename string) ([]entity.RawExtractedItem, error) {
	start := time.Now()
	if !constants.IsAllowedExt(filepath.Ext(filename)) {
		c.logger.Warn("extract.rejected_file_type", "filename", filename)
		return nil, common.InvalidInputError("File must be a PDF", nil)
	}
	if len(document) == 0 {
		c.logger.Warn("extract.empty_document", "filename", filename)
		return nil, common.InvalidInputError("Uploaded file is empty", nil)
	}

	c.logger.Info("extract.start", "filename", filename, "bytes", len(document))
	raw, err := c.up.PostMultipart(ctx, c.url, "file", filepath.Base(filename), constants.DocumentContentType, document)
	if err != nil {
		c.logger.Error("extract.upstream_failed",
			"filename", filename, "kind", common.KindOf(err), "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return nil, err
	}

	items, err := decodeItems(raw)
	if err != nil {
		c.logger.Error("extract.decode_error",
			"filename", filename, "error", err, "raw_bytes", len(raw),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return nil, common.UpstreamError(http.StatusOK, "Malformed response from extraction service", err)
	}

	c.logger.Info("extract.ok",
		"filename", filename, "items", len(items),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return items, nil
}
