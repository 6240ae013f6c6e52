package match

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/joseph-ayodele/orders-intake/internal/common"
	"github.com/joseph-ayodele/orders-intake/internal/entity"
	"github.com/joseph-ayodele/orders-intake/internal/upstream"
)

const serviceName = "matching"

var responseSchema = upstream.MustCompileSchema("match_batch_response.json", `{
	"type": "object",
	"required": ["results"],
	"properties": {
		"results": {
			"type": "object",
			"additionalProperties": {
				"type": "array",
				"items": {
					"type": "object",
					"properties": {
						"match": {"type": ["string", "null"]},
						"score": {"type": ["number", "null"]}
					}
				}
			}
		}
	}
}`)

type batchRequest struct {
	Queries []string `json:"queries"`
}

type batchResponse struct {
	Results map[string][]struct {
		Match *string  `json:"match"`
		Score *float64 `json:"score"`
	} `json:"results"`
}

// Client implements BatchMatcher with a single call per batch.
type Client struct {
	baseURL string
	up      *upstream.Client
	logger  *slog.Logger
}

func NewClient(cfg Config, httpClient *http.Client, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	return &Client{
		baseURL: cfg.BaseURL,
		up:      upstream.NewClient(serviceName, httpClient, cfg.Timeout, logger),
		logger:  logger,
	}
}

// MatchBatch sends all queries in one request. An empty batch returns an
// empty result without contacting the service. Candidate order is kept as
// returned and lists longer than limit are cut to limit; a failed call fails
// the whole batch.
func (c *Client) MatchBatch(ctx context.Context, queries []string, limit int) (entity.MatchBatchResult, error) {
	if limit <= 0 {
		return nil, common.InvalidInputError("limit must be a positive integer", nil)
	}
	if len(queries) == 0 {
		return entity.MatchBatchResult{}, nil
	}

	start := time.Now()
	endpoint, err := c.endpoint(limit)
	if err != nil {
		return nil, fmt.Errorf("matching endpoint: %w", err)
	}

	c.logger.Info("match.batch.start", "queries", len(queries), "limit", limit)
	raw, err := c.up.PostJSON(ctx, endpoint, batchRequest{Queries: queries})
	if err != nil {
		c.logger.Error("match.batch.upstream_failed",
			"queries", len(queries), "kind", common.KindOf(err), "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return nil, err
	}

	var resp batchResponse
	if err := upstream.DecodeValidated(responseSchema, raw, &resp); err != nil {
		c.logger.Error("match.batch.decode_error",
			"error", err, "raw_bytes", len(raw),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return nil, common.UpstreamError(http.StatusOK, "Malformed response from matching service", err)
	}

	out := make(entity.MatchBatchResult, len(resp.Results))
	for q, cands := range resp.Results {
		if len(cands) > limit {
			c.logger.Warn("match.batch.over_limit", "query", q, "candidates", len(cands), "limit", limit)
			cands = cands[:limit]
		}
		list := make([]entity.MatchCandidate, 0, len(cands))
		for _, cand := range cands {
			list = append(list, entity.MatchCandidate{Label: cand.Match, Score: cand.Score})
		}
		out[q] = list
	}

	c.logger.Info("match.batch.ok",
		"queries", len(queries), "results", len(out),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return out, nil
}

func (c *Client) endpoint(limit int) (string, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return "", err
	}
	u = u.JoinPath("match", "batch")
	q := u.Query()
	q.Set("limit", strconv.Itoa(limit))
	u.RawQuery = q.Encode()
	return u.String(), nil
}
