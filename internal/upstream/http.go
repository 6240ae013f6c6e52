// Package upstream holds the outbound HTTP plumbing shared by the extraction
// and matching adapters: request logging, timeout scoping, error
// classification and schema-checked decoding.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/orders-intake/internal/common"
)

const maxResponseBytes = 32 << 20

// Client sends requests to one remote service and classifies failures.
type Client struct {
	service string
	http    *http.Client
	timeout time.Duration
	logger  *slog.Logger
}

// NewClient builds a client for the named service. Every call is bounded by timeout.
func NewClient(service string, httpClient *http.Client, timeout time.Duration, logger *slog.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		service: service,
		http:    httpClient,
		timeout: timeout,
		logger:  logger,
	}
}

// PostJSON sends body as JSON and returns the raw response body of a 2xx reply.
func (c *Client) PostJSON(ctx context.Context, url string, body any) ([]byte, error) {
	bs, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode json: %w", err)
	}
	return c.send(ctx, http.MethodPost, url, bytes.NewReader(bs), map[string]string{
		"Content-Type": "application/json",
		"Accept":       "application/json",
	})
}

// PostMultipart uploads data as a single file part named field.
func (c *Client) PostMultipart(ctx context.Context, url, field, filename, contentType string, data []byte) ([]byte, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, field, filename))
	h.Set("Content-Type", contentType)
	part, err := mw.CreatePart(h)
	if err != nil {
		return nil, fmt.Errorf("create multipart part: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return nil, fmt.Errorf("write multipart part: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("close multipart writer: %w", err)
	}

	return c.send(ctx, http.MethodPost, url, &buf, map[string]string{
		"Content-Type": mw.FormDataContentType(),
		"Accept":       "application/json",
	})
}

func (c *Client) send(ctx context.Context, method, url string, body io.Reader, headers map[string]string) ([]byte, error) {
	ctx, cancel := common.WithTimeout(ctx, c.timeout)
	defer cancel()

	reqID := uuid.New().String()
	start := time.Now()
	log := c.logger.With("service", c.service, "req_id", reqID, "request_id", common.RequestIDFromContext(ctx))

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		log.Error("upstream.http.build_request_error", "error", err)
		return nil, fmt.Errorf("build request: %w", err)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	log.Info("upstream.http.request", "method", method, "url", url)

	resp, err := c.http.Do(req)
	if err != nil {
		log.Error("upstream.http.send_error", "error", err, "elapsed_ms", time.Since(start).Milliseconds())
		return nil, common.UpstreamUnavailableError(c.service+" service unreachable", err)
	}
	defer func(Body io.ReadCloser) {
		if err := Body.Close(); err != nil {
			log.Warn("upstream.http.response_body_close_error", "error", err)
		}
	}(resp.Body)

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		log.Error("upstream.http.read_error", "error", err, "elapsed_ms", time.Since(start).Milliseconds())
		return nil, common.UpstreamUnavailableError(c.service+" service response interrupted", err)
	}

	log.Info("upstream.http.response",
		"status", resp.StatusCode,
		"bytes", len(raw),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)

	if resp.StatusCode/100 != 2 {
		return nil, common.UpstreamError(resp.StatusCode,
			fmt.Sprintf("error from %s service", c.service),
			fmt.Errorf("non-2xx status: %d", resp.StatusCode))
	}
	return raw, nil
}
