package publishers

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/samvad-hq/tweet-likes-predictor/pkg/httpclient"
)

// PredictionIDHeader lets webhook receivers drop duplicate deliveries.
const PredictionIDHeader = "X-Prediction-ID"

type httpPublisher struct {
	id      string
	method  string
	url     string
	headers map[string]string
	client  httpclient.Client
	log     Logger
}

func newHTTPPublisher(_ context.Context, cfg PublisherConfig, log Logger) (Publisher, error) {
	if cfg.HTTP == nil {
		return nil, fmt.Errorf("publisher %q missing http configuration", cfg.ID)
	}
	timeout := time.Duration(cfg.HTTP.TimeoutSeconds) * time.Second
	return &httpPublisher{
		id:      cfg.ID,
		method:  cfg.HTTP.Method,
		url:     cfg.HTTP.URL,
		headers: cfg.HTTP.Headers,
		client:  httpclient.NewRestyClient(timeout),
		log:     ensureLogger(log),
	}, nil
}

func (h *httpPublisher) ID() string   { return h.id }
func (h *httpPublisher) Type() string { return TypeHTTP }

func (h *httpPublisher) Publish(ctx context.Context, evt Event) error {
	headers := make(map[string]string, len(h.headers)+1)
	for k, v := range h.headers {
		headers[k] = v
	}
	if evt.PredictionID != "" {
		headers[PredictionIDHeader] = evt.PredictionID
	}

	resp, err := h.client.Do(ctx, h.method, h.url, headers, evt)
	if err != nil {
		logDeliveryFailure(h.log, TypeHTTP, h.id, evt.PredictionID, false, map[string]any{
			"error":   err.Error(),
			"timeout": httpclient.IsTimeout(err),
		})
		return fmt.Errorf("http request: %w", err)
	}
	if status := resp.StatusCode(); status < 200 || status > 299 {
		logDeliveryFailure(h.log, TypeHTTP, h.id, evt.PredictionID, true, map[string]any{"status": status})
		return fmt.Errorf("http response status %d: %s", status, readBodySnippet(resp.Body()))
	}
	logDelivered(h.log, TypeHTTP, h.id, evt.PredictionID, "")
	return nil
}

func readBodySnippet(body []byte) string {
	if len(body) > 512 {
		body = body[:512]
	}
	return strings.TrimSpace(string(body))
}
