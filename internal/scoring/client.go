package scoring

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/samvad-hq/tweet-likes-predictor/internal/logger"
	"github.com/samvad-hq/tweet-likes-predictor/pkg/httpclient"
)

// Prediction is a successful scoring result.
type Prediction struct {
	Likes   int
	Raw     map[string]any
	RawBody []byte
}

type predictRequest struct {
	Text string `json:"text"`
}

// Client calls the remote scoring endpoint. One Predict call issues at most one HTTP request.
type Client struct {
	settings Settings
	http     httpclient.Client
	log      logger.Logger
}

// NewClient builds a scoring client. A nil hc gets a resty transport with RequestTimeout.
func NewClient(settings Settings, hc httpclient.Client, log logger.Logger) *Client {
	if hc == nil {
		hc = httpclient.NewRestyClient(RequestTimeout)
	}
	if log == nil {
		log = logger.NopLogger{}
	}
	return &Client{settings: settings, http: hc, log: log}
}

// Settings returns the endpoint settings the client was built with.
func (c *Client) Settings() Settings { return c.settings }

// Predict sends text to the scoring endpoint and returns the first predicted value.
func (c *Client) Predict(ctx context.Context, text string) (Prediction, error) {
	if missing := c.settings.Missing(); len(missing) > 0 {
		return Prediction{}, &ConfigurationError{Missing: missing}
	}
	if strings.TrimSpace(text) == "" {
		return Prediction{}, ErrEmptyText
	}

	url := strings.TrimSpace(c.settings.ScoringURL)
	resp, err := c.http.Post(ctx, url, c.settings.headers(), predictRequest{Text: text})
	if err != nil {
		terr := &TransportError{URL: url, Err: err}
		c.log.WarnObj("scoring request failed", "scoring_error", map[string]any{
			"timeout": terr.Timeout(),
			"error":   err.Error(),
		})
		return Prediction{}, terr
	}

	body := resp.Body()
	if status := resp.StatusCode(); status < 200 || status > 299 {
		c.log.WarnObj("scoring endpoint returned error status", "scoring_error", map[string]any{
			"status": status,
			"body":   snippet(string(body)),
		})
		return Prediction{}, &HTTPError{StatusCode: status, Body: string(body)}
	}

	pred, err := parsePrediction(body)
	if err != nil {
		c.log.WarnObj("scoring response rejected", "scoring_error", map[string]any{
			"error": err.Error(),
			"body":  snippet(string(body)),
		})
		return Prediction{}, err
	}

	c.log.DebugObj("scoring call completed", "scoring_result", map[string]any{
		"likes":      pred.Likes,
		"deployment": c.settings.Status().DeploymentName,
	})
	return pred, nil
}

func parsePrediction(body []byte) (Prediction, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var raw map[string]any
	if err := dec.Decode(&raw); err != nil || raw == nil {
		return Prediction{}, &MalformedResponseError{Reason: "response is not a JSON object", Body: string(body)}
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return Prediction{}, &MalformedResponseError{Reason: "unexpected data after JSON object", Body: string(body)}
	}

	field, ok := raw["predictions"]
	if !ok || field == nil {
		return Prediction{}, &MalformedResponseError{Reason: `missing "predictions" field`, Body: string(body)}
	}
	list, ok := field.([]any)
	if !ok || len(list) == 0 {
		return Prediction{}, &MalformedResponseError{Reason: `"predictions" is not a non-empty list`, Body: string(body)}
	}

	likes, err := toInt(list[0])
	if err != nil {
		return Prediction{}, &MalformedResponseError{Reason: fmt.Sprintf("first prediction: %v", err), Body: string(body)}
	}

	return Prediction{Likes: likes, Raw: raw, RawBody: body}, nil
}

// toInt truncates a JSON number toward zero.
func toInt(v any) (int, error) {
	num, ok := v.(json.Number)
	if !ok {
		return 0, fmt.Errorf("value %v is not a number", v)
	}
	if i, err := num.Int64(); err == nil && i >= math.MinInt && i <= math.MaxInt {
		return int(i), nil
	}
	f, err := num.Float64()
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("value %s is not a finite number", num)
	}
	f = math.Trunc(f)
	if f < math.MinInt || f >= math.MaxInt {
		return 0, fmt.Errorf("value %s overflows int", num)
	}
	return int(f), nil
}
