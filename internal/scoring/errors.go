package scoring

import (
	"errors"
	"fmt"
	"strings"

	"github.com/samvad-hq/tweet-likes-predictor/pkg/httpclient"
)

const maxErrorSnippet = 512

// ErrEmptyText is returned when the input is empty or whitespace only.
var ErrEmptyText = errors.New("input text is empty")

// ConfigurationError reports required settings that resolved to empty values.
type ConfigurationError struct {
	Missing []string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("missing required settings: %s", strings.Join(e.Missing, ", "))
}

// TransportError wraps a network-level failure (DNS, refused connection, timeout).
type TransportError struct {
	URL string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("scoring request to %s failed: %v", e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// Timeout reports whether the failure was the request deadline expiring.
func (e *TransportError) Timeout() bool {
	return httpclient.IsTimeout(e.Err)
}

// HTTPError is a non-2xx answer from the scoring endpoint. Body holds the full response text.
type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	if snippet := snippet(e.Body); snippet != "" {
		return fmt.Sprintf("scoring endpoint returned status %d: %s", e.StatusCode, snippet)
	}
	return fmt.Sprintf("scoring endpoint returned status %d", e.StatusCode)
}

// MalformedResponseError is a 2xx answer whose body does not carry a usable prediction.
type MalformedResponseError struct {
	Reason string
	Body   string
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("malformed scoring response: %s", e.Reason)
}

func snippet(body string) string {
	s := strings.TrimSpace(body)
	if len(s) > maxErrorSnippet {
		return s[:maxErrorSnippet] + "..."
	}
	return s
}
