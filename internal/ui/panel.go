package ui

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/samvad-hq/tweet-likes-predictor/internal/app"
	"github.com/samvad-hq/tweet-likes-predictor/internal/scoring"
)

// Kind selects how a panel is styled.
type Kind string

const (
	KindSuccess Kind = "success"
	KindWarning Kind = "warning"
	KindError   Kind = "error"
)

// Panel is the presentation of one Outcome.
type Panel struct {
	Kind    Kind
	Title   string
	Likes   int
	Label   string
	RawJSON string
	Detail  string
	// Body is the endpoint's response text, when one was received.
	Body string
}

// NewPanel maps an outcome to what the user sees.
func NewPanel(o app.Outcome) Panel {
	if o.OK() {
		return Panel{
			Kind:    KindSuccess,
			Title:   "Prediction received",
			Likes:   o.Prediction.Likes,
			Label:   o.Level.String(),
			RawJSON: prettyJSON(o.Prediction.Raw),
		}
	}

	var (
		cfgErr       *scoring.ConfigurationError
		httpErr      *scoring.HTTPError
		transportErr *scoring.TransportError
		malformedErr *scoring.MalformedResponseError
	)
	switch {
	case errors.Is(o.Err, scoring.ErrEmptyText):
		return Panel{Kind: KindWarning, Title: "Please enter tweet text."}
	case errors.As(o.Err, &cfgErr):
		return Panel{
			Kind:  KindError,
			Title: "Configuration error",
			Detail: fmt.Sprintf("%s missing. Set them as environment variables or in the secrets file.",
				strings.Join(cfgErr.Missing, " / ")),
		}
	case errors.As(o.Err, &httpErr):
		return Panel{
			Kind:   KindError,
			Title:  "HTTP error calling the endpoint",
			Detail: fmt.Sprintf("status %d %s", httpErr.StatusCode, http.StatusText(httpErr.StatusCode)),
			Body:   httpErr.Body,
		}
	case errors.As(o.Err, &transportErr):
		detail := transportErr.Error()
		if transportErr.Timeout() {
			detail = fmt.Sprintf("no answer within %s: %s", scoring.RequestTimeout, detail)
		}
		return Panel{Kind: KindError, Title: "Could not reach the endpoint", Detail: detail}
	case errors.As(o.Err, &malformedErr):
		return Panel{
			Kind:   KindError,
			Title:  "Unexpected response from the endpoint",
			Detail: malformedErr.Reason,
			Body:   malformedErr.Body,
		}
	default:
		return Panel{Kind: KindError, Title: "Unexpected error", Detail: o.Err.Error()}
	}
}

func prettyJSON(v any) string {
	if v == nil {
		return ""
	}
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(raw)
}
