package publishers

import (
	"time"

	"github.com/samvad-hq/tweet-likes-predictor/internal/domain"
)

// Event represents the payload published downstream.
type Event struct {
	PredictionID string    `json:"prediction_id"`
	Text         string    `json:"text"`
	Likes        int       `json:"likes"`
	Label        string    `json:"label"`
	Deployment   string    `json:"deployment,omitempty"`
	PredictedAt  time.Time `json:"predicted_at"`
}

// NewEvent projects a prediction record into an Event.
func NewEvent(rec domain.PredictionRecord) Event {
	at := rec.CreatedAt
	if at.IsZero() {
		at = time.Now().UTC()
	}
	return Event{
		PredictionID: rec.ID,
		Text:         rec.Text,
		Likes:        rec.Likes,
		Label:        rec.Label,
		Deployment:   rec.Deployment,
		PredictedAt:  at,
	}
}

// attributes are the routing attributes attached to queue and topic messages.
func (e Event) attributes() map[string]string {
	return map[string]string{
		"prediction_id":    e.PredictionID,
		"engagement_label": e.Label,
	}
}
