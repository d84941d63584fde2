package domain

import (
	"encoding/json"
	"time"
)

// Domain contains core models shared by the pipeline, history and publishers.

// PredictionRecord is one completed prediction as kept in history.
type PredictionRecord struct {
	ID         string          `json:"id"`
	Text       string          `json:"text"`
	Likes      int             `json:"likes"`
	Label      string          `json:"label"`
	Deployment string          `json:"deployment,omitempty"`
	Raw        json.RawMessage `json:"raw,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
}
