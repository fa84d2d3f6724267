package events

import (
	"encoding/json"
	"time"
)

// Envelope is what travels over Redis and, minus the exclusion, to websocket clients.
type Envelope struct {
	Event               string          `json:"event"`
	Channel             string          `json:"channel"`
	ExcludeConnectionID string          `json:"exclude_connection_id,omitempty"`
	OccurredAt          time.Time       `json:"occurred_at"`
	Payload             json.RawMessage `json:"payload"`
}

// ClientFrame is the envelope as sent to a websocket client.
func (e Envelope) ClientFrame() ([]byte, error) {
	e.ExcludeConnectionID = ""
	return json.Marshal(e)
}
