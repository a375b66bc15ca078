package models

import (
	"encoding/json"
	"time"
)

// ChangeEvent is published over Redis whenever a mutation lands and is
// fanned out to websocket subscribers of the matching channel.
type ChangeEvent struct {
	Channel   string          `json:"channel"`
	Type      string          `json:"type"`
	PostID    string          `json:"post_id,omitempty"`
	ActorID   string          `json:"actor_id,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

// InvalidationEvent names a view whose cached rendering is stale.
type InvalidationEvent struct {
	View      string    `json:"view"`
	Key       string    `json:"key,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}
