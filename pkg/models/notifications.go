package models

import (
	"encoding/json"
	"time"
)

// Notification types
const (
	NotificationLike     = "like"
	NotificationComment  = "comment"
	NotificationFollow   = "follow"
	NotificationRepost   = "repost"
	NotificationMention  = "mention"
	NotificationPollVote = "poll"
)

// Notification represents a row in the notifications table
type Notification struct {
	ID        string          `json:"id"`
	UserID    string          `json:"user_id"`
	Type      string          `json:"type"`
	ActorID   *string         `json:"actor_id,omitempty"`
	PostID    *string         `json:"post_id,omitempty"`
	CommentID *string         `json:"comment_id,omitempty"`
	Read      bool            `json:"read"`
	Data      json.RawMessage `json:"data,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	Actor     *ProfileSummary `json:"actor,omitempty"`
}
