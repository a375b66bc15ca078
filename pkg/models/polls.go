package models

import (
	"time"
)

// Poll represents a row in the polls table
type Poll struct {
	ID             string     `json:"id"`
	PostID         string     `json:"post_id"`
	Question       string     `json:"question"`
	MultipleChoice bool       `json:"multiple_choice"`
	ExpiresAt      *time.Time `json:"expires_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

// PollOption represents a row in the poll_options table
type PollOption struct {
	ID          string `json:"id"`
	PollID      string `json:"poll_id"`
	OptionText  string `json:"option_text"`
	OptionOrder int    `json:"option_order"`
}

// PollOptionResult is a poll option with its tally
type PollOptionResult struct {
	PollOption
	Votes      int  `json:"votes"`
	Percentage int  `json:"percentage"`
	UserVoted  bool `json:"user_voted"`
}

// PollResults is the aggregate view of a poll
type PollResults struct {
	Poll       Poll               `json:"poll"`
	Options    []PollOptionResult `json:"options"`
	TotalVotes int                `json:"total_votes"`
	Expired    bool               `json:"expired"`
}

// CreatePollRequest represents the poll creation request
type CreatePollRequest struct {
	PostID         string     `json:"post_id" binding:"required"`
	Question       string     `json:"question" binding:"required"`
	Options        []string   `json:"options" binding:"required"`
	MultipleChoice bool       `json:"multiple_choice"`
	ExpiresAt      *time.Time `json:"expires_at"`
}

// VotePollRequest represents a vote submission
type VotePollRequest struct {
	OptionIDs []string `json:"option_ids" binding:"required"`
}
