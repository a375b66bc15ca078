package models

import (
	"time"
)

// LinkPreview represents a cached OpenGraph snapshot of a URL
type LinkPreview struct {
	ID          string    `json:"id"`
	URL         string    `json:"url"`
	Title       *string   `json:"title"`
	Description *string   `json:"description"`
	ImageURL    *string   `json:"image_url"`
	FaviconURL  *string   `json:"favicon_url"`
	SiteName    *string   `json:"site_name"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TrendingTopic represents a row in the trending_topics table
type TrendingTopic struct {
	Name           string    `json:"name"`
	Count          int       `json:"count"`
	LastTrendingAt time.Time `json:"last_trending_at"`
}

// Reaction represents a row in the reactions table
type Reaction struct {
	ID        string    `json:"id"`
	PostID    string    `json:"post_id"`
	UserID    string    `json:"user_id"`
	Emoji     string    `json:"emoji"`
	CreatedAt time.Time `json:"created_at"`
}

// ReactionCount is an aggregated emoji tally for a post
type ReactionCount struct {
	Emoji       string `json:"emoji"`
	Count       int    `json:"count"`
	UserReacted bool   `json:"user_reacted"`
}
