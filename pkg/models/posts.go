package models

import (
	"time"
)

// Media types a post can carry
const (
	MediaTypeText  = "text"
	MediaTypeImage = "image"
	MediaTypeVideo = "video"
	MediaTypeGif   = "gif"
	MediaTypePoll  = "poll"
	MediaTypeLink  = "link"
)

// Post represents a row in the posts table
type Post struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	Content      string    `json:"content"`
	ImageURL     *string   `json:"image_url"`
	MediaType    string    `json:"media_type"`
	ParentPostID *string   `json:"parent_post_id,omitempty"`
	ReplyCount   int       `json:"reply_count"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Engagement carries per-post counters plus the caller's own state
type Engagement struct {
	LikeCount     int  `json:"like_count"`
	CommentCount  int  `json:"comment_count"`
	BookmarkCount int  `json:"bookmark_count"`
	RepostCount   int  `json:"repost_count"`
	Liked         bool `json:"liked"`
	Bookmarked    bool `json:"bookmarked"`
	Reposted      bool `json:"reposted"`
}

// FeedPost is a post enriched with its author and engagement state
type FeedPost struct {
	Post
	Author     *ProfileSummary `json:"author,omitempty"`
	Engagement Engagement      `json:"engagement"`
}

// Comment represents a row in the comments table
type Comment struct {
	ID        string          `json:"id"`
	PostID    string          `json:"post_id"`
	UserID    string          `json:"user_id"`
	Content   string          `json:"content"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
	Author    *ProfileSummary `json:"author,omitempty"`
}

// Repost represents a row in the reposts table. Content is the
// optional quote attached to the repost.
type Repost struct {
	ID        string    `json:"id"`
	PostID    string    `json:"post_id"`
	UserID    string    `json:"user_id"`
	Content   *string   `json:"content,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Thread is a post with its replies in chronological order
type Thread struct {
	Post    FeedPost   `json:"post"`
	Replies []FeedPost `json:"replies"`
}
