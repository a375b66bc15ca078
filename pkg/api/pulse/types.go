// Package pulse defines the wire types for the pulse HTTP API.
//
// Every mutation responds with the same envelope: Success true plus a
// typed payload, or Success false plus a bare error message.
package pulse

import (
	"pulse/pkg/models"
)

// ErrorResponse is the failure half of the mutation envelope
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// Err wraps a message in the failure envelope
func Err(message string) ErrorResponse {
	return ErrorResponse{Success: false, Error: message}
}

// AuthResponse is returned from register and login
type AuthResponse struct {
	Success bool        `json:"success"`
	Token   string      `json:"token"`
	User    models.User `json:"user"`
}

// LikeResponse is returned from the like toggle
type LikeResponse struct {
	Success bool `json:"success"`
	Liked   bool `json:"liked"`
	Count   int  `json:"count"`
}

// BookmarkResponse is returned from the bookmark toggle
type BookmarkResponse struct {
	Success    bool `json:"success"`
	Bookmarked bool `json:"bookmarked"`
	Count      int  `json:"count"`
}

// FollowResponse is returned from the follow toggle
type FollowResponse struct {
	Success   bool `json:"success"`
	Following bool `json:"following"`
}

// RepostResponse is returned from repost create/delete
type RepostResponse struct {
	Success  bool   `json:"success"`
	RepostID string `json:"repost_id,omitempty"`
	Count    int    `json:"count"`
}

// ReactionResponse is returned from setting or removing a reaction.
// Emoji is nil when the caller's reaction was removed.
type ReactionResponse struct {
	Success bool    `json:"success"`
	Emoji   *string `json:"emoji"`
	Count   int     `json:"count"`
}

// ReactionsListResponse aggregates a post's reactions
type ReactionsListResponse struct {
	Success   bool                   `json:"success"`
	Reactions []models.ReactionCount `json:"reactions"`
}

// PostResponse is returned from post create/update
type PostResponse struct {
	Success bool        `json:"success"`
	Post    models.Post `json:"post"`
}

// CommentResponse is returned from comment create/update
type CommentResponse struct {
	Success bool           `json:"success"`
	Comment models.Comment `json:"comment"`
}

// CommentsResponse is a page of comments for a post
type CommentsResponse struct {
	Success  bool             `json:"success"`
	Comments []models.Comment `json:"comments"`
	Total    int              `json:"total"`
}

// DeleteResponse is returned from delete mutations
type DeleteResponse struct {
	Success bool `json:"success"`
}

// FeedResponse is a page of enriched posts
type FeedResponse struct {
	Success bool              `json:"success"`
	Posts   []models.FeedPost `json:"posts"`
	Limit   int               `json:"limit"`
	Offset  int               `json:"offset"`
}

// ThreadResponse is a post with its reply chain
type ThreadResponse struct {
	Success bool          `json:"success"`
	Thread  models.Thread `json:"thread"`
}

// RepliesResponse is a page of replies under a post
type RepliesResponse struct {
	Success bool              `json:"success"`
	Replies []models.FeedPost `json:"replies"`
	Total   int               `json:"total"`
}

// PollResponse is returned from poll creation
type PollResponse struct {
	Success bool                `json:"success"`
	Poll    models.Poll         `json:"poll"`
	Options []models.PollOption `json:"options"`
}

// PollResultsResponse carries a poll's tallies
type PollResultsResponse struct {
	Success bool               `json:"success"`
	Results models.PollResults `json:"results"`
}

// VoteResponse is returned from poll voting
type VoteResponse struct {
	Success bool               `json:"success"`
	Results models.PollResults `json:"results"`
}

// ProfileResponse wraps a single profile
type ProfileResponse struct {
	Success bool           `json:"success"`
	Profile models.Profile `json:"profile"`
}

// ProfilesResponse wraps a list of profile summaries
type ProfilesResponse struct {
	Success  bool                    `json:"success"`
	Profiles []models.ProfileSummary `json:"profiles"`
}

// SuggestionsResponse is the who-to-follow list
type SuggestionsResponse struct {
	Success     bool                   `json:"success"`
	Suggestions []models.SuggestedUser `json:"suggestions"`
}

// UploadResponse is returned from avatar and image uploads
type UploadResponse struct {
	Success bool   `json:"success"`
	URL     string `json:"url"`
}

// NotificationsResponse is the caller's notification page
type NotificationsResponse struct {
	Success       bool                  `json:"success"`
	Notifications []models.Notification `json:"notifications"`
	UnreadCount   int                   `json:"unread_count"`
}

// UnreadCountResponse carries just the unread tally
type UnreadCountResponse struct {
	Success     bool `json:"success"`
	UnreadCount int  `json:"unread_count"`
}

// LinkPreviewResponse wraps a single link preview
type LinkPreviewResponse struct {
	Success bool               `json:"success"`
	Preview models.LinkPreview `json:"preview"`
}

// TrendingResponse is the current trending topics
type TrendingResponse struct {
	Success bool                   `json:"success"`
	Topics  []models.TrendingTopic `json:"topics"`
}

// SearchUsersResponse is a name search result page
type SearchUsersResponse struct {
	Success bool                    `json:"success"`
	Users   []models.ProfileSummary `json:"users"`
}

// MentionsResponse is a page of posts mentioning a user
type MentionsResponse struct {
	Success bool              `json:"success"`
	Posts   []models.FeedPost `json:"posts"`
	Total   int               `json:"total"`
}
