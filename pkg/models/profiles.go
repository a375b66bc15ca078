package models

import (
	"time"
)

// Profile represents a user's public profile
type Profile struct {
	ID                 string     `json:"id"`
	Name               *string    `json:"name"`
	Bio                *string    `json:"bio"`
	AvatarURL          *string    `json:"avatar_url"`
	Location           *string    `json:"location"`
	Pronouns           *string    `json:"pronouns"`
	Interests          []string   `json:"interests"`
	Website            *string    `json:"website"`
	Birthday           *time.Time `json:"birthday,omitempty"`
	RelationshipStatus *string    `json:"relationship_status"`
	ShowBirthday       bool       `json:"show_birthday"`
	ShowAge            bool       `json:"show_age"`
	ShowLocation       bool       `json:"show_location"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

// ProfileSummary is the slim author shape joined onto posts, comments
// and notifications.
type ProfileSummary struct {
	ID        string  `json:"id"`
	Name      *string `json:"name"`
	AvatarURL *string `json:"avatar_url"`
}

// UpdateProfileRequest represents a partial profile update. Nil fields
// are left untouched.
type UpdateProfileRequest struct {
	Name               *string    `json:"name"`
	Bio                *string    `json:"bio"`
	AvatarURL          *string    `json:"avatar_url"`
	Location           *string    `json:"location"`
	Pronouns           *string    `json:"pronouns"`
	Interests          []string   `json:"interests"`
	Website            *string    `json:"website"`
	Birthday           *time.Time `json:"birthday"`
	RelationshipStatus *string    `json:"relationship_status"`
	ShowBirthday       *bool      `json:"show_birthday"`
	ShowAge            *bool      `json:"show_age"`
	ShowLocation       *bool      `json:"show_location"`
}

// SuggestedUser is a who-to-follow candidate with its ranking signal
type SuggestedUser struct {
	Profile         ProfileSummary `json:"profile"`
	MutualFollowers int            `json:"mutual_followers"`
}
