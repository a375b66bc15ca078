package testutil

import (
	"time"

	"pulse/pkg/models"
)

// Fixtures provides canned domain rows for database-backed tests
type Fixtures struct{}

func NewFixtures() *Fixtures {
	return &Fixtures{}
}

// Post returns a plain text post owned by userID
func (f *Fixtures) Post(id, userID string) *models.Post {
	created := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	return &models.Post{
		ID:        id,
		UserID:    userID,
		Content:   "hello from " + userID,
		MediaType: models.MediaTypeText,
		CreatedAt: created,
		UpdatedAt: created,
	}
}

// Profile returns a filled-in profile for userID
func (f *Fixtures) Profile(userID, name string) *models.Profile {
	created := time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)
	bio := "test account"
	return &models.Profile{
		ID:           userID,
		Name:         &name,
		Bio:          &bio,
		Interests:    []string{"go", "distributed systems"},
		ShowLocation: true,
		CreatedAt:    created,
		UpdatedAt:    created,
	}
}

// ProfileSummary returns the slim author shape for userID
func (f *Fixtures) ProfileSummary(userID, name string) *models.ProfileSummary {
	return &models.ProfileSummary{ID: userID, Name: &name}
}
