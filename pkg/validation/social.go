// Package validation holds the input rules for posts, comments and
// profiles. Each check returns the first failing rule's message so the
// handler layer can surface it verbatim in the error envelope.
package validation

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"pulse/pkg/models"
)

const (
	MaxPostLength     = 2000
	MaxCommentLength  = 1000
	MaxNameLength     = 100
	MaxBioLength      = 500
	MaxLocationLength = 100
	MaxInterests      = 10
	MaxInterestLength = 30
	MinAgeYears       = 13
	MaxAgeYears       = 120
)

var Pronouns = []string{
	"she/her",
	"he/him",
	"they/them",
	"any pronouns",
	"prefer not to say",
}

var RelationshipStatuses = []string{
	"single",
	"in a relationship",
	"it's complicated",
	"married",
	"prefer not to say",
}

var MediaTypes = []string{
	models.MediaTypeText,
	models.MediaTypeImage,
	models.MediaTypeVideo,
	models.MediaTypeGif,
	models.MediaTypePoll,
	models.MediaTypeLink,
}

var validate = validator.New()

// ValidURL reports whether s passes the standard url rule.
func ValidURL(s string) bool {
	return validate.Var(s, "url") == nil
}

// PostContent validates and trims post content plus its optional image
// URL and media type. Returns the cleaned content.
func PostContent(content string, imageURL *string, mediaType *string) (string, error) {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return "", fmt.Errorf("Post cannot be empty")
	}
	if len(trimmed) > MaxPostLength {
		return "", fmt.Errorf("Post must be %d characters or less", MaxPostLength)
	}
	if imageURL != nil && *imageURL != "" && !ValidURL(*imageURL) {
		return "", fmt.Errorf("Invalid image URL")
	}
	if mediaType != nil && *mediaType != "" && !contains(MediaTypes, *mediaType) {
		return "", fmt.Errorf("Invalid media type")
	}
	return trimmed, nil
}

// CommentContent validates and trims comment content.
func CommentContent(content string) (string, error) {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return "", fmt.Errorf("Comment cannot be empty")
	}
	if len(trimmed) > MaxCommentLength {
		return "", fmt.Errorf("Comment must be %d characters or less", MaxCommentLength)
	}
	return trimmed, nil
}

// Profile validates a partial profile update. Nil fields are skipped.
func Profile(req models.UpdateProfileRequest) error {
	if req.Name != nil && len(*req.Name) > MaxNameLength {
		return fmt.Errorf("Name must be %d characters or less", MaxNameLength)
	}
	if req.Bio != nil && len(*req.Bio) > MaxBioLength {
		return fmt.Errorf("Bio must be %d characters or less", MaxBioLength)
	}
	if req.Location != nil && len(*req.Location) > MaxLocationLength {
		return fmt.Errorf("Location must be %d characters or less", MaxLocationLength)
	}
	if req.Pronouns != nil && *req.Pronouns != "" && !contains(Pronouns, *req.Pronouns) {
		return fmt.Errorf("Invalid pronouns")
	}
	if req.RelationshipStatus != nil && *req.RelationshipStatus != "" && !contains(RelationshipStatuses, *req.RelationshipStatus) {
		return fmt.Errorf("Invalid relationship status")
	}
	if len(req.Interests) > MaxInterests {
		return fmt.Errorf("You can list up to %d interests", MaxInterests)
	}
	for _, interest := range req.Interests {
		if len(interest) > MaxInterestLength {
			return fmt.Errorf("Each interest must be %d characters or less", MaxInterestLength)
		}
	}
	if req.Website != nil && *req.Website != "" && !ValidURL(*req.Website) {
		return fmt.Errorf("Invalid website URL")
	}
	if req.Birthday != nil {
		if err := birthday(*req.Birthday); err != nil {
			return err
		}
	}
	if req.AvatarURL != nil && *req.AvatarURL != "" && !ValidURL(*req.AvatarURL) {
		return fmt.Errorf("Invalid avatar URL")
	}
	return nil
}

func birthday(d time.Time) error {
	now := time.Now()
	age := now.Year() - d.Year()
	if now.YearDay() < d.YearDay() {
		age--
	}
	if age < MinAgeYears || age > MaxAgeYears {
		return fmt.Errorf("You must be between %d and %d years old", MinAgeYears, MaxAgeYears)
	}
	return nil
}

func contains(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}
