package handlers

import (
	"database/sql"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/lib/pq"

	"pulse/internal/events"
	api "pulse/pkg/api/pulse"
	"pulse/pkg/models"
	"pulse/pkg/validation"
)

const maxUploadBytes = 5 << 20

const profileColumns = `id, name, bio, avatar_url, location, pronouns, interests, website,
	birthday, relationship_status, show_birthday, show_age, show_location, created_at, updated_at`

func scanProfile(row *sql.Row) (models.Profile, error) {
	var p models.Profile
	err := row.Scan(&p.ID, &p.Name, &p.Bio, &p.AvatarURL, &p.Location, &p.Pronouns,
		pq.Array(&p.Interests), &p.Website, &p.Birthday, &p.RelationshipStatus,
		&p.ShowBirthday, &p.ShowAge, &p.ShowLocation, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

// GetProfile returns a single profile by id. Birthday is withheld
// unless the owner opted in or is viewing their own profile.
func GetProfile(c *gin.Context) {
	viewerID := currentUserID(c)
	targetID := c.Param("id")

	profile, err := scanProfile(db.QueryRowContext(c.Request.Context(),
		`SELECT `+profileColumns+` FROM profiles WHERE id = $1`, targetID))
	if err == sql.ErrNoRows {
		badRequest(c, "Profile not found.")
		return
	}
	if err != nil {
		dbError(c, err)
		return
	}

	if viewerID != profile.ID && !profile.ShowBirthday {
		profile.Birthday = nil
	}
	if viewerID != profile.ID && !profile.ShowLocation {
		profile.Location = nil
	}

	c.JSON(http.StatusOK, api.ProfileResponse{Success: true, Profile: profile})
}

// GetOwnProfile returns the caller's profile
func GetOwnProfile(c *gin.Context) {
	userID := currentUserID(c)
	if userID == "" {
		notAuthenticated(c)
		return
	}

	profile, err := scanProfile(db.QueryRowContext(c.Request.Context(),
		`SELECT `+profileColumns+` FROM profiles WHERE id = $1`, userID))
	if err == sql.ErrNoRows {
		badRequest(c, "Profile not found.")
		return
	}
	if err != nil {
		dbError(c, err)
		return
	}

	c.JSON(http.StatusOK, api.ProfileResponse{Success: true, Profile: profile})
}

// UpdateProfile applies a partial update to the caller's profile. Nil
// fields in the request are left untouched.
func UpdateProfile(c *gin.Context) {
	userID := currentUserID(c)
	if userID == "" {
		notAuthenticated(c)
		return
	}

	var req models.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid input.")
		return
	}
	if err := validation.Profile(req); err != nil {
		badRequest(c, err.Error())
		return
	}

	var sets []string
	var args []interface{}
	add := func(column string, value interface{}) {
		args = append(args, value)
		sets = append(sets, column+" = $"+strconv.Itoa(len(args)))
	}

	if req.Name != nil {
		add("name", strings.TrimSpace(*req.Name))
	}
	if req.Bio != nil {
		add("bio", *req.Bio)
	}
	if req.AvatarURL != nil {
		add("avatar_url", *req.AvatarURL)
	}
	if req.Location != nil {
		add("location", *req.Location)
	}
	if req.Pronouns != nil {
		add("pronouns", *req.Pronouns)
	}
	if req.Interests != nil {
		add("interests", pq.Array(req.Interests))
	}
	if req.Website != nil {
		add("website", *req.Website)
	}
	if req.Birthday != nil {
		add("birthday", *req.Birthday)
	}
	if req.RelationshipStatus != nil {
		add("relationship_status", *req.RelationshipStatus)
	}
	if req.ShowBirthday != nil {
		add("show_birthday", *req.ShowBirthday)
	}
	if req.ShowAge != nil {
		add("show_age", *req.ShowAge)
	}
	if req.ShowLocation != nil {
		add("show_location", *req.ShowLocation)
	}

	if len(sets) == 0 {
		badRequest(c, "Nothing to update.")
		return
	}

	args = append(args, userID)
	query := `UPDATE profiles SET ` + strings.Join(sets, ", ") +
		`, updated_at = now() WHERE id = $` + strconv.Itoa(len(args)) +
		` RETURNING ` + profileColumns

	profile, err := scanProfile(db.QueryRowContext(c.Request.Context(), query, args...))
	if err == sql.ErrNoRows {
		badRequest(c, "Profile not found.")
		return
	}
	recordMutation("update_profile", err)
	if err != nil {
		dbError(c, err)
		return
	}

	invalidate(c.Request.Context(), events.ViewProfile)

	c.JSON(http.StatusOK, api.ProfileResponse{Success: true, Profile: profile})
}

// UploadAvatar stores the uploaded image and points the caller's
// profile at the new URL.
func UploadAvatar(c *gin.Context) {
	userID := currentUserID(c)
	if userID == "" {
		notAuthenticated(c)
		return
	}
	if objectStore == nil {
		badRequest(c, "Uploads are not configured.")
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		badRequest(c, "A file is required.")
		return
	}
	if fileHeader.Size > maxUploadBytes {
		badRequest(c, "File must be 5MB or less.")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		badRequest(c, "A file is required.")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxUploadBytes+1))
	if err != nil {
		dbError(c, err)
		return
	}
	if len(data) > maxUploadBytes {
		badRequest(c, "File must be 5MB or less.")
		return
	}

	contentType := fileHeader.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		badRequest(c, "Only image uploads are allowed.")
		return
	}

	ctx := c.Request.Context()
	url, err := objectStore.UploadAvatar(ctx, userID, data, contentType)
	if err != nil {
		recordMutation("upload_avatar", err)
		dbError(c, err)
		return
	}

	_, err = db.ExecContext(ctx,
		`UPDATE profiles SET avatar_url = $1, updated_at = now() WHERE id = $2`,
		url, userID)
	recordMutation("upload_avatar", err)
	if err != nil {
		dbError(c, err)
		return
	}

	invalidate(ctx, events.ViewProfile)

	c.JSON(http.StatusOK, api.UploadResponse{Success: true, URL: url})
}

// UploadPostImage stores an image for later attachment to a post
func UploadPostImage(c *gin.Context) {
	userID := currentUserID(c)
	if userID == "" {
		notAuthenticated(c)
		return
	}
	if objectStore == nil {
		badRequest(c, "Uploads are not configured.")
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		badRequest(c, "A file is required.")
		return
	}
	if fileHeader.Size > maxUploadBytes {
		badRequest(c, "File must be 5MB or less.")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		badRequest(c, "A file is required.")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxUploadBytes+1))
	if err != nil {
		dbError(c, err)
		return
	}
	if len(data) > maxUploadBytes {
		badRequest(c, "File must be 5MB or less.")
		return
	}

	contentType := fileHeader.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		badRequest(c, "Only image uploads are allowed.")
		return
	}

	url, err := objectStore.UploadPostImage(c.Request.Context(), userID, data, contentType)
	recordMutation("upload_post_image", err)
	if err != nil {
		dbError(c, err)
		return
	}

	c.JSON(http.StatusOK, api.UploadResponse{Success: true, URL: url})
}
