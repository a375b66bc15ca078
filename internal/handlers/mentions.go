package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	api "pulse/pkg/api/pulse"
	"pulse/pkg/models"
)

const searchUsersLimit = 10

// SearchUsers finds profiles whose name contains the query,
// case-insensitive. Used by the mention autocomplete.
func SearchUsers(c *gin.Context) {
	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		c.JSON(http.StatusOK, api.SearchUsersResponse{Success: true, Users: []models.ProfileSummary{}})
		return
	}

	rows, err := db.QueryContext(c.Request.Context(),
		`SELECT id, name, avatar_url FROM profiles
		 WHERE name ILIKE $1
		 ORDER BY name ASC
		 LIMIT $2`, "%"+query+"%", searchUsersLimit)
	if err != nil {
		dbError(c, err)
		return
	}
	defer rows.Close()

	users := []models.ProfileSummary{}
	for rows.Next() {
		var p models.ProfileSummary
		if err := rows.Scan(&p.ID, &p.Name, &p.AvatarURL); err != nil {
			dbError(c, err)
			return
		}
		users = append(users, p)
	}
	if err := rows.Err(); err != nil {
		dbError(c, err)
		return
	}

	c.JSON(http.StatusOK, api.SearchUsersResponse{Success: true, Users: users})
}

// GetUserMentions returns posts whose body mentions the given user,
// newest first with the total count.
func GetUserMentions(c *gin.Context) {
	viewerID := currentUserID(c)
	targetID := c.Param("id")
	limit, offset := pageParams(c)
	ctx := c.Request.Context()

	pattern := "%@" + targetID + "%"

	rows, err := db.QueryContext(ctx,
		`SELECT `+postColumns+` FROM posts
		 WHERE content ILIKE $1
		 ORDER BY created_at DESC
		 LIMIT $2 OFFSET $3`, pattern, limit, offset)
	if err != nil {
		dbError(c, err)
		return
	}
	posts, err := scanPosts(rows)
	if err != nil {
		dbError(c, err)
		return
	}

	enriched, err := enrichPosts(ctx, posts, viewerID)
	if err != nil {
		dbError(c, err)
		return
	}

	var total int
	if err := db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM posts WHERE content ILIKE $1`, pattern).Scan(&total); err != nil {
		dbError(c, err)
		return
	}

	c.JSON(http.StatusOK, api.MentionsResponse{Success: true, Posts: enriched, Total: total})
}
