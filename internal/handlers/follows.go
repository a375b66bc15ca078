package handlers

import (
	"database/sql"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"pulse/internal/events"
	"pulse/internal/loaders"
	api "pulse/pkg/api/pulse"
	"pulse/pkg/models"
)

// ToggleFollow flips the caller's follow edge to another user
func ToggleFollow(c *gin.Context) {
	userID := currentUserID(c)
	if userID == "" {
		notAuthenticated(c)
		return
	}

	var req struct {
		UserID string `json:"user_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "user_id is required.")
		return
	}
	if req.UserID == userID {
		badRequest(c, "Cannot follow yourself.")
		return
	}

	ctx := c.Request.Context()
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		dbError(c, err)
		return
	}
	defer tx.Rollback()

	var existingID string
	err = tx.QueryRowContext(ctx,
		`SELECT id FROM follows WHERE follower_id = $1 AND following_id = $2`,
		userID, req.UserID).Scan(&existingID)

	var following bool
	switch {
	case err == sql.ErrNoRows:
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO follows (follower_id, following_id) VALUES ($1, $2)`,
			userID, req.UserID); err != nil {
			recordMutation("toggle_follow", err)
			dbError(c, err)
			return
		}
		following = true
	case err != nil:
		dbError(c, err)
		return
	default:
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM follows WHERE follower_id = $1 AND following_id = $2`,
			userID, req.UserID); err != nil {
			recordMutation("toggle_follow", err)
			dbError(c, err)
			return
		}
	}

	if err := tx.Commit(); err != nil {
		recordMutation("toggle_follow", err)
		dbError(c, err)
		return
	}
	recordMutation("toggle_follow", nil)

	invalidate(ctx, events.ViewFeed, events.ViewProfile)
	if following {
		notify(ctx, req.UserID, userID, models.NotificationFollow, nil, nil)
	}

	c.JSON(http.StatusOK, api.FollowResponse{Success: true, Following: following})
}

// followRelations returns the profiles on one side of the follows
// table for a user, newest edge first.
func followRelations(c *gin.Context, selectCol, whereCol string) {
	targetID := c.Param("id")

	rows, err := db.QueryContext(c.Request.Context(),
		`SELECT `+selectCol+` FROM follows WHERE `+whereCol+` = $1 ORDER BY created_at DESC`,
		targetID)
	if err != nil {
		dbError(c, err)
		return
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			dbError(c, err)
			return
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		dbError(c, err)
		return
	}

	profiles, err := loaders.Profiles(c.Request.Context(), db, ids)
	if err != nil {
		dbError(c, err)
		return
	}

	// Keep the follow ordering; users without a profile row still appear
	ordered := make([]models.ProfileSummary, 0, len(ids))
	for _, id := range ids {
		if p, ok := profiles[id]; ok {
			ordered = append(ordered, p)
		} else {
			ordered = append(ordered, models.ProfileSummary{ID: id})
		}
	}

	c.JSON(http.StatusOK, api.ProfilesResponse{Success: true, Profiles: ordered})
}

// GetFollowers lists the users following :id
func GetFollowers(c *gin.Context) {
	followRelations(c, "follower_id", "following_id")
}

// GetFollowing lists the users :id follows
func GetFollowing(c *gin.Context) {
	followRelations(c, "following_id", "follower_id")
}

// GetWhoToFollow suggests accounts the caller does not follow yet,
// ranked by how many of the caller's follows also follow them.
func GetWhoToFollow(c *gin.Context) {
	userID := currentUserID(c)
	if userID == "" {
		notAuthenticated(c)
		return
	}

	limit := 5
	if raw := c.Query("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= 50 {
			limit = n
		}
	}

	rows, err := db.QueryContext(c.Request.Context(),
		`SELECT p.id, p.name, p.avatar_url,
		        (SELECT COUNT(*) FROM follows f
		         WHERE f.following_id = p.id
		           AND f.follower_id IN (SELECT following_id FROM follows WHERE follower_id = $1)) AS mutual
		 FROM profiles p
		 WHERE p.id <> $1
		   AND p.id NOT IN (SELECT following_id FROM follows WHERE follower_id = $1)
		 ORDER BY mutual DESC, p.created_at DESC
		 LIMIT $2`,
		userID, limit)
	if err != nil {
		dbError(c, err)
		return
	}
	defer rows.Close()

	suggestions := []models.SuggestedUser{}
	for rows.Next() {
		var s models.SuggestedUser
		if err := rows.Scan(&s.Profile.ID, &s.Profile.Name, &s.Profile.AvatarURL, &s.MutualFollowers); err != nil {
			dbError(c, err)
			return
		}
		suggestions = append(suggestions, s)
	}
	if err := rows.Err(); err != nil {
		dbError(c, err)
		return
	}

	c.JSON(http.StatusOK, api.SuggestionsResponse{Success: true, Suggestions: suggestions})
}
