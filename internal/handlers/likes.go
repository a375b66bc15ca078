package handlers

import (
	"context"
	"database/sql"
	"net/http"

	"github.com/gin-gonic/gin"

	"pulse/internal/events"
	api "pulse/pkg/api/pulse"
	"pulse/pkg/models"
)

type toggleRequest struct {
	PostID string `json:"post_id" binding:"required"`
}

// postOwner returns the author of postID, or "" when the post is gone
func postOwner(ctx context.Context, postID string) string {
	var owner string
	err := db.QueryRowContext(ctx, `SELECT user_id FROM posts WHERE id = $1`, postID).Scan(&owner)
	if err != nil {
		return ""
	}
	return owner
}

// ToggleLike flips the caller's like on a post. The presence check,
// the mutation and the recount share one transaction so the returned
// count always reflects the toggle.
func ToggleLike(c *gin.Context) {
	userID := currentUserID(c)
	if userID == "" {
		notAuthenticated(c)
		return
	}

	var req toggleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "post_id is required.")
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
		`SELECT id FROM likes WHERE post_id = $1 AND user_id = $2`,
		req.PostID, userID).Scan(&existingID)

	var liked bool
	switch {
	case err == sql.ErrNoRows:
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO likes (post_id, user_id) VALUES ($1, $2)`,
			req.PostID, userID); err != nil {
			recordMutation("toggle_like", err)
			dbError(c, err)
			return
		}
		liked = true
	case err != nil:
		dbError(c, err)
		return
	default:
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM likes WHERE post_id = $1 AND user_id = $2`,
			req.PostID, userID); err != nil {
			recordMutation("toggle_like", err)
			dbError(c, err)
			return
		}
	}

	var count int
	if err := tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM likes WHERE post_id = $1`, req.PostID).Scan(&count); err != nil {
		recordMutation("toggle_like", err)
		dbError(c, err)
		return
	}

	if err := tx.Commit(); err != nil {
		recordMutation("toggle_like", err)
		dbError(c, err)
		return
	}
	recordMutation("toggle_like", nil)

	invalidate(ctx, events.ViewFeed, events.ViewProfile)
	publishChange(ctx, "like", "likes", req.PostID, userID)
	if liked {
		notify(ctx, postOwner(ctx, req.PostID), userID, models.NotificationLike, &req.PostID, nil)
	}

	c.JSON(http.StatusOK, api.LikeResponse{Success: true, Liked: liked, Count: count})
}
