package handlers

import (
	"database/sql"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"pulse/internal/events"
	api "pulse/pkg/api/pulse"
	"pulse/pkg/models"
)

// CreateRepost reposts a post for the caller, optionally with quote
// content. Unlike the other toggles a duplicate is an error, not an
// off-switch.
func CreateRepost(c *gin.Context) {
	userID := currentUserID(c)
	if userID == "" {
		notAuthenticated(c)
		return
	}

	var req struct {
		PostID  string  `json:"post_id" binding:"required"`
		Content *string `json:"content"`
	}
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
		`SELECT id FROM reposts WHERE post_id = $1 AND user_id = $2`,
		req.PostID, userID).Scan(&existingID)
	if err == nil {
		badRequest(c, "Already reposted.")
		return
	}
	if err != sql.ErrNoRows {
		dbError(c, err)
		return
	}

	var targetID string
	err = tx.QueryRowContext(ctx,
		`SELECT id FROM posts WHERE id = $1`, req.PostID).Scan(&targetID)
	if err == sql.ErrNoRows {
		badRequest(c, "Post not found.")
		return
	}
	if err != nil {
		dbError(c, err)
		return
	}

	var content *string
	if req.Content != nil {
		if trimmed := strings.TrimSpace(*req.Content); trimmed != "" {
			content = &trimmed
		}
	}

	var repostID string
	if err := tx.QueryRowContext(ctx,
		`INSERT INTO reposts (post_id, user_id, content) VALUES ($1, $2, $3) RETURNING id`,
		req.PostID, userID, content).Scan(&repostID); err != nil {
		recordMutation("create_repost", err)
		dbError(c, err)
		return
	}

	var count int
	if err := tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM reposts WHERE post_id = $1`, req.PostID).Scan(&count); err != nil {
		recordMutation("create_repost", err)
		dbError(c, err)
		return
	}

	if err := tx.Commit(); err != nil {
		recordMutation("create_repost", err)
		dbError(c, err)
		return
	}
	recordMutation("create_repost", nil)

	invalidate(ctx, events.ViewFeed, events.ViewProfile)
	publishChange(ctx, "repost", "posts", req.PostID, userID)
	notify(ctx, postOwner(ctx, req.PostID), userID, models.NotificationRepost, &req.PostID, nil)

	c.JSON(http.StatusOK, api.RepostResponse{Success: true, RepostID: repostID, Count: count})
}

// DeleteRepost removes the caller's repost of a post
func DeleteRepost(c *gin.Context) {
	userID := currentUserID(c)
	if userID == "" {
		notAuthenticated(c)
		return
	}

	postID := c.Param("id")

	ctx := c.Request.Context()
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		dbError(c, err)
		return
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM reposts WHERE post_id = $1 AND user_id = $2`,
		postID, userID); err != nil {
		recordMutation("delete_repost", err)
		dbError(c, err)
		return
	}

	var count int
	if err := tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM reposts WHERE post_id = $1`, postID).Scan(&count); err != nil {
		recordMutation("delete_repost", err)
		dbError(c, err)
		return
	}

	if err := tx.Commit(); err != nil {
		recordMutation("delete_repost", err)
		dbError(c, err)
		return
	}
	recordMutation("delete_repost", nil)

	invalidate(ctx, events.ViewFeed, events.ViewProfile)

	c.JSON(http.StatusOK, api.RepostResponse{Success: true, Count: count})
}

// GetReposts lists the most recent reposts of a post with their authors
func GetReposts(c *gin.Context) {
	postID := c.Param("id")

	rows, err := db.QueryContext(c.Request.Context(),
		`SELECT id, post_id, user_id, content, created_at
		 FROM reposts WHERE post_id = $1
		 ORDER BY created_at DESC LIMIT 10`, postID)
	if err != nil {
		dbError(c, err)
		return
	}
	defer rows.Close()

	reposts := []models.Repost{}
	for rows.Next() {
		var r models.Repost
		if err := rows.Scan(&r.ID, &r.PostID, &r.UserID, &r.Content, &r.CreatedAt); err != nil {
			dbError(c, err)
			return
		}
		reposts = append(reposts, r)
	}
	if err := rows.Err(); err != nil {
		dbError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "reposts": reposts})
}
