package handlers

import (
	"database/sql"
	"net/http"

	"github.com/gin-gonic/gin"

	"pulse/internal/events"
	api "pulse/pkg/api/pulse"
	"pulse/pkg/models"
)

// SetReaction sets the caller's single reaction on a post. The same
// emoji toggles the reaction off; a different emoji replaces it. The
// check, mutation and recount run in one transaction.
func SetReaction(c *gin.Context) {
	userID := currentUserID(c)
	if userID == "" {
		notAuthenticated(c)
		return
	}

	var req struct {
		PostID string `json:"post_id" binding:"required"`
		Emoji  string `json:"emoji" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "post_id and emoji are required.")
		return
	}

	ctx := c.Request.Context()
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		dbError(c, err)
		return
	}
	defer tx.Rollback()

	var existingID, existingEmoji string
	err = tx.QueryRowContext(ctx,
		`SELECT id, emoji FROM reactions WHERE post_id = $1 AND user_id = $2`,
		req.PostID, userID).Scan(&existingID, &existingEmoji)
	if err != nil && err != sql.ErrNoRows {
		dbError(c, err)
		return
	}
	hadReaction := err == nil

	if hadReaction {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM reactions WHERE id = $1`, existingID); err != nil {
			recordMutation("set_reaction", err)
			dbError(c, err)
			return
		}
	}

	// Same emoji twice means remove, not re-add
	if hadReaction && existingEmoji == req.Emoji {
		if err := tx.Commit(); err != nil {
			recordMutation("set_reaction", err)
			dbError(c, err)
			return
		}
		recordMutation("set_reaction", nil)
		invalidate(ctx, events.ViewFeed, events.ViewProfile)
		publishChange(ctx, "reaction", "reactions", req.PostID, userID)
		c.JSON(http.StatusOK, api.ReactionResponse{Success: true, Emoji: nil, Count: 0})
		return
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO reactions (post_id, user_id, emoji) VALUES ($1, $2, $3)`,
		req.PostID, userID, req.Emoji); err != nil {
		recordMutation("set_reaction", err)
		dbError(c, err)
		return
	}

	var count int
	if err := tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM reactions WHERE post_id = $1 AND emoji = $2`,
		req.PostID, req.Emoji).Scan(&count); err != nil {
		dbError(c, err)
		return
	}

	if err := tx.Commit(); err != nil {
		recordMutation("set_reaction", err)
		dbError(c, err)
		return
	}
	recordMutation("set_reaction", nil)

	invalidate(ctx, events.ViewFeed, events.ViewProfile)
	publishChange(ctx, "reaction", "reactions", req.PostID, userID)

	emoji := req.Emoji
	c.JSON(http.StatusOK, api.ReactionResponse{Success: true, Emoji: &emoji, Count: count})
}

// RemoveReaction deletes the caller's reaction with a specific emoji
func RemoveReaction(c *gin.Context) {
	userID := currentUserID(c)
	if userID == "" {
		notAuthenticated(c)
		return
	}

	var req struct {
		PostID string `json:"post_id" binding:"required"`
		Emoji  string `json:"emoji" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "post_id and emoji are required.")
		return
	}

	_, err := db.ExecContext(c.Request.Context(),
		`DELETE FROM reactions WHERE post_id = $1 AND user_id = $2 AND emoji = $3`,
		req.PostID, userID, req.Emoji)
	recordMutation("remove_reaction", err)
	if err != nil {
		dbError(c, err)
		return
	}

	invalidate(c.Request.Context(), events.ViewFeed, events.ViewProfile)
	publishChange(c.Request.Context(), "reaction", "reactions", req.PostID, userID)

	c.JSON(http.StatusOK, api.ReactionResponse{Success: true, Emoji: nil, Count: 0})
}

// GetPostReactions aggregates a post's reactions by emoji, largest
// group first, flagging the caller's own reaction.
func GetPostReactions(c *gin.Context) {
	userID := currentUserID(c)
	postID := c.Param("id")

	rows, err := db.QueryContext(c.Request.Context(),
		`SELECT emoji, COUNT(*), BOOL_OR(user_id::text = $2)
		 FROM reactions WHERE post_id = $1
		 GROUP BY emoji
		 ORDER BY COUNT(*) DESC, emoji ASC`,
		postID, userID)
	if err != nil {
		dbError(c, err)
		return
	}
	defer rows.Close()

	reactions := []models.ReactionCount{}
	for rows.Next() {
		var r models.ReactionCount
		if err := rows.Scan(&r.Emoji, &r.Count, &r.UserReacted); err != nil {
			dbError(c, err)
			return
		}
		reactions = append(reactions, r)
	}
	if err := rows.Err(); err != nil {
		dbError(c, err)
		return
	}

	c.JSON(http.StatusOK, api.ReactionsListResponse{Success: true, Reactions: reactions})
}
