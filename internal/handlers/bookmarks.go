package handlers

import (
	"database/sql"
	"net/http"

	"github.com/gin-gonic/gin"

	"pulse/internal/events"
	api "pulse/pkg/api/pulse"
)

// ToggleBookmark flips the caller's bookmark on a post inside one
// transaction. Bookmarks are private, so no notification is produced.
func ToggleBookmark(c *gin.Context) {
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
		`SELECT id FROM bookmarks WHERE post_id = $1 AND user_id = $2`,
		req.PostID, userID).Scan(&existingID)

	var bookmarked bool
	switch {
	case err == sql.ErrNoRows:
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO bookmarks (post_id, user_id) VALUES ($1, $2)`,
			req.PostID, userID); err != nil {
			recordMutation("toggle_bookmark", err)
			dbError(c, err)
			return
		}
		bookmarked = true
	case err != nil:
		dbError(c, err)
		return
	default:
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM bookmarks WHERE post_id = $1 AND user_id = $2`,
			req.PostID, userID); err != nil {
			recordMutation("toggle_bookmark", err)
			dbError(c, err)
			return
		}
	}

	var count int
	if err := tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM bookmarks WHERE post_id = $1`, req.PostID).Scan(&count); err != nil {
		recordMutation("toggle_bookmark", err)
		dbError(c, err)
		return
	}

	if err := tx.Commit(); err != nil {
		recordMutation("toggle_bookmark", err)
		dbError(c, err)
		return
	}
	recordMutation("toggle_bookmark", nil)

	invalidate(ctx, events.ViewFeed, events.ViewProfile)

	c.JSON(http.StatusOK, api.BookmarkResponse{Success: true, Bookmarked: bookmarked, Count: count})
}

// GetBookmarkedPosts returns the caller's bookmarked posts, newest
// bookmark first, enriched like any feed page.
func GetBookmarkedPosts(c *gin.Context) {
	userID := currentUserID(c)
	if userID == "" {
		notAuthenticated(c)
		return
	}

	limit, offset := pageParams(c)

	rows, err := db.QueryContext(c.Request.Context(),
		`SELECT p.id, p.user_id, p.content, p.image_url, p.media_type, p.parent_post_id, p.reply_count, p.created_at, p.updated_at
		 FROM bookmarks b JOIN posts p ON p.id = b.post_id
		 WHERE b.user_id = $1
		 ORDER BY b.created_at DESC
		 LIMIT $2 OFFSET $3`,
		userID, limit, offset)
	if err != nil {
		dbError(c, err)
		return
	}

	posts, err := scanPosts(rows)
	if err != nil {
		dbError(c, err)
		return
	}

	enriched, err := enrichPosts(c.Request.Context(), posts, userID)
	if err != nil {
		dbError(c, err)
		return
	}

	c.JSON(http.StatusOK, api.FeedResponse{Success: true, Posts: enriched, Limit: limit, Offset: offset})
}
