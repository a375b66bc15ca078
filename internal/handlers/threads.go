package handlers

import (
	"database/sql"
	"net/http"

	"github.com/gin-gonic/gin"

	api "pulse/pkg/api/pulse"
	"pulse/pkg/models"
)

// GetThread returns a post with its direct replies oldest first, both
// sides enriched with authors and engagement.
func GetThread(c *gin.Context) {
	userID := currentUserID(c)
	postID := c.Param("id")
	ctx := c.Request.Context()

	var root models.Post
	err := db.QueryRowContext(ctx,
		`SELECT `+postColumns+` FROM posts WHERE id = $1`, postID).
		Scan(&root.ID, &root.UserID, &root.Content, &root.ImageURL, &root.MediaType, &root.ParentPostID, &root.ReplyCount, &root.CreatedAt, &root.UpdatedAt)
	if err == sql.ErrNoRows {
		badRequest(c, "Post not found.")
		return
	}
	if err != nil {
		dbError(c, err)
		return
	}

	rows, err := db.QueryContext(ctx,
		`SELECT `+postColumns+` FROM posts
		 WHERE parent_post_id = $1
		 ORDER BY created_at ASC`, postID)
	if err != nil {
		dbError(c, err)
		return
	}
	replies, err := scanPosts(rows)
	if err != nil {
		dbError(c, err)
		return
	}

	// One enrichment pass covers the root and every reply
	enriched, err := enrichPosts(ctx, append([]models.Post{root}, replies...), userID)
	if err != nil {
		dbError(c, err)
		return
	}

	thread := models.Thread{Post: enriched[0], Replies: enriched[1:]}
	c.JSON(http.StatusOK, api.ThreadResponse{Success: true, Thread: thread})
}

// GetReplies returns a page of replies under a post with the total
func GetReplies(c *gin.Context) {
	userID := currentUserID(c)
	postID := c.Param("id")
	limit, offset := pageParams(c)
	ctx := c.Request.Context()

	rows, err := db.QueryContext(ctx,
		`SELECT `+postColumns+` FROM posts
		 WHERE parent_post_id = $1
		 ORDER BY created_at ASC
		 LIMIT $2 OFFSET $3`, postID, limit, offset)
	if err != nil {
		dbError(c, err)
		return
	}
	replies, err := scanPosts(rows)
	if err != nil {
		dbError(c, err)
		return
	}

	enriched, err := enrichPosts(ctx, replies, userID)
	if err != nil {
		dbError(c, err)
		return
	}

	var total int
	if err := db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM posts WHERE parent_post_id = $1`, postID).Scan(&total); err != nil {
		dbError(c, err)
		return
	}

	c.JSON(http.StatusOK, api.RepliesResponse{Success: true, Replies: enriched, Total: total})
}
