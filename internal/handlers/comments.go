package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"pulse/internal/events"
	"pulse/internal/loaders"
	api "pulse/pkg/api/pulse"
	"pulse/pkg/models"
	"pulse/pkg/textscan"
	"pulse/pkg/validation"
)

// CreateComment adds a comment to a post
func CreateComment(c *gin.Context) {
	userID := currentUserID(c)
	if userID == "" {
		notAuthenticated(c)
		return
	}

	var req struct {
		PostID  string `json:"post_id" binding:"required"`
		Content string `json:"content"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "post_id is required.")
		return
	}

	content, err := validation.CommentContent(req.Content)
	if err != nil {
		badRequest(c, err.Error())
		return
	}

	ctx := c.Request.Context()
	var comment models.Comment
	err = db.QueryRowContext(ctx,
		`INSERT INTO comments (post_id, user_id, content)
		 VALUES ($1, $2, $3)
		 RETURNING id, post_id, user_id, content, created_at, updated_at`,
		req.PostID, userID, content).
		Scan(&comment.ID, &comment.PostID, &comment.UserID, &comment.Content, &comment.CreatedAt, &comment.UpdatedAt)
	recordMutation("create_comment", err)
	if err != nil {
		dbError(c, err)
		return
	}

	invalidate(ctx, events.ViewFeed, events.ViewProfile)
	publishChange(ctx, "comment", "comments", req.PostID, userID)
	notify(ctx, postOwner(ctx, req.PostID), userID, models.NotificationComment, &req.PostID, &comment.ID)
	notifyMentions(ctx, content, userID, &req.PostID, textscan.Mentions(content))

	c.JSON(http.StatusOK, api.CommentResponse{Success: true, Comment: comment})
}

// UpdateComment edits one of the caller's comments
func UpdateComment(c *gin.Context) {
	userID := currentUserID(c)
	if userID == "" {
		notAuthenticated(c)
		return
	}

	commentID := c.Param("id")

	var req struct {
		Content string `json:"content"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid input.")
		return
	}

	content, err := validation.CommentContent(req.Content)
	if err != nil {
		badRequest(c, err.Error())
		return
	}

	_, err = db.ExecContext(c.Request.Context(),
		`UPDATE comments SET content = $1, updated_at = now() WHERE id = $2 AND user_id = $3`,
		content, commentID, userID)
	recordMutation("update_comment", err)
	if err != nil {
		dbError(c, err)
		return
	}

	invalidate(c.Request.Context(), events.ViewFeed)

	c.JSON(http.StatusOK, api.DeleteResponse{Success: true})
}

// DeleteComment removes one of the caller's comments
func DeleteComment(c *gin.Context) {
	userID := currentUserID(c)
	if userID == "" {
		notAuthenticated(c)
		return
	}

	commentID := c.Param("id")

	_, err := db.ExecContext(c.Request.Context(),
		`DELETE FROM comments WHERE id = $1 AND user_id = $2`, commentID, userID)
	recordMutation("delete_comment", err)
	if err != nil {
		dbError(c, err)
		return
	}

	invalidate(c.Request.Context(), events.ViewFeed)

	c.JSON(http.StatusOK, api.DeleteResponse{Success: true})
}

// GetComments returns a post's comments oldest first with batch-joined
// authors and the total count.
func GetComments(c *gin.Context) {
	postID := c.Param("id")
	limit, offset := pageParams(c)

	rows, err := db.QueryContext(c.Request.Context(),
		`SELECT id, post_id, user_id, content, created_at, updated_at
		 FROM comments WHERE post_id = $1
		 ORDER BY created_at ASC
		 LIMIT $2 OFFSET $3`,
		postID, limit, offset)
	if err != nil {
		dbError(c, err)
		return
	}
	defer rows.Close()

	comments := []models.Comment{}
	authorSet := make(map[string]bool)
	var authorIDs []string
	for rows.Next() {
		var cm models.Comment
		if err := rows.Scan(&cm.ID, &cm.PostID, &cm.UserID, &cm.Content, &cm.CreatedAt, &cm.UpdatedAt); err != nil {
			dbError(c, err)
			return
		}
		if !authorSet[cm.UserID] {
			authorSet[cm.UserID] = true
			authorIDs = append(authorIDs, cm.UserID)
		}
		comments = append(comments, cm)
	}
	if err := rows.Err(); err != nil {
		dbError(c, err)
		return
	}

	authors, err := loaders.Profiles(c.Request.Context(), db, authorIDs)
	if err != nil {
		dbError(c, err)
		return
	}
	for i := range comments {
		if author, ok := authors[comments[i].UserID]; ok {
			a := author
			comments[i].Author = &a
		}
	}

	var total int
	if err := db.QueryRowContext(c.Request.Context(),
		`SELECT COUNT(*) FROM comments WHERE post_id = $1`, postID).Scan(&total); err != nil {
		dbError(c, err)
		return
	}

	c.JSON(http.StatusOK, api.CommentsResponse{Success: true, Comments: comments, Total: total})
}
