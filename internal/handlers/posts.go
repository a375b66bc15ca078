package handlers

import (
	"context"
	"database/sql"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"pulse/internal/events"
	"pulse/internal/loaders"
	api "pulse/pkg/api/pulse"
	"pulse/pkg/models"
	"pulse/pkg/textscan"
	"pulse/pkg/validation"
)

const postsPerHourLimit = 10

const postColumns = `id, user_id, content, image_url, media_type, parent_post_id, reply_count, created_at, updated_at`

// pageParams reads limit/offset query parameters with feed defaults
func pageParams(c *gin.Context) (limit, offset int) {
	limit = 20
	if raw := c.Query("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= 100 {
			limit = n
		}
	}
	if raw := c.Query("offset"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n >= 0 {
			offset = n
		}
	}
	return limit, offset
}

// scanPosts drains a query over postColumns
func scanPosts(rows *sql.Rows) ([]models.Post, error) {
	defer rows.Close()
	posts := []models.Post{}
	for rows.Next() {
		var p models.Post
		if err := rows.Scan(&p.ID, &p.UserID, &p.Content, &p.ImageURL, &p.MediaType, &p.ParentPostID, &p.ReplyCount, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

func enrichPosts(ctx context.Context, posts []models.Post, viewerID string) ([]models.FeedPost, error) {
	return loaders.FeedPosts(ctx, db, posts, viewerID)
}

// prefetchPreviews warms the link-preview cache for URLs in a new
// post so the first reader doesn't pay the scrape latency.
func prefetchPreviews(content string) {
	if previews == nil {
		return
	}
	for _, link := range textscan.Links(content) {
		go func(url string) {
			ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			defer cancel()
			if _, err := previews.Fetch(ctx, url); err != nil {
				logger.WithError(err).WithField("url", url).Debug("Preview prefetch failed")
			}
		}(link)
	}
}

type createPostRequest struct {
	Content   string  `json:"content"`
	ImageURL  *string `json:"image_url"`
	MediaType *string `json:"media_type"`
}

// CreatePost creates a top-level post. Authors are limited to ten
// posts per rolling hour.
func CreatePost(c *gin.Context) {
	userID := currentUserID(c)
	if userID == "" {
		notAuthenticated(c)
		return
	}

	var req createPostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid input.")
		return
	}

	content, err := validation.PostContent(req.Content, req.ImageURL, req.MediaType)
	if err != nil {
		badRequest(c, err.Error())
		return
	}

	ctx := c.Request.Context()

	var recent int
	if err := db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM posts WHERE user_id = $1 AND created_at > now() - interval '1 hour'`,
		userID).Scan(&recent); err != nil {
		dbError(c, err)
		return
	}
	if recent >= postsPerHourLimit {
		badRequest(c, "Rate limit: try again later.")
		return
	}

	mediaType := models.MediaTypeText
	if req.MediaType != nil && *req.MediaType != "" {
		mediaType = *req.MediaType
	} else if req.ImageURL != nil && *req.ImageURL != "" {
		mediaType = models.MediaTypeImage
	}

	var post models.Post
	err = db.QueryRowContext(ctx,
		`INSERT INTO posts (user_id, content, image_url, media_type)
		 VALUES ($1, $2, $3, $4)
		 RETURNING `+postColumns,
		userID, content, req.ImageURL, mediaType).
		Scan(&post.ID, &post.UserID, &post.Content, &post.ImageURL, &post.MediaType, &post.ParentPostID, &post.ReplyCount, &post.CreatedAt, &post.UpdatedAt)
	recordMutation("create_post", err)
	if err != nil {
		dbError(c, err)
		return
	}

	if len(textscan.Hashtags(content)) > 0 {
		invalidate(ctx, events.ViewFeed, events.ViewProfile, events.ViewTrending)
	} else {
		invalidate(ctx, events.ViewFeed, events.ViewProfile)
	}
	publishChange(ctx, "post", "posts", post.ID, userID)
	notifyMentions(ctx, content, userID, &post.ID, textscan.Mentions(content))
	prefetchPreviews(content)

	c.JSON(http.StatusOK, api.PostResponse{Success: true, Post: post})
}

// UpdatePost edits one of the caller's posts. Ownership is enforced by
// the id+user_id filter rather than a separate lookup.
func UpdatePost(c *gin.Context) {
	userID := currentUserID(c)
	if userID == "" {
		notAuthenticated(c)
		return
	}

	postID := c.Param("id")

	var req createPostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid input.")
		return
	}

	content, err := validation.PostContent(req.Content, req.ImageURL, req.MediaType)
	if err != nil {
		badRequest(c, err.Error())
		return
	}

	ctx := c.Request.Context()
	var post models.Post
	err = db.QueryRowContext(ctx,
		`UPDATE posts SET content = $1, image_url = $2, updated_at = now()
		 WHERE id = $3 AND user_id = $4
		 RETURNING `+postColumns,
		content, req.ImageURL, postID, userID).
		Scan(&post.ID, &post.UserID, &post.Content, &post.ImageURL, &post.MediaType, &post.ParentPostID, &post.ReplyCount, &post.CreatedAt, &post.UpdatedAt)
	if err == sql.ErrNoRows {
		badRequest(c, "Post not found.")
		return
	}
	recordMutation("update_post", err)
	if err != nil {
		dbError(c, err)
		return
	}

	invalidate(ctx, events.ViewFeed, events.ViewProfile)
	publishChange(ctx, "post_updated", "posts", post.ID, userID)

	c.JSON(http.StatusOK, api.PostResponse{Success: true, Post: post})
}

// DeletePost removes one of the caller's posts
func DeletePost(c *gin.Context) {
	userID := currentUserID(c)
	if userID == "" {
		notAuthenticated(c)
		return
	}

	postID := c.Param("id")

	_, err := db.ExecContext(c.Request.Context(),
		`DELETE FROM posts WHERE id = $1 AND user_id = $2`, postID, userID)
	recordMutation("delete_post", err)
	if err != nil {
		dbError(c, err)
		return
	}

	invalidate(c.Request.Context(), events.ViewFeed, events.ViewProfile)
	publishChange(c.Request.Context(), "post_deleted", "posts", postID, userID)

	c.JSON(http.StatusOK, api.DeleteResponse{Success: true})
}

// CreateReply creates a post under a parent post and bumps the
// parent's reply counter in the same transaction.
func CreateReply(c *gin.Context) {
	userID := currentUserID(c)
	if userID == "" {
		notAuthenticated(c)
		return
	}

	var req struct {
		ParentPostID string  `json:"parent_post_id" binding:"required"`
		Content      string  `json:"content"`
		ImageURL     *string `json:"image_url"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "parent_post_id is required.")
		return
	}

	content, err := validation.PostContent(req.Content, req.ImageURL, nil)
	if err != nil {
		badRequest(c, err.Error())
		return
	}

	ctx := c.Request.Context()
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		dbError(c, err)
		return
	}
	defer tx.Rollback()

	var parentID string
	err = tx.QueryRowContext(ctx,
		`SELECT id FROM posts WHERE id = $1`, req.ParentPostID).Scan(&parentID)
	if err == sql.ErrNoRows {
		badRequest(c, "Parent post not found.")
		return
	}
	if err != nil {
		dbError(c, err)
		return
	}

	var post models.Post
	err = tx.QueryRowContext(ctx,
		`INSERT INTO posts (user_id, content, image_url, parent_post_id)
		 VALUES ($1, $2, $3, $4)
		 RETURNING `+postColumns,
		userID, content, req.ImageURL, req.ParentPostID).
		Scan(&post.ID, &post.UserID, &post.Content, &post.ImageURL, &post.MediaType, &post.ParentPostID, &post.ReplyCount, &post.CreatedAt, &post.UpdatedAt)
	if err != nil {
		recordMutation("create_reply", err)
		dbError(c, err)
		return
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE posts SET reply_count = reply_count + 1 WHERE id = $1`,
		req.ParentPostID); err != nil {
		recordMutation("create_reply", err)
		dbError(c, err)
		return
	}

	if err := tx.Commit(); err != nil {
		recordMutation("create_reply", err)
		dbError(c, err)
		return
	}
	recordMutation("create_reply", nil)

	invalidate(ctx, events.ViewFeed, events.ViewProfile)
	publishChange(ctx, "reply", "comments", req.ParentPostID, userID)
	notify(ctx, postOwner(ctx, req.ParentPostID), userID, models.NotificationComment, &req.ParentPostID, nil)
	notifyMentions(ctx, content, userID, &post.ID, textscan.Mentions(content))

	c.JSON(http.StatusOK, api.PostResponse{Success: true, Post: post})
}
