package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/lib/pq"

	api "pulse/pkg/api/pulse"
	"pulse/pkg/models"
)

func recordFeedPage(feed string) {
	if serviceMetrics == nil || serviceMetrics.FeedPagesServed == nil {
		return
	}
	serviceMetrics.FeedPagesServed.WithLabelValues(feed).Inc()
}

// GetForYouFeed returns the global reverse-chronological feed of
// top-level posts.
func GetForYouFeed(c *gin.Context) {
	userID := currentUserID(c)
	limit, offset := pageParams(c)

	rows, err := db.QueryContext(c.Request.Context(),
		`SELECT `+postColumns+` FROM posts
		 WHERE parent_post_id IS NULL
		 ORDER BY created_at DESC
		 LIMIT $1 OFFSET $2`, limit, offset)
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
	recordFeedPage("for_you")

	c.JSON(http.StatusOK, api.FeedResponse{Success: true, Posts: enriched, Limit: limit, Offset: offset})
}

// GetFollowingFeed returns top-level posts from accounts the caller
// follows. A caller following nobody gets an empty page without
// touching the posts table.
func GetFollowingFeed(c *gin.Context) {
	userID := currentUserID(c)
	if userID == "" {
		notAuthenticated(c)
		return
	}
	limit, offset := pageParams(c)
	ctx := c.Request.Context()

	rows, err := db.QueryContext(ctx,
		`SELECT following_id FROM follows WHERE follower_id = $1`, userID)
	if err != nil {
		dbError(c, err)
		return
	}
	var followingIDs []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			dbError(c, err)
			return
		}
		followingIDs = append(followingIDs, id)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		dbError(c, err)
		return
	}
	rows.Close()

	if len(followingIDs) == 0 {
		recordFeedPage("following")
		c.JSON(http.StatusOK, api.FeedResponse{Success: true, Posts: []models.FeedPost{}, Limit: limit, Offset: offset})
		return
	}

	rows, err = db.QueryContext(ctx,
		`SELECT `+postColumns+` FROM posts
		 WHERE parent_post_id IS NULL AND user_id = ANY($1)
		 ORDER BY created_at DESC
		 LIMIT $2 OFFSET $3`,
		pq.Array(followingIDs), limit, offset)
	if err != nil {
		dbError(c, err)
		return
	}
	posts, err := scanPosts(rows)
	if err != nil {
		dbError(c, err)
		return
	}

	enriched, err := enrichPosts(ctx, posts, userID)
	if err != nil {
		dbError(c, err)
		return
	}
	recordFeedPage("following")

	c.JSON(http.StatusOK, api.FeedResponse{Success: true, Posts: enriched, Limit: limit, Offset: offset})
}

// GetFilteredFeed returns top-level posts narrowed by hashtag and/or
// author. Hashtag matching is case-insensitive on the post body.
func GetFilteredFeed(c *gin.Context) {
	userID := currentUserID(c)
	limit, offset := pageParams(c)
	ctx := c.Request.Context()

	query := `SELECT ` + postColumns + ` FROM posts WHERE parent_post_id IS NULL`
	args := []interface{}{}

	if hashtag := strings.TrimSpace(c.Query("hashtag")); hashtag != "" {
		hashtag = strings.TrimPrefix(hashtag, "#")
		args = append(args, "%#"+hashtag+"%")
		query += ` AND content ILIKE $` + strconv.Itoa(len(args))
	}
	if author := strings.TrimSpace(c.Query("author")); author != "" {
		args = append(args, author)
		query += ` AND user_id = $` + strconv.Itoa(len(args))
	}

	args = append(args, limit)
	query += ` ORDER BY created_at DESC LIMIT $` + strconv.Itoa(len(args))
	args = append(args, offset)
	query += ` OFFSET $` + strconv.Itoa(len(args))

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		dbError(c, err)
		return
	}
	posts, err := scanPosts(rows)
	if err != nil {
		dbError(c, err)
		return
	}

	enriched, err := enrichPosts(ctx, posts, userID)
	if err != nil {
		dbError(c, err)
		return
	}
	recordFeedPage("filtered")

	c.JSON(http.StatusOK, api.FeedResponse{Success: true, Posts: enriched, Limit: limit, Offset: offset})
}

// GetUserPosts returns a user's own top-level posts, newest first
func GetUserPosts(c *gin.Context) {
	viewerID := currentUserID(c)
	targetID := c.Param("id")
	limit, offset := pageParams(c)

	rows, err := db.QueryContext(c.Request.Context(),
		`SELECT `+postColumns+` FROM posts
		 WHERE user_id = $1 AND parent_post_id IS NULL
		 ORDER BY created_at DESC
		 LIMIT $2 OFFSET $3`, targetID, limit, offset)
	if err != nil {
		dbError(c, err)
		return
	}
	posts, err := scanPosts(rows)
	if err != nil {
		dbError(c, err)
		return
	}

	enriched, err := enrichPosts(c.Request.Context(), posts, viewerID)
	if err != nil {
		dbError(c, err)
		return
	}
	recordFeedPage("profile")

	c.JSON(http.StatusOK, api.FeedResponse{Success: true, Posts: enriched, Limit: limit, Offset: offset})
}
