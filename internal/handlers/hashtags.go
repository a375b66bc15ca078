package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	api "pulse/pkg/api/pulse"
	"pulse/pkg/cache"
	"pulse/pkg/models"
)

const trendingTopicsLimit = 10

// Trending is recomputed on a timer, so a short in-process cache
// absorbs the read traffic between refreshes.
var trendingCache = cache.New(cache.Options{
	TTL:                  time.Minute,
	StaleWhileRevalidate: 5 * time.Minute,
	MaxEntries:           4,
})

func loadTrendingTopics(ctx context.Context, _ string) (interface{}, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT name, count, last_trending_at FROM trending_topics
		 ORDER BY count DESC, name ASC
		 LIMIT $1`, trendingTopicsLimit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	topics := []models.TrendingTopic{}
	for rows.Next() {
		var t models.TrendingTopic
		if err := rows.Scan(&t.Name, &t.Count, &t.LastTrendingAt); err != nil {
			return nil, err
		}
		topics = append(topics, t)
	}
	return topics, rows.Err()
}

// GetTrendingTopics returns the current trending hashtags
func GetTrendingTopics(c *gin.Context) {
	val, err := trendingCache.Get(c.Request.Context(), "trending", loadTrendingTopics)
	if err != nil {
		dbError(c, err)
		return
	}
	c.JSON(http.StatusOK, api.TrendingResponse{Success: true, Topics: val.([]models.TrendingTopic)})
}

// UpdateTrendingTopics recomputes the trending table from the last 24
// hours of hashtag usage and drops the read cache.
func UpdateTrendingTopics(ctx context.Context) error {
	if _, err := db.ExecContext(ctx, `SELECT update_trending_topics()`); err != nil {
		return err
	}
	trendingCache.Invalidate("trending")
	return nil
}

// RefreshTrendingTopics is the HTTP wrapper around the recompute
func RefreshTrendingTopics(c *gin.Context) {
	if currentUserID(c) == "" {
		notAuthenticated(c)
		return
	}
	if err := UpdateTrendingTopics(c.Request.Context()); err != nil {
		dbError(c, err)
		return
	}
	c.JSON(http.StatusOK, api.DeleteResponse{Success: true})
}
