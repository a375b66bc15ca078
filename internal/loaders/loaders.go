// Package loaders batch-fetches the rows that get joined onto pages
// of posts: author profiles and per-post engagement. Every read path
// that returns posts goes through here so a page costs a fixed number
// of queries regardless of its size.
package loaders

import (
	"context"
	"database/sql"

	"github.com/lib/pq"

	"pulse/pkg/models"
)

// Querier is satisfied by *sql.DB and *sql.Tx
type Querier interface {
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
}

// Profiles fetches the author summaries for a set of user ids keyed
// by id. Missing profiles are simply absent from the map.
func Profiles(ctx context.Context, q Querier, userIDs []string) (map[string]models.ProfileSummary, error) {
	result := make(map[string]models.ProfileSummary, len(userIDs))
	if len(userIDs) == 0 {
		return result, nil
	}

	rows, err := q.QueryContext(ctx,
		`SELECT id, name, avatar_url FROM profiles WHERE id = ANY($1)`,
		pq.Array(userIDs))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var p models.ProfileSummary
		if err := rows.Scan(&p.ID, &p.Name, &p.AvatarURL); err != nil {
			return nil, err
		}
		result[p.ID] = p
	}
	return result, rows.Err()
}

// Engagement fetches like/comment/bookmark/repost counts for a page
// of post ids, plus whether viewerID holds each join row. viewerID may
// be empty for anonymous reads.
func Engagement(ctx context.Context, q Querier, postIDs []string, viewerID string) (map[string]models.Engagement, error) {
	result := make(map[string]models.Engagement, len(postIDs))
	if len(postIDs) == 0 {
		return result, nil
	}
	for _, id := range postIDs {
		result[id] = models.Engagement{}
	}

	type apply func(e *models.Engagement, count int, viewer bool)

	tables := []struct {
		table string
		set   apply
	}{
		{"likes", func(e *models.Engagement, n int, v bool) { e.LikeCount = n; e.Liked = v }},
		{"bookmarks", func(e *models.Engagement, n int, v bool) { e.BookmarkCount = n; e.Bookmarked = v }},
		{"reposts", func(e *models.Engagement, n int, v bool) { e.RepostCount = n; e.Reposted = v }},
		{"comments", func(e *models.Engagement, n int, v bool) { e.CommentCount = n }},
	}

	for _, t := range tables {
		// user_id cast to text so an empty viewer id compares cleanly
		query := `SELECT post_id, COUNT(*), BOOL_OR(user_id::text = $2) FROM ` + t.table +
			` WHERE post_id = ANY($1) GROUP BY post_id`
		rows, err := q.QueryContext(ctx, query, pq.Array(postIDs), viewerID)
		if err != nil {
			return nil, err
		}

		for rows.Next() {
			var postID string
			var count int
			var viewer bool
			if err := rows.Scan(&postID, &count, &viewer); err != nil {
				rows.Close()
				return nil, err
			}
			e := result[postID]
			t.set(&e, count, viewer)
			result[postID] = e
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return nil, err
		}
		rows.Close()
	}

	return result, nil
}

// FeedPosts enriches a page of posts with batch-loaded authors and
// engagement for viewerID.
func FeedPosts(ctx context.Context, q Querier, posts []models.Post, viewerID string) ([]models.FeedPost, error) {
	if len(posts) == 0 {
		return []models.FeedPost{}, nil
	}

	postIDs := make([]string, 0, len(posts))
	authorSet := make(map[string]bool, len(posts))
	authorIDs := make([]string, 0, len(posts))
	for _, p := range posts {
		postIDs = append(postIDs, p.ID)
		if !authorSet[p.UserID] {
			authorSet[p.UserID] = true
			authorIDs = append(authorIDs, p.UserID)
		}
	}

	profiles, err := Profiles(ctx, q, authorIDs)
	if err != nil {
		return nil, err
	}
	engagement, err := Engagement(ctx, q, postIDs, viewerID)
	if err != nil {
		return nil, err
	}

	enriched := make([]models.FeedPost, 0, len(posts))
	for _, p := range posts {
		fp := models.FeedPost{Post: p, Engagement: engagement[p.ID]}
		if author, ok := profiles[p.UserID]; ok {
			a := author
			fp.Author = &a
		}
		enriched = append(enriched, fp)
	}
	return enriched, nil
}
