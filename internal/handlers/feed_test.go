package handlers

import (
	"net/http"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
)

var sampleTime = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func feedRouter(userID string) *gin.Engine {
	router := gin.New()
	router.GET("/feed", asUser(userID), GetForYouFeed)
	router.GET("/feed/following", asUser(userID), GetFollowingFeed)
	router.GET("/feed/filtered", asUser(userID), GetFilteredFeed)
	return router
}

func postRows(ids ...string) *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{"id", "user_id", "content", "image_url", "media_type",
		"parent_post_id", "reply_count", "created_at", "updated_at"})
	for _, id := range ids {
		rows.AddRow(id, "author-"+id, "content of "+id, nil, "text", nil, 0, sampleTime, sampleTime)
	}
	return rows
}

func TestGetFollowingFeed_EmptyWithoutFollows(t *testing.T) {
	mock := setupMock(t)

	mock.ExpectQuery(`SELECT following_id FROM follows`).
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"following_id"}))

	w := doJSON(t, feedRouter("u1"), http.MethodGet, "/feed/following", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (body: %s)", w.Code, w.Body.String())
	}
	body := decodeBody(t, w)
	posts := body["posts"].([]interface{})
	if len(posts) != 0 {
		t.Fatalf("expected empty feed, got %d posts", len(posts))
	}
	assertExpectations(t, mock)
}

func TestGetForYouFeed_EmptyPage(t *testing.T) {
	mock := setupMock(t)

	mock.ExpectQuery(`SELECT .+ FROM posts`).
		WithArgs(20, 0).
		WillReturnRows(postRows())

	w := doJSON(t, feedRouter("u1"), http.MethodGet, "/feed", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (body: %s)", w.Code, w.Body.String())
	}
	body := decodeBody(t, w)
	if body["limit"] != float64(20) || body["offset"] != float64(0) {
		t.Fatalf("unexpected page params: %v %v", body["limit"], body["offset"])
	}
	assertExpectations(t, mock)
}

func TestGetForYouFeed_PageParamsHonored(t *testing.T) {
	mock := setupMock(t)

	mock.ExpectQuery(`SELECT .+ FROM posts`).
		WithArgs(5, 10).
		WillReturnRows(postRows())

	w := doJSON(t, feedRouter("u1"), http.MethodGet, "/feed?limit=5&offset=10", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (body: %s)", w.Code, w.Body.String())
	}
	body := decodeBody(t, w)
	if body["limit"] != float64(5) || body["offset"] != float64(10) {
		t.Fatalf("unexpected page params: %v %v", body["limit"], body["offset"])
	}
	assertExpectations(t, mock)
}

func TestGetFilteredFeed_HashtagIsCaseInsensitive(t *testing.T) {
	mock := setupMock(t)

	// The handler lowers nothing: ILIKE does the case folding, so the
	// argument keeps the caller's casing with the pattern wrapping.
	mock.ExpectQuery(`SELECT .+ FROM posts WHERE parent_post_id IS NULL AND content ILIKE`).
		WithArgs("%#GoLang%", 20, 0).
		WillReturnRows(postRows())

	w := doJSON(t, feedRouter("u1"), http.MethodGet, "/feed/filtered?hashtag=GoLang", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (body: %s)", w.Code, w.Body.String())
	}
	assertExpectations(t, mock)
}

func TestGetFilteredFeed_HashPrefixStripped(t *testing.T) {
	mock := setupMock(t)

	mock.ExpectQuery(`SELECT .+ FROM posts WHERE parent_post_id IS NULL AND content ILIKE`).
		WithArgs("%#golang%", 20, 0).
		WillReturnRows(postRows())

	w := doJSON(t, feedRouter("u1"), http.MethodGet, "/feed/filtered?hashtag=%23golang", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (body: %s)", w.Code, w.Body.String())
	}
	assertExpectations(t, mock)
}
