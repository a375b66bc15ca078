package handlers

import (
	"database/sql"
	"net/http"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
)

func postRouter(userID string) *gin.Engine {
	router := gin.New()
	router.POST("/posts", asUser(userID), CreatePost)
	router.PUT("/posts/:id", asUser(userID), UpdatePost)
	router.POST("/replies", asUser(userID), CreateReply)
	return router
}

func TestCreatePost_EmptyContentRejected(t *testing.T) {
	setupMock(t)

	w := doJSON(t, postRouter("u1"), http.MethodPost, "/posts", map[string]string{"content": "   "})
	assertError(t, w, http.StatusBadRequest, "Post cannot be empty")
}

func TestCreatePost_RateLimited(t *testing.T) {
	mock := setupMock(t)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM posts`).
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(10))

	w := doJSON(t, postRouter("u1"), http.MethodPost, "/posts", map[string]string{"content": "hello"})
	assertError(t, w, http.StatusBadRequest, "Rate limit: try again later.")
	assertExpectations(t, mock)
}

func TestUpdatePost_NotOwnerIsNotFound(t *testing.T) {
	mock := setupMock(t)

	mock.ExpectQuery(`UPDATE posts SET content`).
		WillReturnError(sql.ErrNoRows)

	w := doJSON(t, postRouter("u1"), http.MethodPut, "/posts/p1", map[string]string{"content": "edited"})
	assertError(t, w, http.StatusBadRequest, "Post not found.")
	assertExpectations(t, mock)
}

func TestCreateReply_MissingParentRejected(t *testing.T) {
	mock := setupMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT id FROM posts`).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	w := doJSON(t, postRouter("u1"), http.MethodPost, "/replies",
		map[string]string{"parent_post_id": "missing", "content": "hi"})
	assertError(t, w, http.StatusBadRequest, "Parent post not found.")
	assertExpectations(t, mock)
}

func TestCreateReply_BumpsParentReplyCount(t *testing.T) {
	mock := setupMock(t)

	postRows := sqlmock.NewRows([]string{"id", "user_id", "content", "image_url", "media_type",
		"parent_post_id", "reply_count", "created_at", "updated_at"}).
		AddRow("p2", "u1", "hi", nil, "text", "p1", 0, sampleTime, sampleTime)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT id FROM posts`).
		WithArgs("p1").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("p1"))
	mock.ExpectQuery(`INSERT INTO posts`).
		WillReturnRows(postRows)
	mock.ExpectExec(`UPDATE posts SET reply_count = reply_count \+ 1`).
		WithArgs("p1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	mock.ExpectQuery(`SELECT user_id FROM posts`).
		WithArgs("p1").
		WillReturnRows(sqlmock.NewRows([]string{"user_id"}).AddRow("owner"))
	mock.ExpectExec(`INSERT INTO notifications`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	w := doJSON(t, postRouter("u1"), http.MethodPost, "/replies",
		map[string]string{"parent_post_id": "p1", "content": "hi"})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (body: %s)", w.Code, w.Body.String())
	}
	body := decodeBody(t, w)
	post := body["post"].(map[string]interface{})
	if post["parent_post_id"] != "p1" {
		t.Fatalf("expected parent_post_id p1, got %v", post["parent_post_id"])
	}
	assertExpectations(t, mock)
}
