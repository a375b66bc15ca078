package handlers

import (
	"database/sql"
	"net/http"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"

	"pulse/pkg/testutil"
)

func TestGetThread_AssemblesRootAndReplies(t *testing.T) {
	mock := setupMock(t)
	fixtures := testutil.NewFixtures()

	root := fixtures.Post("p1", "u-author")
	reply := fixtures.Post("p2", "u-replier")
	parent := root.ID
	reply.ParentPostID = &parent

	mock.ExpectQuery(`SELECT .+ FROM posts WHERE id`).
		WithArgs("p1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "content", "image_url", "media_type",
			"parent_post_id", "reply_count", "created_at", "updated_at"}).
			AddRow(root.ID, root.UserID, root.Content, nil, root.MediaType, nil, 1, root.CreatedAt, root.UpdatedAt))
	mock.ExpectQuery(`SELECT .+ FROM posts WHERE parent_post_id`).
		WithArgs("p1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "content", "image_url", "media_type",
			"parent_post_id", "reply_count", "created_at", "updated_at"}).
			AddRow(reply.ID, reply.UserID, reply.Content, nil, reply.MediaType, parent, 0, reply.CreatedAt, reply.UpdatedAt))

	// One profile batch plus one engagement pass per table covers root and reply
	mock.ExpectQuery(`SELECT id, name, avatar_url FROM profiles`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "avatar_url"}).
			AddRow("u-author", "Author", nil).
			AddRow("u-replier", "Replier", nil))
	for range []string{"likes", "bookmarks", "reposts", "comments"} {
		mock.ExpectQuery(`SELECT post_id, COUNT\(\*\), BOOL_OR`).
			WillReturnRows(sqlmock.NewRows([]string{"post_id", "count", "bool_or"}))
	}

	router := gin.New()
	router.GET("/posts/:id/thread", asUser("viewer"), GetThread)

	w := doJSON(t, router, http.MethodGet, "/posts/p1/thread", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (body: %s)", w.Code, w.Body.String())
	}
	body := decodeBody(t, w)
	thread := body["thread"].(map[string]interface{})
	post := thread["post"].(map[string]interface{})
	if post["id"] != "p1" {
		t.Fatalf("expected root post p1, got %v", post["id"])
	}
	author := post["author"].(map[string]interface{})
	if author["name"] != "Author" {
		t.Fatalf("expected batch-joined author, got %v", author)
	}
	replies := thread["replies"].([]interface{})
	if len(replies) != 1 {
		t.Fatalf("expected 1 reply, got %d", len(replies))
	}
	first := replies[0].(map[string]interface{})
	if first["id"] != "p2" || first["parent_post_id"] != "p1" {
		t.Fatalf("unexpected reply: %v", first)
	}
	assertExpectations(t, mock)
}

func TestGetThread_MissingPost(t *testing.T) {
	mock := setupMock(t)

	mock.ExpectQuery(`SELECT .+ FROM posts WHERE id`).
		WithArgs("ghost").
		WillReturnError(sql.ErrNoRows)

	router := gin.New()
	router.GET("/posts/:id/thread", GetThread)

	w := doJSON(t, router, http.MethodGet, "/posts/ghost/thread", nil)
	assertError(t, w, http.StatusBadRequest, "Post not found.")
	assertExpectations(t, mock)
}
