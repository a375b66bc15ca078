package handlers

import (
	"context"
	"net/http"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
)

func TestNotify_SkipsSelfAndEmpty(t *testing.T) {
	mock := setupMock(t)

	postID := "p1"
	notify(context.Background(), "u1", "u1", "like", &postID, nil)
	notify(context.Background(), "", "u1", "like", &postID, nil)

	// No SQL may run for either call
	assertExpectations(t, mock)
}

func TestNotifyMentions_ResolvesInOneQuery(t *testing.T) {
	mock := setupMock(t)

	mock.ExpectQuery(`SELECT id FROM profiles WHERE id::text = ANY`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("u2"))
	mock.ExpectExec(`INSERT INTO notifications`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	postID := "p1"
	notifyMentions(context.Background(), "hey @u2 and @ghost", "u1", &postID, []string{"u2", "ghost"})
	assertExpectations(t, mock)
}

func TestNotifyMentions_NoTokensNoQuery(t *testing.T) {
	mock := setupMock(t)

	postID := "p1"
	notifyMentions(context.Background(), "no mentions here", "u1", &postID, nil)
	assertExpectations(t, mock)
}

func TestGetNotifications_AttachesActors(t *testing.T) {
	mock := setupMock(t)

	mock.ExpectQuery(`SELECT id, user_id, type, actor_id, post_id, comment_id, read, data, created_at`).
		WithArgs("u1", notificationPageSize).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "type", "actor_id", "post_id", "comment_id", "read", "data", "created_at"}).
			AddRow("n1", "u1", "like", "u2", "p1", nil, false, nil, sampleTime).
			AddRow("n2", "u1", "follow", "u2", nil, nil, true, nil, sampleTime))
	mock.ExpectQuery(`SELECT id, name, avatar_url FROM profiles`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "avatar_url"}).
			AddRow("u2", "Bob", nil))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM notifications`).
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	router := gin.New()
	router.GET("/notifications", asUser("u1"), GetNotifications)

	w := doJSON(t, router, http.MethodGet, "/notifications", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (body: %s)", w.Code, w.Body.String())
	}
	body := decodeBody(t, w)
	if body["unread_count"] != float64(1) {
		t.Fatalf("expected unread_count=1, got %v", body["unread_count"])
	}
	notifications := body["notifications"].([]interface{})
	if len(notifications) != 2 {
		t.Fatalf("expected 2 notifications, got %d", len(notifications))
	}
	first := notifications[0].(map[string]interface{})
	actor, ok := first["actor"].(map[string]interface{})
	if !ok || actor["name"] != "Bob" {
		t.Fatalf("expected batch-joined actor, got %v", first["actor"])
	}
	assertExpectations(t, mock)
}
