package handlers

import (
	"net/http"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
)

func pollRouter(userID string) *gin.Engine {
	router := gin.New()
	router.POST("/polls", asUser(userID), CreatePoll)
	router.POST("/polls/:id/vote", asUser(userID), VotePoll)
	router.GET("/polls/:id", asUser(userID), GetPollResults)
	return router
}

func pollRow(multipleChoice bool, expiresAt interface{}) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "post_id", "question", "multiple_choice", "expires_at", "created_at"}).
		AddRow("poll1", "p1", "Favorite color?", multipleChoice, expiresAt, time.Now())
}

func TestCreatePoll_Validations(t *testing.T) {
	setupMock(t)
	router := pollRouter("u1")

	for _, tc := range []struct {
		name    string
		body    map[string]interface{}
		message string
	}{
		{
			name:    "empty question",
			body:    map[string]interface{}{"post_id": "p1", "question": "  ", "options": []string{"a", "b"}},
			message: "Question is required.",
		},
		{
			name:    "too few options",
			body:    map[string]interface{}{"post_id": "p1", "question": "Q?", "options": []string{"a"}},
			message: "At least 2 options are required.",
		},
		{
			name: "too many options",
			body: map[string]interface{}{"post_id": "p1", "question": "Q?",
				"options": []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j", "k"}},
			message: "Maximum 10 options allowed.",
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			w := doJSON(t, router, http.MethodPost, "/polls", tc.body)
			assertError(t, w, http.StatusBadRequest, tc.message)
		})
	}
}

func TestCreatePoll_OnlyPostOwner(t *testing.T) {
	mock := setupMock(t)

	mock.ExpectQuery(`SELECT user_id FROM posts`).
		WithArgs("p1").
		WillReturnRows(sqlmock.NewRows([]string{"user_id"}).AddRow("someone-else"))

	w := doJSON(t, pollRouter("u1"), http.MethodPost, "/polls",
		map[string]interface{}{"post_id": "p1", "question": "Q?", "options": []string{"a", "b"}})
	assertError(t, w, http.StatusBadRequest, "Can only add poll to own post.")
	assertExpectations(t, mock)
}

func TestVotePoll_Expired(t *testing.T) {
	mock := setupMock(t)

	past := time.Now().Add(-time.Hour)
	mock.ExpectQuery(`SELECT id, post_id, question, multiple_choice, expires_at, created_at`).
		WithArgs("poll1").
		WillReturnRows(pollRow(false, past))

	w := doJSON(t, pollRouter("u1"), http.MethodPost, "/polls/poll1/vote",
		map[string]interface{}{"option_ids": []string{"o1"}})
	assertError(t, w, http.StatusBadRequest, "Poll has expired.")
	assertExpectations(t, mock)
}

func TestVotePoll_SingleChoiceAlreadyVoted(t *testing.T) {
	mock := setupMock(t)

	mock.ExpectQuery(`SELECT id, post_id, question, multiple_choice, expires_at, created_at`).
		WithArgs("poll1").
		WillReturnRows(pollRow(false, nil))
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT option_id FROM poll_votes`).
		WithArgs("poll1", "u1").
		WillReturnRows(sqlmock.NewRows([]string{"option_id"}).AddRow("o1"))
	mock.ExpectRollback()

	w := doJSON(t, pollRouter("u1"), http.MethodPost, "/polls/poll1/vote",
		map[string]interface{}{"option_ids": []string{"o2"}})
	assertError(t, w, http.StatusBadRequest, "Already voted.")
	assertExpectations(t, mock)
}

func TestVotePoll_SingleChoiceAllowsOneOption(t *testing.T) {
	mock := setupMock(t)

	mock.ExpectQuery(`SELECT id, post_id, question, multiple_choice, expires_at, created_at`).
		WithArgs("poll1").
		WillReturnRows(pollRow(false, nil))
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT option_id FROM poll_votes`).
		WithArgs("poll1", "u1").
		WillReturnRows(sqlmock.NewRows([]string{"option_id"}))
	mock.ExpectRollback()

	w := doJSON(t, pollRouter("u1"), http.MethodPost, "/polls/poll1/vote",
		map[string]interface{}{"option_ids": []string{"o1", "o2"}})
	assertError(t, w, http.StatusBadRequest, "Single choice poll allows only one vote.")
	assertExpectations(t, mock)
}

func TestVotePoll_MultipleChoiceAllDuplicates(t *testing.T) {
	mock := setupMock(t)

	mock.ExpectQuery(`SELECT id, post_id, question, multiple_choice, expires_at, created_at`).
		WithArgs("poll1").
		WillReturnRows(pollRow(true, nil))
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT option_id FROM poll_votes`).
		WithArgs("poll1", "u1").
		WillReturnRows(sqlmock.NewRows([]string{"option_id"}).AddRow("o1").AddRow("o2"))
	mock.ExpectRollback()

	w := doJSON(t, pollRouter("u1"), http.MethodPost, "/polls/poll1/vote",
		map[string]interface{}{"option_ids": []string{"o1", "o2"}})
	assertError(t, w, http.StatusBadRequest, "Already voted for these options.")
	assertExpectations(t, mock)
}

func TestVotePoll_DuplicateOptionIDsInsertOnce(t *testing.T) {
	mock := setupMock(t)

	mock.ExpectQuery(`SELECT id, post_id, question, multiple_choice, expires_at, created_at`).
		WithArgs("poll1").
		WillReturnRows(pollRow(true, nil))
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT option_id FROM poll_votes`).
		WithArgs("poll1", "u1").
		WillReturnRows(sqlmock.NewRows([]string{"option_id"}))
	// The repeated option id collapses to a single insert
	mock.ExpectExec(`INSERT INTO poll_votes`).
		WithArgs("poll1", "o1", "u1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	// Post owner lookup and notification insert run after commit
	mock.ExpectQuery(`SELECT user_id FROM posts`).
		WithArgs("p1").
		WillReturnRows(sqlmock.NewRows([]string{"user_id"}).AddRow("owner"))
	mock.ExpectExec(`INSERT INTO notifications`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	mock.ExpectQuery(`SELECT o.id, o.poll_id, o.option_text, o.option_order`).
		WithArgs("poll1", "u1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "poll_id", "option_text", "option_order", "count", "bool_or"}).
			AddRow("o1", "poll1", "red", 0, 1, true).
			AddRow("o2", "poll1", "blue", 1, 0, nil))

	w := doJSON(t, pollRouter("u1"), http.MethodPost, "/polls/poll1/vote",
		map[string]interface{}{"option_ids": []string{"o1", "o1"}})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (body: %s)", w.Code, w.Body.String())
	}
	body := decodeBody(t, w)
	results := body["results"].(map[string]interface{})
	if results["total_votes"] != float64(1) {
		t.Fatalf("expected 1 total vote, got %v", results["total_votes"])
	}
	assertExpectations(t, mock)
}

func TestVotePoll_NoOptionsSelected(t *testing.T) {
	setupMock(t)

	w := doJSON(t, pollRouter("u1"), http.MethodPost, "/polls/poll1/vote",
		map[string]interface{}{"option_ids": []string{}})
	assertError(t, w, http.StatusBadRequest, "At least one option must be selected.")
}

func TestGetPollResults_Percentages(t *testing.T) {
	mock := setupMock(t)

	mock.ExpectQuery(`SELECT id, post_id, question, multiple_choice, expires_at, created_at`).
		WithArgs("poll1").
		WillReturnRows(pollRow(false, nil))
	mock.ExpectQuery(`SELECT o.id, o.poll_id, o.option_text, o.option_order`).
		WithArgs("poll1", "u1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "poll_id", "option_text", "option_order", "count", "bool_or"}).
			AddRow("o1", "poll1", "red", 0, 1, true).
			AddRow("o2", "poll1", "blue", 1, 2, false))

	w := doJSON(t, pollRouter("u1"), http.MethodGet, "/polls/poll1", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (body: %s)", w.Code, w.Body.String())
	}
	body := decodeBody(t, w)
	results := body["results"].(map[string]interface{})
	if results["total_votes"] != float64(3) {
		t.Fatalf("expected 3 total votes, got %v", results["total_votes"])
	}
	options := results["options"].([]interface{})
	first := options[0].(map[string]interface{})
	second := options[1].(map[string]interface{})
	if first["percentage"] != float64(33) {
		t.Fatalf("expected 33%% for first option, got %v", first["percentage"])
	}
	if second["percentage"] != float64(67) {
		t.Fatalf("expected 67%% for second option, got %v", second["percentage"])
	}
	if first["user_voted"] != true || second["user_voted"] != false {
		t.Fatalf("user_voted flags wrong: %v %v", first["user_voted"], second["user_voted"])
	}
	assertExpectations(t, mock)
}

func TestGetPollResults_EmptyPollIsAllZero(t *testing.T) {
	mock := setupMock(t)

	mock.ExpectQuery(`SELECT id, post_id, question, multiple_choice, expires_at, created_at`).
		WithArgs("poll1").
		WillReturnRows(pollRow(false, nil))
	mock.ExpectQuery(`SELECT o.id, o.poll_id, o.option_text, o.option_order`).
		WithArgs("poll1", "u1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "poll_id", "option_text", "option_order", "count", "bool_or"}).
			AddRow("o1", "poll1", "red", 0, 0, nil).
			AddRow("o2", "poll1", "blue", 1, 0, nil))

	w := doJSON(t, pollRouter("u1"), http.MethodGet, "/polls/poll1", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (body: %s)", w.Code, w.Body.String())
	}
	body := decodeBody(t, w)
	results := body["results"].(map[string]interface{})
	if results["total_votes"] != float64(0) {
		t.Fatalf("expected 0 total votes, got %v", results["total_votes"])
	}
	for _, raw := range results["options"].([]interface{}) {
		opt := raw.(map[string]interface{})
		if opt["percentage"] != float64(0) {
			t.Fatalf("expected 0%% on empty poll, got %v", opt["percentage"])
		}
	}
	assertExpectations(t, mock)
}
