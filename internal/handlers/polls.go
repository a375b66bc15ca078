package handlers

import (
	"context"
	"database/sql"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"pulse/internal/events"
	api "pulse/pkg/api/pulse"
	"pulse/pkg/models"
)

const (
	pollMinOptions = 2
	pollMaxOptions = 10
)

// CreatePoll attaches a poll to one of the caller's posts. The poll
// row is inserted first and removed by hand if the option insert
// fails, since the options arrive as a second statement.
func CreatePoll(c *gin.Context) {
	userID := currentUserID(c)
	if userID == "" {
		notAuthenticated(c)
		return
	}

	var req models.CreatePollRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "post_id, question and options are required.")
		return
	}

	question := strings.TrimSpace(req.Question)
	if question == "" {
		badRequest(c, "Question is required.")
		return
	}
	if len(req.Options) < pollMinOptions {
		badRequest(c, "At least 2 options are required.")
		return
	}
	if len(req.Options) > pollMaxOptions {
		badRequest(c, "Maximum 10 options allowed.")
		return
	}

	ctx := c.Request.Context()

	var postOwnerID string
	err := db.QueryRowContext(ctx,
		`SELECT user_id FROM posts WHERE id = $1`, req.PostID).Scan(&postOwnerID)
	if err == sql.ErrNoRows {
		badRequest(c, "Post not found.")
		return
	}
	if err != nil {
		dbError(c, err)
		return
	}
	if postOwnerID != userID {
		badRequest(c, "Can only add poll to own post.")
		return
	}

	var poll models.Poll
	err = db.QueryRowContext(ctx,
		`INSERT INTO polls (post_id, question, multiple_choice, expires_at)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, post_id, question, multiple_choice, expires_at, created_at`,
		req.PostID, question, req.MultipleChoice, req.ExpiresAt).
		Scan(&poll.ID, &poll.PostID, &poll.Question, &poll.MultipleChoice, &poll.ExpiresAt, &poll.CreatedAt)
	if err != nil {
		recordMutation("create_poll", err)
		dbError(c, err)
		return
	}

	options := make([]models.PollOption, 0, len(req.Options))
	for i, text := range req.Options {
		var opt models.PollOption
		err = db.QueryRowContext(ctx,
			`INSERT INTO poll_options (poll_id, option_text, option_order)
			 VALUES ($1, $2, $3)
			 RETURNING id, poll_id, option_text, option_order`,
			poll.ID, strings.TrimSpace(text), i).
			Scan(&opt.ID, &opt.PollID, &opt.OptionText, &opt.OptionOrder)
		if err != nil {
			// Roll the poll back by hand; cascade removes inserted options
			if _, delErr := db.ExecContext(ctx, `DELETE FROM polls WHERE id = $1`, poll.ID); delErr != nil {
				logger.WithError(delErr).WithField("poll_id", poll.ID).Error("Failed to roll back poll")
			}
			recordMutation("create_poll", err)
			dbError(c, err)
			return
		}
		options = append(options, opt)
	}

	if _, err := db.ExecContext(ctx,
		`UPDATE posts SET media_type = $1 WHERE id = $2`,
		models.MediaTypePoll, req.PostID); err != nil {
		logger.WithError(err).WithField("post_id", req.PostID).Warn("Failed to mark post as poll")
	}
	recordMutation("create_poll", nil)

	invalidate(ctx, events.ViewFeed, events.ViewProfile)
	publishChange(ctx, "poll", "posts", req.PostID, userID)

	c.JSON(http.StatusOK, api.PollResponse{Success: true, Poll: poll, Options: options})
}

// VotePoll records the caller's vote(s) on a poll
func VotePoll(c *gin.Context) {
	userID := currentUserID(c)
	if userID == "" {
		notAuthenticated(c)
		return
	}

	pollID := c.Param("id")

	var req models.VotePollRequest
	if err := c.ShouldBindJSON(&req); err != nil || len(req.OptionIDs) == 0 {
		badRequest(c, "At least one option must be selected.")
		return
	}

	// Repeated option ids in one request would trip the unique
	// constraint on the second insert.
	optionIDs := make([]string, 0, len(req.OptionIDs))
	seen := make(map[string]bool)
	for _, id := range req.OptionIDs {
		if !seen[id] {
			seen[id] = true
			optionIDs = append(optionIDs, id)
		}
	}

	ctx := c.Request.Context()

	var poll models.Poll
	err := db.QueryRowContext(ctx,
		`SELECT id, post_id, question, multiple_choice, expires_at, created_at
		 FROM polls WHERE id = $1`, pollID).
		Scan(&poll.ID, &poll.PostID, &poll.Question, &poll.MultipleChoice, &poll.ExpiresAt, &poll.CreatedAt)
	if err == sql.ErrNoRows {
		badRequest(c, "Poll not found.")
		return
	}
	if err != nil {
		dbError(c, err)
		return
	}

	if poll.ExpiresAt != nil && poll.ExpiresAt.Before(time.Now()) {
		badRequest(c, "Poll has expired.")
		return
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		dbError(c, err)
		return
	}
	defer tx.Rollback()

	rows, err := tx.QueryContext(ctx,
		`SELECT option_id FROM poll_votes WHERE poll_id = $1 AND user_id = $2`,
		pollID, userID)
	if err != nil {
		dbError(c, err)
		return
	}
	voted := make(map[string]bool)
	for rows.Next() {
		var optionID string
		if err := rows.Scan(&optionID); err != nil {
			rows.Close()
			dbError(c, err)
			return
		}
		voted[optionID] = true
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		dbError(c, err)
		return
	}
	rows.Close()

	var toInsert []string
	if len(voted) > 0 {
		if !poll.MultipleChoice {
			badRequest(c, "Already voted.")
			return
		}
		for _, id := range optionIDs {
			if !voted[id] {
				toInsert = append(toInsert, id)
			}
		}
		if len(toInsert) == 0 {
			badRequest(c, "Already voted for these options.")
			return
		}
	} else {
		if !poll.MultipleChoice && len(req.OptionIDs) > 1 {
			badRequest(c, "Single choice poll allows only one vote.")
			return
		}
		toInsert = optionIDs
	}

	for _, optionID := range toInsert {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO poll_votes (poll_id, option_id, user_id) VALUES ($1, $2, $3)`,
			pollID, optionID, userID); err != nil {
			recordMutation("vote_poll", err)
			dbError(c, err)
			return
		}
	}

	if err := tx.Commit(); err != nil {
		recordMutation("vote_poll", err)
		dbError(c, err)
		return
	}
	recordMutation("vote_poll", nil)

	invalidate(ctx, events.ViewFeed, events.ViewProfile)
	publishChange(ctx, "poll_vote", "posts", poll.PostID, userID)
	notify(ctx, postOwner(ctx, poll.PostID), userID, models.NotificationPollVote, &poll.PostID, nil)

	results, err := pollResults(ctx, poll, userID)
	if err != nil {
		dbError(c, err)
		return
	}

	c.JSON(http.StatusOK, api.VoteResponse{Success: true, Results: *results})
}

// GetPollResults returns the tallies for a poll by id
func GetPollResults(c *gin.Context) {
	userID := currentUserID(c)
	pollID := c.Param("id")

	var poll models.Poll
	err := db.QueryRowContext(c.Request.Context(),
		`SELECT id, post_id, question, multiple_choice, expires_at, created_at
		 FROM polls WHERE id = $1`, pollID).
		Scan(&poll.ID, &poll.PostID, &poll.Question, &poll.MultipleChoice, &poll.ExpiresAt, &poll.CreatedAt)
	if err == sql.ErrNoRows {
		badRequest(c, "Poll not found.")
		return
	}
	if err != nil {
		dbError(c, err)
		return
	}

	results, err := pollResults(c.Request.Context(), poll, userID)
	if err != nil {
		dbError(c, err)
		return
	}

	c.JSON(http.StatusOK, api.PollResultsResponse{Success: true, Results: *results})
}

// GetPollByPost returns the tallies for the poll attached to a post
func GetPollByPost(c *gin.Context) {
	userID := currentUserID(c)
	postID := c.Param("id")

	var poll models.Poll
	err := db.QueryRowContext(c.Request.Context(),
		`SELECT id, post_id, question, multiple_choice, expires_at, created_at
		 FROM polls WHERE post_id = $1`, postID).
		Scan(&poll.ID, &poll.PostID, &poll.Question, &poll.MultipleChoice, &poll.ExpiresAt, &poll.CreatedAt)
	if err == sql.ErrNoRows {
		badRequest(c, "Poll not found.")
		return
	}
	if err != nil {
		dbError(c, err)
		return
	}

	results, err := pollResults(c.Request.Context(), poll, userID)
	if err != nil {
		dbError(c, err)
		return
	}

	c.JSON(http.StatusOK, api.PollResultsResponse{Success: true, Results: *results})
}

// pollResults aggregates per-option tallies in option order.
// Percentages are integer-rounded shares of the total; an empty poll
// reports zero across the board.
func pollResults(ctx context.Context, poll models.Poll, viewerID string) (*models.PollResults, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT o.id, o.poll_id, o.option_text, o.option_order,
		        COUNT(v.id), BOOL_OR(v.user_id::text = $2)
		 FROM poll_options o
		 LEFT JOIN poll_votes v ON v.option_id = o.id
		 WHERE o.poll_id = $1
		 GROUP BY o.id, o.poll_id, o.option_text, o.option_order
		 ORDER BY o.option_order ASC`,
		poll.ID, viewerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	options := []models.PollOptionResult{}
	total := 0
	for rows.Next() {
		var opt models.PollOptionResult
		var userVoted sql.NullBool
		if err := rows.Scan(&opt.ID, &opt.PollID, &opt.OptionText, &opt.OptionOrder, &opt.Votes, &userVoted); err != nil {
			return nil, err
		}
		opt.UserVoted = userVoted.Valid && userVoted.Bool
		total += opt.Votes
		options = append(options, opt)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range options {
		if total > 0 {
			options[i].Percentage = int(math.Round(float64(options[i].Votes) * 100 / float64(total)))
		}
	}

	return &models.PollResults{
		Poll:       poll,
		Options:    options,
		TotalVotes: total,
		Expired:    poll.ExpiresAt != nil && poll.ExpiresAt.Before(time.Now()),
	}, nil
}
