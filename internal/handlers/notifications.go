package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lib/pq"

	"pulse/internal/loaders"
	"pulse/internal/websocket"
	api "pulse/pkg/api/pulse"
	"pulse/pkg/logging"
	"pulse/pkg/models"
)

const notificationPageSize = 50

// notify inserts a notification row for userID and pushes it to their
// realtime channel. Self-actions are skipped and failures never
// propagate to the mutation that triggered them.
func notify(ctx context.Context, userID, actorID, notifType string, postID, commentID *string) {
	if userID == "" || userID == actorID {
		return
	}

	_, err := db.ExecContext(ctx,
		`INSERT INTO notifications (user_id, type, actor_id, post_id, comment_id)
		 VALUES ($1, $2, $3, $4, $5)`,
		userID, notifType, actorID, postID, commentID)
	if err != nil {
		logger.WithError(err).WithFields(logging.Fields{
			"user_id": userID,
			"type":    notifType,
		}).Warn("Failed to create notification")
		return
	}

	if serviceMetrics != nil && serviceMetrics.NotificationsCreated != nil {
		serviceMetrics.NotificationsCreated.WithLabelValues(notifType).Inc()
	}

	post := ""
	if postID != nil {
		post = *postID
	}
	publishChange(ctx, notifType, websocket.NotificationChannel(userID), post, actorID)
}

// GetNotifications returns the caller's latest notifications with
// batch-joined actor profiles and the unread tally.
func GetNotifications(c *gin.Context) {
	userID := currentUserID(c)
	if userID == "" {
		notAuthenticated(c)
		return
	}

	rows, err := db.QueryContext(c.Request.Context(),
		`SELECT id, user_id, type, actor_id, post_id, comment_id, read, data, created_at
		 FROM notifications WHERE user_id = $1
		 ORDER BY created_at DESC LIMIT $2`,
		userID, notificationPageSize)
	if err != nil {
		dbError(c, err)
		return
	}
	defer rows.Close()

	notifications := []models.Notification{}
	actorSet := make(map[string]bool)
	var actorIDs []string
	for rows.Next() {
		var n models.Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.Type, &n.ActorID, &n.PostID, &n.CommentID, &n.Read, &n.Data, &n.CreatedAt); err != nil {
			dbError(c, err)
			return
		}
		if n.ActorID != nil && !actorSet[*n.ActorID] {
			actorSet[*n.ActorID] = true
			actorIDs = append(actorIDs, *n.ActorID)
		}
		notifications = append(notifications, n)
	}
	if err := rows.Err(); err != nil {
		dbError(c, err)
		return
	}

	actors, err := loaders.Profiles(c.Request.Context(), db, actorIDs)
	if err != nil {
		dbError(c, err)
		return
	}
	for i := range notifications {
		if notifications[i].ActorID == nil {
			continue
		}
		if actor, ok := actors[*notifications[i].ActorID]; ok {
			a := actor
			notifications[i].Actor = &a
		}
	}

	var unread int
	if err := db.QueryRowContext(c.Request.Context(),
		`SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND NOT read`,
		userID).Scan(&unread); err != nil {
		dbError(c, err)
		return
	}

	c.JSON(http.StatusOK, api.NotificationsResponse{
		Success:       true,
		Notifications: notifications,
		UnreadCount:   unread,
	})
}

// GetUnreadCount returns just the caller's unread notification count
func GetUnreadCount(c *gin.Context) {
	userID := currentUserID(c)
	if userID == "" {
		notAuthenticated(c)
		return
	}

	var unread int
	if err := db.QueryRowContext(c.Request.Context(),
		`SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND NOT read`,
		userID).Scan(&unread); err != nil {
		dbError(c, err)
		return
	}

	c.JSON(http.StatusOK, api.UnreadCountResponse{Success: true, UnreadCount: unread})
}

// MarkAsRead marks one of the caller's notifications as read. The
// user_id filter keeps callers off other users' rows.
func MarkAsRead(c *gin.Context) {
	userID := currentUserID(c)
	if userID == "" {
		notAuthenticated(c)
		return
	}

	notificationID := c.Param("id")
	_, err := db.ExecContext(c.Request.Context(),
		`UPDATE notifications SET read = true WHERE id = $1 AND user_id = $2`,
		notificationID, userID)
	recordMutation("mark_notification_read", err)
	if err != nil {
		dbError(c, err)
		return
	}

	c.JSON(http.StatusOK, api.DeleteResponse{Success: true})
}

// MarkAllAsRead marks every unread notification of the caller as read
func MarkAllAsRead(c *gin.Context) {
	userID := currentUserID(c)
	if userID == "" {
		notAuthenticated(c)
		return
	}

	_, err := db.ExecContext(c.Request.Context(),
		`UPDATE notifications SET read = true WHERE user_id = $1 AND NOT read`,
		userID)
	recordMutation("mark_all_notifications_read", err)
	if err != nil {
		dbError(c, err)
		return
	}

	c.JSON(http.StatusOK, api.DeleteResponse{Success: true})
}

// notifyMentions resolves @-mentions in content and notifies each
// mentioned user. Mention tokens are matched against profile ids
// first, then exact names, in one batched query per kind.
func notifyMentions(ctx context.Context, content, actorID string, postID *string, tokens []string) {
	if len(tokens) == 0 {
		return
	}

	resolved := make(map[string]bool)

	rows, err := db.QueryContext(ctx,
		`SELECT id FROM profiles WHERE id::text = ANY($1) OR name = ANY($1)`,
		pq.Array(tokens))
	if err != nil {
		logger.WithError(err).Warn("Failed to resolve mentions")
		return
	}
	defer rows.Close()

	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			logger.WithError(err).Warn("Failed to scan mention target")
			return
		}
		resolved[id] = true
	}

	for id := range resolved {
		notify(ctx, id, actorID, models.NotificationMention, postID, nil)
	}
}
