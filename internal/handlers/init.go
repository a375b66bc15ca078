// Package handlers implements the pulse HTTP API. Handlers share a
// package-level database handle and logger wired once from main.
package handlers

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"pulse/internal/events"
	"pulse/internal/linkpreview"
	"pulse/internal/metrics"
	"pulse/internal/storage"
	"pulse/internal/websocket"
	"pulse/pkg/auth"
	api "pulse/pkg/api/pulse"
	"pulse/pkg/logging"
	"pulse/pkg/models"
)

var (
	db             *sql.DB
	logger         logging.Logger
	publisher      events.Publisher
	previews       *linkpreview.Service
	objectStore    *storage.S3Client
	hub            *websocket.Hub
	serviceMetrics *metrics.Metrics
	jwtSecret      []byte
)

// Deps carries the optional collaborators. Nil fields disable the
// corresponding side effects (realtime fanout, previews, uploads).
type Deps struct {
	Publisher events.Publisher
	Previews  *linkpreview.Service
	Storage   *storage.S3Client
	Hub       *websocket.Hub
	Metrics   *metrics.Metrics
	JWTSecret []byte
}

// Init initializes the handlers with database, logger and collaborators
func Init(database *sql.DB, log logging.Logger, deps Deps) {
	db = database
	logger = log
	publisher = deps.Publisher
	previews = deps.Previews
	objectStore = deps.Storage
	hub = deps.Hub
	serviceMetrics = deps.Metrics
	jwtSecret = deps.JWTSecret
}

func currentUserID(c *gin.Context) string {
	return auth.CurrentUserID(c)
}

func notAuthenticated(c *gin.Context) {
	c.JSON(http.StatusUnauthorized, api.Err("Not authenticated."))
}

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, api.Err(message))
}

// dbError surfaces the store's raw error message, matching the
// pass-through error contract of every mutation.
func dbError(c *gin.Context, err error) {
	c.JSON(http.StatusInternalServerError, api.Err(err.Error()))
}

func recordMutation(operation string, err error) {
	if serviceMetrics == nil || serviceMetrics.MutationsTotal == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	serviceMetrics.MutationsTotal.WithLabelValues(operation, outcome).Inc()
}

// publishChange fans a mutation out to websocket subscribers.
// Best-effort: failures are logged and swallowed.
func publishChange(ctx context.Context, eventType, channel, postID, actorID string) {
	if publisher == nil {
		return
	}
	ev := models.ChangeEvent{
		Channel:   channel,
		Type:      eventType,
		PostID:    postID,
		ActorID:   actorID,
		Timestamp: time.Now().UTC(),
	}
	if err := publisher.PublishChange(ctx, ev); err != nil {
		logger.WithError(err).WithField("channel", channel).Warn("Failed to publish change event")
	}
	if serviceMetrics != nil && serviceMetrics.RealtimeEvents != nil {
		serviceMetrics.RealtimeEvents.WithLabelValues(channel).Inc()
	}
}

// invalidate signals that the named views are stale. Best-effort.
func invalidate(ctx context.Context, views ...string) {
	if publisher == nil {
		return
	}
	for _, view := range views {
		ev := models.InvalidationEvent{View: view, Timestamp: time.Now().UTC()}
		if err := publisher.PublishInvalidation(ctx, ev); err != nil {
			logger.WithError(err).WithField("view", view).Warn("Failed to publish invalidation")
		}
	}
}
