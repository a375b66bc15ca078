package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	api "pulse/pkg/api/pulse"
)

// ServeWebSocket upgrades the connection and registers the client with
// the hub. The JWT middleware has already resolved the caller.
func ServeWebSocket(c *gin.Context) {
	userID := currentUserID(c)
	if userID == "" {
		notAuthenticated(c)
		return
	}
	if hub == nil {
		c.JSON(http.StatusServiceUnavailable, api.Err("Realtime is not configured."))
		return
	}

	hub.ServeWS(c.Writer, c.Request, userID)
}

// GetRealtimeStats reports hub connection counts
func GetRealtimeStats(c *gin.Context) {
	if currentUserID(c) == "" {
		notAuthenticated(c)
		return
	}
	if hub == nil {
		c.JSON(http.StatusServiceUnavailable, api.Err("Realtime is not configured."))
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "stats": hub.GetStats()})
}
