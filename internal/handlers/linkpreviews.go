package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	api "pulse/pkg/api/pulse"
)

// GetLinkPreview returns the cached preview for a URL without
// triggering a scrape.
func GetLinkPreview(c *gin.Context) {
	if previews == nil {
		badRequest(c, "Link previews are not configured.")
		return
	}

	rawURL := strings.TrimSpace(c.Query("url"))
	if rawURL == "" {
		badRequest(c, "Invalid URL.")
		return
	}

	preview, err := previews.Get(c.Request.Context(), rawURL)
	if err != nil {
		dbError(c, err)
		return
	}
	if preview == nil {
		badRequest(c, "Preview not found.")
		return
	}

	c.JSON(http.StatusOK, api.LinkPreviewResponse{Success: true, Preview: *preview})
}

// FetchLinkPreview returns the preview for a URL, scraping and caching
// it when the cached copy is missing or stale.
func FetchLinkPreview(c *gin.Context) {
	userID := currentUserID(c)
	if userID == "" {
		notAuthenticated(c)
		return
	}
	if previews == nil {
		badRequest(c, "Link previews are not configured.")
		return
	}

	var req struct {
		URL string `json:"url" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid URL.")
		return
	}

	preview, err := previews.Fetch(c.Request.Context(), req.URL)
	if err != nil {
		if err.Error() == "Invalid URL." {
			badRequest(c, err.Error())
			return
		}
		dbError(c, err)
		return
	}

	c.JSON(http.StatusOK, api.LinkPreviewResponse{Success: true, Preview: *preview})
}
