package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"draftdesk.app/server/internal/canvas"
	"draftdesk.app/server/internal/service"
)

// Canvas credentials ride on every request; nothing is stored server-side.
const (
	headerCanvasURL   = "X-Canvas-Url"
	headerCanvasToken = "X-Canvas-Token"
)

// sessionFromHeaders extracts the per-request Canvas session. On missing
// credentials it writes a 400 and returns ok=false; no upstream call is made.
func sessionFromHeaders(c *gin.Context) (canvas.Session, bool) {
	session := canvas.Session{
		BaseURL: c.GetHeader(headerCanvasURL),
		Token:   c.GetHeader(headerCanvasToken),
	}
	if !session.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing Canvas credentials"})
		return canvas.Session{}, false
	}
	return session, true
}

// respondError maps domain errors to HTTP responses with enough detail
// (status, resource path) for the caller to render a meaningful message.
func respondError(c *gin.Context, err error) {
	var rateLimited *canvas.RateLimitError
	if errors.As(err, &rateLimited) {
		c.JSON(http.StatusTooManyRequests, gin.H{
			"error": "Canvas rate limit exceeded",
			"path":  rateLimited.Path,
		})
		return
	}

	var upstream *canvas.UpstreamError
	if errors.As(err, &upstream) {
		c.JSON(http.StatusBadGateway, gin.H{
			"error":           "Canvas request failed",
			"upstream_status": upstream.Status,
			"path":            upstream.Path,
			"body":            upstream.Body,
		})
		return
	}

	if errors.Is(err, service.ErrUnsupportedFileType) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
}
