package handler

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"draftdesk.app/server/internal/http/dto"
	"draftdesk.app/server/internal/service"
)

type DraftsHandler struct {
	draftService service.DraftService
	styleService service.StyleService
}

func NewDraftsHandler(draftService service.DraftService, styleService service.StyleService) *DraftsHandler {
	return &DraftsHandler{
		draftService: draftService,
		styleService: styleService,
	}
}

func (h *DraftsHandler) Generate(c *gin.Context) {
	ctx := c.Request.Context()

	session, ok := sessionFromHeaders(c)
	if !ok {
		return
	}

	var req dto.GenerateDraftsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.WarnContext(ctx, "invalid drafts request body", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if len(req.Submissions) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no submissions provided"})
		return
	}

	// Unsupported submission shapes are a filtering decision, not an error:
	// drafts are generated for the eligible remainder.
	eligible := req.Eligible()
	if dropped := len(req.Submissions) - len(eligible); dropped > 0 {
		slog.InfoContext(ctx, "ineligible submissions dropped",
			"dropped", dropped,
			"eligible", len(eligible))
	}

	batch, err := h.draftService.GenerateDrafts(ctx, session, eligible, req.Roster(), req.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, batch)
}

func (h *DraftsHandler) StyleGuide(c *gin.Context) {
	ctx := c.Request.Context()

	session, ok := sessionFromHeaders(c)
	if !ok {
		return
	}

	var req dto.StyleGuideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.WarnContext(ctx, "invalid style guide request body", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.styleService.BuildFromAssignment(ctx, session, req.CourseID, req.AssignmentID, req.TeacherID)
	if err != nil {
		respondError(c, err)
		return
	}

	if result.CommentCount == 0 {
		c.JSON(http.StatusOK, gin.H{
			"style_profile": "",
			"message":       "No teacher comments found on this assignment.",
		})
		return
	}

	c.JSON(http.StatusOK, result)
}
