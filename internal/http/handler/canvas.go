package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"draftdesk.app/server/internal/http/dto"
	"draftdesk.app/server/internal/service"
)

type CanvasHandler struct {
	canvasService service.CanvasService
}

func NewCanvasHandler(canvasService service.CanvasService) *CanvasHandler {
	return &CanvasHandler{canvasService: canvasService}
}

func (h *CanvasHandler) Self(c *gin.Context) {
	ctx := c.Request.Context()

	session, ok := sessionFromHeaders(c)
	if !ok {
		return
	}

	user, err := h.canvasService.GetSelf(ctx, session)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

func (h *CanvasHandler) Courses(c *gin.Context) {
	ctx := c.Request.Context()

	session, ok := sessionFromHeaders(c)
	if !ok {
		return
	}

	courses, err := h.canvasService.ListCourses(ctx, session)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, courses)
}

func (h *CanvasHandler) Assignments(c *gin.Context) {
	ctx := c.Request.Context()

	session, ok := sessionFromHeaders(c)
	if !ok {
		return
	}

	courseID, ok := queryID(c, "course_id")
	if !ok {
		return
	}

	assignments, err := h.canvasService.ListAssignments(ctx, session, courseID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, assignments)
}

func (h *CanvasHandler) Submissions(c *gin.Context) {
	ctx := c.Request.Context()

	session, ok := sessionFromHeaders(c)
	if !ok {
		return
	}

	courseID, ok := queryID(c, "course_id")
	if !ok {
		return
	}
	assignmentID, ok := queryID(c, "assignment_id")
	if !ok {
		return
	}
	includeComments := c.Query("include_comments") == "true"

	submissions, err := h.canvasService.ListSubmissions(ctx, session, courseID, assignmentID, includeComments)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, submissions)
}

func (h *CanvasHandler) File(c *gin.Context) {
	ctx := c.Request.Context()

	session, ok := sessionFromHeaders(c)
	if !ok {
		return
	}

	fileURL := c.Query("url")
	if fileURL == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing url parameter"})
		return
	}
	filename := c.Query("filename")

	text, err := h.canvasService.FetchAttachmentText(ctx, session, fileURL, filename)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FileTextResponse{Text: text})
}

func (h *CanvasHandler) PostComment(c *gin.Context) {
	ctx := c.Request.Context()

	session, ok := sessionFromHeaders(c)
	if !ok {
		return
	}

	var req dto.CommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.WarnContext(ctx, "invalid comment request body", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	receipt, err := h.canvasService.PostComment(ctx, session, service.PostCommentParams{
		CourseID:     req.CourseID,
		AssignmentID: req.AssignmentID,
		UserID:       req.UserID,
		Comment:      req.Comment,
		DryRun:       req.DryRun,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, receipt)
}

func queryID(c *gin.Context, name string) (int64, bool) {
	raw := c.Query(name)
	if raw == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing " + name + " parameter"})
		return 0, false
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name + " parameter"})
		return 0, false
	}
	return id, true
}
