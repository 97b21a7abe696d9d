package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"draftdesk.app/server/internal/canvas"
)

// ErrUnsupportedFileType is returned when an attachment's extension is not
// on the allow-list.
var ErrUnsupportedFileType = errors.New("unsupported file type")

// CanvasService is the caller-facing surface over the Canvas client,
// consumed by the HTTP shell. Credentials ride in the Session on every call.
type CanvasService interface {
	GetSelf(ctx context.Context, session canvas.Session) (*canvas.User, error)
	ListCourses(ctx context.Context, session canvas.Session) ([]canvas.Course, error)
	ListAssignments(ctx context.Context, session canvas.Session, courseID int64) ([]canvas.Assignment, error)
	ListSubmissions(ctx context.Context, session canvas.Session, courseID, assignmentID int64, includeComments bool) ([]canvas.Submission, error)
	FetchAttachmentText(ctx context.Context, session canvas.Session, fileURL, filename string) (string, error)
	PostComment(ctx context.Context, session canvas.Session, params PostCommentParams) (*PostReceipt, error)
}

type PostCommentParams struct {
	CourseID     int64
	AssignmentID int64
	UserID       int64
	Comment      string
	DryRun       bool
}

// PostReceipt reports what happened, or with DryRun what would have
// happened: the dry-run path short-circuits before any network write.
type PostReceipt struct {
	OK        bool                `json:"ok"`
	DryRun    bool                `json:"dry_run,omitempty"`
	WouldPost *PostCommentPreview `json:"would_post,omitempty"`
}

type PostCommentPreview struct {
	CourseID     int64  `json:"course_id"`
	AssignmentID int64  `json:"assignment_id"`
	UserID       int64  `json:"user_id"`
	Comment      string `json:"comment"`
}

type canvasService struct {
	client      *canvas.Client
	allowedExts []string
}

func NewCanvasService(client *canvas.Client, allowedExts []string) CanvasService {
	if len(allowedExts) == 0 {
		allowedExts = DefaultAllowedExtensions
	}
	return &canvasService{client: client, allowedExts: allowedExts}
}

func (s *canvasService) GetSelf(ctx context.Context, session canvas.Session) (*canvas.User, error) {
	return s.client.GetSelf(ctx, session)
}

func (s *canvasService) ListCourses(ctx context.Context, session canvas.Session) ([]canvas.Course, error) {
	return s.client.ListCourses(ctx, session)
}

func (s *canvasService) ListAssignments(ctx context.Context, session canvas.Session, courseID int64) ([]canvas.Assignment, error) {
	return s.client.ListAssignments(ctx, session, courseID)
}

func (s *canvasService) ListSubmissions(ctx context.Context, session canvas.Session, courseID, assignmentID int64, includeComments bool) ([]canvas.Submission, error) {
	return s.client.ListSubmissions(ctx, session, courseID, assignmentID, includeComments)
}

func (s *canvasService) FetchAttachmentText(ctx context.Context, session canvas.Session, fileURL, filename string) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if !ExtensionAllowed(filename, s.allowedExts) {
		return "", fmt.Errorf("%w: %q (allowed: %s)", ErrUnsupportedFileType, ext, strings.Join(s.allowedExts, ", "))
	}
	return s.client.DownloadAttachment(ctx, session, fileURL)
}

func (s *canvasService) PostComment(ctx context.Context, session canvas.Session, params PostCommentParams) (*PostReceipt, error) {
	preview := &PostCommentPreview{
		CourseID:     params.CourseID,
		AssignmentID: params.AssignmentID,
		UserID:       params.UserID,
		Comment:      params.Comment,
	}

	if params.DryRun {
		slog.InfoContext(ctx, "dry run, skipping comment post",
			"course_id", params.CourseID,
			"assignment_id", params.AssignmentID,
			"user_id", params.UserID)
		return &PostReceipt{OK: true, DryRun: true, WouldPost: preview}, nil
	}

	if err := s.client.PostComment(ctx, session, params.CourseID, params.AssignmentID, params.UserID, params.Comment); err != nil {
		return nil, err
	}
	return &PostReceipt{OK: true}, nil
}
