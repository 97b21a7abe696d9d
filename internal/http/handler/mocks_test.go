package handler_test

import (
	"context"

	"draftdesk.app/server/internal/canvas"
	"draftdesk.app/server/internal/redact"
	"draftdesk.app/server/internal/service"
)

type mockCanvasService struct {
	getSelfFn             func(ctx context.Context, session canvas.Session) (*canvas.User, error)
	listCoursesFn         func(ctx context.Context, session canvas.Session) ([]canvas.Course, error)
	listAssignmentsFn     func(ctx context.Context, session canvas.Session, courseID int64) ([]canvas.Assignment, error)
	listSubmissionsFn     func(ctx context.Context, session canvas.Session, courseID, assignmentID int64, includeComments bool) ([]canvas.Submission, error)
	fetchAttachmentTextFn func(ctx context.Context, session canvas.Session, fileURL, filename string) (string, error)
	postCommentFn         func(ctx context.Context, session canvas.Session, params service.PostCommentParams) (*service.PostReceipt, error)
}

func (m *mockCanvasService) GetSelf(ctx context.Context, session canvas.Session) (*canvas.User, error) {
	if m.getSelfFn != nil {
		return m.getSelfFn(ctx, session)
	}
	return &canvas.User{}, nil
}

func (m *mockCanvasService) ListCourses(ctx context.Context, session canvas.Session) ([]canvas.Course, error) {
	if m.listCoursesFn != nil {
		return m.listCoursesFn(ctx, session)
	}
	return nil, nil
}

func (m *mockCanvasService) ListAssignments(ctx context.Context, session canvas.Session, courseID int64) ([]canvas.Assignment, error) {
	if m.listAssignmentsFn != nil {
		return m.listAssignmentsFn(ctx, session, courseID)
	}
	return nil, nil
}

func (m *mockCanvasService) ListSubmissions(ctx context.Context, session canvas.Session, courseID, assignmentID int64, includeComments bool) ([]canvas.Submission, error) {
	if m.listSubmissionsFn != nil {
		return m.listSubmissionsFn(ctx, session, courseID, assignmentID, includeComments)
	}
	return nil, nil
}

func (m *mockCanvasService) FetchAttachmentText(ctx context.Context, session canvas.Session, fileURL, filename string) (string, error) {
	if m.fetchAttachmentTextFn != nil {
		return m.fetchAttachmentTextFn(ctx, session, fileURL, filename)
	}
	return "", nil
}

func (m *mockCanvasService) PostComment(ctx context.Context, session canvas.Session, params service.PostCommentParams) (*service.PostReceipt, error) {
	if m.postCommentFn != nil {
		return m.postCommentFn(ctx, session, params)
	}
	return &service.PostReceipt{OK: true}, nil
}

type mockDraftService struct {
	generateDraftsFn func(ctx context.Context, session canvas.Session, subs []service.EligibleSubmission, roster []redact.StudentInfo, dctx service.DraftContext) (*service.DraftBatch, error)
}

func (m *mockDraftService) GenerateDrafts(ctx context.Context, session canvas.Session, subs []service.EligibleSubmission, roster []redact.StudentInfo, dctx service.DraftContext) (*service.DraftBatch, error) {
	if m.generateDraftsFn != nil {
		return m.generateDraftsFn(ctx, session, subs, roster, dctx)
	}
	return &service.DraftBatch{}, nil
}

type mockStyleService struct {
	buildProfileFn        func(ctx context.Context, comments []string) (string, error)
	buildFromAssignmentFn func(ctx context.Context, session canvas.Session, courseID, assignmentID, teacherID int64) (*service.StyleResult, error)
}

func (m *mockStyleService) BuildProfile(ctx context.Context, comments []string) (string, error) {
	if m.buildProfileFn != nil {
		return m.buildProfileFn(ctx, comments)
	}
	return "", nil
}

func (m *mockStyleService) BuildFromAssignment(ctx context.Context, session canvas.Session, courseID, assignmentID, teacherID int64) (*service.StyleResult, error) {
	if m.buildFromAssignmentFn != nil {
		return m.buildFromAssignmentFn(ctx, session, courseID, assignmentID, teacherID)
	}
	return &service.StyleResult{}, nil
}
