package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"draftdesk.app/server/common/llm"
	"draftdesk.app/server/common/logger"
	"draftdesk.app/server/internal/canvas"
	"draftdesk.app/server/internal/redact"
)

// maxStyleSample caps how many comments feed one style analysis.
const maxStyleSample = 20

// ProfileUnavailable is returned when no generative credential is
// configured. An explicit sentinel, not an error: the rest of the pipeline
// keeps working without a profile.
const ProfileUnavailable = "[Style profile unavailable: no generative credentials configured]"

// SubmissionLister is the slice of the Canvas client the style service
// needs. Satisfied by *canvas.Client.
type SubmissionLister interface {
	ListSubmissions(ctx context.Context, session canvas.Session, courseID, assignmentID int64, includeComments bool) ([]canvas.Submission, error)
}

// StyleService derives a reusable writing-style profile from an
// instructor's own past comments.
type StyleService interface {
	// BuildProfile analyzes already-redacted comments. An empty set returns
	// the empty profile without touching the generative service.
	BuildProfile(ctx context.Context, comments []string) (string, error)

	// BuildFromAssignment pulls an assignment's comment threads, collects
	// the teacher-authored ones, redacts them against the roster, and
	// analyzes the result.
	BuildFromAssignment(ctx context.Context, session canvas.Session, courseID, assignmentID, teacherID int64) (*StyleResult, error)
}

type StyleResult struct {
	Profile      string `json:"style_profile"`
	CommentCount int    `json:"comment_count"`
}

type styleService struct {
	llm         llm.Client // nil when no credential is configured
	submissions SubmissionLister
	sleep       SleepFunc
}

type StyleOption func(*styleService)

func WithStyleSleep(s SleepFunc) StyleOption {
	return func(ss *styleService) { ss.sleep = s }
}

func NewStyleService(llmClient llm.Client, submissions SubmissionLister, opts ...StyleOption) StyleService {
	s := &styleService{llm: llmClient, submissions: submissions, sleep: sleepWithContext}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *styleService) BuildProfile(ctx context.Context, comments []string) (string, error) {
	if len(comments) == 0 {
		return "", nil
	}
	if s.llm == nil {
		return ProfileUnavailable, nil
	}

	sample := comments
	if len(sample) > maxStyleSample {
		sample = sample[:maxStyleSample]
	}

	ctx = logger.WithLogFields(ctx, logger.LogFields{Component: "draftdesk.service.style"})
	slog.InfoContext(ctx, "extracting style profile", "sample_size", len(sample))

	profile, err := completeWithRetry(ctx, s.llm, llm.Request{
		UserPrompt:  stylePrompt(sample),
		MaxTokens:   1024,
		Temperature: llm.Temp(0.3),
	}, s.sleep)
	if err != nil {
		return "", fmt.Errorf("style analysis: %w", err)
	}

	return strings.TrimSpace(profile), nil
}

func (s *styleService) BuildFromAssignment(ctx context.Context, session canvas.Session, courseID, assignmentID, teacherID int64) (*StyleResult, error) {
	ctx = logger.WithLogFields(ctx, logger.LogFields{
		CourseID:     logger.Int64(courseID),
		AssignmentID: logger.Int64(assignmentID),
		Component:    "draftdesk.service.style",
	})

	subs, err := s.submissions.ListSubmissions(ctx, session, courseID, assignmentID, true)
	if err != nil {
		return nil, err
	}

	roster := BuildRoster(subs)

	var teacherComments []string
	for _, sub := range subs {
		for _, c := range sub.Comments {
			if c.AuthorID != teacherID {
				continue
			}
			// Student PII is scrubbed before any comment text reaches the
			// generative service.
			teacherComments = append(teacherComments, redact.Redact(c.Comment, roster))
		}
	}

	if len(teacherComments) == 0 {
		slog.InfoContext(ctx, "no teacher comments found on assignment")
		return &StyleResult{}, nil
	}

	profile, err := s.BuildProfile(ctx, teacherComments)
	if err != nil {
		return nil, err
	}

	return &StyleResult{Profile: profile, CommentCount: len(teacherComments)}, nil
}

func stylePrompt(sample []string) string {
	var b strings.Builder

	fmt.Fprintf(&b, `You are analyzing a teacher's feedback comments to extract their writing style.

Below are %d comments this teacher has written on student work. Analyze them and produce a concise STYLE PROFILE that captures:

1. **Tone**: the overall tone (e.g., warm, formal, encouraging, direct, conversational)
2. **Structure**: the pattern the comments follow (e.g., praise, then constructive feedback, then next steps)
3. **Common phrases**: 3-5 phrases or sentence patterns this teacher frequently uses (do NOT include any student names or identifying info)
4. **Length**: typical comment length (brief, moderate, detailed)

TEACHER COMMENTS:
`, len(sample))

	for i, c := range sample {
		fmt.Fprintf(&b, "--- Comment %d ---\n%s\n\n", i+1, c)
	}

	b.WriteString(`IMPORTANT:
- Do NOT include any student names, IDs, or identifying information in the style profile.
- Do NOT quote comments verbatim. Only describe patterns.
- Keep the style profile to 5-10 bullet points.
- Respond with ONLY the style profile text, no JSON or markdown fences.`)

	return b.String()
}
