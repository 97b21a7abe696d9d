package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"draftdesk.app/server/common/id"
	"draftdesk.app/server/common/llm"
	"draftdesk.app/server/common/logger"
	"draftdesk.app/server/internal/canvas"
	"draftdesk.app/server/internal/redact"
)

type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// DraftComment is one generated draft, addressed to one student.
type DraftComment struct {
	UserID     int64      `json:"user_id"`
	Draft      string     `json:"draft"`
	Reasoning  string     `json:"reasoning"`
	Confidence Confidence `json:"confidence"`
}

// DraftContext is the optional shared context for a generation run.
type DraftContext struct {
	Rubric       string
	StyleProfile string
	TeacherNotes string
}

// DraftBatch is the result of one generation run. Drafts are ordered
// identically to the input submissions, independent of completion timing.
type DraftBatch struct {
	BatchID int64          `json:"batch_id,string"`
	Drafts  []DraftComment `json:"drafts"`
}

// AttachmentFetcher is the slice of the Canvas client the draft service
// needs. Satisfied by *canvas.Client.
type AttachmentFetcher interface {
	DownloadAttachment(ctx context.Context, session canvas.Session, fileURL string) (string, error)
}

type DraftService interface {
	// GenerateDrafts resolves each submission's text source, redacts it
	// against the full roster, and requests one structured draft per
	// student. Submissions must already have passed the eligibility filter.
	GenerateDrafts(ctx context.Context, session canvas.Session, subs []EligibleSubmission, roster []redact.StudentInfo, dctx DraftContext) (*DraftBatch, error)
}

type draftService struct {
	llm           llm.Client // nil = no credential, deterministic stub drafts
	attachments   AttachmentFetcher
	maxConcurrent int
	maxTokens     int
	sleep         SleepFunc
}

type DraftOption func(*draftService)

func WithDraftSleep(s SleepFunc) DraftOption {
	return func(d *draftService) { d.sleep = s }
}

func NewDraftService(llmClient llm.Client, attachments AttachmentFetcher, maxConcurrent, maxTokens int, opts ...DraftOption) DraftService {
	if maxConcurrent <= 0 {
		maxConcurrent = 8
	}
	if maxTokens <= 0 {
		maxTokens = 1024
	}
	s := &draftService{
		llm:           llmClient,
		attachments:   attachments,
		maxConcurrent: maxConcurrent,
		maxTokens:     maxTokens,
		sleep:         sleepWithContext,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// draftPayload is the structured record requested from the model.
type draftPayload struct {
	Draft      string `json:"draft"`
	Reasoning  string `json:"reasoning"`
	Confidence string `json:"confidence" jsonschema:"enum=high,enum=medium,enum=low"`
}

var draftSchema = llm.GenerateSchema[draftPayload]()

func (s *draftService) GenerateDrafts(ctx context.Context, session canvas.Session, subs []EligibleSubmission, roster []redact.StudentInfo, dctx DraftContext) (*DraftBatch, error) {
	batchID := id.New()
	ctx = logger.WithLogFields(ctx, logger.LogFields{
		BatchID:   logger.Int64(batchID),
		Component: "draftdesk.service.drafts",
	})
	slog.InfoContext(ctx, "generating drafts", "submissions", len(subs), "roster_size", len(roster))

	// Fan out per submission, fan in by input index. Appending as responses
	// arrive would leak completion order into the result, so each task
	// writes its own pre-assigned slot.
	results := make([]DraftComment, len(subs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.maxConcurrent)

	for i, sub := range subs {
		g.Go(func() error {
			draft, err := s.generateOne(gctx, session, sub, roster, dctx)
			if err != nil {
				return fmt.Errorf("drafting for user %d: %w", sub.UserID, err)
			}
			results[i] = *draft
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "drafts generated", "count", len(results))
	return &DraftBatch{BatchID: batchID, Drafts: results}, nil
}

func (s *draftService) generateOne(ctx context.Context, session canvas.Session, sub EligibleSubmission, roster []redact.StudentInfo, dctx DraftContext) (*DraftComment, error) {
	ctx = logger.WithLogFields(ctx, logger.LogFields{UserID: logger.Int64(sub.UserID)})

	text := sub.Body
	if sub.Attachment != nil {
		downloaded, err := s.attachments.DownloadAttachment(ctx, session, sub.Attachment.URL)
		if err != nil {
			return nil, err
		}
		text = downloaded
	}

	// The full roster, not just this student's record: a submission may
	// reference classmates.
	redacted := redact.Redact(text, roster)

	if s.llm == nil {
		draft := stubDraft(sub.UserID, redacted)
		return &draft, nil
	}

	content, err := completeWithRetry(ctx, s.llm, llm.Request{
		SystemPrompt: draftSystemPrompt,
		UserPrompt:   draftPrompt(redacted, dctx),
		SchemaName:   "draft_comment",
		Schema:       draftSchema,
		MaxTokens:    s.maxTokens,
	}, s.sleep)
	if err != nil {
		return nil, err
	}

	var payload draftPayload
	if err := json.Unmarshal([]byte(content), &payload); err != nil {
		// Recoverable degradation: keep the raw text as the draft and
		// downgrade confidence instead of failing the submission.
		slog.WarnContext(ctx, "model returned unstructured output, using raw text", "error", err)
		return &DraftComment{
			UserID:     sub.UserID,
			Draft:      content,
			Reasoning:  "Model returned unstructured output; raw text used as draft.",
			Confidence: ConfidenceLow,
		}, nil
	}

	return &DraftComment{
		UserID:     sub.UserID,
		Draft:      payload.Draft,
		Reasoning:  payload.Reasoning,
		Confidence: parseConfidence(payload.Confidence),
	}, nil
}

func parseConfidence(s string) Confidence {
	switch Confidence(strings.ToLower(s)) {
	case ConfidenceHigh:
		return ConfidenceHigh
	case ConfidenceMedium:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}

// stubDraft mirrors the drafting service's output shape when no credential
// is configured, so the preview flow stays usable end to end.
func stubDraft(userID int64, text string) DraftComment {
	wordCount := len(strings.Fields(text))
	detail := "brief"
	if wordCount > 100 {
		detail = "detailed"
	}
	return DraftComment{
		UserID:     userID,
		Draft:      fmt.Sprintf("[DRAFT] Good work on this %s submission. Consider expanding on your main argument and providing more specific examples to strengthen your analysis. Keep up the effort!", detail),
		Reasoning:  fmt.Sprintf("Placeholder comment for a %d-word submission; no generative credentials configured.", wordCount),
		Confidence: ConfidenceMedium,
	}
}

const draftSystemPrompt = `You are drafting feedback comments for an instructor reviewing student work. Ground every statement in the submission text you are given and never invent facts. Never refer to the student by name or any identifier; write as if addressing them directly. Respond with JSON matching the requested schema: a draft comment, your reasoning, and a confidence level of high, medium, or low.`

func draftPrompt(submissionText string, dctx DraftContext) string {
	var b strings.Builder

	if dctx.Rubric != "" {
		fmt.Fprintf(&b, "RUBRIC:\n%s\n\n", dctx.Rubric)
	}
	if dctx.StyleProfile != "" {
		fmt.Fprintf(&b, "WRITE IN THIS STYLE:\n%s\n\n", dctx.StyleProfile)
	}
	if dctx.TeacherNotes != "" {
		fmt.Fprintf(&b, "INSTRUCTOR NOTES:\n%s\n\n", dctx.TeacherNotes)
	}
	fmt.Fprintf(&b, "SUBMISSION:\n%s", submissionText)

	return b.String()
}
