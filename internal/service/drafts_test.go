package service_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"draftdesk.app/server/common/id"
	"draftdesk.app/server/common/llm"
	"draftdesk.app/server/internal/canvas"
	"draftdesk.app/server/internal/redact"
	"draftdesk.app/server/internal/service"
)

var _ = Describe("DraftService", func() {
	var (
		svc         service.DraftService
		mock        *mockLLM
		attachments *mockAttachmentFetcher
		ctx         context.Context
		session     canvas.Session
	)

	BeforeEach(func() {
		ctx = context.Background()
		session = canvas.Session{BaseURL: "https://school.test", Token: "t"}
		mock = &mockLLM{}
		attachments = &mockAttachmentFetcher{}
		svc = service.NewDraftService(mock, attachments, 8, 1024,
			service.WithDraftSleep(func(_ context.Context, _ time.Duration) error { return nil }))

		err := id.Init(1)
		Expect(err).NotTo(HaveOccurred())
	})

	Describe("GenerateDrafts", func() {
		It("returns drafts in submission order regardless of completion timing", func() {
			subs := make([]service.EligibleSubmission, 5)
			for i := range subs {
				subs[i] = service.EligibleSubmission{
					UserID: int64(i + 1),
					Body:   fmt.Sprintf("submission-%d", i+1),
				}
			}

			// Earlier submissions take longest, so completion order is the
			// reverse of input order.
			mock.completeFn = func(_ context.Context, req llm.Request) (string, error) {
				var n int
				fmt.Sscanf(req.UserPrompt[strings.Index(req.UserPrompt, "submission-"):], "submission-%d", &n)
				time.Sleep(time.Duration(len(subs)-n) * 20 * time.Millisecond)
				return fmt.Sprintf(`{"draft":"draft for %d","reasoning":"r","confidence":"high"}`, n), nil
			}

			batch, err := svc.GenerateDrafts(ctx, session, subs, nil, service.DraftContext{})

			Expect(err).NotTo(HaveOccurred())
			Expect(batch.BatchID).NotTo(BeZero())
			Expect(batch.Drafts).To(HaveLen(5))
			for i, draft := range batch.Drafts {
				Expect(draft.UserID).To(Equal(int64(i + 1)))
				Expect(draft.Draft).To(Equal(fmt.Sprintf("draft for %d", i+1)))
			}
		})

		It("redacts submission text against the full roster before prompting", func() {
			roster := []redact.StudentInfo{
				{Name: "John Smith", UserID: 1, Email: "john@x.com"},
				{Name: "Mary Jones", UserID: 2},
			}
			subs := []service.EligibleSubmission{
				{UserID: 1, Body: "John Smith worked with Mary on this. Contact john@x.com."},
			}

			var prompt string
			mock.completeFn = func(_ context.Context, req llm.Request) (string, error) {
				prompt = req.UserPrompt
				return `{"draft":"d","reasoning":"r","confidence":"medium"}`, nil
			}

			_, err := svc.GenerateDrafts(ctx, session, subs, roster, service.DraftContext{})

			Expect(err).NotTo(HaveOccurred())
			Expect(prompt).NotTo(ContainSubstring("John"))
			Expect(prompt).NotTo(ContainSubstring("Mary"))
			Expect(prompt).NotTo(ContainSubstring("john@x.com"))
			Expect(prompt).To(ContainSubstring("[STUDENT] worked with [STUDENT] on this. Contact [EMAIL]."))
		})

		It("passes shared context sections into the prompt", func() {
			var req llm.Request
			mock.completeFn = func(_ context.Context, r llm.Request) (string, error) {
				req = r
				return `{"draft":"d","reasoning":"r","confidence":"high"}`, nil
			}

			_, err := svc.GenerateDrafts(ctx, session,
				[]service.EligibleSubmission{{UserID: 1, Body: "the essay"}},
				nil,
				service.DraftContext{
					Rubric:       "Clarity 10pts",
					StyleProfile: "Warm, praise first",
					TeacherNotes: "Focus on thesis statements",
				})

			Expect(err).NotTo(HaveOccurred())
			Expect(req.UserPrompt).To(ContainSubstring("RUBRIC:\nClarity 10pts"))
			Expect(req.UserPrompt).To(ContainSubstring("WRITE IN THIS STYLE:\nWarm, praise first"))
			Expect(req.UserPrompt).To(ContainSubstring("INSTRUCTOR NOTES:\nFocus on thesis statements"))
			Expect(req.UserPrompt).To(ContainSubstring("SUBMISSION:\nthe essay"))
			Expect(req.SchemaName).To(Equal("draft_comment"))
			Expect(req.Schema).NotTo(BeNil())
		})

		It("downloads attachment text when the submission has no inline body", func() {
			attachments.downloadFn = func(_ context.Context, _ canvas.Session, fileURL string) (string, error) {
				Expect(fileURL).To(Equal("https://school.test/files/9/download"))
				return "print('hello')", nil
			}

			var prompt string
			mock.completeFn = func(_ context.Context, req llm.Request) (string, error) {
				prompt = req.UserPrompt
				return `{"draft":"d","reasoning":"r","confidence":"high"}`, nil
			}

			subs := []service.EligibleSubmission{{
				UserID:     3,
				Attachment: &canvas.Attachment{ID: 9, Filename: "hw.py", URL: "https://school.test/files/9/download"},
			}}

			_, err := svc.GenerateDrafts(ctx, session, subs, nil, service.DraftContext{})

			Expect(err).NotTo(HaveOccurred())
			Expect(prompt).To(ContainSubstring("print('hello')"))
		})

		Context("when the model returns unstructured output", func() {
			It("keeps the raw text as a low-confidence draft", func() {
				mock.completeFn = func(_ context.Context, _ llm.Request) (string, error) {
					return "Sure! Here's my feedback: nice job overall.", nil
				}

				batch, err := svc.GenerateDrafts(ctx, session,
					[]service.EligibleSubmission{{UserID: 7, Body: "text"}},
					nil, service.DraftContext{})

				Expect(err).NotTo(HaveOccurred())
				Expect(batch.Drafts).To(HaveLen(1))
				Expect(batch.Drafts[0].Draft).To(Equal("Sure! Here's my feedback: nice job overall."))
				Expect(batch.Drafts[0].Confidence).To(Equal(service.ConfidenceLow))
				Expect(batch.Drafts[0].Reasoning).To(ContainSubstring("unstructured output"))
			})
		})

		Context("when the model fails transiently", func() {
			It("retries with backoff before succeeding", func() {
				var sleeps []time.Duration
				svc = service.NewDraftService(mock, attachments, 8, 1024,
					service.WithDraftSleep(func(_ context.Context, d time.Duration) error {
						sleeps = append(sleeps, d)
						return nil
					}))

				var attempts int32
				mock.completeFn = func(_ context.Context, _ llm.Request) (string, error) {
					if atomic.AddInt32(&attempts, 1) < 3 {
						return "", errors.New("connection reset by peer")
					}
					return `{"draft":"recovered","reasoning":"r","confidence":"high"}`, nil
				}

				batch, err := svc.GenerateDrafts(ctx, session,
					[]service.EligibleSubmission{{UserID: 1, Body: "text"}},
					nil, service.DraftContext{})

				Expect(err).NotTo(HaveOccurred())
				Expect(batch.Drafts[0].Draft).To(Equal("recovered"))
				Expect(mock.calls()).To(Equal(int32(3)))
				Expect(sleeps).To(Equal([]time.Duration{time.Second, 2 * time.Second}))
			})

			It("gives up once the retry budget is spent", func() {
				svc = service.NewDraftService(mock, attachments, 8, 1024,
					service.WithDraftSleep(func(_ context.Context, _ time.Duration) error { return nil }))

				mock.completeFn = func(_ context.Context, _ llm.Request) (string, error) {
					return "", errors.New("bad gateway")
				}

				batch, err := svc.GenerateDrafts(ctx, session,
					[]service.EligibleSubmission{{UserID: 1, Body: "text"}},
					nil, service.DraftContext{})

				Expect(err).To(HaveOccurred())
				Expect(err.Error()).To(ContainSubstring("after 3 attempts"))
				Expect(batch).To(BeNil())
				Expect(mock.calls()).To(Equal(int32(3)))
			})

			It("does not retry after context cancellation", func() {
				svc = service.NewDraftService(mock, attachments, 8, 1024,
					service.WithDraftSleep(func(_ context.Context, _ time.Duration) error {
						Fail("should not sleep for a cancelled context")
						return nil
					}))

				mock.completeFn = func(_ context.Context, _ llm.Request) (string, error) {
					return "", context.Canceled
				}

				batch, err := svc.GenerateDrafts(ctx, session,
					[]service.EligibleSubmission{{UserID: 1, Body: "text"}},
					nil, service.DraftContext{})

				Expect(err).To(HaveOccurred())
				Expect(batch).To(BeNil())
				Expect(mock.calls()).To(Equal(int32(1)))
			})
		})

		Context("when the model transport keeps failing", func() {
			It("fails the whole batch", func() {
				mock.completeFn = func(_ context.Context, req llm.Request) (string, error) {
					if strings.Contains(req.UserPrompt, "second") {
						return "", errors.New("connection reset")
					}
					return `{"draft":"d","reasoning":"r","confidence":"high"}`, nil
				}

				batch, err := svc.GenerateDrafts(ctx, session,
					[]service.EligibleSubmission{
						{UserID: 1, Body: "first"},
						{UserID: 2, Body: "second"},
					},
					nil, service.DraftContext{})

				Expect(err).To(HaveOccurred())
				Expect(err.Error()).To(ContainSubstring("drafting for user 2"))
				Expect(batch).To(BeNil())
			})
		})

		Context("when no generative client is configured", func() {
			It("produces placeholder drafts without any model calls", func() {
				svc = service.NewDraftService(nil, attachments, 8, 1024)

				batch, err := svc.GenerateDrafts(ctx, session,
					[]service.EligibleSubmission{
						{UserID: 1, Body: "short answer"},
						{UserID: 2, Body: strings.Repeat("word ", 150)},
					},
					nil, service.DraftContext{})

				Expect(err).NotTo(HaveOccurred())
				Expect(batch.Drafts).To(HaveLen(2))
				Expect(batch.Drafts[0].Draft).To(ContainSubstring("[DRAFT]"))
				Expect(batch.Drafts[0].Draft).To(ContainSubstring("brief"))
				Expect(batch.Drafts[1].Draft).To(ContainSubstring("detailed"))
				Expect(batch.Drafts[0].Confidence).To(Equal(service.ConfidenceMedium))
				Expect(mock.calls()).To(BeZero())
			})
		})

		Context("when the model reports an unknown confidence", func() {
			It("downgrades it to low", func() {
				mock.completeFn = func(_ context.Context, _ llm.Request) (string, error) {
					return `{"draft":"d","reasoning":"r","confidence":"very sure"}`, nil
				}

				batch, err := svc.GenerateDrafts(ctx, session,
					[]service.EligibleSubmission{{UserID: 1, Body: "text"}},
					nil, service.DraftContext{})

				Expect(err).NotTo(HaveOccurred())
				Expect(batch.Drafts[0].Confidence).To(Equal(service.ConfidenceLow))
			})
		})

		It("returns an empty batch for an empty submission list", func() {
			batch, err := svc.GenerateDrafts(ctx, session, nil, nil, service.DraftContext{})

			Expect(err).NotTo(HaveOccurred())
			Expect(batch.Drafts).To(BeEmpty())
			Expect(mock.calls()).To(BeZero())
		})
	})
})
