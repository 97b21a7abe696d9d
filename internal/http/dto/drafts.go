package dto

import (
	"draftdesk.app/server/internal/canvas"
	"draftdesk.app/server/internal/redact"
	"draftdesk.app/server/internal/service"
)

type StyleGuideRequest struct {
	CourseID     int64 `json:"course_id" binding:"required"`
	AssignmentID int64 `json:"assignment_id" binding:"required"`
	TeacherID    int64 `json:"teacher_id" binding:"required"`
}

type GenerateDraftsRequest struct {
	Submissions  []DraftSubmission `json:"submissions" binding:"required"`
	Students     []Student         `json:"students"`
	Rubric       string            `json:"rubric"`
	StyleProfile string            `json:"style_profile"`
	TeacherNotes string            `json:"teacher_notes"`
}

// DraftSubmission carries one eligible submission: inline text, or the
// single code attachment to download.
type DraftSubmission struct {
	UserID     int64            `json:"user_id" binding:"required"`
	Text       string           `json:"text"`
	Attachment *DraftAttachment `json:"attachment,omitempty"`
}

type DraftAttachment struct {
	URL      string `json:"url" binding:"required"`
	Filename string `json:"filename" binding:"required"`
}

type Student struct {
	Name   string `json:"name"`
	UserID int64  `json:"user_id"`
	SISID  string `json:"sis_id,omitempty"`
	Email  string `json:"email,omitempty"`
}

func (r GenerateDraftsRequest) Roster() []redact.StudentInfo {
	roster := make([]redact.StudentInfo, 0, len(r.Students))
	for _, s := range r.Students {
		roster = append(roster, redact.StudentInfo{
			Name:   s.Name,
			UserID: s.UserID,
			SISID:  s.SISID,
			Email:  s.Email,
		})
	}
	return roster
}

// Eligible runs the request's submissions through the standard eligibility
// filter: inline text, or a single allowed-extension attachment. Anything
// else is dropped, not rejected.
func (r GenerateDraftsRequest) Eligible() []service.EligibleSubmission {
	subs := make([]canvas.Submission, 0, len(r.Submissions))
	for _, s := range r.Submissions {
		sub := canvas.Submission{
			UserID: s.UserID,
			Body:   s.Text,
		}
		if s.Attachment != nil {
			sub.Attachments = []canvas.Attachment{{
				URL:      s.Attachment.URL,
				Filename: s.Attachment.Filename,
			}}
		}
		subs = append(subs, sub)
	}
	return service.FilterEligible(subs, service.DefaultAllowedExtensions)
}

func (r GenerateDraftsRequest) Context() service.DraftContext {
	return service.DraftContext{
		Rubric:       r.Rubric,
		StyleProfile: r.StyleProfile,
		TeacherNotes: r.TeacherNotes,
	}
}
