package canvas

import "time"

// Session carries the per-request Canvas credentials. There is no ambient or
// process-wide credential store: every operation takes a Session explicitly.
type Session struct {
	BaseURL string // e.g. "https://school.instructure.com"
	Token   string
}

func (s Session) Valid() bool {
	return s.BaseURL != "" && s.Token != ""
}

// Course is an immutable snapshot of a Canvas course. Never mutated locally.
type Course struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Code string `json:"course_code"`
}

type Assignment struct {
	ID                      int64    `json:"id"`
	Name                    string   `json:"name"`
	SubmissionTypes         []string `json:"submission_types"`
	HasSubmittedSubmissions bool     `json:"has_submitted_submissions"`
}

type User struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	ShortName string `json:"short_name,omitempty"`
	SISUserID string `json:"sis_user_id,omitempty"`
	Email     string `json:"email,omitempty"`
}

type Attachment struct {
	ID          int64  `json:"id"`
	Filename    string `json:"filename"`
	URL         string `json:"url"`
	ContentType string `json:"content-type"`
	Size        int64  `json:"size"`
}

type SubmissionComment struct {
	ID        int64     `json:"id"`
	AuthorID  int64     `json:"author_id"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
}

type Submission struct {
	ID             int64               `json:"id"`
	UserID         int64               `json:"user_id"`
	User           *User               `json:"user,omitempty"`
	SubmissionType string              `json:"submission_type"`
	Body           string              `json:"body"`
	WorkflowState  string              `json:"workflow_state"`
	SubmittedAt    *time.Time          `json:"submitted_at"`
	Late           bool                `json:"late"`
	Missing        bool                `json:"missing"`
	Attempt        int                 `json:"attempt"`
	Attachments    []Attachment        `json:"attachments,omitempty"`
	Comments       []SubmissionComment `json:"submission_comments,omitempty"`
}
