package service

import (
	"path/filepath"
	"slices"
	"strings"

	"draftdesk.app/server/internal/canvas"
	"draftdesk.app/server/internal/redact"
)

// DefaultAllowedExtensions lists the attachment types whose contents can be
// treated as a submission's text source.
var DefaultAllowedExtensions = []string{".py"}

// BuildRoster derives the redaction roster from submission owner references.
// Entries are unique per user id, in first-seen order.
func BuildRoster(subs []canvas.Submission) []redact.StudentInfo {
	seen := make(map[int64]bool, len(subs))
	roster := make([]redact.StudentInfo, 0, len(subs))

	for _, sub := range subs {
		if sub.User == nil || seen[sub.UserID] {
			continue
		}
		seen[sub.UserID] = true
		roster = append(roster, redact.StudentInfo{
			Name:   sub.User.Name,
			UserID: sub.UserID,
			SISID:  sub.User.SISUserID,
			Email:  sub.User.Email,
		})
	}

	return roster
}

// EligibleSubmission is a submission with a usable text source. Either Body
// is set (inline text) or Attachment points at the single code file to
// download; never both.
type EligibleSubmission struct {
	UserID     int64
	Body       string
	Attachment *canvas.Attachment
}

// FilterEligible keeps submissions that carry inline text or exactly one
// allowed-extension attachment, in input order. Anything else is an
// unsupported shape and is dropped silently; that is a filtering decision,
// not an error.
func FilterEligible(subs []canvas.Submission, allowedExts []string) []EligibleSubmission {
	var eligible []EligibleSubmission

	for _, sub := range subs {
		if strings.TrimSpace(sub.Body) != "" {
			eligible = append(eligible, EligibleSubmission{
				UserID: sub.UserID,
				Body:   sub.Body,
			})
			continue
		}
		if len(sub.Attachments) != 1 {
			continue
		}
		att := sub.Attachments[0]
		if !ExtensionAllowed(att.Filename, allowedExts) {
			continue
		}
		eligible = append(eligible, EligibleSubmission{
			UserID:     sub.UserID,
			Attachment: &att,
		})
	}

	return eligible
}

// ExtensionAllowed reports whether filename's extension is on the allow-list.
func ExtensionAllowed(filename string, allowedExts []string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return slices.Contains(allowedExts, ext)
}
