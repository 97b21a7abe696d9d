// Package redact strips known student identifiers from free text before it
// leaves the process. It performs no semantic PII detection: only the
// identifiers enumerated in the roster, plus a generic email shape, are
// replaced.
package redact

import (
	"regexp"
	"strconv"
	"strings"
)

const (
	PlaceholderStudent = "[STUDENT]"
	PlaceholderEmail   = "[EMAIL]"
	PlaceholderSISID   = "[SIS_ID]"
	PlaceholderUserID  = "[USER_ID]"
)

// Name tokens shorter than this are skipped to avoid mass false positives on
// common short words ("an", "li", ...).
const minNameTokenLen = 3

var emailPattern = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)

// StudentInfo is one roster entry, keyed uniquely by UserID within a run.
// Derived from submission owner references; never persisted.
type StudentInfo struct {
	Name   string `json:"name"`
	UserID int64  `json:"user_id"`
	SISID  string `json:"sis_id,omitempty"`
	Email  string `json:"email,omitempty"`
}

// Redact replaces every known identifier of every roster student with its
// placeholder. Pure function of (text, students); idempotent.
//
// Per student the passes run in a fixed precedence order: the full name
// first, then each name token, so a whole-name occurrence collapses to one
// placeholder while a lone surname still gets caught by the token pass.
func Redact(text string, students []StudentInfo) string {
	result := text

	for _, s := range students {
		if s.Name != "" {
			result = literalFold(s.Name).ReplaceAllString(result, PlaceholderStudent)
			for _, part := range strings.Fields(s.Name) {
				if len([]rune(part)) >= minNameTokenLen {
					result = wordFold(part).ReplaceAllString(result, PlaceholderStudent)
				}
			}
		}
		if s.Email != "" {
			result = literalFold(s.Email).ReplaceAllString(result, PlaceholderEmail)
		}
		if s.SISID != "" {
			result = strings.ReplaceAll(result, s.SISID, PlaceholderSISID)
		}
		result = word(strconv.FormatInt(s.UserID, 10)).ReplaceAllString(result, PlaceholderUserID)
	}

	// Last-resort sweep for addresses not tied to a known student.
	result = emailPattern.ReplaceAllString(result, PlaceholderEmail)

	return result
}

func literalFold(s string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)` + regexp.QuoteMeta(s))
}

func wordFold(s string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(s) + `\b`)
}

func word(s string) *regexp.Regexp {
	return regexp.MustCompile(`\b` + regexp.QuoteMeta(s) + `\b`)
}
