package logger

import "context"

type contextKey string

const logFieldsKey contextKey = "log_fields"

// LogFields contains structured fields automatically added to all logs within
// a context. Fields flow through context enrichment so business context
// (course_id, assignment_id, ...) shows up on every log line without each
// call site repeating it.
type LogFields struct {
	CourseID     *int64  // Canvas course ID
	AssignmentID *int64  // Canvas assignment ID
	UserID       *int64  // Canvas user ID (student)
	BatchID      *int64  // Draft generation batch ID
	Component    string  // Component name (e.g., "draftdesk.service.drafts")
}

// WithLogFields enriches context with structured log fields.
// Multiple calls merge fields, with newer non-nil/non-empty values taking
// precedence. Context timeouts and cancellation are preserved.
func WithLogFields(ctx context.Context, fields LogFields) context.Context {
	merged := mergeFields(GetLogFields(ctx), fields)
	return context.WithValue(ctx, logFieldsKey, merged)
}

// GetLogFields retrieves log fields from context.
// Returns empty LogFields if none are set.
func GetLogFields(ctx context.Context) LogFields {
	if fields, ok := ctx.Value(logFieldsKey).(LogFields); ok {
		return fields
	}
	return LogFields{}
}

func mergeFields(existing, next LogFields) LogFields {
	result := existing

	if next.CourseID != nil {
		result.CourseID = next.CourseID
	}
	if next.AssignmentID != nil {
		result.AssignmentID = next.AssignmentID
	}
	if next.UserID != nil {
		result.UserID = next.UserID
	}
	if next.BatchID != nil {
		result.BatchID = next.BatchID
	}
	if next.Component != "" {
		result.Component = next.Component
	}

	return result
}

// Int64 returns a pointer to v, for building LogFields inline.
func Int64(v int64) *int64 {
	return &v
}
