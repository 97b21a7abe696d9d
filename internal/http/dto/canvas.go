package dto

// CommentRequest attaches a text comment to one student's submission.
// DryRun computes and reports the write without performing it.
type CommentRequest struct {
	CourseID     int64  `json:"course_id" binding:"required"`
	AssignmentID int64  `json:"assignment_id" binding:"required"`
	UserID       int64  `json:"user_id" binding:"required"`
	Comment      string `json:"comment" binding:"required"`
	DryRun       bool   `json:"dry_run"`
}

type FileTextResponse struct {
	Text string `json:"text"`
}
