package canvas

import "fmt"

// UpstreamError is returned when Canvas answers with a non-success status
// after the backoff policy has given up. Partial results from earlier pages
// are never surfaced alongside it.
type UpstreamError struct {
	Status int
	Body   string
	Path   string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("canvas api %d on %s: %s", e.Status, e.Path, e.Body)
}

// RateLimitError is returned when the retry ceiling is exhausted under
// sustained throttling.
type RateLimitError struct {
	Path     string
	Attempts int
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("canvas api request failed after %d rate-limited attempts: %s", e.Attempts, e.Path)
}
