package canvas

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"draftdesk.app/server/core/config"
)

// Client talks to the Canvas REST API. It holds no credentials and no
// per-session state: callers pass a Session into every operation.
type Client struct {
	httpClient *http.Client
	perPage    int
	backoff    BackoffPolicy
	sleep      SleepFunc
}

type Option func(*Client)

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.httpClient = h }
}

func WithSleep(s SleepFunc) Option {
	return func(c *Client) { c.sleep = s }
}

func WithBackoff(p BackoffPolicy) Option {
	return func(c *Client) { c.backoff = p }
}

func New(cfg config.CanvasConfig, opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: time.Duration(cfg.RequestTimeout) * time.Second},
		perPage:    cfg.PerPage,
		backoff:    NewBackoffPolicy(cfg.MaxRetries, time.Duration(cfg.BackoffBaseMs)*time.Millisecond),
		sleep:      sleepWithContext,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// do performs a single Canvas call under the backoff policy. The request
// body, when present, is re-materialized per attempt.
func (c *Client) do(ctx context.Context, session Session, method, rawURL string, payload []byte) (*http.Response, error) {
	for attempt := 0; attempt < c.backoff.MaxAttempts; attempt++ {
		var body io.Reader
		if payload != nil {
			body = bytes.NewReader(payload)
		}

		req, err := http.NewRequestWithContext(ctx, method, rawURL, body)
		if err != nil {
			return nil, fmt.Errorf("building canvas request: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+session.Token)
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("canvas request to %s: %w", rawURL, err)
		}

		if Retryable(resp.StatusCode, resp.Header.Get("X-Rate-Limit-Remaining")) {
			io.Copy(io.Discard, resp.Body) //nolint:errcheck
			resp.Body.Close()

			delay := c.backoff.Delay(attempt)
			slog.DebugContext(ctx, "canvas rate limited, backing off",
				"status", resp.StatusCode,
				"attempt", attempt+1,
				"delay_ms", delay.Milliseconds())
			if err := c.sleep(ctx, delay); err != nil {
				return nil, err
			}
			continue
		}

		return resp, nil
	}

	return nil, &RateLimitError{Path: rawURL, Attempts: c.backoff.MaxAttempts}
}

// get performs a non-paginated GET and decodes the JSON response into out.
func (c *Client) get(ctx context.Context, session Session, rawURL, path string, out any) error {
	resp, err := c.do(ctx, session, http.MethodGet, rawURL, nil)
	if err != nil {
		return err
	}

	body, err := readBody(resp)
	if err != nil {
		return fmt.Errorf("reading response from %s: %w", path, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &UpstreamError{Status: resp.StatusCode, Body: string(body), Path: path}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decoding response from %s: %w", path, err)
	}
	return nil
}

// GetSelf returns the identity behind the session token. The UI uses this
// to learn the teacher's Canvas user id.
func (c *Client) GetSelf(ctx context.Context, session Session) (*User, error) {
	u, err := apiURL(session, "/users/self")
	if err != nil {
		return nil, err
	}

	var user User
	if err := c.get(ctx, session, u.String(), "/users/self", &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// ListCourses returns every course the token's owner teaches, across all
// pages, in the server's order.
func (c *Client) ListCourses(ctx context.Context, session Session) ([]Course, error) {
	return fetchAll[Course](ctx, c, session, "/courses", url.Values{
		"enrollment_type": {"teacher"},
		"state":           {"available"},
	})
}

func (c *Client) ListAssignments(ctx context.Context, session Session, courseID int64) ([]Assignment, error) {
	path := fmt.Sprintf("/courses/%d/assignments", courseID)
	return fetchAll[Assignment](ctx, c, session, path, url.Values{
		"order_by": {"due_at"},
	})
}

// ListSubmissions returns every submission for the assignment, optionally
// including each submission's comment thread.
func (c *Client) ListSubmissions(ctx context.Context, session Session, courseID, assignmentID int64, includeComments bool) ([]Submission, error) {
	path := fmt.Sprintf("/courses/%d/assignments/%d/submissions", courseID, assignmentID)
	includes := []string{"user"}
	if includeComments {
		includes = append(includes, "submission_comments")
	}
	return fetchAll[Submission](ctx, c, session, path, url.Values{
		"include[]": includes,
	})
}

// DownloadAttachment fetches an attachment body as text. The URL comes from
// a Submission's attachment record and is already absolute.
func (c *Client) DownloadAttachment(ctx context.Context, session Session, fileURL string) (string, error) {
	resp, err := c.do(ctx, session, http.MethodGet, fileURL, nil)
	if err != nil {
		return "", err
	}

	body, err := readBody(resp)
	if err != nil {
		return "", fmt.Errorf("reading attachment: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &UpstreamError{Status: resp.StatusCode, Body: string(body), Path: fileURL}
	}
	return string(body), nil
}

// PostComment attaches a text comment to a student's submission.
func (c *Client) PostComment(ctx context.Context, session Session, courseID, assignmentID, userID int64, comment string) error {
	path := fmt.Sprintf("/courses/%d/assignments/%d/submissions/%d", courseID, assignmentID, userID)
	u, err := apiURL(session, path)
	if err != nil {
		return err
	}

	payload, err := json.Marshal(map[string]any{
		"comment": map[string]string{"text_comment": comment},
	})
	if err != nil {
		return fmt.Errorf("encoding comment payload: %w", err)
	}

	resp, err := c.do(ctx, session, http.MethodPut, u.String(), payload)
	if err != nil {
		return err
	}

	body, err := readBody(resp)
	if err != nil {
		return fmt.Errorf("reading response from %s: %w", path, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &UpstreamError{Status: resp.StatusCode, Body: string(body), Path: path}
	}

	slog.InfoContext(ctx, "comment posted",
		"course_id", courseID,
		"assignment_id", assignmentID,
		"user_id", userID)
	return nil
}

func readBody(resp *http.Response) ([]byte, error) {
	defer resp.Body.Close()
	return io.ReadAll(resp.Body)
}
