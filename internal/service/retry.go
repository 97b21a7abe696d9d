package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"draftdesk.app/server/common/llm"
)

// SleepFunc pauses between generative retry attempts. Injectable so tests
// run without wall-clock waits.
type SleepFunc func(ctx context.Context, d time.Duration) error

func sleepWithContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

const maxCompleteAttempts = 3

// completeWithRetry calls the generative service with exponential backoff
// (1s, 2s) on transient failures. Rate limits, server errors and transport
// failures are retried; context cancellation and client errors return
// immediately.
func completeWithRetry(ctx context.Context, client llm.Client, req llm.Request, sleep SleepFunc) (string, error) {
	var content string
	var err error

	for attempt := 0; attempt < maxCompleteAttempts; attempt++ {
		content, err = client.Complete(ctx, req)
		if err == nil {
			return content, nil
		}
		if !llm.IsRetryable(ctx, err) {
			return "", err
		}
		slog.WarnContext(ctx, "generative completion retry",
			"attempt", attempt+1,
			"error", err)
		if serr := sleep(ctx, time.Duration(1<<attempt)*time.Second); serr != nil {
			return "", serr
		}
	}

	return "", fmt.Errorf("generative completion after %d attempts: %w", maxCompleteAttempts, err)
}
