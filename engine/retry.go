package engine

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/Farouk858/product-radar/models"
)

// RetryPolicy bounds how often a fetch is attempted.
type RetryPolicy struct {
	// Attempts is the total number of tries; values below 1 mean 1.
	Attempts int

	// Backoff is waited between attempts.
	Backoff time.Duration
}

// Retry fetches req with e until it succeeds or the policy is exhausted.
// It returns the number of attempts made alongside the result, so callers
// can report which attempt failed last. The returned error is always a
// *models.FetchError.
func Retry(ctx context.Context, e Engine, req *FetchRequest, policy RetryPolicy) (*FetchResult, int, error) {
	attempts := max(policy.Attempts, 1)

	var lastErr *models.FetchError
	for attempt := 1; attempt <= attempts; attempt++ {
		res, err := e.Fetch(ctx, req)
		if err == nil {
			return res, attempt, nil
		}
		lastErr = Categorize(err, models.ErrCodeTransport, "fetch failed")

		if attempt == attempts || !retryable(lastErr) || ctx.Err() != nil {
			return nil, attempt, lastErr
		}

		slog.Debug("fetch attempt failed, retrying",
			"url", req.URL,
			"engine", e.Name(),
			"attempt", attempt,
			"error", err,
		)

		if policy.Backoff > 0 {
			select {
			case <-ctx.Done():
				return nil, attempt, Categorize(ctx.Err(), models.ErrCodeTimeout, "retry aborted")
			case <-time.After(policy.Backoff):
			}
		}
	}
	return nil, attempts, lastErr
}

// retryable reports whether a failure may succeed on another attempt.
func retryable(err *models.FetchError) bool {
	switch err.Code {
	case models.ErrCodeInvalidInput, models.ErrCodeNotFound:
		return false
	}
	return !errors.Is(err, context.Canceled)
}
