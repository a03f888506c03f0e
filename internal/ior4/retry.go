package ior4

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	mssql "github.com/microsoft/go-mssqldb"
)

// sqlServerDataMovement is SQL Server error 601: "Could not continue
// scan with NOLOCK due to data movement". It happens when a
// concurrent writer moves pages under a dirty-read scan and is safe
// to retry with the identical query.
const sqlServerDataMovement = 601

// retryPolicy bounds retries of transient source read failures.
// All other failures propagate immediately as fatal for the run.
type retryPolicy struct {
	attempts int
	delay    time.Duration
}

func newRetryPolicy(attempts int, delay time.Duration) retryPolicy {
	if attempts < 1 {
		attempts = 1
	}
	return retryPolicy{attempts: attempts, delay: delay}
}

// transient reports whether an error is the retryable data-movement
// condition.
func (retryPolicy) transient(err error) bool {
	var sqlErr mssql.Error
	if errors.As(err, &sqlErr) {
		return sqlErr.Number == sqlServerDataMovement
	}
	// Some drivers flatten the error; fall back to the message.
	return strings.Contains(err.Error(), "due to data movement")
}

// run executes fn, retrying the identical operation on transient
// failures up to the attempt bound with a fixed backoff delay.
func (p retryPolicy) run(ctx context.Context, what string, fn func() error) error {
	var err error
	for attempt := 1; attempt <= p.attempts; attempt++ {
		err = fn()
		if err == nil {
			return nil
		}
		if !p.transient(err) {
			return err
		}
		if attempt == p.attempts {
			break
		}
		slog.Warn("Transient source read failure, retrying",
			"query", what,
			"attempt", attempt,
			"max_attempts", p.attempts,
			"delay", p.delay.String(),
		)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(p.delay):
		}
	}
	return RetryExhaustedError(what, p.attempts, err)
}
