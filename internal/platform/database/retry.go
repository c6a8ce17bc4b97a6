package database

import (
	"context"
	"database/sql/driver"
	"errors"
	"io"
	"log"
	"net"
	"syscall"
	"time"

	"github.com/cornucopia-market/cornucopia-backend/internal/platform/config"
	"github.com/lib/pq"
)

// RetryPolicy bounds the retries of transient connectivity failures.
type RetryPolicy struct {
	Attempts  int
	BaseDelay time.Duration
}

// ReadRetry is the policy repositories apply to idempotent read queries.
var ReadRetry = RetryPolicy{Attempts: 3, BaseDelay: 50 * time.Millisecond}

// PolicyFrom builds the retry policy from configuration.
func PolicyFrom(cfg config.Config) RetryPolicy {
	return RetryPolicy{Attempts: cfg.Database.RetryAttempts, BaseDelay: cfg.Database.RetryBaseDelay}
}

// WithRetry runs fn, retrying with exponential backoff while it fails with a
// transient error. Any other error is returned immediately.
func WithRetry(ctx context.Context, p RetryPolicy, fn func(ctx context.Context) error) error {
	attempts := p.Attempts
	if attempts < 1 {
		attempts = 1
	}
	delay := p.BaseDelay

	var err error
	for i := 0; i < attempts; i++ {
		if err = fn(ctx); err == nil || !IsTransient(err) {
			return err
		}
		if i == attempts-1 {
			break
		}
		log.Printf("database: transient failure (attempt %d/%d), retrying in %s: %v", i+1, attempts, delay, err)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
	}
	return err
}

// IsTransient reports whether err is a connectivity failure worth retrying.
// Constraint violations, serialization conflicts and application errors are
// not transient.
func IsTransient(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, io.ErrUnexpectedEOF) ||
		errors.Is(err, syscall.ECONNREFUSED) || errors.Is(err, syscall.ECONNRESET) {
		return true
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		// class 08: connection exception; 57P01..57P03: server shutting down or starting
		return pqErr.Code.Class() == "08" ||
			pqErr.Code == "57P01" || pqErr.Code == "57P02" || pqErr.Code == "57P03"
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}
