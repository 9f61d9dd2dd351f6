package client

import (
	"context"
	"errors"
	"time"

	"github.com/aws/smithy-go"
)

// IsAPIErrorCode reports whether err carries one of the given smithy API error codes.
func IsAPIErrorCode(err error, codes ...string) bool {
	if err == nil {
		return false
	}
	var apiErr smithy.APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	for _, code := range codes {
		if apiErr.ErrorCode() == code {
			return true
		}
	}
	return false
}

type permanentError struct {
	err error
}

func (p *permanentError) Error() string { return p.err.Error() }
func (p *permanentError) Unwrap() error { return p.err }

// Permanent marks err so that Retry returns it immediately.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// Retry calls fn until it succeeds, returns a Permanent error, or attempts run out.
// The wait starts at initial and doubles after every failure.
func Retry(ctx context.Context, attempts int, initial time.Duration, fn func() error) error {
	sleep := initial
	var lastErr error
	for i := 0; i < attempts; i++ {
		lastErr = fn()
		if lastErr == nil {
			return nil
		}
		var perm *permanentError
		if errors.As(lastErr, &perm) {
			return perm.err
		}
		if i == attempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(sleep):
			sleep = sleep * 2
		}
	}
	return lastErr
}
