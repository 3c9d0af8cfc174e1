// Package retry provides a bounded retry loop for transient transport
// failures. Transient means the transport layer hiccupped (TLS record
// corruption, broken pipe, connection reset) and waiting is likely to
// help; anything the remote service itself decided is never retried.
package retry

import (
	"crypto/tls"
	"errors"
	"fmt"
	"syscall"
	"time"
)

// Defaults used when callers pass zero values.
const (
	DefaultAttempts = 5
	DefaultBackoff  = 1 * time.Second
)

// Exhausted is returned when every attempt failed with a transient error.
// It carries only the final attempt's message: the original error chain is
// intentionally dropped, which callers must treat as a documented contract
// rather than a bug. Check for it with errors.As.
type Exhausted struct {
	Attempts    int
	LastMessage string
}

func (e *Exhausted) Error() string {
	return fmt.Sprintf("retry: %d attempts exhausted, last error: %s", e.Attempts, e.LastMessage)
}

// Do invokes op until it succeeds, fails non-transiently, or attempts run
// out. A fixed backoff sleep separates attempts. attempts counts every
// invocation including the first; values < 1 fall back to DefaultAttempts,
// a zero backoff falls back to DefaultBackoff.
//
// sleep is called to wait between attempts; nil means time.Sleep. Tests
// inject a recording function to avoid real delays.
func Do(op func() error, attempts int, backoff time.Duration, sleep func(time.Duration)) error {
	if attempts < 1 {
		attempts = DefaultAttempts
	}

	if backoff <= 0 {
		backoff = DefaultBackoff
	}

	if sleep == nil {
		sleep = time.Sleep
	}

	var lastMessage string

	for i := 0; i < attempts; i++ {
		err := op()
		if err == nil {
			return nil
		}

		if !IsTransient(err) {
			return err
		}

		lastMessage = err.Error()
		sleep(backoff)
	}

	return &Exhausted{Attempts: attempts, LastMessage: lastMessage}
}

// IsTransient reports whether err is a transport-layer failure worth
// retrying: a secure-channel error or a broken-pipe/connection-reset.
// The check traverses wrapped chains, so errors wrapped by net/http
// (*url.Error, *net.OpError, *os.SyscallError) are classified correctly.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, syscall.EPIPE) || errors.Is(err, syscall.ECONNRESET) {
		return true
	}

	var recordErr tls.RecordHeaderError
	if errors.As(err, &recordErr) {
		return true
	}

	var alertErr tls.AlertError

	return errors.As(err, &alertErr)
}
