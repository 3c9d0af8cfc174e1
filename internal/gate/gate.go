// Package gate serializes client operations behind a mutual exclusion
// lock. A nil *Gate is valid and means "disabled": operations execute
// directly with no locking and no trace events, and concurrent callers
// may run in parallel.
package gate

import (
	"io"
	"log/slog"
	"sync"
)

// Locker is the mutual exclusion primitive guarding client calls.
// MutexLocker is the in-process default; lockfile.Locker provides
// cross-process exclusion over the same interface.
type Locker interface {
	Lock() error
	Unlock() error
}

// Gate intercepts client operations so at most one runs at a time.
type Gate struct {
	locker Locker
	logger *slog.Logger
}

// New creates a gate around locker. A nil logger discards the lock trace
// events rather than failing or blocking.
func New(locker Locker, logger *slog.Logger) *Gate {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &Gate{locker: locker, logger: logger}
}

// Do runs fn under the lock. The lock is released on every exit path,
// including a panic inside fn. On a nil gate, fn runs directly.
func (g *Gate) Do(op string, fn func() error) error {
	if g == nil {
		return fn()
	}

	g.logger.Debug("acquiring client lock", slog.String("op", op))

	if err := g.locker.Lock(); err != nil {
		return err
	}

	g.logger.Debug("acquired client lock", slog.String("op", op))

	defer func() {
		// Release is best-effort on the way out, but a failed release
		// means the lock may still be held, so it must not pass silently.
		if err := g.locker.Unlock(); err != nil {
			g.logger.Warn("releasing client lock failed",
				slog.String("op", op),
				slog.Any("error", err),
			)

			return
		}

		g.logger.Debug("released client lock", slog.String("op", op))
	}()

	return fn()
}

// MutexLocker adapts sync.Mutex to the Locker interface. It provides
// single-process mutual exclusion and never returns an error.
type MutexLocker struct {
	mu sync.Mutex
}

func (m *MutexLocker) Lock() error {
	m.mu.Lock()
	return nil
}

func (m *MutexLocker) Unlock() error {
	m.mu.Unlock()
	return nil
}
