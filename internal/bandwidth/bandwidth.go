// Package bandwidth provides an aggregate token bucket limiter shared by
// all transfers on one client. It complements the per-download throttle:
// the throttle caps a single download at a caller-supplied ceiling, while
// this limiter caps the client's total throughput.
package bandwidth

import (
	"context"
	"io"
	"log/slog"

	"golang.org/x/time/rate"
)

// burstMultiplier controls the token bucket burst size relative to the
// per-second rate. A 2x burst lets short savings be spent on the next
// read/write without reducing sustained throughput below the limit.
const burstMultiplier = 2

// Limiter provides shared rate limiting across all transfers on a client.
// A nil *Limiter means unlimited; the wrap helpers pass streams through
// unchanged.
type Limiter struct {
	limiter *rate.Limiter
	logger  *slog.Logger
}

// New creates a limiter capping aggregate throughput at bytesPerSec.
// Returns nil for bytesPerSec <= 0 (unlimited).
func New(bytesPerSec int64, logger *slog.Logger) *Limiter {
	if bytesPerSec <= 0 {
		return nil
	}

	if logger == nil {
		logger = slog.Default()
	}

	burst := int(bytesPerSec) * burstMultiplier
	limiter := rate.NewLimiter(rate.Limit(bytesPerSec), burst)

	logger.Debug("bandwidth limiter created",
		slog.Int64("bytes_per_sec", bytesPerSec),
		slog.Int("burst", burst),
	)

	return &Limiter{limiter: limiter, logger: logger}
}

// WrapReader returns a rate-limited io.Reader. If l is nil, r is returned unchanged.
func (l *Limiter) WrapReader(ctx context.Context, r io.Reader) io.Reader {
	if l == nil {
		return r
	}

	return &limitedReader{r: r, limiter: l.limiter, ctx: ctx}
}

// WrapWriter returns a rate-limited io.Writer. If l is nil, w is returned unchanged.
func (l *Limiter) WrapWriter(ctx context.Context, w io.Writer) io.Writer {
	if l == nil {
		return w
	}

	return &limitedWriter{w: w, limiter: l.limiter, ctx: ctx}
}

// limitedReader blocks after each successful read until the limiter
// allows the bytes consumed.
type limitedReader struct {
	r       io.Reader
	limiter *rate.Limiter
	ctx     context.Context
}

func (r *limitedReader) Read(p []byte) (int, error) {
	n, err := r.r.Read(p)
	if n > 0 {
		if waitErr := waitN(r.limiter, r.ctx, n); waitErr != nil {
			return n, waitErr
		}
	}

	return n, err
}

// limitedWriter blocks after each successful write until the limiter
// allows the bytes produced.
type limitedWriter struct {
	w       io.Writer
	limiter *rate.Limiter
	ctx     context.Context
}

func (w *limitedWriter) Write(p []byte) (int, error) {
	n, err := w.w.Write(p)
	if n > 0 {
		if waitErr := waitN(w.limiter, w.ctx, n); waitErr != nil {
			return n, waitErr
		}
	}

	return n, err
}

// waitN splits a large token request into burst-sized chunks.
// rate.Limiter.WaitN rejects requests exceeding the burst size.
func waitN(limiter *rate.Limiter, ctx context.Context, n int) error {
	burst := limiter.Burst()

	for n > 0 {
		take := n
		if take > burst {
			take = burst
		}

		if err := limiter.WaitN(ctx, take); err != nil {
			return err
		}

		n -= take
	}

	return nil
}
