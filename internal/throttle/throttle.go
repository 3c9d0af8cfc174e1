// Package throttle computes adaptive inter-chunk delays for download
// speed capping. It is a pure function over caller-held state: the
// download loop feeds it each chunk's size and arrival time, and sleeps
// for the returned duration before requesting the next chunk.
//
// The delay formula is excessRatio * maxBytesPerSecond, where excessRatio
// is how far the observed speed overshoots the ceiling. The formula mixes
// a dimensionless ratio with a bytes-per-second value; this is a
// deliberate heuristic carried over from the original throttle and is
// kept verbatim for behavioral compatibility.
package throttle

import "time"

// State is per-download checkpoint state. One State belongs to exactly
// one download call; it is never shared across concurrent downloads.
type State struct {
	// PrevTime is the timestamp of the previous checkpoint.
	PrevTime time.Time

	// PrevBytes is the cumulative byte count at the previous checkpoint.
	PrevBytes int64
}

// Begin returns the initial state for a download starting at now.
func Begin(now time.Time) State {
	return State{PrevTime: now}
}

// Next advances the throttle state past a delivered chunk and returns the
// duration the caller should sleep before requesting the next chunk.
//
// maxBytesPerSecond <= 0 disables throttling: the sleep is zero and the
// state is returned unchanged.
//
// A non-positive elapsed time (clock granularity, caller error) would make
// the observed speed unbounded; instead of dividing by zero, the sleep is
// the ideal transfer time of the chunk at the ceiling.
func Next(s State, chunkBytes int64, now time.Time, maxBytesPerSecond int64) (State, time.Duration) {
	if maxBytesPerSecond <= 0 {
		return s, 0
	}

	elapsed := now.Sub(s.PrevTime).Seconds()
	ceiling := float64(maxBytesPerSecond)

	var sleepSeconds float64

	if elapsed <= 0 {
		sleepSeconds = float64(chunkBytes) / ceiling
	} else {
		actualSpeed := float64(chunkBytes) / elapsed

		excessRatio := actualSpeed/ceiling - 1
		if excessRatio > 0 {
			sleepSeconds = excessRatio * ceiling
		}
	}

	s.PrevTime = now
	s.PrevBytes += chunkBytes

	return s, time.Duration(sleepSeconds * float64(time.Second))
}
