package connection

import "time"

// backoffDelay computes the reconnect delay for the given attempt:
// min(max, base*2^attempt) plus jitter drawn from rnd, bounded by
// min(base, max-unjittered) so the total never exceeds the ceiling.
// rnd(n) must return a value in [0, n).
func backoffDelay(base, max time.Duration, attempt int, rnd func(int64) int64) time.Duration {
	if base <= 0 {
		base = time.Second
	}
	if max < base {
		max = base
	}

	// Doubling loop rather than a shift so huge attempt counts cannot
	// overflow; the counter is unbounded.
	delay := base
	for i := 0; i < attempt && delay < max; i++ {
		delay *= 2
	}
	if delay > max {
		delay = max
	}

	headroom := max - delay
	if headroom == 0 {
		return delay
	}
	jitterMax := base
	if jitterMax > headroom {
		jitterMax = headroom
	}

	return delay + time.Duration(rnd(int64(jitterMax)))
}
