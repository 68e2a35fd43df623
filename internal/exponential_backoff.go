package internal

import (
	"context"
	"math/rand"
	"time"
)

const int64Max = 1<<63 - 1

// GetBackoffTime returns a randomized exponential backoff duration for the
// given retry count (binary exponential backoff over [0, 2^retries) slots),
// capped at maximum. Used by the upstream HTTP clients to respect the HR
// API's request-rate ceiling.
func GetBackoffTime(retries int64, slotTime time.Duration, maximum time.Duration) (backoff time.Duration) {
	defer func() {
		if r := recover(); r != nil {
			backoff = maximum
		}
	}()

	if slotTime <= 0 || retries <= 0 {
		return 0
	}

	// The random function is [min, max), so the usual 2^retries - 1 upper
	// bound omits the -1.
	umax := uint64(1) << retries
	if umax > int64Max || umax == 0 {
		return maximum
	}
	n := rand.Int63n(int64(umax))

	// Prevents overflow
	u64Time := uint64(slotTime.Nanoseconds()) * uint64(n)
	if u64Time > int64Max {
		return maximum
	}

	backoff = time.Duration(n) * slotTime
	if backoff > maximum {
		backoff = maximum
	}
	return backoff
}

// SleepBackedOff blocks for the backoff duration or until the context is
// cancelled, whichever comes first. Returns the context error on
// cancellation.
func SleepBackedOff(ctx context.Context, retries int64, slotTime time.Duration, maximum time.Duration) error {
	t := time.NewTimer(GetBackoffTime(retries, slotTime, maximum))
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
