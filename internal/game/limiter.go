package game

import (
	"time"

	"voxterrain/internal/config"
)

// TickLimiter paces the session loop to the configured tick rate.
type TickLimiter struct {
	settings *config.StreamSettings
	next     time.Time
}

// NewTickLimiter creates a limiter that reads its rate from settings on every
// Wait, so rate changes apply on the next tick.
func NewTickLimiter(settings *config.StreamSettings) *TickLimiter {
	return &TickLimiter{settings: settings}
}

// Wait blocks until the next tick is due. Uses a hybrid sleep/spin approach
// for better precision on high tick rates.
func (l *TickLimiter) Wait() {
	rate := 0
	if l.settings != nil {
		rate = l.settings.TickRate()
	}
	if rate <= 0 {
		l.next = time.Time{}
		return
	}

	target := time.Second / time.Duration(rate)

	if l.next.IsZero() {
		l.next = time.Now().Add(target)
	} else {
		l.next = l.next.Add(target)
	}

	for {
		remaining := time.Until(l.next)
		if remaining <= 0 {
			break
		}
		if remaining > 200*time.Microsecond {
			time.Sleep(remaining - 200*time.Microsecond)
		}
		// busy-wait for the final few microseconds
		if time.Until(l.next) <= 0 {
			break
		}
	}

	// If we're significantly late (e.g., a long remesh), resync to avoid drift
	if late := -time.Until(l.next); late > target {
		l.next = time.Now().Add(target)
	}
}
