package config

import "sync"

const (
	MinLoadDistance = 1
	MaxLoadDistance = 32
	MinTickRate     = 1
	MaxTickRate     = 240
)

// StreamSettings holds the streaming parameters that may change while the
// volume is running. All accessors are safe for concurrent use.
type StreamSettings struct {
	mu              sync.RWMutex
	loadDistance    int // in chunks
	destroyDistance int // in chunks
	tickRate        int // ticks per second, 0 = unlimited
}

// NewStreamSettings returns settings clamped to the supported range.
func NewStreamSettings(load, destroy, tickRate int) *StreamSettings {
	s := &StreamSettings{}
	s.SetLoadDistance(load)
	s.SetDestroyDistance(destroy)
	s.SetTickRate(tickRate)
	return s
}

// LoadDistance returns the chunk radius that is kept active.
func (s *StreamSettings) LoadDistance() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loadDistance
}

// SetLoadDistance sets the load radius in chunks. The destroy distance is
// raised along with it if it would otherwise fall below the load radius.
func (s *StreamSettings) SetLoadDistance(distance int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Clamp to reasonable values
	if distance < MinLoadDistance {
		distance = MinLoadDistance
	}
	if distance > MaxLoadDistance {
		distance = MaxLoadDistance
	}

	s.loadDistance = distance
	if s.destroyDistance < distance {
		s.destroyDistance = distance
	}
}

// DestroyDistance returns the chunk radius past which chunks are disabled.
func (s *StreamSettings) DestroyDistance() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.destroyDistance
}

// SetDestroyDistance sets the disable radius in chunks, never below the
// load distance.
func (s *StreamSettings) SetDestroyDistance(distance int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if distance < s.loadDistance {
		distance = s.loadDistance
	}
	if distance > 2*MaxLoadDistance {
		distance = 2 * MaxLoadDistance
	}
	s.destroyDistance = distance
}

// TickRate returns the tick cap per second; 0 means unlimited.
func (s *StreamSettings) TickRate() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tickRate
}

// SetTickRate sets the tick cap. Values <= 0 disable the limiter.
func (s *StreamSettings) SetTickRate(rate int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch {
	case rate <= 0:
		rate = 0
	case rate < MinTickRate:
		rate = MinTickRate
	case rate > MaxTickRate:
		rate = MaxTickRate
	}
	s.tickRate = rate
}
