package service

import "time"

// DefaultQuizWindow is how long an activated question accepts answers.
const DefaultQuizWindow = 60 * time.Second

// ExpiryPolicy decides, from wall-clock instants alone, whether an activation is still live.
type ExpiryPolicy struct {
	Window time.Duration
}

func (p ExpiryPolicy) window() time.Duration {
	if p.Window <= 0 {
		return DefaultQuizWindow
	}
	return p.Window
}

// Expired reports whether now is at or beyond activatedAt + window.
func (p ExpiryPolicy) Expired(activatedAt, now time.Time) bool {
	return now.Sub(activatedAt) >= p.window()
}

// Remaining returns whole seconds left, counted as window minus elapsed whole seconds.
// Clamped to [0, window].
func (p ExpiryPolicy) Remaining(activatedAt, now time.Time) int {
	total := int(p.window() / time.Second)
	elapsed := now.Sub(activatedAt)
	if elapsed < 0 {
		return total
	}
	left := total - int(elapsed/time.Second)
	if left < 0 {
		return 0
	}
	return left
}

// MaxTimeTaken is the largest time_taken, in seconds, counted toward a response.
func (p ExpiryPolicy) MaxTimeTaken() int {
	return int(p.window() / time.Second)
}

// ClampTimeTaken bounds a reported answer time to [0, window seconds].
func (p ExpiryPolicy) ClampTimeTaken(seconds int) int {
	if seconds < 0 {
		return 0
	}
	if limit := p.MaxTimeTaken(); seconds > limit {
		return limit
	}
	return seconds
}
