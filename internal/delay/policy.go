// Package delay produces randomized pacing between session actions so
// submission timing does not follow a mechanical pattern.
package delay

import (
	"fmt"
	"math/rand/v2"
	"sync"
	"time"
)

// jitterFraction scales the primary bounds down for the secondary
// sub-action draw. Fixed, not configured.
const jitterFraction = 4

// Policy draws pauses uniformly from configured bounds. The RNG is
// injectable so tests can assert bound compliance with a fixed seed.
type Policy struct {
	min time.Duration
	max time.Duration

	mu           sync.Mutex
	rng          *rand.Rand
	lastActionAt time.Time
}

// New validates the bounds and builds a Policy. min must be positive and
// strictly less than max; violations are rejected here, before any
// session starts, never clamped.
func New(min, max time.Duration, rng *rand.Rand) (*Policy, error) {
	if min <= 0 {
		return nil, fmt.Errorf("min delay must be positive, got %s", min)
	}
	if min >= max {
		return nil, fmt.Errorf("min delay %s must be less than max delay %s", min, max)
	}
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Policy{min: min, max: max, rng: rng}, nil
}

// Next returns the primary inter-problem pause, uniform in [min, max].
func (p *Policy) Next() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	d := p.draw(p.min, p.max)
	p.lastActionAt = time.Now()
	return d
}

// Jitter returns the secondary sub-action pause, uniform in
// [min, max] / jitterFraction.
func (p *Policy) Jitter() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	d := p.draw(p.min/jitterFraction, p.max/jitterFraction)
	p.lastActionAt = time.Now()
	return d
}

// LastActionAt reports when the policy last issued a pause. Zero before
// the first draw.
func (p *Policy) LastActionAt() time.Time {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastActionAt
}

// Bounds returns the configured primary bounds.
func (p *Policy) Bounds() (min, max time.Duration) {
	return p.min, p.max
}

func (p *Policy) draw(min, max time.Duration) time.Duration {
	if max <= min {
		return min
	}
	span := int64(max - min + 1)
	return min + time.Duration(p.rng.Int64N(span))
}
