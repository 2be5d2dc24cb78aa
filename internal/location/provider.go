// Package location obtains current-position readings from the device
// sensor capability with bounded waits, and caches the most recent
// successful reading for display between queries.
package location

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/yaro360/timetracker-saas/internal/domain"
)

// Config holds the recognized options for one position query.
// Zero values fall back to the documented defaults.
type Config struct {
	// EnableHighAccuracy asks the sensor for a GPS-grade fix rather than
	// a coarse network fix. Default true.
	EnableHighAccuracy bool

	// Timeout bounds how long one query may wait for the sensor.
	// Default 15s. Exactly one timeout per call; retries belong to
	// the caller, not the provider.
	Timeout time.Duration

	// MaxCachedAge is how old a cached reading may be and still satisfy
	// a query without waking the sensor. Default 60s.
	MaxCachedAge time.Duration
}

// DefaultConfig returns the default query options.
func DefaultConfig() Config {
	return Config{
		EnableHighAccuracy: true,
		Timeout:            15 * time.Second,
		MaxCachedAge:       60 * time.Second,
	}
}

// withDefaults fills unset fields. EnableHighAccuracy defaults to true via
// DefaultConfig; a caller passing a literal Config with it false is taken
// at its word.
func (c Config) withDefaults() Config {
	if c.Timeout <= 0 {
		c.Timeout = 15 * time.Second
	}
	if c.MaxCachedAge < 0 {
		c.MaxCachedAge = 0
	}
	return c
}

// Provider wraps a Sensor with timeout enforcement and a current-location
// cache. A nil sensor means the host offers no location capability.
//
// The provider never substitutes a fallback location on failure: guessing
// a position would defeat the geofence, so errors surface to the caller
// and the user retries.
type Provider struct {
	sensor domain.Sensor
	now    domain.Clock

	mu       sync.Mutex
	cached   domain.Position
	cachedAt time.Time
	hasCache bool
}

// NewProvider builds a provider over the given sensor. now is substitutable
// for deterministic cache-age tests.
func NewProvider(sensor domain.Sensor, now domain.Clock) *Provider {
	if now == nil {
		now = time.Now
	}
	return &Provider{sensor: sensor, now: now}
}

// GetCurrentLocation resolves one position reading. It blocks until the
// sensor answers, refuses, or cfg.Timeout elapses — it never hangs
// indefinitely. A cached reading younger than cfg.MaxCachedAge is served
// without waking the sensor. On success the cached current location is
// overwritten as a side effect visible to CachedLocation.
func (p *Provider) GetCurrentLocation(ctx context.Context, cfg Config) (domain.Position, error) {
	if p.sensor == nil {
		return domain.Position{}, domain.ErrCapabilityUnavailable
	}
	cfg = cfg.withDefaults()

	if cfg.MaxCachedAge > 0 {
		p.mu.Lock()
		if p.hasCache && p.now().Sub(p.cachedAt) <= cfg.MaxCachedAge {
			pos := p.cached
			p.mu.Unlock()
			return pos, nil
		}
		p.mu.Unlock()
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	type result struct {
		pos domain.Position
		err error
	}
	ch := make(chan result, 1)
	go func() {
		pos, err := p.sensor.ReadPosition(ctx, cfg.EnableHighAccuracy)
		ch <- result{pos, err}
	}()

	select {
	case r := <-ch:
		if r.err != nil {
			if errors.Is(r.err, context.DeadlineExceeded) {
				return domain.Position{}, domain.ErrLocationTimeout
			}
			return domain.Position{}, r.err
		}
		p.mu.Lock()
		p.cached = r.pos
		p.cachedAt = p.now()
		p.hasCache = true
		p.mu.Unlock()
		return r.pos, nil
	case <-ctx.Done():
		// The sensor goroutine is abandoned; the buffered channel lets it
		// finish without leaking a blocked send.
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return domain.Position{}, domain.ErrLocationTimeout
		}
		return domain.Position{}, ctx.Err()
	}
}

// CachedLocation returns the most recent successful reading, if any.
// Suitable for UI display without a fresh sensor query.
func (p *Provider) CachedLocation() (domain.Position, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cached, p.hasCache
}
