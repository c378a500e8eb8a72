package settings

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/fantaleague/fantamarket/go/internal/models"
)

// Loader is the persistence side of the provider.
type Loader interface {
	LoadMarketSettings(ctx context.Context) (models.MarketSettings, error)
	UpdateSetting(ctx context.Context, key, value string) error
}

// Provider caches the typed market settings with a TTL so the hot bid
// path does not hit the settings table on every call. UpdateSetting
// invalidates the cache immediately.
type Provider struct {
	loader Loader
	clock  clockwork.Clock
	ttl    time.Duration

	mu        sync.RWMutex
	cached    models.MarketSettings
	refreshed time.Time
	valid     bool
}

func NewProvider(loader Loader, clock clockwork.Clock, ttl time.Duration) *Provider {
	return &Provider{
		loader: loader,
		clock:  clock,
		ttl:    ttl,
	}
}

// Market returns the current market settings, reloading from the table
// when the cache is stale.
func (p *Provider) Market(ctx context.Context) (models.MarketSettings, error) {
	p.mu.RLock()
	if p.valid && p.clock.Now().Sub(p.refreshed) < p.ttl {
		settings := p.cached
		p.mu.RUnlock()
		return settings, nil
	}
	p.mu.RUnlock()

	p.mu.Lock()
	defer p.mu.Unlock()

	// Another caller may have refreshed while we waited for the lock.
	if p.valid && p.clock.Now().Sub(p.refreshed) < p.ttl {
		return p.cached, nil
	}

	settings, err := p.loader.LoadMarketSettings(ctx)
	if err != nil {
		if p.valid {
			// Serve the stale copy rather than failing the market call.
			log.Warn().Err(err).Msg("settings reload failed, serving cached values")
			return p.cached, nil
		}
		return models.MarketSettings{}, err
	}

	p.cached = settings
	p.refreshed = p.clock.Now()
	p.valid = true
	return settings, nil
}

// UpdateSetting writes through to the table and drops the cache so the
// next Market call sees the new value.
func (p *Provider) UpdateSetting(ctx context.Context, key, value string) error {
	if err := p.loader.UpdateSetting(ctx, key, value); err != nil {
		return err
	}

	p.mu.Lock()
	p.valid = false
	p.mu.Unlock()

	log.Info().Str("key", key).Str("value", value).Msg("market setting updated")
	return nil
}
