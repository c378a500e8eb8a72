package settings

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/fantaleague/fantamarket/go/internal/models"
)

type fakeLoader struct {
	mu       sync.Mutex
	settings models.MarketSettings
	loads    int
	updates  map[string]string
	loadErr  error
}

func newFakeLoader() *fakeLoader {
	return &fakeLoader{
		settings: models.DefaultMarketSettings(),
		updates:  make(map[string]string),
	}
}

func (f *fakeLoader) LoadMarketSettings(ctx context.Context) (models.MarketSettings, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loads++
	if f.loadErr != nil {
		return models.MarketSettings{}, f.loadErr
	}
	return f.settings, nil
}

func (f *fakeLoader) UpdateSetting(ctx context.Context, key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates[key] = value
	return nil
}

func (f *fakeLoader) loadCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.loads
}

func TestProviderCachesWithinTTL(t *testing.T) {
	loader := newFakeLoader()
	clock := clockwork.NewFakeClock()
	provider := NewProvider(loader, clock, 30*time.Second)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if _, err := provider.Market(ctx); err != nil {
			t.Fatalf("Market: %v", err)
		}
	}
	if loader.loadCount() != 1 {
		t.Errorf("loads within TTL = %d, want 1", loader.loadCount())
	}

	clock.Advance(31 * time.Second)
	if _, err := provider.Market(ctx); err != nil {
		t.Fatalf("Market after TTL: %v", err)
	}
	if loader.loadCount() != 2 {
		t.Errorf("loads after TTL = %d, want 2", loader.loadCount())
	}
}

func TestProviderInvalidatesOnUpdate(t *testing.T) {
	loader := newFakeLoader()
	clock := clockwork.NewFakeClock()
	provider := NewProvider(loader, clock, time.Hour)
	ctx := context.Background()

	if _, err := provider.Market(ctx); err != nil {
		t.Fatalf("Market: %v", err)
	}

	loader.mu.Lock()
	loader.settings.SnipeThresholdSeconds = 60
	loader.mu.Unlock()

	if err := provider.UpdateSetting(ctx, KeySnipeThresholdSeconds, "60"); err != nil {
		t.Fatalf("UpdateSetting: %v", err)
	}
	if loader.updates[KeySnipeThresholdSeconds] != "60" {
		t.Error("update not written through")
	}

	current, err := provider.Market(ctx)
	if err != nil {
		t.Fatalf("Market after update: %v", err)
	}
	if current.SnipeThresholdSeconds != 60 {
		t.Errorf("threshold = %d, want 60 after invalidation", current.SnipeThresholdSeconds)
	}
}

func TestProviderServesStaleOnLoadFailure(t *testing.T) {
	loader := newFakeLoader()
	clock := clockwork.NewFakeClock()
	provider := NewProvider(loader, clock, time.Second)
	ctx := context.Background()

	first, err := provider.Market(ctx)
	if err != nil {
		t.Fatalf("Market: %v", err)
	}

	loader.mu.Lock()
	loader.loadErr = errors.New("connection refused")
	loader.mu.Unlock()
	clock.Advance(2 * time.Second)

	stale, err := provider.Market(ctx)
	if err != nil {
		t.Fatalf("Market with failing loader: %v", err)
	}
	if stale != first {
		t.Error("expected cached settings while loader is failing")
	}
}

func TestProviderFailsWithoutCache(t *testing.T) {
	loader := newFakeLoader()
	loader.loadErr = errors.New("connection refused")
	provider := NewProvider(loader, clockwork.NewFakeClock(), time.Second)

	if _, err := provider.Market(context.Background()); err == nil {
		t.Fatal("expected error when first load fails")
	}
}
