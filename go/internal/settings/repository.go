package settings

import (
	"context"
	"fmt"
	"strconv"

	"github.com/fantaleague/fantamarket/go/internal/models"
	"github.com/fantaleague/fantamarket/go/internal/settings/db"
)

// Setting keys recognized in the settings table. Missing keys fall back
// to the defaults in models.DefaultMarketSettings.
const (
	KeyMarketOpenHour        = "market_open_hour"
	KeyMarketCloseHour       = "market_close_hour"
	KeyAuctionDurationHours  = "auction_duration_hours"
	KeySnipeThresholdSeconds = "snipe_threshold_seconds"
	KeySnipeExtensionMinutes = "snipe_extension_minutes"
)

type Querier interface {
	ListSettings(ctx context.Context) ([]db.Setting, error)
	UpsertSetting(ctx context.Context, arg db.UpsertSettingParams) error
}

type Repository struct {
	queries Querier
}

func NewRepository(querier Querier) *Repository {
	return &Repository{
		queries: querier,
	}
}

// LoadMarketSettings reads the settings table and parses it into the
// typed view, defaulting any missing or unparseable key.
func (r *Repository) LoadMarketSettings(ctx context.Context) (models.MarketSettings, error) {
	rows, err := r.queries.ListSettings(ctx)
	if err != nil {
		return models.MarketSettings{}, fmt.Errorf("failed to load settings: %w", err)
	}

	settings := models.DefaultMarketSettings()
	for _, row := range rows {
		value, err := strconv.Atoi(row.Value)
		if err != nil {
			continue
		}
		switch row.Key {
		case KeyMarketOpenHour:
			settings.OpenHour = value
		case KeyMarketCloseHour:
			settings.CloseHour = value
		case KeyAuctionDurationHours:
			settings.AuctionDurationHours = value
		case KeySnipeThresholdSeconds:
			settings.SnipeThresholdSeconds = value
		case KeySnipeExtensionMinutes:
			settings.SnipeExtensionMinutes = value
		}
	}
	return settings, nil
}

// UpdateSetting writes one key. Validation of key names belongs to the
// caller; unknown keys are stored but ignored by LoadMarketSettings.
func (r *Repository) UpdateSetting(ctx context.Context, key, value string) error {
	if err := r.queries.UpsertSetting(ctx, db.UpsertSettingParams{
		Key:   key,
		Value: value,
	}); err != nil {
		return fmt.Errorf("failed to update setting %s: %w", key, err)
	}
	return nil
}
