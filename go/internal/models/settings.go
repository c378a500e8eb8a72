package models

// MarketSettings is the typed view of the league's market configuration.
// It is parsed once from the settings table and cached by the settings
// provider rather than re-read as key/value strings at each call site.
type MarketSettings struct {
	OpenHour              int `json:"open_hour"`
	CloseHour             int `json:"close_hour"`
	AuctionDurationHours  int `json:"auction_duration_hours"`
	SnipeThresholdSeconds int `json:"snipe_threshold_seconds"`
	SnipeExtensionMinutes int `json:"snipe_extension_minutes"`
}

// DefaultMarketSettings are the values used for keys missing from the
// settings table.
func DefaultMarketSettings() MarketSettings {
	return MarketSettings{
		OpenHour:              8,
		CloseHour:             22,
		AuctionDurationHours:  24,
		SnipeThresholdSeconds: 30,
		SnipeExtensionMinutes: 2,
	}
}
