package auction

import "time"

// WithinMarketWindow reports whether new auctions may be created at the
// given instant. The window covers [openHour, closeHour) on the local
// wall clock.
func WithinMarketWindow(now time.Time, openHour, closeHour int) bool {
	hour := now.Hour()
	return hour >= openHour && hour < closeHour
}
