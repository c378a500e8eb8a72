package auction

import (
	"errors"
	"fmt"

	"github.com/fantaleague/fantamarket/go/internal/ledger"
)

var (
	// ErrAuctionNotFound means no auction exists with the given id.
	ErrAuctionNotFound = errors.New("auction not found")
	// ErrAuctionNotOpen means the auction has already been closed.
	ErrAuctionNotOpen = errors.New("auction is not open")
	// ErrAuctionEnded means the deadline passed before the bid arrived.
	// The expired auction is resolved as a side effect of the rejected bid.
	ErrAuctionEnded = errors.New("auction ended")
	// ErrAuctionStillOpen means resolution was requested before the deadline.
	ErrAuctionStillOpen = errors.New("auction still open")
	// ErrPlayerUnavailable means the player is already on a team's roster.
	ErrPlayerUnavailable = errors.New("player already owned")
	// ErrAuctionAlreadyActive means an open auction already exists for the player.
	ErrAuctionAlreadyActive = errors.New("auction already active for this player")
	// ErrConflict means concurrent bids kept invalidating this one; the
	// caller should re-fetch the auction and try again.
	ErrConflict = errors.New("auction was updated concurrently, try again")

	// ErrInsufficientCredits is the ledger's typed failure, re-exported so
	// bid callers can match it without importing the ledger package.
	ErrInsufficientCredits = ledger.ErrInsufficientCredits
)

// MarketClosedError rejects auction creation outside the market window.
// It carries the configured hours for display.
type MarketClosedError struct {
	OpenHour  int
	CloseHour int
}

func (e *MarketClosedError) Error() string {
	return fmt.Sprintf("market is closed, open from %d:00 to %d:00", e.OpenHour, e.CloseHour)
}

// BidTooLowError rejects a bid at or below the current price. It carries
// the price the bid must exceed.
type BidTooLowError struct {
	CurrentPrice int
}

func (e *BidTooLowError) Error() string {
	return fmt.Sprintf("bid must be higher than current price of %d", e.CurrentPrice)
}
