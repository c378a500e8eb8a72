package models

import (
	"time"

	"github.com/google/uuid"
)

// AuctionStatus defines the lifecycle state of an auction.
type AuctionStatus string

const (
	AuctionStatusOpen   AuctionStatus = "OPEN"
	AuctionStatusClosed AuctionStatus = "CLOSED"
)

// Auction is a live or settled sale of one player. CurrentWinnerTeamID
// is nil until the first bid; while it is set, CurrentPrice credits of
// that team are held in escrow.
type Auction struct {
	ID                  uuid.UUID     `json:"id"`
	PlayerID            uuid.UUID     `json:"player_id"`
	CurrentPrice        int           `json:"current_price"`
	CurrentWinnerTeamID *uuid.UUID    `json:"current_winner_team_id,omitempty"`
	EndTime             time.Time     `json:"end_time"`
	Status              AuctionStatus `json:"status"`
	CreatedAt           time.Time     `json:"created_at"`
}
