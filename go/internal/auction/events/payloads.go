package events

import (
	"time"

	"github.com/google/uuid"
)

// Audit/outbox payloads for market events. The same structs are recorded
// as log details and published on the message bus for notification and
// live-feed consumers.

const (
	ActionAuctionStarted = "AUCTION_STARTED"
	ActionBidPlaced      = "BID_PLACED"
	ActionAuctionWon     = "AUCTION_WON"
	ActionAuctionExpired = "AUCTION_EXPIRED"
	ActionPlayerReleased = "PLAYER_RELEASED"
	ActionTradeProposed  = "TRADE_PROPOSED"
	ActionTradeAccepted  = "TRADE_ACCEPTED"
)

type AuctionStartedPayload struct {
	AuctionID  uuid.UUID `json:"auction_id"`
	PlayerID   uuid.UUID `json:"player_id"`
	StartPrice int       `json:"start_price"`
	EndTime    time.Time `json:"end_time"`
}

type BidPlacedPayload struct {
	AuctionID uuid.UUID `json:"auction_id"`
	PlayerID  uuid.UUID `json:"player_id"`
	TeamID    uuid.UUID `json:"team_id"`
	Amount    int       `json:"amount"`
	EndTime   time.Time `json:"end_time"`
	Extended  bool      `json:"extended"`
}

type AuctionWonPayload struct {
	AuctionID uuid.UUID `json:"auction_id"`
	PlayerID  uuid.UUID `json:"player_id"`
	TeamID    uuid.UUID `json:"team_id"`
	Price     int       `json:"price"`
}

type AuctionExpiredPayload struct {
	AuctionID uuid.UUID `json:"auction_id"`
	PlayerID  uuid.UUID `json:"player_id"`
}

type PlayerReleasedPayload struct {
	TeamID   uuid.UUID `json:"team_id"`
	PlayerID uuid.UUID `json:"player_id"`
	Refund   int       `json:"refund"`
}

type TradeProposedPayload struct {
	TradeID        uuid.UUID `json:"trade_id"`
	ProposerTeamID uuid.UUID `json:"proposer_team_id"`
	ReceiverTeamID uuid.UUID `json:"receiver_team_id"`
}

type TradeAcceptedPayload struct {
	TradeID uuid.UUID `json:"trade_id"`
}
