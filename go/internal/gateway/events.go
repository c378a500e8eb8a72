package gateway

import (
	"encoding/json"
	"time"
)

// MarketEvent is the wire format pushed to live-feed clients.
type MarketEvent struct {
	ID        string          `json:"id"`
	Type      EventType       `json:"type"`
	ActorID   string          `json:"actor_id,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
	Data      json.RawMessage `json:"data"`
}

// EventType mirrors the audit actions relayed over the bus.
type EventType string

const (
	EventTypeAuctionStarted EventType = "AUCTION_STARTED"
	EventTypeBidPlaced      EventType = "BID_PLACED"
	EventTypeAuctionWon     EventType = "AUCTION_WON"
	EventTypeAuctionExpired EventType = "AUCTION_EXPIRED"
	EventTypePlayerReleased EventType = "PLAYER_RELEASED"
	EventTypeTradeProposed  EventType = "TRADE_PROPOSED"
	EventTypeTradeAccepted  EventType = "TRADE_ACCEPTED"
)

var knownEventTypes = map[EventType]bool{
	EventTypeAuctionStarted: true,
	EventTypeBidPlaced:      true,
	EventTypeAuctionWon:     true,
	EventTypeAuctionExpired: true,
	EventTypePlayerReleased: true,
	EventTypeTradeProposed:  true,
	EventTypeTradeAccepted:  true,
}
