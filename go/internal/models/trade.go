package models

import (
	"time"

	"github.com/google/uuid"
)

// TradeStatus defines the status of a trade proposal.
type TradeStatus string

const (
	TradeStatusPending   TradeStatus = "PENDING"
	TradeStatusAccepted  TradeStatus = "ACCEPTED"
	TradeStatusRejected  TradeStatus = "REJECTED"
	TradeStatusCancelled TradeStatus = "CANCELLED"
)

// TradeProposal is an offer to exchange players and/or credits between
// two teams. Credits move through the ledger only when the proposal is
// accepted.
type TradeProposal struct {
	ID                uuid.UUID   `json:"id"`
	ProposerTeamID    uuid.UUID   `json:"proposer_team_id"`
	ReceiverTeamID    uuid.UUID   `json:"receiver_team_id"`
	ProposerPlayerIDs []uuid.UUID `json:"proposer_player_ids"`
	ReceiverPlayerIDs []uuid.UUID `json:"receiver_player_ids"`
	ProposerCredits   int         `json:"proposer_credits"`
	ReceiverCredits   int         `json:"receiver_credits"`
	Status            TradeStatus `json:"status"`
	CreatedAt         time.Time   `json:"created_at"`
}
