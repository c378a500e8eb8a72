package models

import (
	"time"

	"github.com/google/uuid"
)

// RosterEntry records ownership of a player by a team, created at auction
// resolution time for the winning (team, player, price) triple.
type RosterEntry struct {
	ID            uuid.UUID `json:"id"`
	TeamID        uuid.UUID `json:"team_id"`
	PlayerID      uuid.UUID `json:"player_id"`
	PurchasePrice int       `json:"purchase_price"`
	AcquiredAt    time.Time `json:"acquired_at"`
}
