package models

import (
	"time"

	"github.com/google/uuid"
)

// Team is a league participant. CreditsLeft is the spendable balance
// owned by the ledger; it already excludes any credits escrowed in
// auctions where the team holds the leading bid.
type Team struct {
	ID          uuid.UUID `json:"id"`
	OwnerID     uuid.UUID `json:"owner_id"`
	Name        string    `json:"name"`
	CreditsLeft int       `json:"credits_left"`
	CreatedAt   time.Time `json:"created_at"`
}
