package roster

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/fantaleague/fantamarket/go/internal/auction/events"
	"github.com/fantaleague/fantamarket/go/internal/models"
)

// Store defines what the app layer needs from the roster repository.
type Store interface {
	InTx(ctx context.Context, fn func(tx Tx) error) error
	ListByTeam(ctx context.Context, teamID uuid.UUID) ([]models.RosterEntry, error)
}

// Tx is the transaction-scoped view a release works against.
type Tx interface {
	GetEntry(ctx context.Context, teamID, playerID uuid.UUID) (*models.RosterEntry, error)
	DeleteEntry(ctx context.Context, teamID, playerID uuid.UUID) error
	Credit(ctx context.Context, teamID uuid.UUID, amount int) error
	RecordAuditEvent(ctx context.Context, action string, details any, actorID *uuid.UUID) error
}

type App struct {
	store Store
}

func NewApp(store Store) *App {
	return &App{
		store: store,
	}
}

// ListRoster returns a team's roster.
func (a *App) ListRoster(ctx context.Context, teamID uuid.UUID) ([]models.RosterEntry, error) {
	return a.store.ListByTeam(ctx, teamID)
}

// ReleasePlayer drops a player from the team's roster and refunds half
// the purchase price, rounded up. The released player becomes eligible
// for a fresh auction.
func (a *App) ReleasePlayer(ctx context.Context, teamID, playerID uuid.UUID) (int, error) {
	if teamID == uuid.Nil || playerID == uuid.Nil {
		return 0, fmt.Errorf("team_id and player_id are required")
	}

	var refund int
	err := a.store.InTx(ctx, func(tx Tx) error {
		entry, err := tx.GetEntry(ctx, teamID, playerID)
		if err != nil {
			return err
		}

		refund = (entry.PurchasePrice + 1) / 2
		if err := tx.DeleteEntry(ctx, teamID, playerID); err != nil {
			return err
		}
		if err := tx.Credit(ctx, teamID, refund); err != nil {
			return err
		}

		return tx.RecordAuditEvent(ctx, events.ActionPlayerReleased, events.PlayerReleasedPayload{
			TeamID:   teamID,
			PlayerID: playerID,
			Refund:   refund,
		}, &teamID)
	})
	if err != nil {
		return 0, err
	}

	log.Info().
		Str("team_id", teamID.String()).
		Str("player_id", playerID.String()).
		Int("refund", refund).
		Msg("player released")
	return refund, nil
}
