package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/fantaleague/fantamarket/go/internal/ledger/db"
	"github.com/fantaleague/fantamarket/go/internal/models"
)

// Credit adjustments from every subsystem (auctions, trades, releases)
// go through this package so the balance invariants are enforced in one
// place. Debit is a single conditional UPDATE, so two concurrent callers
// can never both spend the same credits.

var (
	// ErrInsufficientCredits means the debit would take the balance below zero.
	ErrInsufficientCredits = errors.New("insufficient credits")
	// ErrTeamNotFound means the team does not exist.
	ErrTeamNotFound = errors.New("team not found")
)

type Querier interface {
	CreditTeamCredits(ctx context.Context, arg db.CreditTeamCreditsParams) (int32, error)
	DebitTeamCredits(ctx context.Context, arg db.DebitTeamCreditsParams) (int32, error)
	GetTeam(ctx context.Context, id uuid.UUID) (db.Team, error)
	GetTeamCredits(ctx context.Context, id uuid.UUID) (int32, error)
}

type Repository struct {
	queries Querier
}

func NewRepository(querier Querier) *Repository {
	return &Repository{
		queries: querier,
	}
}

// Balance returns the team's spendable credits.
func (r *Repository) Balance(ctx context.Context, teamID uuid.UUID) (int, error) {
	credits, err := r.queries.GetTeamCredits(ctx, teamID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrTeamNotFound
		}
		return 0, fmt.Errorf("failed to get team credits: %w", err)
	}
	return int(credits), nil
}

// Debit atomically subtracts amount from the team's balance. The update
// only matches when the balance covers the amount, so a failed match on
// an existing team means insufficient credits.
func (r *Repository) Debit(ctx context.Context, teamID uuid.UUID, amount int) (int, error) {
	if amount <= 0 {
		return 0, fmt.Errorf("debit amount must be positive, got %d", amount)
	}

	credits, err := r.queries.DebitTeamCredits(ctx, db.DebitTeamCreditsParams{
		ID:     teamID,
		Amount: int32(amount),
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			if _, lookupErr := r.queries.GetTeamCredits(ctx, teamID); errors.Is(lookupErr, sql.ErrNoRows) {
				return 0, ErrTeamNotFound
			}
			return 0, ErrInsufficientCredits
		}
		return 0, fmt.Errorf("failed to debit team %s: %w", teamID, err)
	}
	return int(credits), nil
}

// Credit atomically adds amount to the team's balance.
func (r *Repository) Credit(ctx context.Context, teamID uuid.UUID, amount int) (int, error) {
	if amount <= 0 {
		return 0, fmt.Errorf("credit amount must be positive, got %d", amount)
	}

	credits, err := r.queries.CreditTeamCredits(ctx, db.CreditTeamCreditsParams{
		ID:     teamID,
		Amount: int32(amount),
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrTeamNotFound
		}
		return 0, fmt.Errorf("failed to credit team %s: %w", teamID, err)
	}
	return int(credits), nil
}

// GetTeam returns the team row, mostly for display surfaces.
func (r *Repository) GetTeam(ctx context.Context, teamID uuid.UUID) (*models.Team, error) {
	team, err := r.queries.GetTeam(ctx, teamID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to get team: %w", err)
	}

	return &models.Team{
		ID:          team.ID,
		OwnerID:     team.OwnerID,
		Name:        team.Name,
		CreditsLeft: int(team.CreditsLeft),
		CreatedAt:   team.CreatedAt,
	}, nil
}
