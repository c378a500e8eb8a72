package roster

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/fantaleague/fantamarket/go/internal/auditlog"
	auditdb "github.com/fantaleague/fantamarket/go/internal/auditlog/db"
	"github.com/fantaleague/fantamarket/go/internal/ledger"
	ledgerdb "github.com/fantaleague/fantamarket/go/internal/ledger/db"
	"github.com/fantaleague/fantamarket/go/internal/models"
	"github.com/fantaleague/fantamarket/go/internal/roster/db"
	"github.com/fantaleague/fantamarket/go/internal/sqlutil"
)

var ErrPlayerNotOnRoster = errors.New("player is not on the team's roster")

// Repository is the durable roster store. Release runs through InTx so
// the roster delete, the ledger refund and the audit event commit as one
// unit.
type Repository struct {
	db      *sql.DB
	queries *db.Queries
}

func NewRepository(database *sql.DB) *Repository {
	return &Repository{
		db:      database,
		queries: db.New(database),
	}
}

func (r *Repository) InTx(ctx context.Context, fn func(tx Tx) error) error {
	return sqlutil.RunTx(ctx, r.db, func(tx *sql.Tx) error {
		return fn(&rosterTx{
			rosters: r.queries.WithTx(tx),
			ledger:  ledger.NewRepository(ledgerdb.New(tx)),
			audit:   auditlog.NewRepository(auditdb.New(tx)),
		})
	})
}

// ListByTeam returns a team's roster in acquisition order.
func (r *Repository) ListByTeam(ctx context.Context, teamID uuid.UUID) ([]models.RosterEntry, error) {
	rows, err := r.queries.ListRosterByTeam(ctx, teamID)
	if err != nil {
		return nil, fmt.Errorf("failed to list roster: %w", err)
	}

	entries := make([]models.RosterEntry, len(rows))
	for i, row := range rows {
		entries[i] = dbRosterToModel(row)
	}
	return entries, nil
}

// rosterTx implements Tx over one *sql.Tx.
type rosterTx struct {
	rosters *db.Queries
	ledger  *ledger.Repository
	audit   *auditlog.Repository
}

func (t *rosterTx) GetEntry(ctx context.Context, teamID, playerID uuid.UUID) (*models.RosterEntry, error) {
	row, err := t.rosters.GetPlayerOnRoster(ctx, db.GetPlayerOnRosterParams{
		TeamID:   teamID,
		PlayerID: playerID,
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPlayerNotOnRoster
		}
		return nil, fmt.Errorf("failed to get roster entry: %w", err)
	}
	entry := dbRosterToModel(row)
	return &entry, nil
}

func (t *rosterTx) DeleteEntry(ctx context.Context, teamID, playerID uuid.UUID) error {
	affected, err := t.rosters.DeletePlayerFromRoster(ctx, db.DeletePlayerFromRosterParams{
		TeamID:   teamID,
		PlayerID: playerID,
	})
	if err != nil {
		return fmt.Errorf("failed to delete roster entry: %w", err)
	}
	if affected == 0 {
		return ErrPlayerNotOnRoster
	}
	return nil
}

func (t *rosterTx) Credit(ctx context.Context, teamID uuid.UUID, amount int) error {
	_, err := t.ledger.Credit(ctx, teamID, amount)
	return err
}

func (t *rosterTx) RecordAuditEvent(ctx context.Context, action string, details any, actorID *uuid.UUID) error {
	return t.audit.Record(ctx, action, details, actorID)
}

func dbRosterToModel(row db.Roster) models.RosterEntry {
	return models.RosterEntry{
		ID:            row.ID,
		TeamID:        row.TeamID,
		PlayerID:      row.PlayerID,
		PurchasePrice: int(row.PurchasePrice),
		AcquiredAt:    row.AcquiredAt,
	}
}
