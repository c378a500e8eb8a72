package trade

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
	rosterdb "github.com/fantaleague/fantamarket/go/internal/roster/db"
	"github.com/fantaleague/fantamarket/go/internal/sqlutil"
	"github.com/fantaleague/fantamarket/go/internal/trade/db"
)

var (
	ErrTradeNotFound   = errors.New("trade proposal not found")
	ErrTradeNotPending = errors.New("trade proposal is no longer pending")
)

// Repository is the durable trade store. Acceptance runs through InTx so
// the roster swaps, the credit settlement and the audit event commit as
// one unit.
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
		return fn(&tradeTx{
			trades:  r.queries.WithTx(tx),
			rosters: rosterdb.New(tx),
			ledger:  ledger.NewRepository(ledgerdb.New(tx)),
			audit:   auditlog.NewRepository(auditdb.New(tx)),
		})
	})
}

// ListForTeam returns proposals where the team is proposer or receiver,
// newest first.
func (r *Repository) ListForTeam(ctx context.Context, teamID uuid.UUID) ([]models.TradeProposal, error) {
	rows, err := r.queries.ListTradeProposalsForTeam(ctx, teamID)
	if err != nil {
		return nil, fmt.Errorf("failed to list trade proposals: %w", err)
	}

	proposals := make([]models.TradeProposal, len(rows))
	for i, row := range rows {
		proposals[i] = dbTradeToModel(row)
	}
	return proposals, nil
}

// tradeTx implements Tx over one *sql.Tx.
type tradeTx struct {
	trades  *db.Queries
	rosters *rosterdb.Queries
	ledger  *ledger.Repository
	audit   *auditlog.Repository
}

func (t *tradeTx) GetProposalForUpdate(ctx context.Context, id uuid.UUID) (*models.TradeProposal, error) {
	row, err := t.trades.GetTradeProposalForUpdate(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTradeNotFound
		}
		return nil, fmt.Errorf("failed to lock trade proposal: %w", err)
	}
	proposal := dbTradeToModel(row)
	return &proposal, nil
}

func (t *tradeTx) InsertProposal(ctx context.Context, proposal models.TradeProposal) (*models.TradeProposal, error) {
	row, err := t.trades.InsertTradeProposal(ctx, db.InsertTradeProposalParams{
		ID:                proposal.ID,
		ProposerTeamID:    proposal.ProposerTeamID,
		ReceiverTeamID:    proposal.ReceiverTeamID,
		ProposerPlayerIds: proposal.ProposerPlayerIDs,
		ReceiverPlayerIds: proposal.ReceiverPlayerIDs,
		ProposerCredits:   int32(proposal.ProposerCredits),
		ReceiverCredits:   int32(proposal.ReceiverCredits),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to insert trade proposal: %w", err)
	}
	inserted := dbTradeToModel(row)
	return &inserted, nil
}

// SetStatus transitions a PENDING proposal; any other starting status
// returns ErrTradeNotPending.
func (t *tradeTx) SetStatus(ctx context.Context, id uuid.UUID, status models.TradeStatus) error {
	affected, err := t.trades.UpdateTradeStatus(ctx, db.UpdateTradeStatusParams{
		ID:     id,
		Status: db.TradeStatus(status),
	})
	if err != nil {
		return fmt.Errorf("failed to update trade status: %w", err)
	}
	if affected == 0 {
		return ErrTradeNotPending
	}
	return nil
}

// ReassignPlayers moves the given players between rosters and reports
// how many rows actually moved, so the caller can detect a roster that
// changed since the proposal was made.
func (t *tradeTx) ReassignPlayers(ctx context.Context, fromTeamID, toTeamID uuid.UUID, playerIDs []uuid.UUID) (int, error) {
	if len(playerIDs) == 0 {
		return 0, nil
	}
	moved, err := t.rosters.ReassignPlayers(ctx, rosterdb.ReassignPlayersParams{
		FromTeamID: fromTeamID,
		ToTeamID:   toTeamID,
		PlayerIds:  playerIDs,
	})
	if err != nil {
		return 0, fmt.Errorf("failed to reassign players: %w", err)
	}
	return int(moved), nil
}

func (t *tradeTx) Debit(ctx context.Context, teamID uuid.UUID, amount int) error {
	_, err := t.ledger.Debit(ctx, teamID, amount)
	return err
}

func (t *tradeTx) Credit(ctx context.Context, teamID uuid.UUID, amount int) error {
	_, err := t.ledger.Credit(ctx, teamID, amount)
	return err
}

func (t *tradeTx) RecordAuditEvent(ctx context.Context, action string, details any, actorID *uuid.UUID) error {
	return t.audit.Record(ctx, action, details, actorID)
}

func dbTradeToModel(row db.TradeProposal) models.TradeProposal {
	return models.TradeProposal{
		ID:                row.ID,
		ProposerTeamID:    row.ProposerTeamID,
		ReceiverTeamID:    row.ReceiverTeamID,
		ProposerPlayerIDs: row.ProposerPlayerIds,
		ReceiverPlayerIDs: row.ReceiverPlayerIds,
		ProposerCredits:   int(row.ProposerCredits),
		ReceiverCredits:   int(row.ReceiverCredits),
		Status:            models.TradeStatus(row.Status),
		CreatedAt:         row.CreatedAt,
	}
}
