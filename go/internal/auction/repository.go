package auction

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/fantaleague/fantamarket/go/internal/auction/db"
	"github.com/fantaleague/fantamarket/go/internal/auditlog"
	auditdb "github.com/fantaleague/fantamarket/go/internal/auditlog/db"
	"github.com/fantaleague/fantamarket/go/internal/ledger"
	ledgerdb "github.com/fantaleague/fantamarket/go/internal/ledger/db"
	"github.com/fantaleague/fantamarket/go/internal/models"
	rosterdb "github.com/fantaleague/fantamarket/go/internal/roster/db"
	"github.com/fantaleague/fantamarket/go/internal/sqlutil"
)

// Repository is the durable auction store. Mutating market operations run
// through InTx: one database transaction spanning the auction row (locked
// FOR UPDATE), the ledger, the roster and the audit log, so a bid's
// read-validate-rotate-write sequence commits as a single serializable
// unit per auction.
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

// InTx runs fn against a transaction-scoped view of the market.
func (r *Repository) InTx(ctx context.Context, fn func(tx Tx) error) error {
	return sqlutil.RunTx(ctx, r.db, func(tx *sql.Tx) error {
		return fn(&marketTx{
			auctions: r.queries.WithTx(tx),
			ledger:   ledger.NewRepository(ledgerdb.New(tx)),
			rosters:  rosterdb.New(tx),
			audit:    auditlog.NewRepository(auditdb.New(tx)),
		})
	})
}

func (r *Repository) GetAuction(ctx context.Context, id uuid.UUID) (*models.Auction, error) {
	auction, err := r.queries.GetAuction(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAuctionNotFound
		}
		return nil, fmt.Errorf("failed to get auction: %w", err)
	}
	return dbAuctionToModel(auction), nil
}

// ListOpenAuctions returns open auctions soonest-ending first.
func (r *Repository) ListOpenAuctions(ctx context.Context) ([]models.Auction, error) {
	auctions, err := r.queries.ListOpenAuctions(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list open auctions: %w", err)
	}

	result := make([]models.Auction, len(auctions))
	for i, auction := range auctions {
		result[i] = *dbAuctionToModel(auction)
	}
	return result, nil
}

// NextOpenDeadline returns the earliest end time over all open auctions,
// or nil when no auction is open.
func (r *Repository) NextOpenDeadline(ctx context.Context) (*time.Time, error) {
	deadline, err := r.queries.NextOpenDeadline(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch next auction deadline: %w", err)
	}
	return sqlutil.FromSqlTime(deadline), nil
}

// ListAuctionsDueForResolution returns ids of open auctions whose
// deadline has passed.
func (r *Repository) ListAuctionsDueForResolution(ctx context.Context, now time.Time, limit int32) ([]uuid.UUID, error) {
	ids, err := r.queries.ListAuctionsDueForResolution(ctx, db.ListAuctionsDueForResolutionParams{
		EndTime: now,
		Limit:   limit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list due auctions: %w", err)
	}
	return ids, nil
}

// marketTx implements Tx over one *sql.Tx.
type marketTx struct {
	auctions *db.Queries
	ledger   *ledger.Repository
	rosters  *rosterdb.Queries
	audit    *auditlog.Repository
}

func (t *marketTx) GetAuctionForUpdate(ctx context.Context, id uuid.UUID) (*models.Auction, error) {
	auction, err := t.auctions.GetAuctionForUpdate(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAuctionNotFound
		}
		return nil, fmt.Errorf("failed to lock auction: %w", err)
	}
	return dbAuctionToModel(auction), nil
}

func (t *marketTx) OpenAuctionExistsForPlayer(ctx context.Context, playerID uuid.UUID) (bool, error) {
	_, err := t.auctions.GetOpenAuctionByPlayer(ctx, playerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("failed to check open auction for player: %w", err)
	}
	return true, nil
}

func (t *marketTx) InsertAuction(ctx context.Context, playerID uuid.UUID, startPrice int, endTime time.Time) (*models.Auction, error) {
	auction, err := t.auctions.InsertAuction(ctx, db.InsertAuctionParams{
		ID:           uuid.New(),
		PlayerID:     playerID,
		CurrentPrice: int32(startPrice),
		EndTime:      endTime,
	})
	if err != nil {
		// The partial unique index on open auctions backstops the
		// existence check under concurrent creation.
		if sqlutil.IsUniqueViolation(err, "auctions_open_player_idx") {
			return nil, ErrAuctionAlreadyActive
		}
		return nil, fmt.Errorf("failed to insert auction: %w", err)
	}
	return dbAuctionToModel(auction), nil
}

func (t *marketTx) ApplyBid(ctx context.Context, id uuid.UUID, price int, winnerTeamID uuid.UUID, endTime time.Time) error {
	if err := t.auctions.UpdateAuctionBid(ctx, db.UpdateAuctionBidParams{
		ID:                  id,
		CurrentPrice:        int32(price),
		CurrentWinnerTeamID: uuid.NullUUID{UUID: winnerTeamID, Valid: true},
		EndTime:             endTime,
	}); err != nil {
		return fmt.Errorf("failed to apply bid: %w", err)
	}
	return nil
}

func (t *marketTx) CloseAuction(ctx context.Context, id uuid.UUID) (bool, error) {
	affected, err := t.auctions.CloseAuction(ctx, id)
	if err != nil {
		return false, fmt.Errorf("failed to close auction: %w", err)
	}
	return affected > 0, nil
}

func (t *marketTx) PlayerOwned(ctx context.Context, playerID uuid.UUID) (bool, error) {
	owned, err := t.rosters.PlayerOwned(ctx, playerID)
	if err != nil {
		return false, fmt.Errorf("failed to check player ownership: %w", err)
	}
	return owned, nil
}

func (t *marketTx) AssignPlayerToRoster(ctx context.Context, teamID, playerID uuid.UUID, price int) error {
	if _, err := t.rosters.InsertRosterEntry(ctx, rosterdb.InsertRosterEntryParams{
		ID:            uuid.New(),
		TeamID:        teamID,
		PlayerID:      playerID,
		PurchasePrice: int32(price),
	}); err != nil {
		return fmt.Errorf("failed to assign player to roster: %w", err)
	}
	return nil
}

func (t *marketTx) Balance(ctx context.Context, teamID uuid.UUID) (int, error) {
	return t.ledger.Balance(ctx, teamID)
}

func (t *marketTx) Debit(ctx context.Context, teamID uuid.UUID, amount int) error {
	_, err := t.ledger.Debit(ctx, teamID, amount)
	return err
}

func (t *marketTx) Credit(ctx context.Context, teamID uuid.UUID, amount int) error {
	_, err := t.ledger.Credit(ctx, teamID, amount)
	return err
}

func (t *marketTx) RecordAuditEvent(ctx context.Context, action string, details any, actorID *uuid.UUID) error {
	return t.audit.Record(ctx, action, details, actorID)
}

func dbAuctionToModel(dbAuction db.Auction) *models.Auction {
	return &models.Auction{
		ID:                  dbAuction.ID,
		PlayerID:            dbAuction.PlayerID,
		CurrentPrice:        int(dbAuction.CurrentPrice),
		CurrentWinnerTeamID: sqlutil.FromNullUUID(dbAuction.CurrentWinnerTeamID),
		EndTime:             dbAuction.EndTime,
		Status:              models.AuctionStatus(dbAuction.Status),
		CreatedAt:           dbAuction.CreatedAt,
	}
}
