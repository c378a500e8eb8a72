package auction

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/fantaleague/fantamarket/go/internal/auction/events"
	"github.com/fantaleague/fantamarket/go/internal/models"
	"github.com/fantaleague/fantamarket/go/internal/sqlutil"
)

// maxBidAttempts bounds the internal retry loop for transactions that
// lose a serialization conflict. Exhaustion surfaces as ErrConflict.
const maxBidAttempts = 3

// Store defines what the app layer needs from the auction repository.
type Store interface {
	InTx(ctx context.Context, fn func(tx Tx) error) error
	GetAuction(ctx context.Context, id uuid.UUID) (*models.Auction, error)
	ListOpenAuctions(ctx context.Context) ([]models.Auction, error)
	NextOpenDeadline(ctx context.Context) (*time.Time, error)
	ListAuctionsDueForResolution(ctx context.Context, now time.Time, limit int32) ([]uuid.UUID, error)
}

// Tx is the transaction-scoped view a market operation works against.
// Everything called on it commits or rolls back together.
type Tx interface {
	GetAuctionForUpdate(ctx context.Context, id uuid.UUID) (*models.Auction, error)
	OpenAuctionExistsForPlayer(ctx context.Context, playerID uuid.UUID) (bool, error)
	InsertAuction(ctx context.Context, playerID uuid.UUID, startPrice int, endTime time.Time) (*models.Auction, error)
	ApplyBid(ctx context.Context, id uuid.UUID, price int, winnerTeamID uuid.UUID, endTime time.Time) error
	CloseAuction(ctx context.Context, id uuid.UUID) (bool, error)

	PlayerOwned(ctx context.Context, playerID uuid.UUID) (bool, error)
	AssignPlayerToRoster(ctx context.Context, teamID, playerID uuid.UUID, price int) error

	Balance(ctx context.Context, teamID uuid.UUID) (int, error)
	Debit(ctx context.Context, teamID uuid.UUID, amount int) error
	Credit(ctx context.Context, teamID uuid.UUID, amount int) error

	RecordAuditEvent(ctx context.Context, action string, details any, actorID *uuid.UUID) error
}

// SettingsProvider hands out the current typed market settings.
type SettingsProvider interface {
	Market(ctx context.Context) (models.MarketSettings, error)
}

// Waker is notified when a new or sooner deadline exists, so the sweep
// worker can re-arm its timer.
type Waker interface {
	Wake()
}

// App implements the player-acquisition auction engine: creation under
// the market window, the bidding protocol with escrow rotation and
// anti-snipe extension, and idempotent time-boxed resolution.
type App struct {
	store    Store
	settings SettingsProvider
	clock    clockwork.Clock
	waker    Waker
}

func NewApp(store Store, settings SettingsProvider, clock clockwork.Clock) *App {
	return &App{
		store:    store,
		settings: settings,
		clock:    clock,
	}
}

// SetWaker wires the sweep worker once it exists. Optional.
func (a *App) SetWaker(w Waker) {
	a.waker = w
}

func (a *App) wake() {
	if a.waker != nil {
		a.waker.Wake()
	}
}

type CreateAuctionRequest struct {
	PlayerID   uuid.UUID `json:"player_id"`
	TeamID     uuid.UUID `json:"team_id"`
	StartPrice int       `json:"start_price"`
}

type PlaceBidRequest struct {
	AuctionID uuid.UUID `json:"auction_id"`
	TeamID    uuid.UUID `json:"team_id"`
	Amount    int       `json:"amount"`
}

// Resolution describes the outcome of closing an auction. Settled is
// false when a concurrent or earlier call already performed settlement.
type Resolution struct {
	AuctionID    uuid.UUID  `json:"auction_id"`
	PlayerID     uuid.UUID  `json:"player_id"`
	WinnerTeamID *uuid.UUID `json:"winner_team_id,omitempty"`
	Price        int        `json:"price"`
	Settled      bool       `json:"settled"`
}

// CreateAuction opens a new auction for an unowned player. Preconditions
// are checked in order: market window, player availability, no existing
// open auction. No funds are escrowed until the first bid.
func (a *App) CreateAuction(ctx context.Context, req CreateAuctionRequest) (*models.Auction, error) {
	if err := a.validateCreateAuctionRequest(req); err != nil {
		return nil, err
	}

	settings, err := a.settings.Market(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load market settings: %w", err)
	}

	now := a.clock.Now()
	if !WithinMarketWindow(now, settings.OpenHour, settings.CloseHour) {
		return nil, &MarketClosedError{OpenHour: settings.OpenHour, CloseHour: settings.CloseHour}
	}

	var created *models.Auction
	err = a.store.InTx(ctx, func(tx Tx) error {
		owned, err := tx.PlayerOwned(ctx, req.PlayerID)
		if err != nil {
			return err
		}
		if owned {
			return ErrPlayerUnavailable
		}

		active, err := tx.OpenAuctionExistsForPlayer(ctx, req.PlayerID)
		if err != nil {
			return err
		}
		if active {
			return ErrAuctionAlreadyActive
		}

		endTime := now.Add(time.Duration(settings.AuctionDurationHours) * time.Hour)
		created, err = tx.InsertAuction(ctx, req.PlayerID, req.StartPrice, endTime)
		if err != nil {
			return err
		}

		return tx.RecordAuditEvent(ctx, events.ActionAuctionStarted, events.AuctionStartedPayload{
			AuctionID:  created.ID,
			PlayerID:   created.PlayerID,
			StartPrice: created.CurrentPrice,
			EndTime:    created.EndTime,
		}, &req.TeamID)
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("auction_id", created.ID.String()).
		Str("player_id", created.PlayerID.String()).
		Int("start_price", created.CurrentPrice).
		Time("end_time", created.EndTime).
		Msg("auction created")

	// The new auction may carry the soonest deadline.
	a.wake()
	return created, nil
}

// errBidExpired signals inside the bid transaction that the deadline has
// already passed; the lazy resolution happens outside that transaction.
var errBidExpired = errors.New("bid arrived after deadline")

// PlaceBid validates and applies a bid against the current persisted
// auction state. The auction row is locked for the whole unit, so two
// concurrent bids are linearized: the later one revalidates against the
// earlier one's committed price. Serialization losers are retried a
// bounded number of times.
func (a *App) PlaceBid(ctx context.Context, req PlaceBidRequest) (*models.Auction, error) {
	if err := a.validatePlaceBidRequest(req); err != nil {
		return nil, err
	}

	settings, err := a.settings.Market(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load market settings: %w", err)
	}

	var (
		updated  *models.Auction
		extended bool
	)

	for attempt := 1; ; attempt++ {
		updated, extended, err = a.tryPlaceBid(ctx, req, settings)
		if err == nil {
			break
		}
		if errors.Is(err, errBidExpired) {
			// Lazy closing path: resolve the expired auction as a side
			// effect of the rejected bid, in its own transaction.
			if _, resolveErr := a.ResolveAuction(ctx, req.AuctionID); resolveErr != nil {
				log.Error().
					Err(resolveErr).
					Str("auction_id", req.AuctionID.String()).
					Msg("lazy resolution after expired bid failed")
			}
			return nil, ErrAuctionEnded
		}
		if sqlutil.IsSerializationFailure(err) && attempt < maxBidAttempts {
			log.Debug().
				Str("auction_id", req.AuctionID.String()).
				Int("attempt", attempt).
				Msg("bid transaction conflicted, retrying")
			continue
		}
		if sqlutil.IsSerializationFailure(err) {
			return nil, ErrConflict
		}
		return nil, err
	}

	log.Info().
		Str("auction_id", updated.ID.String()).
		Str("team_id", req.TeamID.String()).
		Int("amount", req.Amount).
		Bool("extended", extended).
		Msg("bid accepted")

	if extended {
		a.wake()
	}
	return updated, nil
}

func (a *App) tryPlaceBid(ctx context.Context, req PlaceBidRequest, settings models.MarketSettings) (*models.Auction, bool, error) {
	var (
		updated  *models.Auction
		extended bool
	)

	err := a.store.InTx(ctx, func(tx Tx) error {
		auction, err := tx.GetAuctionForUpdate(ctx, req.AuctionID)
		if err != nil {
			return err
		}
		if auction.Status != models.AuctionStatusOpen {
			return ErrAuctionNotOpen
		}

		now := a.clock.Now()
		if now.After(auction.EndTime) {
			return errBidExpired
		}

		if req.Amount <= auction.CurrentPrice {
			return &BidTooLowError{CurrentPrice: auction.CurrentPrice}
		}

		balance, err := tx.Balance(ctx, req.TeamID)
		if err != nil {
			return err
		}
		if balance < req.Amount {
			return ErrInsufficientCredits
		}

		// Anti-snipe: a bid landing inside the closing threshold pushes
		// the deadline out so competitors get a fresh window. endTime
		// never moves backward.
		endTime := auction.EndTime
		if auction.EndTime.Sub(now) < time.Duration(settings.SnipeThresholdSeconds)*time.Second {
			endTime = endTime.Add(time.Duration(settings.SnipeExtensionMinutes) * time.Minute)
			extended = true
		}

		// Escrow rotation: release the previous leader's reserved funds
		// before reserving the new bidder's, inside the same transaction.
		if auction.CurrentWinnerTeamID != nil {
			if err := tx.Credit(ctx, *auction.CurrentWinnerTeamID, auction.CurrentPrice); err != nil {
				return err
			}
		}
		if err := tx.Debit(ctx, req.TeamID, req.Amount); err != nil {
			return err
		}

		if err := tx.ApplyBid(ctx, auction.ID, req.Amount, req.TeamID, endTime); err != nil {
			return err
		}

		if err := tx.RecordAuditEvent(ctx, events.ActionBidPlaced, events.BidPlacedPayload{
			AuctionID: auction.ID,
			PlayerID:  auction.PlayerID,
			TeamID:    req.TeamID,
			Amount:    req.Amount,
			EndTime:   endTime,
			Extended:  extended,
		}, &req.TeamID); err != nil {
			return err
		}

		winner := req.TeamID
		updated = &models.Auction{
			ID:                  auction.ID,
			PlayerID:            auction.PlayerID,
			CurrentPrice:        req.Amount,
			CurrentWinnerTeamID: &winner,
			EndTime:             endTime,
			Status:              models.AuctionStatusOpen,
			CreatedAt:           auction.CreatedAt,
		}
		return nil
	})
	return updated, extended, err
}

// ResolveAuction closes an auction whose deadline has passed and settles
// it: the winner's escrow becomes the purchase price and the player joins
// their roster; a winnerless auction just expires. The settlement and the
// status flip commit together, and only the caller that flips OPEN to
// CLOSED settles, so resolution is idempotent under concurrency.
func (a *App) ResolveAuction(ctx context.Context, auctionID uuid.UUID) (*Resolution, error) {
	var resolution *Resolution

	err := a.store.InTx(ctx, func(tx Tx) error {
		auction, err := tx.GetAuctionForUpdate(ctx, auctionID)
		if err != nil {
			return err
		}

		if auction.Status != models.AuctionStatusOpen {
			// Already settled by an earlier or concurrent call.
			resolution = &Resolution{
				AuctionID:    auction.ID,
				PlayerID:     auction.PlayerID,
				WinnerTeamID: auction.CurrentWinnerTeamID,
				Price:        auction.CurrentPrice,
				Settled:      false,
			}
			return nil
		}

		if a.clock.Now().Before(auction.EndTime) {
			return ErrAuctionStillOpen
		}

		if auction.CurrentWinnerTeamID != nil {
			// Escrow stays debited: it is the purchase price.
			if err := tx.AssignPlayerToRoster(ctx, *auction.CurrentWinnerTeamID, auction.PlayerID, auction.CurrentPrice); err != nil {
				return err
			}
			if err := tx.RecordAuditEvent(ctx, events.ActionAuctionWon, events.AuctionWonPayload{
				AuctionID: auction.ID,
				PlayerID:  auction.PlayerID,
				TeamID:    *auction.CurrentWinnerTeamID,
				Price:     auction.CurrentPrice,
			}, nil); err != nil {
				return err
			}
		} else {
			if err := tx.RecordAuditEvent(ctx, events.ActionAuctionExpired, events.AuctionExpiredPayload{
				AuctionID: auction.ID,
				PlayerID:  auction.PlayerID,
			}, nil); err != nil {
				return err
			}
		}

		closed, err := tx.CloseAuction(ctx, auction.ID)
		if err != nil {
			return err
		}
		if !closed {
			// Row lock means this cannot race; anything else is corruption.
			return fmt.Errorf("auction %s vanished during resolution", auction.ID)
		}

		resolution = &Resolution{
			AuctionID:    auction.ID,
			PlayerID:     auction.PlayerID,
			WinnerTeamID: auction.CurrentWinnerTeamID,
			Price:        auction.CurrentPrice,
			Settled:      true,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if resolution.Settled {
		evt := log.Info().
			Str("auction_id", resolution.AuctionID.String()).
			Str("player_id", resolution.PlayerID.String())
		if resolution.WinnerTeamID != nil {
			evt.Str("winner_team_id", resolution.WinnerTeamID.String()).
				Int("price", resolution.Price).
				Msg("auction won")
		} else {
			evt.Msg("auction expired with no bids")
		}
	}
	return resolution, nil
}

// GetAuction returns one auction.
func (a *App) GetAuction(ctx context.Context, id uuid.UUID) (*models.Auction, error) {
	return a.store.GetAuction(ctx, id)
}

// ListOpenAuctions returns open auctions ordered by ascending end time.
func (a *App) ListOpenAuctions(ctx context.Context) ([]models.Auction, error) {
	return a.store.ListOpenAuctions(ctx)
}

// NextOpenDeadline exposes the soonest deadline for the sweep worker.
func (a *App) NextOpenDeadline(ctx context.Context) (*time.Time, error) {
	return a.store.NextOpenDeadline(ctx)
}

// AuctionsDueForResolution exposes expired open auctions for the sweep worker.
func (a *App) AuctionsDueForResolution(ctx context.Context, limit int32) ([]uuid.UUID, error) {
	return a.store.ListAuctionsDueForResolution(ctx, a.clock.Now(), limit)
}

func (a *App) validateCreateAuctionRequest(req CreateAuctionRequest) error {
	if req.PlayerID == uuid.Nil {
		return fmt.Errorf("player_id is required")
	}
	if req.TeamID == uuid.Nil {
		return fmt.Errorf("team_id is required")
	}
	if req.StartPrice <= 0 {
		return fmt.Errorf("start_price must be positive, got %d", req.StartPrice)
	}
	return nil
}

func (a *App) validatePlaceBidRequest(req PlaceBidRequest) error {
	if req.AuctionID == uuid.Nil {
		return fmt.Errorf("auction_id is required")
	}
	if req.TeamID == uuid.Nil {
		return fmt.Errorf("team_id is required")
	}
	if req.Amount <= 0 {
		return fmt.Errorf("amount must be positive, got %d", req.Amount)
	}
	return nil
}
