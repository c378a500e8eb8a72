package trade

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/fantaleague/fantamarket/go/internal/auction/events"
	"github.com/fantaleague/fantamarket/go/internal/models"
)

var (
	ErrNotProposer     = errors.New("only the proposing team can cancel a trade")
	ErrNotReceiver     = errors.New("only the receiving team can respond to a trade")
	ErrRosterChanged   = errors.New("a traded player is no longer on the offering team's roster")
	ErrEmptyTrade      = errors.New("trade proposal must include at least one player or credits")
	ErrTradeWithSelf   = errors.New("cannot trade with your own team")
	ErrDuplicatePlayer = errors.New("a player appears on both sides of the trade")
)

// Store defines what the app layer needs from the trade repository.
type Store interface {
	InTx(ctx context.Context, fn func(tx Tx) error) error
	ListForTeam(ctx context.Context, teamID uuid.UUID) ([]models.TradeProposal, error)
}

// Tx is the transaction-scoped view a trade operation works against.
type Tx interface {
	GetProposalForUpdate(ctx context.Context, id uuid.UUID) (*models.TradeProposal, error)
	InsertProposal(ctx context.Context, proposal models.TradeProposal) (*models.TradeProposal, error)
	SetStatus(ctx context.Context, id uuid.UUID, status models.TradeStatus) error
	ReassignPlayers(ctx context.Context, fromTeamID, toTeamID uuid.UUID, playerIDs []uuid.UUID) (int, error)
	Debit(ctx context.Context, teamID uuid.UUID, amount int) error
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

type ProposeRequest struct {
	ProposerTeamID    uuid.UUID   `json:"proposer_team_id"`
	ReceiverTeamID    uuid.UUID   `json:"receiver_team_id"`
	ProposerPlayerIDs []uuid.UUID `json:"proposer_player_ids"`
	ReceiverPlayerIDs []uuid.UUID `json:"receiver_player_ids"`
	ProposerCredits   int         `json:"proposer_credits"`
	ReceiverCredits   int         `json:"receiver_credits"`
}

// Propose records a pending trade offer. Nothing moves until the
// receiver accepts.
func (a *App) Propose(ctx context.Context, req ProposeRequest) (*models.TradeProposal, error) {
	if err := validateProposeRequest(req); err != nil {
		return nil, err
	}

	var created *models.TradeProposal
	err := a.store.InTx(ctx, func(tx Tx) error {
		var err error
		created, err = tx.InsertProposal(ctx, models.TradeProposal{
			ID:                uuid.New(),
			ProposerTeamID:    req.ProposerTeamID,
			ReceiverTeamID:    req.ReceiverTeamID,
			ProposerPlayerIDs: req.ProposerPlayerIDs,
			ReceiverPlayerIDs: req.ReceiverPlayerIDs,
			ProposerCredits:   req.ProposerCredits,
			ReceiverCredits:   req.ReceiverCredits,
		})
		if err != nil {
			return err
		}

		return tx.RecordAuditEvent(ctx, events.ActionTradeProposed, events.TradeProposedPayload{
			TradeID:        created.ID,
			ProposerTeamID: created.ProposerTeamID,
			ReceiverTeamID: created.ReceiverTeamID,
		}, &req.ProposerTeamID)
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("trade_id", created.ID.String()).
		Str("proposer_team_id", created.ProposerTeamID.String()).
		Str("receiver_team_id", created.ReceiverTeamID.String()).
		Msg("trade proposed")
	return created, nil
}

// Accept settles a pending proposal: players swap rosters and the credit
// difference settles through the ledger, all in one transaction. Only
// the receiving team can accept.
func (a *App) Accept(ctx context.Context, tradeID, actorTeamID uuid.UUID) error {
	err := a.store.InTx(ctx, func(tx Tx) error {
		proposal, err := tx.GetProposalForUpdate(ctx, tradeID)
		if err != nil {
			return err
		}
		if proposal.Status != models.TradeStatusPending {
			return ErrTradeNotPending
		}
		if proposal.ReceiverTeamID != actorTeamID {
			return ErrNotReceiver
		}

		moved, err := tx.ReassignPlayers(ctx, proposal.ProposerTeamID, proposal.ReceiverTeamID, proposal.ProposerPlayerIDs)
		if err != nil {
			return err
		}
		if moved != len(proposal.ProposerPlayerIDs) {
			return ErrRosterChanged
		}

		moved, err = tx.ReassignPlayers(ctx, proposal.ReceiverTeamID, proposal.ProposerTeamID, proposal.ReceiverPlayerIDs)
		if err != nil {
			return err
		}
		if moved != len(proposal.ReceiverPlayerIDs) {
			return ErrRosterChanged
		}

		// Credits settle as the net difference, so only one side needs
		// the funds on hand.
		if net := proposal.ProposerCredits - proposal.ReceiverCredits; net > 0 {
			if err := tx.Debit(ctx, proposal.ProposerTeamID, net); err != nil {
				return err
			}
			if err := tx.Credit(ctx, proposal.ReceiverTeamID, net); err != nil {
				return err
			}
		} else if net < 0 {
			if err := tx.Debit(ctx, proposal.ReceiverTeamID, -net); err != nil {
				return err
			}
			if err := tx.Credit(ctx, proposal.ProposerTeamID, -net); err != nil {
				return err
			}
		}

		if err := tx.SetStatus(ctx, tradeID, models.TradeStatusAccepted); err != nil {
			return err
		}

		return tx.RecordAuditEvent(ctx, events.ActionTradeAccepted, events.TradeAcceptedPayload{
			TradeID: tradeID,
		}, &actorTeamID)
	})
	if err != nil {
		return err
	}

	log.Info().Str("trade_id", tradeID.String()).Msg("trade accepted")
	return nil
}

// Reject declines a pending proposal. Only the receiving team can reject.
func (a *App) Reject(ctx context.Context, tradeID, actorTeamID uuid.UUID) error {
	return a.transition(ctx, tradeID, actorTeamID, models.TradeStatusRejected)
}

// Cancel withdraws a pending proposal. Only the proposing team can cancel.
func (a *App) Cancel(ctx context.Context, tradeID, actorTeamID uuid.UUID) error {
	return a.transition(ctx, tradeID, actorTeamID, models.TradeStatusCancelled)
}

func (a *App) transition(ctx context.Context, tradeID, actorTeamID uuid.UUID, status models.TradeStatus) error {
	return a.store.InTx(ctx, func(tx Tx) error {
		proposal, err := tx.GetProposalForUpdate(ctx, tradeID)
		if err != nil {
			return err
		}
		if proposal.Status != models.TradeStatusPending {
			return ErrTradeNotPending
		}
		switch status {
		case models.TradeStatusRejected:
			if proposal.ReceiverTeamID != actorTeamID {
				return ErrNotReceiver
			}
		case models.TradeStatusCancelled:
			if proposal.ProposerTeamID != actorTeamID {
				return ErrNotProposer
			}
		}
		return tx.SetStatus(ctx, tradeID, status)
	})
}

// ListForTeam returns a team's proposals, sent and received.
func (a *App) ListForTeam(ctx context.Context, teamID uuid.UUID) ([]models.TradeProposal, error) {
	return a.store.ListForTeam(ctx, teamID)
}

func validateProposeRequest(req ProposeRequest) error {
	if req.ProposerTeamID == uuid.Nil || req.ReceiverTeamID == uuid.Nil {
		return fmt.Errorf("proposer_team_id and receiver_team_id are required")
	}
	if req.ProposerTeamID == req.ReceiverTeamID {
		return ErrTradeWithSelf
	}
	if req.ProposerCredits < 0 || req.ReceiverCredits < 0 {
		return fmt.Errorf("credit amounts must be non-negative")
	}
	if len(req.ProposerPlayerIDs) == 0 && len(req.ReceiverPlayerIDs) == 0 &&
		req.ProposerCredits == 0 && req.ReceiverCredits == 0 {
		return ErrEmptyTrade
	}

	seen := make(map[uuid.UUID]bool, len(req.ProposerPlayerIDs)+len(req.ReceiverPlayerIDs))
	for _, id := range req.ProposerPlayerIDs {
		seen[id] = true
	}
	for _, id := range req.ReceiverPlayerIDs {
		if seen[id] {
			return ErrDuplicatePlayer
		}
	}
	return nil
}
