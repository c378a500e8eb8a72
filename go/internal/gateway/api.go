package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/fantaleague/fantamarket/go/internal/auction"
	"github.com/fantaleague/fantamarket/go/internal/auditlog"
	"github.com/fantaleague/fantamarket/go/internal/roster"
	"github.com/fantaleague/fantamarket/go/internal/settings"
	"github.com/fantaleague/fantamarket/go/internal/trade"
)

// API exposes the market over JSON HTTP.
type API struct {
	auctions *auction.App
	rosters  *roster.App
	trades   *trade.App
	settings *settings.Provider
	logs     *auditlog.Repository
}

func NewAPI(auctions *auction.App, rosters *roster.App, trades *trade.App, settingsProvider *settings.Provider, logs *auditlog.Repository) *API {
	return &API{
		auctions: auctions,
		rosters:  rosters,
		trades:   trades,
		settings: settingsProvider,
		logs:     logs,
	}
}

// RegisterRoutes registers the API routes with an HTTP mux.
func (a *API) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/auctions", a.handleCreateAuction)
	mux.HandleFunc("GET /api/auctions", a.handleListAuctions)
	mux.HandleFunc("GET /api/auctions/{id}", a.handleGetAuction)
	mux.HandleFunc("POST /api/auctions/{id}/bids", a.handlePlaceBid)
	mux.HandleFunc("POST /api/auctions/{id}/resolve", a.handleResolveAuction)

	mux.HandleFunc("GET /api/teams/{id}/roster", a.handleListRoster)
	mux.HandleFunc("POST /api/teams/{id}/release", a.handleReleasePlayer)
	mux.HandleFunc("GET /api/teams/{id}/trades", a.handleListTrades)

	mux.HandleFunc("POST /api/trades", a.handleProposeTrade)
	mux.HandleFunc("POST /api/trades/{id}/accept", a.handleTradeResponse(a.trades.Accept))
	mux.HandleFunc("POST /api/trades/{id}/reject", a.handleTradeResponse(a.trades.Reject))
	mux.HandleFunc("POST /api/trades/{id}/cancel", a.handleTradeResponse(a.trades.Cancel))

	mux.HandleFunc("GET /api/logs", a.handleListLogs)
	mux.HandleFunc("PUT /api/settings/{key}", a.handleUpdateSetting)
	mux.HandleFunc("GET /api/settings", a.handleGetSettings)
}

func (a *API) handleCreateAuction(w http.ResponseWriter, r *http.Request) {
	var req auction.CreateAuctionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	created, err := a.auctions.CreateAuction(r.Context(), req)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (a *API) handleListAuctions(w http.ResponseWriter, r *http.Request) {
	auctions, err := a.auctions.ListOpenAuctions(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, auctions)
}

func (a *API) handleGetAuction(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}

	found, err := a.auctions.GetAuction(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, found)
}

func (a *API) handlePlaceBid(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}

	var req auction.PlaceBidRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.AuctionID = id

	updated, err := a.auctions.PlaceBid(r.Context(), req)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (a *API) handleResolveAuction(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}

	resolution, err := a.auctions.ResolveAuction(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resolution)
}

func (a *API) handleListRoster(w http.ResponseWriter, r *http.Request) {
	teamID, ok := parseID(w, r, "id")
	if !ok {
		return
	}

	entries, err := a.rosters.ListRoster(r.Context(), teamID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (a *API) handleReleasePlayer(w http.ResponseWriter, r *http.Request) {
	teamID, ok := parseID(w, r, "id")
	if !ok {
		return
	}

	var req struct {
		PlayerID uuid.UUID `json:"player_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	refund, err := a.rosters.ReleasePlayer(r.Context(), teamID, req.PlayerID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"refund": refund})
}

func (a *API) handleProposeTrade(w http.ResponseWriter, r *http.Request) {
	var req trade.ProposeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	created, err := a.trades.Propose(r.Context(), req)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (a *API) handleTradeResponse(fn func(ctx context.Context, tradeID, actorTeamID uuid.UUID) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tradeID, ok := parseID(w, r, "id")
		if !ok {
			return
		}

		var req struct {
			TeamID uuid.UUID `json:"team_id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.TeamID == uuid.Nil {
			writeError(w, http.StatusBadRequest, "team_id is required")
			return
		}

		if err := fn(r.Context(), tradeID, req.TeamID); err != nil {
			writeDomainError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func (a *API) handleListTrades(w http.ResponseWriter, r *http.Request) {
	teamID, ok := parseID(w, r, "id")
	if !ok {
		return
	}

	proposals, err := a.trades.ListForTeam(r.Context(), teamID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, proposals)
}

func (a *API) handleListLogs(w http.ResponseWriter, r *http.Request) {
	limit := int32(50)
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 || parsed > 500 {
			writeError(w, http.StatusBadRequest, "limit must be between 1 and 500")
			return
		}
		limit = int32(parsed)
	}

	events, err := a.logs.ListRecent(r.Context(), limit)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, events)
}

func (a *API) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	current, err := a.settings.Market(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, current)
}

func (a *API) handleUpdateSetting(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")

	var req struct {
		Value string `json:"value"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if _, err := strconv.Atoi(req.Value); err != nil {
		writeError(w, http.StatusBadRequest, "value must be an integer")
		return
	}

	if err := a.settings.UpdateSetting(r.Context(), key, req.Value); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func parseID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue(name))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid "+name)
		return uuid.Nil, false
	}
	return id, true
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Error().Err(err).Msg("failed to encode response")
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// writeDomainError maps domain errors to HTTP statuses.
func writeDomainError(w http.ResponseWriter, err error) {
	var marketClosed *auction.MarketClosedError
	var bidTooLow *auction.BidTooLowError

	switch {
	case errors.As(err, &marketClosed), errors.As(err, &bidTooLow):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, auction.ErrAuctionNotFound),
		errors.Is(err, trade.ErrTradeNotFound),
		errors.Is(err, roster.ErrPlayerNotOnRoster):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, auction.ErrAuctionNotOpen),
		errors.Is(err, auction.ErrAuctionEnded),
		errors.Is(err, auction.ErrAuctionStillOpen),
		errors.Is(err, auction.ErrAuctionAlreadyActive),
		errors.Is(err, auction.ErrPlayerUnavailable),
		errors.Is(err, auction.ErrInsufficientCredits),
		errors.Is(err, auction.ErrConflict),
		errors.Is(err, trade.ErrTradeNotPending),
		errors.Is(err, trade.ErrRosterChanged):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, trade.ErrNotProposer),
		errors.Is(err, trade.ErrNotReceiver):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, trade.ErrEmptyTrade),
		errors.Is(err, trade.ErrTradeWithSelf),
		errors.Is(err, trade.ErrDuplicatePlayer):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		log.Error().Err(err).Msg("internal error")
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}
