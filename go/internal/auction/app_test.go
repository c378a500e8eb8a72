package auction

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/lib/pq"

	"github.com/fantaleague/fantamarket/go/internal/models"
)

// fakeStore is an in-memory Store. InTx serializes callers with a mutex
// and restores a snapshot when fn fails, mimicking transaction rollback.
type fakeStore struct {
	mu       sync.Mutex
	auctions map[uuid.UUID]*models.Auction
	balances map[uuid.UUID]int
	owned    map[uuid.UUID]uuid.UUID // player -> team
	prices   map[uuid.UUID]int       // player -> purchase price
	events   []recordedEvent

	// Inject this many serialization failures before InTx succeeds.
	failuresLeft int
}

type recordedEvent struct {
	action  string
	details any
	actorID *uuid.UUID
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		auctions: make(map[uuid.UUID]*models.Auction),
		balances: make(map[uuid.UUID]int),
		owned:    make(map[uuid.UUID]uuid.UUID),
		prices:   make(map[uuid.UUID]int),
	}
}

func (s *fakeStore) snapshot() *fakeStore {
	snap := newFakeStore()
	for id, a := range s.auctions {
		copied := *a
		snap.auctions[id] = &copied
	}
	for id, b := range s.balances {
		snap.balances[id] = b
	}
	for p, t := range s.owned {
		snap.owned[p] = t
	}
	for p, price := range s.prices {
		snap.prices[p] = price
	}
	snap.events = append(snap.events, s.events...)
	return snap
}

func (s *fakeStore) restore(snap *fakeStore) {
	s.auctions = snap.auctions
	s.balances = snap.balances
	s.owned = snap.owned
	s.prices = snap.prices
	s.events = snap.events
}

func (s *fakeStore) InTx(ctx context.Context, fn func(tx Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failuresLeft > 0 {
		s.failuresLeft--
		return &pq.Error{Code: "40001"}
	}

	snap := s.snapshot()
	if err := fn(&fakeTx{store: s}); err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

func (s *fakeStore) GetAuction(ctx context.Context, id uuid.UUID) (*models.Auction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.auctions[id]
	if !ok {
		return nil, ErrAuctionNotFound
	}
	copied := *a
	return &copied, nil
}

func (s *fakeStore) ListOpenAuctions(ctx context.Context) ([]models.Auction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var open []models.Auction
	for _, a := range s.auctions {
		if a.Status == models.AuctionStatusOpen {
			open = append(open, *a)
		}
	}
	return open, nil
}

func (s *fakeStore) NextOpenDeadline(ctx context.Context) (*time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var next *time.Time
	for _, a := range s.auctions {
		if a.Status != models.AuctionStatusOpen {
			continue
		}
		if next == nil || a.EndTime.Before(*next) {
			t := a.EndTime
			next = &t
		}
	}
	return next, nil
}

func (s *fakeStore) ListAuctionsDueForResolution(ctx context.Context, now time.Time, limit int32) ([]uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var due []uuid.UUID
	for id, a := range s.auctions {
		if a.Status == models.AuctionStatusOpen && !a.EndTime.After(now) {
			due = append(due, id)
		}
	}
	return due, nil
}

type fakeTx struct {
	store *fakeStore
}

func (t *fakeTx) GetAuctionForUpdate(ctx context.Context, id uuid.UUID) (*models.Auction, error) {
	a, ok := t.store.auctions[id]
	if !ok {
		return nil, ErrAuctionNotFound
	}
	copied := *a
	return &copied, nil
}

func (t *fakeTx) OpenAuctionExistsForPlayer(ctx context.Context, playerID uuid.UUID) (bool, error) {
	for _, a := range t.store.auctions {
		if a.PlayerID == playerID && a.Status == models.AuctionStatusOpen {
			return true, nil
		}
	}
	return false, nil
}

func (t *fakeTx) InsertAuction(ctx context.Context, playerID uuid.UUID, startPrice int, endTime time.Time) (*models.Auction, error) {
	a := &models.Auction{
		ID:           uuid.New(),
		PlayerID:     playerID,
		CurrentPrice: startPrice,
		EndTime:      endTime,
		Status:       models.AuctionStatusOpen,
	}
	t.store.auctions[a.ID] = a
	copied := *a
	return &copied, nil
}

func (t *fakeTx) ApplyBid(ctx context.Context, id uuid.UUID, price int, winnerTeamID uuid.UUID, endTime time.Time) error {
	a := t.store.auctions[id]
	winner := winnerTeamID
	a.CurrentPrice = price
	a.CurrentWinnerTeamID = &winner
	a.EndTime = endTime
	return nil
}

func (t *fakeTx) CloseAuction(ctx context.Context, id uuid.UUID) (bool, error) {
	a, ok := t.store.auctions[id]
	if !ok || a.Status != models.AuctionStatusOpen {
		return false, nil
	}
	a.Status = models.AuctionStatusClosed
	return true, nil
}

func (t *fakeTx) PlayerOwned(ctx context.Context, playerID uuid.UUID) (bool, error) {
	_, owned := t.store.owned[playerID]
	return owned, nil
}

func (t *fakeTx) AssignPlayerToRoster(ctx context.Context, teamID, playerID uuid.UUID, price int) error {
	t.store.owned[playerID] = teamID
	t.store.prices[playerID] = price
	return nil
}

func (t *fakeTx) Balance(ctx context.Context, teamID uuid.UUID) (int, error) {
	return t.store.balances[teamID], nil
}

func (t *fakeTx) Debit(ctx context.Context, teamID uuid.UUID, amount int) error {
	if t.store.balances[teamID] < amount {
		return ErrInsufficientCredits
	}
	t.store.balances[teamID] -= amount
	return nil
}

func (t *fakeTx) Credit(ctx context.Context, teamID uuid.UUID, amount int) error {
	t.store.balances[teamID] += amount
	return nil
}

func (t *fakeTx) RecordAuditEvent(ctx context.Context, action string, details any, actorID *uuid.UUID) error {
	t.store.events = append(t.store.events, recordedEvent{action: action, details: details, actorID: actorID})
	return nil
}

type fixedSettings struct {
	settings models.MarketSettings
}

func (f fixedSettings) Market(ctx context.Context) (models.MarketSettings, error) {
	return f.settings, nil
}

type countingWaker struct {
	mu    sync.Mutex
	wakes int
}

func (w *countingWaker) Wake() {
	w.mu.Lock()
	w.wakes++
	w.mu.Unlock()
}

func (w *countingWaker) count() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.wakes
}

// newTestApp returns an app with a fake clock parked at noon, inside the
// default market window.
func newTestApp(t *testing.T) (*App, *fakeStore, *clockwork.FakeClock, *countingWaker) {
	t.Helper()
	store := newFakeStore()
	clock := clockwork.NewFakeClockAt(time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC))
	app := NewApp(store, fixedSettings{settings: models.DefaultMarketSettings()}, clock)
	waker := &countingWaker{}
	app.SetWaker(waker)
	return app, store, clock, waker
}

func openAuction(t *testing.T, app *App, store *fakeStore) *models.Auction {
	t.Helper()
	created, err := app.CreateAuction(context.Background(), CreateAuctionRequest{
		PlayerID:   uuid.New(),
		TeamID:     uuid.New(),
		StartPrice: 10,
	})
	if err != nil {
		t.Fatalf("CreateAuction: %v", err)
	}
	return created
}

func fundTeam(store *fakeStore, credits int) uuid.UUID {
	teamID := uuid.New()
	store.balances[teamID] = credits
	return teamID
}

func lastEvent(t *testing.T, store *fakeStore) recordedEvent {
	t.Helper()
	if len(store.events) == 0 {
		t.Fatal("no audit events recorded")
	}
	return store.events[len(store.events)-1]
}

func TestCreateAuction(t *testing.T) {
	app, store, clock, waker := newTestApp(t)
	ctx := context.Background()

	created := openAuction(t, app, store)

	if created.CurrentPrice != 10 {
		t.Errorf("start price = %d, want 10", created.CurrentPrice)
	}
	if created.CurrentWinnerTeamID != nil {
		t.Error("new auction should have no winner")
	}
	wantEnd := clock.Now().Add(24 * time.Hour)
	if !created.EndTime.Equal(wantEnd) {
		t.Errorf("end time = %v, want %v", created.EndTime, wantEnd)
	}
	if evt := lastEvent(t, store); evt.action != "AUCTION_STARTED" {
		t.Errorf("recorded action = %s, want AUCTION_STARTED", evt.action)
	}
	if waker.count() != 1 {
		t.Errorf("wakes = %d, want 1", waker.count())
	}

	// Duplicate open auction for the same player.
	_, err := app.CreateAuction(ctx, CreateAuctionRequest{
		PlayerID:   created.PlayerID,
		TeamID:     uuid.New(),
		StartPrice: 5,
	})
	if !errors.Is(err, ErrAuctionAlreadyActive) {
		t.Errorf("duplicate auction error = %v, want ErrAuctionAlreadyActive", err)
	}
}

func TestCreateAuctionMarketClosed(t *testing.T) {
	store := newFakeStore()
	clock := clockwork.NewFakeClockAt(time.Date(2025, 3, 10, 23, 0, 0, 0, time.UTC))
	app := NewApp(store, fixedSettings{settings: models.DefaultMarketSettings()}, clock)

	_, err := app.CreateAuction(context.Background(), CreateAuctionRequest{
		PlayerID:   uuid.New(),
		TeamID:     uuid.New(),
		StartPrice: 10,
	})

	var marketClosed *MarketClosedError
	if !errors.As(err, &marketClosed) {
		t.Fatalf("error = %v, want MarketClosedError", err)
	}
	if marketClosed.OpenHour != 8 || marketClosed.CloseHour != 22 {
		t.Errorf("window = %d-%d, want 8-22", marketClosed.OpenHour, marketClosed.CloseHour)
	}
}

func TestCreateAuctionPlayerOwned(t *testing.T) {
	app, store, _, _ := newTestApp(t)
	playerID := uuid.New()
	store.owned[playerID] = uuid.New()

	_, err := app.CreateAuction(context.Background(), CreateAuctionRequest{
		PlayerID:   playerID,
		TeamID:     uuid.New(),
		StartPrice: 10,
	})
	if !errors.Is(err, ErrPlayerUnavailable) {
		t.Errorf("error = %v, want ErrPlayerUnavailable", err)
	}
}

func TestPlaceBidEscrowRotation(t *testing.T) {
	app, store, _, _ := newTestApp(t)
	ctx := context.Background()
	auction := openAuction(t, app, store)

	teamA := fundTeam(store, 100)
	teamB := fundTeam(store, 100)

	// A leads at 15: escrow debited.
	updated, err := app.PlaceBid(ctx, PlaceBidRequest{AuctionID: auction.ID, TeamID: teamA, Amount: 15})
	if err != nil {
		t.Fatalf("first bid: %v", err)
	}
	if store.balances[teamA] != 85 {
		t.Errorf("team A balance = %d, want 85", store.balances[teamA])
	}
	if updated.CurrentPrice != 15 || *updated.CurrentWinnerTeamID != teamA {
		t.Errorf("auction state = %d/%v, want 15/team A", updated.CurrentPrice, updated.CurrentWinnerTeamID)
	}

	// B outbids at 20: A's 15 comes back in the same unit B's 20 leaves.
	updated, err = app.PlaceBid(ctx, PlaceBidRequest{AuctionID: auction.ID, TeamID: teamB, Amount: 20})
	if err != nil {
		t.Fatalf("second bid: %v", err)
	}
	if store.balances[teamA] != 100 {
		t.Errorf("team A balance after refund = %d, want 100", store.balances[teamA])
	}
	if store.balances[teamB] != 80 {
		t.Errorf("team B balance = %d, want 80", store.balances[teamB])
	}
	if updated.CurrentPrice != 20 || *updated.CurrentWinnerTeamID != teamB {
		t.Errorf("auction state = %d/%v, want 20/team B", updated.CurrentPrice, updated.CurrentWinnerTeamID)
	}
	if evt := lastEvent(t, store); evt.action != "BID_PLACED" {
		t.Errorf("recorded action = %s, want BID_PLACED", evt.action)
	}
}

func TestPlaceBidValidation(t *testing.T) {
	app, store, _, _ := newTestApp(t)
	ctx := context.Background()
	auction := openAuction(t, app, store)
	richTeam := fundTeam(store, 1000)
	poorTeam := fundTeam(store, 5)

	// At or below the current price.
	_, err := app.PlaceBid(ctx, PlaceBidRequest{AuctionID: auction.ID, TeamID: richTeam, Amount: 10})
	var bidTooLow *BidTooLowError
	if !errors.As(err, &bidTooLow) {
		t.Fatalf("equal bid error = %v, want BidTooLowError", err)
	}
	if bidTooLow.CurrentPrice != 10 {
		t.Errorf("current price in error = %d, want 10", bidTooLow.CurrentPrice)
	}

	// Insufficient balance leaves the auction untouched.
	_, err = app.PlaceBid(ctx, PlaceBidRequest{AuctionID: auction.ID, TeamID: poorTeam, Amount: 50})
	if !errors.Is(err, ErrInsufficientCredits) {
		t.Fatalf("poor bid error = %v, want ErrInsufficientCredits", err)
	}
	current, _ := app.GetAuction(ctx, auction.ID)
	if current.CurrentPrice != 10 || current.CurrentWinnerTeamID != nil {
		t.Errorf("auction changed by rejected bid: %d/%v", current.CurrentPrice, current.CurrentWinnerTeamID)
	}
	if store.balances[poorTeam] != 5 {
		t.Errorf("poor team balance = %d, want 5", store.balances[poorTeam])
	}

	// Unknown auction.
	_, err = app.PlaceBid(ctx, PlaceBidRequest{AuctionID: uuid.New(), TeamID: richTeam, Amount: 50})
	if !errors.Is(err, ErrAuctionNotFound) {
		t.Errorf("unknown auction error = %v, want ErrAuctionNotFound", err)
	}
}

func TestPlaceBidAntiSnipe(t *testing.T) {
	app, store, clock, waker := newTestApp(t)
	ctx := context.Background()
	auction := openAuction(t, app, store)
	teamID := fundTeam(store, 100)
	wakesBefore := waker.count()

	// Advance to 10 seconds before the deadline, inside the 30s threshold.
	clock.Advance(24*time.Hour - 10*time.Second)

	updated, err := app.PlaceBid(ctx, PlaceBidRequest{AuctionID: auction.ID, TeamID: teamID, Amount: 20})
	if err != nil {
		t.Fatalf("snipe bid: %v", err)
	}

	wantEnd := auction.EndTime.Add(2 * time.Minute)
	if !updated.EndTime.Equal(wantEnd) {
		t.Errorf("extended end time = %v, want %v", updated.EndTime, wantEnd)
	}
	if waker.count() != wakesBefore+1 {
		t.Errorf("extension should wake the sweeper")
	}

	// A comfortable bid later does not move the deadline again.
	teamB := fundTeam(store, 100)
	updated2, err := app.PlaceBid(ctx, PlaceBidRequest{AuctionID: auction.ID, TeamID: teamB, Amount: 25})
	if err != nil {
		t.Fatalf("followup bid: %v", err)
	}
	if updated2.EndTime.Equal(wantEnd) {
		// Still inside the threshold after the extension? The threshold is
		// 30s and we are 2m10s out, so no further extension is expected.
		t.Log("end time unchanged as expected")
	} else {
		t.Errorf("end time moved to %v, want %v", updated2.EndTime, wantEnd)
	}
}

func TestPlaceBidAfterDeadlineResolvesLazily(t *testing.T) {
	app, store, clock, _ := newTestApp(t)
	ctx := context.Background()
	auction := openAuction(t, app, store)
	winner := fundTeam(store, 100)
	late := fundTeam(store, 100)

	if _, err := app.PlaceBid(ctx, PlaceBidRequest{AuctionID: auction.ID, TeamID: winner, Amount: 15}); err != nil {
		t.Fatalf("winning bid: %v", err)
	}

	clock.Advance(25 * time.Hour)

	_, err := app.PlaceBid(ctx, PlaceBidRequest{AuctionID: auction.ID, TeamID: late, Amount: 30})
	if !errors.Is(err, ErrAuctionEnded) {
		t.Fatalf("late bid error = %v, want ErrAuctionEnded", err)
	}

	// The rejected bid resolved the auction as a side effect.
	closed, _ := app.GetAuction(ctx, auction.ID)
	if closed.Status != models.AuctionStatusClosed {
		t.Errorf("auction status = %s, want CLOSED", closed.Status)
	}
	if store.owned[auction.PlayerID] != winner {
		t.Error("player should belong to the pre-deadline leader")
	}
	if store.balances[late] != 100 {
		t.Errorf("late bidder balance = %d, want 100", store.balances[late])
	}
}

func TestResolveAuction(t *testing.T) {
	app, store, clock, _ := newTestApp(t)
	ctx := context.Background()
	auction := openAuction(t, app, store)
	winner := fundTeam(store, 100)

	if _, err := app.PlaceBid(ctx, PlaceBidRequest{AuctionID: auction.ID, TeamID: winner, Amount: 30}); err != nil {
		t.Fatalf("bid: %v", err)
	}

	// Too early.
	_, err := app.ResolveAuction(ctx, auction.ID)
	if !errors.Is(err, ErrAuctionStillOpen) {
		t.Fatalf("early resolve error = %v, want ErrAuctionStillOpen", err)
	}

	clock.Advance(25 * time.Hour)

	resolution, err := app.ResolveAuction(ctx, auction.ID)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if !resolution.Settled {
		t.Error("first resolution should settle")
	}
	if *resolution.WinnerTeamID != winner || resolution.Price != 30 {
		t.Errorf("resolution = %v/%d, want winner/30", resolution.WinnerTeamID, resolution.Price)
	}
	if store.owned[auction.PlayerID] != winner {
		t.Error("player not assigned to winner")
	}
	if store.prices[auction.PlayerID] != 30 {
		t.Errorf("purchase price = %d, want 30", store.prices[auction.PlayerID])
	}
	// Escrow stays debited as payment.
	if store.balances[winner] != 70 {
		t.Errorf("winner balance = %d, want 70", store.balances[winner])
	}
	if evt := lastEvent(t, store); evt.action != "AUCTION_WON" {
		t.Errorf("recorded action = %s, want AUCTION_WON", evt.action)
	}

	// Second call is an idempotent no-op.
	eventsBefore := len(store.events)
	again, err := app.ResolveAuction(ctx, auction.ID)
	if err != nil {
		t.Fatalf("second resolve: %v", err)
	}
	if again.Settled {
		t.Error("second resolution should not settle")
	}
	if len(store.events) != eventsBefore {
		t.Error("idempotent resolve should record no events")
	}
	if store.balances[winner] != 70 {
		t.Errorf("winner balance after re-resolve = %d, want 70", store.balances[winner])
	}
}

func TestResolveAuctionNoBids(t *testing.T) {
	app, store, clock, _ := newTestApp(t)
	ctx := context.Background()
	auction := openAuction(t, app, store)

	clock.Advance(25 * time.Hour)

	resolution, err := app.ResolveAuction(ctx, auction.ID)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if !resolution.Settled || resolution.WinnerTeamID != nil {
		t.Errorf("resolution = %+v, want settled with no winner", resolution)
	}
	if _, owned := store.owned[auction.PlayerID]; owned {
		t.Error("expired auction should not assign the player")
	}
	if evt := lastEvent(t, store); evt.action != "AUCTION_EXPIRED" {
		t.Errorf("recorded action = %s, want AUCTION_EXPIRED", evt.action)
	}
}

func TestPlaceBidRetriesSerializationFailures(t *testing.T) {
	app, store, _, _ := newTestApp(t)
	ctx := context.Background()
	auction := openAuction(t, app, store)
	teamID := fundTeam(store, 100)

	// Two conflicts, then success.
	store.failuresLeft = 2
	if _, err := app.PlaceBid(ctx, PlaceBidRequest{AuctionID: auction.ID, TeamID: teamID, Amount: 20}); err != nil {
		t.Fatalf("bid after retries: %v", err)
	}
	if store.balances[teamID] != 80 {
		t.Errorf("balance = %d, want 80", store.balances[teamID])
	}

	// Conflicts on every attempt surface as ErrConflict.
	store.failuresLeft = maxBidAttempts
	_, err := app.PlaceBid(ctx, PlaceBidRequest{AuctionID: auction.ID, TeamID: teamID, Amount: 25})
	if !errors.Is(err, ErrConflict) {
		t.Errorf("exhausted retries error = %v, want ErrConflict", err)
	}
}

func TestConcurrentBidsAreLinearized(t *testing.T) {
	app, store, _, _ := newTestApp(t)
	ctx := context.Background()
	auction := openAuction(t, app, store)

	const bidders = 10
	teams := make([]uuid.UUID, bidders)
	for i := range teams {
		teams[i] = fundTeam(store, 1000)
	}

	var wg sync.WaitGroup
	for i, teamID := range teams {
		wg.Add(1)
		go func(amount int, teamID uuid.UUID) {
			defer wg.Done()
			// Losers fail with BidTooLow; that is expected.
			_, _ = app.PlaceBid(ctx, PlaceBidRequest{AuctionID: auction.ID, TeamID: teamID, Amount: amount})
		}(20+i, teamID)
	}
	wg.Wait()

	final, err := app.GetAuction(ctx, auction.ID)
	if err != nil {
		t.Fatalf("get auction: %v", err)
	}
	if final.CurrentWinnerTeamID == nil {
		t.Fatal("no winner after concurrent bids")
	}

	// Exactly the winner's escrow is held; every loser is whole.
	totalHeld := 0
	for _, teamID := range teams {
		held := 1000 - store.balances[teamID]
		if held < 0 {
			t.Errorf("team %s over-credited: balance %d", teamID, store.balances[teamID])
		}
		totalHeld += held
	}
	if totalHeld != final.CurrentPrice {
		t.Errorf("total escrow held = %d, want %d", totalHeld, final.CurrentPrice)
	}
	if held := 1000 - store.balances[*final.CurrentWinnerTeamID]; held != final.CurrentPrice {
		t.Errorf("winner escrow = %d, want %d", held, final.CurrentPrice)
	}
}
