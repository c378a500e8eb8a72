package sweeper

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/fantaleague/fantamarket/go/internal/auction"
)

// idlePollDuration bounds how long the sweeper sleeps when no auction is
// open. The wake channel usually fires first.
const idlePollDuration = 5 * time.Second

// MarketApp is what the sweeper needs from the auction app.
type MarketApp interface {
	NextOpenDeadline(ctx context.Context) (*time.Time, error)
	AuctionsDueForResolution(ctx context.Context, limit int32) ([]uuid.UUID, error)
	ResolveAuction(ctx context.Context, auctionID uuid.UUID) (*auction.Resolution, error)
}

// Sweeper is the background deadline enforcer: it sleeps until the
// soonest open-auction deadline, then resolves every auction that is
// due. Resolution is idempotent, so the sweeper can race lazy closes
// from the bid path safely.
type Sweeper struct {
	app        MarketApp
	clock      clockwork.Clock
	batchSize  int32
	wakeCh     chan struct{}
	instanceID string

	numWorkers int
	workCh     chan uuid.UUID

	// Track in-flight auctions so a slow resolution is not queued twice.
	inFlight   map[uuid.UUID]bool
	inFlightMu sync.Mutex
}

func New(app MarketApp, clock clockwork.Clock, batchSize int32) *Sweeper {
	numWorkers := 4
	return &Sweeper{
		app:        app,
		clock:      clock,
		batchSize:  batchSize,
		wakeCh:     make(chan struct{}, 1),
		instanceID: uuid.New().String()[:8],

		numWorkers: numWorkers,
		workCh:     make(chan uuid.UUID, numWorkers*2),
		inFlight:   make(map[uuid.UUID]bool),
	}
}

// Wake nudges the sweeper to re-read the next deadline. Called after any
// operation that can introduce a sooner deadline (new auction, anti-snipe
// extension). Non-blocking; a pending wake is enough.
func (s *Sweeper) Wake() {
	select {
	case s.wakeCh <- struct{}{}:
	default:
	}
}

// Run loops until ctx is cancelled, sleeping until the next deadline and
// dispatching due auctions to the worker pool.
func (s *Sweeper) Run(ctx context.Context) error {
	log.Info().Str("instance", s.instanceID).Int("workers", s.numWorkers).Msg("sweeper started")

	var wg sync.WaitGroup
	workerCtx, cancelWorkers := context.WithCancel(ctx)
	defer cancelWorkers()

	for i := 0; i < s.numWorkers; i++ {
		wg.Add(1)
		go s.worker(workerCtx, &wg, i)
	}

	defer func() {
		cancelWorkers()
		close(s.workCh)
		wg.Wait()
		log.Info().Str("instance", s.instanceID).Msg("sweeper workers shut down")
	}()

	timer := s.clock.NewTimer(idlePollDuration)
	defer timer.Stop()

	for {
		// Drain a stale wake so the fresh deadline read below covers it.
		select {
		case <-s.wakeCh:
		default:
		}

		deadline, err := s.app.NextOpenDeadline(ctx)
		if err != nil {
			log.Error().Err(err).Str("instance", s.instanceID).Msg("failed to fetch next deadline")
			timer.Reset(time.Second)
			select {
			case <-timer.Chan():
				continue
			case <-ctx.Done():
				return nil
			}
		}

		if deadline == nil {
			timer.Reset(idlePollDuration)
			select {
			case <-timer.Chan():
				continue
			case <-ctx.Done():
				log.Info().Str("instance", s.instanceID).Msg("sweeper shutdown while idle")
				return nil
			case <-s.wakeCh:
				continue
			}
		}

		if wait := deadline.Sub(s.clock.Now()); wait > 0 {
			timer.Reset(wait)
			select {
			case <-timer.Chan():
			case <-ctx.Done():
				log.Info().Str("instance", s.instanceID).Msg("sweeper shutdown during wait")
				return nil
			case <-s.wakeCh:
				// A sooner deadline may exist now; re-read it.
				continue
			}
		}

		due, err := s.app.AuctionsDueForResolution(ctx, s.batchSize)
		if err != nil {
			log.Error().Err(err).Str("instance", s.instanceID).Msg("failed to fetch due auctions")
			timer.Reset(time.Second)
			select {
			case <-timer.Chan():
				continue
			case <-ctx.Done():
				return nil
			}
		}

		if len(due) > 0 {
			log.Info().
				Int("count_due", len(due)).
				Str("instance", s.instanceID).
				Msg("dispatching due auctions")
		}

		for _, auctionID := range due {
			s.inFlightMu.Lock()
			if s.inFlight[auctionID] {
				s.inFlightMu.Unlock()
				continue
			}
			s.inFlight[auctionID] = true
			s.inFlightMu.Unlock()

			select {
			case <-ctx.Done():
				s.inFlightMu.Lock()
				delete(s.inFlight, auctionID)
				s.inFlightMu.Unlock()
				log.Info().Str("instance", s.instanceID).Msg("sweeper shutdown while queueing")
				return nil
			case s.workCh <- auctionID:
			}
		}
	}
}

func (s *Sweeper) worker(ctx context.Context, wg *sync.WaitGroup, workerID int) {
	defer wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case auctionID, ok := <-s.workCh:
			if !ok {
				return
			}

			resolution, err := s.app.ResolveAuction(ctx, auctionID)
			switch {
			case errors.Is(err, auction.ErrAuctionStillOpen):
				// An anti-snipe extension landed between the due query
				// and the resolution; the next loop pass picks it up.
				log.Debug().
					Str("auction_id", auctionID.String()).
					Int("worker_id", workerID).
					Msg("auction extended before sweep, skipping")
			case err != nil:
				log.Error().
					Err(err).
					Str("auction_id", auctionID.String()).
					Str("instance", s.instanceID).
					Int("worker_id", workerID).
					Msg("sweep resolution failed")
			case resolution.Settled:
				log.Info().
					Str("auction_id", auctionID.String()).
					Int("worker_id", workerID).
					Msg("auction swept")
			}

			s.inFlightMu.Lock()
			delete(s.inFlight, auctionID)
			s.inFlightMu.Unlock()
		}
	}
}
