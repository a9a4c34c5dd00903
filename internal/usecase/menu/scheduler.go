package menu

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	domain "github.com/langhaus/website-backend/internal/domain/menu"
)

// Scheduler reconciles generated card PDFs with the current menu data on a
// fixed polling interval. Stale cards are regenerated, fresh ones skipped; a
// failing card is retried on every following tick until it succeeds and never
// blocks the remaining cards.
type Scheduler struct {
	interval time.Duration
	repo     domain.Repository
	tracker  *StalenessTracker
	regen    *RegenerateCardPDF
	log      zerolog.Logger

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
}

func NewScheduler(
	interval time.Duration,
	repo domain.Repository,
	tracker *StalenessTracker,
	regen *RegenerateCardPDF,
	log zerolog.Logger,
) *Scheduler {
	return &Scheduler{
		interval: interval,
		repo:     repo,
		tracker:  tracker,
		regen:    regen,
		log:      log,
		stopCh:   make(chan struct{}),
	}
}

// Start runs the tick loop until the context is cancelled or Stop is called.
// An in-flight tick finishes before the loop exits.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.mu.Unlock()

	s.log.Info().Dur("interval", s.interval).Msg("pdf regeneration scheduler started")

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info().Msg("pdf regeneration scheduler stopped by context")
			return
		case <-s.stopCh:
			s.log.Info().Msg("pdf regeneration scheduler stopped")
			return
		case <-ticker.C:
			s.Tick(ctx)
		}
	}
}

func (s *Scheduler) Stop() {
	s.mu.Lock()
	if s.running {
		s.running = false
		close(s.stopCh)
	}
	s.mu.Unlock()
}

func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Tick runs one reconciliation pass over all cards.
func (s *Scheduler) Tick(ctx context.Context) {
	ids, err := s.repo.ListCardIDs(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("could not list menu cards")
		return
	}

	for _, id := range ids {
		select {
		case <-ctx.Done():
			return
		default:
		}

		if err := s.reconcileCard(ctx, id); err != nil {
			// Failure isolation per card: log and move on, the card stays
			// stale and is retried next tick.
			s.log.Error().Err(err).Uint("card_id", id).
				Msg("card pdf regeneration failed, retrying next tick")
		}
	}
}

func (s *Scheduler) reconcileCard(ctx context.Context, cardID uint) error {
	card, err := s.repo.GetCard(ctx, cardID)
	if err != nil {
		return err
	}

	stale, err := s.tracker.IsStale(ctx, card)
	if err != nil {
		return err
	}
	if !stale {
		return nil
	}

	if _, err := s.regen.Execute(ctx, cardID); err != nil {
		return err
	}

	s.log.Info().Uint("card_id", cardID).Str("name", card.Name).Msg("card pdf regenerated")
	return nil
}
