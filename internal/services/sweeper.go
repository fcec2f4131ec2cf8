package services

import (
	"context"
	"log/slog"
	"time"

	"districtevents/internal/domain"
)

const (
	DefaultSweepInterval  = time.Minute
	DefaultSweepBatchSize = 100
)

// HoldSweeper cancels pending registrations whose hold has expired and
// returns their spots to the event.
type HoldSweeper struct {
	registrationRepo domain.RegistrationRepository
	inventory        domain.SpotInventory
	interval         time.Duration
	batchSize        int
	logger           *slog.Logger
	now              func() time.Time
}

// NewHoldSweeper returns a HoldSweeper. Non-positive interval or batchSize use the defaults.
func NewHoldSweeper(registrationRepo domain.RegistrationRepository, inventory domain.SpotInventory, interval time.Duration, batchSize int, logger *slog.Logger) *HoldSweeper {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	if batchSize <= 0 {
		batchSize = DefaultSweepBatchSize
	}
	return &HoldSweeper{
		registrationRepo: registrationRepo,
		inventory:        inventory,
		interval:         interval,
		batchSize:        batchSize,
		logger:           logger,
		now:              time.Now,
	}
}

var _ domain.HoldSweeper = (*HoldSweeper)(nil)

// SweepExpiredHolds runs one pass and returns how many registrations it released.
// A registration that fails is logged and skipped; it is retried on the next pass.
func (s *HoldSweeper) SweepExpiredHolds(ctx context.Context) (int, error) {
	now := s.now()
	filter := domain.CancelFilter{HoldExpiredBefore: &now}
	released := 0
	for {
		holds, err := s.registrationRepo.ListExpiredHolds(ctx, now, s.batchSize)
		if err != nil {
			return released, err
		}
		progress := 0
		for _, h := range holds {
			if ctx.Err() != nil {
				return released, ctx.Err()
			}
			_, cancelled, err := s.inventory.CancelRegistration(ctx, h.ID, filter)
			if err != nil {
				s.logger.Warn("sweep partial failure",
					"registration_id", h.ID,
					"event_id", h.EventID,
					"error", err,
				)
				continue
			}
			if cancelled {
				released++
				progress++
			}
		}
		// A short batch is the last one; a full batch with no progress would repeat forever.
		if len(holds) < s.batchSize || progress == 0 {
			return released, nil
		}
	}
}

// Run sweeps on every tick until ctx is cancelled.
func (s *HoldSweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info("hold sweeper started", "interval", s.interval.String())
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("hold sweeper stopped")
			return
		case <-ticker.C:
			released, err := s.SweepExpiredHolds(ctx)
			if err != nil && ctx.Err() == nil {
				s.logger.Error("hold sweep failed", "released", released, "error", err)
				continue
			}
			if released > 0 {
				s.logger.Info("expired holds released", "count", released)
			}
		}
	}
}
