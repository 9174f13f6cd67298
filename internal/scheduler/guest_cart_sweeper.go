package scheduler

import (
	"context"
	"time"

	"github.com/Sahani-Mohottige/SafeOnlineShop/internal/app/service"
	"github.com/Sahani-Mohottige/SafeOnlineShop/pkg/logger"
	"github.com/robfig/cron/v3"
)

const sweepTimeout = time.Minute

// GuestCartSweeper periodically deletes guest carts nobody touched for idle.
type GuestCartSweeper struct {
	cron        *cron.Cron
	cartService service.CartService
	spec        string
	idle        time.Duration
}

// NewGuestCartSweeper builds a sweeper running on the cron spec (e.g. "@hourly").
func NewGuestCartSweeper(cartService service.CartService, spec string, idle time.Duration) *GuestCartSweeper {
	return &GuestCartSweeper{
		cron:        cron.New(),
		cartService: cartService,
		spec:        spec,
		idle:        idle,
	}
}

func (s *GuestCartSweeper) Start() error {
	if _, err := s.cron.AddFunc(s.spec, s.RunOnce); err != nil {
		logger.Error("Failed to add cron job for guest cart sweep", err, map[string]interface{}{
			"spec": s.spec,
		})
		return err
	}

	s.cron.Start()
	logger.Info("Guest cart sweeper started", map[string]interface{}{
		"spec": s.spec,
		"idle": s.idle.String(),
	})
	return nil
}

// RunOnce performs a single sweep.
func (s *GuestCartSweeper) RunOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
	defer cancel()

	deleted, err := s.cartService.PurgeStaleGuestCarts(ctx, s.idle)
	if err != nil {
		logger.Error("Guest cart sweep failed", err)
		return
	}
	logger.Info("Guest cart sweep finished", map[string]interface{}{
		"deleted": deleted,
	})
}

// Stop waits for a running sweep to finish.
func (s *GuestCartSweeper) Stop() {
	logger.Info("Stopping guest cart sweeper...")
	<-s.cron.Stop().Done()
	logger.Info("Guest cart sweeper stopped")
}
