package sweeper

import (
	"context"
	"fmt"
	"time"

	"repair-service/src/internal/model"
	"repair-service/src/internal/repository"
	"repair-service/src/pkg/log"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/viper"
)

const defaultInterval = 2 * time.Second
const defaultBatchSize = 100

// Sweeper is the safety net behind the per-claim expiry tasks: it scans for
// CLAIMED orders past their deadline and releases them back to PENDING. Each
// release is the same guarded UPDATE the expiry handler uses, so a sweep that
// races a late accept or a concurrent release simply matches zero rows.
type Sweeper struct {
	Log             log.Log
	OrderRepository repository.OrderStore
	Redis           redis.UniversalClient
	Interval        time.Duration
	BatchSize       int
}

func NewSweeper(logger log.Log, orderRepository repository.OrderStore, rdb redis.UniversalClient, cfg *viper.Viper) *Sweeper {
	interval := cfg.GetDuration("sweeper.interval")
	if interval <= 0 {
		interval = defaultInterval
	}
	batchSize := cfg.GetInt("sweeper.batch_size")
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	return &Sweeper{
		Log:             logger,
		OrderRepository: orderRepository,
		Redis:           rdb,
		Interval:        interval,
		BatchSize:       batchSize,
	}
}

// Run blocks until ctx is cancelled, sweeping once per interval.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	s.Log.Info("sweeper", fmt.Sprintf("started, interval %s", s.Interval), "Run", "")

	for {
		select {
		case <-ctx.Done():
			s.Log.Info("sweeper", "stopped", "Run", "")
			return
		case <-ticker.C:
			if _, err := s.SweepOnce(ctx); err != nil {
				s.Log.Error("sweeper", fmt.Sprintf("sweep failed: %v", err), "Run", "")
			}
		}
	}
}

// SweepOnce releases one batch of expired claims and returns how many it
// actually released.
func (s *Sweeper) SweepOnce(ctx context.Context) (int, error) {
	now := time.Now().UTC()

	expired, err := s.OrderRepository.FindExpiredClaims(ctx, now, s.BatchSize)
	if err != nil {
		return 0, err
	}

	released := 0
	for i := range expired {
		order := &expired[i]
		if order.ProviderID == nil {
			continue
		}

		ok, err := s.OrderRepository.ReleaseExpiredClaim(ctx, order.ID, *order.ProviderID, now)
		if err != nil {
			s.Log.Error("sweeper", fmt.Sprintf("release failed: %v", err), "SweepOnce", order.ID)
			continue
		}
		if !ok {
			// the claim was accepted or already released between the scan
			// and the write
			continue
		}

		released++
		s.Log.Info("sweeper", "released expired claim", "SweepOnce", order.ID)
		s.notifyPoolChanged(ctx, order.ID)
	}

	return released, nil
}

func (s *Sweeper) notifyPoolChanged(ctx context.Context, orderID string) {
	if s.Redis == nil {
		return
	}
	if err := s.Redis.Publish(ctx, model.OpenPoolChannel, orderID).Err(); err != nil {
		s.Log.Error("sweeper", "failed to publish pool change", "notifyPoolChanged", err.Error())
	}
}
