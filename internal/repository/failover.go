package repository

import (
	"context"
	"sync"
	"time"

	"shareit/internal/domain"

	"github.com/rs/zerolog"
)

const defaultRecoveryInterval = time.Minute

// FailoverQuotaRepository uses primary until it fails, then serves from
// fallback and retries primary once per recovery interval.
type FailoverQuotaRepository struct {
	primary  domain.QuotaStore
	fallback domain.QuotaStore
	logger   *zerolog.Logger
	recovery time.Duration

	mu        sync.Mutex
	down      bool
	lastCheck time.Time
	now       func() time.Time
}

func NewFailoverQuotaRepository(primary, fallback domain.QuotaStore, logger *zerolog.Logger) *FailoverQuotaRepository {
	return &FailoverQuotaRepository{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
		recovery: defaultRecoveryInterval,
		now:      time.Now,
	}
}

func (r *FailoverQuotaRepository) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	if r.usePrimary() {
		allowed, err := r.primary.Allow(ctx, key, limit, window)
		if err == nil {
			r.markUp()
			return allowed, nil
		}
		r.logger.Error().Err(err).Msg("primary quota store failed, falling back to memory")
		r.markDown()
	}

	return r.fallback.Allow(ctx, key, limit, window)
}

// Degraded reports whether requests are currently served by the fallback.
func (r *FailoverQuotaRepository) Degraded() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.down
}

func (r *FailoverQuotaRepository) usePrimary() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.down {
		return true
	}
	if r.now().Sub(r.lastCheck) >= r.recovery {
		r.lastCheck = r.now()
		return true
	}
	return false
}

func (r *FailoverQuotaRepository) markDown() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.down = true
	r.lastCheck = r.now()
}

func (r *FailoverQuotaRepository) markUp() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.down {
		r.logger.Info().Msg("primary quota store recovered")
	}
	r.down = false
}
