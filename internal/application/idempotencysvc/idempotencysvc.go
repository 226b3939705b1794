// Package idempotencysvc implements the HTTP-layer idempotency pre-filter
// (spec.md §4.9): header validation, cache lookup, per-key advisory lock,
// re-check under lock, handler invocation, and post-response caching — all
// wrapped so the lock is released unconditionally on every exit path.
package idempotencysvc

import (
	"context"
	"errors"
	"time"

	"github.com/nsparik/fund-transfer-engine/internal/domain/idempotency"
	"github.com/nsparik/fund-transfer-engine/internal/infrastructure/database"
	"github.com/nsparik/fund-transfer-engine/internal/pkg/metrics"
)

const MaxKeyLen = 255

var (
	ErrKeyRequired = errors.New("idempotency key required")
	ErrKeyTooLong  = errors.New("idempotency key exceeds 255 characters")
	ErrKeyReuse    = errors.New("idempotency key reused with a different request body")
	// ErrLockTimeout is returned when the per-key advisory lock could not be
	// acquired within the configured timeout (spec.md §4.9 step 3).
	ErrLockTimeout = database.ErrLockTimeout
)

// Handler runs the actual command once the idempotency pre-filter has
// cleared the request; it returns the status and body to cache.
type Handler func(ctx context.Context) (status int, body []byte, err error)

type Clock func() time.Time

type Service struct {
	repo        *database.IdempotencyRepository
	lockTimeout time.Duration
	ttl         time.Duration
	now         Clock
}

func NewService(repo *database.IdempotencyRepository, lockTimeout, ttl time.Duration) *Service {
	return &Service{repo: repo, lockTimeout: lockTimeout, ttl: ttl, now: time.Now}
}

func ValidateKey(key string) error {
	if key == "" {
		return ErrKeyRequired
	}
	if len(key) > MaxKeyLen {
		return ErrKeyTooLong
	}
	return nil
}

// Run implements spec.md §4.9's full pre-handler/post-response flow for one
// idempotency-guarded request. handler is invoked at most once, while the
// per-key advisory lock is held, and only when no cached response was found
// either before or after acquiring the lock. method and path are folded into
// the request fingerprint alongside body so the same key/body pair can't be
// replayed across two different operations.
func (s *Service) Run(ctx context.Context, key, method, path string, body []byte, handler Handler) (status int, respBody []byte, replayed bool, err error) {
	if err := ValidateKey(key); err != nil {
		return 0, nil, false, err
	}
	hash := idempotency.HashRequest(method, path, body)

	rec, err := s.repo.Find(ctx, key)
	if err != nil {
		return 0, nil, false, err
	}
	if rec != nil {
		metrics.IdempotencyHitsTotal.WithLabelValues("cache_hit").Inc()
		if rec.RequestHash != hash {
			metrics.IdempotencyHitsTotal.WithLabelValues("key_reuse").Inc()
			return 0, nil, false, ErrKeyReuse
		}
		return rec.ResponseCode, rec.ResponseBody, true, nil
	}

	lockErr := s.repo.WithKeyLock(ctx, key, s.lockTimeout, func(ctx context.Context) error {
		rec, err := s.repo.Find(ctx, key)
		if err != nil {
			return err
		}
		if rec != nil {
			if rec.RequestHash != hash {
				return ErrKeyReuse
			}
			status, respBody, replayed = rec.ResponseCode, rec.ResponseBody, true
			return nil
		}

		hStatus, hBody, hErr := handler(ctx)
		if hErr != nil {
			return hErr
		}
		status, respBody = hStatus, hBody

		now := s.now()
		return s.repo.Insert(ctx, idempotency.Record{
			Key:          key,
			RequestHash:  hash,
			ResponseCode: status,
			ResponseBody: respBody,
			CreatedAt:    now,
			ExpiresAt:    now.Add(s.ttl),
		})
	})
	if lockErr != nil {
		if errors.Is(lockErr, database.ErrLockTimeout) {
			metrics.IdempotencyHitsTotal.WithLabelValues("lock_timeout").Inc()
			return 0, nil, false, ErrLockTimeout
		}
		return 0, nil, false, lockErr
	}
	return status, respBody, replayed, nil
}
