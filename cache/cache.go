// Package cache decorates a finassist.Store with a Redis cache of customer
// lookups.
//
// Only found customers are cached. Transactions always go to the underlying
// store.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/etnz/finassist"
	"github.com/etnz/finassist/date"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// DefaultTTL is the lifetime of a cached customer.
const DefaultTTL = 5 * time.Minute

const namespace = "finassist:customer"

// Store is a finassist.Store caching customers in Redis.
type Store struct {
	finassist.Store
	client redis.UniversalClient
	ttl    time.Duration
	log    *zap.Logger
}

// NewClient returns a Redis client for a single server.
func NewClient(addr, password string) *redis.Client {
	return redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: 0})
}

// New decorates store with a cache held in client. A zero ttl means
// DefaultTTL.
func New(store finassist.Store, client redis.UniversalClient, ttl time.Duration, log *zap.Logger) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{Store: store, client: client, ttl: ttl, log: log}
}

func key(accountNumber string) string { return namespace + ":" + accountNumber }

// Customer implements finassist.Store.
//
// A cache failure is logged and the lookup falls back to the underlying store.
func (s *Store) Customer(ctx context.Context, accountNumber string) (finassist.Customer, bool, error) {
	raw, err := s.client.Get(ctx, key(accountNumber)).Bytes()
	switch {
	case err == nil:
		var c finassist.Customer
		if err := json.Unmarshal(raw, &c); err == nil {
			return c, true, nil
		}
		s.log.Warn("invalid cached customer", zap.String("account", accountNumber))
	case errors.Is(err, redis.Nil):
	default:
		if ctx.Err() != nil {
			return finassist.Customer{}, false, ctx.Err()
		}
		s.log.Warn("cache unavailable", zap.Error(err))
	}

	c, found, err := s.Store.Customer(ctx, accountNumber)
	if err != nil || !found {
		return c, found, err
	}
	raw, err = json.Marshal(c)
	if err != nil {
		return c, true, nil
	}
	if err := s.client.Set(ctx, key(accountNumber), raw, s.ttl).Err(); err != nil {
		s.log.Warn("cannot cache customer", zap.String("account", accountNumber), zap.Error(err))
	}
	return c, true, nil
}

// Transactions implements finassist.Store.
func (s *Store) Transactions(ctx context.Context, accountNumber string, r *date.Range) ([]finassist.Transaction, error) {
	return s.Store.Transactions(ctx, accountNumber, r)
}

// Invalidate removes the account from the cache.
func (s *Store) Invalidate(ctx context.Context, accountNumber string) error {
	if err := s.client.Del(ctx, key(accountNumber)).Err(); err != nil {
		return fmt.Errorf("cannot invalidate %q: %w", accountNumber, err)
	}
	return nil
}

var _ finassist.Store = (*Store)(nil)
