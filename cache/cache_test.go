package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/etnz/finassist"
	"github.com/etnz/finassist/date"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"go.uber.org/zap/zaptest"
)

// counting is a Store counting customer lookups.
type counting struct {
	finassist.Store
	lookups int
}

func (c *counting) Customer(ctx context.Context, accountNumber string) (finassist.Customer, bool, error) {
	c.lookups++
	return c.Store.Customer(ctx, accountNumber)
}

func TestStore(t *testing.T) {
	addr := os.Getenv("FINASSIST_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("FINASSIST_TEST_REDIS_ADDR is not set")
	}
	ctx := context.Background()
	client := NewClient(addr, os.Getenv("FINASSIST_TEST_REDIS_PASS"))
	t.Cleanup(func() { client.Close() })

	inner := &counting{Store: finassist.DemoLedger()}
	s := New(inner, client, time.Minute, zaptest.NewLogger(t))
	for _, acct := range []string{"1234567890", "unknown"} {
		if err := s.Invalidate(ctx, acct); err != nil {
			t.Fatalf("Invalidate() error = %v", err)
		}
	}

	for range 3 {
		c, found, err := s.Customer(ctx, "1234567890")
		if err != nil || !found {
			t.Fatalf("Customer() = %v, %v", found, err)
		}
		if !c.Balance.Equal(decimal.RequireFromString("12500.75")) {
			t.Errorf("Customer().Balance = %s", c.Balance)
		}
	}
	if inner.lookups != 1 {
		t.Errorf("underlying store called %d times, want 1", inner.lookups)
	}

	for range 2 {
		if _, found, err := s.Customer(ctx, "unknown"); found || err != nil {
			t.Errorf("Customer(unknown) = %v, %v", found, err)
		}
	}
	if inner.lookups != 3 {
		t.Errorf("absent customers must not be cached: %d lookups, want 3", inner.lookups)
	}

	txs, err := s.Transactions(ctx, "1234567890", nil)
	if err != nil || len(txs) != 6 {
		t.Errorf("Transactions() = %d, %v", len(txs), err)
	}
}

func TestStore_Unavailable(t *testing.T) {
	// Nothing listens on this port, every lookup goes to the underlying store.
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", DialTimeout: 50 * time.Millisecond, MaxRetries: -1})
	t.Cleanup(func() { client.Close() })

	s := New(finassist.DemoLedger(), client, 0, zaptest.NewLogger(t))
	c, found, err := s.Customer(context.Background(), "1234567890")
	if err != nil || !found || c.Name != "Sanjay S" {
		t.Errorf("Customer() = %+v, %v, %v", c, found, err)
	}
	r := date.Trailing(date.MustParse("2024-04-19"), 30)
	if txs, err := s.Transactions(context.Background(), "1234567890", &r); err != nil || len(txs) != 6 {
		t.Errorf("Transactions() = %d, %v", len(txs), err)
	}
}
