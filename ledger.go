package finassist

import (
	"context"
	"iter"
	"maps"
	"slices"
	"sort"
	"sync"

	"github.com/etnz/finassist/date"
)

// Ledger is an in-memory Store.
//
// In a Ledger transactions are always in chronological order, transactions of
// the same day keep their insertion order.
type Ledger struct {
	mu           sync.RWMutex
	customers    map[string]Customer // index customers by account number
	transactions []Transaction
}

// NewLedger creates an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{
		customers:    make(map[string]Customer),
		transactions: make([]Transaction, 0),
	}
}

// AddCustomers adds or replaces customers in the ledger.
func (l *Ledger) AddCustomers(cs ...Customer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, c := range cs {
		l.customers[c.AccountNumber] = c
	}
}

// Append appends transactions to this ledger and maintains the chronological order of transactions.
func (l *Ledger) Append(txs ...Transaction) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.transactions = append(l.transactions, txs...)
	l.stableSort()
}

// stableSort sorts the ledger by transaction date. The sort is stable, meaning
// transactions on the same day maintain their original relative order.
func (l *Ledger) stableSort() {
	sort.SliceStable(l.transactions, func(i, j int) bool {
		return l.transactions[i].Date.Before(l.transactions[j].Date)
	})
}

// Customers iterates over all customers by account number.
func (l *Ledger) Customers() iter.Seq[Customer] {
	l.mu.RLock()
	accounts := slices.Sorted(maps.Keys(l.customers))
	customers := make([]Customer, 0, len(accounts))
	for _, acc := range accounts {
		customers = append(customers, l.customers[acc])
	}
	l.mu.RUnlock()
	return slices.Values(customers)
}

// AllTransactions iterates over the transactions of every account in ledger order.
func (l *Ledger) AllTransactions() iter.Seq[Transaction] {
	l.mu.RLock()
	txs := slices.Clone(l.transactions)
	l.mu.RUnlock()
	return slices.Values(txs)
}

// Len returns the number of transactions in the ledger.
func (l *Ledger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.transactions)
}

// Customer implements Store.
func (l *Ledger) Customer(ctx context.Context, accountNumber string) (Customer, bool, error) {
	if err := ctx.Err(); err != nil {
		return Customer{}, false, err
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	c, ok := l.customers[accountNumber]
	return c, ok, nil
}

// Transactions implements Store.
func (l *Ledger) Transactions(ctx context.Context, accountNumber string, r *date.Range) ([]Transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	txs := make([]Transaction, 0)
	for _, tx := range l.transactions {
		if tx.AccountNumber != accountNumber {
			continue
		}
		if r != nil && !r.Contains(tx.Date) {
			continue
		}
		txs = append(txs, tx)
	}
	return txs, nil
}

var _ Store = (*Ledger)(nil)
