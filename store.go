package finassist

import (
	"context"

	"github.com/etnz/finassist/date"
)

// Store gives read access to customers and their transactions.
//
// Implementations must be safe for concurrent use.
type Store interface {
	// Customer returns the customer with the given account number.
	// An unknown account is not an error, it returns found == false.
	Customer(ctx context.Context, accountNumber string) (c Customer, found bool, err error)

	// Transactions returns the transactions of the account in ascending date
	// order, transactions of the same day in insertion order.
	// If r is not nil only transactions dated within r, boundaries included,
	// are returned.
	Transactions(ctx context.Context, accountNumber string, r *date.Range) ([]Transaction, error)
}

// Answerer answers a natural-language prompt.
type Answerer interface {
	Answer(ctx context.Context, prompt string) (string, error)
}

// Sender delivers a plain text email.
type Sender interface {
	Send(ctx context.Context, to, subject, body string) error
}

// AnswererFunc adapts a function to the Answerer interface.
type AnswererFunc func(ctx context.Context, prompt string) (string, error)

func (f AnswererFunc) Answer(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

// SenderFunc adapts a function to the Sender interface.
type SenderFunc func(ctx context.Context, to, subject, body string) error

func (f SenderFunc) Send(ctx context.Context, to, subject, body string) error {
	return f(ctx, to, subject, body)
}
