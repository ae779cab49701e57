// Package assistant implements the use cases of the financial assistant on
// top of a finassist.Store: verifying an account, answering a question about
// it, listing and summarizing its transactions and emailing its statement.
//
// A Service holds no mutable state, it is safe for concurrent use by any
// number of requests. Every operation is a sequential pipeline whose only
// suspension points are the store, answerer and sender calls, each bounded by
// the Service timeout.
package assistant

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/etnz/finassist"
	"github.com/etnz/finassist/date"
	"github.com/etnz/finassist/renderer"
	"go.uber.org/zap"
)

// DefaultTimeout bounds each call to an external collaborator.
const DefaultTimeout = 10 * time.Second

// DefaultRecent is the number of transactions in the context of a question.
const DefaultRecent = 5

// Service runs the assistant use cases.
type Service struct {
	store    finassist.Store
	answerer finassist.Answerer
	sender   finassist.Sender
	today    func() date.Date
	timeout  time.Duration
	recent   int
	log      *zap.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithAnswerer sets the collaborator answering questions.
func WithAnswerer(a finassist.Answerer) Option { return func(s *Service) { s.answerer = a } }

// WithSender sets the collaborator delivering statements.
func WithSender(m finassist.Sender) Option { return func(s *Service) { s.sender = m } }

// WithClock sets the function giving the current date, date.Today by default.
func WithClock(today func() date.Date) Option { return func(s *Service) { s.today = today } }

// WithTimeout sets the timeout of each external call. A zero or negative
// value disables it.
func WithTimeout(d time.Duration) Option { return func(s *Service) { s.timeout = d } }

// WithRecent sets how many of the latest transactions are given as context to
// the answerer.
func WithRecent(n int) Option { return func(s *Service) { s.recent = n } }

// WithLogger sets the logger, no logging by default.
func WithLogger(l *zap.Logger) Option { return func(s *Service) { s.log = l } }

// New returns a Service reading from store.
func New(store finassist.Store, opts ...Option) *Service {
	s := &Service{
		store:   store,
		today:   date.Today,
		timeout: DefaultTimeout,
		recent:  DefaultRecent,
		log:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Delivery acknowledges a statement handed to the sender.
type Delivery struct {
	To      string     `json:"to"`
	Subject string     `json:"subject"`
	Period  date.Range `json:"-"`
	Count   int        `json:"count"` // number of transactions in the statement
	Message string     `json:"message"`
}

// Verify returns the customer owning the account.
func (s *Service) Verify(ctx context.Context, accountNumber string) (finassist.Customer, error) {
	const op = "verify"
	if isBlank(accountNumber) {
		return finassist.Customer{}, s.fail(op, accountNumber, invalid(op, "Account number is required"))
	}
	c, err := s.customer(ctx, op, accountNumber)
	if err != nil {
		return finassist.Customer{}, s.fail(op, accountNumber, err)
	}
	s.log.Debug("account verified", zap.String("account", accountNumber))
	return c, nil
}

// Ask answers a free-text query about the account, given its balance and
// latest transactions as context.
func (s *Service) Ask(ctx context.Context, accountNumber, query string) (string, error) {
	const op = "ask"
	if isBlank(accountNumber) || isBlank(query) {
		return "", s.fail(op, accountNumber, invalid(op, "Account number and query are required"))
	}
	c, err := s.customer(ctx, op, accountNumber)
	if err != nil {
		return "", s.fail(op, accountNumber, err)
	}
	if s.answerer == nil {
		return "", s.fail(op, accountNumber, upstream(op, nil, "No assistant is configured"))
	}
	txs, err := s.transactions(ctx, op, accountNumber, nil)
	if err != nil {
		return "", s.fail(op, accountNumber, err)
	}
	prompt := renderer.Prompt(query, renderer.Context(c, finassist.Last(txs, s.recent)))

	actx, cancel := s.withTimeout(ctx)
	defer cancel()
	answer, err := s.answerer.Answer(actx, prompt)
	if err != nil {
		return "", s.fail(op, accountNumber, upstream(op, err, "Failed to process query"))
	}
	if strings.TrimSpace(answer) == "" {
		return "", s.fail(op, accountNumber, upstream(op, nil, "The assistant returned an empty answer"))
	}
	s.log.Debug("query answered", zap.String("account", accountNumber), zap.Int("context", min(len(txs), s.recent)))
	return answer, nil
}

// Transactions lists the transactions of the account. from and to are
// optional ISO dates bounding the list inclusively, the full history is
// listed unless both are given.
func (s *Service) Transactions(ctx context.Context, accountNumber, from, to string) ([]finassist.Transaction, error) {
	const op = "transactions"
	if isBlank(accountNumber) {
		return nil, s.fail(op, accountNumber, invalid(op, "Account number is required"))
	}
	r, err := parseRange(op, from, to)
	if err != nil {
		return nil, s.fail(op, accountNumber, err)
	}
	txs, err := s.transactions(ctx, op, accountNumber, r)
	if err != nil {
		return nil, s.fail(op, accountNumber, err)
	}
	return txs, nil
}

// Summary returns the total amount of the account's transactions per
// category.
func (s *Service) Summary(ctx context.Context, accountNumber string) (finassist.Summary, error) {
	const op = "summary"
	if isBlank(accountNumber) {
		return nil, s.fail(op, accountNumber, invalid(op, "Account number is required"))
	}
	txs, err := s.transactions(ctx, op, accountNumber, nil)
	if err != nil {
		return nil, s.fail(op, accountNumber, err)
	}
	return finassist.Summarize(txs), nil
}

// EmailStatement sends the customer a statement of the transactions of the
// last renderer.StatementDays days, today included.
func (s *Service) EmailStatement(ctx context.Context, accountNumber string) (Delivery, error) {
	const op = "email-statement"
	if isBlank(accountNumber) {
		return Delivery{}, s.fail(op, accountNumber, invalid(op, "Account number is required"))
	}
	c, err := s.customer(ctx, op, accountNumber)
	if err != nil {
		return Delivery{}, s.fail(op, accountNumber, err)
	}
	if s.sender == nil {
		return Delivery{}, s.fail(op, accountNumber, upstream(op, nil, "No email sender is configured"))
	}
	window := date.Trailing(s.today(), renderer.StatementDays)
	txs, err := s.transactions(ctx, op, accountNumber, &window)
	if err != nil {
		return Delivery{}, s.fail(op, accountNumber, err)
	}
	body := renderer.Statement(c, txs)

	sctx, cancel := s.withTimeout(ctx)
	defer cancel()
	if err := s.sender.Send(sctx, c.Email, renderer.StatementSubject, body); err != nil {
		return Delivery{}, s.fail(op, accountNumber, upstream(op, err, "Failed to send email"))
	}
	s.log.Info("statement sent",
		zap.String("account", accountNumber),
		zap.Stringer("period", window),
		zap.Int("transactions", len(txs)))
	return Delivery{
		To:      c.Email,
		Subject: renderer.StatementSubject,
		Period:  window,
		Count:   len(txs),
		Message: "Email sent successfully",
	}, nil
}

// customer looks the account up, an absent customer is a NotFound error.
func (s *Service) customer(ctx context.Context, op, accountNumber string) (finassist.Customer, error) {
	cctx, cancel := s.withTimeout(ctx)
	defer cancel()
	c, found, err := s.store.Customer(cctx, accountNumber)
	if err != nil {
		return finassist.Customer{}, storeFailure(op, err)
	}
	if !found {
		return finassist.Customer{}, &finassist.Error{Kind: finassist.NotFound, Op: op, Msg: "Customer not found"}
	}
	return c, nil
}

func (s *Service) transactions(ctx context.Context, op, accountNumber string, r *date.Range) ([]finassist.Transaction, error) {
	tctx, cancel := s.withTimeout(ctx)
	defer cancel()
	txs, err := s.store.Transactions(tctx, accountNumber, r)
	if err != nil {
		return nil, storeFailure(op, err)
	}
	return txs, nil
}

func (s *Service) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.timeout)
}

// fail logs err once and returns it.
func (s *Service) fail(op, accountNumber string, err error) error {
	kind := finassist.KindOf(err)
	fields := []zap.Field{
		zap.String("op", op),
		zap.String("account", accountNumber),
		zap.Stringer("kind", kind),
	}
	switch kind {
	case finassist.InvalidInput, finassist.NotFound:
		s.log.Info("request rejected", append(fields, zap.String("reason", finassist.Message(err)))...)
	default:
		s.log.Error("request failed", append(fields, zap.Error(err))...)
	}
	return err
}

// parseRange parses an optional pair of dates, a nil range means no bounds.
// A range missing either bound has no bounds.
func parseRange(op, from, to string) (*date.Range, error) {
	from, to = strings.TrimSpace(from), strings.TrimSpace(to)
	if from == "" || to == "" {
		return nil, nil
	}
	r, err := date.ParseRange(from, to)
	if errors.Is(err, date.ErrEmptyRange) {
		return nil, invalid(op, "Start date %s is after end date %s", from, to)
	}
	if err != nil {
		return nil, &finassist.Error{Kind: finassist.InvalidInput, Op: op, Msg: "Dates must use the YYYY-MM-DD format", Err: err}
	}
	return &r, nil
}

func isBlank(s string) bool { return strings.TrimSpace(s) == "" }

func invalid(op, format string, args ...any) error {
	return finassist.Errorf(finassist.InvalidInput, op, nil, format, args...)
}

func upstream(op string, cause error, msg string) error {
	return &finassist.Error{Kind: finassist.UpstreamFailure, Op: op, Msg: msg, Err: cause}
}

func storeFailure(op string, cause error) error {
	return &finassist.Error{Kind: finassist.StoreFailure, Op: op, Msg: "Failed to read the ledger", Err: cause}
}
