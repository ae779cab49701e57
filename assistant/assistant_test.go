package assistant

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/etnz/finassist"
	"github.com/etnz/finassist/date"
	"github.com/etnz/finassist/renderer"
	"github.com/shopspring/decimal"
	"go.uber.org/zap/zaptest"
)

const account = "1234567890"

// on returns a clock stuck at the given day.
func on(day string) func() date.Date {
	d := date.MustParse(day)
	return func() date.Date { return d }
}

// recorder is an Answerer and a Sender keeping track of its calls.
type recorder struct {
	prompts []string
	answer  string
	mails   []mail
	err     error
}

type mail struct{ to, subject, body string }

func (r *recorder) Answer(ctx context.Context, prompt string) (string, error) {
	r.prompts = append(r.prompts, prompt)
	return r.answer, r.err
}

func (r *recorder) Send(ctx context.Context, to, subject, body string) error {
	r.mails = append(r.mails, mail{to, subject, body})
	return r.err
}

// blocking is a Store, Answerer and Sender that never returns before its
// context is done.
type blocking struct{}

func (blocking) Customer(ctx context.Context, _ string) (finassist.Customer, bool, error) {
	<-ctx.Done()
	return finassist.Customer{}, false, ctx.Err()
}

func (blocking) Transactions(ctx context.Context, _ string, _ *date.Range) ([]finassist.Transaction, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func (blocking) Answer(ctx context.Context, _ string) (string, error) {
	<-ctx.Done()
	return "", ctx.Err()
}

func (blocking) Send(ctx context.Context, _, _, _ string) error {
	<-ctx.Done()
	return ctx.Err()
}

func newService(t *testing.T, opts ...Option) *Service {
	t.Helper()
	opts = append([]Option{WithLogger(zaptest.NewLogger(t)), WithClock(on("2024-04-19"))}, opts...)
	return New(finassist.DemoLedger(), opts...)
}

func assertKind(t *testing.T, err error, want finassist.Kind) {
	t.Helper()
	if err == nil {
		t.Fatalf("got no error, want %v", want)
	}
	if got := finassist.KindOf(err); got != want {
		t.Fatalf("error %q has kind %v, want %v", err, got, want)
	}
}

func TestVerify(t *testing.T) {
	s := newService(t)
	c, err := s.Verify(context.Background(), account)
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if c.Name != "Sanjay S" || !c.Balance.Equal(decimal.RequireFromString("12500.75")) {
		t.Errorf("Verify() = %+v", c)
	}

	_, err = s.Verify(context.Background(), "unknown")
	assertKind(t, err, finassist.NotFound)

	_, err = s.Verify(context.Background(), "  ")
	assertKind(t, err, finassist.InvalidInput)
}

func TestAsk(t *testing.T) {
	r := &recorder{answer: "You spent $300."}
	s := newService(t, WithAnswerer(r))

	got, err := s.Ask(context.Background(), account, "How much did I spend?")
	if err != nil {
		t.Fatalf("Ask() error = %v", err)
	}
	if got != r.answer {
		t.Errorf("Ask() = %q, want %q", got, r.answer)
	}
	if len(r.prompts) != 1 {
		t.Fatalf("answerer called %d times, want 1", len(r.prompts))
	}
	prompt := r.prompts[0]
	for _, want := range []string{
		"How much did I spend?",
		"Balance: $12500.75",
		"2024-04-19 - Deposit - $1500 - Freelance payment",
		"2024-03-25 - Withdrawal - $200 - ATM cash withdrawal",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt does not contain %q:\n%s", want, prompt)
		}
	}
	if strings.Contains(prompt, "Salary credited") {
		t.Errorf("prompt contains more than the %d latest transactions:\n%s", DefaultRecent, prompt)
	}
}

func TestAsk_Invalid(t *testing.T) {
	r := &recorder{answer: "never"}
	s := newService(t, WithAnswerer(r))

	testCases := []struct {
		name, account, query string
		want                 finassist.Kind
	}{
		{name: "blank query", account: account, query: " \t", want: finassist.InvalidInput},
		{name: "missing account", account: "", query: "hello", want: finassist.InvalidInput},
		{name: "unknown account", account: "unknown", query: "hello", want: finassist.NotFound},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := s.Ask(context.Background(), tc.account, tc.query)
			assertKind(t, err, tc.want)
		})
	}
	if len(r.prompts) != 0 {
		t.Errorf("answerer called %d times, want 0", len(r.prompts))
	}
}

func TestAsk_Upstream(t *testing.T) {
	testCases := []struct {
		name string
		opts []Option
	}{
		{name: "no answerer"},
		{name: "answerer error", opts: []Option{WithAnswerer(&recorder{err: errors.New("quota exceeded")})}},
		{name: "empty answer", opts: []Option{WithAnswerer(&recorder{answer: "\n"})}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := newService(t, tc.opts...).Ask(context.Background(), account, "hello")
			assertKind(t, err, finassist.UpstreamFailure)
		})
	}
}

func TestTransactions(t *testing.T) {
	s := newService(t)
	testCases := []struct {
		name     string
		from, to string
		want     int
		kind     finassist.Kind
	}{
		{name: "all", want: 6},
		{name: "april", from: "2024-04-01", to: "2024-04-30", want: 3},
		{name: "inclusive", from: "2024-03-25", to: "2024-04-02", want: 3},
		{name: "empty", from: "2025-01-01", to: "2025-01-31", want: 0},
		{name: "only from", from: "2024-04-01", want: 6},
		{name: "only to", to: "2024-04-01", want: 6},
		{name: "malformed", from: "01/04/2024", to: "2024-04-30", kind: finassist.InvalidInput},
		{name: "reversed", from: "2024-04-30", to: "2024-04-01", kind: finassist.InvalidInput},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			txs, err := s.Transactions(context.Background(), account, tc.from, tc.to)
			if tc.kind != 0 {
				assertKind(t, err, tc.kind)
				return
			}
			if err != nil {
				t.Fatalf("Transactions() error = %v", err)
			}
			if len(txs) != tc.want {
				t.Errorf("Transactions() returned %d transactions, want %d", len(txs), tc.want)
			}
			for i := 1; i < len(txs); i++ {
				if txs[i].Date.Before(txs[i-1].Date) {
					t.Errorf("Transactions() not in ascending date order at %d", i)
				}
			}
		})
	}

	// An unknown account has no transactions.
	txs, err := s.Transactions(context.Background(), "unknown", "", "")
	if err != nil || len(txs) != 0 {
		t.Errorf("Transactions(unknown) = %v, %v, want none", txs, err)
	}
}

func TestSummary(t *testing.T) {
	s := newService(t)
	first, err := s.Summary(context.Background(), account)
	if err != nil {
		t.Fatalf("Summary() error = %v", err)
	}
	want := map[string]string{finassist.Deposit: "3250", finassist.Withdrawal: "300", finassist.Transfer: "500"}
	if len(first) != len(want) {
		t.Fatalf("Summary() = %v, want %v", first, want)
	}
	for k, v := range want {
		if !first[k].Equal(decimal.RequireFromString(v)) {
			t.Errorf("Summary()[%s] = %s, want %s", k, first[k], v)
		}
	}

	again, err := s.Summary(context.Background(), account)
	if err != nil {
		t.Fatalf("Summary() error = %v", err)
	}
	for k, v := range first {
		if !again[k].Equal(v) {
			t.Errorf("Summary() is not stable: %s = %s then %s", k, v, again[k])
		}
	}

	empty, err := s.Summary(context.Background(), "unknown")
	if err != nil || empty == nil || len(empty) != 0 {
		t.Errorf("Summary(unknown) = %v, %v, want an empty summary", empty, err)
	}
}

func TestRepeatedReads(t *testing.T) {
	s := newService(t)
	ctx := context.Background()
	testCases := []struct {
		name string
		read func() (any, error)
	}{
		{name: "transactions", read: func() (any, error) { return s.Transactions(ctx, account, "", "") }},
		{name: "transactions in range", read: func() (any, error) { return s.Transactions(ctx, account, "2024-03-25", "2024-04-10") }},
		{name: "summary", read: func() (any, error) { return s.Summary(ctx, account) }},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var got [2][]byte
			for i := range got {
				v, err := tc.read()
				if err != nil {
					t.Fatalf("read %d: %v", i, err)
				}
				if got[i], err = json.Marshal(v); err != nil {
					t.Fatalf("json.Marshal() error = %v", err)
				}
			}
			if string(got[0]) != string(got[1]) {
				t.Errorf("second read differs:\n%s\n%s", got[0], got[1])
			}
		})
	}
}

func TestEmailStatement(t *testing.T) {
	testCases := []struct {
		today string
		descs []string
	}{
		{today: "2024-04-19", descs: []string{
			"Salary credited", "ATM cash withdrawal", "Sent to friend",
			"Refund from vendor", "Online shopping", "Freelance payment",
		}},
		{today: "2024-04-25", descs: []string{"Sent to friend", "Refund from vendor", "Online shopping", "Freelance payment"}},
		{today: "2024-06-01"},
	}
	for _, tc := range testCases {
		t.Run(tc.today, func(t *testing.T) {
			r := &recorder{}
			s := newService(t, WithSender(r), WithClock(on(tc.today)))
			d, err := s.EmailStatement(context.Background(), account)
			if err != nil {
				t.Fatalf("EmailStatement() error = %v", err)
			}
			if d.To != "sanjayshankar91@gmail.com" || d.Count != len(tc.descs) || d.Message != "Email sent successfully" {
				t.Errorf("EmailStatement() = %+v", d)
			}
			if d.Period.To != date.MustParse(tc.today) {
				t.Errorf("EmailStatement() period = %s, want it to end %s", d.Period, tc.today)
			}
			if len(r.mails) != 1 {
				t.Fatalf("sender called %d times, want 1", len(r.mails))
			}
			m := r.mails[0]
			if m.to != d.To || m.subject != renderer.StatementSubject {
				t.Errorf("mail sent to %q with subject %q", m.to, m.subject)
			}
			for _, desc := range tc.descs {
				if strings.Count(m.body, desc) != 1 {
					t.Errorf("statement must contain %q exactly once:\n%s", desc, m.body)
				}
			}
			if got := strings.Count(m.body, " - $"); got != len(tc.descs) {
				t.Errorf("statement has %d transaction lines, want %d:\n%s", got, len(tc.descs), m.body)
			}
			if !strings.Contains(m.body, "Current Balance: $12500.75") {
				t.Errorf("statement does not show the balance:\n%s", m.body)
			}
		})
	}
}

func TestEmailStatement_Failures(t *testing.T) {
	r := &recorder{}
	_, err := newService(t, WithSender(r)).EmailStatement(context.Background(), "unknown")
	assertKind(t, err, finassist.NotFound)
	if len(r.mails) != 0 {
		t.Errorf("sender called for an unknown account")
	}

	_, err = newService(t).EmailStatement(context.Background(), account)
	assertKind(t, err, finassist.UpstreamFailure)

	_, err = newService(t, WithSender(&recorder{err: errors.New("connection refused")})).EmailStatement(context.Background(), account)
	assertKind(t, err, finassist.UpstreamFailure)
}

func TestUnconfigured_UnknownAccount(t *testing.T) {
	s := newService(t)
	_, err := s.Ask(context.Background(), "unknown", "hello")
	assertKind(t, err, finassist.NotFound)
	_, err = s.EmailStatement(context.Background(), "unknown")
	assertKind(t, err, finassist.NotFound)
}

func TestTimeouts(t *testing.T) {
	const d = 10 * time.Millisecond
	log := WithLogger(zaptest.NewLogger(t))

	stuck := New(blocking{}, log, WithTimeout(d), WithAnswerer(blocking{}), WithSender(blocking{}))
	_, err := stuck.Verify(context.Background(), account)
	assertKind(t, err, finassist.StoreFailure)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Verify() error = %v, want a deadline exceeded", err)
	}
	_, err = stuck.Summary(context.Background(), account)
	assertKind(t, err, finassist.StoreFailure)

	slow := New(finassist.DemoLedger(), log, WithTimeout(d), WithAnswerer(blocking{}), WithSender(blocking{}))
	_, err = slow.Ask(context.Background(), account, "hello")
	assertKind(t, err, finassist.UpstreamFailure)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Ask() error = %v, want a deadline exceeded", err)
	}
	_, err = slow.EmailStatement(context.Background(), account)
	assertKind(t, err, finassist.UpstreamFailure)
}
