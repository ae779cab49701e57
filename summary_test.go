package finassist

import (
	"slices"
	"testing"
)

func TestSummarize(t *testing.T) {
	txs := []Transaction{
		tx("2024-03-21", Deposit, 1000),
		tx("2024-03-25", Withdrawal, 200),
		tx("2024-03-30", Transfer, 500),
		tx("2024-04-02", Deposit, 750),
		tx("2024-04-10", Withdrawal, 100),
		tx("2024-04-19", Deposit, 1500),
		tx("2024-04-20", "Fee", 0.1),
		tx("2024-04-21", "Fee", 0.2),
	}
	s := Summarize(txs)

	want := map[string]string{Deposit: "3250", Withdrawal: "300", Transfer: "500", "Fee": "0.3"}
	if len(s) != len(want) {
		t.Fatalf("Summarize() has %d types, want %d", len(s), len(want))
	}
	for k, v := range want {
		if !s[k].Equal(D(t, v)) {
			t.Errorf("Summarize()[%s] = %s, want %s", k, s[k], v)
		}
	}
	if got := s.Types(); !slices.Equal(got, []string{Deposit, "Fee", Transfer, Withdrawal}) {
		t.Errorf("Types() = %q", got)
	}

	var sum = D(t, "0")
	for _, tx := range txs {
		sum = sum.Add(tx.Amount)
	}
	if !s.Total().Equal(sum) {
		t.Errorf("Total() = %s, want %s", s.Total(), sum)
	}

	slices.Reverse(txs)
	if r := Summarize(txs); !r.Total().Equal(s.Total()) || len(r) != len(s) {
		t.Errorf("Summarize() depends on the order of transactions")
	}
}

func TestSummarize_Empty(t *testing.T) {
	s := Summarize(nil)
	if s == nil || len(s) != 0 {
		t.Errorf("Summarize(nil) = %v, want an empty summary", s)
	}
	if !s.Total().IsZero() {
		t.Errorf("Total() = %s, want 0", s.Total())
	}
}
