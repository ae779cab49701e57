package finassist

import (
	"bytes"
	"context"
	"strings"
	"testing"
)

func TestDecodeLedger(t *testing.T) {
	jsonlStream := `
{"record":"transaction","accountNumber":"42","date":"2024-03-02","type":"Withdrawal","amount":20,"description":"second"}
{"record":"customer","accountNumber":"42","name":"Ada","email":"ada@example.com","balance":-12.5}
{"record":"transaction","accountNumber":"42","date":"2024-03-01","type":"Deposit","amount":100.10,"description":"first"}
`
	ledger, err := DecodeLedger(strings.NewReader(jsonlStream))
	if err != nil {
		t.Fatalf("DecodeLedger() returned an unexpected error: %v", err)
	}
	c, found, _ := ledger.Customer(context.Background(), "42")
	if !found || c.Email != "ada@example.com" || !c.Balance.Equal(D(t, "-12.5")) {
		t.Errorf("DecodeLedger() customer = %+v, found = %v", c, found)
	}
	txs, _ := ledger.Transactions(context.Background(), "42", nil)
	if len(txs) != 2 {
		t.Fatalf("DecodeLedger() decoded %d transactions, want 2", len(txs))
	}
	if txs[0].Description != "first" || !txs[0].Amount.Equal(D(t, "100.1")) {
		t.Errorf("DecodeLedger() first transaction = %+v", txs[0])
	}
}

func TestDecodeLedger_Errors(t *testing.T) {
	testCases := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "unknown record",
			input: `{"record":"security"}`,
			want:  "line 1: unknown record type",
		},
		{
			name:  "malformed line",
			input: "\n{not json",
			want:  "line 2",
		},
		{
			name:  "customer without account",
			input: `{"record":"customer","name":"Ada"}`,
			want:  "without account number",
		},
		{
			name:  "negative amount",
			input: `{"record":"transaction","accountNumber":"1","date":"2024-01-01","type":"Deposit","amount":-1}`,
			want:  "negative amount",
		},
		{
			name:  "missing date",
			input: `{"record":"transaction","accountNumber":"1","type":"Deposit","amount":1}`,
			want:  "without date",
		},
		{
			name:  "unknown account",
			input: `{"record":"transaction","accountNumber":"1","date":"2024-01-01","type":"Deposit","amount":1}`,
			want:  `unknown account "1"`,
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := DecodeLedger(strings.NewReader(tc.input))
			if err == nil {
				t.Fatal("DecodeLedger() succeeded, want an error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Errorf("DecodeLedger() error = %q, want it to contain %q", err, tc.want)
			}
		})
	}
}

func TestEncodeLedger(t *testing.T) {
	var buf bytes.Buffer
	if err := EncodeLedger(&buf, DemoLedger()); err != nil {
		t.Fatalf("EncodeLedger() error = %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 7 {
		t.Fatalf("EncodeLedger() wrote %d lines, want 7", len(lines))
	}
	wantFirst := `{"record":"customer","accountNumber":"1234567890","name":"Sanjay S","email":"sanjayshankar91@gmail.com","balance":12500.75}`
	if lines[0] != wantFirst {
		t.Errorf("EncodeLedger() first line:\n got: %s\nwant: %s", lines[0], wantFirst)
	}
	wantLast := `{"record":"transaction","accountNumber":"1234567890","date":"2024-04-19","type":"Deposit","amount":1500,"description":"Freelance payment"}`
	if lines[6] != wantLast {
		t.Errorf("EncodeLedger() last line:\n got: %s\nwant: %s", lines[6], wantLast)
	}

	// Decoding what was encoded gives back the same ledger.
	again, err := DecodeLedger(&buf)
	if err != nil {
		t.Fatalf("DecodeLedger() error = %v", err)
	}
	if again.Len() != 6 {
		t.Errorf("DecodeLedger(EncodeLedger()) has %d transactions, want 6", again.Len())
	}
}
