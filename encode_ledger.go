package finassist

import (
	"bufio"
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/etnz/finassist/date"
	"github.com/shopspring/decimal"
)

func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

// RecordType identifies the kind of a line in a JSONL ledger.
type RecordType string

const (
	RecordCustomer    RecordType = "customer"
	RecordTransaction RecordType = "transaction"
)

// customerRecord is the JSONL form of a Customer.
type customerRecord struct {
	Record        RecordType      `json:"record"`
	AccountNumber string          `json:"accountNumber"`
	Name          string          `json:"name"`
	Email         string          `json:"email"`
	Balance       decimal.Decimal `json:"balance"`
}

// transactionRecord is the JSONL form of a Transaction, it keeps the account
// number that the public JSON form of a Transaction strips.
type transactionRecord struct {
	Record        RecordType      `json:"record"`
	AccountNumber string          `json:"accountNumber"`
	Date          date.Date       `json:"date"`
	Type          string          `json:"type"`
	Amount        decimal.Decimal `json:"amount"`
	Description   string          `json:"description"`
}

// DecodeLedger decodes customers and transactions from a stream of JSONL data
// and returns a sorted Ledger.
//
// Every transaction must belong to a customer declared anywhere in the stream.
func DecodeLedger(r io.Reader) (*Ledger, error) {
	ledger := NewLedger()
	var txs []Transaction
	scanner := bufio.NewScanner(r)

	for n := 1; scanner.Scan(); n++ {
		lineBytes := bytes.TrimSpace(scanner.Bytes())
		if len(lineBytes) == 0 {
			continue // Skip empty lines
		}

		var identifier struct {
			Record RecordType `json:"record"`
		}
		if err := json.Unmarshal(lineBytes, &identifier); err != nil {
			return nil, fmt.Errorf("line %d: could not identify record: %w", n, err)
		}

		switch identifier.Record {
		case RecordCustomer:
			var rec customerRecord
			if err := json.Unmarshal(lineBytes, &rec); err != nil {
				return nil, fmt.Errorf("line %d: %w", n, err)
			}
			if rec.AccountNumber == "" {
				return nil, fmt.Errorf("line %d: customer without account number", n)
			}
			ledger.AddCustomers(Customer{
				AccountNumber: rec.AccountNumber,
				Name:          rec.Name,
				Email:         rec.Email,
				Balance:       rec.Balance,
			})
		case RecordTransaction:
			var rec transactionRecord
			if err := json.Unmarshal(lineBytes, &rec); err != nil {
				return nil, fmt.Errorf("line %d: %w", n, err)
			}
			if rec.Date.IsZero() {
				return nil, fmt.Errorf("line %d: transaction without date", n)
			}
			if rec.Amount.IsNegative() {
				return nil, fmt.Errorf("line %d: negative amount %s, the direction is carried by the type", n, rec.Amount)
			}
			txs = append(txs, Transaction{
				AccountNumber: rec.AccountNumber,
				Date:          rec.Date,
				Type:          rec.Type,
				Amount:        rec.Amount,
				Description:   rec.Description,
			})
		default:
			return nil, fmt.Errorf("line %d: unknown record type %q", n, identifier.Record)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	var errs error
	for _, tx := range txs {
		if _, ok := ledger.customers[tx.AccountNumber]; !ok {
			errs = errors.Join(errs, fmt.Errorf("transaction of %s on %s references unknown account %q", tx.Type, tx.Date, tx.AccountNumber))
		}
	}
	if errs != nil {
		return nil, errs
	}
	ledger.Append(txs...)
	return ledger, nil
}

// EncodeLedger writes the ledger as JSONL, customers first then transactions
// in ledger order.
func EncodeLedger(w io.Writer, l *Ledger) error {
	enc := json.NewEncoder(w)
	for c := range l.Customers() {
		if err := enc.Encode(customerRecord{
			Record:        RecordCustomer,
			AccountNumber: c.AccountNumber,
			Name:          c.Name,
			Email:         c.Email,
			Balance:       c.Balance,
		}); err != nil {
			return err
		}
	}
	for tx := range l.AllTransactions() {
		if err := enc.Encode(transactionRecord{
			Record:        RecordTransaction,
			AccountNumber: tx.AccountNumber,
			Date:          tx.Date,
			Type:          tx.Type,
			Amount:        tx.Amount,
			Description:   tx.Description,
		}); err != nil {
			return err
		}
	}
	return nil
}

//go:embed demo.jsonl
var demo []byte

// DemoLedger returns a new ledger holding a single demo customer and its
// transactions.
func DemoLedger() *Ledger {
	l, err := DecodeLedger(bytes.NewReader(demo))
	if err != nil {
		panic(fmt.Sprintf("invalid demo ledger: %v", err))
	}
	return l
}
