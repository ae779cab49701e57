// Package renderer formats customers and transactions into the texts consumed
// downstream: the context block and prompt handed to the answerer, the
// statement email body, and markdown reports for the terminal.
//
// All functions are pure, their output only depends on their input.
package renderer

import (
	"embed"
	"fmt"
	"strings"
	"text/template"

	"github.com/etnz/finassist"
	"github.com/etnz/finassist/date"
)

//go:embed templates/*.txt templates/*.md
var templates embed.FS

// StatementDays is the length of the window covered by a statement.
const StatementDays = 30

// StatementSubject is the subject of statement emails.
const StatementSubject = "Your 30-Day Bank Statement"

var tmpl = template.Must(template.New("renderer").Funcs(template.FuncMap{
	"line":  Transaction,
	"money": formatMoney,
}).ParseFS(templates, "templates/*.txt", "templates/*.md"))

// Context renders the block describing a customer and its recent
// transactions, one line per transaction in the given order.
func Context(c finassist.Customer, recent []finassist.Transaction) string {
	return render("context.txt", struct {
		Customer     finassist.Customer
		Transactions []finassist.Transaction
	}{c, recent})
}

// Prompt frames a customer query and its context block for the answerer.
func Prompt(query, context string) string {
	return render("prompt.txt", struct{ Query, Context string }{query, context})
}

// Statement renders the body of a statement email: greeting, transaction
// lines, current balance and signature.
func Statement(c finassist.Customer, txs []finassist.Transaction) string {
	return render("statement.txt", struct {
		Customer     finassist.Customer
		Transactions []finassist.Transaction
		Days         int
	}{c, txs, StatementDays})
}

// SummaryMarkdown renders per-category totals as a markdown table, categories
// in lexical order.
func SummaryMarkdown(s finassist.Summary, currency string) string {
	type row struct{ Type, Total string }
	rows := make([]row, 0, len(s))
	for _, typ := range s.Types() {
		rows = append(rows, row{typ, formatMoney(s[typ], currency)})
	}
	return render("summary.md", struct{ Rows []row }{rows})
}

// TransactionsMarkdown renders a transaction list as a markdown table. r is
// the range the list was filtered on, if any.
func TransactionsMarkdown(txs []finassist.Transaction, r *date.Range, currency string) string {
	return render("transactions.md", struct {
		Transactions []finassist.Transaction
		Range        *date.Range
		Currency     string
	}{txs, r, currency})
}

// render executes a named template, trailing newlines are dropped so that
// results compose without blank line drift.
func render(name string, data any) string {
	var b strings.Builder
	if err := tmpl.ExecuteTemplate(&b, name, data); err != nil {
		return fmt.Sprintf("error executing template %q: %v", name, err)
	}
	return strings.TrimRight(b.String(), "\n")
}
