// Package mongodb implements a finassist.Store on a MongoDB database.
//
// Customers and transactions live in two collections. Dates are stored as
// ISO strings so that range queries compare them lexicographically, amounts
// as Decimal128.
package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/etnz/finassist"
	"github.com/etnz/finassist/date"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// DefaultDatabase is the database used when none is given.
const DefaultDatabase = "finassist"

const (
	customers    = "customers"
	transactions = "transactions"
)

type customerDoc struct {
	AccountNumber string               `bson:"account_number"`
	Name          string               `bson:"name"`
	Email         string               `bson:"email"`
	Balance       primitive.Decimal128 `bson:"balance"`
}

type transactionDoc struct {
	AccountNumber string               `bson:"account_number"`
	Seq           int                  `bson:"seq"` // insertion order
	Date          string               `bson:"date"`
	Type          string               `bson:"type"`
	Amount        primitive.Decimal128 `bson:"amount"`
	Description   string               `bson:"description"`
}

// Store reads customers and transactions from MongoDB.
type Store struct {
	client *mongo.Client
	db     *mongo.Database
}

// Open connects to the server at uri and uses the database named db.
func Open(ctx context.Context, uri, db string) (*Store, error) {
	if db == "" {
		db = DefaultDatabase
	}
	opts := options.Client().ApplyURI(uri).SetTimeout(10 * time.Second).SetMaxPoolSize(50)
	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("cannot connect to mongodb: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		client.Disconnect(ctx)
		return nil, fmt.Errorf("cannot reach mongodb: %w", err)
	}
	return New(client, db), nil
}

// New returns a Store using an existing client.
func New(client *mongo.Client, db string) *Store {
	return &Store{client: client, db: client.Database(db)}
}

// Close disconnects the client.
func (s *Store) Close(ctx context.Context) error { return s.client.Disconnect(ctx) }

// Seed replaces the content of the database with the content of the ledger,
// and creates the indexes used by queries.
func (s *Store) Seed(ctx context.Context, l *finassist.Ledger) error {
	for _, name := range []string{customers, transactions} {
		if err := s.db.Collection(name).Drop(ctx); err != nil {
			return fmt.Errorf("cannot drop %s: %w", name, err)
		}
	}
	if _, err := s.db.Collection(customers).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "account_number", Value: 1}},
		Options: options.Index().SetUnique(true),
	}); err != nil {
		return fmt.Errorf("cannot index customers: %w", err)
	}
	if _, err := s.db.Collection(transactions).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "account_number", Value: 1}, {Key: "date", Value: 1}, {Key: "seq", Value: 1}},
	}); err != nil {
		return fmt.Errorf("cannot index transactions: %w", err)
	}

	var docs []any
	for c := range l.Customers() {
		balance, err := toDecimal128(c.Balance)
		if err != nil {
			return err
		}
		docs = append(docs, customerDoc{AccountNumber: c.AccountNumber, Name: c.Name, Email: c.Email, Balance: balance})
	}
	if len(docs) > 0 {
		if _, err := s.db.Collection(customers).InsertMany(ctx, docs); err != nil {
			return fmt.Errorf("cannot insert customers: %w", err)
		}
	}

	docs = docs[:0]
	seq := 0
	for t := range l.AllTransactions() {
		amount, err := toDecimal128(t.Amount)
		if err != nil {
			return err
		}
		docs = append(docs, transactionDoc{
			AccountNumber: t.AccountNumber,
			Seq:           seq,
			Date:          t.Date.String(),
			Type:          t.Type,
			Amount:        amount,
			Description:   t.Description,
		})
		seq++
	}
	if len(docs) > 0 {
		if _, err := s.db.Collection(transactions).InsertMany(ctx, docs); err != nil {
			return fmt.Errorf("cannot insert transactions: %w", err)
		}
	}
	return nil
}

// Customer implements finassist.Store.
func (s *Store) Customer(ctx context.Context, accountNumber string) (finassist.Customer, bool, error) {
	var doc customerDoc
	err := s.db.Collection(customers).FindOne(ctx, bson.M{"account_number": accountNumber}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return finassist.Customer{}, false, nil
	}
	if err != nil {
		return finassist.Customer{}, false, fmt.Errorf("cannot read customer %q: %w", accountNumber, err)
	}
	balance, err := fromDecimal128(doc.Balance)
	if err != nil {
		return finassist.Customer{}, false, fmt.Errorf("invalid balance of customer %q: %w", accountNumber, err)
	}
	return finassist.Customer{
		AccountNumber: doc.AccountNumber,
		Name:          doc.Name,
		Email:         doc.Email,
		Balance:       balance,
	}, true, nil
}

// Transactions implements finassist.Store.
func (s *Store) Transactions(ctx context.Context, accountNumber string, r *date.Range) ([]finassist.Transaction, error) {
	filter := bson.M{"account_number": accountNumber}
	if r != nil {
		filter["date"] = bson.M{"$gte": r.From.String(), "$lte": r.To.String()}
	}
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: 1}, {Key: "seq", Value: 1}})
	cur, err := s.db.Collection(transactions).Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("cannot list transactions of %q: %w", accountNumber, err)
	}
	defer cur.Close(ctx)

	txs := make([]finassist.Transaction, 0)
	for cur.Next(ctx) {
		var doc transactionDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("cannot read transaction: %w", err)
		}
		on, err := date.Parse(doc.Date)
		if err != nil {
			return nil, err
		}
		amount, err := fromDecimal128(doc.Amount)
		if err != nil {
			return nil, fmt.Errorf("invalid amount of transaction on %s: %w", doc.Date, err)
		}
		txs = append(txs, finassist.Transaction{
			AccountNumber: doc.AccountNumber,
			Date:          on,
			Type:          doc.Type,
			Amount:        amount,
			Description:   doc.Description,
		})
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transactions: %w", err)
	}
	return txs, nil
}

func toDecimal128(d decimal.Decimal) (primitive.Decimal128, error) {
	v, err := primitive.ParseDecimal128(d.String())
	if err != nil {
		return primitive.Decimal128{}, fmt.Errorf("cannot store amount %s: %w", d, err)
	}
	return v, nil
}

func fromDecimal128(v primitive.Decimal128) (decimal.Decimal, error) {
	return decimal.NewFromString(v.String())
}

var _ finassist.Store = (*Store)(nil)
