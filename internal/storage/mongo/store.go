// Package mongo implements the ledger Store on MongoDB.
package mongo

import (
	"context"
	"fmt"
	"log"
	"time"

	"telegram-wallet-bot/internal/models"
	"telegram-wallet-bot/internal/storage"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// The wallet collection holds exactly one document.
const walletID = 1

// Store wraps the three ledger collections.
type Store struct {
	client   *mongo.Client
	wallet   *mongo.Collection
	entries  *mongo.Collection
	archives *mongo.Collection
}

// New connects to MongoDB and returns a ready Store.
func New(ctx context.Context, uri, dbName string) (*Store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err = client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	db := client.Database(dbName)
	log.Println("Successfully connected to MongoDB")
	return &Store{
		client:   client,
		wallet:   db.Collection("wallet"),
		entries:  db.Collection("entries"),
		archives: db.Collection("monthly_archives"),
	}, nil
}

// Close closes the database connection.
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// Decimal amounts are stored as strings so documents stay exact.
type walletDoc struct {
	ID          int       `bson:"_id"`
	Balance     string    `bson:"balance"`
	LastUpdated time.Time `bson:"lastUpdated"`
}

type entryDoc struct {
	ID               int64     `bson:"_id"`
	Kind             string    `bson:"kind"`
	Timestamp        time.Time `bson:"timestamp"`
	Amount           string    `bson:"amount"`
	ResultingBalance string    `bson:"resultingBalance"`
}

type archiveDoc struct {
	MonthKey     string     `bson:"_id"`
	Entries      []entryDoc `bson:"entries"`
	FinalBalance string     `bson:"finalBalance"`
	ArchivedAt   time.Time  `bson:"archivedAt"`
}

func toEntryDoc(e models.Entry) entryDoc {
	return entryDoc{
		ID:               e.ID,
		Kind:             string(e.Kind),
		Timestamp:        e.Timestamp,
		Amount:           e.Amount.String(),
		ResultingBalance: e.ResultingBalance.String(),
	}
}

func fromEntryDoc(d entryDoc) (models.Entry, error) {
	amount, err := decimal.NewFromString(d.Amount)
	if err != nil {
		return models.Entry{}, fmt.Errorf("bad amount in entry %d: %w", d.ID, err)
	}
	balance, err := decimal.NewFromString(d.ResultingBalance)
	if err != nil {
		return models.Entry{}, fmt.Errorf("bad balance in entry %d: %w", d.ID, err)
	}
	return models.Entry{
		ID:               d.ID,
		Kind:             models.EntryKind(d.Kind),
		Timestamp:        d.Timestamp,
		Amount:           amount,
		ResultingBalance: balance,
	}, nil
}

func (s *Store) GetWallet(ctx context.Context) (*models.WalletState, error) {
	var doc walletDoc
	err := s.wallet.FindOne(ctx, bson.M{"_id": walletID}).Decode(&doc)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load wallet: %w", err)
	}
	balance, err := decimal.NewFromString(doc.Balance)
	if err != nil {
		return nil, fmt.Errorf("bad wallet balance: %w", err)
	}
	return &models.WalletState{Balance: balance, LastUpdated: doc.LastUpdated}, nil
}

func (s *Store) PutWallet(ctx context.Context, w models.WalletState) error {
	doc := walletDoc{ID: walletID, Balance: w.Balance.String(), LastUpdated: w.LastUpdated}
	opts := options.Replace().SetUpsert(true)
	_, err := s.wallet.ReplaceOne(ctx, bson.M{"_id": walletID}, doc, opts)
	if err != nil {
		return fmt.Errorf("failed to save wallet: %w", err)
	}
	return nil
}

func (s *Store) AddEntry(ctx context.Context, e models.Entry) error {
	_, err := s.entries.InsertOne(ctx, toEntryDoc(e))
	if err != nil {
		return fmt.Errorf("failed to insert entry: %w", err)
	}
	return nil
}

func (s *Store) DeleteEntry(ctx context.Context, id int64) error {
	_, err := s.entries.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete entry: %w", err)
	}
	return nil
}

func (s *Store) GetAllEntries(ctx context.Context) ([]models.Entry, error) {
	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: -1}})
	cursor, err := s.entries.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch entries: %w", err)
	}
	defer cursor.Close(ctx)

	var entries []models.Entry
	for cursor.Next(ctx) {
		var doc entryDoc
		if err := cursor.Decode(&doc); err != nil {
			continue
		}
		e, err := fromEntryDoc(doc)
		if err != nil {
			log.Println("Skipping unreadable entry:", err)
			continue
		}
		entries = append(entries, e)
	}
	return entries, nil
}

func (s *Store) ClearEntries(ctx context.Context) error {
	_, err := s.entries.DeleteMany(ctx, bson.M{})
	if err != nil {
		return fmt.Errorf("failed to clear entries: %w", err)
	}
	return nil
}

func (s *Store) PutArchive(ctx context.Context, a models.MonthlyArchive) error {
	docs := make([]entryDoc, 0, len(a.Entries))
	for _, e := range a.Entries {
		docs = append(docs, toEntryDoc(e))
	}
	doc := archiveDoc{
		MonthKey:     a.MonthKey,
		Entries:      docs,
		FinalBalance: a.FinalBalance.String(),
		ArchivedAt:   a.ArchivedAt,
	}
	opts := options.Replace().SetUpsert(true)
	_, err := s.archives.ReplaceOne(ctx, bson.M{"_id": a.MonthKey}, doc, opts)
	if err != nil {
		return fmt.Errorf("failed to save monthly archive: %w", err)
	}
	return nil
}

func (s *Store) GetArchive(ctx context.Context, monthKey string) (*models.MonthlyArchive, error) {
	var doc archiveDoc
	err := s.archives.FindOne(ctx, bson.M{"_id": monthKey}).Decode(&doc)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to retrieve archive: %w", err)
	}
	archive, err := fromArchiveDoc(doc)
	if err != nil {
		return nil, err
	}
	return archive, nil
}

func (s *Store) ListArchives(ctx context.Context) ([]models.MonthlyArchive, error) {
	opts := options.Find().SetSort(bson.D{{Key: "archivedAt", Value: -1}})
	cursor, err := s.archives.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch archives: %w", err)
	}
	defer cursor.Close(ctx)

	var archives []models.MonthlyArchive
	for cursor.Next(ctx) {
		var doc archiveDoc
		if err := cursor.Decode(&doc); err != nil {
			continue
		}
		archive, err := fromArchiveDoc(doc)
		if err != nil {
			log.Println("Skipping unreadable archive:", err)
			continue
		}
		archives = append(archives, *archive)
	}
	return archives, nil
}

func fromArchiveDoc(doc archiveDoc) (*models.MonthlyArchive, error) {
	balance, err := decimal.NewFromString(doc.FinalBalance)
	if err != nil {
		return nil, fmt.Errorf("bad final balance in archive %s: %w", doc.MonthKey, err)
	}
	entries := make([]models.Entry, 0, len(doc.Entries))
	for _, d := range doc.Entries {
		e, err := fromEntryDoc(d)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return &models.MonthlyArchive{
		MonthKey:     doc.MonthKey,
		Entries:      entries,
		FinalBalance: balance,
		ArchivedAt:   doc.ArchivedAt,
	}, nil
}

var _ storage.Store = (*Store)(nil)
