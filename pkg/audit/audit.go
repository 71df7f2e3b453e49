// Package audit records checkout and coupon operations to MongoDB. Writes
// happen off the request path; a failed audit write is logged and never
// fails the operation it describes.
package audit

import (
	"context"
	"time"

	"github.com/cellex-webapp/cellex-storefront/pkg/config"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

type Entry struct {
	ID        string    `bson:"_id,omitempty"`
	SessionID string    `bson:"session_id"`
	Action    string    `bson:"action"`
	OrderID   string    `bson:"order_id"`
	Data      bson.M    `bson:"data"`
	CreatedAt time.Time `bson:"created_at"`
}

type Recorder struct {
	client   *mongo.Client
	database *mongo.Database
	config   *config.MongoDBConfig
	logger   *zap.Logger
}

func NewRecorder(cfg *config.MongoDBConfig, logger *zap.Logger) (*Recorder, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, err
	}

	return &Recorder{
		client:   client,
		database: client.Database(cfg.Database),
		config:   cfg,
		logger:   logger,
	}, nil
}

func (r *Recorder) Ping(ctx context.Context) error {
	return r.client.Ping(ctx, nil)
}

// Record inserts an entry synchronously. Most callers go through RecordAsync.
func (r *Recorder) Record(ctx context.Context, entry *Entry) error {
	collection := r.database.Collection(r.config.Collection)
	entry.CreatedAt = time.Now()
	_, err := collection.InsertOne(ctx, entry)
	return err
}

// RecordAsync fires the write on its own goroutine with a fresh context so
// it survives the request finishing. Nil recorders are safe to call.
func (r *Recorder) RecordAsync(entry *Entry) {
	if r == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := r.Record(ctx, entry); err != nil {
			r.logger.Warn("audit write failed",
				zap.String("action", entry.Action),
				zap.String("order_id", entry.OrderID),
				zap.Error(err))
		}
	}()
}

// Recent returns the latest entries for an order, newest first.
func (r *Recorder) Recent(ctx context.Context, orderID string, limit int64) ([]*Entry, error) {
	collection := r.database.Collection(r.config.Collection)

	filter := bson.M{"order_id": orderID}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}).SetLimit(limit)

	cursor, err := collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var entries []*Entry
	if err = cursor.All(ctx, &entries); err != nil {
		return nil, err
	}

	return entries, nil
}

func (r *Recorder) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}
