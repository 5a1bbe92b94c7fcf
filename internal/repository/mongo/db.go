package mongo

import (
	"alcyxob/routine-progress/internal/repository"
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readconcern"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.mongodb.org/mongo-driver/mongo/writeconcern"
)

// Default connection timeout
const defaultTimeout = 10 * time.Second

const (
	lockCollectionName = "tx_locks"
	// MongoDB server code for a write conflict inside a transaction.
	writeConflictCode = 112
)

// ConnectDB establishes a connection to MongoDB using the provided URI.
// Transactions need a replica set (a single-node one is fine for development).
func ConnectDB(uri string) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}

	// Ping the primary node to verify the connection.
	pingCtx, pingCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer pingCancel()

	if err = client.Ping(pingCtx, readpref.Primary()); err != nil {
		disconnectCtx, disconnectCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer disconnectCancel()
		_ = client.Disconnect(disconnectCtx)
		return nil, err
	}

	return client, nil
}

// DisconnectDB gracefully disconnects the MongoDB client.
func DisconnectDB(client *mongo.Client) error {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()
	return client.Disconnect(ctx)
}

// mongoTransactor implements repository.Transactor with client sessions.
type mongoTransactor struct {
	client *mongo.Client
	locks  *mongo.Collection
}

// NewMongoTransactor creates a transactor bound to db.
func NewMongoTransactor(client *mongo.Client, db *mongo.Database) repository.Transactor {
	return &mongoTransactor{
		client: client,
		locks:  db.Collection(lockCollectionName),
	}
}

// WithinTx runs fn inside a multi-document transaction. The first write of
// every transaction bumps the lock document for lockKey, so two transactions
// with the same key always write-conflict and the driver retries the loser
// against fresh data.
func (t *mongoTransactor) WithinTx(ctx context.Context, lockKey string, fn func(ctx context.Context) error) error {
	session, err := t.client.StartSession()
	if err != nil {
		return err
	}
	defer session.EndSession(ctx)

	txnOpts := options.Transaction().
		SetReadConcern(readconcern.Snapshot()).
		SetWriteConcern(writeconcern.Majority())

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		lockUpdate := bson.M{
			"$inc": bson.M{"seq": 1},
			"$set": bson.M{"lockedAt": time.Now().UTC()},
		}
		if _, err := t.locks.UpdateOne(sc, bson.M{"_id": lockKey}, lockUpdate, options.Update().SetUpsert(true)); err != nil {
			return nil, err
		}
		return nil, fn(sc)
	}, txnOpts)

	if err != nil && isWriteConflict(err) {
		return fmt.Errorf("%w: %v", repository.ErrConflict, err)
	}
	return err
}

// isWriteConflict reports errors that WithTransaction gave up retrying.
func isWriteConflict(err error) bool {
	var se mongo.ServerError
	if !errors.As(err, &se) {
		return false
	}
	return se.HasErrorLabel("TransientTransactionError") || se.HasErrorCode(writeConflictCode)
}
