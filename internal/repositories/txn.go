package repositories

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"
)

// TxnRunner runs a function inside a single logical write boundary. The post
// create/delete operations mutate both the post collection and the owner's
// reference array; running both writes under one runner keeps the
// denormalization consistent when either write fails.
type TxnRunner interface {
	Run(ctx context.Context, fn func(ctx context.Context) error) error
}

// MongoTxnRunner implements TxnRunner with a MongoDB multi-document transaction.
// Requires a replica-set deployment, as Mongo transactions do.
type MongoTxnRunner struct {
	client *mongo.Client
}

// NewMongoTxnRunner creates a new MongoTxnRunner
func NewMongoTxnRunner(client *mongo.Client) *MongoTxnRunner {
	return &MongoTxnRunner{client: client}
}

// Run executes fn inside a transaction, committing on success and aborting on error
func (r *MongoTxnRunner) Run(ctx context.Context, fn func(ctx context.Context) error) error {
	session, err := r.client.StartSession()
	if err != nil {
		return err
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	return err
}
