// internal/infra/mongodb/client.go
package mongodb

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const connectTimeout = 10 * time.Second

// Client wraps *mongo.Client bound to a single database.
type Client struct {
	mongoClient *mongo.Client
	database    string
	logger      *logrus.Entry
}

// NewClient connects to MongoDB and pings the primary before returning.
func NewClient(ctx context.Context, connStr, databaseName string, logger *logrus.Entry) (*Client, error) {
	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(connStr))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err = client.Ping(ctx, readpref.Primary()); err != nil {
		if disconnectErr := client.Disconnect(context.Background()); disconnectErr != nil {
			logger.WithError(disconnectErr).Warn("Failed to disconnect MongoDB client after ping failure")
		}
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	logger.WithField("database", databaseName).Info("Connected to MongoDB")
	return &Client{mongoClient: client, database: databaseName, logger: logger}, nil
}

// Collection returns a handle for the named collection.
func (mc *Client) Collection(collectionName string) *mongo.Collection {
	return mc.mongoClient.Database(mc.database).Collection(collectionName)
}

func (mc *Client) Disconnect(ctx context.Context) error {
	mc.logger.Info("Disconnecting from MongoDB")
	return mc.mongoClient.Disconnect(ctx)
}
