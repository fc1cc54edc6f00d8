// database/database.go
package database

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/amarodesenvolvedor/qualicontrol-flow-app-sub001/config"
)

var Client *mongo.Client

func Connect() error {
	mongoURI := os.Getenv("MONGODB_URI")
	if mongoURI == "" {
		mongoURI = config.MongoURI
		if mongoURI == "" {
			return fmt.Errorf("MONGODB_URI environment variable is required (or set config.MongoURI)")
		}
	}

	clientOptions := options.Client().
		ApplyURI(mongoURI).
		SetConnectTimeout(20 * time.Second).
		SetServerSelectionTimeout(15 * time.Second).
		SetSocketTimeout(20 * time.Second).
		SetMaxPoolSize(50)

	// Connectivity failures are retried up to 3 times with exponential
	// backoff (1s base, doubling) before surfacing to the caller.
	policy := backoff.WithMaxRetries(newConnectBackOff(), 3)

	connect := func() error {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		client, err := mongo.Connect(ctx, clientOptions)
		if err != nil {
			return fmt.Errorf("failed to create MongoDB client: %w", err)
		}

		ctxPing, cancelPing := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancelPing()

		if err = client.Ping(ctxPing, readpref.Primary()); err != nil {
			_ = client.Disconnect(context.Background())
			return fmt.Errorf("failed to ping MongoDB: %w", err)
		}

		Client = client
		return nil
	}

	err := backoff.RetryNotify(connect, policy, func(err error, next time.Duration) {
		log.Printf("MongoDB connect failed, retrying in %v: %v", next, err)
	})
	if err != nil {
		return err
	}

	log.Println("Successfully connected to MongoDB")
	return nil
}

func newConnectBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = time.Second
	b.Multiplier = 2
	b.RandomizationFactor = 0
	b.MaxInterval = 8 * time.Second
	b.MaxElapsedTime = 0
	return b
}

func Disconnect() {
	if Client == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := Client.Disconnect(ctx); err != nil {
		log.Printf("MongoDB disconnect warning: %v", err)
	}
}
