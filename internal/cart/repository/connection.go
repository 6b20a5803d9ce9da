package repository

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoConfig carries the connection knobs the service config owns; zero
// values fall back to the defaults below.
type MongoConfig struct {
	URI                    string
	Database               string
	ConnectTimeout         time.Duration
	ServerSelectionTimeout time.Duration
	MaxPoolSize            uint64
	MinPoolSize            uint64
}

func (c *MongoConfig) withDefaults() MongoConfig {
	cfg := *c
	if cfg.ConnectTimeout == 0 {
		cfg.ConnectTimeout = 10 * time.Second
	}
	if cfg.ServerSelectionTimeout == 0 {
		cfg.ServerSelectionTimeout = 5 * time.Second
	}
	if cfg.MaxPoolSize == 0 {
		cfg.MaxPoolSize = 100
	}
	if cfg.MinPoolSize == 0 {
		cfg.MinPoolSize = 10
	}
	return cfg
}

// ConnectMongoDB opens the cart database and verifies the server is
// reachable before any repository is built on it.
func ConnectMongoDB(ctx context.Context, cfg MongoConfig) (*mongo.Database, error) {
	resolved := cfg.withDefaults()

	clientOpts := options.Client().
		ApplyURI(resolved.URI).
		SetConnectTimeout(resolved.ConnectTimeout).
		SetServerSelectionTimeout(resolved.ServerSelectionTimeout).
		SetMaxPoolSize(resolved.MaxPoolSize).
		SetMinPoolSize(resolved.MinPoolSize)

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	return client.Database(resolved.Database), nil
}
