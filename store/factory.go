package store

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/mongo"
)

// New creates a Store based on the backend name.
//
// Supported backends:
//
//	"mongo"  - MongoDB through client, using database dbName (default)
//	"memory" - In-memory (ephemeral, for testing)
func New(ctx context.Context, backend string, client *mongo.Client, dbName string) (Store, error) {
	switch backend {
	case "mongo", "":
		if client == nil {
			return nil, fmt.Errorf("mongo backend requires a connected client")
		}
		return NewMongoStore(ctx, client.Database(dbName))
	case "memory":
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown store backend: %q (supported: mongo, memory)", backend)
	}
}
