package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/dbarry-dev/stationtrack/internal/domain/models"
)

// Archive defines the interface for the sighting audit trail. Unlike the
// registry, the archive records every decode event, repeats included.
type Archive interface {
	RecordSighting(ctx context.Context, sighting models.Sighting) error
}

// MongoArchive implements the Archive interface for MongoDB.
type MongoArchive struct {
	client   *mongo.Client
	dbName   string
	collName string
}

// NewMongoArchive creates a new MongoDB-backed sighting archive.
func NewMongoArchive(ctx context.Context, uri string, dbName string) (*MongoArchive, error) {
	clientOptions := options.Client().ApplyURI(uri)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	// Ping the database to verify connection
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	return &MongoArchive{
		client:   client,
		dbName:   dbName,
		collName: "sightings",
	}, nil
}

// RecordSighting appends one decode event to the archive.
func (a *MongoArchive) RecordSighting(ctx context.Context, sighting models.Sighting) error {
	collection := a.client.Database(a.dbName).Collection(a.collName)
	_, err := collection.InsertOne(ctx, sighting)
	if err != nil {
		return fmt.Errorf("failed to insert sighting: %w", err)
	}
	return nil
}

// Close closes the MongoDB connection.
func (a *MongoArchive) Close(ctx context.Context) error {
	return a.client.Disconnect(ctx)
}
