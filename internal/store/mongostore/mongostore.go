// Package mongostore implements store.Store on MongoDB. A unique compound
// index on (origin_id, destination_id) makes InsertFare atomic per pair.
package mongostore

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.mongodb.org/mongo-driver/mongo/writeconcern"

	"github.com/rail-console/fares/internal/models"
	"github.com/rail-console/fares/internal/store"
)

const (
	stationsCollection = "stations"
	faresCollection    = "fares"
)

// Store holds the client and the two collections
type Store struct {
	client   *mongo.Client
	stations *mongo.Collection
	fares    *mongo.Collection
}

var _ store.Store = (*Store)(nil)

// Open connects to MongoDB and creates the indexes the store relies on
func Open(ctx context.Context, uri, dbName string) (*Store, error) {
	clientOptions := options.Client().ApplyURI(uri).
		SetConnectTimeout(10 * time.Second).
		SetServerSelectionTimeout(10 * time.Second).
		SetRetryWrites(true).
		SetRetryReads(true).
		SetWriteConcern(writeconcern.Majority()).
		SetReadPreference(readpref.Primary())

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	// Test connection
	if err := client.Ping(ctx, nil); err != nil {
		client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	db := client.Database(dbName)
	s := &Store{
		client:   client,
		stations: db.Collection(stationsCollection),
		fares:    db.Collection(faresCollection),
	}
	if err := s.createIndexes(ctx); err != nil {
		client.Disconnect(ctx)
		return nil, err
	}

	log.Printf("Connected to MongoDB database: %s", dbName)
	return s, nil
}

func (s *Store) createIndexes(ctx context.Context) error {
	// One fare per ordered pair
	_, err := s.fares.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "origin_id", Value: 1},
			{Key: "destination_id", Value: 1},
		},
		Options: options.Index().SetUnique(true).SetName("fare_route_idx"),
	})
	if err != nil {
		return fmt.Errorf("failed to create fare indexes: %w", err)
	}

	_, err = s.stations.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "name", Value: 1}},
		Options: options.Index().SetName("station_name_idx"),
	})
	if err != nil {
		return fmt.Errorf("failed to create station indexes: %w", err)
	}
	return nil
}

// Close disconnects the client
func (s *Store) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

func (s *Store) ListStations(ctx context.Context) ([]models.Station, error) {
	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}, {Key: "_id", Value: 1}})
	cursor, err := s.stations.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query stations: %w", err)
	}
	defer cursor.Close(ctx)

	stations := []models.Station{}
	if err := cursor.All(ctx, &stations); err != nil {
		return nil, fmt.Errorf("failed to decode stations: %w", err)
	}
	return stations, nil
}

func (s *Store) InsertStation(ctx context.Context, station models.Station) error {
	now := time.Now().UTC()
	if station.CreatedAt.IsZero() {
		station.CreatedAt = now
	}
	if station.UpdatedAt.IsZero() {
		station.UpdatedAt = now
	}

	// _id is unique, so a taken id fails with a duplicate key error
	if _, err := s.stations.InsertOne(ctx, station); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return store.ErrConflict
		}
		return fmt.Errorf("failed to insert station %s: %w", station.ID, err)
	}
	return nil
}

func (s *Store) UpsertStation(ctx context.Context, station models.Station) error {
	now := time.Now().UTC()
	if station.CreatedAt.IsZero() {
		station.CreatedAt = now
	}
	if station.UpdatedAt.IsZero() {
		station.UpdatedAt = now
	}

	update := bson.M{
		"$set": bson.M{
			"name":       station.Name,
			"active":     station.Active,
			"updated_at": station.UpdatedAt,
		},
		"$setOnInsert": bson.M{"created_at": station.CreatedAt},
	}
	_, err := s.stations.UpdateOne(ctx, bson.M{"_id": station.ID}, update, options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to upsert station %s: %w", station.ID, err)
	}
	return nil
}

func (s *Store) FareExists(ctx context.Context, originID, destinationID string) (bool, error) {
	n, err := s.fares.CountDocuments(ctx,
		bson.M{"origin_id": originID, "destination_id": destinationID},
		options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("failed to check fare %s->%s: %w", originID, destinationID, err)
	}
	return n > 0, nil
}

func (s *Store) InsertFare(ctx context.Context, fare models.FareRecord) (string, error) {
	if fare.ID == "" {
		fare.ID = uuid.New().String()
	}
	if fare.CreatedAt.IsZero() {
		fare.CreatedAt = time.Now().UTC()
	}
	if fare.UpdatedAt.IsZero() {
		fare.UpdatedAt = fare.CreatedAt
	}

	if _, err := s.fares.InsertOne(ctx, fare); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return "", store.ErrConflict
		}
		return "", fmt.Errorf("failed to insert fare %s: %w", fare.Key(), err)
	}
	return fare.ID, nil
}

func (s *Store) ListFares(ctx context.Context) ([]models.FareRecord, error) {
	opts := options.Find().SetSort(bson.D{{Key: "origin_id", Value: 1}, {Key: "destination_id", Value: 1}})
	cursor, err := s.fares.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query fares: %w", err)
	}
	defer cursor.Close(ctx)

	fares := []models.FareRecord{}
	if err := cursor.All(ctx, &fares); err != nil {
		return nil, fmt.Errorf("failed to decode fares: %w", err)
	}
	return fares, nil
}

func (s *Store) GetFare(ctx context.Context, id string) (*models.FareRecord, error) {
	var fare models.FareRecord
	err := s.fares.FindOne(ctx, bson.M{"_id": id}).Decode(&fare)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get fare %s: %w", id, err)
	}
	return &fare, nil
}

func (s *Store) UpdateFare(ctx context.Context, fare models.FareRecord) error {
	if fare.UpdatedAt.IsZero() {
		fare.UpdatedAt = time.Now().UTC()
	}

	update := bson.M{"$set": bson.M{
		"origin_id":        fare.OriginID,
		"origin_name":      fare.OriginName,
		"destination_id":   fare.DestinationID,
		"destination_name": fare.DestinationName,
		"prices":           fare.Prices,
		"currency":         fare.Currency,
		"updated_at":       fare.UpdatedAt,
	}}
	res, err := s.fares.UpdateOne(ctx, bson.M{"_id": fare.ID}, update)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return store.ErrConflict
		}
		return fmt.Errorf("failed to update fare %s: %w", fare.ID, err)
	}
	if res.MatchedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) DeleteFare(ctx context.Context, id string) error {
	res, err := s.fares.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete fare %s: %w", id, err)
	}
	if res.DeletedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}
