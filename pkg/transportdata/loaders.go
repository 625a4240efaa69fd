package transportdata

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/travigo/journeyplanner/pkg/database"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"gopkg.in/yaml.v3"
)

func LoadFromYAMLFile(path string) (*Memory, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	return LoadFromYAML(data)
}

func LoadFromYAML(data []byte) (*Memory, error) {
	var network NetworkDocument
	if err := yaml.Unmarshal(data, &network); err != nil {
		return nil, fmt.Errorf("parsing network: %w", err)
	}

	repository, err := network.ToRepository()
	if err != nil {
		return nil, err
	}

	log.Info().
		Int("stations", len(network.Stations)).
		Int("routes", len(network.Routes)).
		Int("trips", len(repository.trips)).
		Msg("Loaded network")

	return repository, nil
}

func LoadFromMongo(ctx context.Context, db *mongo.Database) (*Memory, error) {
	var network NetworkDocument

	if err := findAll(ctx, db.Collection(database.StationsCollection), &network.Stations); err != nil {
		return nil, err
	}
	if err := findAll(ctx, db.Collection(database.RoutesCollection), &network.Routes); err != nil {
		return nil, err
	}
	if err := findAll(ctx, db.Collection(database.ServicesCollection), &network.Services); err != nil {
		return nil, err
	}
	if err := findAll(ctx, db.Collection(database.TripsCollection), &network.Trips); err != nil {
		return nil, err
	}

	repository, err := network.ToRepository()
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("database", db.Name()).
		Int("stations", len(network.Stations)).
		Int("trips", len(repository.trips)).
		Msg("Loaded network from MongoDB")

	return repository, nil
}

func findAll[T any](ctx context.Context, collection *mongo.Collection, out *[]T) error {
	cursor, err := collection.Find(ctx, bson.M{})
	if err != nil {
		return fmt.Errorf("reading %s: %w", collection.Name(), err)
	}

	if err := cursor.All(ctx, out); err != nil {
		return fmt.Errorf("decoding %s: %w", collection.Name(), err)
	}

	return nil
}
