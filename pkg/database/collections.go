package database

import (
	"context"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	StationsCollection = "stations"
	RoutesCollection   = "routes"
	ServicesCollection = "services"
	TripsCollection    = "trips"
)

func createIndexes() {
	createIdentifierIndex(StationsCollection)
	createIdentifierIndex(RoutesCollection)
	createIdentifierIndex(ServicesCollection)
	createTripsIndexes()
}

func createIdentifierIndex(collectionName string) {
	collection := GetCollection(collectionName)
	index := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "primaryidentifier", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}

	opts := options.CreateIndexes()
	_, err := collection.Indexes().CreateMany(context.Background(), index, opts)
	if err != nil {
		log.Error().Err(err).Str("collection", collectionName).Msg("Creating Index")
	}
}

func createTripsIndexes() {
	tripsCollection := GetCollection(TripsCollection)
	tripsIndex := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "primaryidentifier", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "serviceref", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "calls.station", Value: 1}},
		},
	}

	opts := options.CreateIndexes()
	_, err := tripsCollection.Indexes().CreateMany(context.Background(), tripsIndex, opts)
	if err != nil {
		log.Error().Err(err).Msg("Creating Index")
	}
}
