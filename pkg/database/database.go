package database

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/rs/zerolog/log"
	"github.com/travigo/journeyplanner/pkg/util"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoInstance struct {
	Client   *mongo.Client
	Database *mongo.Database
}

var MongoGlobalInstance *MongoInstance

var Neo4jDriver neo4j.DriverWithContext
var Neo4jDatabase string

const defaultMongoConnectionString = "mongodb://localhost:27017/"
const defaultMongoDatabase = "travigo"

const defaultNeo4jURI = "neo4j://localhost"
const defaultNeo4jUsername = "neo4j"
const defaultNeo4jDatabase = "neo4j"

const connectTimeout = 30 * time.Second

func retryBackoff() backoff.BackOff {
	retry := backoff.NewExponentialBackOff()
	retry.MaxElapsedTime = connectTimeout

	return retry
}

func ConnectMongoDB() error {
	env := util.GetEnvironmentVariables()

	connectionString := util.GetEnvironmentString(env, "TRAVIGO_MONGODB_CONNECTION", defaultMongoConnectionString)
	dbName := util.GetEnvironmentString(env, "TRAVIGO_MONGODB_DATABASE", defaultMongoDatabase)

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(connectionString))
	if err != nil {
		return err
	}

	err = backoff.Retry(func() error {
		return client.Ping(ctx, nil)
	}, backoff.WithContext(retryBackoff(), ctx))
	if err != nil {
		return err
	}

	MongoGlobalInstance = &MongoInstance{
		Client:   client,
		Database: client.Database(dbName),
	}

	createIndexes()

	log.Info().Str("database", dbName).Msg("Connected to MongoDB")

	return nil
}

func GetCollection(collectionName string) *mongo.Collection {
	return MongoGlobalInstance.Database.Collection(collectionName)
}

func ConnectNeo4j() error {
	env := util.GetEnvironmentVariables()

	uri := util.GetEnvironmentString(env, "TRAVIGO_NEO4J_URI", defaultNeo4jURI)
	username := util.GetEnvironmentString(env, "TRAVIGO_NEO4J_USERNAME", defaultNeo4jUsername)
	Neo4jDatabase = util.GetEnvironmentString(env, "TRAVIGO_NEO4J_DATABASE", defaultNeo4jDatabase)

	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(username, env["TRAVIGO_NEO4J_PASSWORD"], ""))
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	err = backoff.Retry(func() error {
		return driver.VerifyConnectivity(ctx)
	}, backoff.WithContext(retryBackoff(), ctx))
	if err != nil {
		driver.Close(context.Background())
		return err
	}

	Neo4jDriver = driver

	log.Info().Str("uri", uri).Msg("Connected to Neo4j")

	return nil
}

func Disconnect(ctx context.Context) {
	if MongoGlobalInstance != nil {
		if err := MongoGlobalInstance.Client.Disconnect(ctx); err != nil {
			log.Error().Err(err).Msg("Disconnecting MongoDB")
		}
	}

	if Neo4jDriver != nil {
		if err := Neo4jDriver.Close(ctx); err != nil {
			log.Error().Err(err).Msg("Closing Neo4j driver")
		}
	}
}
