package redis_client

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/travigo/journeyplanner/pkg/util"
)

var Client *redis.Client

const defaultConnectionAddress = "localhost:6379"
const defaultConnectionPassword = ""
const defaultDatabase = 0

const connectTimeout = 10 * time.Second

func Connect() error {
	env := util.GetEnvironmentVariables()

	address := util.GetEnvironmentString(env, "TRAVIGO_REDIS_ADDRESS", defaultConnectionAddress)
	password := util.GetEnvironmentString(env, "TRAVIGO_REDIS_PASSWORD", defaultConnectionPassword)
	database, err := util.GetEnvironmentInt(env, "TRAVIGO_REDIS_DATABASE", defaultDatabase)
	if err != nil {
		return err
	}

	client := redis.NewClient(&redis.Options{
		Addr:     address,
		Password: password,
		DB:       database,
	})

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	retry := backoff.NewExponentialBackOff()
	retry.MaxElapsedTime = connectTimeout

	err = backoff.Retry(func() error {
		return client.Ping(ctx).Err()
	}, backoff.WithContext(retry, ctx))
	if err != nil {
		client.Close()
		return err
	}

	Client = client

	log.Info().Str("address", address).Int("database", database).Msg("Connected to Redis")

	return nil
}
