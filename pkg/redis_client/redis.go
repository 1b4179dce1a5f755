package redis_client

import (
	"context"
	"strconv"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/vesselsim/vesselsim/pkg/util"
)

var Client *redis.Client

const defaultConnectionAddress = "localhost:6379"
const defaultConnectionPassword = ""
const defaultDatabase = 0

// Connect sets up the shared Redis client. When no address is configured and
// the client is not required, Redis-backed caching and snapshot publishing
// are skipped.
func Connect(required bool) error {
	address := defaultConnectionAddress
	password := defaultConnectionPassword
	database := defaultDatabase

	env := util.GetEnvironmentVariables()

	if env["VESSELSIM_REDIS_ADDRESS"] == "" && !required {
		log.Info().Msg("Skipping Redis setup")
		return nil
	}

	if env["VESSELSIM_REDIS_ADDRESS"] != "" {
		address = env["VESSELSIM_REDIS_ADDRESS"]
	}

	if env["VESSELSIM_REDIS_PASSWORD"] != "" {
		password = env["VESSELSIM_REDIS_PASSWORD"]
	}

	if env["VESSELSIM_REDIS_DATABASE"] != "" {
		if n, err := strconv.Atoi(env["VESSELSIM_REDIS_DATABASE"]); err == nil {
			database = n
		} else {
			return err
		}
	}

	Client = redis.NewClient(&redis.Options{
		Addr:     address,
		Password: password,
		DB:       database,
	})

	statusCmd := Client.Ping(context.Background())
	if err := statusCmd.Err(); err != nil {
		return err
	}

	log.Info().Str("address", address).Msg("Redis client setup")

	return nil
}
