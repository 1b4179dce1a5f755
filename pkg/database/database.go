package database

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/vesselsim/vesselsim/pkg/util"
)

type MongoInstance struct {
	Client   *mongo.Client
	Database *mongo.Database
}

var MongoGlobalInstance *MongoInstance

const defaultMongoDatabase = "vesselsim"

// Connect establishes the MongoDB connection used for segment archival.
// The database is optional: when no connection string is configured and
// required is false the engine runs without persistence.
func Connect(required bool) error {
	env := util.GetEnvironmentVariables()

	connectionString := env["VESSELSIM_MONGODB_CONNECTION"]
	if connectionString == "" {
		if required {
			log.Fatal().Msg("MongoDB connection string not provided")
		}

		log.Info().Msg("MongoDB connection string not provided, skipping")
		return nil
	}

	dbName := defaultMongoDatabase
	if env["VESSELSIM_MONGODB_DATABASE"] != "" {
		dbName = env["VESSELSIM_MONGODB_DATABASE"]
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(connectionString))
	if err != nil {
		return err
	}

	if err := client.Ping(context.Background(), nil); err != nil {
		return err
	}

	MongoGlobalInstance = &MongoInstance{
		Client:   client,
		Database: client.Database(dbName),
	}

	createIndexes()

	return nil
}

// Connected reports whether a MongoDB instance is available.
func Connected() bool {
	return MongoGlobalInstance != nil
}

func GetCollection(collectionName string) *mongo.Collection {
	return MongoGlobalInstance.Database.Collection(collectionName)
}
