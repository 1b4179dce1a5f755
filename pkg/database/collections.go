package database

import (
	"context"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func createIndexes() {
	// Journey Segments
	segmentsCollection := GetCollection("journey_segments")
	_, err := segmentsCollection.Indexes().CreateMany(context.Background(), []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "primaryidentifier", Value: 1}},
		},
		{
			Keys: bson.D{
				{Key: "lakeid", Value: 1},
				{Key: "departuretime", Value: 1},
			},
		},
		{
			Keys:    bson.D{{Key: "modificationdatetime", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(48 * 3600), // Expire after 48 hours
		},
	}, options.CreateIndexes())
	if err != nil {
		log.Error().Err(err).Msg("Creating Index")
	}
}
