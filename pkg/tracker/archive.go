package tracker

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/vesselsim/vesselsim/pkg/database"
	"github.com/vesselsim/vesselsim/pkg/vdm"
)

type segmentRecord struct {
	PrimaryIdentifier    string             `bson:"primaryidentifier"`
	ModificationDateTime time.Time          `bson:"modificationdatetime"`
	Segment              vdm.JourneySegment `bson:"segment"`
}

// archiveSegments upserts the reload's segments keyed by their primary
// identifier, so repeated reloads of the same day update in place.
func archiveSegments(lakeID string, built []vdm.JourneySegment) {
	if !database.Connected() {
		return
	}

	now := time.Now()

	var updateOperations []mongo.WriteModel
	for _, segment := range built {
		record := segmentRecord{
			PrimaryIdentifier:    segment.PrimaryIdentifier(),
			ModificationDateTime: now,
			Segment:              segment,
		}

		bsonRep, err := bson.Marshal(bson.M{"$set": record})
		if err != nil {
			continue
		}

		updateModel := mongo.NewUpdateOneModel()
		updateModel.SetFilter(bson.M{"primaryidentifier": record.PrimaryIdentifier})
		updateModel.SetUpdate(bsonRep)
		updateModel.SetUpsert(true)

		updateOperations = append(updateOperations, updateModel)
	}

	if len(updateOperations) == 0 {
		return
	}

	segmentsCollection := database.GetCollection("journey_segments")
	_, err := segmentsCollection.BulkWrite(context.Background(), updateOperations, &options.BulkWriteOptions{})
	if err != nil {
		log.Error().Err(err).Str("lake", lakeID).Msg("Failed to bulk write journey segments")
		return
	}

	log.Debug().Str("lake", lakeID).Int("segments", len(updateOperations)).Msg("Archived journey segments")
}
