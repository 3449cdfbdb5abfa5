package export

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/re3facet/pkg/registry"
)

// Default MongoDB locations.
const (
	DefaultMongoDatabase   = "re3facet"
	DefaultMongoCollection = "repositories"
)

// RepositoryDocument is the MongoDB representation of a record.
type RepositoryDocument struct {
	ID                string    `bson:"_id"                json:"id"`
	Name              string    `bson:"name"               json:"name"`
	Types             []string  `bson:"types"              json:"types"`
	Identifiers       []string  `bson:"identifiers"        json:"identifiers"`
	URL               string    `bson:"url,omitempty"      json:"url,omitempty"`
	Subjects          []string  `bson:"subjects"           json:"subjects"`
	Keywords          []string  `bson:"keywords"           json:"keywords"`
	MetadataStandards []string  `bson:"metadata_standards" json:"metadata_standards"`
	RunID             string    `bson:"run_id"             json:"run_id"`
	ExportedAt        time.Time `bson:"exported_at"        json:"exported_at"`
}

// NewRepositoryDocument converts r for a run.
func NewRepositoryDocument(r registry.Record, runID uuid.UUID, at time.Time) RepositoryDocument {
	return RepositoryDocument{
		ID:                r.ID,
		Name:              r.Name,
		Types:             r.Types,
		Identifiers:       r.Identifiers,
		URL:               r.URL,
		Subjects:          r.Subjects,
		Keywords:          r.Keywords,
		MetadataStandards: r.MetadataStandards,
		RunID:             runID.String(),
		ExportedAt:        at.UTC(),
	}
}

// MongoSink upserts records into a MongoDB collection.
type MongoSink struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// NewMongoSink connects to uri and verifies the connection.
// Empty database or collection names select the defaults.
func NewMongoSink(ctx context.Context, uri, database, collection string) (*MongoSink, error) {
	if database == "" {
		database = DefaultMongoDatabase
	}
	if collection == "" {
		collection = DefaultMongoCollection
	}
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	return &MongoSink{client: client, coll: client.Database(database).Collection(collection)}, nil
}

// Write upserts one document per record, keyed by re3data identifier, and
// returns the number of inserted plus modified documents.
func (s *MongoSink) Write(ctx context.Context, runID uuid.UUID, table registry.Table) (int64, error) {
	if table.Len() == 0 {
		return 0, nil
	}
	now := time.Now()
	models := make([]mongo.WriteModel, 0, table.Len())
	for _, r := range table.Records {
		doc := NewRepositoryDocument(r, runID, now)
		models = append(models, mongo.NewReplaceOneModel().
			SetFilter(bson.M{"_id": doc.ID}).
			SetReplacement(doc).
			SetUpsert(true))
	}
	res, err := s.coll.BulkWrite(ctx, models, options.BulkWrite().SetOrdered(false))
	if err != nil {
		return 0, fmt.Errorf("bulk write: %w", err)
	}
	return res.UpsertedCount + res.ModifiedCount, nil
}

// Collection returns the target collection.
func (s *MongoSink) Collection() *mongo.Collection { return s.coll }

// Close disconnects the client.
func (s *MongoSink) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}
