package mongo

import (
	"context"
	"errors"
	"time"

	"github.com/abhishek622/movieticket/metadata/internal/repository"
	"github.com/abhishek622/movieticket/metadata/pkg/model"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.opentelemetry.io/otel"
)

const tracerID = "metadata-repository-mongo"

type cachedMovie struct {
	ID       string      `bson:"_id"`
	Movie    model.Movie `bson:"movie"`
	CachedAt time.Time   `bson:"cachedAt"`
}

// Repository defines a MongoDB-backed movie metadata cache.
type Repository struct {
	client     *mongo.Client
	collection *mongo.Collection
}

// New connects to MongoDB and returns a repository using the given
// database's "movies" collection.
func New(ctx context.Context, uri, database string) (*Repository, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, err
	}
	return &Repository{
		client:     client,
		collection: client.Database(database).Collection("movies"),
	}, nil
}

// Get retrieves movie metadata by movie id.
func (r *Repository) Get(ctx context.Context, id string) (*model.Movie, error) {
	ctx, span := otel.Tracer(tracerID).Start(ctx, "Repository/Get")
	defer span.End()

	var doc cachedMovie
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, repository.ErrNotFound
	} else if err != nil {
		return nil, err
	}
	return &doc.Movie, nil
}

// Put stores movie metadata for a given movie id, replacing any previous entry.
func (r *Repository) Put(ctx context.Context, id string, movie *model.Movie) error {
	ctx, span := otel.Tracer(tracerID).Start(ctx, "Repository/Put")
	defer span.End()

	doc := cachedMovie{ID: id, Movie: *movie, CachedAt: time.Now().UTC()}
	_, err := r.collection.ReplaceOne(ctx, bson.M{"_id": id}, doc, options.Replace().SetUpsert(true))
	return err
}

// Close disconnects the client.
func (r *Repository) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}
