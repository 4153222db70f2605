package notestore

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"

	"github.com/starford/noted/internal/apperr"
	"github.com/starford/noted/internal/models"
)

// MongoOptions configures the MongoDB backend.
type MongoOptions struct {
	URI            string
	Database       string
	Collection     string
	ConnectTimeout time.Duration
}

type noteDocument struct {
	ID      bson.ObjectID `bson:"_id"`
	Title   string        `bson:"title"`
	Content string        `bson:"content"`
}

// Mongo stores notes as documents in a MongoDB collection.
type Mongo struct {
	client *mongo.Client
	coll   *mongo.Collection
}

var _ Store = (*Mongo)(nil)

// OpenMongo connects to MongoDB and verifies the connection with a ping.
func OpenMongo(ctx context.Context, opts MongoOptions) (*Mongo, error) {
	clientOpts := options.Client().ApplyURI(opts.URI)
	if opts.ConnectTimeout > 0 {
		clientOpts.SetConnectTimeout(opts.ConnectTimeout).
			SetServerSelectionTimeout(opts.ConnectTimeout)
	}

	client, err := mongo.Connect(clientOpts)
	if err != nil {
		return nil, fmt.Errorf("notestore: mongo connect: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.WithoutCancel(ctx))
		return nil, fmt.Errorf("notestore: mongo ping: %w", err)
	}

	return &Mongo{
		client: client,
		coll:   client.Database(opts.Database).Collection(opts.Collection),
	}, nil
}

// Insert inserts {title, content} and lets the server assign _id.
func (m *Mongo) Insert(ctx context.Context, title, content string) (string, error) {
	res, err := m.coll.InsertOne(ctx, bson.D{
		{Key: "title", Value: title},
		{Key: "content", Value: content},
	})
	if err != nil {
		return "", fmt.Errorf("notestore: insert: %w", err)
	}
	oid, ok := res.InsertedID.(bson.ObjectID)
	if !ok {
		return "", fmt.Errorf("notestore: insert: unexpected id type %T", res.InsertedID)
	}
	return oid.Hex(), nil
}

// List returns all documents of the collection without a filter.
func (m *Mongo) List(ctx context.Context) ([]models.Note, error) {
	cur, err := m.coll.Find(ctx, bson.D{})
	if err != nil {
		return nil, fmt.Errorf("notestore: find: %w", err)
	}
	var docs []noteDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("notestore: decode: %w", err)
	}

	notes := make([]models.Note, len(docs))
	for i, d := range docs {
		notes[i] = models.Note{ID: d.ID.Hex(), Title: d.Title, Content: d.Content}
	}
	return notes, nil
}

// Delete removes one document by _id.
func (m *Mongo) Delete(ctx context.Context, id string) error {
	oid, err := ParseID(id)
	if err != nil {
		return err
	}
	res, err := m.coll.DeleteOne(ctx, bson.D{{Key: "_id", Value: oid}})
	if err != nil {
		return fmt.Errorf("notestore: delete: %w", err)
	}
	if res.DeletedCount != 1 {
		return apperr.ErrNotFound
	}
	return nil
}

// Update applies $set on title and content. MongoDB reports a zero modified
// count for identical values, which surfaces as apperr.ErrNotFound.
func (m *Mongo) Update(ctx context.Context, id, title, content string) error {
	oid, err := ParseID(id)
	if err != nil {
		return err
	}
	res, err := m.coll.UpdateOne(ctx,
		bson.D{{Key: "_id", Value: oid}},
		bson.D{{Key: "$set", Value: bson.D{
			{Key: "title", Value: title},
			{Key: "content", Value: content},
		}}},
	)
	if err != nil {
		return fmt.Errorf("notestore: update: %w", err)
	}
	if res.ModifiedCount != 1 {
		return apperr.ErrNotFound
	}
	return nil
}

// Ping checks the primary is reachable.
func (m *Mongo) Ping(ctx context.Context) error {
	return m.client.Ping(ctx, readpref.Primary())
}

// Close disconnects the client.
func (m *Mongo) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}
