package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/starford/inkwell/internal/apperr"
	"github.com/starford/inkwell/internal/models"
)

// MongoOptions configures OpenMongo.
type MongoOptions struct {
	URI        string
	Database   string
	Collection string
	Timeout    time.Duration
}

// Mongo implements Store on a MongoDB collection. Ids are ObjectID hex strings.
type Mongo struct {
	client *mongo.Client
	coll   *mongo.Collection
	now    func() time.Time
}

var _ Store = (*Mongo)(nil)

type postDoc struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Title     string             `bson:"title"`
	Date      string             `bson:"date"`
	Content   string             `bson:"content"`
	CreatedAt time.Time          `bson:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt"`
}

func (d postDoc) record() *models.Record {
	return &models.Record{
		Post: models.Post{
			ID:      d.ID.Hex(),
			Title:   d.Title,
			Date:    d.Date,
			Content: d.Content,
		},
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

// OpenMongo connects to the server at opts.URI and verifies it answers a ping.
func OpenMongo(ctx context.Context, opts MongoOptions) (*Mongo, error) {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 8 * time.Second
	}
	clientOpts := options.Client().
		ApplyURI(opts.URI).
		SetConnectTimeout(timeout).
		SetServerSelectionTimeout(timeout).
		SetMinPoolSize(1).
		SetMaxPoolSize(5)

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("store: mongo connect: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("store: mongo ping: %w", err)
	}

	m := NewMongo(client.Database(opts.Database).Collection(opts.Collection))
	m.client = client
	return m, nil
}

// NewMongo wraps an existing collection. The caller keeps ownership of its client.
func NewMongo(coll *mongo.Collection) *Mongo {
	return &Mongo{coll: coll, now: func() time.Time { return time.Now().UTC() }}
}

func objectID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, apperr.ErrInvalidID
	}
	return oid, nil
}

// List returns all posts, newest date first.
func (m *Mongo) List(ctx context.Context) ([]models.Record, error) {
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: -1}, {Key: "createdAt", Value: -1}})
	cur, err := m.coll.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("store: list: %w", err)
	}
	defer cur.Close(ctx)

	var docs []postDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("store: list decode: %w", err)
	}
	out := make([]models.Record, 0, len(docs))
	for _, d := range docs {
		out = append(out, *d.record())
	}
	return out, nil
}

// Get returns a single post.
func (m *Mongo) Get(ctx context.Context, id string) (*models.Record, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	var doc postDoc
	err = m.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: get %s: %w", id, err)
	}
	return doc.record(), nil
}

// Create inserts a new document.
func (m *Mongo) Create(ctx context.Context, f models.Fields) (*models.Record, error) {
	now := m.now()
	doc := postDoc{
		ID:        primitive.NewObjectID(),
		Title:     f.Title,
		Date:      f.Date,
		Content:   f.Content,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := m.coll.InsertOne(ctx, doc); err != nil {
		return nil, fmt.Errorf("store: create: %w", err)
	}
	return doc.record(), nil
}

// Update sets the non-nil fields of patch and returns the updated document.
func (m *Mongo) Update(ctx context.Context, id string, patch models.Patch) (*models.Record, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	set := bson.D{}
	if patch.Title != nil {
		set = append(set, bson.E{Key: "title", Value: *patch.Title})
	}
	if patch.Date != nil {
		set = append(set, bson.E{Key: "date", Value: *patch.Date})
	}
	if patch.Content != nil {
		set = append(set, bson.E{Key: "content", Value: *patch.Content})
	}
	set = append(set, bson.E{Key: "updatedAt", Value: m.now()})

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var doc postDoc
	err = m.coll.FindOneAndUpdate(ctx, bson.M{"_id": oid}, bson.D{{Key: "$set", Value: set}}, opts).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: update %s: %w", id, err)
	}
	return doc.record(), nil
}

// Delete removes a document.
func (m *Mongo) Delete(ctx context.Context, id string) error {
	oid, err := objectID(id)
	if err != nil {
		return err
	}
	res, err := m.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("store: delete %s: %w", id, err)
	}
	if res.DeletedCount == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

// Count returns the number of documents in the collection.
func (m *Mongo) Count(ctx context.Context) (int64, error) {
	n, err := m.coll.CountDocuments(ctx, bson.D{})
	if err != nil {
		return 0, fmt.Errorf("store: count: %w", err)
	}
	return n, nil
}

// Ping checks the server connection.
func (m *Mongo) Ping(ctx context.Context) error {
	return m.coll.Database().Client().Ping(ctx, readpref.Primary())
}

// Close disconnects the client when this store opened it.
func (m *Mongo) Close() error {
	if m.client == nil {
		return nil
	}
	return m.client.Disconnect(context.Background())
}
