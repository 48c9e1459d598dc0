// Package repo implements the data persistence layer for domain entities.
// This file provides the MongoDB implementation of ContactStore, storing each
// contact as one document in the "contacts" collection.
package repo

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.mongodb.org/mongo-driver/x/mongo/driver/connstring"

	"github.com/tbourn/go-contacts-backend/internal/domain"
)

const (
	defaultMongoDatabase = "contact_db"
	mongoCollectionName  = "contacts"
)

// mongoCollection is the subset of *mongo.Collection used by MongoContacts.
// Defined here for testability.
type mongoCollection interface {
	InsertOne(ctx context.Context, document interface{}, opts ...*options.InsertOneOptions) (*mongo.InsertOneResult, error)
	Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) (*mongo.Cursor, error)
	FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) *mongo.SingleResult
	FindOneAndUpdate(ctx context.Context, filter interface{}, update interface{}, opts ...*options.FindOneAndUpdateOptions) *mongo.SingleResult
	DeleteOne(ctx context.Context, filter interface{}, opts ...*options.DeleteOptions) (*mongo.DeleteResult, error)
	CountDocuments(ctx context.Context, filter interface{}, opts ...*options.CountOptions) (int64, error)
}

// MongoContacts stores contacts in a MongoDB collection.
type MongoContacts struct {
	coll   mongoCollection
	client *mongo.Client
}

// NewMongoContacts wraps an existing collection. The caller owns the client.
func NewMongoContacts(coll mongoCollection) *MongoContacts {
	return &MongoContacts{coll: coll}
}

// OpenMongo connects to uri, pings the primary, ensures the createdAt index
// and returns the store. The database comes from the URI path and defaults to
// "contact_db".
func OpenMongo(ctx context.Context, uri string) (*MongoContacts, error) {
	cs, err := connstring.ParseAndValidate(uri)
	if err != nil {
		return nil, err
	}
	dbName := cs.Database
	if dbName == "" {
		dbName = defaultMongoDatabase
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}

	coll := client.Database(dbName).Collection(mongoCollectionName)
	_, err = coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "createdAt", Value: -1}},
		Options: options.Index().SetName("idx_contacts_created"),
	})
	if err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}

	return &MongoContacts{coll: coll, client: client}, nil
}

// Close disconnects the client when the store owns it.
func (r *MongoContacts) Close(ctx context.Context) error {
	if r.client == nil {
		return nil
	}
	return r.client.Disconnect(ctx)
}

// mongoNow returns the current time at the millisecond precision MongoDB keeps,
// so values returned from Insert compare equal to values read back.
func mongoNow() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}

// Insert validates required fields, assigns a UUID and timestamps, and stores
// the document.
func (r *MongoContacts) Insert(ctx context.Context, c *domain.Contact) (*domain.Contact, error) {
	if err := c.Fields().CheckRequired(); err != nil {
		return nil, err
	}
	now := mongoNow()
	doc := &domain.Contact{
		ID:        uuid.NewString(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	doc.Apply(c.Fields())
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// ListAll returns every document sorted by createdAt descending.
func (r *MongoContacts) ListAll(ctx context.Context) ([]domain.Contact, error) {
	opts := options.Find().SetSort(bson.D{
		{Key: "createdAt", Value: -1},
		{Key: "_id", Value: -1},
	})
	cur, err := r.coll.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Contact, 0)
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// FindByID fetches one document or ErrNotFound.
func (r *MongoContacts) FindByID(ctx context.Context, id string) (*domain.Contact, error) {
	var c domain.Contact
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&c); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

// UpdateByID replaces the mutable fields and returns the updated document,
// or ErrNotFound when no document has that id.
func (r *MongoContacts) UpdateByID(ctx context.Context, id string, f domain.ContactFields) (*domain.Contact, error) {
	if err := f.CheckRequired(); err != nil {
		return nil, err
	}
	update := bson.M{"$set": bson.M{
		"name":      f.Name,
		"email":     f.Email,
		"phone":     f.Phone,
		"message":   f.Message,
		"updatedAt": mongoNow(),
	}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var c domain.Contact
	if err := r.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&c); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

// DeleteByID removes the document. A missing id is not an error.
func (r *MongoContacts) DeleteByID(ctx context.Context, id string) error {
	_, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	return err
}

// Stats counts documents and reads the newest updatedAt.
func (r *MongoContacts) Stats(ctx context.Context) (int64, *time.Time, error) {
	count, err := r.coll.CountDocuments(ctx, bson.D{})
	if err != nil {
		return 0, nil, err
	}
	if count == 0 {
		return 0, nil, nil
	}
	opts := options.FindOne().
		SetSort(bson.D{{Key: "updatedAt", Value: -1}}).
		SetProjection(bson.D{{Key: "updatedAt", Value: 1}})
	var row struct {
		UpdatedAt time.Time `bson:"updatedAt"`
	}
	if err := r.coll.FindOne(ctx, bson.D{}, opts).Decode(&row); err != nil {
		return 0, nil, err
	}
	return count, &row.UpdatedAt, nil
}

// Ping checks the primary is reachable.
func (r *MongoContacts) Ping(ctx context.Context) error {
	if r.client == nil {
		return nil
	}
	return r.client.Ping(ctx, readpref.Primary())
}
