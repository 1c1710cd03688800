// Package wardrobe loads the wardrobe items of an event from MongoDB.
package wardrobe

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/valpere/DressCodex/internal/monitoring"
	"github.com/valpere/DressCodex/internal/utils"
	"github.com/valpere/DressCodex/pkg/types"
)

// Store reads and records wardrobe items.
type Store interface {
	// ItemsByEvent returns the event's items in insertion order.
	ItemsByEvent(ctx context.Context, eventID string) ([]types.WardrobeItem, error)
	// Item returns one item by ID.
	Item(ctx context.Context, id string) (*types.WardrobeItem, error)
	// Insert stores item and returns its new ID.
	Insert(ctx context.Context, item types.WardrobeItem) (string, error)
	// Ping checks the connection.
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

// MongoOptions configures the MongoDB connection.
type MongoOptions struct {
	URI             string        `yaml:"uri" json:"uri"`
	Database        string        `yaml:"database" json:"database"`
	Collection      string        `yaml:"collection" json:"collection"`
	Timeout         time.Duration `yaml:"timeout,omitempty" json:"timeout,omitempty"`
	MaxPoolSize     uint64        `yaml:"max_pool_size,omitempty" json:"max_pool_size,omitempty"`
	MinPoolSize     uint64        `yaml:"min_pool_size,omitempty" json:"min_pool_size,omitempty"`
	MaxConnIdleTime time.Duration `yaml:"max_conn_idle_time,omitempty" json:"max_conn_idle_time,omitempty"`
	ReadPreference  string        `yaml:"read_preference,omitempty" json:"read_preference,omitempty"`
	CreateIndexes   bool          `yaml:"create_indexes,omitempty" json:"create_indexes,omitempty"`
}

func (o MongoOptions) withDefaults() MongoOptions {
	if o.Collection == "" {
		o.Collection = "wardrobeitems"
	}
	if o.Timeout == 0 {
		o.Timeout = 10 * time.Second
	}
	if o.MaxPoolSize == 0 {
		o.MaxPoolSize = 50
	}
	if o.MaxConnIdleTime == 0 {
		o.MaxConnIdleTime = 10 * time.Minute
	}
	return o
}

// MongoStore is a Store over a MongoDB collection.
type MongoStore struct {
	client     *mongo.Client
	collection *mongo.Collection
	timeout    time.Duration
	metrics    *monitoring.MetricsManager
	logger     utils.Logger
}

// NewMongoStore connects, pings and optionally creates the event index.
// metrics may be nil.
func NewMongoStore(ctx context.Context, opts MongoOptions, metrics *monitoring.MetricsManager) (*MongoStore, error) {
	if opts.URI == "" {
		return nil, utils.NewError(utils.ErrCodeInvalidConfig, "MongoDB connection string is required").Build()
	}
	if opts.Database == "" {
		return nil, utils.NewError(utils.ErrCodeInvalidConfig, "MongoDB database name is required").Build()
	}
	opts = opts.withDefaults()

	clientOptions := options.Client().
		ApplyURI(opts.URI).
		SetMaxPoolSize(opts.MaxPoolSize).
		SetMinPoolSize(opts.MinPoolSize).
		SetMaxConnIdleTime(opts.MaxConnIdleTime).
		SetRetryReads(true)

	if opts.ReadPreference != "" {
		rp, err := buildReadPreference(opts.ReadPreference)
		if err != nil {
			return nil, utils.WrapError(err, utils.ErrCodeInvalidConfig, "invalid read preference")
		}
		clientOptions.SetReadPreference(rp)
	}

	connectCtx, cancel := context.WithTimeout(ctx, opts.Timeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, clientOptions)
	if err != nil {
		return nil, utils.WrapError(err, utils.ErrCodeDatabaseError, "failed to connect to MongoDB")
	}
	if err := client.Ping(connectCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, utils.WrapError(err, utils.ErrCodeDatabaseError, "failed to ping MongoDB")
	}

	s := &MongoStore{
		client:     client,
		collection: client.Database(opts.Database).Collection(opts.Collection),
		timeout:    opts.Timeout,
		metrics:    metrics,
		logger:     utils.NewComponentLogger("wardrobe-store"),
	}

	if opts.CreateIndexes {
		_, err := s.collection.Indexes().CreateOne(connectCtx, mongo.IndexModel{
			Keys:    bson.D{{Key: "event_id", Value: 1}, {Key: "_id", Value: 1}},
			Options: options.Index().SetName("event_items"),
		})
		if err != nil {
			s.logger.WithField("error", err.Error()).Warn("failed to create event index")
		}
	}

	s.logger.Infof("connected to MongoDB database %s, collection %s", opts.Database, opts.Collection)
	return s, nil
}

// ItemsByEvent implements Store.
func (s *MongoStore) ItemsByEvent(ctx context.Context, eventID string) (items []types.WardrobeItem, err error) {
	defer func() { s.metrics.RecordStoreOperation("items_by_event", err) }()

	if strings.TrimSpace(eventID) == "" {
		return nil, utils.NewError(utils.ErrCodeInvalidInput, "event id is required").Build()
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	cursor, err := s.collection.Find(ctx, eventFilter(eventID), options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, utils.WrapError(err, utils.ErrCodeDatabaseError, "failed to query event items")
	}
	defer cursor.Close(ctx)

	items = []types.WardrobeItem{}
	for cursor.Next(ctx) {
		var doc itemDocument
		if err := cursor.Decode(&doc); err != nil {
			s.logger.WithField("error", err.Error()).Warn("skipping undecodable wardrobe item")
			continue
		}
		items = append(items, doc.toItem())
	}
	if err := cursor.Err(); err != nil {
		return nil, utils.WrapError(err, utils.ErrCodeDatabaseError, "failed to read event items")
	}
	return items, nil
}

// Item implements Store.
func (s *MongoStore) Item(ctx context.Context, id string) (item *types.WardrobeItem, err error) {
	defer func() { s.metrics.RecordStoreOperation("item", err) }()

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var doc itemDocument
	if err := s.collection.FindOne(ctx, bson.M{"_id": bson.M{"$in": idValues(id)}}).Decode(&doc); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, utils.NewError(utils.ErrCodeInvalidInput, "wardrobe item not found").
				WithContext("id", id).Build()
		}
		return nil, utils.WrapError(err, utils.ErrCodeDatabaseError, "failed to load wardrobe item")
	}
	out := doc.toItem()
	return &out, nil
}

// Insert implements Store.
func (s *MongoStore) Insert(ctx context.Context, item types.WardrobeItem) (id string, err error) {
	defer func() { s.metrics.RecordStoreOperation("insert", err) }()

	if err := item.Validate(); err != nil {
		return "", utils.WrapError(err, utils.ErrCodeValidation, "invalid wardrobe item")
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	doc := fromItem(item)
	if doc.ID == nil {
		doc.ID = primitive.NewObjectID()
	}
	if _, err := s.collection.InsertOne(ctx, doc); err != nil {
		return "", utils.WrapError(err, utils.ErrCodeDatabaseError, "failed to insert wardrobe item")
	}
	return idString(doc.ID), nil
}

// Ping implements Store.
func (s *MongoStore) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	if err := s.client.Ping(ctx, nil); err != nil {
		return utils.WrapError(err, utils.ErrCodeDatabaseError, "MongoDB ping failed")
	}
	return nil
}

// Close disconnects the client.
func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func buildReadPreference(mode string) (*readpref.ReadPref, error) {
	switch strings.ToLower(mode) {
	case "primary":
		return readpref.Primary(), nil
	case "primarypreferred":
		return readpref.PrimaryPreferred(), nil
	case "secondary":
		return readpref.Secondary(), nil
	case "secondarypreferred":
		return readpref.SecondaryPreferred(), nil
	case "nearest":
		return readpref.Nearest(), nil
	default:
		return nil, fmt.Errorf("invalid read preference: %s", mode)
	}
}
