package source

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/chartpipe/pkg/dataset"
	"github.com/matzehuels/chartpipe/pkg/errors"
)

// MongoConfig describes a MongoDB-backed dataset.
type MongoConfig struct {
	URI        string         // connection string
	Database   string         // database name
	Collection string         // collection name
	Dims       []string       // document fields to project, in dimension order
	Filter     map[string]any // optional query filter
	Sort       string         // optional field to sort ascending by
	Limit      int64          // optional document cap, 0 means no cap
}

// Mongo loads a dataset from a MongoDB collection. Each matching document
// contributes one item; the configured dims name the numeric fields to
// extract, in order.
type Mongo struct {
	cfg    MongoConfig
	client *mongo.Client
}

// NewMongo connects to MongoDB and verifies the connection.
// The caller must Close the source when done.
func NewMongo(ctx context.Context, cfg MongoConfig) (*Mongo, error) {
	if cfg.Database == "" || cfg.Collection == "" {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "mongo source needs database and collection")
	}
	if len(cfg.Dims) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "mongo source needs at least one dim")
	}
	for _, dim := range cfg.Dims {
		if err := errors.ValidateDimName(dim); err != nil {
			return nil, err
		}
	}
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeSource, err, "connect to mongodb")
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, errors.Wrap(errors.ErrCodeSource, err, "ping mongodb")
	}
	return &Mongo{cfg: cfg, client: client}, nil
}

// Kind implements Source.
func (s *Mongo) Kind() string { return "mongo" }

// Name implements Source.
func (s *Mongo) Name() string {
	return fmt.Sprintf("%s.%s", s.cfg.Database, s.cfg.Collection)
}

// Close disconnects from MongoDB.
func (s *Mongo) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// Load implements Source.
func (s *Mongo) Load(ctx context.Context) (*dataset.Dataset, error) {
	coll := s.client.Database(s.cfg.Database).Collection(s.cfg.Collection)

	filter := bson.M{}
	for k, v := range s.cfg.Filter {
		filter[k] = v
	}
	opts := options.Find()
	if s.cfg.Sort != "" {
		opts.SetSort(bson.D{{Key: s.cfg.Sort, Value: 1}})
	}
	if s.cfg.Limit > 0 {
		opts.SetLimit(s.cfg.Limit)
	}

	cur, err := coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeSource, err, "query %s", s.Name())
	}
	defer cur.Close(ctx)

	var items [][]float64
	for cur.Next(ctx) {
		var doc bson.M
		if err := cur.Decode(&doc); err != nil {
			return nil, errors.Wrap(errors.ErrCodeSource, err, "decode document from %s", s.Name())
		}
		row := make([]float64, len(s.cfg.Dims))
		for i, dim := range s.cfg.Dims {
			v, err := numericField(doc, dim)
			if err != nil {
				return nil, errors.Wrap(errors.ErrCodeInvalidDataset, err, "document %d in %s", len(items), s.Name())
			}
			row[i] = v
		}
		items = append(items, row)
	}
	if err := cur.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeSource, err, "iterate %s", s.Name())
	}

	return dataset.New(s.cfg.Dims, items)
}

// numericField extracts a numeric document field, coercing the BSON numeric
// types the driver produces.
func numericField(doc bson.M, field string) (float64, error) {
	v, ok := doc[field]
	if !ok {
		return 0, fmt.Errorf("missing field %q", field)
	}
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int32:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case int:
		return float64(n), nil
	default:
		return 0, fmt.Errorf("field %q is %T, not numeric", field, v)
	}
}
