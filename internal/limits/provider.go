package limits

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/mongo"
)

// StaticProvider serves a fixed configuration, typically unmarshalled from
// the service's YAML config.
type StaticProvider struct {
	cfg Config
}

func NewStaticProvider(cfg Config) *StaticProvider {
	return &StaticProvider{cfg: cfg}
}

func (p *StaticProvider) CurrentLimitConfig(ctx context.Context) (Config, error) {
	return p.cfg, nil
}

const settingsID = "video_limits"

// MongoProvider reads the admin-controlled settings document on every call,
// so admin edits take effect on the next request. Missing document falls
// back to the configured defaults.
type MongoProvider struct {
	col      *mongo.Collection
	fallback Config
}

func NewMongoProvider(col *mongo.Collection, fallback Config) *MongoProvider {
	return &MongoProvider{col: col, fallback: fallback}
}

func (p *MongoProvider) CurrentLimitConfig(ctx context.Context) (Config, error) {
	var cfg Config
	err := p.col.FindOne(ctx, map[string]any{"_id": settingsID}).Decode(&cfg)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return p.fallback, nil
		}
		return p.fallback, err
	}
	return cfg, nil
}
