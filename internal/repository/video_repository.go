package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	models "video-service/internal/video"
)

var ErrNotFound = errors.New("video not found")

// VideoRepository is the metadata store for video records. Implementations
// must be read-after-write consistent: ListByOwner reflects a committed
// Insert/Update/Delete immediately, because quota decisions depend on it.
type VideoRepository interface {
	Insert(ctx context.Context, v *models.Video) error
	GetByID(ctx context.Context, id string) (*models.Video, error)
	Update(ctx context.Context, v *models.Video) error
	Delete(ctx context.Context, id string) error
	ListByOwner(ctx context.Context, ownerID string) ([]*models.Video, error)
}

type VideoRepo struct {
	col *mongo.Collection
}

func NewVideoRepo(col *mongo.Collection) *VideoRepo {
	return &VideoRepo{col: col}
}

func (r *VideoRepo) Insert(ctx context.Context, v *models.Video) error {
	if v.CreatedAt.IsZero() {
		v.CreatedAt = time.Now().UTC()
	}
	_, err := r.col.InsertOne(ctx, v)
	return err
}

func (r *VideoRepo) GetByID(ctx context.Context, id string) (*models.Video, error) {
	var v models.Video
	err := r.col.FindOne(ctx, map[string]any{"_id": id}).Decode(&v)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &v, nil
}

func (r *VideoRepo) Update(ctx context.Context, v *models.Video) error {
	res, err := r.col.ReplaceOne(ctx, map[string]any{"_id": v.ID}, v)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *VideoRepo) Delete(ctx context.Context, id string) error {
	res, err := r.col.DeleteOne(ctx, map[string]any{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *VideoRepo) ListByOwner(ctx context.Context, ownerID string) ([]*models.Video, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cur, err := r.col.Find(ctx, map[string]any{"owner_id": ownerID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []*models.Video
	for cur.Next(ctx) {
		var v models.Video
		if err := cur.Decode(&v); err != nil {
			return nil, err
		}
		out = append(out, &v)
	}
	return out, cur.Err()
}
