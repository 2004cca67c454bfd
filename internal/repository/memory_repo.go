package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	models "video-service/internal/video"
)

// MemoryRepo keeps records in a map. Used in tests and local development.
type MemoryRepo struct {
	mu     sync.RWMutex
	videos map[string]models.Video
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{videos: make(map[string]models.Video)}
}

func (r *MemoryRepo) Insert(ctx context.Context, v *models.Video) error {
	if v.CreatedAt.IsZero() {
		v.CreatedAt = time.Now().UTC()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.videos[v.ID] = *v
	return nil
}

func (r *MemoryRepo) GetByID(ctx context.Context, id string) (*models.Video, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.videos[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &v, nil
}

func (r *MemoryRepo) Update(ctx context.Context, v *models.Video) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.videos[v.ID]; !ok {
		return ErrNotFound
	}
	r.videos[v.ID] = *v
	return nil
}

func (r *MemoryRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.videos[id]; !ok {
		return ErrNotFound
	}
	delete(r.videos, id)
	return nil
}

func (r *MemoryRepo) ListByOwner(ctx context.Context, ownerID string) ([]*models.Video, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*models.Video
	for _, v := range r.videos {
		if v.OwnerID == ownerID {
			v := v
			out = append(out, &v)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}
