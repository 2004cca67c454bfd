package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	models "video-service/internal/video"
)

func TestMemoryRepo_CRUD(t *testing.T) {
	r := NewMemoryRepo()
	ctx := context.Background()

	v := &models.Video{ID: "v1", OwnerID: "u1", Size: 100}
	if err := r.Insert(ctx, v); err != nil {
		t.Fatal(err)
	}
	if v.CreatedAt.IsZero() {
		t.Fatal("insert must stamp created_at")
	}

	got, err := r.GetByID(ctx, "v1")
	if err != nil {
		t.Fatal(err)
	}
	if got.Size != 100 {
		t.Fatalf("got %+v", got)
	}

	got.Size = 200
	if err := r.Update(ctx, got); err != nil {
		t.Fatal(err)
	}
	again, _ := r.GetByID(ctx, "v1")
	if again.Size != 200 {
		t.Fatalf("update not visible, got %d", again.Size)
	}

	if err := r.Delete(ctx, "v1"); err != nil {
		t.Fatal(err)
	}
	if _, err := r.GetByID(ctx, "v1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := r.Delete(ctx, "v1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestMemoryRepo_GetReturnsCopy(t *testing.T) {
	r := NewMemoryRepo()
	ctx := context.Background()
	if err := r.Insert(ctx, &models.Video{ID: "v1", OwnerID: "u1", Size: 1}); err != nil {
		t.Fatal(err)
	}

	got, _ := r.GetByID(ctx, "v1")
	got.Size = 999

	fresh, _ := r.GetByID(ctx, "v1")
	if fresh.Size != 1 {
		t.Fatal("mutating a fetched record must not change the stored one")
	}
}

func TestMemoryRepo_ListByOwner(t *testing.T) {
	r := NewMemoryRepo()
	ctx := context.Background()
	base := time.Now().UTC()

	for i, id := range []string{"a", "b", "c"} {
		owner := "u1"
		if id == "c" {
			owner = "u2"
		}
		err := r.Insert(ctx, &models.Video{ID: id, OwnerID: owner, CreatedAt: base.Add(time.Duration(i) * time.Second)})
		if err != nil {
			t.Fatal(err)
		}
	}

	vids, err := r.ListByOwner(ctx, "u1")
	if err != nil {
		t.Fatal(err)
	}
	if len(vids) != 2 {
		t.Fatalf("expected 2 videos for u1, got %d", len(vids))
	}
	if vids[0].ID != "b" || vids[1].ID != "a" {
		t.Fatalf("expected newest first, got %s then %s", vids[0].ID, vids[1].ID)
	}
}
