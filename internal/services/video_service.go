package service

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"video-service/internal/auth"
	"video-service/internal/events"
	"video-service/internal/limits"
	"video-service/internal/repository"
	"video-service/internal/storage"
	utils "video-service/internal/utis"
	models "video-service/internal/video"
)

// Cache stores short-lived values, here presigned playback URLs.
type Cache interface {
	Set(ctx context.Context, key string, val string, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
}

// VideoService coordinates uploads against per-user quotas: it resolves the
// caller's effective limits, tallies current usage, and only then writes the
// asset and the record. Usage is recomputed from the repository on every
// call; two concurrent uploads from one user can both pass the check against
// the same snapshot, which is accepted.
type VideoService struct {
	repo       repository.VideoRepository
	store      storage.BlobStore
	limits     *limits.Resolver
	events     *events.Publisher
	cache      Cache
	cacheTTL   time.Duration
	presignTTL time.Duration
	log        *zap.SugaredLogger
}

func NewVideoService(repo repository.VideoRepository, store storage.BlobStore, res *limits.Resolver, presignTTL time.Duration, log *zap.SugaredLogger) *VideoService {
	return &VideoService{repo: repo, store: store, limits: res, presignTTL: presignTTL, log: log}
}

// WithEvents attaches an optional lifecycle publisher.
func (s *VideoService) WithEvents(p *events.Publisher) *VideoService {
	s.events = p
	return s
}

// WithCache attaches an optional presigned-URL cache. Entries live for ttl,
// capped at the presign TTL so a cached URL can never outlive its signature.
func (s *VideoService) WithCache(c Cache, ttl time.Duration) *VideoService {
	s.cache = c
	if ttl <= 0 || ttl > s.presignTTL {
		ttl = s.presignTTL
	}
	s.cacheTTL = ttl
	return s
}

// Upload validates a candidate file against the caller's effective limits
// and, on acceptance, persists the asset and upserts the record. With a
// replaceID the asset is swapped under the existing record id; otherwise a
// new record is created. Checks run in a fixed order and short-circuit on
// the first failure; only the content-type check happens after the asset is
// stored, and every rejection past that point deletes the stored asset
// again.
func (s *VideoService) Upload(ctx context.Context, id auth.Identity, filename string, data []byte, duration float64, replaceID string) (*models.ListResult, error) {
	if !id.Can(auth.CapUploadFiles) {
		return nil, utils.ErrForbidden("Insufficient capability")
	}

	lims := s.limits.Resolve(ctx, id.UserID)

	// effective per-file cap: configured limit, never above the hard ceiling
	maxFileBytes := lims.MaxFileSizeBytes()
	if maxFileBytes > limits.MaxFileBytes {
		maxFileBytes = limits.MaxFileBytes
	}
	size := int64(len(data))
	if size <= 0 || size > maxFileBytes {
		return nil, utils.ErrFileTooLarge(maxFileBytes / (1024 * 1024))
	}

	// half-second grace for client/codec rounding; unknown duration passes
	if duration > float64(lims.RecordLimitSecs)+0.5 {
		return nil, utils.ErrDurationExceeded(lims.RecordLimitSecs)
	}

	usage, err := s.usage(ctx, id.UserID)
	if err != nil {
		return nil, utils.ErrStoreFailure(err)
	}
	countAfter := usage.Count
	if replaceID == "" {
		countAfter++
	}
	if lims.MaxVideos > 0 && countAfter > lims.MaxVideos {
		return nil, utils.ErrQuotaVideos()
	}
	// a replace is charged its full new size, the old bytes are not credited
	if lims.MaxTotalMB > 0 && usage.TotalBytes+size > lims.MaxTotalBytes() {
		return nil, utils.ErrQuotaStorage()
	}

	name := sanitizeFilename(filename)
	key := id.UserID + "/" + utils.NewID() + "_" + name
	obj, err := s.store.Store(ctx, key, data)
	if err != nil {
		return nil, utils.ErrStoreFailure(err)
	}

	if !strings.HasPrefix(obj.ContentType, "video/") {
		s.discard(ctx, obj.Key)
		return nil, utils.ErrUnsupportedType()
	}

	var rec *models.Video
	replacing := replaceID != ""
	if replacing {
		rec, err = s.repo.GetByID(ctx, replaceID)
		if err != nil {
			s.discard(ctx, obj.Key)
			if errors.Is(err, repository.ErrNotFound) {
				return nil, utils.ErrNotFound()
			}
			return nil, utils.ErrStoreFailure(err)
		}
		if rec.OwnerID != id.UserID {
			s.discard(ctx, obj.Key)
			return nil, utils.ErrNotOwner("replace")
		}
		if rec.AssetKey != "" {
			s.discard(ctx, rec.AssetKey)
		}
	} else {
		now := time.Now().UTC()
		rec = &models.Video{
			ID:        utils.NewID(),
			OwnerID:   id.UserID,
			Title:     "Video " + now.Format("2006-01-02 15:04:05"),
			CreatedAt: now,
		}
	}

	rec.AssetKey = obj.Key
	rec.URL = obj.URL
	rec.Size = size
	rec.ContentType = obj.ContentType
	rec.OriginalFilename = name
	if ip := auth.ClientIPFromContext(ctx); ip != "" {
		rec.UploadedByIP = ip
	}
	if duration > 0 {
		rec.Duration = duration
	}

	if replacing {
		err = s.repo.Update(ctx, rec)
	} else {
		err = s.repo.Insert(ctx, rec)
	}
	if err != nil {
		// no orphaned blobs behind a failed commit
		s.discard(ctx, obj.Key)
		return nil, utils.ErrStoreFailure(err)
	}

	evType := events.TypeUploaded
	if replacing {
		evType = events.TypeReplaced
	}
	s.publish(ctx, events.VideoEvent{Type: evType, VideoID: rec.ID, OwnerID: rec.OwnerID, Size: size, At: time.Now().UTC()})

	return s.ListMine(ctx, id)
}

// Delete removes the record and its asset. Asset deletion is best-effort;
// a missing blob does not block removing the record.
func (s *VideoService) Delete(ctx context.Context, id auth.Identity, recordID string) error {
	rec, err := s.repo.GetByID(ctx, recordID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return utils.ErrNotFound()
		}
		return utils.ErrStoreFailure(err)
	}
	if rec.OwnerID != id.UserID {
		return utils.ErrNotOwner("delete")
	}
	if rec.AssetKey != "" {
		s.discard(ctx, rec.AssetKey)
	}
	if err := s.repo.Delete(ctx, recordID); err != nil {
		return utils.ErrStoreFailure(err)
	}
	s.publish(ctx, events.VideoEvent{Type: events.TypeDeleted, VideoID: rec.ID, OwnerID: rec.OwnerID, At: time.Now().UTC()})
	return nil
}

// ListMine returns the caller's videos together with their effective limits
// and a fresh usage snapshot, the payload shared by list, upload and delete.
func (s *VideoService) ListMine(ctx context.Context, id auth.Identity) (*models.ListResult, error) {
	vids, err := s.repo.ListByOwner(ctx, id.UserID)
	if err != nil {
		return nil, utils.ErrStoreFailure(err)
	}
	var total int64
	for _, v := range vids {
		total += v.Size
	}
	if vids == nil {
		vids = []*models.Video{}
	}
	usage := models.UsageSnapshot{Count: len(vids), TotalBytes: total}
	return &models.ListResult{
		Items:  vids,
		Limits: s.limits.Resolve(ctx, id.UserID),
		Usage:  usage.Out(),
	}, nil
}

// PlaybackURL returns a URL for the caller's own video: the public URL when
// the bucket is public, otherwise a presigned one, cached when a cache is
// attached.
func (s *VideoService) PlaybackURL(ctx context.Context, id auth.Identity, recordID string) (string, error) {
	rec, err := s.repo.GetByID(ctx, recordID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", utils.ErrNotFound()
		}
		return "", utils.ErrStoreFailure(err)
	}
	if rec.OwnerID != id.UserID {
		return "", utils.ErrNotOwner("access")
	}
	if rec.URL != "" {
		return rec.URL, nil
	}
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, rec.AssetKey); err == nil && cached != "" {
			return cached, nil
		}
	}
	url, err := s.store.PresignURL(ctx, rec.AssetKey, s.presignTTL)
	if err != nil {
		return "", utils.ErrStoreFailure(err)
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, rec.AssetKey, url, s.cacheTTL); err != nil {
			s.log.Warnw("cache signed url", "key", rec.AssetKey, "err", err)
		}
	}
	return url, nil
}

func (s *VideoService) usage(ctx context.Context, userID string) (models.UsageSnapshot, error) {
	vids, err := s.repo.ListByOwner(ctx, userID)
	if err != nil {
		return models.UsageSnapshot{}, err
	}
	var total int64
	for _, v := range vids {
		total += v.Size
	}
	return models.UsageSnapshot{Count: len(vids), TotalBytes: total}, nil
}

func (s *VideoService) discard(ctx context.Context, key string) {
	if err := s.store.Delete(ctx, key); err != nil {
		s.log.Warnw("delete asset", "key", key, "err", err)
	}
}

func (s *VideoService) publish(ctx context.Context, ev events.VideoEvent) {
	if err := s.events.Publish(ctx, ev); err != nil {
		s.log.Warnw("publish event", "type", ev.Type, "err", err)
	}
}

func sanitizeFilename(name string) string {
	if name == "" {
		return "video"
	}
	name = filepath.Base(name)
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9',
			r == '.', r == '-', r == '_':
			b.WriteRune(r)
		case r == ' ':
			b.WriteByte('-')
		}
	}
	if b.Len() == 0 {
		return "video"
	}
	return b.String()
}
