package models

import "time"

// Video is one stored clip owned by a user. A record exists only after its
// first upload completed; replace swaps the asset under the same id.
type Video struct {
	ID               string    `bson:"_id" json:"id"`
	OwnerID          string    `bson:"owner_id" json:"owner_id"`
	Title            string    `bson:"title" json:"title"`
	AssetKey         string    `bson:"asset_key" json:"-"` // S3 object key
	URL              string    `bson:"url" json:"url"`     // optional public URL
	Size             int64     `bson:"size" json:"filesize"`
	Duration         float64   `bson:"duration,omitempty" json:"duration"`
	ContentType      string    `bson:"content_type" json:"content_type"`
	OriginalFilename string    `bson:"original_filename" json:"original_filename"`
	UploadedByIP     string    `bson:"uploaded_by_ip,omitempty" json:"-"`
	CreatedAt        time.Time `bson:"created_at" json:"created_at"`
}

// EffectiveLimits is the per-user quota after merging the default row with
// any membership-group override. Derived per request, never persisted.
// Units match the admin settings: MB for sizes, seconds for duration.
// MaxVideos == 0 and MaxTotalMB == 0 mean unlimited.
type EffectiveLimits struct {
	MaxVideos       int `json:"max_videos"`
	FileSizeMB      int `json:"file_size_mb"`
	RecordLimitSecs int `json:"record_limit_secs"`
	MaxTotalMB      int `json:"max_total_mb"`
}

// MaxFileSizeBytes returns the configured per-file cap in bytes.
func (l EffectiveLimits) MaxFileSizeBytes() int64 {
	return int64(l.FileSizeMB) * 1024 * 1024
}

// MaxTotalBytes returns the aggregate storage cap in bytes, 0 = unlimited.
func (l EffectiveLimits) MaxTotalBytes() int64 {
	return int64(l.MaxTotalMB) * 1024 * 1024
}

// UsageSnapshot is a point-in-time tally of a user's stored videos,
// recomputed from the repository on every quota decision.
type UsageSnapshot struct {
	Count      int   `json:"count"`
	TotalBytes int64 `json:"-"`
}

// TotalMB reports usage in MB rounded to two decimals, the wire unit.
func (u UsageSnapshot) TotalMB() float64 {
	mb := float64(u.TotalBytes) / (1024 * 1024)
	return float64(int64(mb*100+0.5)) / 100
}

// UsageOut is the JSON shape of a usage snapshot.
type UsageOut struct {
	Count   int     `json:"count"`
	TotalMB float64 `json:"total_mb"`
}

func (u UsageSnapshot) Out() UsageOut {
	return UsageOut{Count: u.Count, TotalMB: u.TotalMB()}
}

// ListResult is the canonical "current state" payload shared by the list,
// upload and delete responses.
type ListResult struct {
	Items  []*Video        `json:"items"`
	Limits EffectiveLimits `json:"limits"`
	Usage  UsageOut        `json:"usage"`
}
