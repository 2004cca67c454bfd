package limits

import (
	"context"

	models "video-service/internal/video"
)

// MaxFileBytes is a hard safety net on any single upload, independent of
// whatever the admin settings say: 300 * 1024 * 1024.
const MaxFileBytes int64 = 314572800

// Row is a complete set of quota values, as stored in the admin settings.
type Row struct {
	MaxVideos       int `bson:"max_videos" mapstructure:"max_videos" json:"max_videos"`
	FileSizeMB      int `bson:"file_size_mb" mapstructure:"file_size_mb" json:"file_size_mb"`
	RecordLimitSecs int `bson:"record_limit_secs" mapstructure:"record_limit_secs" json:"record_limit_secs"`
	MaxTotalMB      int `bson:"max_total_mb" mapstructure:"max_total_mb" json:"max_total_mb"`
}

// Override is a partial row attached to a membership group. Nil fields
// inherit from the default row.
type Override struct {
	MaxVideos       *int `bson:"max_videos,omitempty" mapstructure:"max_videos" json:"max_videos,omitempty"`
	FileSizeMB      *int `bson:"file_size_mb,omitempty" mapstructure:"file_size_mb" json:"file_size_mb,omitempty"`
	RecordLimitSecs *int `bson:"record_limit_secs,omitempty" mapstructure:"record_limit_secs" json:"record_limit_secs,omitempty"`
	MaxTotalMB      *int `bson:"max_total_mb,omitempty" mapstructure:"max_total_mb" json:"max_total_mb,omitempty"`
}

// Config is the persisted limit settings: one default row plus per-group
// partial overrides keyed by the external membership group id.
type Config struct {
	Default Row                 `bson:"default" mapstructure:"default" json:"default"`
	Groups  map[string]Override `bson:"groups" mapstructure:"groups" json:"groups"`
}

// fallback applies when no default row is configured at all.
var fallback = Row{MaxVideos: 10, FileSizeMB: 300, RecordLimitSecs: 60, MaxTotalMB: 0}

// ConfigProvider yields the current limit settings. Resolved once per
// request; implementations must not cache stale admin edits forever.
type ConfigProvider interface {
	CurrentLimitConfig(ctx context.Context) (Config, error)
}

// GroupResolver names the caller's membership group, "" when the user has
// none or the external provider is unavailable.
type GroupResolver interface {
	GroupForUser(ctx context.Context, userID string) (string, error)
}

type Resolver struct {
	provider ConfigProvider
	groups   GroupResolver
}

func NewResolver(p ConfigProvider, g GroupResolver) *Resolver {
	return &Resolver{provider: p, groups: g}
}

// Resolve computes the effective limits for a user. It never fails: provider
// or group-resolver trouble degrades to the default row, and an entirely
// missing configuration degrades to the hard-coded fallback. Every field is
// clamped so a broken config can never lock out all uploads.
func (r *Resolver) Resolve(ctx context.Context, userID string) models.EffectiveLimits {
	var cfg Config
	if r.provider != nil {
		if c, err := r.provider.CurrentLimitConfig(ctx); err == nil {
			cfg = c
		}
	}
	def := cfg.Default
	if def == (Row{}) {
		def = fallback
	}

	var ov Override
	if r.groups != nil {
		if group, err := r.groups.GroupForUser(ctx, userID); err == nil && group != "" {
			if row, ok := cfg.Groups[group]; ok {
				ov = row
			}
		}
	}

	return models.EffectiveLimits{
		MaxVideos:       clampMin(pick(ov.MaxVideos, def.MaxVideos), 0),
		FileSizeMB:      clampMin(pick(ov.FileSizeMB, def.FileSizeMB), 1),
		RecordLimitSecs: clampMin(pick(ov.RecordLimitSecs, def.RecordLimitSecs), 1),
		MaxTotalMB:      clampMin(pick(ov.MaxTotalMB, def.MaxTotalMB), 0),
	}
}

func pick(override *int, def int) int {
	if override != nil {
		return *override
	}
	return def
}

func clampMin(v, min int) int {
	if v < min {
		return min
	}
	return v
}
