package config

import (
	"time"

	"github.com/spf13/viper"

	"video-service/internal/limits"
)

type AppConf struct {
	Env            string `mapstructure:"env"`
	Port           int    `mapstructure:"port"`
	ShutdownSecond int    `mapstructure:"shutdown_seconds"`
}

type MongoConf struct {
	URI                string `mapstructure:"uri"`
	Database           string `mapstructure:"database"`
	Collection         string `mapstructure:"collection"`
	SettingsCollection string `mapstructure:"settings_collection"`
}

type AWSConf struct {
	Region   string `mapstructure:"region"`
	Bucket   string `mapstructure:"bucket"`
	Endpoint string `mapstructure:"endpoint"`
}

type S3Conf struct {
	PublicRead bool `mapstructure:"public_read"`
	PresignTTL int  `mapstructure:"presign_ttl_seconds"`
}

type RedisConf struct {
	Addr      string `mapstructure:"addr"`
	Password  string `mapstructure:"password"`
	DB        int    `mapstructure:"db"`
	SignedTTL int    `mapstructure:"signed_url_cache_ttl_seconds"`
}

type KafkaConf struct {
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
}

// MembershipConf selects where the user's group comes from: "claim" reads
// the JWT membership_level claim, "http" asks an external service, anything
// else means no membership provider.
type MembershipConf struct {
	Source          string `mapstructure:"source"`
	BaseURL         string `mapstructure:"base_url"`
	TimeoutSeconds  int    `mapstructure:"timeout_seconds"`
	RetryMaxSeconds int    `mapstructure:"retry_max_seconds"`
}

type RateLimitConf struct {
	Enabled       bool `mapstructure:"enabled"`
	Requests      int  `mapstructure:"requests"`
	WindowSeconds int  `mapstructure:"window_seconds"`
}

type JWTConf struct {
	PublicKeyPath string `mapstructure:"public_key_path"`
}

type Config struct {
	App        AppConf        `mapstructure:"app"`
	Mongo      MongoConf      `mapstructure:"mongodb"`
	AWS        AWSConf        `mapstructure:"aws"`
	S3         S3Conf         `mapstructure:"s3"`
	Redis      RedisConf      `mapstructure:"redis"`
	Kafka      KafkaConf      `mapstructure:"kafka"`
	Membership MembershipConf `mapstructure:"membership"`
	RateLimit  RateLimitConf  `mapstructure:"rate_limit"`
	JWT        JWTConf        `mapstructure:"jwt"`
	Limits     limits.Config  `mapstructure:"limits"`
	Log        struct {
		Level string `mapstructure:"level"`
	} `mapstructure:"log"`

	// derived
	ShutdownTimeout   time.Duration
	PresignTTL        time.Duration
	SignedURLCacheTTL time.Duration
	MembershipTimeout time.Duration
	MembershipRetry   time.Duration
	RateLimitWindow   time.Duration
}

func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	if cfg.App.ShutdownSecond == 0 {
		cfg.App.ShutdownSecond = 15
	}
	cfg.ShutdownTimeout = time.Duration(cfg.App.ShutdownSecond) * time.Second
	if cfg.S3.PresignTTL == 0 {
		cfg.S3.PresignTTL = 600
	}
	cfg.PresignTTL = time.Duration(cfg.S3.PresignTTL) * time.Second
	if cfg.Redis.SignedTTL == 0 {
		cfg.Redis.SignedTTL = cfg.S3.PresignTTL
	}
	cfg.SignedURLCacheTTL = time.Duration(cfg.Redis.SignedTTL) * time.Second
	if cfg.Mongo.SettingsCollection == "" {
		cfg.Mongo.SettingsCollection = "settings"
	}
	if cfg.Membership.TimeoutSeconds == 0 {
		cfg.Membership.TimeoutSeconds = 5
	}
	cfg.MembershipTimeout = time.Duration(cfg.Membership.TimeoutSeconds) * time.Second
	if cfg.Membership.RetryMaxSeconds == 0 {
		cfg.Membership.RetryMaxSeconds = 10
	}
	cfg.MembershipRetry = time.Duration(cfg.Membership.RetryMaxSeconds) * time.Second
	if cfg.RateLimit.Requests == 0 {
		cfg.RateLimit.Requests = 10
	}
	if cfg.RateLimit.WindowSeconds == 0 {
		cfg.RateLimit.WindowSeconds = 60
	}
	cfg.RateLimitWindow = time.Duration(cfg.RateLimit.WindowSeconds) * time.Second
	return &cfg, nil
}
