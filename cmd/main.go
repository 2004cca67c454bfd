package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"video-service/internal/auth"
	"video-service/internal/cache"
	"video-service/internal/config"
	"video-service/internal/events"
	"video-service/internal/handlers"
	"video-service/internal/limits"
	"video-service/internal/membership"
	"video-service/internal/middleware"
	"video-service/internal/repository"
	service "video-service/internal/services"
	"video-service/internal/storage"
	utils "video-service/internal/utis"
)

func main() {
	// load config
	cfg, err := config.Load("config/config.yaml")
	if err != nil {
		panic(err)
	}
	dev := cfg.App.Env == "development"

	// logger
	logger, _ := utils.NewLogger(dev, cfg.Log.Level)
	defer func() { _ = logger.Sync() }()

	// Mongo
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	mc, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.Mongo.URI))
	if err != nil {
		logger.Fatalf("mongo connect: %v", err)
	}
	db := mc.Database(cfg.Mongo.Database)
	repo := repository.NewVideoRepo(db.Collection(cfg.Mongo.Collection))

	// limit settings: admin-edited document in Mongo, YAML values as fallback
	provider := limits.NewMongoProvider(db.Collection(cfg.Mongo.SettingsCollection), cfg.Limits)

	// membership group source
	var groups limits.GroupResolver
	switch cfg.Membership.Source {
	case "http":
		groups = membership.NewHTTPResolver(cfg.Membership.BaseURL, cfg.MembershipTimeout, cfg.MembershipRetry)
	case "claim":
		groups = membership.ClaimResolver{}
	default:
		groups = membership.Noop{}
	}
	resolver := limits.NewResolver(provider, groups)

	// S3 store
	store, err := storage.NewS3Store(context.Background(), cfg.AWS.Region, cfg.AWS.Bucket, cfg.AWS.Endpoint, cfg.S3.PublicRead)
	if err != nil {
		logger.Fatalf("s3 init: %v", err)
	}

	// lifecycle events (nil when kafka is not configured)
	publisher := events.NewPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic)

	// service
	svc := service.NewVideoService(repo, store, resolver, cfg.PresignTTL, logger).WithEvents(publisher)

	// Redis: signed-url cache + upload rate limiter (both optional)
	var rdb *redis.Client
	if cfg.Redis.Addr != "" {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		svc.WithCache(cache.NewURLCache(rdb, "video:url"), cfg.SignedURLCacheTTL)
	}

	// JWT verifier
	verifier, err := auth.NewJWTVerifier(cfg.JWT.PublicKeyPath)
	if err != nil {
		logger.Fatalf("jwt init: %v", err)
	}

	// fiber app & routes
	app := fiber.New(fiber.Config{
		ReadTimeout:  5 * time.Minute,
		WriteTimeout: 5 * time.Minute,
		// room for a full-size upload plus multipart overhead
		BodyLimit: int(limits.MaxFileBytes) + 1024*1024,
	})
	h := handlers.NewHandler(svc)

	app.Get("/healthz", func(c *fiber.Ctx) error { return c.SendString("ok") })

	authed := app.Group("/", middleware.JWTAuth(verifier))
	authed.Get("/my", h.ListMy)
	authed.Get("/videos/:id/url", h.GetSignedURL)
	authed.Delete("/delete/:id", h.Delete)
	if cfg.RateLimit.Enabled && rdb != nil {
		rl := middleware.NewRateLimiter(rdb, "video:rl:upload", cfg.RateLimit.Requests, cfg.RateLimitWindow)
		authed.Post("/upload", rl.MiddlewareByKey(func(c *fiber.Ctx) string {
			if id, ok := middleware.IdentityFrom(c); ok {
				return id.UserID
			}
			return c.IP()
		}), h.Upload)
	} else {
		authed.Post("/upload", h.Upload)
	}

	// start server
	go func() {
		addr := fmt.Sprintf(":%d", cfg.App.Port)
		logger.Infof("starting video service on %s", addr)
		if err := app.Listen(addr); err != nil {
			logger.Fatalf("listen failed: %v", err)
		}
	}()

	// graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, os.Kill)
	<-quit
	logger.Info("shutdown requested")
	timeoutCtx, cancel2 := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel2()

	_ = app.Shutdown()
	_ = publisher.Close()
	if rdb != nil {
		_ = rdb.Close()
	}
	_ = mc.Disconnect(timeoutCtx)
	logger.Info("shutdown completed")
}
