package main

import (
	"context"
	"fmt"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/PLP-MERN-Stack-Development/mern-final-project-bece21-mkenani/internal/ai"
	"github.com/PLP-MERN-Stack-Development/mern-final-project-bece21-mkenani/internal/auth"
	"github.com/PLP-MERN-Stack-Development/mern-final-project-bece21-mkenani/internal/cache"
	"github.com/PLP-MERN-Stack-Development/mern-final-project-bece21-mkenani/internal/config"
	"github.com/PLP-MERN-Stack-Development/mern-final-project-bece21-mkenani/internal/handlers"
	"github.com/PLP-MERN-Stack-Development/mern-final-project-bece21-mkenani/internal/handlers/ws"
	"github.com/PLP-MERN-Stack-Development/mern-final-project-bece21-mkenani/internal/httpx"
	"github.com/PLP-MERN-Stack-Development/mern-final-project-bece21-mkenani/internal/logging"
	"github.com/PLP-MERN-Stack-Development/mern-final-project-bece21-mkenani/internal/middleware"
	"github.com/PLP-MERN-Stack-Development/mern-final-project-bece21-mkenani/internal/repository"
	"github.com/PLP-MERN-Stack-Development/mern-final-project-bece21-mkenani/internal/service"
	"github.com/PLP-MERN-Stack-Development/mern-final-project-bece21-mkenani/internal/storage"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func NewServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Runs the HTTP and websocket server (default).",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}
}

func runServe(parent context.Context) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	db, err := repository.InitDB(cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}
	store := repository.NewFactory(db, cfg.Database.ScopedRole)

	policy := auth.NewPolicy(cfg.AdminUserIDs)
	supabase := auth.NewSupabaseClient(cfg.Supabase.URL, cfg.Supabase.AnonKey, cfg.Supabase.Timeout)
	var verifier auth.Verifier
	if cfg.Supabase.JWTSecret != "" {
		verifier = auth.NewJWTVerifier(cfg.Supabase.JWTSecret)
	} else {
		logger.Info("SUPABASE_JWT_SECRET not set, verifying tokens remotely")
		verifier = auth.NewRemoteVerifier(supabase)
	}

	// Redis is optional; without it rooms are read through and presence is
	// reported as offline.
	var (
		rooms          *cache.RoomCache
		presence       *cache.Presence
		limiterStorage fiber.Storage
	)
	redisCache := cache.NewRedisCache(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	if err := redisCache.Ping(pingCtx); err != nil {
		logger.Warn("redis unavailable, running without cache", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
		_ = redisCache.Close()
	} else {
		defer redisCache.Close()
		rooms = cache.NewRoomCache(redisCache)
		presence = cache.NewPresence(redisCache)
		limiterStorage = cache.NewLimiterStorage(redisCache)
		logger.Info("redis cache connected", zap.String("addr", cfg.Redis.Addr))
	}
	cancel()

	// A nil ObjectStore disables attachments; the routes answer 503.
	var objects storage.ObjectStore
	if cfg.S3.Configured() {
		s3, err := storage.NewS3Storage(cfg.S3)
		if err != nil {
			logger.Warn("failed to initialise attachment storage", zap.Error(err))
		} else {
			objects = s3
			logger.Info("attachment storage ready", zap.String("bucket", cfg.S3.Bucket))
		}
	} else {
		logger.Info("attachment storage not configured")
	}

	hub := ws.NewHub(presence, logger.Named("ws"))
	defer hub.Close()

	groups := service.NewGroupService(store, rooms, presence, logger)
	messages := service.NewMessageService(store, groups, hub, logger, service.MessageOptions{
		MaxLength:   cfg.MaxMessageLength,
		ReactionCAS: cfg.ReactionCAS,
		CASAttempts: cfg.ReactionCASAttempts,
	})
	education := service.NewEducationService(store, logger)
	identity := service.NewIdentityService(supabase, store, policy, logger)
	tutor := service.NewTutorService(ai.NewGenerator(cfg.AI), store, logger)
	attachments := service.NewAttachmentService(objects, cfg.S3.PublicBaseURL, cfg.MaxAttachmentBytes, storage.DefaultImageOptions())

	app := fiber.New(fiber.Config{
		AppName:      "goalmate",
		BodyLimit:    int(cfg.MaxAttachmentBytes) + 1024*1024,
		ErrorHandler: errorHandler,
	})

	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middleware.RequestLogger(logger.Named("http")))
	app.Use(cors.New(cors.Config{
		AllowOrigins:     corsOrigins(cfg.AllowedOrigins),
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Supports-Gzip",
		AllowMethods:     "GET, POST, PUT, DELETE, OPTIONS",
		AllowCredentials: allowCredentials(cfg.AllowedOrigins),
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":      "ok",
			"connections": hub.Count(),
		})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	router := &handlers.Router{
		Auth:           handlers.NewAuthHandler(identity),
		Groups:         handlers.NewGroupHandler(groups),
		Messages:       handlers.NewMessageHandler(messages),
		Education:      handlers.NewEducationHandler(education),
		Tutor:          handlers.NewTutorHandler(tutor),
		Media:          handlers.NewMediaHandler(attachments, logger.Named("media")),
		WebSocket:      handlers.NewWebSocketHandler(hub, groups, messages, logger.Named("ws")),
		Verifier:       verifier,
		Policy:         policy,
		AllowedOrigins: splitOrigins(cfg.AllowedOrigins),
		LimiterStorage: limiterStorage,
		Logger:         logger,
	}
	router.Register(app)

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("server starting", zap.String("port", cfg.Port))
		serveErr <- app.Listen(":" + cfg.Port)
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down", zap.Duration("timeout", cfg.ShutdownTimeout))
	if err := app.ShutdownWithTimeout(cfg.ShutdownTimeout); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
		return err
	}
	return nil
}

// errorHandler renders errors that escape handlers (404s, 426 on /ws, panics
// caught by recover) in the API's error shape.
func errorHandler(c *fiber.Ctx, err error) error {
	return httpx.FromError(c, err)
}

func splitOrigins(raw string) []string {
	var out []string
	for _, o := range strings.Split(raw, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

// allowCredentials is false whenever the origins resolve to the wildcard;
// fiber's cors refuses credentials with it.
func allowCredentials(raw string) bool {
	return corsOrigins(raw) != "*"
}

// corsOrigins collapses the list to "*" when it is empty or contains the
// wildcard; fiber's cors rejects "*" mixed with explicit origins.
func corsOrigins(raw string) string {
	origins := splitOrigins(raw)
	if len(origins) == 0 {
		return "*"
	}
	for _, o := range origins {
		if o == "*" {
			return "*"
		}
	}
	return strings.Join(origins, ",")
}
