package main

import (
	"context"
	"time"

	"pulse/internal/events"
	"pulse/internal/handlers"
	"pulse/internal/jobs"
	"pulse/internal/linkpreview"
	"pulse/internal/metrics"
	"pulse/internal/storage"
	"pulse/internal/websocket"
	"pulse/pkg/auth"
	"pulse/pkg/config"
	"pulse/pkg/database"
	"pulse/pkg/logging"
	"pulse/pkg/monitoring"
	"pulse/pkg/redis"
	"pulse/pkg/server"
	"pulse/pkg/version"
)

func main() {
	// Setup logger
	logger := logging.NewLoggerWithService("pulse")

	// Load environment variables
	config.LoadEnv(logger)

	logger.Info("Starting Pulse (Social API)")

	databaseURL := config.RequireEnv("DATABASE_URL")
	jwtSecret := []byte(config.RequireEnv("JWT_SECRET"))

	// Setup monitoring
	healthChecker := monitoring.NewHealthChecker("pulse", version.Version)
	metricsCollector := monitoring.NewMetricsCollector("pulse", version.Version, version.GitCommit)

	// Create custom metrics
	serviceMetrics := &metrics.Metrics{
		MutationsTotal:       metricsCollector.NewCounter("social_mutations_total", "Social graph mutations", []string{"operation", "outcome"}),
		FeedPagesServed:      metricsCollector.NewCounter("feed_pages_served_total", "Feed pages served", []string{"feed"}),
		NotificationsCreated: metricsCollector.NewCounter("notifications_created_total", "Notifications created", []string{"type"}),
		RealtimeEvents:       metricsCollector.NewCounter("realtime_events_published_total", "Real-time events published", []string{"channel"}),
	}

	// Connect to Postgres
	dbConfig := database.DefaultConfig()
	dbConfig.URL = databaseURL
	db := database.MustConnect(dbConfig, logger)
	defer db.Close()

	if config.GetEnv("DB_APPLY_SCHEMA", "true") == "true" {
		if err := database.ApplySchema(context.Background(), db, logger); err != nil {
			logger.WithError(err).Fatal("Failed to apply database schema")
		}
	}

	healthChecker.AddCheck("database", monitoring.DatabaseHealthCheck(db))
	healthChecker.AddCheck("config", monitoring.ConfigurationHealthCheck(map[string]string{
		"DATABASE_URL": databaseURL,
		"JWT_SECRET":   string(jwtSecret),
	}))

	// Realtime hub
	hub := websocket.NewHub(logger)
	go hub.Run()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Redis is optional: without it the service runs single-node with
	// no cross-instance fanout.
	var deps handlers.Deps
	deps.Hub = hub
	deps.Metrics = serviceMetrics
	deps.JWTSecret = jwtSecret

	if redisURL := config.GetEnv("REDIS_URL", ""); redisURL != "" {
		redisClient, err := redis.NewClientFromURL(ctx, redisURL)
		if err != nil {
			logger.WithError(err).Fatal("Failed to connect to Redis")
		}
		defer redisClient.Close()

		healthChecker.AddCheck("redis", monitoring.RedisHealthCheck(redisClient))
		deps.Publisher = events.NewRedisPublisher(redisClient)

		go func() {
			if err := events.RunBridge(ctx, redisClient, hub, logger); err != nil && ctx.Err() == nil {
				logger.WithError(err).Error("Realtime bridge stopped")
			}
		}()
	} else {
		logger.Warn("REDIS_URL not set, realtime fanout is per-instance only")
	}

	// Object storage is optional: without it uploads are rejected
	if bucket := config.GetEnv("S3_BUCKET", ""); bucket != "" {
		s3Client, err := storage.NewS3Client(storage.S3Config{
			Bucket:    bucket,
			Prefix:    config.GetEnv("S3_PREFIX", ""),
			Region:    config.GetEnv("S3_REGION", ""),
			Endpoint:  config.GetEnv("S3_ENDPOINT", ""),
			PublicURL: config.GetEnv("S3_PUBLIC_URL", ""),
			AccessKey: config.GetEnv("S3_ACCESS_KEY", ""),
			SecretKey: config.GetEnv("S3_SECRET_KEY", ""),
		}, logger)
		if err != nil {
			logger.WithError(err).Fatal("Failed to initialize S3 client")
		}
		deps.Storage = s3Client
	} else {
		logger.Warn("S3_BUCKET not set, media uploads disabled")
	}

	deps.Previews = linkpreview.NewService(db, logger)

	// Initialize handlers
	handlers.Init(db, logger, deps)

	// Background jobs
	trendingJob := jobs.NewTrendingRefreshJob(jobs.TrendingRefreshConfig{
		Refresh:  handlers.UpdateTrendingTopics,
		Logger:   logger,
		Interval: time.Duration(config.GetEnvInt("TRENDING_REFRESH_MINUTES", 5)) * time.Minute,
	})
	trendingJob.Start()
	defer trendingJob.Stop()

	cleanupJob := jobs.NewNotificationCleanupJob(jobs.NotificationCleanupConfig{
		DB:     db,
		Logger: logger,
	})
	cleanupJob.Start()
	defer cleanupJob.Stop()

	// Setup router with unified monitoring
	router := server.SetupServiceRouter(logger, "pulse", healthChecker, metricsCollector)

	// Public auth endpoints
	router.POST("/api/auth/register", handlers.Register)
	router.POST("/api/auth/login", handlers.Login)

	// Read endpoints resolve the caller when a token is present but
	// serve anonymous traffic too.
	reads := router.Group("/api")
	reads.Use(auth.OptionalJWTAuthMiddleware(jwtSecret))
	{
		reads.GET("/feed", handlers.GetForYouFeed)
		reads.GET("/feed/filtered", handlers.GetFilteredFeed)
		reads.GET("/posts/:id/thread", handlers.GetThread)
		reads.GET("/posts/:id/replies", handlers.GetReplies)
		reads.GET("/posts/:id/comments", handlers.GetComments)
		reads.GET("/posts/:id/reactions", handlers.GetPostReactions)
		reads.GET("/posts/:id/reposts", handlers.GetReposts)
		reads.GET("/posts/:id/poll", handlers.GetPollByPost)
		reads.GET("/polls/:id", handlers.GetPollResults)
		reads.GET("/profiles/:id", handlers.GetProfile)
		reads.GET("/users/:id/posts", handlers.GetUserPosts)
		reads.GET("/users/:id/mentions", handlers.GetUserMentions)
		reads.GET("/users/:id/followers", handlers.GetFollowers)
		reads.GET("/users/:id/following", handlers.GetFollowing)
		reads.GET("/search/users", handlers.SearchUsers)
		reads.GET("/trending", handlers.GetTrendingTopics)
		reads.GET("/link-preview", handlers.GetLinkPreview)
	}

	// WebSocket carries its token as a query parameter
	router.GET("/ws", auth.OptionalJWTAuthMiddleware(jwtSecret), handlers.ServeWebSocket)

	// Everything else requires a session
	protected := router.Group("/api")
	protected.Use(auth.JWTAuthMiddleware(jwtSecret))
	{
		protected.GET("/feed/following", handlers.GetFollowingFeed)

		protected.POST("/posts", handlers.CreatePost)
		protected.PUT("/posts/:id", handlers.UpdatePost)
		protected.DELETE("/posts/:id", handlers.DeletePost)
		protected.POST("/replies", handlers.CreateReply)

		protected.POST("/comments", handlers.CreateComment)
		protected.PUT("/comments/:id", handlers.UpdateComment)
		protected.DELETE("/comments/:id", handlers.DeleteComment)

		protected.POST("/likes", handlers.ToggleLike)
		protected.POST("/bookmarks", handlers.ToggleBookmark)
		protected.GET("/bookmarks", handlers.GetBookmarkedPosts)
		protected.POST("/follows", handlers.ToggleFollow)
		protected.GET("/suggestions", handlers.GetWhoToFollow)

		protected.POST("/reposts", handlers.CreateRepost)
		protected.DELETE("/reposts/:id", handlers.DeleteRepost)

		protected.POST("/reactions", handlers.SetReaction)
		protected.DELETE("/reactions", handlers.RemoveReaction)

		protected.POST("/polls", handlers.CreatePoll)
		protected.POST("/polls/:id/vote", handlers.VotePoll)

		protected.GET("/me", handlers.GetOwnProfile)
		protected.PUT("/me", handlers.UpdateProfile)
		protected.POST("/me/avatar", handlers.UploadAvatar)
		protected.POST("/uploads/image", handlers.UploadPostImage)

		protected.GET("/notifications", handlers.GetNotifications)
		protected.GET("/notifications/unread", handlers.GetUnreadCount)
		protected.POST("/notifications/:id/read", handlers.MarkAsRead)
		protected.POST("/notifications/read-all", handlers.MarkAllAsRead)

		protected.POST("/link-preview", handlers.FetchLinkPreview)
		protected.POST("/trending/refresh", handlers.RefreshTrendingTopics)
		protected.GET("/realtime/stats", handlers.GetRealtimeStats)
	}

	// Start server with graceful shutdown
	serverConfig := server.DefaultConfig("pulse", "18080")
	if err := server.Start(serverConfig, router, logger); err != nil {
		logger.WithError(err).Fatal("Server startup failed")
	}
}
