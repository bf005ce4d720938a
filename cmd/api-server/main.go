package main

import (
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"proposalhub/database"
	"proposalhub/internal/config"
	"proposalhub/internal/microservices/http-api/handler"
	"proposalhub/internal/microservices/http-api/middleware"
	"proposalhub/internal/microservices/http-api/repository"
	"proposalhub/internal/microservices/http-api/service"
	"proposalhub/internal/microservices/websocket"
	"proposalhub/internal/push"
	"proposalhub/internal/sweep"
)

func main() {
	// 1️⃣ Load config
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("could not load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	logger := newLogger(cfg)

	// 2️⃣ Connect to the database
	db, err := database.ConnectDB(cfg, logger)
	if err != nil {
		log.Fatalf("could not connect to database: %v", err)
	}

	// 3️⃣ Connect to Redis (cache + sweep locks)
	redisClient := newRedisClient(cfg, logger)

	// 4️⃣ Repositories
	proposalRepo := repository.NewProposalRepository(db)
	logRepo := repository.NewFollowUpLogRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	profileRepo := repository.NewProfileRepository(db)
	subscriptionRepo := repository.NewPushSubscriptionRepository(db)

	// 5️⃣ Live notification feed
	hub := websocket.NewHub(logger)
	go hub.Run()

	// 6️⃣ Push delivery
	dispatcher := push.NewDispatcher(subscriptionRepo, logger, buildTransports(cfg, logger)...)

	// 7️⃣ Sweep engine, shared with the admin trigger endpoints
	var lock *sweep.Lock
	if redisClient != nil {
		lock = sweep.NewLockWithTTL(redisClient, cfg.SweepLockTTL)
	}
	sweeper := sweep.NewSweeper(
		proposalRepo, logRepo, notificationRepo, profileRepo,
		dispatcher, sweep.NewStateStore(db), logger,
	)

	// 8️⃣ Services
	authSvc := service.NewAuthService(cfg.JWTSecret)
	followUpSvc := service.NewFollowUpService(proposalRepo, logRepo)
	notificationSvc := service.NewNotificationService(notificationRepo, redisClient, hub, logger)
	pushSvc := service.NewPushSubscriptionService(subscriptionRepo, dispatcher)
	proposalSvc := service.NewProposalService(proposalRepo)

	// 9️⃣ Setup Gin
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.Default()
	r.Use(gin.Logger())
	r.Use(gin.Recovery())
	r.Use(corsMiddleware(cfg.CORSOrigins))

	r.GET("/health", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	api.Use(middleware.AuthMiddleware(authSvc))
	{
		proposals := api.Group("/proposals")
		handler.NewProposalHandler(proposalSvc).RegisterRoutes(proposals)
		handler.NewFollowUpHandler(followUpSvc).RegisterRoutes(proposals)

		notifications := api.Group("/notifications")
		handler.NewNotificationHandler(notificationSvc).RegisterRoutes(notifications)

		pushGroup := api.Group("/push")
		handler.NewPushHandler(pushSvc, cfg.VAPIDPublicKey).RegisterRoutes(pushGroup)

		api.GET("/ws", websocket.WSHandler(hub))

		admin := api.Group("/admin")
		admin.Use(middleware.RequireAdmin())
		handler.NewSweepHandler(sweeper, lock).RegisterRoutes(admin)
	}

	addr := fmt.Sprintf(":%d", cfg.HTTPPort)
	fmt.Println("🚀 Server running at", addr)
	if err := r.Run(addr); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}

func newLogger(cfg *config.Config) *slog.Logger {
	level := slog.LevelDebug
	switch cfg.LogLevel {
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	var h slog.Handler
	if cfg.LogFormat == "json" {
		h = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	} else {
		h = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	}
	return slog.New(h)
}

func newRedisClient(cfg *config.Config, logger *slog.Logger) *redis.Client {
	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		logger.Warn("invalid REDIS_URL, continuing without redis", "error", err)
		return nil
	}
	if cfg.RedisPassword != "" {
		opt.Password = cfg.RedisPassword
	}
	return redis.NewClient(opt)
}

// buildTransports wires every push channel that has credentials configured.
// The relay transport needs none, so it is always on.
func buildTransports(cfg *config.Config, logger *slog.Logger) []push.Transport {
	transports := []push.Transport{push.NewExpoTransport()}

	if cfg.WebPushEnabled() {
		transports = append(transports,
			push.NewWebPushTransport(cfg.VAPIDSubscriber, cfg.VAPIDPublicKey, cfg.VAPIDPrivateKey))
	} else {
		logger.Warn("VAPID keys not set, web push disabled")
	}

	if cfg.FCMServerKey != "" {
		transports = append(transports, push.NewFCMTransport(cfg.FCMServerKey))
	} else {
		logger.Warn("FCM_SERVER_KEY not set, native push disabled")
	}

	return transports
}

func corsMiddleware(origins []string) gin.HandlerFunc {
	allowed := make(map[string]bool, len(origins))
	for _, o := range origins {
		allowed[o] = true
	}
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if allowed[origin] {
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			c.Header("Access-Control-Allow-Headers", "Authorization, Content-Type")
		}
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
