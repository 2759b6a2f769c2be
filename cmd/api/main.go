package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"tutorhub/internal/config"
	"tutorhub/internal/database"
	"tutorhub/internal/domain"
	"tutorhub/internal/gateway/supabase"
	"tutorhub/internal/metrics"
	"tutorhub/internal/middleware"
	"tutorhub/internal/modules/admin"
	"tutorhub/internal/modules/auth"
	"tutorhub/internal/modules/availability"
	"tutorhub/internal/modules/booking"
	"tutorhub/internal/modules/catalog"
	"tutorhub/internal/modules/chat"
	"tutorhub/internal/modules/payment"
	"tutorhub/internal/modules/profile"
	"tutorhub/internal/modules/review"
	"tutorhub/internal/modules/subscription"
	"tutorhub/internal/modules/wallet"
	"tutorhub/internal/pkg/cache"
	jwtsvc "tutorhub/internal/pkg/jwt"
	"tutorhub/internal/pkg/logger"
	"tutorhub/internal/pkg/response"
	"tutorhub/internal/realtime"
	"tutorhub/internal/repository"
	"tutorhub/internal/session"
	"tutorhub/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log := logger.New(cfg.AppEnv)
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Connect(cfg.DatabaseURL, log)
	if err != nil {
		log.Fatal("database connect failed", zap.Error(err))
	}
	if err := database.Migrate(ctx, db, log); err != nil {
		log.Fatal("migrations failed", zap.Error(err))
	}

	store, closeCache := buildCache(ctx, cfg, log)
	defer closeCache()

	m := metrics.Registry(cfg.MetricsNamespace)
	repos := repository.New(db)
	tokens := jwtsvc.New(cfg.JWTSecret, cfg.JWTTTL)
	authenticator := session.NewAuthenticator(tokens, session.NewStore(store))
	broker := realtime.NewBroker(log)

	var sb *supabase.Client
	if cfg.SupabaseEnabled() {
		sb, err = supabase.New(supabase.Config{
			ProjectURL: cfg.SupabaseURL,
			ServiceKey: cfg.SupabaseServiceKey,
		}, log)
		if err != nil {
			log.Fatal("supabase client", zap.Error(err))
		}
	}

	var objects profile.ObjectStore = storage.NewLocal(cfg.UploadDir, cfg.UploadURLBase)
	if sb != nil {
		objects = sb.Storage(cfg.SupabaseAvatarBucket)
	}

	// With the realtime bridge on, message events come from the database
	// so the service must not publish its own copies.
	var chatPublisher chat.Publisher = broker
	if cfg.SupabaseRealtimeEnabled {
		chatPublisher = nil
		bridge := sb.RealtimeBridge(broker, supabase.RealtimeConfig{Tables: []string{"messages"}})
		go func() {
			if err := bridge.Run(ctx); err != nil {
				log.Error("realtime bridge stopped", zap.Error(err))
			}
		}()
	}

	authService := auth.NewService(repos, tokens, authenticator, store, log)
	catalogService := catalog.NewService(repos.Teachers, store, log)
	availabilityService := availability.NewService(repos.Availability, repos.Bookings, repos.Teachers, cfg.Location, m, log)
	paymentService := payment.NewService(repos, payment.NewSimulatedAuthorizer(cfg.PaymentSuccessRate, uint64(time.Now().UnixNano())), m, log)
	bookingService := booking.NewService(repos.Bookings, repos.Teachers, paymentService, m, log)
	walletService := wallet.NewService(repos, log)
	subscriptionService := subscription.NewService(repos, log)
	profileService := profile.NewService(repos.Profiles, repos.Goals, objects, log)
	reviewService := review.NewService(repos.Reviews, repos.Bookings, catalogService, log)
	chatService := chat.NewService(repos.Messages, repos.Profiles, chatPublisher, log)
	hub := chat.NewHub(broker, chatService, m, log)
	adminService := admin.NewService(repos, catalogService, log)

	authHandler := auth.NewHandler(authService)
	catalogHandler := catalog.NewHandler(catalogService)
	availabilityHandler := availability.NewHandler(availabilityService)
	bookingHandler := booking.NewHandler(bookingService)
	paymentHandler := payment.NewHandler(paymentService)
	walletHandler := wallet.NewHandler(walletService)
	subscriptionHandler := subscription.NewHandler(subscriptionService)
	profileHandler := profile.NewHandler(profileService)
	reviewHandler := review.NewHandler(reviewService)
	chatHandler := chat.NewHandler(chatService, hub, authenticator, cfg.CORSAllowedOrigins)
	adminHandler := admin.NewHandler(adminService)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	limiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, log)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.ErrorLogger(log))
	r.Use(middleware.CORS(cfg.CORSAllowedOrigins))
	r.Use(middleware.Metrics(m))

	r.GET("/healthz", func(c *gin.Context) {
		sqlDB, err := db.DB()
		if err != nil || sqlDB.PingContext(c.Request.Context()) != nil {
			response.Error(c, http.StatusServiceUnavailable, "UNHEALTHY", "database unreachable")
			return
		}
		response.Success(c, http.StatusOK, gin.H{"status": "ok", "ws_connections": hub.ConnectionCount()})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.Static(cfg.UploadURLBase, cfg.UploadDir)

	v1 := r.Group("/api/v1")
	// The websocket route authenticates from the query string itself.
	chatHandler.RegisterWSRoute(v1)

	public := v1.Group("")
	public.Use(limiter.Handler())
	{
		authHandler.RegisterPublicRoutes(public)
		catalogHandler.RegisterPublicRoutes(public)
		availabilityHandler.RegisterPublicRoutes(public)
		subscriptionHandler.RegisterPublicRoutes(public)
	}

	protected := v1.Group("")
	protected.Use(middleware.JWTAuth(authenticator), limiter.Handler())
	{
		authHandler.RegisterProtectedRoutes(protected)
		bookingHandler.RegisterRoutes(protected)
		paymentHandler.RegisterRoutes(protected)
		walletHandler.RegisterRoutes(protected)
		subscriptionHandler.RegisterRoutes(protected)
		profileHandler.RegisterRoutes(protected)
		reviewHandler.RegisterRoutes(public, protected)
		chatHandler.RegisterRoutes(protected)

		teacher := protected.Group("")
		teacher.Use(middleware.TeacherOnly())
		catalogHandler.RegisterTeacherRoutes(teacher)
		availabilityHandler.RegisterTeacherRoutes(teacher)

		admins := protected.Group("")
		admins.Use(middleware.RequireRole(domain.RoleAdmin))
		adminHandler.RegisterRoutes(admins)
	}

	scheduler := cron.New()
	if _, err := scheduler.AddFunc("@every 15m", func() {
		jobCtx, cancel := context.WithTimeout(ctx, time.Minute)
		defer cancel()
		n, err := subscriptionService.ExpireOld(jobCtx)
		if err != nil {
			log.Error("expire subscriptions", zap.Error(err))
			return
		}
		if n > 0 {
			log.Info("subscriptions expired", zap.Int64("count", n))
		}
	}); err != nil {
		log.Fatal("schedule subscription expiry", zap.Error(err))
	}
	if _, err := scheduler.AddFunc("@every 5m", func() {
		limiter.Cleanup(time.Now())
	}); err != nil {
		log.Fatal("schedule limiter cleanup", zap.Error(err))
	}
	scheduler.Start()

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("http server listening", zap.String("addr", cfg.HTTPAddr), zap.String("env", cfg.AppEnv))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("http server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	<-scheduler.Stop().Done()
	hub.Close()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown", zap.Error(err))
	}
}

// buildCache prefers Redis and falls back to the in-process cache when
// Redis is not configured or not reachable.
func buildCache(ctx context.Context, cfg *config.Config, log *zap.Logger) (cache.Cache, func()) {
	if cfg.RedisAddr == "" {
		log.Info("REDIS_ADDR not set, using in-memory cache")
		return cache.NewMemory(), func() {}
	}

	rc := cache.NewRedis(cache.Config{
		Addr:      cfg.RedisAddr,
		Password:  cfg.RedisPassword,
		DB:        cfg.RedisDB,
		KeyPrefix: "tutorhub:",
	}, log)

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := rc.Ping(pingCtx); err != nil {
		log.Warn("redis unavailable, using in-memory cache", zap.Error(err))
		_ = rc.Close()
		return cache.NewMemory(), func() {}
	}
	return rc, func() { _ = rc.Close() }
}
