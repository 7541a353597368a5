package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"dinewise/config"
	"dinewise/cron"
	"dinewise/database"
	accountRepo "dinewise/database/repository/account"
	businessRepo "dinewise/database/repository/business"
	dealRepo "dinewise/database/repository/deal"
	"dinewise/database/repository/memory"
	reviewRepo "dinewise/database/repository/review"
	"dinewise/handlers"
	"dinewise/middleware"
	"dinewise/routes"
	"dinewise/services/auth"
	"dinewise/services/business"
	"dinewise/services/customer"
	"dinewise/services/deal"
	"dinewise/services/rating"
	"dinewise/services/recommendation"
	"dinewise/services/review"
	"dinewise/services/storage"
	"dinewise/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// repositories groups every store the services depend on.
type repositories struct {
	businesses  businessRepo.BusinessRepository
	stats       businessRepo.StatsRepository
	priceRanges businessRepo.PriceRangeRepository
	reviews     reviewRepo.ReviewRepository
	responses   reviewRepo.ResponseRepository
	upvotes     reviewRepo.UpvoteRepository
	deals       dealRepo.DealRepository
	customers   accountRepo.CustomerRepository
	owners      accountRepo.OwnerRepository
}

func mongoRepositories(m *database.Mongo, logger *zap.Logger) repositories {
	return repositories{
		businesses:  businessRepo.NewMongoBusinessRepo(m.DB, logger),
		stats:       businessRepo.NewMongoStatsRepo(m.DB, logger),
		priceRanges: businessRepo.NewMongoPriceRangeRepo(m.DB, logger),
		reviews:     reviewRepo.NewMongoReviewRepo(m.DB, logger),
		responses:   reviewRepo.NewMongoResponseRepo(m.DB, logger),
		upvotes:     reviewRepo.NewMongoUpvoteRepo(m.DB, logger),
		deals:       dealRepo.NewMongoDealRepo(m.DB, logger),
		customers:   accountRepo.NewMongoCustomerRepo(m.DB, logger),
		owners:      accountRepo.NewMongoOwnerRepo(m.DB, logger),
	}
}

func memoryRepositories(s *memory.Store) repositories {
	return repositories{
		businesses:  s.Businesses(),
		stats:       s.Stats(),
		priceRanges: s.PriceRanges(),
		reviews:     s.Reviews(),
		responses:   s.Responses(),
		upvotes:     s.Upvotes(),
		deals:       s.Deals(),
		customers:   s.Customers(),
		owners:      s.Owners(),
	}
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	logger, err := utils.NewLogger(cfg)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	if cfg.JWTSecret == "" {
		cfg.JWTSecret = uuid.NewString()
		logger.Warn("JWT_SECRET not set; using a random secret, tokens will not survive a restart")
	}

	rootCtx, stopRoot := context.WithCancel(context.Background())
	defer stopRoot()

	// Document store.
	var (
		repos     repositories
		storePing utils.Pinger
		mongoConn *database.Mongo
	)
	switch cfg.StoreDriver {
	case "memory":
		logger.Warn("using the in-memory store; data is lost on restart")
		repos = memoryRepositories(memory.NewStore())
	default:
		mongoConn, err = database.Connect(rootCtx, cfg)
		if err != nil {
			logger.Fatal("failed to connect to the document store", zap.Error(err))
		}
		logger.Info("connected to MongoDB", zap.String("database", cfg.DatabaseName))
		repos = mongoRepositories(mongoConn, logger)
		storePing = mongoConn
	}

	// Redis is optional: without it recommendations and principals are not cached.
	var redisClients []*redis.Client
	cacheClient, err := utils.NewRedisClient(cfg, cfg.RedisCacheDB)
	if err != nil {
		logger.Warn("recommendation cache disabled", zap.Error(err))
	} else {
		redisClients = append(redisClients, cacheClient)
	}
	authClient, err := utils.NewRedisClient(cfg, cfg.RedisAuthDB)
	if err != nil {
		logger.Warn("principal cache disabled", zap.Error(err))
	} else {
		redisClients = append(redisClients, authClient)
	}

	var images storage.ImageStore = storage.DisabledStore{}
	if cloud, err := storage.NewCloudinaryStore(cfg, logger); err != nil {
		logger.Warn("image uploads disabled", zap.Error(err))
	} else {
		images = cloud
	}

	// Rating aggregation and its background reconciliation.
	aggregator := &rating.DefaultAggregator{
		Businesses: repos.businesses,
		Stats:      repos.stats,
		Customers:  repos.customers,
		Reviews:    repos.reviews,
		Upvotes:    repos.upvotes,
		Logger:     logger,
	}
	reconciler := &rating.Reconciler{
		Businesses: repos.businesses,
		Stats:      repos.stats,
		Customers:  repos.customers,
		Reviews:    repos.reviews,
		Logger:     logger,
	}
	reconcileQueue := cron.NewReconcileQueue(cfg, logger)
	reconcileWorker := cron.NewReconcileWorker(cfg, reconciler, logger)
	reconcileWorker.Start()

	// Deal status scheduling.
	sweeper := &deal.Sweeper{Deals: repos.deals, Logger: logger}
	dealScheduler, err := cron.NewDealSweepScheduler(cfg, sweeper, logger)
	if err != nil {
		logger.Fatal("failed to configure the deal sweep", zap.Error(err))
	}
	dealScheduler.Start()

	// Services.
	var principalCache auth.PrincipalCache
	if authClient != nil {
		principalCache = auth.NewRedisPrincipalCache(authClient, logger)
	}
	authService := &auth.DefaultAuthService{
		Customers: repos.customers,
		Owners:    repos.owners,
		Tokens:    utils.NewTokenIssuer(cfg.JWTSecret, cfg.JWTTTL),
		Cache:     principalCache,
		Logger:    logger,
	}

	var sessions customer.Invalidator
	if principalCache != nil {
		sessions = principalCache
	}
	customerService := &customer.DefaultCustomerService{
		Customers: repos.customers,
		Images:    images,
		Sessions:  sessions,
		Logger:    logger,
	}

	businessService := &business.DefaultBusinessService{
		Businesses:  repos.businesses,
		Stats:       repos.stats,
		PriceRanges: repos.priceRanges,
		Deals:       repos.deals,
		Images:      images,
		Logger:      logger,
	}

	reviewService := &review.DefaultReviewService{
		Reviews:    repos.reviews,
		Responses:  repos.responses,
		Upvotes:    repos.upvotes,
		Businesses: repos.businesses,
		Aggregator: aggregator,
		Reconcile:  reconcileQueue,
		Images:     images,
		Logger:     logger,
	}

	dealService := &deal.DefaultDealService{
		Deals:      repos.deals,
		Businesses: repos.businesses,
		Logger:     logger,
	}

	ranker := &recommendation.Ranker{
		Businesses: repos.businesses,
		Reviews:    repos.reviews,
		Deals:      repos.deals,
		Settings:   recommendation.SettingsFromConfig(cfg),
		Logger:     logger,
	}
	if cacheClient != nil {
		ranker.Cache = recommendation.NewRedisCache(cacheClient, logger)
	}
	reviewService.Activity = ranker
	customerService.Recommendations = ranker

	health := utils.NewHealthMonitor(storePing, redisClients, 30*time.Second)
	go health.Run(rootCtx)

	// Create the Gin router.
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler(logger))
	router.Use(utils.RequestLogger(logger))
	router.Use(middleware.RateLimit(cfg.MaxRequestsPerMin, logger))

	hb := handlers.NewHandlerBundle(handlers.Services{
		Auth:            authService,
		Customers:       customerService,
		Businesses:      businessService,
		Reviews:         reviewService,
		Deals:           dealService,
		Recommendations: ranker,
		Health:          health,
	}, logger)
	routes.RegisterRoutes(router, hb)

	srv := &http.Server{
		Addr:    ":" + cfg.AppPort,
		Handler: router,
	}

	go func() {
		logger.Info("server starting", zap.String("port", cfg.AppPort))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	// Graceful shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", zap.Error(err))
	}
	stopRoot()
	dealScheduler.Stop(ctx)
	reconcileWorker.Shutdown()
	if err := reconcileQueue.Close(); err != nil {
		logger.Warn("failed to close reconcile queue", zap.Error(err))
	}
	for _, client := range redisClients {
		_ = client.Close()
	}
	if mongoConn != nil {
		if err := mongoConn.Close(ctx); err != nil {
			logger.Warn("failed to disconnect from MongoDB", zap.Error(err))
		}
	}
	logger.Info("server exiting")
}
