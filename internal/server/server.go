package server

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"time"

	"github.com/wordlens/wordlens/internal/api"
	"github.com/wordlens/wordlens/internal/config"
	"github.com/wordlens/wordlens/internal/models"
	"github.com/wordlens/wordlens/internal/services/analysis"
	"github.com/wordlens/wordlens/internal/services/cache"
	"github.com/wordlens/wordlens/internal/services/database"
	"github.com/wordlens/wordlens/internal/services/embedding"
	"github.com/wordlens/wordlens/internal/services/llm"
	"github.com/wordlens/wordlens/internal/services/search"
	"github.com/wordlens/wordlens/internal/services/similarity"
	"github.com/wordlens/wordlens/internal/services/vectorstore"

	"github.com/gofiber/fiber/v2"
	fiberlog "github.com/gofiber/fiber/v2/log"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/pprof"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/google/uuid"
)

// Server represents a WordLens server instance.
type Server struct {
	config *config.Config
	app    *fiber.App

	store     *cache.MemoryStore
	redisTier *cache.RedisTier
	db        *database.DB
}

type serverServices struct {
	client      llm.Client
	analysisSvc *analysis.Service
	searchSvc   *search.Service
}

// New creates a new Server instance with the given configuration.
// The cfg parameter is required and must not be nil.
func New(cfg *config.Config) *Server {
	if cfg == nil {
		panic("config cannot be nil - use config.LoadFromFile() to create config")
	}
	return &Server{config: cfg}
}

// Run starts the server and blocks until shutdown.
func (s *Server) Run() error {
	s.config.ApplyDefaults()
	s.config.SetupLogLevel()

	port := s.config.Server.Port
	if port == "" {
		port = "8080"
	}
	listenAddr := ":" + port

	s.app = createFiberApp(s.config)

	if err := s.initializeInfrastructure(); err != nil {
		return err
	}
	defer s.closeInfrastructure()

	services, err := s.initializeServices()
	if err != nil {
		return err
	}

	setupMiddleware(s.app, s.config)
	s.setupRoutes(services)

	fmt.Printf("WordLens starting on %s\n", listenAddr)
	fmt.Printf("   Environment: %s\n", s.config.Server.Environment)
	fmt.Printf("   Go version: %s\n", runtime.Version())
	fmt.Printf("   GOMAXPROCS: %d\n", runtime.GOMAXPROCS(0))

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt)

	serverErrChan := make(chan error, 1)
	go func() {
		if err := s.app.Listen(listenAddr); err != nil {
			serverErrChan <- err
		}
	}()

	select {
	case sig := <-sigChan:
		fiberlog.Infof("Received signal: %v. Starting graceful shutdown...", sig)
	case err := <-serverErrChan:
		return fmt.Errorf("server error: %w", err)
	}

	fiberlog.Info("Server shutting down gracefully...")
	if err := s.app.ShutdownWithTimeout(30 * time.Second); err != nil {
		return fmt.Errorf("shutdown error: %w", err)
	}
	fiberlog.Info("Server shutdown completed successfully")

	return nil
}

func (s *Server) initializeInfrastructure() error {
	s.store = cache.NewMemoryStore(cache.MemoryStoreOptions{
		DefaultTTL:    time.Duration(s.config.Cache.DefaultTTLSeconds) * time.Second,
		MaxKeys:       s.config.Cache.MaxKeys,
		SweepInterval: time.Duration(s.config.Cache.SweepSeconds) * time.Second,
	})

	if s.config.Cache.RedisURL != "" {
		tier, err := cache.NewRedisTier(s.config.Cache.RedisURL, s.config.Cache.KeyPrefix)
		if err != nil {
			return fmt.Errorf("failed to create Redis tier: %w", err)
		}
		s.redisTier = tier
		fiberlog.Info("Redis cache tier initialized")
	} else {
		fiberlog.Info("Redis not configured - running with in-process cache only")
	}

	dbCfg := s.config.Database
	if dbCfg == nil {
		// Embeddings need somewhere durable to live even without an
		// explicitly configured database.
		dbCfg = &models.DatabaseConfig{Type: models.SQLite, FilePath: "wordlens.db"}
		fiberlog.Info("Database not configured - defaulting to local SQLite store")
	}

	db, err := database.New(*dbCfg)
	if err != nil {
		return fmt.Errorf("failed to create database connection: %w", err)
	}
	s.db = db
	fiberlog.Infof("Database (%s) initialized successfully", db.DriverName())

	if err := database.Migrate(db); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}
	fiberlog.Info("Database migrations completed successfully")

	return nil
}

func (s *Server) closeInfrastructure() {
	s.store.Stop()
	if err := s.redisTier.Close(); err != nil {
		fiberlog.Errorf("Failed to close Redis client: %v", err)
	}
	if s.db != nil {
		if err := s.db.Close(); err != nil {
			fiberlog.Errorf("Failed to close database connection: %v", err)
		}
	}
}

func (s *Server) initializeServices() (*serverServices, error) {
	providerName, providerCfg, ok := s.config.DefaultProvider()
	if !ok {
		return nil, fmt.Errorf("no language model provider configured")
	}

	client, err := llm.NewClient(providerName, providerCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s client: %w", providerName, err)
	}

	analysisSvc := analysis.NewService(client, s.store, s.redisTier, s.config.TTL)

	embedStore := vectorstore.New(s.db)
	if s.db.IsPostgres() && s.config.LocalEmbedding.Dimension > 0 {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := embedStore.EnsureNativeColumn(ctx, s.config.LocalEmbedding.Dimension); err != nil {
			fiberlog.Warnf("Native vector column unavailable, falling back to in-process scan: %v", err)
		}
		cancel()
	}

	embeddingTTL := time.Duration(s.config.TTL.EmbeddingSeconds) * time.Second
	remote := embedding.NewRemoteProvider(client, providerCfg.EmbeddingModel, s.store, embeddingTTL)

	local := embedding.NewLocalProvider(s.config.LocalEmbedding.Dimension)
	if path := s.config.LocalEmbedding.ModelPath; path != "" {
		if err := local.LoadModel(path); err != nil {
			fiberlog.Warnf("Failed to load local embedding model from %s: %v", path, err)
		} else {
			fiberlog.Infof("Local embedding model loaded from %s", path)
		}
	}

	providers := embedding.NewFactory(remote, local)

	engine := similarity.NewEngine(
		similarity.NewNative(embedStore),
		similarity.NewBruteForce(embedStore),
		s.store,
		time.Duration(s.config.TTL.SearchSeconds)*time.Second,
	)

	searchSvc := search.NewService(providers, embedStore, engine, s.config.Search.DefaultLimit, s.config.Search.DefaultThreshold)

	return &serverServices{
		client:      client,
		analysisSvc: analysisSvc,
		searchSvc:   searchSvc,
	}, nil
}

func (s *Server) setupRoutes(services *serverServices) {
	analyzeHandler := api.NewAnalyzeHandler(services.analysisSvc)
	searchHandler := api.NewSearchHandler(services.searchSvc)
	cacheHandler := api.NewCacheHandler(s.store, s.redisTier, services.searchSvc)
	healthHandler := api.NewHealthHandler(s.redisTier, s.db, services.client)

	s.app.Get("/", welcomeHandler())
	s.app.Get("/health", healthHandler.HealthCheck)

	v1 := s.app.Group("/v1")
	v1.Post("/analyze", analyzeHandler.Analyze)
	v1.Get("/words/:word/synonyms", analyzeHandler.Synonyms)
	v1.Get("/words/:word/antonyms", analyzeHandler.Antonyms)
	v1.Get("/words/:word/definition", analyzeHandler.Definition)
	v1.Post("/words/:word/embedding", searchHandler.IndexWord)
	v1.Post("/search", searchHandler.Search)
	v1.Post("/embeddings/model", searchHandler.LoadModel)
	v1.Delete("/cache", cacheHandler.Clear)
	v1.Get("/cache/stats", cacheHandler.Stats)
	v1.Get("/cache/similar-keys", cacheHandler.SimilarKeys)
}

func createFiberApp(cfg *config.Config) *fiber.App {
	isProd := cfg.IsProduction()

	return fiber.New(fiber.Config{
		AppName:              "WordLens v1.0",
		EnablePrintRoutes:    !isProd,
		ReadTimeout:          2 * time.Minute,
		WriteTimeout:         2 * time.Minute,
		IdleTimeout:          5 * time.Minute,
		ReadBufferSize:       8192,
		WriteBufferSize:      8192,
		CompressedFileSuffix: ".gz",
		CaseSensitive:        true,
		StrictRouting:        false,
		Network:              "tcp",
		ServerHeader:         "WordLens",
	})
}

func setupMiddleware(app *fiber.App, cfg *config.Config) {
	isProd := cfg.IsProduction()

	// Recover middleware (must be first)
	app.Use(recover.New(recover.Config{
		EnableStackTrace: !isProd,
	}))

	// Every request carries an ID, client-supplied or generated, and it is
	// echoed back so callers can correlate logs.
	app.Use(func(c *fiber.Ctx) error {
		id := c.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
			c.Request().Header.Set("X-Request-ID", id)
		}
		c.Set("X-Request-ID", id)
		return c.Next()
	})

	app.Use(limiter.New(limiter.Config{
		Max:               1000,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return fmt.Errorf("1000 requests per minute")
		},
	}))

	// Per-request timeout, overridable by header up to a hard cap. Analysis
	// fans out to a local model so the default leaves room for slow loads.
	app.Use(func(c *fiber.Ctx) error {
		const (
			defaultTimeout = 30 * time.Second
			maxTimeout     = 2 * time.Minute
		)

		timeout := defaultTimeout
		if customTimeout := c.Get("X-Request-Timeout"); customTimeout != "" {
			if d, err := time.ParseDuration(customTimeout); err == nil && d > 0 {
				timeout = min(d, maxTimeout)
			}
		}

		ctx, cancel := context.WithTimeout(c.UserContext(), timeout)
		defer cancel()
		c.SetUserContext(ctx)

		return c.Next()
	})

	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))

	if isProd {
		app.Use(logger.New(logger.Config{
			Format: "${time} ${status} ${method} ${path} ${latency} ${bytesSent}b\n",
			Output: os.Stdout,
		}))
	} else {
		app.Use(logger.New(logger.Config{
			Format: "[${time}] ${status} - ${latency} ${method} ${path} ${error}\n",
			Output: os.Stdout,
		}))
	}

	allowedOrigins := cfg.Server.AllowedOrigins
	if allowedOrigins == "" {
		allowedOrigins = "*"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:  allowedOrigins,
		AllowHeaders:  "Origin, Content-Type, Accept, Authorization, X-Request-ID, X-Request-Timeout",
		AllowMethods:  "GET, POST, PUT, DELETE, OPTIONS",
		MaxAge:        86400,
		ExposeHeaders: "Content-Length, Content-Type, X-Request-ID",
	}))

	// Profiler (dev only)
	if !isProd {
		app.Use(pprof.New())
	}
}

func welcomeHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message":    "Welcome to WordLens!",
			"version":    "1.0.0",
			"go_version": runtime.Version(),
			"status":     "running",
			"endpoints": fiber.Map{
				"analyze": "/v1/analyze",
				"words":   "/v1/words/:word/synonyms",
				"search":  "/v1/search",
				"cache":   "/v1/cache/stats",
				"health":  "/health",
			},
		})
	}
}
