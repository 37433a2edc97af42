package web

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"cryptodash/agent"
	"cryptodash/config"
	"cryptodash/database"
	"cryptodash/llm"
	"cryptodash/market"
	"cryptodash/web/format"
	"cryptodash/web/handlers"
	"cryptodash/web/middleware"
)

type Server struct {
	router   *gin.Engine
	agents   *agent.Service
	markets  *market.Provider
	registry *llm.Registry
	store    *database.PostgresStore
	limiter  *middleware.ClientRateLimiter
	logger   *zap.Logger
	config   *config.Config
}

func NewServer(agents *agent.Service, markets *market.Provider, registry *llm.Registry, store *database.PostgresStore, logger *zap.Logger, cfg *config.Config) *Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(func(c *gin.Context) {
		c.Set("logger", logger)
		c.Next()
	})
	router.Use(middleware.CORSMiddleware(cfg.AllowedOrigins))

	limiter := middleware.NewClientRateLimiter(middleware.RateLimiterConfig{
		RequestsPerMinute: cfg.RateLimitPerMinute,
		BurstSize:         cfg.RateLimitBurstSize,
		CleanupInterval:   10 * time.Minute,
	}, logger)

	server := &Server{
		router:   router,
		agents:   agents,
		markets:  markets,
		registry: registry,
		store:    store,
		limiter:  limiter,
		logger:   logger,
		config:   cfg,
	}

	server.setupRoutes()
	return server
}

func (s *Server) setupRoutes() {
	s.router.Static("/static", "./web/static")
	s.router.GET("/", func(c *gin.Context) {
		c.File("./web/static/index.html")
	})

	marketHandler := handlers.NewMarketHandler(s.markets, s.logger)

	reformatter := format.New(format.DefaultVocabulary())
	// The interface value must stay nil when no store is configured.
	var analysisStore handlers.AnalysisStore
	if s.store != nil {
		analysisStore = s.store
	}
	analysisHandler := handlers.NewAnalysisHandler(s.agents, reformatter, analysisStore, s.logger)

	configHandler := handlers.NewConfigHandler(s.registry, s.logger)

	api := s.router.Group("/api")
	api.Use(middleware.RateLimitMiddleware(s.limiter))
	{
		api.GET("/cryptocurrencies", marketHandler.ListCryptocurrencies)
		api.GET("/market-data/:symbol", marketHandler.GetMarketData)
		api.GET("/analysis/:symbol", analysisHandler.Analyze)
		api.GET("/analysis/:symbol/history", analysisHandler.History)
		api.PUT("/config/keys", configHandler.UpdateKeys)
		api.POST("/backtest", configHandler.Backtest)
	}
}

func (s *Server) Start(ctx context.Context, addr string) error {
	s.logger.Info("Starting web server", zap.String("address", addr))

	srv := &http.Server{
		Addr:    addr,
		Handler: s.router,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Error("Web server failed to start", zap.Error(err))
		}
	}()

	<-ctx.Done()

	s.logger.Info("Shutting down web server")
	s.limiter.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
