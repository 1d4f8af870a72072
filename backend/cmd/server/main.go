package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/bbrillhart19/vapor/backend/internal/embeddings"
	"github.com/bbrillhart19/vapor/backend/internal/graph"
	"github.com/bbrillhart19/vapor/backend/pkg/config"
	"github.com/bbrillhart19/vapor/backend/pkg/logger"
)

const (
	similarNeighbors = 10
	similarMinScore  = 0.65
)

func main() {
	if err := logger.Init(os.Getenv("ENV")); err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Sync()

	log := logger.Get()
	log.Info("Starting HTTP API server...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration", zap.Error(err))
	}

	ctx := context.Background()
	repo, err := graph.Connect(ctx, cfg.Neo4jURI, cfg.Neo4jUser, cfg.Neo4jPassword, cfg.Neo4jDatabase)
	if err != nil {
		log.Fatal("Failed to connect to Neo4j", zap.Error(err))
	}
	defer repo.Close(ctx)

	embedder, err := embeddings.FromConfig(cfg)
	if err != nil {
		log.Fatal("Failed to create embedding provider", zap.Error(err))
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(ginLogger(log))
	router.Use(gin.Recovery())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api")
	{
		api.GET("/status", func(c *gin.Context) {
			ctx := c.Request.Context()

			ok, err := repo.IsSetup(ctx)
			if err != nil {
				log.Error("Failed to check graph setup", zap.Error(err))
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check graph setup"})
				return
			}
			if !ok {
				c.JSON(http.StatusOK, gin.H{"setup": false})
				return
			}

			primary, err := repo.PrimaryUser(ctx)
			if err != nil {
				log.Error("Failed to fetch primary user", zap.Error(err))
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch primary user"})
				return
			}

			c.JSON(http.StatusOK, gin.H{
				"setup":        true,
				"steam_id":     primary.SteamID,
				"persona_name": primary.PersonaName,
			})
		})

		api.GET("/games/search", func(c *gin.Context) {
			query := c.Query("q")
			if query == "" {
				c.JSON(http.StatusBadRequest, gin.H{"error": "query parameter 'q' is required"})
				return
			}

			matches, err := repo.SearchGameByName(c.Request.Context(), query)
			if err != nil {
				log.Error("Game search failed", zap.Error(err))
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Search failed"})
				return
			}

			c.JSON(http.StatusOK, gin.H{"matches": matches})
		})

		api.GET("/games/:appid/about", func(c *gin.Context) {
			appID, err := strconv.ParseInt(c.Param("appid"), 10, 64)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid app id"})
				return
			}

			about, err := repo.GameDescription(c.Request.Context(), appID)
			if err != nil {
				log.Error("Failed to fetch game description", zap.Error(err))
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch description"})
				return
			}
			if about == "" {
				c.JSON(http.StatusNotFound, gin.H{"error": "No description for this game"})
				return
			}

			c.JSON(http.StatusOK, gin.H{"appid": appID, "about_the_game": about})
		})

		api.POST("/games/similar", func(c *gin.Context) {
			ctx := c.Request.Context()

			var req struct {
				Description string `json:"description" binding:"required"`
			}
			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}

			embedding, err := embedder.EmbedQuery(ctx, req.Description)
			if err != nil {
				log.Error("Failed to embed query", zap.Error(err))
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to embed query"})
				return
			}

			matches, err := repo.GameDescriptionsSemanticSearch(ctx, embedding, similarNeighbors, similarMinScore)
			if err != nil {
				log.Error("Semantic search failed", zap.Error(err))
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Search failed"})
				return
			}

			c.JSON(http.StatusOK, gin.H{"matches": matches})
		})
	}

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	log.Info("Server started", zap.String("port", cfg.Port))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited")
}

// ginLogger is a custom logger middleware for Gin
func ginLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()

		if raw != "" {
			path = path + "?" + raw
		}

		log.Info("HTTP Request",
			zap.Int("status", status),
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.Duration("latency", latency),
			zap.String("ip", c.ClientIP()),
		)
	}
}
