// main.go
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"stay-concierge/cmd"
	"stay-concierge/internal/data/cache"
	"stay-concierge/internal/data/repository"
	"stay-concierge/internal/wire"
	"stay-concierge/pkg/database"
	"stay-concierge/pkg/utils"

	"go.uber.org/zap"
)

const sessionCleanupInterval = time.Hour

func main() {
	// Load config
	config, err := utils.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logger, err := utils.InitLogger(config.App)
	if err != nil {
		log.Printf("Failed to init logger: %v. Using standard log.", err)
		logger, _ = zap.NewProduction()
	}
	defer logger.Sync()

	logger.Info("Starting application",
		zap.String("app", config.App.Name),
		zap.String("port", config.App.Port),
		zap.Bool("debug", config.App.Debug),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Connect to database
	db, err := database.InitDB(ctx, config.Database, logger)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	logger.Info("Database connected successfully")

	// Redis opsional, tanpa Redis kalender dihitung langsung dari database
	redisClient, err := database.InitRedis(ctx, config.Redis, logger)
	if err != nil {
		logger.Warn("Redis unavailable, calendar cache disabled", zap.Error(err))
		redisClient = nil
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	availabilityCache := cache.NewAvailabilityCache(redisClient, config.Redis.CalendarTTL, logger)

	// Initialize all repositories
	repos := repository.NewRepository(db, logger)

	go cleanSessions(ctx, repos.Session, logger)

	// Wire all dependencies
	app := wire.Wiring(repos, availabilityCache, config, logger)

	// Start server
	logger.Info("Starting HTTP server", zap.String("port", config.App.Port))

	if err := cmd.APIServer(ctx, app.Router, config.App, logger); err != nil {
		logger.Fatal("Server error", zap.Error(err))
	}
}

// cleanSessions purges long-expired sessions until ctx is cancelled.
func cleanSessions(ctx context.Context, sessions repository.SessionRepository, logger *zap.Logger) {
	ticker := time.NewTicker(sessionCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := sessions.CleanExpiredSessions(ctx); err != nil {
				logger.Warn("Session cleanup failed", zap.Error(err))
			}
		}
	}
}
