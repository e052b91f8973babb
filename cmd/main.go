package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"tutorhub/internal/catalog"
	"tutorhub/internal/config"
	"tutorhub/internal/httpapi"
	"tutorhub/internal/inquiry"
	"tutorhub/internal/registration"
	"tutorhub/internal/shared/eventbus"
	"tutorhub/internal/shared/logger"
	"tutorhub/internal/store/adapter/memory"
	"tutorhub/internal/store/adapter/mongodb"
	"tutorhub/internal/store/adapter/redisrelay"
	"tutorhub/internal/store/domain/repository"
	"tutorhub/internal/tutor"
)

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: Could not load .env file: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLogger := logger.NewLogger()
	appLogger.Info("Configuration loaded")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	bus := eventbus.NewEventBus(appLogger)

	var store repository.DocumentStore
	switch cfg.Store.Driver {
	case "memory":
		store = memory.New(bus, appLogger)
		appLogger.Info("Using in-memory document store")
	default:
		mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.Store.MongoURI))
		if err != nil {
			log.Fatalf("Failed to connect to MongoDB: %v", err)
		}
		defer func() {
			if err := mongoClient.Disconnect(context.Background()); err != nil {
				appLogger.Error("Failed to disconnect MongoDB: ", err)
			}
		}()

		if err := mongoClient.Ping(ctx, nil); err != nil {
			log.Fatalf("Failed to ping MongoDB: %v", err)
		}
		appLogger.Info("MongoDB connection established")

		store = mongodb.New(mongoClient.Database(cfg.Store.DatabaseName), bus, appLogger)
	}

	// Cross-instance change relay; only enabled when Redis is configured.
	relayCtx, relayCancel := context.WithCancel(context.Background())
	defer relayCancel()
	if cfg.Realtime.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Realtime.RedisAddr,
			Password: cfg.Realtime.RedisPassword,
		})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Fatalf("Failed to ping Redis: %v", err)
		}
		defer redisClient.Close()

		redisrelay.New(redisClient, bus, appLogger).Start(relayCtx)
		appLogger.Info("Redis change relay started")
	}

	statsOpt := catalog.WithStatsSampleLimit(cfg.StatsSampleLimit)
	classes := catalog.NewClassService(store, appLogger, statsOpt)
	services := httpapi.Services{
		Classes:       classes,
		Courses:       catalog.NewCourseService(store, appLogger, statsOpt),
		Registrations: registration.NewService(store, classes, appLogger, registration.WithStatsSampleLimit(cfg.StatsSampleLimit)),
		Tutors:        tutor.NewService(store, appLogger),
		Inquiries:     inquiry.NewService(store, appLogger),
	}

	app := httpapi.NewApp(store, services, cfg.Realtime.ClientSendChannelBuffer, appLogger)

	go func() {
		addr := cfg.Server.Host + ":" + cfg.Server.Port
		appLogger.Infof("Server listening on %s", addr)
		if err := app.Listen(addr); err != nil {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Graceful shutdown on SIGINT/SIGTERM.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...")
	relayCancel()
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		appLogger.Error("Server shutdown error: ", err)
	}
	appLogger.Info("Server stopped")
}
