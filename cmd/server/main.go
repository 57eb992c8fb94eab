package main

import (
	"context"
	"crypto/ed25519"
	"encoding/hex"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/calmhive/pomodoro-bot-discord/internal/clients/objectstore"
	"github.com/calmhive/pomodoro-bot-discord/internal/config"
	"github.com/calmhive/pomodoro-bot-discord/internal/handlers/discord"
	"github.com/calmhive/pomodoro-bot-discord/internal/repositories/pomodoros"
	"github.com/calmhive/pomodoro-bot-discord/internal/repositories/streaks"
	"github.com/calmhive/pomodoro-bot-discord/internal/server"
	"github.com/calmhive/pomodoro-bot-discord/internal/services"
	"github.com/calmhive/pomodoro-bot-discord/internal/services/assets"
	"github.com/calmhive/pomodoro-bot-discord/internal/services/cleanup"
	"github.com/calmhive/pomodoro-bot-discord/internal/storage/trackcache"
)

// The webhook deployment answers signed interaction callbacks over
// HTTP. It has no gateway session, so voice commands degrade to an
// availability notice while pomodoro and help work fully.
func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	} else {
		log.Println("Loaded .env file")
	}

	cfg, err := config.LoadWebhook()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	publicKey, err := hex.DecodeString(cfg.Discord.PublicKey)
	if err != nil || len(publicKey) != ed25519.PublicKeySize {
		log.Fatalf("DISCORD_PUBLIC_KEY must be a hex-encoded ed25519 public key")
	}

	// Create object store client and local track cache
	store, err := objectstore.New(&objectstore.Config{
		Namespace:   cfg.Storage.Namespace,
		Bucket:      cfg.Storage.Bucket,
		Region:      cfg.Storage.Region,
		TenancyID:   cfg.Storage.TenancyID,
		UserID:      cfg.Storage.UserID,
		Fingerprint: cfg.Storage.Fingerprint,
		PrivateKey:  cfg.Storage.PrivateKey,
	})
	if err != nil {
		log.Fatalf("Failed to create object store client: %v", err)
	}

	cache, err := trackcache.New(cfg.Storage.CacheDir)
	if err != nil {
		log.Fatalf("Failed to create track cache at %s: %v", cfg.Storage.CacheDir, err)
	}

	assetService := assets.NewService(&assets.ServiceConfig{
		ObjectStore: store,
		Cache:       cache,
	})

	providerConfig := &services.ProviderConfig{
		AssetService: assetService,
	}

	var redisClient *redis.Client
	var pomodoroRepo pomodoros.Repository = pomodoros.NewInMemoryRepository()

	log.Printf("Connecting to Redis at: %s", cfg.Redis.Addr)
	redisClient = redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	pingCtx, pingCancel := context.WithTimeout(context.Background(), 5*time.Second)
	if pingErr := redisClient.Ping(pingCtx).Err(); pingErr != nil {
		log.Printf("Failed to connect to Redis: %v", pingErr)
		log.Println("Falling back to in-memory repositories")
		_ = redisClient.Close()
		redisClient = nil
	} else {
		log.Println("Successfully connected to Redis")
		providerConfig.StreakRepository = streaks.NewRedis(redisClient)
		pomodoroRepo = pomodoros.NewRedis(redisClient)
		log.Println("Using Redis for persistence")
	}
	pingCancel()

	serviceProvider := services.NewProvider(providerConfig)

	handler := discord.NewHandler(&discord.HandlerConfig{
		ServiceProvider: serviceProvider,
	})

	cleanupService := cleanup.NewService(&cleanup.ServiceConfig{
		Pomodoros:      pomodoroRepo,
		ExpiryInterval: cfg.Player.ExpiryInterval,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go cleanupService.StartExpirySweep(ctx)

	httpServer := &http.Server{
		Addr: cfg.HTTP.Addr,
		Handler: server.New(&server.Config{
			Dispatcher: handler.Dispatcher(),
			Assets:     assetService,
			PublicKey:  publicKey,
		}).Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.Printf("HTTP server listening on %s", cfg.HTTP.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("HTTP server error: %v", err)
		}
	}()

	fmt.Println("Server is now running. Press CTRL-C to exit.")

	sc := make(chan os.Signal, 1)
	signal.Notify(sc, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	<-sc

	fmt.Println("Shutting down...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	}

	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			log.Printf("Error closing Redis connection: %v", err)
		}
	}
}
