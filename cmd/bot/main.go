package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/calmhive/pomodoro-bot-discord/internal/clients/objectstore"
	"github.com/calmhive/pomodoro-bot-discord/internal/config"
	"github.com/calmhive/pomodoro-bot-discord/internal/handlers/discord"
	"github.com/calmhive/pomodoro-bot-discord/internal/repositories/playersessions"
	"github.com/calmhive/pomodoro-bot-discord/internal/repositories/pomodoros"
	"github.com/calmhive/pomodoro-bot-discord/internal/repositories/streaks"
	"github.com/calmhive/pomodoro-bot-discord/internal/server"
	"github.com/calmhive/pomodoro-bot-discord/internal/services"
	"github.com/calmhive/pomodoro-bot-discord/internal/services/assets"
	"github.com/calmhive/pomodoro-bot-discord/internal/services/cleanup"
	"github.com/calmhive/pomodoro-bot-discord/internal/storage/trackcache"
	"github.com/calmhive/pomodoro-bot-discord/internal/voice"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	} else {
		log.Println("Loaded .env file")
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	log.Printf("Application ID: %s", cfg.Discord.AppID)
	if cfg.Discord.GuildID != "" {
		log.Printf("Guild ID: %s", cfg.Discord.GuildID)
	}

	// Create Discord session
	dg, err := discordgo.New("Bot " + cfg.Discord.Token)
	if err != nil {
		log.Fatalf("Failed to create Discord session: %v", err)
	}
	dg.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildVoiceStates

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

	// The connector doubles as the voice occupancy reader for cleanup
	connector := voice.NewDiscordConnector(dg)

	// Create service provider config
	providerConfig := &services.ProviderConfig{
		AssetService:  assetService,
		Connector:     connector,
		TrackKey:      cfg.Player.TrackKey,
		ReconnectWait: cfg.Player.ReconnectWait,
	}

	// Keep Redis client for cleanup
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
		providerConfig.SessionRepository = playersessions.NewRedis(redisClient)
		providerConfig.StreakRepository = streaks.NewRedis(redisClient)
		pomodoroRepo = pomodoros.NewRedis(redisClient)
		log.Println("Using Redis for persistence")
	}
	pingCancel()

	// Create service provider
	serviceProvider := services.NewProvider(providerConfig)

	// Create Discord handler
	handler := discord.NewHandler(&discord.HandlerConfig{
		ServiceProvider: serviceProvider,
	})

	// Create cleanup service
	cleanupService := cleanup.NewService(&cleanup.ServiceConfig{
		Player:         serviceProvider.PlayerService,
		State:          connector,
		Pomodoros:      pomodoroRepo,
		SweepInterval:  cfg.Player.SweepInterval,
		ExpiryInterval: cfg.Player.ExpiryInterval,
		SolitudeDelay:  cfg.Player.SolitudeDelay,
	})

	// Register gateway handlers
	dg.AddHandler(handler.HandleInteraction)
	dg.AddHandler(func(_ *discordgo.Session, vsu *discordgo.VoiceStateUpdate) {
		cleanupService.HandleVoiceStateUpdate(vsu.UserID, vsu.GuildID, vsu.ChannelID)
	})

	// Open connection to Discord
	err = dg.Open()
	if err != nil {
		log.Printf("Failed to open Discord connection: %v", err)
		return
	}
	defer func() {
		if closeErr := dg.Close(); closeErr != nil {
			log.Printf("Failed to close Discord connection: %v", closeErr)
		}
	}()

	// Register commands
	// Use empty string for global commands, or set a specific guild ID for testing
	if err := handler.RegisterCommands(dg, cfg.Discord.GuildID); err != nil {
		log.Printf("Failed to register commands: %v", err)
		return
	}

	if cfg.Discord.GuildID != "" {
		log.Printf("Registered commands for guild: %s", cfg.Discord.GuildID)
	} else {
		log.Println("Registered global commands (may take up to 1 hour to propagate)")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Release any live handles whose records were lost while the bot
	// was down
	if err := serviceProvider.PlayerService.Reconcile(ctx); err != nil {
		log.Printf("Startup reconcile failed: %v", err)
	}

	// Start background sweeps
	go cleanupService.StartLiveSweep(ctx)
	go cleanupService.StartExpirySweep(ctx)

	// HTTP sidecar serving health and cached assets
	httpServer := &http.Server{
		Addr: cfg.HTTP.Addr,
		Handler: server.New(&server.Config{
			Dispatcher: handler.Dispatcher(),
			Assets:     assetService,
		}).Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.Printf("HTTP server listening on %s", cfg.HTTP.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("HTTP server error: %v", err)
		}
	}()

	fmt.Println("Bot is now running. Press CTRL-C to exit.")

	// Wait for interrupt signal
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

	// Clean up Redis connection if we have one
	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			log.Printf("Error closing Redis connection: %v", err)
		} else {
			log.Println("Closed Redis connection")
		}
	}
}
