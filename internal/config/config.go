package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all configuration for the application
type Config struct {
	Discord Discord
	Redis   Redis
	Storage Storage
	Player  Player
	HTTP    HTTP
}

// Discord holds Discord-specific configuration
type Discord struct {
	Token     string
	AppID     string
	GuildID   string // Optional: for guild-specific commands
	PublicKey string // Hex-encoded Ed25519 key, webhook deployment only
}

// Redis holds Redis-specific configuration
type Redis struct {
	Addr     string
	Password string
	DB       int
}

// Storage holds object storage and local cache configuration
type Storage struct {
	Namespace   string
	Bucket      string
	Region      string
	TenancyID   string
	UserID      string
	Fingerprint string
	PrivateKey  string
	CacheDir    string
}

// Player holds playback configuration
type Player struct {
	// TrackKey is the single configured track streamed by /player play
	TrackKey string

	// ReconnectWait bounds how long a dropped voice connection may
	// recover before the session is torn down
	ReconnectWait time.Duration

	// SolitudeDelay is how long the bot waits alone in a channel
	// before disconnecting
	SolitudeDelay time.Duration

	// SweepInterval is the live-session cleanup period
	SweepInterval time.Duration

	// ExpiryInterval is the persisted-record expiry sweep period
	ExpiryInterval time.Duration
}

// HTTP holds the HTTP sidecar configuration
type HTTP struct {
	Addr string
}

// Load loads configuration for the gateway deployment
func Load() (*Config, error) {
	cfg := load()

	// Validate required fields
	if cfg.Discord.Token == "" {
		return nil, fmt.Errorf("DISCORD_TOKEN is required")
	}
	if cfg.Discord.AppID == "" {
		return nil, fmt.Errorf("DISCORD_APP_ID is required")
	}

	return cfg, nil
}

// LoadWebhook loads configuration for the webhook deployment, which
// verifies request signatures rather than holding a gateway session.
func LoadWebhook() (*Config, error) {
	cfg := load()

	if cfg.Discord.PublicKey == "" {
		return nil, fmt.Errorf("DISCORD_PUBLIC_KEY is required")
	}

	return cfg, nil
}

func load() *Config {
	return &Config{
		Discord: Discord{
			Token:     os.Getenv("DISCORD_TOKEN"),
			AppID:     os.Getenv("DISCORD_APP_ID"),
			GuildID:   os.Getenv("DISCORD_GUILD_ID"),
			PublicKey: os.Getenv("DISCORD_PUBLIC_KEY"),
		},
		Redis: Redis{
			Addr:     getEnvOrDefault("REDIS_ADDR", "localhost:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       getEnvAsIntOrDefault("REDIS_DB", 0),
		},
		Storage: Storage{
			Namespace:   os.Getenv("OCI_NAMESPACE"),
			Bucket:      getEnvOrDefault("OCI_BUCKET_NAME", "audio-assets"),
			Region:      os.Getenv("OCI_REGION"),
			TenancyID:   os.Getenv("OCI_TENANCY"),
			UserID:      os.Getenv("OCI_USER_ID"),
			Fingerprint: os.Getenv("OCI_FINGERPRINT"),
			PrivateKey:  os.Getenv("OCI_PRIVATE_KEY"),
			CacheDir:    getEnvOrDefault("AUDIO_CACHE_DIR", "audio-cache"),
		},
		Player: Player{
			TrackKey:       getEnvOrDefault("PLAYER_TRACK_KEY", "soiree-relaxante-a-la-maison-nhac-jazz-thu-gian.mp3"),
			ReconnectWait:  getEnvAsDurationOrDefault("PLAYER_RECONNECT_WAIT", 5*time.Second),
			SolitudeDelay:  getEnvAsDurationOrDefault("PLAYER_SOLITUDE_DELAY", 2*time.Minute),
			SweepInterval:  getEnvAsDurationOrDefault("PLAYER_SWEEP_INTERVAL", time.Minute),
			ExpiryInterval: getEnvAsDurationOrDefault("POMODORO_EXPIRY_INTERVAL", time.Minute),
		},
		HTTP: HTTP{
			Addr: getEnvOrDefault("HTTP_ADDR", ":3000"),
		},
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil && d > 0 {
			return d
		}
	}
	return defaultValue
}
