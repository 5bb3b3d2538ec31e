package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// TicketMode selects how ticket channels are named and guarded.
type TicketMode string

const (
	// TicketModeSequential names tickets Inquire-NNN with no per-user guard.
	TicketModeSequential TicketMode = "sequential"
	// TicketModePerUser names tickets support-<user>-NNN and allows one open ticket per user.
	TicketModePerUser TicketMode = "per_user"
)

// Config aggregates runtime configuration for the bot.
type Config struct {
	App       AppConfig
	Discord   DiscordConfig
	Tickets   TicketsConfig
	AutoRole  AutoRoleConfig
	Postgres  PostgresConfig
	Redis     RedisConfig
	Index     IndexConfig
	Logger    LoggerConfig
	Telemetry TelemetryConfig
}

// AppConfig controls process level behavior and the ops HTTP server.
type AppConfig struct {
	Name          string
	Env           string
	Host          string
	Port          string
	Version       string
	HealthEnabled bool
}

// DiscordConfig holds gateway credentials.
type DiscordConfig struct {
	Token         string
	GuildID       string
	ApplicationID string
}

// TicketsConfig controls the ticket lifecycle.
type TicketsConfig struct {
	StaffRoleID       string
	CategoryID        string
	ArchiveCategoryID string
	Mode              TicketMode
	DeleteDelay       time.Duration
	PageSize          int
	BrandName         string
}

// AutoRoleConfig controls the role granted to joining members.
type AutoRoleConfig struct {
	Enabled          bool
	RoleID           string
	WelcomeChannelID string
}

// PostgresConfig holds DB connection values for the ticket audit history.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// IndexConfig selects where ticket creators are recorded.
type IndexConfig struct {
	Backend    string
	SQLitePath string
	RedisKey   string
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// TelemetryConfig configures OTLP trace export.
type TelemetryConfig struct {
	Endpoint string
	Insecure bool
}

// Load reads configuration from environment variables, applying defaults
// where possible. envFiles are loaded first; with none, a local .env is
// used when present. Variables already set in the environment win.
func Load(envFiles ...string) (*Config, error) {
	_ = godotenv.Load(envFiles...)

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	deleteDelay, err := time.ParseDuration(getEnv("TICKET_DELETE_DELAY", "5s"))
	if err != nil {
		return nil, fmt.Errorf("invalid TICKET_DELETE_DELAY: %w", err)
	}

	cfg := &Config{
		App: AppConfig{
			Name:          getEnv("APP_NAME", "ticket-bot"),
			Env:           getEnv("APP_ENV", "development"),
			Host:          getEnv("APP_HOST", "0.0.0.0"),
			Port:          getEnv("APP_PORT", "8080"),
			Version:       getEnv("APP_VERSION", "dev"),
			HealthEnabled: getEnvAsBool("APP_HEALTH_ENABLED", true),
		},
		Discord: DiscordConfig{
			Token:         os.Getenv("DISCORD_BOT_TOKEN"),
			GuildID:       os.Getenv("DISCORD_GUILD_ID"),
			ApplicationID: os.Getenv("DISCORD_APPLICATION_ID"),
		},
		Tickets: TicketsConfig{
			StaffRoleID:       getEnv("SUPPORT_ROLE_ID", "1411885432702111767"),
			CategoryID:        getEnv("TICKET_CATEGORY_ID", "1456583891568558142"),
			ArchiveCategoryID: getEnv("TRANSCRIPT_CATEGORY_ID", "1456585966935478355"),
			Mode:              TicketMode(strings.ToLower(getEnv("TICKET_MODE", string(TicketModeSequential)))),
			DeleteDelay:       deleteDelay,
			PageSize:          getEnvAsInt("TICKET_TRANSCRIPT_PAGE_SIZE", 100),
			BrandName:         getEnv("TICKET_BRAND_NAME", "CoreDev Studio"),
		},
		AutoRole: AutoRoleConfig{
			Enabled:          getEnvAsBool("AUTO_ROLE_ENABLED", true),
			RoleID:           os.Getenv("AUTO_ROLE_ID"),
			WelcomeChannelID: os.Getenv("WELCOME_CHANNEL_ID"),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       int32(getEnvAsInt("POSTGRES_MAX_CONNS", 5)),
			MinConns:       int32(getEnvAsInt("POSTGRES_MIN_CONNS", 1)),
			RunMigrations:  getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true),
			ConnMaxIdleSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30)),
			ConnMaxLifeSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300)),
		},
		Redis: RedisConfig{
			Addr:     os.Getenv("REDIS_ADDR"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Index: IndexConfig{
			Backend:    strings.ToLower(getEnv("CREATOR_INDEX_BACKEND", "sqlite")),
			SQLitePath: getEnv("CREATOR_INDEX_PATH", "data/tickets.db"),
			RedisKey:   getEnv("CREATOR_INDEX_REDIS_KEY", "ticketbot:tickets"),
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Telemetry: TelemetryConfig{
			Endpoint: os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
			Insecure: getEnvAsBool("OTEL_EXPORTER_OTLP_INSECURE", false),
		},
	}

	return cfg, nil
}

// Validate reports configuration that would prevent the bot from running.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Discord.Token) == "" {
		return errors.New("DISCORD_BOT_TOKEN is required")
	}
	switch c.Tickets.Mode {
	case TicketModeSequential, TicketModePerUser:
	default:
		return fmt.Errorf("invalid TICKET_MODE %q", c.Tickets.Mode)
	}
	switch c.Index.Backend {
	case "memory", "sqlite":
	case "redis":
		if c.Redis.Addr == "" {
			return errors.New("CREATOR_INDEX_BACKEND=redis requires REDIS_ADDR")
		}
	default:
		return fmt.Errorf("invalid CREATOR_INDEX_BACKEND %q", c.Index.Backend)
	}
	if c.Tickets.PageSize <= 0 || c.Tickets.PageSize > 100 {
		return fmt.Errorf("TICKET_TRANSCRIPT_PAGE_SIZE must be in 1..100, got %d", c.Tickets.PageSize)
	}
	return nil
}

// Addr returns the ops HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}
