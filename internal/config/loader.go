package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"

	"github.com/example/room-reservations/internal/persistence"
)

const prefix = "RESERVATIONS_"

// Store backends accepted by RESERVATIONS_STORE.
const (
	StoreSQLite = "sqlite"
	StoreRedis  = "redis"
	StoreMemory = "memory"
)

// SMTP holds outbound mail settings. An empty Host disables mail.
type SMTP struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}

// Enabled reports whether mail delivery is configured.
func (s SMTP) Enabled() bool { return s.Host != "" }

// Config captures environment driven configuration values for the reservation service.
type Config struct {
	HTTPPort         int
	Store            string
	DatabasePath     string
	Slot             string
	RedisURL         string
	AMQPURL          string
	AMQPExchange     string
	SMTP             SMTP
	ReminderInterval time.Duration
	LogLevel         slog.Level
	Location         *time.Location
}

// Load parses configuration values from the process environment.
//
// Without arguments a .env file in the working directory is read when present.
// Explicit env files must exist. Variables already set in the environment win
// over file entries. Missing and invalid entries are reported together.
func Load(envFiles ...string) (Config, error) {
	if len(envFiles) == 0 {
		_ = godotenv.Load()
	} else if err := godotenv.Load(envFiles...); err != nil {
		return Config{}, fmt.Errorf("failed to load env file: %w", err)
	}

	cfg := Config{
		HTTPPort:         8080,
		Store:            StoreSQLite,
		DatabasePath:     "./data/reservations.db",
		Slot:             persistence.DefaultSlot,
		AMQPExchange:     "reservations",
		SMTP:             SMTP{Port: 587},
		ReminderInterval: time.Minute,
		LogLevel:         slog.LevelInfo,
		Location:         time.UTC,
	}

	missing := make([]string, 0, 2)
	invalid := make([]string, 0, 2)

	if value := lookup("HTTP_PORT"); value != "" {
		port, err := strconv.Atoi(value)
		if err != nil || port <= 0 || port > 65535 {
			invalid = append(invalid, prefix+"HTTP_PORT")
		} else {
			cfg.HTTPPort = port
		}
	}

	if value := lookup("STORE"); value != "" {
		switch strings.ToLower(value) {
		case StoreSQLite, StoreRedis, StoreMemory:
			cfg.Store = strings.ToLower(value)
		default:
			invalid = append(invalid, prefix+"STORE")
		}
	}

	if value := lookup("DATABASE_PATH"); value != "" {
		cfg.DatabasePath = value
	}
	if value := lookup("SLOT"); value != "" {
		cfg.Slot = value
	}

	cfg.RedisURL = lookup("REDIS_URL")
	if cfg.Store == StoreRedis && cfg.RedisURL == "" {
		missing = append(missing, prefix+"REDIS_URL")
	}

	cfg.AMQPURL = lookup("AMQP_URL")
	if value := lookup("AMQP_EXCHANGE"); value != "" {
		cfg.AMQPExchange = value
	}

	cfg.SMTP.Host = lookup("SMTP_HOST")
	cfg.SMTP.User = lookup("SMTP_USER")
	cfg.SMTP.Password = os.Getenv(prefix + "SMTP_PASSWORD")
	cfg.SMTP.From = lookup("SMTP_FROM")
	if value := lookup("SMTP_PORT"); value != "" {
		port, err := strconv.Atoi(value)
		if err != nil || port <= 0 || port > 65535 {
			invalid = append(invalid, prefix+"SMTP_PORT")
		} else {
			cfg.SMTP.Port = port
		}
	}
	if cfg.SMTP.Enabled() && cfg.SMTP.From == "" {
		missing = append(missing, prefix+"SMTP_FROM")
	}

	if value := lookup("REMINDER_INTERVAL"); value != "" {
		interval, err := time.ParseDuration(value)
		if err != nil || interval <= 0 {
			invalid = append(invalid, prefix+"REMINDER_INTERVAL")
		} else {
			cfg.ReminderInterval = interval
		}
	}

	if value := lookup("LOG_LEVEL"); value != "" {
		if err := cfg.LogLevel.UnmarshalText([]byte(value)); err != nil {
			invalid = append(invalid, prefix+"LOG_LEVEL")
		}
	}

	if value := lookup("TIMEZONE"); value != "" {
		loc, err := time.LoadLocation(value)
		if err != nil {
			invalid = append(invalid, prefix+"TIMEZONE")
		} else {
			cfg.Location = loc
		}
	}

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}
	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("invalid environment values: %s", strings.Join(invalid, ", "))
	}

	return cfg, nil
}

// Addr returns the listen address for the HTTP server.
func (c Config) Addr() string {
	return ":" + strconv.Itoa(c.HTTPPort)
}

func lookup(key string) string {
	return strings.TrimSpace(os.Getenv(prefix + key))
}
