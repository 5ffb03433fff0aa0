package config

import (
	"time"

	"github.com/spf13/viper"

	"github.com/TejVaidya/book-reviews/pkg/database"
)

type Config struct {
	Addr       string
	DBPath     string
	JWTSecret  string
	JWTIssuer  string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
	LogLevel   string
}

// Load reads configuration from the environment with sane defaults.
// Every key can be overridden via BOOKREVIEWS_<KEY>, e.g.
// BOOKREVIEWS_JWT_SECRET or BOOKREVIEWS_ACCESS_TTL=30m.
func Load() *Config {
	v := viper.New()

	v.SetDefault("addr", ":8080")
	v.SetDefault("db_path", database.DefaultPath())
	// dev default (change for demo / production)
	v.SetDefault("jwt_secret", "dev-secret-change-me")
	v.SetDefault("jwt_issuer", "book-reviews")
	v.SetDefault("access_ttl", 15*time.Minute)
	v.SetDefault("refresh_ttl", 7*24*time.Hour)
	v.SetDefault("log_level", "info")

	v.SetEnvPrefix("BOOKREVIEWS")
	v.AutomaticEnv()

	return &Config{
		Addr:       v.GetString("addr"),
		DBPath:     v.GetString("db_path"),
		JWTSecret:  v.GetString("jwt_secret"),
		JWTIssuer:  v.GetString("jwt_issuer"),
		AccessTTL:  v.GetDuration("access_ttl"),
		RefreshTTL: v.GetDuration("refresh_ttl"),
		LogLevel:   v.GetString("log_level"),
	}
}
