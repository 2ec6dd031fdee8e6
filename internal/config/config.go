package config

import (
	"fmt"
	"os"
	"time"
)

type Config struct {
	Addr            string
	AllowedOrigins  string
	MatchmakingTick time.Duration
	WSBufferSize    int
}

func Default() Config {
	return Config{
		Addr:            ":3000",
		AllowedOrigins:  "http://localhost:5173",
		MatchmakingTick: time.Second,
		WSBufferSize:    1024,
	}
}

// Load reads overrides from CHESS_* environment variables.
func Load() (Config, error) {
	cfg := Default()
	if addr := os.Getenv("CHESS_ADDR"); addr != "" {
		cfg.Addr = addr
	}
	if origins := os.Getenv("CHESS_ALLOWED_ORIGINS"); origins != "" {
		cfg.AllowedOrigins = origins
	}
	if tick := os.Getenv("CHESS_MATCHMAKING_TICK"); tick != "" {
		d, err := time.ParseDuration(tick)
		if err != nil {
			return Config{}, fmt.Errorf("CHESS_MATCHMAKING_TICK: %w", err)
		}
		if d <= 0 {
			return Config{}, fmt.Errorf("CHESS_MATCHMAKING_TICK must be positive, got %s", d)
		}
		cfg.MatchmakingTick = d
	}
	return cfg, nil
}
