package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Mode string `mapstructure:"mode"`
	Port int    `mapstructure:"port"`

	// Secret signs identity tokens and TURN credentials.
	Secret string `mapstructure:"secret"`

	Redis RedisConfig `mapstructure:"redis"`

	// SessionTTL is how long a session survives without a heartbeat.
	// HeartbeatInterval is advertised to clients and must stay at
	// most half the TTL so one missed beat does not expire a session.
	SessionTTL        time.Duration `mapstructure:"session_ttl"`
	HeartbeatInterval time.Duration `mapstructure:"heartbeat_interval"`

	ReadLimit        int64         `mapstructure:"read_limit"`
	SendBuffer       int           `mapstructure:"send_buffer"`
	SignalRateLimit  int           `mapstructure:"signal_rate_limit"`
	SignalRateWindow time.Duration `mapstructure:"signal_rate_window"`

	ICE ICEConfig `mapstructure:"ice"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type ICEConfig struct {
	// STUNURLs are handed to clients as-is.
	STUNURLs []string `mapstructure:"stun_urls"`

	// TURN credentials are minted per request with a bounded lifetime.
	TURNServerIP string        `mapstructure:"turn_server_ip"`
	TURNSecret   string        `mapstructure:"turn_secret"`
	TURNCredTTL  time.Duration `mapstructure:"turn_cred_ttl"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	env := os.Getenv("CONFIG_ENV")
	if env == "" {
		env = "dev"
	}
	fileName := fmt.Sprintf("config/config.%s.yaml", env)

	v.SetConfigFile(fileName)
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.SetDefault("mode", "release")
	v.SetDefault("port", 8080)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.db", 0)
	v.SetDefault("session_ttl", "10m")
	v.SetDefault("heartbeat_interval", "5m")
	v.SetDefault("read_limit", 32768)
	v.SetDefault("send_buffer", 32)
	v.SetDefault("signal_rate_limit", 60)
	v.SetDefault("signal_rate_window", "10s")
	v.SetDefault("ice.stun_urls", []string{"stun:stun.l.google.com:19302"})
	v.SetDefault("ice.turn_cred_ttl", "24h")

	if err := v.ReadInConfig(); err != nil {
		fmt.Printf("⚠️ Config file not found (%s), using defaults\n", fileName)
	} else {
		fmt.Printf("✅ Loaded config: %s\n", fileName)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if cfg.HeartbeatInterval*2 > cfg.SessionTTL {
		return nil, fmt.Errorf("heartbeat_interval %s must be at most half of session_ttl %s",
			cfg.HeartbeatInterval, cfg.SessionTTL)
	}

	fmt.Printf("🧩 Mode: %s | Port: %d | Redis: %s\n", cfg.Mode, cfg.Port, cfg.Redis.Addr)
	return &cfg, nil
}
