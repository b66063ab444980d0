package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Auth      AuthConfig      `mapstructure:"auth"`
	Panel     PanelConfig     `mapstructure:"panel"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Shield    ShieldConfig    `mapstructure:"shield"`
	WebSocket WebSocketConfig `mapstructure:"websocket"`
}

type ServerConfig struct {
	Port int    `mapstructure:"port"`
	Host string `mapstructure:"host"`
	Mode string `mapstructure:"mode"`
}

type AuthConfig struct {
	JWTSecret   string `mapstructure:"jwt_secret"`
	TokenExpiry int    `mapstructure:"token_expiry"` // seconds
}

// PanelConfig points at the upstream panel API every business endpoint
// proxies to.
type PanelConfig struct {
	URL            string `mapstructure:"url"`
	APIKey         string `mapstructure:"api_key"`
	RequestTimeout int    `mapstructure:"request_timeout"` // seconds
	EventPollSecs  int    `mapstructure:"event_poll_interval"`
}

type LoggingConfig struct {
	Level string `mapstructure:"level"`
}

// ShieldConfig carries the traffic-shield thresholds. All values have
// defaults; none of the stock numbers carries demonstrated tuning rationale,
// so operators are expected to adjust them per deployment.
type ShieldConfig struct {
	Enabled bool `mapstructure:"enabled"`

	RateWindowSecs    int `mapstructure:"rate_window"`
	RateMax           int `mapstructure:"rate_max"`
	RateSuspiciousMax int `mapstructure:"rate_suspicious_max"`
	RateAdminMax      int `mapstructure:"rate_admin_max"`
	SuspicionCutoff   int `mapstructure:"suspicion_cutoff"`

	BurstWindowMs int `mapstructure:"burst_window_ms"`
	MaxBurst      int `mapstructure:"max_burst"`

	BlacklistTTLSecs int `mapstructure:"blacklist_ttl"`

	SuspicionTTLSecs int `mapstructure:"suspicion_ttl"`
	BanThreshold     int `mapstructure:"ban_threshold"`

	SpeedWindowSecs    int `mapstructure:"speed_window"`
	SpeedBaseThreshold int `mapstructure:"speed_base_threshold"`
	SpeedMinThreshold  int `mapstructure:"speed_min_threshold"`
	SpeedMaxDelayMs    int `mapstructure:"speed_max_delay_ms"`

	MaxTrackedClients int `mapstructure:"max_tracked_clients"`
}

type WebSocketConfig struct {
	PingInterval int `mapstructure:"ping_interval"` // seconds
	WriteTimeout int `mapstructure:"write_timeout"` // seconds
}

// Load reads configuration from configs/config.yaml plus environment
// overrides. A missing file is fine; defaults cover everything but secrets.
func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath(".")

	setDefaults()

	viper.AutomaticEnv()
	viper.BindEnv("auth.jwt_secret", "JWT_SECRET")
	viper.BindEnv("panel.url", "PANEL_URL")
	viper.BindEnv("panel.api_key", "PANEL_API_KEY")
	viper.BindEnv("server.port", "PORT")
	viper.BindEnv("logging.level", "LOG_LEVEL")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if cfg.Auth.JWTSecret == "" {
		return nil, fmt.Errorf("auth.jwt_secret is required (set JWT_SECRET)")
	}

	return &cfg, nil
}

func setDefaults() {
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.mode", "production")

	viper.SetDefault("auth.token_expiry", 86400)

	viper.SetDefault("panel.request_timeout", 15)
	viper.SetDefault("panel.event_poll_interval", 10)

	viper.SetDefault("logging.level", "info")

	viper.SetDefault("shield.enabled", true)
	viper.SetDefault("shield.rate_window", 60)
	viper.SetDefault("shield.rate_max", 60)
	viper.SetDefault("shield.rate_suspicious_max", 20)
	viper.SetDefault("shield.rate_admin_max", 300)
	viper.SetDefault("shield.suspicion_cutoff", 5)
	viper.SetDefault("shield.burst_window_ms", 1000)
	viper.SetDefault("shield.max_burst", 20)
	viper.SetDefault("shield.blacklist_ttl", 3600)
	viper.SetDefault("shield.suspicion_ttl", 900)
	viper.SetDefault("shield.ban_threshold", 10)
	viper.SetDefault("shield.speed_window", 900)
	viper.SetDefault("shield.speed_base_threshold", 100)
	viper.SetDefault("shield.speed_min_threshold", 30)
	viper.SetDefault("shield.speed_max_delay_ms", 2000)
	viper.SetDefault("shield.max_tracked_clients", 10000)

	viper.SetDefault("websocket.ping_interval", 30)
	viper.SetDefault("websocket.write_timeout", 10)
}

// RateWindow returns the limiter window as a duration.
func (s ShieldConfig) RateWindow() time.Duration {
	return time.Duration(s.RateWindowSecs) * time.Second
}

// BurstWindow returns the burst window as a duration.
func (s ShieldConfig) BurstWindow() time.Duration {
	return time.Duration(s.BurstWindowMs) * time.Millisecond
}

// BlacklistTTL returns the ban lifetime as a duration.
func (s ShieldConfig) BlacklistTTL() time.Duration {
	return time.Duration(s.BlacklistTTLSecs) * time.Second
}

// SuspicionTTL returns the score decay window as a duration.
func (s ShieldConfig) SuspicionTTL() time.Duration {
	return time.Duration(s.SuspicionTTLSecs) * time.Second
}

// SpeedWindow returns the throttle window as a duration.
func (s ShieldConfig) SpeedWindow() time.Duration {
	return time.Duration(s.SpeedWindowSecs) * time.Second
}

// SpeedMaxDelay returns the throttle delay cap as a duration.
func (s ShieldConfig) SpeedMaxDelay() time.Duration {
	return time.Duration(s.SpeedMaxDelayMs) * time.Millisecond
}
