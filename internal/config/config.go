package config

import (
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

type ServerConfig struct {
	Addr            string   `yaml:"addr"`
	ReadTimeoutSec  int      `yaml:"read_timeout_seconds"`
	WriteTimeoutSec int      `yaml:"write_timeout_seconds"`
	AllowedOrigins  []string `yaml:"allowed_origins"`
	RateLimitRPS    float64  `yaml:"rate_limit_rps"`
	RateLimitBurst  int      `yaml:"rate_limit_burst"`
}

type BookingConfig struct {
	OpenHour          int `yaml:"open_hour"`
	CloseHour         int `yaml:"close_hour"`
	SlotPrice         int `yaml:"slot_price"`
	SessionTTLMinutes int `yaml:"session_ttl_minutes"`
}

type BackupConfig struct {
	Enabled       bool   `yaml:"enabled"`
	IntervalHours int    `yaml:"interval_hours"`
	Path          string `yaml:"path"`
	RetentionDays int    `yaml:"retention_days"`
}

type RedisConfig struct {
	Address         string `yaml:"address"`
	Password        string `yaml:"password"`
	DB              int    `yaml:"db"`
	CacheTTLSeconds int    `yaml:"cache_ttl_seconds"`
}

type AdminConfig struct {
	Password      string `yaml:"password"`
	JWTSecret     string `yaml:"jwt_secret"`
	TokenTTLHours int    `yaml:"token_ttl_hours"`
}

type PaymentsConfig struct {
	UPIAddress string `yaml:"upi_address"`
	PayeeName  string `yaml:"payee_name"`
}

type TelegramConfig struct {
	BotToken    string `yaml:"bot_token"`
	AdminChatID int64  `yaml:"admin_chat_id"`
}

type SheetsConfig struct {
	Enabled         bool   `yaml:"enabled"`
	CredentialsFile string `yaml:"credentials_file"`
	SpreadsheetID   string `yaml:"spreadsheet_id"`
	SheetName       string `yaml:"sheet_name"`
}

type RemindersConfig struct {
	Enabled     bool   `yaml:"enabled"`
	Timezone    string `yaml:"timezone"`
	DailyHour   int    `yaml:"daily_hour"`
	DailyMinute int    `yaml:"daily_minute"`
}

type MonitoringConfig struct {
	HealthCheckPort   int  `yaml:"health_check_port"`
	PrometheusEnabled bool `yaml:"prometheus_enabled"`
	PrometheusPort    int  `yaml:"prometheus_port"`
}

type Config struct {
	Server ServerConfig `yaml:"server"`

	Booking BookingConfig `yaml:"booking"`

	Database struct {
		Path string `yaml:"path"`
	} `yaml:"database"`

	Backup BackupConfig `yaml:"backup"`

	Redis RedisConfig `yaml:"redis"`

	Admin AdminConfig `yaml:"admin"`

	Payments PaymentsConfig `yaml:"payments"`

	Telegram TelegramConfig `yaml:"telegram"`

	Sheets SheetsConfig `yaml:"sheets"`

	Reminders RemindersConfig `yaml:"reminders"`

	Monitoring MonitoringConfig `yaml:"monitoring"`
}

func Load(path string) (*Config, error) {
	if path == "" {
		path = "configs/config.yaml"
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	// Support ${ENV_VAR} placeholders in YAML config.
	data = []byte(os.ExpandEnv(string(data)))

	var cfg Config
	if err = yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	cfg.applyDefaults()

	if err = os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o755); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Server.ReadTimeoutSec <= 0 {
		c.Server.ReadTimeoutSec = 10
	}
	if c.Server.WriteTimeoutSec <= 0 {
		c.Server.WriteTimeoutSec = 10
	}
	if c.Server.RateLimitRPS <= 0 {
		c.Server.RateLimitRPS = 10
	}
	if c.Server.RateLimitBurst <= 0 {
		c.Server.RateLimitBurst = 20
	}
	if c.Booking.CloseHour <= 0 {
		c.Booking.CloseHour = 23
	}
	if c.Booking.SlotPrice <= 0 {
		c.Booking.SlotPrice = 600
	}
	if c.Booking.SessionTTLMinutes <= 0 {
		c.Booking.SessionTTLMinutes = 30
	}
	if c.Database.Path == "" {
		c.Database.Path = "data/sixers.db"
	}
	if c.Admin.TokenTTLHours <= 0 {
		c.Admin.TokenTTLHours = 12
	}
	if c.Payments.PayeeName == "" {
		c.Payments.PayeeName = "SixersCricket"
	}
	if c.Sheets.SheetName == "" {
		c.Sheets.SheetName = "Bookings"
	}
	if c.Reminders.Timezone == "" {
		c.Reminders.Timezone = "Asia/Kolkata"
	}
	if c.Reminders.DailyHour <= 0 {
		c.Reminders.DailyHour = 6
	}
	if c.Monitoring.HealthCheckPort == 0 {
		c.Monitoring.HealthCheckPort = 8090
	}
}

// SessionTTL is the idle timeout for customer selection sessions.
func (c *Config) SessionTTL() time.Duration {
	return time.Duration(c.Booking.SessionTTLMinutes) * time.Minute
}

// CacheTTL is how long a derived slot catalog may live in Redis.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.Redis.CacheTTLSeconds) * time.Second
}

// TokenTTL is the lifetime of an admin JWT.
func (c *Config) TokenTTL() time.Duration {
	return time.Duration(c.Admin.TokenTTLHours) * time.Hour
}
