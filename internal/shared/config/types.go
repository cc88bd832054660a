package config

import (
	"fmt"
	"time"
)

type ServerConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Mode     string `mapstructure:"mode"`
	BaseURL  string `mapstructure:"base_url"`
	Timezone string `mapstructure:"timezone"`
}

func (s *ServerConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

type DatabaseConfig struct {
	// Driver is either "mysql" or "sqlite".
	Driver          string `mapstructure:"driver"`
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	Username        string `mapstructure:"username"`
	Password        string `mapstructure:"password"`
	Database        string `mapstructure:"database"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"`
}

// GetDSN returns the connection string for the configured driver.
// For sqlite the database field is the file path.
func (d *DatabaseConfig) GetDSN() string {
	if d.Driver == "sqlite" {
		return d.Database
	}
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&collation=utf8mb4_general_ci&parseTime=true&loc=UTC",
		d.Username, d.Password, d.Host, d.Port, d.Database)
}

type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	OutputPath string `mapstructure:"output_path"`
}

type JWTConfig struct {
	Secret           string `mapstructure:"secret"`
	AccessExpMinutes int    `mapstructure:"access_exp_minutes"`
}

type AuthConfig struct {
	JWT JWTConfig `mapstructure:"jwt"`
	// PolicyFile seeds casbin role policies on startup.
	PolicyFile string `mapstructure:"policy_file"`
}

type EmailConfig struct {
	SMTPHost     string `mapstructure:"smtp_host"`
	SMTPPort     int    `mapstructure:"smtp_port"`
	SMTPUser     string `mapstructure:"smtp_user"`
	SMTPPassword string `mapstructure:"smtp_password"`
	FromAddress  string `mapstructure:"from_address"`
	FromName     string `mapstructure:"from_name"`
	// AlertRecipients receive manual reconciliation alerts.
	AlertRecipients []string `mapstructure:"alert_recipients"`
}

func (e *EmailConfig) AlertsEnabled() bool {
	return e.SMTPHost != "" && len(e.AlertRecipients) > 0
}

type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

func (r *RedisConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// AlipayConfig configures one face-to-face gateway instance.
type AlipayConfig struct {
	GatewayID  string `mapstructure:"gateway_id"`
	AppID      string `mapstructure:"app_id"`
	PrivateKey string `mapstructure:"private_key"`
	PublicKey  string `mapstructure:"public_key"`
	// Mode is "test" (sandbox endpoint) or "live".
	Mode           string `mapstructure:"mode"`
	GatewayURL     string `mapstructure:"gateway_url"`
	NotifyURL      string `mapstructure:"notify_url"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
	// NotifyDedupTTLMinutes bounds how long processed notify ids are remembered.
	NotifyDedupTTLMinutes int `mapstructure:"notify_dedup_ttl_minutes"`
	RefundLockTTLSeconds  int `mapstructure:"refund_lock_ttl_seconds"`
}

func (a *AlipayConfig) Timeout() time.Duration {
	if a.TimeoutSeconds <= 0 {
		return 15 * time.Second
	}
	return time.Duration(a.TimeoutSeconds) * time.Second
}

func (a *AlipayConfig) NotifyDedupTTL() time.Duration {
	if a.NotifyDedupTTLMinutes <= 0 {
		return 24 * time.Hour
	}
	return time.Duration(a.NotifyDedupTTLMinutes) * time.Minute
}

func (a *AlipayConfig) RefundLockTTL() time.Duration {
	if a.RefundLockTTLSeconds <= 0 {
		return 60 * time.Second
	}
	return time.Duration(a.RefundLockTTLSeconds) * time.Second
}

type SiteConfig struct {
	Name string `mapstructure:"name"`
}

// RateLimitConfig throttles charge endpoints per client IP. Requires Redis.
type RateLimitConfig struct {
	ChargesPerMinute int `mapstructure:"charges_per_minute"`
	ChargesPerHour   int `mapstructure:"charges_per_hour"`
}

type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}
