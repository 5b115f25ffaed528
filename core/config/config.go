package config

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	JWT       JWTConfig       `mapstructure:"jwt"`
	GoogleAPI GoogleAPIConfig `mapstructure:"google_api"`
	Calendar  CalendarConfig  `mapstructure:"calendar"`
	Assistant AssistantConfig `mapstructure:"assistant"`
	Security  SecurityConfig  `mapstructure:"security"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
	Log       LogConfig       `mapstructure:"log"`
}

type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	PublicURL       string        `mapstructure:"public_url"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type DatabaseConfig struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	DBName          string `mapstructure:"dbname"`
	SSLMode         string `mapstructure:"sslmode"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"` // minutes
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// MinJWTSecretLength is the shortest HS256 signing key accepted at startup.
const MinJWTSecretLength = 32

type JWTConfig struct {
	Secret    string        `mapstructure:"secret"`
	Issuer    string        `mapstructure:"issuer"`
	AccessTTL time.Duration `mapstructure:"access_ttl"`
}

// GoogleAPIConfig holds the OAuth client and the endpoints used to reach Google.
// The URL fields exist so tests and staging can point at fakes.
type GoogleAPIConfig struct {
	ClientID        string        `mapstructure:"client_id"`
	ClientSecret    string        `mapstructure:"client_secret"`
	RedirectURI     string        `mapstructure:"redirect_uri"`
	AuthURL         string        `mapstructure:"auth_url"`
	TokenURL        string        `mapstructure:"token_url"`
	CalendarBaseURL string        `mapstructure:"calendar_base_url"`
	CalendarID      string        `mapstructure:"calendar_id"`
	RequestTimeout  time.Duration `mapstructure:"request_timeout"`
}

type CalendarConfig struct {
	Timezone             string        `mapstructure:"timezone"`
	HorizonDays          int           `mapstructure:"horizon_days"`
	MaxHorizonDays       int           `mapstructure:"max_horizon_days"`
	BusinessStartHour    int           `mapstructure:"business_start_hour"`
	BusinessEndHour      int           `mapstructure:"business_end_hour"`
	SlotDurationMinutes  int           `mapstructure:"slot_duration_minutes"`
	MaxOfferedSlots      int           `mapstructure:"max_offered_slots"`
	RefreshBufferMinutes int           `mapstructure:"refresh_buffer_minutes"`
	InviteEmailCallers   bool          `mapstructure:"invite_email_callers"`
	OAuthStateTTL        time.Duration `mapstructure:"oauth_state_ttl"`
}

type AssistantConfig struct {
	HorizonDays     int           `mapstructure:"horizon_days"`
	Secret          string        `mapstructure:"secret"`
	FunctionCallURL string        `mapstructure:"function_call_url"`
	RequestTimeout  time.Duration `mapstructure:"request_timeout"`
}

type SecurityConfig struct {
	// TokenEncryptionKey is a base64 encoded 32 byte key. Empty disables encryption.
	TokenEncryptionKey string `mapstructure:"token_encryption_key"`
}

type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

var (
	instance *Config
	mu       sync.RWMutex
)

// Location resolves the clinic timezone, falling back to UTC.
func (c CalendarConfig) Location() *time.Location {
	if c.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func (c CalendarConfig) RefreshBuffer() time.Duration {
	return time.Duration(c.RefreshBufferMinutes) * time.Minute
}

func (c CalendarConfig) SlotDuration() time.Duration {
	return time.Duration(c.SlotDurationMinutes) * time.Minute
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 7070)
	v.SetDefault("server.public_url", "http://localhost:7070")
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "")
	v.SetDefault("database.dbname", "clinic_calendar")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", 30)

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.issuer", "clinic-calendar-api")
	v.SetDefault("jwt.access_ttl", 24*time.Hour)

	v.SetDefault("google_api.client_id", "")
	v.SetDefault("google_api.client_secret", "")
	v.SetDefault("google_api.redirect_uri", "http://localhost:7070/api/v1/public/calendar/oauth/callback")
	v.SetDefault("google_api.auth_url", "https://accounts.google.com/o/oauth2/auth")
	v.SetDefault("google_api.token_url", "https://oauth2.googleapis.com/token")
	v.SetDefault("google_api.calendar_base_url", "")
	v.SetDefault("google_api.calendar_id", "primary")
	v.SetDefault("google_api.request_timeout", 30*time.Second)

	v.SetDefault("calendar.timezone", "America/New_York")
	v.SetDefault("calendar.horizon_days", 14)
	v.SetDefault("calendar.max_horizon_days", 60)
	v.SetDefault("calendar.business_start_hour", 9)
	v.SetDefault("calendar.business_end_hour", 17)
	v.SetDefault("calendar.slot_duration_minutes", 60)
	v.SetDefault("calendar.max_offered_slots", 5)
	v.SetDefault("calendar.refresh_buffer_minutes", 5)
	v.SetDefault("calendar.invite_email_callers", false)
	v.SetDefault("calendar.oauth_state_ttl", 10*time.Minute)

	v.SetDefault("assistant.horizon_days", 7)
	v.SetDefault("assistant.secret", "")
	v.SetDefault("assistant.function_call_url", "http://localhost:7070/api/v1/assistant/function-call")
	v.SetDefault("assistant.request_timeout", 20*time.Second)

	v.SetDefault("security.token_encryption_key", "")

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
}

// Load builds a Config from an optional .env file, an optional config file and the environment.
// Environment keys use underscores for nesting, e.g. GOOGLE_API_CLIENT_ID.
func Load(configFile string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", configFile, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if len(c.JWT.Secret) < MinJWTSecretLength {
		return fmt.Errorf("jwt secret must be at least %d bytes", MinJWTSecretLength)
	}
	cal := c.Calendar
	if cal.BusinessStartHour < 0 || cal.BusinessEndHour > 24 || cal.BusinessStartHour >= cal.BusinessEndHour {
		return fmt.Errorf("invalid business hours %d-%d", cal.BusinessStartHour, cal.BusinessEndHour)
	}
	if cal.SlotDurationMinutes <= 0 {
		return fmt.Errorf("slot duration must be positive")
	}
	if cal.MaxOfferedSlots <= 0 {
		return fmt.Errorf("max offered slots must be positive")
	}
	if _, err := time.LoadLocation(cal.Timezone); err != nil {
		return fmt.Errorf("invalid calendar timezone %q: %w", cal.Timezone, err)
	}
	return nil
}

// Init loads the configuration and stores it as the process-wide instance.
func Init(configFile string) (*Config, error) {
	cfg, err := Load(configFile)
	if err != nil {
		return nil, err
	}
	Set(cfg)
	return cfg, nil
}

func Set(cfg *Config) {
	mu.Lock()
	defer mu.Unlock()
	instance = cfg
}

// Get returns the loaded configuration and panics if Init was never called.
func Get() *Config {
	cfg, ok := GetSafe()
	if !ok {
		panic("config: not initialized")
	}
	return cfg
}

func GetSafe() (*Config, bool) {
	mu.RLock()
	defer mu.RUnlock()
	return instance, instance != nil
}
