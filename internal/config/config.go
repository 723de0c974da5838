package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Auth      AuthConfig      `mapstructure:"auth"`
	Replicate ReplicateConfig `mapstructure:"replicate"`
	Webhook   WebhookConfig   `mapstructure:"webhook"`
	Email     EmailConfig     `mapstructure:"email"`
	Training  TrainingConfig  `mapstructure:"training"`
}

type ServerConfig struct {
	Port    int        `mapstructure:"port"`
	Mode    string     `mapstructure:"mode"`
	SiteURL string     `mapstructure:"site_url"`
	CORS    CORSConfig `mapstructure:"cors"`
}

type CORSConfig struct {
	AllowedOrigins  []string `mapstructure:"allowed_origins"`
	AllowAllOrigins bool     `mapstructure:"allow_all_origins"`
}

type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver"`
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	SSLMode         string        `mapstructure:"ssl_mode"`
	Path            string        `mapstructure:"path"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	AutoMigrate     bool          `mapstructure:"auto_migrate"`
}

// DSN builds the connection string for the configured driver.
func (c *DatabaseConfig) DSN() string {
	if c.Driver == "postgres" {
		return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
			c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode)
	}
	return c.Path
}

type StorageConfig struct {
	Type           string `mapstructure:"type"`
	Endpoint       string `mapstructure:"endpoint"`
	AccessKey      string `mapstructure:"access_key"`
	SecretKey      string `mapstructure:"secret_key"`
	UseSSL         bool   `mapstructure:"use_ssl"`
	Region         string `mapstructure:"region"`
	PublicURL      string `mapstructure:"public_url"`
	TrainingBucket string `mapstructure:"training_bucket"`
	ImagesBucket   string `mapstructure:"images_bucket"`
}

type AuthConfig struct {
	BaseURL        string `mapstructure:"base_url"`
	ServiceRoleKey string `mapstructure:"service_role_key"`
	JWTSecret      string `mapstructure:"jwt_secret"`
}

type ReplicateConfig struct {
	APIToken       string `mapstructure:"api_token"`
	BaseURL        string `mapstructure:"base_url"`
	Owner          string `mapstructure:"owner"`
	TrainerOwner   string `mapstructure:"trainer_owner"`
	TrainerName    string `mapstructure:"trainer_name"`
	TrainerVersion string `mapstructure:"trainer_version"`
	Hardware       string `mapstructure:"hardware"`
}

type WebhookConfig struct {
	// Secret is the versioned signing secret issued by the training
	// provider, e.g. "whsec_<base64 key material>".
	Secret string `mapstructure:"secret"`
}

type EmailConfig struct {
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url"`
	From    string `mapstructure:"from"`
}

type TrainingConfig struct {
	Steps       int    `mapstructure:"steps"`
	Resolution  string `mapstructure:"resolution"`
	TriggerWord string `mapstructure:"trigger_word"`
	// SignedURLTTL bounds how long the provider can read the uploaded archive.
	SignedURLTTL time.Duration `mapstructure:"signed_url_ttl"`
}

func Load(configPath string) (*Config, error) {
	// Load .env file if exists
	_ = godotenv.Load()

	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
	}

	// Enable environment variable override
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Set defaults
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.site_url", "http://localhost:8080")
	v.SetDefault("server.cors.allow_all_origins", true)
	v.SetDefault("server.cors.allowed_origins", []string{})
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.path", "./data/photoai.db")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.max_open_conns", 20)
	v.SetDefault("database.conn_max_lifetime", time.Hour)
	v.SetDefault("database.auto_migrate", true)
	v.SetDefault("storage.endpoint", "localhost:9000")
	v.SetDefault("storage.use_ssl", false)
	v.SetDefault("storage.training_bucket", "training-data")
	v.SetDefault("storage.images_bucket", "generated-images")
	v.SetDefault("auth.base_url", "http://localhost:9999")
	v.SetDefault("replicate.base_url", "https://api.replicate.com/v1")
	v.SetDefault("replicate.trainer_owner", "ostris")
	v.SetDefault("replicate.trainer_name", "flux-dev-lora-trainer")
	v.SetDefault("replicate.hardware", "gpu-a100-large")
	v.SetDefault("email.base_url", "https://api.resend.com")
	v.SetDefault("email.from", "Photo AI <onboarding@resend.dev>")
	v.SetDefault("training.steps", 1200)
	v.SetDefault("training.resolution", "1024")
	v.SetDefault("training.trigger_word", "ohwx")
	v.SetDefault("training.signed_url_ttl", time.Hour)

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Bind environment variables explicitly for sensitive data
	v.BindEnv("database.host", "DB_HOST")
	v.BindEnv("database.password", "DB_PASSWORD")
	v.BindEnv("storage.endpoint", "STORAGE_ENDPOINT")
	v.BindEnv("storage.access_key", "STORAGE_ACCESS_KEY")
	v.BindEnv("storage.secret_key", "STORAGE_SECRET_KEY")
	v.BindEnv("auth.base_url", "SUPABASE_URL")
	v.BindEnv("auth.service_role_key", "SUPABASE_SERVICE_ROLE_KEY")
	v.BindEnv("auth.jwt_secret", "SUPABASE_JWT_SECRET")
	v.BindEnv("replicate.api_token", "REPLICATE_API_TOKEN")
	v.BindEnv("replicate.owner", "REPLICATE_OWNER")
	v.BindEnv("webhook.secret", "REPLICATE_WEBHOOK_SECRET")
	v.BindEnv("email.api_key", "RESEND_API_KEY")
	v.BindEnv("server.site_url", "SITE_URL")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}
