package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Storage drivers
const (
	StorageJSON     = "json"
	StorageMySQL    = "mysql"
	StoragePostgres = "postgres"
	StorageS3       = "s3"
	StorageSQLite   = "sqlite"
)

// Notifier drivers
const (
	NotifierLog   = "log"
	NotifierGmail = "gmail"
	NotifierIMAP  = "imap"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Log       LogConfig       `mapstructure:"log"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Notifier  NotifierConfig  `mapstructure:"notifier"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port               string        `mapstructure:"port"`
	ReadTimeout        time.Duration `mapstructure:"read_timeout"`
	WriteTimeout       time.Duration `mapstructure:"write_timeout"`
	PublicURL          string        `mapstructure:"public_url"`
	CORSAllowedOrigins []string      `mapstructure:"cors_allowed_origins"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// StorageConfig selects and configures the record store
type StorageConfig struct {
	Driver   string         `mapstructure:"driver"`
	JSONPath string         `mapstructure:"json_path"`
	Database DatabaseConfig `mapstructure:"database"`
	S3       S3Config       `mapstructure:"s3"`
}

// DatabaseConfig holds database connection configuration
type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
	// Path is the database file for the sqlite driver
	Path string `mapstructure:"path"`
}

// S3Config holds object storage configuration
type S3Config struct {
	Bucket    string `mapstructure:"bucket"`
	Key       string `mapstructure:"key"`
	Region    string `mapstructure:"region"`
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
}

// NotifierConfig selects and configures the notification sender
type NotifierConfig struct {
	Driver  string        `mapstructure:"driver"`
	Timeout time.Duration `mapstructure:"timeout"`
	From    string        `mapstructure:"from"`
	Gmail   GmailConfig   `mapstructure:"gmail"`
	IMAP    IMAPConfig    `mapstructure:"imap"`
}

// GmailConfig holds Gmail API configuration
type GmailConfig struct {
	ClientID     string `mapstructure:"client_id"`
	ClientSecret string `mapstructure:"client_secret"`
	RefreshToken string `mapstructure:"refresh_token"`
	UserEmail    string `mapstructure:"user_email"`
}

// IMAPConfig holds the mailbox used by the IMAP notifier
type IMAPConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Mailbox  string `mapstructure:"mailbox"`
}

// SchedulerConfig holds the stats scheduler configuration
type SchedulerConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Interval string `mapstructure:"interval"`
}

// LoadConfig loads configuration from defaults, an optional config file,
// a .env file and environment variables
func LoadConfig() (*Config, error) {
	// a missing .env is fine
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	v.AutomaticEnv()
	bindEnvVars(v)

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	config.Server.CORSAllowedOrigins = splitOrigins(config.Server.CORSAllowedOrigins)
	config.Server.PublicURL = strings.TrimRight(config.Server.PublicURL, "/")

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "3001")
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.public_url", "http://localhost:3001")
	v.SetDefault("server.cors_allowed_origins", []string{"*"})

	v.SetDefault("log.level", "info")

	v.SetDefault("storage.driver", StorageJSON)
	v.SetDefault("storage.json_path", "data/greetings.json")
	v.SetDefault("storage.database.host", "localhost")
	v.SetDefault("storage.database.port", 3306)
	v.SetDefault("storage.database.sslmode", "disable")
	v.SetDefault("storage.database.path", "data/greetings.db")
	v.SetDefault("storage.s3.key", "greetings.json")
	v.SetDefault("storage.s3.region", "us-east-1")

	v.SetDefault("notifier.driver", NotifierLog)
	v.SetDefault("notifier.timeout", "10s")
	v.SetDefault("notifier.from", "Greeting Card System <noreply@greetings.com>")
	v.SetDefault("notifier.imap.port", 993)
	v.SetDefault("notifier.imap.mailbox", "Outbox")

	v.SetDefault("scheduler.enabled", true)
	v.SetDefault("scheduler.interval", "@every 1m")
}

func bindEnvVars(v *viper.Viper) {
	// Server
	v.BindEnv("server.port", "PORT")
	v.BindEnv("server.read_timeout", "SERVER_READ_TIMEOUT")
	v.BindEnv("server.write_timeout", "SERVER_WRITE_TIMEOUT")
	v.BindEnv("server.public_url", "PUBLIC_URL")
	v.BindEnv("server.cors_allowed_origins", "CORS_ALLOWED_ORIGINS")

	v.BindEnv("log.level", "LOG_LEVEL")

	// Storage
	v.BindEnv("storage.driver", "STORAGE_DRIVER")
	v.BindEnv("storage.json_path", "GREETINGS_FILE")
	v.BindEnv("storage.database.host", "DB_HOST")
	v.BindEnv("storage.database.port", "DB_PORT")
	v.BindEnv("storage.database.user", "DB_USER")
	v.BindEnv("storage.database.password", "DB_PASSWORD")
	v.BindEnv("storage.database.dbname", "DB_NAME")
	v.BindEnv("storage.database.sslmode", "DB_SSLMODE")
	v.BindEnv("storage.database.path", "SQLITE_PATH")
	v.BindEnv("storage.s3.bucket", "S3_BUCKET")
	v.BindEnv("storage.s3.key", "S3_KEY")
	v.BindEnv("storage.s3.region", "S3_REGION")
	v.BindEnv("storage.s3.endpoint", "S3_ENDPOINT")
	v.BindEnv("storage.s3.access_key", "S3_ACCESS_KEY")
	v.BindEnv("storage.s3.secret_key", "S3_SECRET_KEY")

	// Notifier
	v.BindEnv("notifier.driver", "NOTIFIER_DRIVER")
	v.BindEnv("notifier.timeout", "NOTIFIER_TIMEOUT")
	v.BindEnv("notifier.from", "EMAIL_FROM")
	v.BindEnv("notifier.gmail.client_id", "GMAIL_CLIENT_ID")
	v.BindEnv("notifier.gmail.client_secret", "GMAIL_CLIENT_SECRET")
	v.BindEnv("notifier.gmail.refresh_token", "GMAIL_REFRESH_TOKEN")
	v.BindEnv("notifier.gmail.user_email", "GMAIL_USER_EMAIL")
	v.BindEnv("notifier.imap.host", "IMAP_HOST")
	v.BindEnv("notifier.imap.port", "IMAP_PORT")
	v.BindEnv("notifier.imap.user", "EMAIL_USER")
	v.BindEnv("notifier.imap.password", "EMAIL_PASS")
	v.BindEnv("notifier.imap.mailbox", "IMAP_MAILBOX")

	// Scheduler
	v.BindEnv("scheduler.enabled", "SCHEDULER_ENABLED")
	v.BindEnv("scheduler.interval", "SCHEDULER_INTERVAL")
}

// splitOrigins accepts both a list and a single comma separated env value
func splitOrigins(in []string) []string {
	var out []string
	for _, item := range in {
		for _, o := range strings.Split(item, ",") {
			o = strings.TrimSpace(o)
			if o != "" {
				out = append(out, o)
			}
		}
	}
	return out
}

// GetDSN returns the database connection string for the given driver
func (c *DatabaseConfig) GetDSN(driver string) string {
	switch driver {
	case StoragePostgres:
		return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
			c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
	case StorageSQLite:
		return c.Path + "?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"
	}
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
		c.User, c.Password, c.Host, c.Port, c.DBName)
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}

	switch c.Storage.Driver {
	case StorageJSON:
		if c.Storage.JSONPath == "" {
			return fmt.Errorf("storage json_path is required for the json driver")
		}
	case StorageMySQL, StoragePostgres:
		db := c.Storage.Database
		if db.Host == "" || db.User == "" || db.DBName == "" {
			return fmt.Errorf("database host, user, and dbname are required for the %s driver", c.Storage.Driver)
		}
	case StorageSQLite:
		if c.Storage.Database.Path == "" {
			return fmt.Errorf("database path is required for the sqlite driver")
		}
	case StorageS3:
		if c.Storage.S3.Bucket == "" || c.Storage.S3.Key == "" {
			return fmt.Errorf("s3 bucket and key are required for the s3 driver")
		}
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}

	switch c.Notifier.Driver {
	case NotifierLog:
	case NotifierGmail:
		g := c.Notifier.Gmail
		if g.ClientID == "" || g.ClientSecret == "" || g.RefreshToken == "" {
			return fmt.Errorf("Gmail OAuth2 credentials are required for the gmail notifier")
		}
	case NotifierIMAP:
		m := c.Notifier.IMAP
		if m.Host == "" || m.User == "" || m.Password == "" {
			return fmt.Errorf("IMAP host and credentials are required for the imap notifier")
		}
	default:
		return fmt.Errorf("unknown notifier driver %q", c.Notifier.Driver)
	}

	if c.Scheduler.Enabled && c.Scheduler.Interval == "" {
		return fmt.Errorf("scheduler interval is required when the scheduler is enabled")
	}

	return nil
}
