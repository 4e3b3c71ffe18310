package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		Server:    ServerConfig{Port: "3001"},
		Storage:   StorageConfig{Driver: StorageJSON, JSONPath: "data/greetings.json"},
		Notifier:  NotifierConfig{Driver: NotifierLog},
		Scheduler: SchedulerConfig{Enabled: true, Interval: "@every 1m"},
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("STORAGE_DRIVER", "")
	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "3001", cfg.Server.Port)
	assert.Equal(t, 30*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, "http://localhost:3001", cfg.Server.PublicURL)
	assert.Equal(t, []string{"*"}, cfg.Server.CORSAllowedOrigins)
	assert.Equal(t, StorageJSON, cfg.Storage.Driver)
	assert.Equal(t, "data/greetings.json", cfg.Storage.JSONPath)
	assert.Equal(t, NotifierLog, cfg.Notifier.Driver)
	assert.Equal(t, 10*time.Second, cfg.Notifier.Timeout)
	assert.True(t, cfg.Scheduler.Enabled)
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("PUBLIC_URL", "https://cards.example.com/")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example.com, https://b.example.com")
	t.Setenv("STORAGE_DRIVER", "s3")
	t.Setenv("S3_BUCKET", "cards")
	t.Setenv("NOTIFIER_TIMEOUT", "2s")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "https://cards.example.com", cfg.Server.PublicURL)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.Server.CORSAllowedOrigins)
	assert.Equal(t, StorageS3, cfg.Storage.Driver)
	assert.Equal(t, "cards", cfg.Storage.S3.Bucket)
	assert.Equal(t, "greetings.json", cfg.Storage.S3.Key)
	assert.Equal(t, 2*time.Second, cfg.Notifier.Timeout)
	assert.NoError(t, cfg.Validate())
}

func TestConfigValidation(t *testing.T) {
	assert.NoError(t, validConfig().Validate())

	noPort := validConfig()
	noPort.Server.Port = ""
	assert.Error(t, noPort.Validate())

	unknownStorage := validConfig()
	unknownStorage.Storage.Driver = "redis"
	assert.Error(t, unknownStorage.Validate())

	mysqlMissing := validConfig()
	mysqlMissing.Storage.Driver = StorageMySQL
	assert.Error(t, mysqlMissing.Validate())

	mysqlOK := validConfig()
	mysqlOK.Storage.Driver = StorageMySQL
	mysqlOK.Storage.Database = DatabaseConfig{Host: "localhost", User: "cards", DBName: "cards"}
	assert.NoError(t, mysqlOK.Validate())

	sqliteMissing := validConfig()
	sqliteMissing.Storage.Driver = StorageSQLite
	assert.Error(t, sqliteMissing.Validate())

	sqliteOK := validConfig()
	sqliteOK.Storage.Driver = StorageSQLite
	sqliteOK.Storage.Database = DatabaseConfig{Path: "data/greetings.db"}
	assert.NoError(t, sqliteOK.Validate())

	gmailMissing := validConfig()
	gmailMissing.Notifier.Driver = NotifierGmail
	assert.Error(t, gmailMissing.Validate())

	imapOK := validConfig()
	imapOK.Notifier.Driver = NotifierIMAP
	imapOK.Notifier.IMAP = IMAPConfig{Host: "imap.example.com", User: "u", Password: "p"}
	assert.NoError(t, imapOK.Validate())

	noInterval := validConfig()
	noInterval.Scheduler.Interval = ""
	assert.Error(t, noInterval.Validate())
}

func TestDatabaseDSN(t *testing.T) {
	db := DatabaseConfig{
		Host:     "localhost",
		Port:     3306,
		User:     "testuser",
		Password: "testpass",
		DBName:   "testdb",
		SSLMode:  "disable",
	}

	assert.Equal(t,
		"testuser:testpass@tcp(localhost:3306)/testdb?charset=utf8mb4&parseTime=True&loc=UTC",
		db.GetDSN(StorageMySQL))

	db.Port = 5432
	assert.Equal(t,
		"host=localhost port=5432 user=testuser password=testpass dbname=testdb sslmode=disable",
		db.GetDSN(StoragePostgres))

	db.Path = "data/greetings.db"
	assert.Equal(t,
		"data/greetings.db?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)",
		db.GetDSN(StorageSQLite))
}
