package config

import (
	"os"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"
)

type Configuration struct {
	Server   ServerConfig
	Security SecurityConfig
	Otp      OtpConfig
	Smtp     SmtpConfig
	Logging  LoggingConfig
	Storage  StorageConfig
	Database DatabaseConfig
}

type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type SecurityConfig struct {
	EncryptionSecret string
	SigningKeyPath   string
	JwtSecret        string
	TokenTTL         time.Duration
}

type OtpConfig struct {
	Step      time.Duration
	SecretLen int
}

type SmtpConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

type LoggingConfig struct {
	Level string
}

type StorageConfig struct {
	UploadDir   string
	MaxFileSize int64
}

type DatabaseConfig struct {
	Host            string
	Port            string
	Username        string
	Password        string
	Name            string
	SSLMode         string
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime int
}

var (
	config     *Configuration
	configLock sync.RWMutex
)

// Load builds the configuration from defaults and environment overrides.
// Key material values stay empty when unset; startup decides whether that is
// fatal.
func Load() *Configuration {
	configLock.Lock()
	defer configLock.Unlock()

	config = &Configuration{
		Server: ServerConfig{
			Port:         envOr("PORT", "3000"),
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  120 * time.Second,
		},
		Security: SecurityConfig{
			EncryptionSecret: os.Getenv("FILE_ENCRYPTION_SECRET"),
			SigningKeyPath:   envOr("SIGNING_KEY_PATH", "keys/private_key.pem"),
			JwtSecret:        os.Getenv("JWT_SECRET"),
			TokenTTL:         24 * time.Hour,
		},
		Otp: OtpConfig{
			Step:      180 * time.Second,
			SecretLen: 20,
		},
		Smtp: SmtpConfig{
			Host:     envOr("SMTP_HOST", "localhost"),
			Port:     envIntOr("SMTP_PORT", 587),
			Username: os.Getenv("SMTP_USER"),
			Password: os.Getenv("SMTP_PASSWORD"),
			From:     envOr("SMTP_FROM", "no-reply@safeguard.local"),
		},
		Logging: LoggingConfig{
			Level: envOr("LOG_ENV", "development"),
		},
		Storage: StorageConfig{
			UploadDir:   envOr("UPLOAD_DIR", "uploads"),
			MaxFileSize: 5 << 20,
		},
		Database: DatabaseConfig{
			Host:            envOr("DB_HOST", "localhost"),
			Port:            envOr("DB_PORT", "5432"),
			Username:        envOr("DB_USER", "postgres"),
			Password:        envOr("DB_PASSWORD", "password"),
			Name:            envOr("DB_NAME", "safeguard"),
			SSLMode:         envOr("DB_SSLMODE", "disable"),
			MaxIdleConns:    10,
			MaxOpenConns:    100,
			ConnMaxLifetime: 300,
		},
	}

	return config
}

func Get() *Configuration {
	configLock.RLock()
	defer configLock.RUnlock()
	return config
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func LogConfig(logger *zap.Logger) {
	configLock.RLock()
	defer configLock.RUnlock()

	logger.Info("Application configuration",
		zap.String("port", config.Server.Port),
		zap.Duration("read_timeout", config.Server.ReadTimeout),
		zap.Duration("write_timeout", config.Server.WriteTimeout),
		zap.Duration("otp_step", config.Otp.Step),
		zap.Int("otp_secret_len", config.Otp.SecretLen),
		zap.String("signing_key_path", config.Security.SigningKeyPath),
		zap.String("upload_dir", config.Storage.UploadDir),
		zap.String("smtp_host", config.Smtp.Host),
		zap.String("database_host", config.Database.Host),
		zap.String("database_name", config.Database.Name),
	)
}
