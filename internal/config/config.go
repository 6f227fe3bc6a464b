package config

import (
	"os"
	"strconv"
	"unicode/utf8"

	"dummycoder/domain/dummy"
	"dummycoder/internal"
	"dummycoder/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Server   ServerConfig
	Upload   UploadConfig
	Encoding EncodingConfig
	Export   ExportConfig
	Log      LogConfig
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port    string
	GinMode string
}

// UploadConfig holds settings for reading uploaded files
type UploadConfig struct {
	MaxSizeMB    int64
	CSVDelimiter rune
	SheetName    string
}

// EncodingConfig holds defaults for the dummy-coding transformation
type EncodingConfig struct {
	DefaultSeparator string
	ConflictPolicy   dummy.ConflictPolicy
}

// ExportConfig holds settings for the generated workbook
type ExportConfig struct {
	DownloadName string
}

// LogConfig holds logging verbosity
type LogConfig struct {
	Level internal.LogLevel
}

// MaxUploadBytes returns the upload limit in bytes
func (c UploadConfig) MaxUploadBytes() int64 {
	return c.MaxSizeMB * 1024 * 1024
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Server: ServerConfig{
			Port:    getEnvOrDefault("PORT", "8080"),
			GinMode: getEnvOrDefault("GIN_MODE", "release"),
		},
		Export: ExportConfig{
			DownloadName: getEnvOrDefault("DOWNLOAD_NAME", "dummy_coded_dataset.xlsx"),
		},
	}

	uploadConfig, err := loadUploadConfig()
	if err != nil {
		return nil, errors.Wrap(err, "failed to load upload configuration")
	}
	config.Upload = *uploadConfig

	level, err := internal.ParseLogLevel(getEnvOrDefault("LOG_LEVEL", "INFO"))
	if err != nil {
		return nil, errors.WithCode(errors.CodeConfigInvalid, err)
	}
	config.Log = LogConfig{Level: level}

	encodingConfig, err := loadEncodingConfig()
	if err != nil {
		return nil, errors.Wrap(err, "failed to load encoding configuration")
	}
	config.Encoding = *encodingConfig

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

func loadUploadConfig() (*UploadConfig, error) {
	delimiter := getEnvOrDefault("CSV_DELIMITER", ",")
	if delimiter == `\t` {
		delimiter = "\t"
	}
	if utf8.RuneCountInString(delimiter) != 1 {
		return nil, errors.ConfigInvalid("CSV_DELIMITER must be a single character")
	}
	r, _ := utf8.DecodeRuneInString(delimiter)

	maxSize, err := getEnvInt64("MAX_UPLOAD_MB", 50)
	if err != nil {
		return nil, err
	}

	return &UploadConfig{
		MaxSizeMB:    maxSize,
		CSVDelimiter: r,
		SheetName:    os.Getenv("SHEET_NAME"),
	}, nil
}

func loadEncodingConfig() (*EncodingConfig, error) {
	policy, err := dummy.ParseConflictPolicy(os.Getenv("CONFLICT_POLICY"))
	if err != nil {
		return nil, errors.WithCode(errors.CodeConfigInvalid, err)
	}

	// An explicitly empty DEFAULT_SEPARATOR is allowed and means whole-cell tokens.
	separator, ok := os.LookupEnv("DEFAULT_SEPARATOR")
	if !ok {
		separator = ","
	}

	return &EncodingConfig{
		DefaultSeparator: separator,
		ConflictPolicy:   policy,
	}, nil
}

func validateConfig(config *Config) error {
	if config.Server.Port == "" {
		return errors.ConfigInvalid("server port is required")
	}
	if _, err := strconv.Atoi(config.Server.Port); err != nil {
		return errors.ConfigInvalid("PORT must be numeric")
	}
	switch config.Server.GinMode {
	case "debug", "release", "test":
	default:
		return errors.ConfigInvalid("GIN_MODE must be one of debug, release, test")
	}
	if config.Upload.MaxSizeMB <= 0 {
		return errors.ConfigInvalid("MAX_UPLOAD_MB must be positive")
	}
	if config.Export.DownloadName == "" {
		return errors.ConfigInvalid("download name is required")
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) (int64, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, errors.ConfigInvalid(key + " must be an integer")
	}
	return n, nil
}
