package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config represents the full application configuration surface.
type Config struct {
	Server   ServerConfig
	Registry RegistryConfig
	Vision   VisionConfig
	Speech   SpeechConfig
	Backup   BackupConfig
	Archive  ArchiveConfig
	Export   ExportConfig
	Debug    bool
}

// ServerConfig holds dashboard HTTP server options.
type ServerConfig struct {
	Port string
}

// RegistryConfig locates the item registry file and names the capture
// station used as the default location for new records.
type RegistryConfig struct {
	Path         string
	StationLabel string
}

// VisionConfig points at the vision gateway that owns the camera, the
// code decoder and the OCR engine.
type VisionConfig struct {
	BaseURL string
	Timeout time.Duration
}

// SpeechConfig points at the speech gateway (microphone, speech-to-text
// and text-to-speech).
type SpeechConfig struct {
	BaseURL         string
	CalibrationSecs int
	Timeout         time.Duration
}

// BackupConfig holds registry snapshot scheduling.
type BackupConfig struct {
	CronSchedule string
	Dir          string
}

// ArchiveConfig enables the MongoDB sighting archive when URI is set.
type ArchiveConfig struct {
	URI    string
	DBName string
}

// ExportConfig enables the Google Sheets registry export when both
// fields are set.
type ExportConfig struct {
	CredentialsPath string
	SpreadsheetID   string
}

// Load reads environment variables (optionally from the provided file) and
// materializes a Config instance.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("failed loading env file %s: %w", envFile, err)
			}
		}
	} else {
		// Missing .env files are acceptable when configuration comes from
		// the environment directly.
		_ = godotenv.Load()
	}

	cfg := &Config{
		Server: ServerConfig{
			Port: getenvWithDefault("APP_PORT", "5000"),
		},
		Registry: RegistryConfig{
			Path:         getenvWithDefault("REGISTRY_PATH", "Items.csv"),
			StationLabel: getenvWithDefault("STATION_LABEL", "Station A"),
		},
		Vision: VisionConfig{
			BaseURL: os.Getenv("VISION_GATEWAY_URL"),
			Timeout: getenvDuration("VISION_GATEWAY_TIMEOUT", 15*time.Second),
		},
		Speech: SpeechConfig{
			BaseURL:         os.Getenv("SPEECH_GATEWAY_URL"),
			CalibrationSecs: getenvInt("SPEECH_CALIBRATION_SECS", 1),
			Timeout:         getenvDuration("SPEECH_GATEWAY_TIMEOUT", 30*time.Second),
		},
		Backup: BackupConfig{
			CronSchedule: getenvWithDefault("BACKUP_CRON_SCHEDULE", "0 2 * * *"),
			Dir:          getenvWithDefault("BACKUP_DIR", "backups"),
		},
		Archive: ArchiveConfig{
			URI:    os.Getenv("MONGODB_URI"),
			DBName: getenvWithDefault("MONGODB_DB_NAME", "stationtrack"),
		},
		Export: ExportConfig{
			CredentialsPath: os.Getenv("SHEETS_CREDENTIALS_PATH"),
			SpreadsheetID:   os.Getenv("SHEETS_SPREADSHEET_ID"),
		},
		Debug: os.Getenv("DEBUG") == "true",
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate ensures that required configuration fields are populated.
// Gateway URLs are deliberately not required here: the menu actions that
// need them check on entry, so file-only workflows stay usable.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}

	if c.Server.Port == "" {
		return errors.New("APP_PORT must be provided")
	}

	if c.Registry.Path == "" {
		return errors.New("REGISTRY_PATH must be provided")
	}

	if c.Registry.StationLabel == "" {
		return errors.New("STATION_LABEL must not be empty")
	}

	if c.Backup.CronSchedule == "" {
		return errors.New("BACKUP_CRON_SCHEDULE must be provided")
	}

	if c.Backup.Dir == "" {
		return errors.New("BACKUP_DIR must not be empty")
	}

	if c.Speech.CalibrationSecs < 0 {
		return errors.New("SPEECH_CALIBRATION_SECS must not be negative")
	}

	if c.Export.Enabled() && c.Export.CredentialsPath == "" {
		return errors.New("SHEETS_CREDENTIALS_PATH must be provided when SHEETS_SPREADSHEET_ID is set")
	}

	return nil
}

// Enabled reports whether the sighting archive has been configured.
func (a ArchiveConfig) Enabled() bool {
	return a.URI != ""
}

// Enabled reports whether registry export has been configured.
func (e ExportConfig) Enabled() bool {
	return e.SpreadsheetID != ""
}

func getenvWithDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return n
}

func getenvDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return d
}
