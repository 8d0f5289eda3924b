package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const EnvPrefix = "KOPI"

// Config carries every tunable of the machine. Values come from the
// environment (a .env file is loaded by main before parsing).
type Config struct {
	App     AppConfig
	Sheets  SheetsConfig
	Machine MachineConfig
}

type AppConfig struct {
	Host     string `envconfig:"KOPI_APP_HOST" default:"0.0.0.0"`
	Port     string `envconfig:"KOPI_APP_PORT" default:"5000"`
	LogLevel string `envconfig:"KOPI_LOG_LEVEL" default:"info"`
	// PublicHost is the address printed in the QRIS confirmation URL; it
	// must be reachable from the payer's phone.
	PublicHost string `envconfig:"KOPI_APP_PUBLIC_HOST" default:"127.0.0.1"`
}

// SheetsConfig selects the remote store. With an empty credentials file the
// machine runs against an in-memory store seeded with demo tables.
type SheetsConfig struct {
	CredentialsFile string `envconfig:"KOPI_SHEETS_CREDENTIALS_FILE"`
	SheetID         string `envconfig:"KOPI_SHEETS_SHEET_ID"`
}

type MachineConfig struct {
	SyncInterval     time.Duration `envconfig:"KOPI_SYNC_INTERVAL" default:"300s"`
	InputTimeout     time.Duration `envconfig:"KOPI_INPUT_TIMEOUT" default:"60s"`
	QRISTimeout      time.Duration `envconfig:"KOPI_QRIS_TIMEOUT" default:"300s"`
	LocalDBPath      string        `envconfig:"KOPI_LOCAL_DB_PATH" default:"machine.db"`
	DefaultAdminCode string        `envconfig:"KOPI_DEFAULT_ADMIN_CODE" default:"1234567890"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if cfg.Sheets.CredentialsFile != "" && cfg.Sheets.SheetID == "" {
		return nil, fmt.Errorf("KOPI_SHEETS_SHEET_ID is required when credentials are set")
	}
	return &cfg, nil
}
