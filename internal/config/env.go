package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
)

const (
	StoreFile  = "file"
	StoreMySQL = "mysql"
)

type Env struct {
	AppAddr     string `yaml:"app_addr" env:"APP_ADDR" env-default:":8080"`
	GinMode     string `yaml:"gin_mode" env:"GIN_MODE"`
	LogLevel    string `yaml:"log_level" env:"LOG_LEVEL" env-default:"info"`
	StoreDriver string `yaml:"store_driver" env:"STORE_DRIVER" env-default:"file"`
	DataDir     string `yaml:"data_dir" env:"DATA_DIR" env-default:"data"`
	MySQLDSN    string `yaml:"mysql_dsn" env:"MYSQL_DSN"`

	JWTSecret string        `yaml:"jwt_secret" env:"JWT_SECRET" env-default:"rain-system-dev-secret"`
	TokenTTL  time.Duration `yaml:"token_ttl" env:"TOKEN_TTL" env-default:"12h"`
	StaffFile string        `yaml:"staff_file" env:"STAFF_FILE"`

	SnapshotDir string `yaml:"snapshot_dir" env:"SNAPSHOT_DIR" env-default:"data/snapshots"`
	// SnapshotAt is the daily HH:MM for the collection snapshot; empty disables the job.
	SnapshotAt string `yaml:"snapshot_at" env:"SNAPSHOT_AT" env-default:"23:30"`

	RedisAddr          string   `yaml:"redis_addr" env:"REDIS_ADDR"`
	CORSAllowedOrigins []string `yaml:"cors_allowed_origins" env:"CORS_ALLOWED_ORIGINS" env-separator:","`

	DuplicateExemptMissingMobile bool `yaml:"duplicate_exempt_na_mobile" env:"DUPLICATE_EXEMPT_NA_MOBILE" env-default:"false"`
}

// ErrHelp is returned by LoadEnv when --help was requested.
var ErrHelp = pflag.ErrHelp

// LoadEnv reads .env (optional), then config.yaml or the --config file (optional),
// then environment variables, then command-line flags. Later sources win.
func LoadEnv(args []string) (Env, error) {
	_ = godotenv.Load()

	fs := pflag.NewFlagSet("rain-system", pflag.ContinueOnError)
	configPath := fs.String("config", "config.yaml", "path to YAML config file")
	addr := fs.String("addr", "", "listen address, overrides APP_ADDR")
	dataDir := fs.String("data-dir", "", "directory for JSON collections, overrides DATA_DIR")
	storeDriver := fs.String("store", "", "store driver (file|mysql), overrides STORE_DRIVER")
	if err := fs.Parse(args); err != nil {
		return Env{}, err
	}

	var env Env
	if fileExists(*configPath) {
		// ReadConfig applies env overrides on top of the file.
		if err := cleanenv.ReadConfig(*configPath, &env); err != nil {
			return Env{}, fmt.Errorf("config %s: %w", *configPath, err)
		}
	} else if err := cleanenv.ReadEnv(&env); err != nil {
		return Env{}, fmt.Errorf("config error: %w", err)
	}

	if v := strings.TrimSpace(*addr); v != "" {
		env.AppAddr = v
	}
	if v := strings.TrimSpace(*dataDir); v != "" {
		env.DataDir = v
	}
	if v := strings.TrimSpace(*storeDriver); v != "" {
		env.StoreDriver = v
	}
	env.StoreDriver = strings.ToLower(strings.TrimSpace(env.StoreDriver))

	if err := env.validate(); err != nil {
		return Env{}, err
	}
	return env, nil
}

func (e Env) validate() error {
	switch e.StoreDriver {
	case StoreFile:
		if strings.TrimSpace(e.DataDir) == "" {
			return errors.New("DATA_DIR is required for the file store")
		}
	case StoreMySQL:
		if strings.TrimSpace(e.MySQLDSN) == "" {
			return errors.New("MYSQL_DSN is required for the mysql store")
		}
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", e.StoreDriver)
	}
	if e.TokenTTL <= 0 {
		return errors.New("TOKEN_TTL must be positive")
	}
	return nil
}

func fileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}
