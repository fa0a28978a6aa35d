package config

import (
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/iancoleman/strcase"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/pkg/errors"
)

type Config struct {
	DatabaseBusyTimeout       time.Duration `koanf:"database_busy_timeout" default:"5s"`
	DatabaseConnectRetryCount int           `koanf:"database_connect_retry_count" default:"5"`
	DatabaseConnectRetryDelay time.Duration `koanf:"database_connect_retry_delay" default:"2s"`
	DatabaseDebug             bool          `koanf:"database_debug"`
	DatabaseFilePath          string        `koanf:"database_file_path" required:"true"`
	DatabaseMaxRetries        int           `koanf:"database_max_retries" default:"5"`
	Environment               string        `koanf:"environment" default:"production"`
	Hostname                  string        `koanf:"-"`
	ServerHost                string        `koanf:"server_host" default:"0.0.0.0"`
	ServerPort                int           `koanf:"server_port" default:"8000"`

	// Tokens
	JWTSecret       string        `koanf:"jwt_secret" required:"true"`
	AccessTokenTTL  time.Duration `koanf:"access_token_ttl" default:"5m"`
	RefreshTokenTTL time.Duration `koanf:"refresh_token_ttl" default:"24h"`

	// Catalog (IT Bookstore)
	CatalogBaseURL           string        `koanf:"catalog_base_url" default:"https://api.itbook.store/1.0"`
	CatalogViewerURL         string        `koanf:"catalog_viewer_url" default:"https://books.google.com/books"`
	CatalogTimeout           time.Duration `koanf:"catalog_timeout" default:"10s"`
	CatalogRequestsPerSecond float64       `koanf:"catalog_requests_per_second" default:"5"`
	CatalogBurst             int           `koanf:"catalog_burst" default:"10"`

	// Media
	MediaDir             string `koanf:"media_dir" default:"/data/media"`
	MediaURL             string `koanf:"media_url" default:"/media"`
	MaxAvatarUploadBytes int64  `koanf:"max_avatar_upload_bytes" default:"5242880"`
	MaxAvatarPixels      int    `koanf:"max_avatar_pixels" default:"40000000"`
}

const (
	configFileENV     = "CONFIG_FILE"
	defaultConfigFile = "/config/techshelf.yaml"
	defaultMediaDir   = "/data/media"
)

// New builds the config from struct defaults, then the YAML file at
// $CONFIG_FILE (if it exists), then environment variables.
func New() (*Config, error) {
	cfg := &Config{}
	if err := defaults.Set(cfg); err != nil {
		return nil, errors.WithStack(err)
	}

	k := koanf.New(".")

	path := os.Getenv(configFileENV)
	if path == "" {
		path = defaultConfigFile
	}
	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, errors.Wrapf(err, "failed to load config file %s", path)
		}
	}

	known := knownKeys()
	err := k.Load(env.Provider("", ".", func(s string) string {
		key := strings.ToLower(s)
		if _, ok := known[key]; !ok {
			return ""
		}
		return key
	}), nil)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	if err := k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, errors.WithStack(err)
	}

	if cfg.IsDevelopment() {
		loadDevelopmentConfig(cfg)
	}

	if err := checkRequired(cfg); err != nil {
		return nil, err
	}

	hostname, err := os.Hostname()
	if err != nil {
		return nil, errors.WithStack(err)
	}
	cfg.Hostname = hostname
	cfg.MediaURL = "/" + strings.Trim(cfg.MediaURL, "/")

	return cfg, nil
}

// NewForTest returns a config backed by an in-memory database.
func NewForTest() *Config {
	cfg := &Config{}
	_ = defaults.Set(cfg)
	cfg.DatabaseFilePath = ":memory:"
	cfg.DatabaseConnectRetryCount = 1
	cfg.DatabaseConnectRetryDelay = 0
	cfg.Environment = "test"
	cfg.JWTSecret = "test-secret"
	cfg.ServerHost = "127.0.0.1"
	cfg.MediaDir = os.TempDir()
	return cfg
}

// IsTest reports whether test-only routes should be mounted.
func (cfg *Config) IsTest() bool {
	return cfg.Environment == "test"
}

func knownKeys() map[string]struct{} {
	keys := map[string]struct{}{}
	t := reflect.TypeOf(Config{})
	for i := 0; i < t.NumField(); i++ {
		tag := t.Field(i).Tag.Get("koanf")
		if tag == "" || tag == "-" {
			continue
		}
		keys[tag] = struct{}{}
	}
	return keys
}

func checkRequired(cfg *Config) error {
	missing := []string{}
	v := reflect.ValueOf(cfg).Elem()
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if field.Tag.Get("required") != "true" {
			continue
		}
		if v.Field(i).IsZero() {
			key := toSnakeCase(field.Name)
			missing = append(missing, strings.ToUpper(key)+" ("+key+")")
		}
	}
	if len(missing) > 0 {
		return errors.Errorf("missing required config: %s", strings.Join(missing, ", "))
	}
	return nil
}

func toSnakeCase(s string) string {
	return strcase.ToSnake(s)
}
