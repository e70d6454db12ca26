package config

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/vango-dev/waypoint/internal/errors"
)

const (
	// ConfigFileName is the name of the configuration file.
	ConfigFileName = "waypoint.json"

	// EnvFileName is the dotenv file read next to the configuration file.
	EnvFileName = ".env"

	// EnvPrefix prefixes every environment variable the config reads.
	EnvPrefix = "WAYPOINT_"

	// DefaultPort is the default server port.
	DefaultPort = 8080

	// DefaultHost is the default bind address. Empty binds all interfaces.
	DefaultHost = ""
)

// Duration is a time.Duration written as a string ("250ms", "30s") in
// waypoint.json and in the environment.
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Std returns d as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Config represents the complete waypoint.json configuration.
type Config struct {
	Server  ServerConfig  `json:"server"`
	Log     LogConfig     `json:"log"`
	Content ContentConfig `json:"content"`
	Loader  LoaderConfig  `json:"loader"`
	Cache   CacheConfig   `json:"cache"`
	S3      S3Config      `json:"s3"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	// Host is the interface to bind to.
	Host string `json:"host" env:"HOST"`

	// Port is the port to listen on.
	Port int `json:"port" env:"PORT"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	// Level is one of debug, info, warn or error.
	Level string `json:"level" env:"LOG_LEVEL"`

	// Format is text or json.
	Format string `json:"format" env:"LOG_FORMAT"`
}

// ContentConfig selects the content backend.
type ContentConfig struct {
	// Driver is memory or sqlite.
	Driver string `json:"driver" env:"CONTENT_DRIVER"`

	// SQLiteDSN is the database for the sqlite driver.
	SQLiteDSN string `json:"sqliteDSN" env:"SQLITE_DSN"`
}

// LoaderConfig contains route loader settings.
type LoaderConfig struct {
	// Delay is simulated latency the memory content store adds to every
	// read. Useful for watching pending views and cancellation.
	Delay Duration `json:"delay" env:"LOADER_DELAY"`

	// Timeout bounds every loader. Zero disables the limit.
	Timeout Duration `json:"timeout" env:"LOADER_TIMEOUT"`
}

// CacheConfig contains query cache settings.
type CacheConfig struct {
	// StaleTime is how long a cached entry is served before refetching.
	StaleTime Duration `json:"staleTime" env:"CACHE_STALE"`
}

// S3Config points lesson bodies at an S3 bucket. An empty Bucket keeps
// bodies in the content store.
type S3Config struct {
	Bucket   string `json:"bucket" env:"S3_BUCKET"`
	Region   string `json:"region" env:"S3_REGION"`
	Endpoint string `json:"endpoint" env:"S3_ENDPOINT"`
	Prefix   string `json:"prefix" env:"S3_PREFIX"`
}

// New creates a new Config with default values.
func New() *Config {
	return &Config{
		Server: ServerConfig{
			Host: DefaultHost,
			Port: DefaultPort,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Content: ContentConfig{
			Driver:    "memory",
			SQLiteDSN: "waypoint.db?_pragma=busy_timeout(5000)",
		},
		Loader: LoaderConfig{
			Timeout: Duration(10 * time.Second),
		},
		Cache: CacheConfig{
			StaleTime: Duration(30 * time.Second),
		},
		S3: S3Config{
			Prefix: "lessons",
		},
	}
}

// Load builds the configuration for the project in dir: defaults, then
// waypoint.json if present, then the process environment layered over
// dir/.env. Real environment variables win over the .env file.
func Load(dir string) (*Config, error) {
	return load(dir, env.ToMap(os.Environ()))
}

func load(dir string, environ map[string]string) (*Config, error) {
	cfg := New()

	path := filepath.Join(dir, ConfigFileName)
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, errors.New("E300").
				WithLocation(path, 0).
				WithDetail("Failed to parse " + ConfigFileName + ": " + err.Error())
		}
		cfg.configPath = path
	case stderrors.Is(err, fs.ErrNotExist):
	default:
		return nil, errors.New("E300").WithLocation(path, 0).Wrap(err)
	}

	merged, err := readDotenv(filepath.Join(dir, EnvFileName))
	if err != nil {
		return nil, err
	}
	for k, v := range environ {
		merged[k] = v
	}

	if err := env.ParseWithOptions(cfg, env.Options{
		Prefix:      EnvPrefix,
		Environment: merged,
	}); err != nil {
		return nil, errors.New("E302").Wrap(err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// readDotenv returns the variables in path, or an empty map when the file
// does not exist.
func readDotenv(path string) (map[string]string, error) {
	vars, err := godotenv.Read(path)
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			return map[string]string{}, nil
		}
		return nil, errors.New("E302").WithLocation(path, 0).Wrap(err)
	}
	return vars, nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return errors.New("E301").
			WithDetailf("server.port %d must be between 0 and 65535", c.Server.Port)
	}
	if _, err := parseLevel(c.Log.Level); err != nil {
		return errors.New("E301").
			WithDetailf("log.level %q", c.Log.Level).
			WithSuggestion("Use debug, info, warn or error")
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		return errors.New("E301").
			WithDetailf("log.format %q", c.Log.Format).
			WithSuggestion("Use text or json")
	}
	switch c.Content.Driver {
	case "memory":
	case "sqlite":
		if c.Content.SQLiteDSN == "" {
			return errors.New("E301").WithDetail("content.sqliteDSN is required for the sqlite driver")
		}
	default:
		return errors.New("E401").WithDetailf("content.driver %q", c.Content.Driver)
	}
	if c.Loader.Delay < 0 || c.Loader.Timeout < 0 || c.Cache.StaleTime < 0 {
		return errors.New("E301").WithDetail("durations cannot be negative")
	}
	if c.S3.Bucket != "" && c.S3.Region == "" {
		return errors.New("E301").
			WithDetail("s3.region is required when s3.bucket is set")
	}
	return nil
}

// Path returns the path where the config was loaded from, or "" when no
// file was found.
func (c *Config) Path() string {
	return c.configPath
}

// Address returns the host:port the server listens on.
func (c *Config) Address() string {
	return net.JoinHostPort(c.Server.Host, strconv.Itoa(c.Server.Port))
}

// Logger builds the slog logger described by the log settings.
func (c *Config) Logger(w io.Writer) *slog.Logger {
	level, _ := parseLevel(c.Log.Level)
	opts := &slog.HandlerOptions{Level: level}
	if c.Log.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(s))); err != nil {
		return 0, fmt.Errorf("log level: %w", err)
	}
	return level, nil
}
