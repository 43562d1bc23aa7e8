// Package config loads the catalog configuration from defaults, an optional
// YAML file, a .env file and BOOKCAT_* environment variables.
package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Supported database drivers.
const (
	DriverSQLite   = "sqlite"
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
)

// EnvPrefix is prepended to every environment override, e.g. BOOKCAT_DATABASE_PATH.
const EnvPrefix = "BOOKCAT"

// DefaultPath is the config file looked up in the working directory when no
// explicit path is given.
const DefaultPath = "book-catalog.yml"

type (
	Config struct {
		Database Database `mapstructure:"database" yaml:"database"`
		Log      Log      `mapstructure:"log" yaml:"log"`
	}

	Database struct {
		Driver       string        `mapstructure:"driver" yaml:"driver"`
		Path         string        `mapstructure:"path" yaml:"path"` // sqlite only
		Host         string        `mapstructure:"host" yaml:"host"`
		Port         int           `mapstructure:"port" yaml:"port"` // 0 picks the driver default
		Name         string        `mapstructure:"name" yaml:"name"`
		User         string        `mapstructure:"user" yaml:"user"`
		Password     string        `mapstructure:"password" yaml:"password"`
		DSN          string        `mapstructure:"dsn" yaml:"dsn"` // overrides everything above
		AutoMigrate  bool          `mapstructure:"auto_migrate" yaml:"auto_migrate"`
		QueryTimeout time.Duration `mapstructure:"query_timeout" yaml:"query_timeout"`
	}

	Log struct {
		Level      string `mapstructure:"level" yaml:"level"`
		File       string `mapstructure:"file" yaml:"file"`
		Production bool   `mapstructure:"production" yaml:"production"`
	}
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("database.driver", DriverSQLite)
	v.SetDefault("database.path", "library.db")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 0)
	v.SetDefault("database.name", "library")
	v.SetDefault("database.user", "")
	v.SetDefault("database.password", "")
	v.SetDefault("database.dsn", "")
	v.SetDefault("database.auto_migrate", true)
	v.SetDefault("database.query_timeout", 5*time.Second)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")
	v.SetDefault("log.production", false)
}

// Load builds the configuration. An explicit path must exist; otherwise
// BOOKCAT_CONFIG and then DefaultPath are tried and silently skipped when absent.
func Load(path string) (*Config, error) {
	// Values already present in the environment win over .env entries.
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	explicit := path != ""
	if !explicit {
		path = os.Getenv(EnvPrefix + "_CONFIG")
		explicit = path != ""
	}
	if !explicit {
		path = DefaultPath
	}

	if _, err := os.Stat(path); err == nil || explicit {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	cfg.Database.Driver = strings.ToLower(strings.TrimSpace(cfg.Database.Driver))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate reports the first unusable setting.
func (c *Config) Validate() error {
	return c.Database.Validate()
}

// Validate checks that the selected driver has what it needs to connect.
func (d Database) Validate() error {
	switch d.Driver {
	case DriverSQLite:
		if d.DSN == "" && strings.TrimSpace(d.Path) == "" {
			return errors.New("database.path is required for the sqlite driver")
		}
	case DriverMySQL, DriverPostgres:
		if d.DSN == "" && (strings.TrimSpace(d.Host) == "" || strings.TrimSpace(d.Name) == "") {
			return fmt.Errorf("database.host and database.name are required for the %s driver", d.Driver)
		}
	default:
		return fmt.Errorf("unknown database driver %q (want %s, %s or %s)",
			d.Driver, DriverSQLite, DriverMySQL, DriverPostgres)
	}
	if d.QueryTimeout < 0 {
		return errors.New("database.query_timeout must not be negative")
	}
	return nil
}

// EffectivePort returns the configured port or the driver's well-known one.
func (d Database) EffectivePort() int {
	if d.Port > 0 {
		return d.Port
	}
	switch d.Driver {
	case DriverMySQL:
		return 3306
	case DriverPostgres:
		return 5432
	}
	return 0
}

// DataSourceName renders the connection string handed to database/sql.
func (d Database) DataSourceName() string {
	if d.DSN != "" {
		return d.DSN
	}
	addr := net.JoinHostPort(d.Host, strconv.Itoa(d.EffectivePort()))

	switch d.Driver {
	case DriverMySQL:
		mc := mysql.NewConfig()
		mc.User = d.User
		mc.Passwd = d.Password
		mc.Net = "tcp"
		mc.Addr = addr
		mc.DBName = d.Name
		mc.ParseTime = true
		return mc.FormatDSN()
	case DriverPostgres:
		u := url.URL{
			Scheme:   "postgres",
			Host:     addr,
			Path:     "/" + d.Name,
			RawQuery: "sslmode=disable",
		}
		if d.User != "" {
			u.User = url.UserPassword(d.User, d.Password)
		}
		return u.String()
	default:
		// Enable busy_timeout and foreign keys.
		return fmt.Sprintf("file:%s?_busy_timeout=5000&_foreign_keys=1", d.Path)
	}
}

// Redacted describes the target without the password, for logs and errors.
func (d Database) Redacted() string {
	switch d.Driver {
	case DriverSQLite:
		if d.DSN != "" {
			return "sqlite:" + d.DSN
		}
		return "sqlite:" + d.Path
	default:
		if d.DSN != "" {
			return d.Driver + ":<dsn>"
		}
		return fmt.Sprintf("%s://%s@%s/%s", d.Driver, d.User,
			net.JoinHostPort(d.Host, strconv.Itoa(d.EffectivePort())), d.Name)
	}
}
