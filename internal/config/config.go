package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aholiveira/zabbix-VB-R-SQL/internal/utils"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

const (
	DriverSQLServer = "sqlserver"
	DriverPostgres  = "postgres"

	AuthIntegrated = "integrated"
	AuthSQL        = "sql"

	OutputStdout  = "stdout"
	OutputTrapper = "trapper"

	// EnvPrefix is prepended to every environment override, e.g. VBR_DATABASE_PASSWORD.
	EnvPrefix = "VBR"
)

type DatabaseConfig struct {
	Driver            string        `mapstructure:"driver"`
	Address           string        `mapstructure:"address"`
	Name              string        `mapstructure:"name"`
	Auth              string        `mapstructure:"auth"`
	Username          string        `mapstructure:"username"`
	Password          string        `mapstructure:"password"`
	PasswordEncrypted string        `mapstructure:"password_encrypted"`
	SSLMode           string        `mapstructure:"sslmode"`
	RetryDelay        time.Duration `mapstructure:"retry_delay"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

type OutputConfig struct {
	Mode         string `mapstructure:"mode"`
	ZabbixServer string `mapstructure:"zabbix_server"`
	ZabbixPort   int    `mapstructure:"zabbix_port"`
	Host         string `mapstructure:"host"`
}

type Config struct {
	Server      string            `mapstructure:"server"`
	Database    DatabaseConfig    `mapstructure:"database"`
	RawJobTypes map[string]string `mapstructure:"job_types"`
	Log         LogConfig         `mapstructure:"log"`
	Output      OutputConfig      `mapstructure:"output"`

	JobTypes JobTypeCatalog `mapstructure:"-"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server", "localhost")
	v.SetDefault("database.driver", DriverSQLServer)
	v.SetDefault("database.address", "localhost")
	v.SetDefault("database.name", "VeeamBackup")
	v.SetDefault("database.auth", AuthIntegrated)
	v.SetDefault("database.username", "")
	v.SetDefault("database.password", "")
	v.SetDefault("database.password_encrypted", "")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.retry_delay", 5*time.Second)
	v.SetDefault("log.level", "info")
	v.SetDefault("output.mode", OutputStdout)
	v.SetDefault("output.zabbix_server", "")
	v.SetDefault("output.zabbix_port", 10051)
	v.SetDefault("output.host", "")
}

// Load reads the configuration from a YAML file, the process environment and
// an optional .env file, and returns an immutable Config.
//
// An empty path searches ".", "./config" and "/etc/zabbix-vbr" for config.yaml.
// A missing config file is not an error when searching; every setting has a
// default or an environment override.
func Load(path string) (*Config, error) {
	if err := loadDotEnv(path); err != nil {
		return nil, err
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetConfigType("yaml")
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "reading config file %s", path)
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/zabbix-vbr")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, errors.Wrap(err, "reading config file")
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "unmarshalling config")
	}

	if err := cfg.finalize(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// loadDotEnv loads a .env file from the working directory and, when a config
// path is given, from the config file's directory. Variables already set in
// the environment win.
func loadDotEnv(path string) error {
	candidates := []string{".env"}
	if path != "" {
		candidates = append(candidates, filepath.Join(filepath.Dir(path), ".env"))
	}
	for _, f := range candidates {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return errors.Wrapf(err, "loading %s", f)
		}
	}
	return nil
}

func (c *Config) finalize() error {
	c.Database.Driver = strings.ToLower(strings.TrimSpace(c.Database.Driver))
	c.Database.Auth = strings.ToLower(strings.TrimSpace(c.Database.Auth))
	c.Output.Mode = strings.ToLower(strings.TrimSpace(c.Output.Mode))

	switch c.Database.Driver {
	case DriverSQLServer, DriverPostgres:
	case "mssql":
		c.Database.Driver = DriverSQLServer
	case "pg", "postgresql":
		c.Database.Driver = DriverPostgres
	default:
		return errors.Errorf("unsupported database driver %q", c.Database.Driver)
	}

	switch c.Database.Auth {
	case AuthIntegrated:
	case AuthSQL:
		if c.Database.Username == "" {
			return errors.New("database.username is required for sql authentication")
		}
	default:
		return errors.Errorf("unsupported database auth mode %q", c.Database.Auth)
	}

	if c.Database.PasswordEncrypted != "" {
		plain, err := utils.DecryptPasswordString(c.Database.PasswordEncrypted)
		if err != nil {
			return errors.Wrap(err, "decrypting database.password_encrypted")
		}
		c.Database.Password = plain
	}

	if c.Database.RetryDelay < 0 {
		return errors.New("database.retry_delay must not be negative")
	}

	switch c.Output.Mode {
	case OutputStdout:
	case OutputTrapper:
		if c.Output.ZabbixServer == "" || c.Output.Host == "" {
			return errors.New("output.zabbix_server and output.host are required for trapper mode")
		}
	default:
		return errors.Errorf("unsupported output mode %q", c.Output.Mode)
	}

	catalog, err := ParseJobTypes(c.RawJobTypes)
	if err != nil {
		return err
	}
	c.JobTypes = catalog
	return nil
}
