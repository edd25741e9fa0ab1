package database

import (
	"net/url"
	"strings"

	"github.com/aholiveira/zabbix-VB-R-SQL/internal/config"
	"github.com/pkg/errors"
)

// AppName is reported to SQL Server so the collector's sessions are easy to spot.
const AppName = "zabbix-vbr"

// BuildDSN returns the database/sql driver name and connection string for cfg.
// Integrated authentication leaves credentials to the driver (SSPI or
// Kerberos for SQL Server, pgpass or peer/GSS for PostgreSQL).
func BuildDSN(cfg config.DatabaseConfig) (string, string, error) {
	address := strings.TrimSpace(cfg.Address)
	if address == "" {
		return "", "", errors.New("database address is empty")
	}

	switch cfg.Driver {
	case config.DriverSQLServer:
		return config.DriverSQLServer, sqlServerDSN(cfg, address), nil
	case config.DriverPostgres:
		return config.DriverPostgres, postgresDSN(cfg, address), nil
	default:
		return "", "", errors.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

func sqlServerDSN(cfg config.DatabaseConfig, address string) string {
	host, instance := address, ""
	if i := strings.IndexByte(address, '\\'); i >= 0 {
		host, instance = address[:i], address[i+1:]
	}

	u := &url.URL{Scheme: "sqlserver", Host: host}
	if instance != "" {
		u.Path = "/" + instance
	}
	if cfg.Auth == config.AuthSQL {
		u.User = url.UserPassword(cfg.Username, cfg.Password)
	}

	q := url.Values{}
	q.Set("database", cfg.Name)
	q.Set("app name", AppName)
	u.RawQuery = q.Encode()
	return u.String()
}

func postgresDSN(cfg config.DatabaseConfig, address string) string {
	u := &url.URL{Scheme: "postgres", Host: address, Path: "/" + cfg.Name}

	switch {
	case cfg.Auth == config.AuthSQL && cfg.Password != "":
		u.User = url.UserPassword(cfg.Username, cfg.Password)
	case cfg.Username != "":
		u.User = url.User(cfg.Username)
	}

	sslmode := cfg.SSLMode
	if sslmode == "" {
		sslmode = "disable"
	}
	q := url.Values{}
	q.Set("sslmode", sslmode)
	u.RawQuery = q.Encode()
	return u.String()
}
