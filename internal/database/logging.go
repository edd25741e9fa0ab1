package database

import (
	"fmt"
	"strings"

	mssql "github.com/microsoft/go-mssqldb"
	"github.com/rs/zerolog"
)

// driverLogger routes go-mssqldb's diagnostics to zerolog at debug level.
type driverLogger struct {
	logger zerolog.Logger
}

func newDriverLogger(logger zerolog.Logger) *driverLogger {
	return &driverLogger{
		logger: logger.With().Str("component", "mssql-driver").Logger(),
	}
}

func (l *driverLogger) Printf(format string, v ...interface{}) {
	l.logger.Debug().Msg(strings.TrimRight(fmt.Sprintf(format, v...), "\n"))
}

func (l *driverLogger) Println(v ...interface{}) {
	l.logger.Debug().Msg(strings.TrimRight(fmt.Sprintln(v...), "\n"))
}

// RouteDriverLogs installs the zerolog adapter as the SQL Server driver's logger.
func RouteDriverLogs(logger zerolog.Logger) {
	mssql.SetLogger(newDriverLogger(logger))
}
