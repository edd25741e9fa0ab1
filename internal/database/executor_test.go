package database

import (
	"bytes"
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/aholiveira/zabbix-VB-R-SQL/internal/config"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testDBConfig = config.DatabaseConfig{
	Driver:     config.DriverSQLServer,
	Address:    "vbr01",
	Name:       "VeeamBackup",
	Auth:       config.AuthIntegrated,
	RetryDelay: time.Millisecond,
}

// scriptedOpener hands out the given handles in order and counts calls.
type scriptedOpener struct {
	results []openResult
	calls   int
}

type openResult struct {
	db  *sql.DB
	err error
}

func (o *scriptedOpener) open(driver, dsn string) (*sql.DB, error) {
	r := o.results[o.calls]
	o.calls++
	return r.db, r.err
}

func newMock(t *testing.T, monitorPings bool) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(
		sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual),
		sqlmock.MonitorPingsOption(monitorPings),
	)
	require.NoError(t, err)
	return db, mock
}

func scanCount(dst *int) func(*sql.Rows) error {
	return func(rows *sql.Rows) error {
		for rows.Next() {
			if err := rows.Scan(dst); err != nil {
				return err
			}
		}
		return nil
	}
}

func TestExecutorQuery(t *testing.T) {
	db, mock := newMock(t, false)
	mock.ExpectQuery("SELECT 1").WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(7))
	mock.ExpectClose()

	opener := &scriptedOpener{results: []openResult{{db: db}}}
	ex, err := NewExecutor(testDBConfig, zerolog.Nop(), WithOpener(opener.open))
	require.NoError(t, err)

	var n int
	require.NoError(t, ex.Query(context.Background(), "SELECT 1", scanCount(&n)))

	assert.Equal(t, 7, n)
	assert.Equal(t, 1, opener.calls)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecutorRetriesOnceAfterOpenFailure(t *testing.T) {
	db, mock := newMock(t, false)
	mock.ExpectQuery("SELECT 1").WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(1))
	mock.ExpectClose()

	opener := &scriptedOpener{results: []openResult{
		{err: errors.New("network unreachable")},
		{db: db},
	}}
	ex, err := NewExecutor(testDBConfig, zerolog.Nop(), WithOpener(opener.open))
	require.NoError(t, err)

	var n int
	require.NoError(t, ex.Query(context.Background(), "SELECT 1", scanCount(&n)))
	assert.Equal(t, 2, opener.calls)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecutorGivesUpAfterSecondFailure(t *testing.T) {
	opener := &scriptedOpener{results: []openResult{
		{err: errors.New("login failed")},
		{err: errors.New("login failed again")},
		{err: errors.New("must not be reached")},
	}}
	ex, err := NewExecutor(testDBConfig, zerolog.Nop(), WithOpener(opener.open))
	require.NoError(t, err)

	err = ex.Query(context.Background(), "SELECT 1", func(*sql.Rows) error {
		t.Fatal("scan must not run without a connection")
		return nil
	})

	require.Error(t, err)
	var qerr *QueryError
	require.True(t, errors.As(err, &qerr))
	assert.Equal(t, "connect", qerr.Op)
	assert.Contains(t, err.Error(), "login failed again")
	assert.Equal(t, 2, opener.calls)
}

func TestExecutorPingFailureClosesAndRetries(t *testing.T) {
	bad, badMock := newMock(t, true)
	badMock.ExpectPing().WillReturnError(errors.New("connection refused"))
	badMock.ExpectClose()

	good, goodMock := newMock(t, true)
	goodMock.ExpectPing()
	goodMock.ExpectQuery("SELECT 1").WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(3))
	goodMock.ExpectClose()

	opener := &scriptedOpener{results: []openResult{{db: bad}, {db: good}}}
	ex, err := NewExecutor(testDBConfig, zerolog.Nop(), WithOpener(opener.open))
	require.NoError(t, err)

	var n int
	require.NoError(t, ex.Query(context.Background(), "SELECT 1", scanCount(&n)))
	assert.Equal(t, 3, n)
	assert.NoError(t, badMock.ExpectationsWereMet())
	assert.NoError(t, goodMock.ExpectationsWereMet())
}

func TestExecutorQueryFailureReleasesConnection(t *testing.T) {
	db, mock := newMock(t, false)
	mock.ExpectQuery("SELECT broken").WillReturnError(errors.New("permission denied"))
	mock.ExpectClose()

	opener := &scriptedOpener{results: []openResult{{db: db}}}
	ex, err := NewExecutor(testDBConfig, zerolog.Nop(), WithOpener(opener.open))
	require.NoError(t, err)

	err = ex.Query(context.Background(), "SELECT broken", scanCount(new(int)))
	var qerr *QueryError
	require.True(t, errors.As(err, &qerr))
	assert.Equal(t, "query", qerr.Op)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecutorScanFailureReleasesConnection(t *testing.T) {
	db, mock := newMock(t, false)
	mock.ExpectQuery("SELECT 1").WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow("not a number"))
	mock.ExpectClose()

	opener := &scriptedOpener{results: []openResult{{db: db}}}
	ex, err := NewExecutor(testDBConfig, zerolog.Nop(), WithOpener(opener.open))
	require.NoError(t, err)

	err = ex.Query(context.Background(), "SELECT 1", scanCount(new(int)))
	var qerr *QueryError
	require.True(t, errors.As(err, &qerr))
	assert.Equal(t, "scan", qerr.Op)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecutorSuppressesCloseError(t *testing.T) {
	db, mock := newMock(t, false)
	mock.ExpectQuery("SELECT 1").WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(1))
	mock.ExpectClose().WillReturnError(errors.New("already closed"))

	opener := &scriptedOpener{results: []openResult{{db: db}}}
	ex, err := NewExecutor(testDBConfig, zerolog.Nop(), WithOpener(opener.open))
	require.NoError(t, err)

	assert.NoError(t, ex.Query(context.Background(), "SELECT 1", scanCount(new(int))))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNewExecutorRejectsBadConfig(t *testing.T) {
	_, err := NewExecutor(config.DatabaseConfig{Driver: "oracle", Address: "x"}, zerolog.Nop())
	assert.Error(t, err)
}

func TestDriverLogger(t *testing.T) {
	var buf bytes.Buffer
	l := newDriverLogger(zerolog.New(&buf).Level(zerolog.DebugLevel))
	l.Printf("login to %s\n", "vbr01")
	l.Println("packet", 4)

	assert.Contains(t, buf.String(), `"message":"login to vbr01"`)
	assert.Contains(t, buf.String(), `"message":"packet 4"`)
	assert.Contains(t, buf.String(), `"component":"mssql-driver"`)
}
