package repository

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/aholiveira/zabbix-VB-R-SQL/internal/config"
	"github.com/pkg/errors"
)

// Queries is the fixed statement set for one configuration database dialect.
type Queries struct {
	Sessions       string
	ConfiguredJobs string
	CountJobs      string
}

const sqlServerSessions = `
		SELECT
			CAST(job_id AS varchar(36)), job_type, job_name, result, is_retry,
			reason, CAST(log_xml AS nvarchar(max)), progress, creation_time, end_time
		FROM [dbo].[Backup.Model.JobSessions]
	`

const sqlServerConfiguredJobs = `
		SELECT name, type, CAST(options AS nvarchar(max))
		FROM [dbo].[JobsView]
		WHERE schedule_enable = 1
		  AND type IN (%s)
		ORDER BY name
	`

const sqlServerCountJobs = `
		SELECT COUNT(*)
		FROM [dbo].[JobsView]
		WHERE schedule_enable = 1
		  AND type IN (%s)
	`

const postgresSessions = `
		SELECT
			CAST(job_id AS text), job_type, job_name, result, is_retry,
			reason, CAST(log_xml AS text), progress, creation_time, end_time
		FROM "backup.model.jobsessions"
	`

const postgresConfiguredJobs = `
		SELECT name, type, CAST(options AS text)
		FROM jobsview
		WHERE schedule_enable = true
		  AND type IN (%s)
		ORDER BY name
	`

const postgresCountJobs = `
		SELECT COUNT(*)
		FROM jobsview
		WHERE schedule_enable = true
		  AND type IN (%s)
	`

// BuildQueries renders the statements for driver, restricted to the given
// job type codes. Codes are integers, so they are inlined as literals.
func BuildQueries(driver string, jobTypes config.JobTypeCatalog) (Queries, error) {
	codes := typeList(jobTypes.Codes())

	switch driver {
	case config.DriverSQLServer:
		return Queries{
			Sessions:       sqlServerSessions,
			ConfiguredJobs: fmt.Sprintf(sqlServerConfiguredJobs, codes),
			CountJobs:      fmt.Sprintf(sqlServerCountJobs, codes),
		}, nil
	case config.DriverPostgres:
		return Queries{
			Sessions:       postgresSessions,
			ConfiguredJobs: fmt.Sprintf(postgresConfiguredJobs, codes),
			CountJobs:      fmt.Sprintf(postgresCountJobs, codes),
		}, nil
	default:
		return Queries{}, errors.Errorf("no queries for database driver %q", driver)
	}
}

func typeList(codes []int) string {
	parts := make([]string, len(codes))
	for i, c := range codes {
		parts[i] = strconv.Itoa(c)
	}
	return strings.Join(parts, ", ")
}
