package repository

import (
	"context"
	"database/sql"

	"github.com/aholiveira/zabbix-VB-R-SQL/internal/config"
	"github.com/aholiveira/zabbix-VB-R-SQL/internal/models"
	"github.com/pkg/errors"
)

// Querier runs a query on a fresh connection and passes the rows to scan.
// *database.Executor satisfies it.
type Querier interface {
	Query(ctx context.Context, query string, scan func(*sql.Rows) error) error
}

type JobRepository interface {
	ListSessions(ctx context.Context) ([]models.JobSession, error)
	ListConfiguredJobs(ctx context.Context) ([]models.ConfiguredJob, error)
	CountScheduledJobs(ctx context.Context) (int, error)
}

type jobRepository struct {
	q        Querier
	queries  Queries
	hasTypes bool
}

func NewJobRepository(q Querier, driver string, jobTypes config.JobTypeCatalog) (JobRepository, error) {
	queries, err := BuildQueries(driver, jobTypes)
	if err != nil {
		return nil, err
	}
	return &jobRepository{q: q, queries: queries, hasTypes: jobTypes.Len() > 0}, nil
}

func (r *jobRepository) ListSessions(ctx context.Context) ([]models.JobSession, error) {
	sessions := []models.JobSession{}
	err := r.q.Query(ctx, r.queries.Sessions, func(rows *sql.Rows) error {
		for rows.Next() {
			var (
				s            models.JobSession
				reason       sql.NullString
				logXML       sql.NullString
				creationTime sql.NullTime
				endTime      sql.NullTime
			)
			if err := rows.Scan(
				&s.JobID,
				&s.JobType,
				&s.JobName,
				&s.Result,
				&s.IsRetry,
				&reason,
				&logXML,
				&s.Progress,
				&creationTime,
				&endTime,
			); err != nil {
				return errors.Wrap(err, "scanning job session")
			}

			if reason.Valid {
				s.Reason = &reason.String
			}
			if logXML.Valid {
				s.LogXML = &logXML.String
			}
			if creationTime.Valid {
				t := creationTime.Time.UTC()
				s.CreationTime = &t
			}
			if endTime.Valid {
				t := endTime.Time.UTC()
				s.EndTime = &t
			}
			sessions = append(sessions, s)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return sessions, nil
}

func (r *jobRepository) ListConfiguredJobs(ctx context.Context) ([]models.ConfiguredJob, error) {
	jobs := []models.ConfiguredJob{}
	if !r.hasTypes {
		return jobs, nil
	}
	err := r.q.Query(ctx, r.queries.ConfiguredJobs, func(rows *sql.Rows) error {
		for rows.Next() {
			var (
				j       models.ConfiguredJob
				options sql.NullString
			)
			if err := rows.Scan(&j.Name, &j.Type, &options); err != nil {
				return errors.Wrap(err, "scanning configured job")
			}
			if options.Valid {
				j.Options = &options.String
			}
			jobs = append(jobs, j)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return jobs, nil
}

func (r *jobRepository) CountScheduledJobs(ctx context.Context) (int, error) {
	if !r.hasTypes {
		return 0, nil
	}
	var total int
	err := r.q.Query(ctx, r.queries.CountJobs, func(rows *sql.Rows) error {
		if !rows.Next() {
			return errors.New("job count returned no rows")
		}
		return rows.Scan(&total)
	})
	if err != nil {
		return 0, err
	}
	return total, nil
}
