package status

import (
	"fmt"
	"html"
	"strings"

	"github.com/aholiveira/zabbix-VB-R-SQL/internal/config"
	"github.com/aholiveira/zabbix-VB-R-SQL/internal/models"
)

// UnknownJobType is reported for type codes missing from the catalog.
const UnknownJobType = "Unknown"

// JobError ties a reconciliation failure to the job it affected. The job is
// left out of the output; other jobs are unaffected.
type JobError struct {
	Job string
	Err error
}

func (e *JobError) Error() string { return fmt.Sprintf("job %q: %v", e.Job, e.Err) }

func (e *JobError) Unwrap() error { return e.Err }

// Reconciler merges configured jobs with their session history.
type Reconciler struct {
	jobTypes config.JobTypeCatalog
}

func NewReconciler(jobTypes config.JobTypeCatalog) *Reconciler {
	return &Reconciler{jobTypes: jobTypes}
}

// Reconcile returns one record per configured, scheduled job that has at
// least one session, built from its most recent session. Jobs set to run
// manually are dropped. Jobs whose options or latest log cannot be parsed are
// dropped and reported in the returned errors.
//
// Records follow the order of jobs; a name listed twice yields two records.
// When two sessions of a job share the newest creation time the one that
// appears later in sessions wins.
func (r *Reconciler) Reconcile(jobs []models.ConfiguredJob, sessions []models.JobSession) ([]models.JobStatusRecord, []error) {
	latest := latestByJob(sessions)

	records := make([]models.JobStatusRecord, 0, len(jobs))
	var errs []error
	for _, job := range jobs {
		opts, err := ParseJobOptions(job.Options)
		if err != nil {
			errs = append(errs, &JobError{Job: job.Name, Err: err})
			continue
		}
		if opts.RunManually {
			continue
		}

		s, ok := latest[job.Name]
		if !ok {
			continue
		}

		rec, err := r.record(s)
		if err != nil {
			errs = append(errs, &JobError{Job: job.Name, Err: err})
			continue
		}
		records = append(records, rec)
	}
	return records, errs
}

func (r *Reconciler) record(s *models.JobSession) (models.JobStatusRecord, error) {
	reason, err := failureReason(s)
	if err != nil {
		return models.JobStatusRecord{}, err
	}
	typeName, ok := r.jobTypes.Label(s.JobType)
	if !ok {
		typeName = UnknownJobType
	}
	return models.JobStatusRecord{
		JobID:       s.JobID,
		JobTypeID:   s.JobType,
		JobTypeName: html.EscapeString(typeName),
		JobName:     html.EscapeString(s.JobName),
		Result:      s.Result,
		IsRetry:     s.IsRetry,
		Reason:      html.EscapeString(reason),
		Progress:    s.Progress,
		Start:       ToEpochOffset(s.CreationTime),
		End:         ToEpochOffset(s.EndTime),
	}, nil
}

// failureReason joins the session's own reason with the titles of the failed
// log entries, one per line, base reason first.
func failureReason(s *models.JobSession) (string, error) {
	entries, err := ParseSessionLog(s.LogXML)
	if err != nil {
		return "", err
	}
	var lines []string
	if s.Reason != nil && *s.Reason != "" {
		lines = append(lines, *s.Reason)
	}
	for _, e := range entries {
		if e.Failed() {
			lines = append(lines, e.Title)
		}
	}
	return strings.Join(lines, "\n"), nil
}

func latestByJob(sessions []models.JobSession) map[string]*models.JobSession {
	latest := make(map[string]*models.JobSession)
	for i := range sessions {
		s := &sessions[i]
		cur, ok := latest[s.JobName]
		if !ok || !createdBefore(s, cur) {
			latest[s.JobName] = s
		}
	}
	return latest
}

// createdBefore reports whether a was created strictly before b. A session
// without a creation time sorts before any session that has one.
func createdBefore(a, b *models.JobSession) bool {
	switch {
	case a.CreationTime == nil:
		return b.CreationTime != nil
	case b.CreationTime == nil:
		return false
	default:
		return a.CreationTime.Before(*b.CreationTime)
	}
}
