package dispatch

import (
	"context"
	"strconv"
	"strings"

	"github.com/aholiveira/zabbix-VB-R-SQL/internal/hostinfo"
	"github.com/aholiveira/zabbix-VB-R-SQL/internal/models"
	"github.com/aholiveira/zabbix-VB-R-SQL/internal/output"
	"github.com/aholiveira/zabbix-VB-R-SQL/internal/repository"
	"github.com/aholiveira/zabbix-VB-R-SQL/internal/status"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

const (
	ModeRepoInfo = "RepoInfo"
	ModeJobsInfo = "JobsInfo"
	ModeTotalJob = "TotalJob"

	KeyRepoInfo = "vbr.repo.info"
	KeyJobsInfo = "vbr.jobs.info"
	KeyTotalJob = "vbr.jobs.total"
)

// ErrUnknownMode is returned by Dispatch for a mode KnownMode rejects.
var ErrUnknownMode = errors.New("unknown mode")

// Usage is printed by the command line for a missing or unknown mode.
const Usage = "Usage: zabbix-vbr <RepoInfo|JobsInfo|TotalJob>\n" +
	"  RepoInfo  repository capacity, free space and state (JSON)\n" +
	"  JobsInfo  last session status of every scheduled job (JSON)\n" +
	"  TotalJob  number of scheduled jobs\n"

// Dispatcher runs one collection mode and hands the result to Sender.
// Data failures are logged and degrade to empty output; only a failure to
// deliver output is returned.
type Dispatcher struct {
	Jobs         repository.JobRepository
	Repositories hostinfo.Source
	Reconciler   *status.Reconciler
	Sender       output.Sender
	Server       string
	Logger       zerolog.Logger
}

// KnownMode reports whether mode names a collection mode.
func KnownMode(mode string) bool {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case strings.ToLower(ModeRepoInfo), strings.ToLower(ModeJobsInfo), strings.ToLower(ModeTotalJob):
		return true
	}
	return false
}

func (d *Dispatcher) Dispatch(ctx context.Context, mode string) error {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case strings.ToLower(ModeRepoInfo):
		return d.repoInfo(ctx)
	case strings.ToLower(ModeJobsInfo):
		return d.jobsInfo(ctx)
	case strings.ToLower(ModeTotalJob):
		return d.totalJob(ctx)
	default:
		return errors.Wrapf(ErrUnknownMode, "%q", mode)
	}
}

func (d *Dispatcher) repoInfo(ctx context.Context) error {
	records := []models.RepositoryRecord{}
	raw, err := d.Repositories.Repositories(ctx, d.Server)
	if err != nil {
		d.Logger.Error().Err(err).Str("server", d.Server).Msg("failed to read repositories")
	} else {
		records = status.FormatRepositories(raw)
	}
	return d.sendJSON(ctx, KeyRepoInfo, records)
}

func (d *Dispatcher) jobsInfo(ctx context.Context) error {
	records := []models.JobStatusRecord{}

	jobs, err := d.Jobs.ListConfiguredJobs(ctx)
	if err != nil {
		d.Logger.Error().Err(err).Msg("failed to list configured jobs")
		return d.sendJSON(ctx, KeyJobsInfo, records)
	}
	sessions, err := d.Jobs.ListSessions(ctx)
	if err != nil {
		d.Logger.Error().Err(err).Msg("failed to list job sessions")
		return d.sendJSON(ctx, KeyJobsInfo, records)
	}

	records, errs := d.Reconciler.Reconcile(jobs, sessions)
	for _, err := range errs {
		d.Logger.Warn().Err(err).Msg("job skipped")
	}
	d.Logger.Debug().
		Int("configured", len(jobs)).
		Int("sessions", len(sessions)).
		Int("records", len(records)).
		Msg("jobs reconciled")
	return d.sendJSON(ctx, KeyJobsInfo, records)
}

func (d *Dispatcher) totalJob(ctx context.Context) error {
	total, err := d.Jobs.CountScheduledJobs(ctx)
	if err != nil {
		d.Logger.Error().Err(err).Msg("failed to count scheduled jobs")
		return nil
	}
	return d.Sender.Send(ctx, KeyTotalJob, []byte(strconv.Itoa(total)))
}

func (d *Dispatcher) sendJSON(ctx context.Context, key string, v interface{}) error {
	payload, err := output.EncodeJSON(v)
	if err != nil {
		return err
	}
	return d.Sender.Send(ctx, key, payload)
}
