package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aholiveira/zabbix-VB-R-SQL/internal/config"
	"github.com/aholiveira/zabbix-VB-R-SQL/internal/database"
	"github.com/aholiveira/zabbix-VB-R-SQL/internal/dispatch"
	"github.com/aholiveira/zabbix-VB-R-SQL/internal/hostinfo"
	"github.com/aholiveira/zabbix-VB-R-SQL/internal/output"
	"github.com/aholiveira/zabbix-VB-R-SQL/internal/repository"
	"github.com/aholiveira/zabbix-VB-R-SQL/internal/status"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

type application struct {
	config *config.Config
	logger zerolog.Logger
	stdout io.Writer
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(os.Stdout, os.Stderr).ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "zabbix-vbr <RepoInfo|JobsInfo|TotalJob>",
		Short: "Report Veeam Backup & Replication status to Zabbix",
		Long: `zabbix-vbr reads Veeam Backup & Replication state and prints it for a
Zabbix agent UserParameter, or pushes it to a Zabbix trapper item.

Modes:
  RepoInfo  repository capacity, free space and state (JSON)
  JobsInfo  last session status of every scheduled job (JSON)
  TotalJob  number of scheduled jobs`,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE: func(cmd *cobra.Command, args []string) error {
			mode := ""
			if len(args) > 0 {
				mode = args[0]
			}
			// Unknown modes never touch the configuration or the database.
			if !dispatch.KnownMode(mode) {
				_, err := io.WriteString(stdout, dispatch.Usage)
				return err
			}

			logger := newLogger(stderr)
			cfg, err := config.Load(configPath)
			if err != nil {
				logger.Error().Err(err).Msg("failed to load configuration")
				return err
			}
			logger = logger.Level(parseLevel(cfg.Log.Level, logger))

			app := &application{config: cfg, logger: logger, stdout: stdout}
			d, err := app.newDispatcher()
			if err != nil {
				logger.Error().Err(err).Msg("failed to initialise")
				return err
			}
			return d.Dispatch(cmd.Context(), mode)
		},
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config.yaml (default ./config.yaml, ./config/config.yaml or /etc/zabbix-vbr/config.yaml)")
	return cmd
}

// newLogger sets up structured, level-based logging on stderr; stdout is
// reserved for item values.
func newLogger(w io.Writer) zerolog.Logger {
	consoleWriter := zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339, NoColor: true}
	return zerolog.New(consoleWriter).With().
		Timestamp().
		Str("run_id", uuid.NewString()).
		Logger()
}

func parseLevel(name string, logger zerolog.Logger) zerolog.Level {
	level, err := zerolog.ParseLevel(name)
	if err != nil || level == zerolog.NoLevel {
		logger.Warn().Str("level", name).Msg("unknown log level, using info")
		return zerolog.InfoLevel
	}
	return level
}

// newDispatcher wires the collectors for one run. Nothing connects here;
// each query opens its own connection when it runs.
func (app *application) newDispatcher() (*dispatch.Dispatcher, error) {
	cfg := app.config
	database.RouteDriverLogs(app.logger)

	executor, err := database.NewExecutor(cfg.Database, app.logger)
	if err != nil {
		return nil, err
	}
	jobRepo, err := repository.NewJobRepository(executor, cfg.Database.Driver, cfg.JobTypes)
	if err != nil {
		return nil, err
	}

	var sender output.Sender = output.NewStdoutSender(app.stdout)
	if cfg.Output.Mode == config.OutputTrapper {
		sender = output.NewTrapperSender(cfg.Output.ZabbixServer, cfg.Output.ZabbixPort, cfg.Output.Host, app.logger)
	}

	return &dispatch.Dispatcher{
		Jobs:         jobRepo,
		Repositories: hostinfo.NewWMISource(),
		Reconciler:   status.NewReconciler(cfg.JobTypes),
		Sender:       sender,
		Server:       cfg.Server,
		Logger:       app.logger.With().Str("component", "dispatch").Logger(),
	}, nil
}
