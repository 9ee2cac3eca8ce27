package cli

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/google/uuid"
	"github.com/urfave/cli/v3"

	"github.com/m-mizutani/jci/pkg/cli/config"
	"github.com/m-mizutani/jci/pkg/domain/types"
	"github.com/m-mizutani/jci/pkg/utils/console"
)

type runtime struct {
	stdout    io.Writer
	stderr    io.Writer
	workDir   string
	lookupEnv func(key string) (string, bool)
}

// Option is a functional option for Run, mainly used by tests
type Option func(*runtime)

// WithStdout sets the destination for command output
func WithStdout(w io.Writer) Option {
	return func(r *runtime) {
		r.stdout = w
	}
}

// WithStderr sets the destination for logs
func WithStderr(w io.Writer) Option {
	return func(r *runtime) {
		r.stderr = w
	}
}

// WithWorkDir sets the directory the git repository is searched from
func WithWorkDir(dir string) Option {
	return func(r *runtime) {
		r.workDir = dir
	}
}

// WithLookupEnv replaces os.LookupEnv for action parameters
func WithLookupEnv(lookupEnv func(key string) (string, bool)) Option {
	return func(r *runtime) {
		r.lookupEnv = lookupEnv
	}
}

// Run runs the CLI application
func Run(ctx context.Context, args []string, opts ...Option) error {
	rt := &runtime{
		stdout:    os.Stdout,
		stderr:    os.Stderr,
		lookupEnv: os.LookupEnv,
	}
	for _, opt := range opts {
		opt(rt)
	}

	var (
		loggerCfg  = config.Logger{Writer: rt.stderr}
		jenkinsCfg config.Jenkins
		sentryCfg  config.Sentry
		logger     *slog.Logger
		action     string
	)

	flags := append(loggerCfg.Flags(), jenkinsCfg.Flags()...)
	flags = append(flags, sentryCfg.Flags()...)

	app := &cli.Command{
		Name:      "jci",
		Usage:     "Trigger, inspect and cancel Jenkins jobs for the current git repository",
		ArgsUsage: "<build|queue|cancel|list|console|deploy>",
		Version:   types.Version,
		Flags:     flags,
		Writer:    rt.stdout,
		ErrWriter: rt.stderr,
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			var err error
			logger, err = loggerCfg.Configure()
			if err != nil {
				return nil, err
			}

			logger = logger.With("run_id", uuid.NewString())
			slog.SetDefault(logger)

			if err := sentryCfg.Configure(); err != nil {
				return nil, err
			}
			return ctx, nil
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			action = c.Args().First()
			printer := console.New(console.WithWriter(rt.stdout))
			return runAction(ctx, action, rt, &jenkinsCfg, printer, logger)
		},
	}

	if err := app.Run(ctx, args); err != nil {
		if logger == nil {
			logger = slog.Default()
		}
		logger.Error("CLI execution failed", slog.Any("error", err))
		sentryCfg.Capture(err, map[string]string{"action": action})
		return err
	}

	return nil
}
