package usecase

import (
	"context"
	"log/slog"
	"os"
	"sort"

	"github.com/m-mizutani/jci/pkg/domain/interfaces"
	"github.com/m-mizutani/jci/pkg/domain/model"
	"github.com/m-mizutani/jci/pkg/utils/console"
)

// Action names accepted on the command line
const (
	ActionBuild   = "build"
	ActionQueue   = "queue"
	ActionCancel  = "cancel"
	ActionList    = "list"
	ActionConsole = "console"
	ActionDeploy  = "deploy"
)

type actionFunc func(ctx context.Context, info *model.GitInfo) error

type dispatcher struct {
	client    interfaces.JenkinsClient
	printer   *console.Printer
	lookupEnv func(key string) (string, bool)
	logger    *slog.Logger

	actions map[string]actionFunc
}

// Option is a functional option for the dispatcher
type Option func(*dispatcher)

// WithLookupEnv replaces os.LookupEnv for the deploy action
func WithLookupEnv(lookupEnv func(key string) (string, bool)) Option {
	return func(d *dispatcher) {
		d.lookupEnv = lookupEnv
	}
}

// WithLogger sets the logger
func WithLogger(logger *slog.Logger) Option {
	return func(d *dispatcher) {
		d.logger = logger
	}
}

// NewDispatcher creates a new ActionDispatcher bound to a Jenkins client
func NewDispatcher(client interfaces.JenkinsClient, printer *console.Printer, opts ...Option) interfaces.ActionDispatcher {
	d := &dispatcher{
		client:    client,
		printer:   printer,
		lookupEnv: os.LookupEnv,
		logger:    slog.Default(),
	}

	for _, opt := range opts {
		opt(d)
	}

	d.actions = map[string]actionFunc{
		ActionBuild:   d.buildJob,
		ActionQueue:   d.jobQueue,
		ActionCancel:  d.cancelJobs,
		ActionList:    d.listJobs,
		ActionConsole: d.consoleOutput,
		ActionDeploy:  d.deployJob,
	}

	return d
}

// Dispatch runs the action exactly once. Unknown names are reported and
// return nil.
func (d *dispatcher) Dispatch(ctx context.Context, action string, info *model.GitInfo) error {
	handler, ok := d.actions[action]
	if !ok {
		d.logger.Debug("Unknown action requested", "action", action)
		d.invalidInput()
		return nil
	}

	d.logger.Debug("Dispatching action",
		"action", action,
		"job_name", info.JobName,
		"branch", info.Branch,
	)

	return handler(ctx, info)
}

// Actions returns the registered action names in sorted order
func (d *dispatcher) Actions() []string {
	names := make([]string, 0, len(d.actions))
	for name := range d.actions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
