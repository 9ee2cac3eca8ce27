package interfaces

import (
	"context"

	"github.com/m-mizutani/jci/pkg/domain/model"
)

// JenkinsClient defines operations against the Jenkins remote API
type JenkinsClient interface {
	// Build enqueues a build of jobName with the given parameters
	Build(ctx context.Context, jobName string, params map[string]string) error

	// GetQueueInfo returns items currently waiting in the build queue
	GetQueueInfo(ctx context.Context) ([]*model.QueueItem, error)

	// GetRunningBuilds returns builds currently occupying an executor
	GetRunningBuilds(ctx context.Context) ([]*model.RunningBuild, error)

	// CancelQueuedJob removes a queued item
	CancelQueuedJob(ctx context.Context, id int64) error

	// StopBuild aborts an in-progress build
	StopBuild(ctx context.Context, jobName string, number int64) error

	// GetJobInfo returns job metadata. It fails with types.ErrNotFound when
	// the job does not exist or has never completed a build.
	GetJobInfo(ctx context.Context, jobName string) (*model.JobInfo, error)

	// GetConsoleOutput returns the raw console log of a build
	GetConsoleOutput(ctx context.Context, jobName string, number int64) (string, error)
}

// GitInspector reads the local checkout state
type GitInspector interface {
	Inspect(ctx context.Context) (*model.GitInfo, error)
}
