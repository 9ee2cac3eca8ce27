package usecase

import (
	"context"
	"errors"
	"strings"

	"github.com/m-mizutani/goerr/v2"

	"github.com/m-mizutani/jci/pkg/domain/model"
	"github.com/m-mizutani/jci/pkg/domain/types"
)

const (
	envRepoDir = "REPO_DIR"
	envBranch  = "BRANCH"

	defaultDeployBranch = "master"
)

// buildJob submits the test job for the current branch
func (d *dispatcher) buildJob(ctx context.Context, info *model.GitInfo) error {
	jobName := model.TestJobName(info.JobName)
	if err := d.client.Build(ctx, jobName, map[string]string{
		envBranch: info.Branch,
	}); err != nil {
		return goerr.Wrap(err, "failed to submit build job", goerr.V("job", jobName))
	}

	d.printer.Success("Submitted build job to the CI server.")
	return nil
}

// jobQueue prints every item in the build queue
func (d *dispatcher) jobQueue(ctx context.Context, info *model.GitInfo) error {
	queue, err := d.client.GetQueueInfo(ctx)
	if err != nil {
		return goerr.Wrap(err, "failed to get job queue")
	}

	if len(queue) == 0 {
		d.printer.Println("No jobs in queue.")
		return nil
	}

	d.printer.Println("Current jobs in queue:")
	for _, item := range queue {
		d.printer.Println("ID: %d", item.ID)
		d.printer.Println("    Name: %s", item.TaskName)
		d.printer.Println("    Parameters: %s", strings.ReplaceAll(item.Params, "\n", ""))
		d.printer.Println("    Status: %s", item.Why)
	}

	return nil
}

// cancelJobs cancels every queued item and aborts running builds of the
// test job. Each item is attempted even if an earlier one fails; failures
// are returned together at the end.
func (d *dispatcher) cancelJobs(ctx context.Context, info *model.GitInfo) error {
	queue, err := d.client.GetQueueInfo(ctx)
	if err != nil {
		return goerr.Wrap(err, "failed to get job queue")
	}

	running, err := d.client.GetRunningBuilds(ctx)
	if err != nil {
		return goerr.Wrap(err, "failed to get running builds")
	}

	var errs []error

	if len(queue) == 0 {
		d.printer.Println("No jobs in queue to cancel.")
	}
	for _, item := range queue {
		d.printer.Println("Canceling job %d.", item.ID)
		if err := d.client.CancelQueuedJob(ctx, item.ID); err != nil {
			d.printer.Error("Failed to cancel job %d: %v", item.ID, err)
			errs = append(errs, err)
		}
	}

	jobName := model.TestJobName(info.JobName)
	var targets []*model.RunningBuild
	for _, build := range running {
		if build.Name == jobName {
			targets = append(targets, build)
		}
	}

	if len(targets) == 0 {
		d.printer.Println("No currently running jobs in queue to cancel.")
	}
	for _, build := range targets {
		d.printer.Println("Aborting build %d (running on %s).", build.Number, build.Node)
		if err := d.client.StopBuild(ctx, jobName, build.Number); err != nil {
			d.printer.Error("Failed to abort build %d: %v", build.Number, err)
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return goerr.Wrap(errors.Join(errs...), "failed to cancel some jobs", goerr.V("failures", len(errs)))
	}
	return nil
}

// listJobs prints builds currently running on any node
func (d *dispatcher) listJobs(ctx context.Context, info *model.GitInfo) error {
	running, err := d.client.GetRunningBuilds(ctx)
	if err != nil {
		return goerr.Wrap(err, "failed to get running builds")
	}

	if len(running) == 0 {
		d.printer.Println("No currently running builds.")
		return nil
	}

	d.printer.Println("Currently running builds:")
	for _, build := range running {
		d.printer.Println("%s #%d running on %s", build.Name, build.Number, build.Node)
	}

	return nil
}

// consoleOutput prints the console log of the last completed test build
func (d *dispatcher) consoleOutput(ctx context.Context, info *model.GitInfo) error {
	jobName := model.TestJobName(info.JobName)

	job, err := d.client.GetJobInfo(ctx, jobName)
	if err != nil && !errors.Is(err, types.ErrNotFound) {
		return goerr.Wrap(err, "failed to get job info", goerr.V("job", jobName))
	}
	if err != nil || job.LastCompletedBuild == nil {
		d.printer.Error("No builds exist yet for this project.")
		return nil
	}

	number := job.LastCompletedBuild.Number
	d.printer.Info("Most recent build number for project %s is %d.", jobName, number)

	output, err := d.client.GetConsoleOutput(ctx, jobName, number)
	if err != nil {
		return goerr.Wrap(err, "failed to get console output", goerr.V("job", jobName), goerr.V("number", number))
	}

	d.printer.Println("%s", output)
	return nil
}

// deployJob submits the deploy job with BRANCH and REPO_DIR taken from the
// environment
func (d *dispatcher) deployJob(ctx context.Context, info *model.GitInfo) error {
	jobName := model.DeployJobName(info.JobName)
	params := d.deployParams()

	if err := d.client.Build(ctx, jobName, params); err != nil {
		return goerr.Wrap(err, "failed to submit deployment job", goerr.V("job", jobName))
	}

	repoDir, ok := params[envRepoDir]
	if !ok {
		repoDir = "default"
	}
	d.printer.Success("Submitted deployment job to the CI server for branch %s to directory %s.",
		params[envBranch], repoDir)
	return nil
}

// deployParams always sets BRANCH and sets REPO_DIR only when the variable
// exists, so Jenkins applies its own default otherwise
func (d *dispatcher) deployParams() map[string]string {
	params := map[string]string{
		envBranch: defaultDeployBranch,
	}
	if branch, ok := d.lookupEnv(envBranch); ok {
		params[envBranch] = branch
	}
	if repoDir, ok := d.lookupEnv(envRepoDir); ok {
		params[envRepoDir] = repoDir
	}
	return params
}

// invalidInput reports an action name that is not registered
func (d *dispatcher) invalidInput() {
	d.printer.Error("Unknown action.")
	d.printer.Println("Available actions: %s", strings.Join(d.Actions(), ", "))
}
