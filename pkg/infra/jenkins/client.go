package jenkins

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/bndr/gojenkins"
	"github.com/m-mizutani/goerr/v2"

	"github.com/m-mizutani/jci/pkg/domain/interfaces"
	"github.com/m-mizutani/jci/pkg/domain/model"
	"github.com/m-mizutani/jci/pkg/domain/types"
)

type client struct {
	jenkins    *gojenkins.Jenkins
	httpClient *http.Client
	logger     *slog.Logger
}

// Option is a functional option for the Jenkins client
type Option func(*client)

// WithHTTPClient replaces the HTTP client used for API calls. Its transport
// is wrapped for request tracing and a redirect policy is set unless the
// client already has one.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *client) {
		c.httpClient = httpClient
	}
}

// WithLogger sets the logger used for request tracing
func WithLogger(logger *slog.Logger) Option {
	return func(c *client) {
		c.logger = logger
	}
}

// NewClient creates a Jenkins client authenticated with a username and API token
func NewClient(cfg *model.JenkinsConfig, opts ...Option) (interfaces.JenkinsClient, error) {
	baseURL, err := url.Parse(cfg.Server)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to parse Jenkins server URL", goerr.V("server", cfg.Server))
	}
	if (baseURL.Scheme != "http" && baseURL.Scheme != "https") || baseURL.Host == "" {
		return nil, goerr.New("Jenkins server URL must be http(s)://host[/path]", goerr.V("server", cfg.Server))
	}

	c := &client{
		httpClient: &http.Client{},
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}

	httpClient := *c.httpClient
	httpClient.Transport = &transport{base: httpClient.Transport, logger: c.logger}
	if httpClient.CheckRedirect == nil {
		httpClient.CheckRedirect = checkRedirect
	}

	c.jenkins = gojenkins.CreateJenkins(&httpClient, strings.TrimSuffix(baseURL.String(), "/"), cfg.Username, cfg.APIToken)
	return c, nil
}

// job looks up a job by its full name; "folder/job" resolves inside folders
func (c *client) job(ctx context.Context, jobName string) (*gojenkins.Job, error) {
	ctx, rec := withStatusRecorder(ctx)
	id, parents := splitJobName(jobName)

	job, err := c.jenkins.GetJob(ctx, id, parents...)
	if err != nil {
		return nil, responseError(rec, err)
	}
	return job, nil
}

// Build enqueues a build, using buildWithParameters when params are given.
// Only a direct 200 or 201 answer counts as queued.
func (c *client) Build(ctx context.Context, jobName string, params map[string]string) error {
	job, err := c.job(ctx, jobName)
	if err != nil {
		return goerr.Wrap(err, "failed to submit build", goerr.V("job", jobName))
	}

	endpoint := job.Base + "/build"
	form := url.Values{}
	if len(params) > 0 {
		endpoint = job.Base + "/buildWithParameters"
		for k, v := range params {
			form.Set(k, v)
		}
	}

	ctx, rec := withStatusRecorder(ctx)
	var body string
	resp, err := c.jenkins.Requester.Post(ctx, endpoint, strings.NewReader(form.Encode()), &body, nil)
	if err != nil || !isAccepted(rec.code) {
		return goerr.Wrap(responseError(rec, err), "failed to submit build", goerr.V("job", jobName))
	}
	if resp.Request != nil && resp.Request.Method != http.MethodPost {
		return goerr.New("build request was redirected and not queued",
			goerr.V("job", jobName), goerr.V("url", resp.Request.URL.String()))
	}

	return nil
}

// GetQueueInfo returns every item in the build queue
func (c *client) GetQueueInfo(ctx context.Context) ([]*model.QueueItem, error) {
	ctx, rec := withStatusRecorder(ctx)
	queue, err := c.jenkins.GetQueue(ctx)
	if err != nil || rec.code != http.StatusOK {
		return nil, goerr.Wrap(responseError(rec, err), "failed to get queue info")
	}

	items := make([]*model.QueueItem, 0, len(queue.Raw.Items))
	for _, item := range queue.Raw.Items {
		items = append(items, &model.QueueItem{
			ID:       item.ID,
			TaskName: item.Task.Name,
			Params:   item.Params,
			Why:      item.Why,
		})
	}

	return items, nil
}

type executorResponse struct {
	Number            int `json:"number"`
	CurrentExecutable *struct {
		Number int64  `json:"number"`
		URL    string `json:"url"`
	} `json:"currentExecutable"`
}

type computerResponse struct {
	Computer []struct {
		DisplayName     string             `json:"displayName"`
		Offline         bool               `json:"offline"`
		Executors       []executorResponse `json:"executors"`
		OneOffExecutors []executorResponse `json:"oneOffExecutors"`
	} `json:"computer"`
}

const computerTree = "computer[displayName,offline," +
	"executors[number,currentExecutable[number,url]]," +
	"oneOffExecutors[number,currentExecutable[number,url]]]"

// GetRunningBuilds returns builds currently running on any online node,
// including pipeline builds on one-off executors
func (c *client) GetRunningBuilds(ctx context.Context) ([]*model.RunningBuild, error) {
	ctx, rec := withStatusRecorder(ctx)
	var resp computerResponse
	_, err := c.jenkins.Requester.GetJSON(ctx, "/computer", &resp, map[string]string{"tree": computerTree})
	if err != nil || rec.code != http.StatusOK {
		return nil, goerr.Wrap(responseError(rec, err), "failed to get running builds")
	}

	var builds []*model.RunningBuild
	for _, computer := range resp.Computer {
		if computer.Offline {
			continue
		}
		node := nodeName(computer.DisplayName)

		executors := append(computer.Executors, computer.OneOffExecutors...)
		for _, executor := range executors {
			if executor.CurrentExecutable == nil {
				continue
			}
			builds = append(builds, &model.RunningBuild{
				Name:     jobNameFromURL(executor.CurrentExecutable.URL),
				Number:   executor.CurrentExecutable.Number,
				Node:     node,
				Executor: executor.Number,
				URL:      executor.CurrentExecutable.URL,
			})
		}
	}

	return builds, nil
}

// CancelQueuedJob removes an item from the build queue. An item that has
// already left the queue is not an error.
func (c *client) CancelQueuedJob(ctx context.Context, id int64) error {
	queueCtx, queueRec := withStatusRecorder(ctx)
	queue, err := c.jenkins.GetQueue(queueCtx)
	if err != nil || queueRec.code != http.StatusOK {
		return goerr.Wrap(responseError(queueRec, err), "failed to get queue info", goerr.V("id", id))
	}

	task := queue.GetTaskById(id)
	if task == nil {
		c.logger.Debug("queue item already left the queue", "id", id)
		return nil
	}

	// Depending on the version Jenkins replies to a successful cancel with
	// 204, a redirect to the queue or 404. gojenkins only reports 200 as ok,
	// so the recorded status decides.
	ctx, rec := withStatusRecorder(ctx)
	_, err = task.Cancel(ctx)
	if rec.code == http.StatusNotFound || (err == nil && isSuccess(rec.code)) {
		return nil
	}

	return goerr.Wrap(responseError(rec, err), "failed to cancel queued job", goerr.V("id", id))
}

// StopBuild aborts a running build. A build that already finished is left alone.
func (c *client) StopBuild(ctx context.Context, jobName string, number int64) error {
	job, err := c.job(ctx, jobName)
	if err != nil {
		return goerr.Wrap(err, "failed to stop build", goerr.V("job", jobName), goerr.V("number", number))
	}

	build := &gojenkins.Build{
		Jenkins: c.jenkins,
		Job:     job,
		Raw:     new(gojenkins.BuildResponse),
		Depth:   1,
		Base:    job.Base + "/" + strconv.FormatInt(number, 10),
	}

	ctx, rec := withStatusRecorder(ctx)
	if _, err := build.Stop(ctx); err != nil && !isSuccess(rec.code) {
		return goerr.Wrap(responseError(rec, err), "failed to stop build", goerr.V("job", jobName), goerr.V("number", number))
	}

	return nil
}

// GetJobInfo returns job metadata including the last completed build
func (c *client) GetJobInfo(ctx context.Context, jobName string) (*model.JobInfo, error) {
	job, err := c.job(ctx, jobName)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get job info", goerr.V("job", jobName))
	}

	last := job.Raw.LastCompletedBuild
	if last.Number == 0 {
		return nil, goerr.Wrap(types.ErrNotFound, "job has no completed build", goerr.V("job", jobName))
	}

	return &model.JobInfo{
		Name: job.Raw.Name,
		URL:  job.Raw.URL,
		LastCompletedBuild: &model.BuildRef{
			Number: last.Number,
			URL:    last.URL,
		},
	}, nil
}

// GetConsoleOutput returns the plain-text console log of a build
func (c *client) GetConsoleOutput(ctx context.Context, jobName string, number int64) (string, error) {
	job, err := c.job(ctx, jobName)
	if err != nil {
		return "", goerr.Wrap(err, "failed to get console output", goerr.V("job", jobName), goerr.V("number", number))
	}

	ctx, rec := withStatusRecorder(ctx)
	var content string
	endpoint := job.Base + "/" + strconv.FormatInt(number, 10) + "/consoleText"
	if _, err := c.jenkins.Requester.GetXML(ctx, endpoint, &content, nil); err != nil || rec.code != http.StatusOK {
		return "", goerr.Wrap(responseError(rec, err), "failed to get console output", goerr.V("job", jobName), goerr.V("number", number))
	}

	return content, nil
}

func isSuccess(status int) bool {
	return status >= 200 && status < 300
}

func isAccepted(status int) bool {
	return status == http.StatusOK || status == http.StatusCreated
}

// responseError converts a failed call into an error. A 404 answer wraps
// types.ErrNotFound whatever error gojenkins built for it.
func responseError(rec *statusRecorder, err error) error {
	opts := []goerr.Option{
		goerr.V("status", rec.code),
		goerr.V("url", rec.url),
	}

	switch {
	case rec.code == http.StatusNotFound:
		return goerr.Wrap(types.ErrNotFound, "Jenkins returned 404", opts...)
	case err != nil:
		return goerr.Wrap(err, "Jenkins API call failed", opts...)
	default:
		return goerr.New("unexpected status code "+strconv.Itoa(rec.code), opts...)
	}
}
