package model

// JenkinsConfig holds credentials read from the jci configuration file
type JenkinsConfig struct {
	Server   string
	Username string
	APIToken string `masq:"secret"`
}

// QueueItem represents a job waiting in the Jenkins build queue
type QueueItem struct {
	ID       int64
	TaskName string
	Params   string // Newline separated "KEY=value" pairs as reported by Jenkins
	Why      string // Human readable reason the item is still queued
}

// RunningBuild represents a build currently occupying an executor
type RunningBuild struct {
	Name     string // Job name, folders joined with "/"
	Number   int64
	Node     string
	Executor int
	URL      string
}

// BuildRef identifies a single build of a job
type BuildRef struct {
	Number int64
	URL    string
}

// JobInfo holds the subset of job metadata jci consumes
type JobInfo struct {
	Name               string
	URL                string
	LastCompletedBuild *BuildRef
}
