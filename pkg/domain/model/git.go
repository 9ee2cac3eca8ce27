package model

// GitInfo represents the state of the local checkout used to address Jenkins jobs
type GitInfo struct {
	JobName string // Last path segment of the repository working directory
	Branch  string // Currently checked-out branch
}
