package model

const (
	testJobPrefix   = "test--"
	deployJobPrefix = "deploy--"
)

// TestJobName returns the Jenkins test job name for a project
func TestJobName(projectName string) string {
	return testJobPrefix + projectName
}

// DeployJobName returns the Jenkins deploy job name for a project
func DeployJobName(projectName string) string {
	return deployJobPrefix + projectName
}
