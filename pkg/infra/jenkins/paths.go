package jenkins

import (
	"net/url"
	"strings"
)

// splitJobName splits "a/b/job" into the job id and its parent folders
func splitJobName(jobName string) (string, []string) {
	segments := strings.Split(strings.Trim(jobName, "/"), "/")
	return segments[len(segments)-1], segments[:len(segments)-1]
}

// jobNameFromURL extracts "folder/job" from a build URL such as
// https://ci/job/folder/job/job/12/. Segments are split before unescaping so
// an encoded "/" stays inside its job name.
func jobNameFromURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}

	var names []string
	segments := strings.Split(strings.Trim(u.EscapedPath(), "/"), "/")
	for i := 0; i < len(segments)-1; i++ {
		if segments[i] != "job" {
			continue
		}
		name, err := url.PathUnescape(segments[i+1])
		if err != nil {
			return ""
		}
		names = append(names, name)
		i++
	}
	return strings.Join(names, "/")
}

// nodeName normalizes the controller's display name
func nodeName(displayName string) string {
	switch displayName {
	case "", "master", "Built-In Node":
		return "master"
	default:
		return displayName
	}
}
