package cli_test

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/m-mizutani/gt"

	"github.com/m-mizutani/jci/pkg/cli"
	"github.com/m-mizutani/jci/pkg/domain/types"
)

type jenkinsRecorder struct {
	mu       sync.Mutex
	requests []string
	forms    []string
}

func (j *jenkinsRecorder) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	_ = r.ParseForm()

	key := r.Method + " " + strings.TrimSuffix(r.URL.Path, "/")

	j.mu.Lock()
	j.requests = append(j.requests, key)
	j.forms = append(j.forms, r.PostForm.Encode())
	j.mu.Unlock()

	switch key {
	case "POST /job/test--myrepo/buildWithParameters":
		w.WriteHeader(http.StatusCreated)
	case "GET /job/test--myrepo/api/json":
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"name":"test--myrepo","lastCompletedBuild":null}`))
	default:
		http.NotFound(w, r)
	}
}

// formOf returns the form of the first request matching key
func (j *jenkinsRecorder) formOf(key string) (string, bool) {
	j.mu.Lock()
	defer j.mu.Unlock()

	for i, req := range j.requests {
		if req == key {
			return j.forms[i], true
		}
	}
	return "", false
}

func (j *jenkinsRecorder) count() int {
	j.mu.Lock()
	defer j.mu.Unlock()
	return len(j.requests)
}

type fixture struct {
	repoDir    string
	configPath string
	jenkins    *jenkinsRecorder
	stdout     bytes.Buffer
	stderr     bytes.Buffer
}

func setup(t *testing.T, configBody string) *fixture {
	t.Helper()

	f := &fixture{jenkins: &jenkinsRecorder{}}
	server := httptest.NewServer(f.jenkins)
	t.Cleanup(server.Close)

	base := t.TempDir()
	f.repoDir = filepath.Join(base, "myrepo")
	gt.NoError(t, os.MkdirAll(f.repoDir, 0755))
	repo, err := git.PlainInit(f.repoDir, false)
	gt.NoError(t, err)
	head := plumbing.NewSymbolicReference(plumbing.HEAD, plumbing.NewBranchReferenceName("feature-x"))
	gt.NoError(t, repo.Storer.SetReference(head))

	if configBody == "" {
		configBody = "server=" + server.URL + "\nusername=alice\napi_token=token-123\n"
	}
	f.configPath = filepath.Join(base, ".ci")
	gt.NoError(t, os.WriteFile(f.configPath, []byte(configBody), 0600))

	return f
}

func (f *fixture) run(action string, extra ...cli.Option) error {
	args := []string{"jci", "--config", f.configPath, action}
	opts := append([]cli.Option{
		cli.WithStdout(&f.stdout),
		cli.WithStderr(&f.stderr),
		cli.WithWorkDir(f.repoDir),
		cli.WithLookupEnv(func(string) (string, bool) { return "", false }),
	}, extra...)
	return cli.Run(context.Background(), args, opts...)
}

func TestRun_Build(t *testing.T) {
	f := setup(t, "")

	gt.NoError(t, f.run("build"))

	form, ok := f.jenkins.formOf("POST /job/test--myrepo/buildWithParameters")
	gt.Value(t, ok).Equal(true)
	gt.String(t, form).Equal("BRANCH=feature-x")

	gt.String(t, f.stdout.String()).Contains("INFO: Job/project ID is myrepo.")
	gt.String(t, f.stdout.String()).Contains("INFO: Current branch is feature-x.")
	gt.String(t, f.stdout.String()).Contains("Submitted build job to the CI server.")
}

func TestRun_UnknownAction(t *testing.T) {
	f := setup(t, "")

	gt.NoError(t, f.run("launch"))
	gt.Value(t, f.jenkins.count()).Equal(0)
	gt.String(t, f.stdout.String()).Contains("ERROR: Unknown action.")
}

func TestRun_ConsoleWithoutBuilds(t *testing.T) {
	f := setup(t, "")

	gt.NoError(t, f.run("console"))
	gt.String(t, f.stdout.String()).Contains("ERROR: No builds exist yet for this project.")
}

func TestRun_NotGitRepository(t *testing.T) {
	f := setup(t, "")

	err := f.run("build", cli.WithWorkDir(t.TempDir()))
	gt.Error(t, err)
	gt.Value(t, errors.Is(err, types.ErrNotGitRepository)).Equal(true)
	gt.Value(t, f.jenkins.count()).Equal(0)
	gt.String(t, f.stdout.String()).Contains("ERROR: Could not read the git repository in the current working directory!")
}

func TestRun_MissingConfiguration(t *testing.T) {
	f := setup(t, "server=http://127.0.0.1:1\nusername=alice\n")

	err := f.run("build")
	gt.Error(t, err)
	gt.Value(t, errors.Is(err, types.ErrMissingConfiguration)).Equal(true)
	gt.Value(t, f.jenkins.count()).Equal(0)
}

func TestRun_JenkinsError(t *testing.T) {
	f := setup(t, "")

	// deploy--myrepo is unknown to the fake server
	err := f.run("deploy")
	gt.Error(t, err)
	gt.Value(t, errors.Is(err, types.ErrNotFound)).Equal(true)
	gt.String(t, f.stdout.String()).Contains("ERROR: ")
	gt.String(t, f.stderr.String()).Contains("CLI execution failed")
}

func TestRun_InvalidLogLevel(t *testing.T) {
	f := setup(t, "")

	args := []string{"jci", "--log-level", "verbose", "--config", f.configPath, "build"}
	err := cli.Run(context.Background(), args,
		cli.WithStdout(&f.stdout),
		cli.WithStderr(&f.stderr),
		cli.WithWorkDir(f.repoDir),
	)
	gt.Error(t, err)
	gt.Value(t, f.jenkins.count()).Equal(0)
}

func TestRun_BuildRedirectedToHTTPS(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method + " " + strings.TrimSuffix(r.URL.Path, "/") {
		case "GET /job/test--myrepo/api/json":
			_, _ = w.Write([]byte(`{"name":"test--myrepo"}`))
		case "POST /job/test--myrepo/buildWithParameters":
			http.Redirect(w, r, "https://ci.invalid/job/test--myrepo/buildWithParameters", http.StatusMovedPermanently)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(server.Close)

	f := setup(t, "server="+server.URL+"\nusername=alice\napi_token=token-123\n")

	gt.Error(t, f.run("build"))
	gt.String(t, f.stdout.String()).NotContains("Submitted build job to the CI server.")
	gt.String(t, f.stdout.String()).Contains("ERROR: ")
}
