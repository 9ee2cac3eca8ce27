package config

import (
	"os"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/mitchellh/go-homedir"
	"github.com/urfave/cli/v3"
	"gopkg.in/ini.v1"

	"github.com/m-mizutani/jci/pkg/domain/model"
	"github.com/m-mizutani/jci/pkg/domain/types"
)

// DefaultConfigPath is where the Jenkins credential file lives unless overridden
const DefaultConfigPath = "~/.ci"

const (
	keyServer   = "server"
	keyUsername = "username"
	keyAPIToken = "api_token"
)

var requiredKeys = []string{keyServer, keyUsername, keyAPIToken}

// Jenkins holds the location of the Jenkins credential file
type Jenkins struct {
	ConfigPath string
}

// Flags returns CLI flags for Jenkins configuration
func (c *Jenkins) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "config",
			Aliases:     []string{"c"},
			Usage:       "Path to the Jenkins credential file (key=value lines)",
			Value:       DefaultConfigPath,
			Destination: &c.ConfigPath,
			Sources:     cli.EnvVars("JCI_CONFIG"),
		},
	}
}

// Load reads and validates the credential file
func (c *Jenkins) Load() (*model.JenkinsConfig, error) {
	path := c.ConfigPath
	if path == "" {
		path = DefaultConfigPath
	}

	expanded, err := homedir.Expand(path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to expand config path", goerr.V("path", path))
	}

	data, err := os.ReadFile(expanded)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read config file", goerr.V("path", expanded))
	}

	cfg, err := ParseJenkinsConfig(data)
	if err != nil {
		return nil, goerr.Wrap(err, "invalid config file", goerr.V("path", expanded))
	}

	return cfg, nil
}

// ParseJenkinsConfig parses "key=value" lines. Blank lines are skipped and
// each line is split on its first "=". All of server, username and api_token
// must be present.
func ParseJenkinsConfig(data []byte) (*model.JenkinsConfig, error) {
	if err := validateLines(data); err != nil {
		return nil, err
	}

	file, err := ini.LoadSources(ini.LoadOptions{
		KeyValueDelimiters:         "=",
		IgnoreInlineComment:        true,
		IgnoreContinuation:         true,
		PreserveSurroundedQuote:    true,
		AllowPythonMultilineValues: false,
	}, data)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to parse config")
	}

	section := file.Section(ini.DefaultSection)

	var missing []string
	for _, key := range requiredKeys {
		if !section.HasKey(key) {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return nil, goerr.Wrap(types.ErrMissingConfiguration, "required keys are absent",
			goerr.V("missing", strings.Join(missing, ",")))
	}

	return &model.JenkinsConfig{
		Server:   section.Key(keyServer).String(),
		Username: section.Key(keyUsername).String(),
		APIToken: section.Key(keyAPIToken).String(),
	}, nil
}

// validateLines rejects what ini would read differently from plain
// "key=value" lines: section headers, lines without "=" and values that ini
// unquotes.
func validateLines(data []byte) error {
	for i, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		key, value, found := strings.Cut(line, "=")
		value = strings.TrimSpace(value)
		switch {
		case strings.HasPrefix(line, "["):
			return goerr.New("section headers are not supported", goerr.V("line", i+1))
		case !found:
			return goerr.New("line is not key=value", goerr.V("line", i+1))
		case strings.HasPrefix(value, "`") || strings.HasPrefix(value, `"""`):
			return goerr.New("quoted values are not supported", goerr.V("line", i+1), goerr.V("key", strings.TrimSpace(key)))
		}
	}

	return nil
}
