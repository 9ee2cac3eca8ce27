package config_test

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/m-mizutani/jci/pkg/cli/config"
	"github.com/m-mizutani/jci/pkg/domain/model"
)

func TestLogger_Configure(t *testing.T) {
	tests := []struct {
		name    string
		level   string
		wantErr bool
	}{
		{
			name:    "Valid level: debug",
			level:   "debug",
			wantErr: false,
		},
		{
			name:    "Valid level: DEBUG (case insensitive)",
			level:   "DEBUG",
			wantErr: false,
		},
		{
			name:    "Valid level: info",
			level:   "info",
			wantErr: false,
		},
		{
			name:    "Valid level: warn",
			level:   "warn",
			wantErr: false,
		},
		{
			name:    "Valid level: ERROR",
			level:   "ERROR",
			wantErr: false,
		},
		{
			name:    "Invalid level: invalid",
			level:   "invalid",
			wantErr: true,
		},
		{
			name:    "Invalid level: empty string",
			level:   "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger := &config.Logger{
				Level:  tt.level,
				Writer: &bytes.Buffer{},
			}

			result, err := logger.Configure()
			if tt.wantErr {
				gt.Error(t, err)
				gt.Value(t, result).Nil()
				return
			}

			gt.NoError(t, err)
			gt.Value(t, result).NotNil()
		})
	}
}

func TestLogger_Configure_JSONFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := &config.Logger{
		Level:  "info",
		JSON:   true,
		Writer: &buf,
	}

	result, err := logger.Configure()
	gt.NoError(t, err)

	result.Info("test log message", slog.String("job", "test--myrepo"))
	gt.String(t, buf.String()).Contains(`"msg":"test log message"`)
	gt.String(t, buf.String()).Contains(`"job":"test--myrepo"`)
}

func TestLogger_Configure_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := &config.Logger{
		Level:  "warn",
		JSON:   true,
		Writer: &buf,
	}

	result, err := logger.Configure()
	gt.NoError(t, err)

	result.Info("hidden message")
	result.Warn("visible message")
	gt.String(t, buf.String()).NotContains("hidden message")
	gt.String(t, buf.String()).Contains("visible message")
}

func TestLogger_Configure_RedactsToken(t *testing.T) {
	var buf bytes.Buffer
	logger := &config.Logger{
		Level:  "debug",
		JSON:   true,
		Writer: &buf,
	}

	result, err := logger.Configure()
	gt.NoError(t, err)

	result.Debug("loaded config", slog.Any("config", model.JenkinsConfig{
		Server:   "https://ci.example.com",
		Username: "alice",
		APIToken: "very-secret-token",
	}))
	gt.String(t, buf.String()).NotContains("very-secret-token")
	gt.String(t, buf.String()).Contains("alice")
}

func TestLogger_Flags(t *testing.T) {
	logger := &config.Logger{}
	flags := logger.Flags()

	gt.Value(t, len(flags)).Equal(2)

	flagNames := make(map[string]bool)
	for _, flag := range flags {
		names := flag.Names()
		if len(names) > 0 {
			flagNames[names[0]] = true
		}
	}

	gt.Value(t, flagNames["log-level"]).Equal(true)
	gt.Value(t, flagNames["log-json"]).Equal(true)
}
