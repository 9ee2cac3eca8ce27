package cli

import (
	"context"
	"errors"
	"log/slog"
	"os"

	"github.com/m-mizutani/goerr/v2"

	"github.com/m-mizutani/jci/pkg/cli/config"
	"github.com/m-mizutani/jci/pkg/domain/types"
	gitinfra "github.com/m-mizutani/jci/pkg/infra/git"
	"github.com/m-mizutani/jci/pkg/infra/jenkins"
	"github.com/m-mizutani/jci/pkg/usecase"
	"github.com/m-mizutani/jci/pkg/utils/console"
)

// runAction inspects the checkout, connects to Jenkins and runs one action
func runAction(
	ctx context.Context,
	action string,
	rt *runtime,
	jenkinsCfg *config.Jenkins,
	printer *console.Printer,
	logger *slog.Logger,
) error {
	workDir := rt.workDir
	if workDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return goerr.Wrap(err, "failed to get working directory")
		}
		workDir = wd
	}

	gitInfo, err := gitinfra.NewInspector(workDir).Inspect(ctx)
	if err != nil {
		if errors.Is(err, types.ErrNotGitRepository) {
			printer.Error("Could not read the git repository in the current working directory!")
		} else {
			printer.Error("Could not read the git repository: %v", err)
		}
		return err
	}

	printer.Info("Job/project ID is %s.", gitInfo.JobName)
	printer.Info("Current branch is %s.", gitInfo.Branch)
	printer.Println("")

	cfg, err := jenkinsCfg.Load()
	if err != nil {
		if errors.Is(err, types.ErrMissingConfiguration) {
			printer.Error("Missing configuration parameters: %v", err)
		} else {
			printer.Error("Could not load the Jenkins configuration: %v", err)
		}
		return err
	}
	logger.Debug("Loaded Jenkins configuration", slog.Any("config", cfg))

	client, err := jenkins.NewClient(cfg, jenkins.WithLogger(logger))
	if err != nil {
		printer.Error("Invalid Jenkins server: %v", err)
		return err
	}

	dispatcher := usecase.NewDispatcher(client, printer,
		usecase.WithLookupEnv(rt.lookupEnv),
		usecase.WithLogger(logger),
	)

	if err := dispatcher.Dispatch(ctx, action, gitInfo); err != nil {
		printer.Error("%v", err)
		return err
	}

	return nil
}
