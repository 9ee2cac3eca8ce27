package git

import (
	"context"
	"errors"
	"path/filepath"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/m-mizutani/goerr/v2"

	"github.com/m-mizutani/jci/pkg/domain/interfaces"
	"github.com/m-mizutani/jci/pkg/domain/model"
	"github.com/m-mizutani/jci/pkg/domain/types"
)

type inspector struct {
	dir string
}

// NewInspector creates a GitInspector for the repository containing dir
func NewInspector(dir string) interfaces.GitInspector {
	return &inspector{dir: dir}
}

// Inspect returns the job name and active branch of the repository
func (x *inspector) Inspect(ctx context.Context) (*model.GitInfo, error) {
	repo, err := git.PlainOpenWithOptions(x.dir, &git.PlainOpenOptions{
		DetectDotGit:          true,
		EnableDotGitCommonDir: true,
	})
	if err != nil {
		if errors.Is(err, git.ErrRepositoryNotExists) {
			return nil, goerr.Wrap(types.ErrNotGitRepository, "no repository found", goerr.V("dir", x.dir))
		}
		return nil, goerr.Wrap(err, "failed to open repository", goerr.V("dir", x.dir))
	}

	worktree, err := repo.Worktree()
	if err != nil {
		if errors.Is(err, git.ErrIsBareRepository) {
			return nil, goerr.Wrap(types.ErrNotGitRepository, "repository has no working directory", goerr.V("dir", x.dir))
		}
		return nil, goerr.Wrap(err, "failed to get worktree", goerr.V("dir", x.dir))
	}

	branch, err := activeBranch(repo)
	if err != nil {
		return nil, err
	}

	return &model.GitInfo{
		JobName: filepath.Base(worktree.Filesystem.Root()),
		Branch:  branch,
	}, nil
}

// activeBranch reads HEAD without resolving it, so a branch with no commits
// yet still has a name.
func activeBranch(repo *git.Repository) (string, error) {
	head, err := repo.Reference(plumbing.HEAD, false)
	if err != nil {
		return "", goerr.Wrap(err, "failed to read HEAD")
	}

	if head.Type() != plumbing.SymbolicReference || !head.Target().IsBranch() {
		return "", goerr.New("HEAD is detached", goerr.V("head", head.Hash().String()))
	}

	return head.Target().Short(), nil
}
