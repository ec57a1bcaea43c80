package commands

import (
	"context"
	"fmt"

	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/autokeeper/internal/domain/entities"
	"github.com/rios0rios0/autokeeper/internal/domain/repositories"
)

// PackageUpdate turns accepted updates into commits, branches and pull requests.
type PackageUpdate interface {
	MakeUpdatePullRequests(
		ctx context.Context,
		git repositories.GitDriver,
		host repositories.PullRequestHost,
		repository entities.RepositoryData,
		updates []entities.PackageUpdateSet,
		sources entities.PackageSources,
		settings entities.Settings,
	) int
}

// PackageUpdateCommand is the pull-request composer. It works strictly in
// order on the checkout owned by the current run.
type PackageUpdateCommand struct {
	runner  repositories.UpdateRunner
	restore repositories.SolutionRestore
}

// NewPackageUpdateCommand creates a new PackageUpdateCommand.
func NewPackageUpdateCommand(
	runner repositories.UpdateRunner,
	restore repositories.SolutionRestore,
) *PackageUpdateCommand {
	return &PackageUpdateCommand{runner: runner, restore: restore}
}

// composition is the state shared by both consolidation modes for one call.
type composition struct {
	git        repositories.GitDriver
	host       repositories.PullRequestHost
	repository entities.RepositoryData
	sources    entities.PackageSources
	settings   entities.Settings
	folder     string
	remote     string
	base       string
	target     string
}

// MakeUpdatePullRequests returns the number of updates committed. In
// per-update mode an update whose push or pull request fails is left out of
// the count; in consolidated mode every commit made on the shared branch counts.
func (it *PackageUpdateCommand) MakeUpdatePullRequests(
	ctx context.Context,
	git repositories.GitDriver,
	host repositories.PullRequestHost,
	repository entities.RepositoryData,
	updates []entities.PackageUpdateSet,
	sources entities.PackageSources,
	settings entities.Settings,
) int {
	if len(updates) == 0 {
		return 0
	}

	c := composition{
		git:        git,
		host:       host,
		repository: repository,
		sources:    sources,
		settings:   settings,
		folder:     updateFolder(git, settings),
		remote:     settings.SourceControl.PushRemote,
	}
	if c.remote == "" {
		c.remote = entities.DefaultPushRemote
	}
	if err := git.AddRemote(c.remote, repository.Push.URL); err != nil {
		logger.Errorf("[composer] Failed to configure push remote %q: %v", c.remote, err)
		return 0
	}

	base, err := git.GetCurrentHead()
	if err != nil {
		logger.Errorf("[composer] Failed to read the current head: %v", err)
		return 0
	}
	c.base = base
	c.target = repository.DefaultBranch
	if c.target == "" {
		c.target = base
	}

	if settings.User.ConsolidateUpdates {
		return it.makeConsolidated(ctx, c, updates)
	}
	return it.makePerUpdate(ctx, c, updates)
}

func (it *PackageUpdateCommand) makePerUpdate(
	ctx context.Context,
	c composition,
	updates []entities.PackageUpdateSet,
) int {
	limit := c.settings.User.MaxPullRequests
	count := 0
	for _, update := range updates {
		if limit > 0 && count >= limit {
			logger.Infof("[composer] Reached the limit of %d pull request(s), skipping the rest", limit)
			break
		}

		if err := it.makeSingle(ctx, c, update); err != nil {
			logger.Errorf("[composer] Failed to update %s: %v", update.SelectedID(), err)
		} else {
			count++
		}

		if err := c.git.Checkout(c.base); err != nil {
			logger.Errorf("[composer] Failed to return to %s, stopping: %v", c.base, err)
			break
		}
	}
	return count
}

func (it *PackageUpdateCommand) makeSingle(
	ctx context.Context,
	c composition,
	update entities.PackageUpdateSet,
) error {
	branch := entities.BranchName(update)
	logger.Infof("[composer] Updating %s on branch %s", update, branch)

	if err := c.git.Checkout(c.base); err != nil {
		return fmt.Errorf("failed to check out %s: %w", c.base, err)
	}
	if err := c.git.CheckoutNewBranch(branch); err != nil {
		return fmt.Errorf("failed to create branch %s: %w", branch, err)
	}
	if err := it.applyAndCommit(ctx, c, update); err != nil {
		return err
	}
	return it.pushAndOpen(ctx, c, branch, []entities.PackageUpdateSet{update})
}

// makeConsolidated commits every update on one branch. The first failure
// stops the queue; commits already made stay on the branch, which is neither
// pushed nor proposed, and are counted. A failed push or pull request does
// not undo the commits either.
func (it *PackageUpdateCommand) makeConsolidated(
	ctx context.Context,
	c composition,
	updates []entities.PackageUpdateSet,
) int {
	defer func() {
		if err := c.git.Checkout(c.base); err != nil {
			logger.Errorf("[composer] Failed to return to %s: %v", c.base, err)
		}
	}()

	branch := entities.ConsolidatedBranchName(updates)
	logger.Infof("[composer] Consolidating %d update(s) on branch %s", len(updates), branch)

	if err := c.git.CheckoutNewBranch(branch); err != nil {
		logger.Errorf("[composer] Failed to create branch %s: %v", branch, err)
		return 0
	}

	for i, update := range updates {
		if err := it.applyAndCommit(ctx, c, update); err != nil {
			logger.Errorf(
				"[composer] Failed to update %s, abandoning %d queued update(s); %d commit(s) kept on %s: %v",
				update.SelectedID(), len(updates)-i-1, i, branch, err,
			)
			return i
		}
	}

	if err := it.pushAndOpen(ctx, c, branch, updates); err != nil {
		logger.Errorf("[composer] Failed to propose %s with %d commit(s): %v", branch, len(updates), err)
	}
	return len(updates)
}

func (it *PackageUpdateCommand) applyAndCommit(
	ctx context.Context,
	c composition,
	update entities.PackageUpdateSet,
) error {
	if err := it.runner.Update(ctx, c.folder, update); err != nil {
		return fmt.Errorf("failed to edit project files: %w", err)
	}
	if err := it.restore.Restore(ctx, c.folder, update, c.sources); err != nil {
		return fmt.Errorf("failed to restore: %w", err)
	}
	if err := c.git.Commit(entities.CommitMessage(update)); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}

func (it *PackageUpdateCommand) pushAndOpen(
	ctx context.Context,
	c composition,
	branch string,
	updates []entities.PackageUpdateSet,
) error {
	if err := c.git.Push(ctx, c.remote, branch); err != nil {
		return fmt.Errorf("failed to push %s: %w", branch, err)
	}

	request := entities.NewPullRequest{
		PullRequestInput: entities.PullRequestInput{
			SourceBranch: branch,
			TargetBranch: c.target,
			Title:        entities.PullRequestTitle(updates),
			Description:  entities.PullRequestBody(updates),
		},
		Labels: c.settings.User.Labels,
	}
	if c.repository.IsFork() {
		request.HeadOwner = c.repository.Push.Owner
	}

	pr, err := c.host.OpenPullRequest(ctx, c.repository.Pull, request, c.settings.User.Reviewers)
	if err != nil {
		return fmt.Errorf("failed to open pull request: %w", err)
	}
	logger.Infof("[composer] Opened pull request #%d: %s", pr.ID, pr.URL)
	return nil
}

// updateFolder is where project files are searched and edited.
func updateFolder(git repositories.GitDriver, settings entities.Settings) string {
	if settings.User.Directory != "" {
		return settings.User.Directory
	}
	return git.WorkingFolder()
}
