package entities

import (
	"errors"
	"fmt"
	"strings"
)

var errIncompleteFork = errors.New("fork needs an owner, a name and a URL")

// ForkData identifies one remote repository.
type ForkData struct {
	Owner string
	Name  string
	URL   string
}

// Validate checks that every field is present.
func (f ForkData) Validate() error {
	if strings.TrimSpace(f.Owner) == "" || strings.TrimSpace(f.Name) == "" || strings.TrimSpace(f.URL) == "" {
		return fmt.Errorf("%w: %+v", errIncompleteFork, f)
	}
	return nil
}

func (f ForkData) String() string {
	return f.Owner + "/" + f.Name
}

// RepositoryData pairs the fork updates are read from (Pull) with the fork
// branches are pushed to (Push). Both are always set.
type RepositoryData struct {
	Pull          ForkData
	Push          ForkData
	DefaultBranch string
}

// NewRepositoryData validates both forks. An empty push fork defaults to pull.
func NewRepositoryData(pull, push ForkData, defaultBranch string) (RepositoryData, error) {
	if push == (ForkData{}) {
		push = pull
	}
	if err := pull.Validate(); err != nil {
		return RepositoryData{}, fmt.Errorf("invalid pull fork: %w", err)
	}
	if err := push.Validate(); err != nil {
		return RepositoryData{}, fmt.Errorf("invalid push fork: %w", err)
	}

	return RepositoryData{
		Pull:          pull,
		Push:          push,
		DefaultBranch: strings.TrimPrefix(defaultBranch, "refs/heads/"),
	}, nil
}

// IsFork reports whether branches are pushed somewhere other than the pull repository.
func (r RepositoryData) IsFork() bool {
	return r.Pull.Owner != r.Push.Owner || r.Pull.Name != r.Push.Name
}
