package golang

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
)

var errToolchainNotFound = errors.New("go toolchain not found")

// CommandRunner runs the go tool with args in dir, appending env to the
// process environment, and returns its combined output.
type CommandRunner func(ctx context.Context, dir string, env []string, args ...string) ([]byte, error)

// ExecRunner runs the first go binary found on the machine.
func ExecRunner(ctx context.Context, dir string, env []string, args ...string) ([]byte, error) {
	goBinary, err := locateToolchain(os.Getenv("GOROOT"), userHome())
	if err != nil {
		return nil, err
	}

	cmd := exec.CommandContext(ctx, goBinary, args...)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(), env...)
	return cmd.CombinedOutput()
}

// locateToolchain prefers PATH, then GOROOT, then the newest gvm install,
// then goenv shims and the usual system prefixes.
func locateToolchain(goroot, home string) (string, error) {
	if path, err := exec.LookPath("go"); err == nil {
		return path, nil
	}

	var candidates []string
	if goroot != "" {
		candidates = append(candidates, filepath.Join(goroot, "bin", "go"))
	}
	if home != "" {
		candidates = append(candidates, gvmToolchains(home)...)
		candidates = append(candidates, filepath.Join(home, ".goenv", "shims", "go"))
	}
	candidates = append(candidates, "/usr/local/go/bin/go", "/usr/bin/go", "/snap/bin/go")

	for _, candidate := range candidates {
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, nil
		}
	}
	return "", errToolchainNotFound
}

// gvmToolchains lists gvm-managed binaries, newest directory name first.
func gvmToolchains(home string) []string {
	root := filepath.Join(home, ".gvm", "gos")
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() && strings.HasPrefix(entry.Name(), "go") {
			names = append(names, entry.Name())
		}
	}
	sort.Sort(sort.Reverse(sort.StringSlice(names)))

	binaries := make([]string, 0, len(names))
	for _, name := range names {
		binaries = append(binaries, filepath.Join(root, name, "bin", "go"))
	}
	return binaries
}

func userHome() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return home
}
