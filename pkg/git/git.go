// Package git wraps the handful of git commands the harness needs.
//
// All calls go through a runner.CommandRunner with an explicit directory
// (`git -C <dir>`), so they never depend on the process working directory.
package git

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/arthur-debert/scaffoldcheck/pkg/errors"
	"github.com/arthur-debert/scaffoldcheck/pkg/runner"
	"github.com/spf13/afero"
)

// Identity is a committer name and email.
type Identity struct {
	Name  string `koanf:"name"`
	Email string `koanf:"email"`
}

// DefaultIdentity is the placeholder committer used for throwaway
// repositories.
var DefaultIdentity = Identity{Name: "Name", Email: "email@wp.p"}

// IsZero reports whether neither field is set.
func (i Identity) IsZero() bool {
	return i.Name == "" && i.Email == ""
}

// overrides returns `-c user.name=.. -c user.email=..` for a single command.
func (i Identity) overrides() []string {
	var args []string
	if i.Name != "" {
		args = append(args, "-c", "user.name="+i.Name)
	}
	if i.Email != "" {
		args = append(args, "-c", "user.email="+i.Email)
	}
	return args
}

// Git runs git subcommands.
type Git struct {
	Runner runner.CommandRunner
	Binary string
}

// New returns a Git using binary (default "git").
func New(r runner.CommandRunner, binary string) *Git {
	if binary == "" {
		binary = "git"
	}
	return &Git{Runner: r, Binary: binary}
}

func (g *Git) run(ctx context.Context, dir string, args ...string) (runner.Result, error) {
	full := append([]string{"-C", dir}, args...)
	return g.Runner.Run(ctx, g.Binary, full, runner.RunOpts{})
}

// Init creates an empty repository in dir.
func (g *Git) Init(ctx context.Context, dir string) error {
	_, err := g.run(ctx, dir, "init", "-q")
	return err
}

// ConfigIdentity writes user.name and user.email into the repository config.
func (g *Git) ConfigIdentity(ctx context.Context, dir string, id Identity) error {
	if id.IsZero() {
		return errors.New(errors.ErrInvalidInput, "identity requires a name or email")
	}
	if id.Name != "" {
		if _, err := g.run(ctx, dir, "config", "user.name", id.Name); err != nil {
			return err
		}
	}
	if id.Email != "" {
		if _, err := g.run(ctx, dir, "config", "user.email", id.Email); err != nil {
			return err
		}
	}
	return nil
}

// AddAll stages every change in the work tree.
func (g *Git) AddAll(ctx context.Context, dir string) error {
	_, err := g.run(ctx, dir, "add", ".", "-A")
	return err
}

// CommitOpts controls a commit.
type CommitOpts struct {
	Message    string
	Identity   Identity // passed as -c overrides when set
	AllowEmpty bool
}

// Commit records staged changes. A non-zero identity is passed as -c
// overrides so the commit does not depend on global git config.
func (g *Git) Commit(ctx context.Context, dir string, opts CommitOpts) error {
	if opts.Message == "" {
		return errors.New(errors.ErrInvalidInput, "commit message must not be empty")
	}
	args := append(opts.Identity.overrides(), "commit", "-q")
	if opts.AllowEmpty {
		args = append(args, "--allow-empty")
	}
	args = append(args, "-m", opts.Message)
	_, err := g.run(ctx, dir, args...)
	return err
}

// Tag points tag at HEAD, moving it if it already exists.
func (g *Git) Tag(ctx context.Context, dir, tag string) error {
	if tag == "" {
		return errors.New(errors.ErrInvalidInput, "tag must not be empty")
	}
	_, err := g.run(ctx, dir, "tag", "-f", tag)
	return err
}

// HeadCommit returns the full hash of HEAD.
func (g *Git) HeadCommit(ctx context.Context, dir string) (string, error) {
	result, err := g.run(ctx, dir, "rev-parse", "HEAD")
	if err != nil {
		return "", err
	}
	head := strings.TrimSpace(result.Stdout)
	if head == "" {
		return "", errors.New(errors.ErrInternal, "git rev-parse HEAD returned empty output")
	}
	return head, nil
}

// IsRepo reports whether dir has its own .git entry.
func IsRepo(fs afero.Fs, dir string) bool {
	ok, err := afero.Exists(fs, filepath.Join(dir, ".git"))
	return err == nil && ok
}
