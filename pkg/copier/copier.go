// Package copier materializes a template snapshot into a concrete project
// by driving the copier command-line tool.
package copier

import (
	"context"
	"regexp"
	"strconv"

	"github.com/arthur-debert/scaffoldcheck/pkg/errors"
	"github.com/arthur-debert/scaffoldcheck/pkg/git"
	"github.com/arthur-debert/scaffoldcheck/pkg/logging"
	"github.com/arthur-debert/scaffoldcheck/pkg/params"
	"github.com/arthur-debert/scaffoldcheck/pkg/runner"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
)

// Flavor selects the copier command-line dialect.
type Flavor int

const (
	// FlavorCopy is copier 8 and later: `copier copy --force`.
	FlavorCopy Flavor = iota
	// FlavorLegacy is copier before 8: `copier --force`.
	FlavorLegacy
)

func (f Flavor) String() string {
	switch f {
	case FlavorCopy:
		return "copy"
	case FlavorLegacy:
		return "legacy"
	default:
		return "unknown"
	}
}

// InitCommitMessage is used for the commit made in a materialized project.
const InitCommitMessage = "init"

var versionPattern = regexp.MustCompile(`(\d+)\.(\d+)(?:\.(\d+))?`)

// DetectFlavor asks the copier binary for its version. Major version 8 and
// later use the `copy` subcommand.
func DetectFlavor(ctx context.Context, r runner.CommandRunner, binary string) (Flavor, string, error) {
	result, err := r.Run(ctx, binary, []string{"--version"}, runner.RunOpts{})
	if err != nil {
		return FlavorCopy, "", err
	}
	version, major, ok := ParseVersion(result.Stdout + result.Stderr)
	if !ok {
		return FlavorCopy, "", errors.Newf(errors.ErrInvalidInput, "could not parse copier version from %q", result.Stdout).
			WithDetail("stdout", result.Stdout)
	}
	if major >= 8 {
		return FlavorCopy, version, nil
	}
	return FlavorLegacy, version, nil
}

// ParseVersion extracts the first dotted version number from s.
func ParseVersion(s string) (version string, major int, ok bool) {
	m := versionPattern.FindStringSubmatch(s)
	if m == nil {
		return "", 0, false
	}
	major, err := strconv.Atoi(m[1])
	if err != nil {
		return "", 0, false
	}
	return m[0], major, true
}

// Options controls a single materialization.
type Options struct {
	// InitRepo turns the output into a one-commit git repository, which
	// build and lint tools expect.
	InitRepo bool
	Identity git.Identity
}

// Materializer renders a template snapshot with copier.
type Materializer struct {
	Runner runner.CommandRunner
	Binary string
	Flavor Flavor
	Fs     afero.Fs

	git    *git.Git
	logger zerolog.Logger
}

// NewMaterializer creates a Materializer. An empty binary means "copier".
func NewMaterializer(r runner.CommandRunner, binary, gitBinary string, flavor Flavor) *Materializer {
	if binary == "" {
		binary = "copier"
	}
	return &Materializer{
		Runner: r,
		Binary: binary,
		Flavor: flavor,
		Fs:     afero.NewOsFs(),
		git:    git.New(r, gitBinary),
		logger: logging.GetLogger("copier"),
	}
}

// Command returns the copier argument list (without the binary) that
// renders snapshot into dest with p.
func (m *Materializer) Command(snapshot, dest string, p params.Params) []string {
	var args []string
	if m.Flavor == FlavorCopy {
		args = append(args, "copy")
	}
	args = append(args, "--force")
	args = append(args, p.Args()...)
	return append(args, snapshot, dest)
}

// Materialize renders snapshot into dest and returns dest. Any non-zero exit
// from copier or git aborts with that process's error.
func (m *Materializer) Materialize(ctx context.Context, snapshot, dest string, opts Options, p params.Params) (string, error) {
	if err := p.Validate(); err != nil {
		return "", err
	}
	if err := m.Fs.MkdirAll(dest, 0755); err != nil {
		return "", errors.Wrapf(err, errors.ErrDirCreate, "failed to create output directory %s", dest).
			WithDetail("path", dest)
	}

	done := logging.LogOperationStart(m.logger, "materialize")
	defer done()

	m.logger.Info().
		Str("snapshot", snapshot).
		Str("dest", dest).
		Strs("params", p.Keys()).
		Bool("initRepo", opts.InitRepo).
		Msg("Materializing template")

	if _, err := m.Runner.Run(ctx, m.Binary, m.Command(snapshot, dest, p), runner.RunOpts{}); err != nil {
		return "", errors.Wrapf(err, errors.ErrMaterialize, "copier failed to render %s", snapshot).
			WithDetail("dest", dest)
	}

	if opts.InitRepo {
		if err := m.initRepo(ctx, dest, opts.Identity); err != nil {
			return "", errors.Wrapf(err, errors.ErrMaterialize, "failed to initialize repository in %s", dest).
				WithDetail("dest", dest)
		}
	}

	return dest, nil
}

func (m *Materializer) initRepo(ctx context.Context, dest string, id git.Identity) error {
	if id.IsZero() {
		id = git.DefaultIdentity
	}
	if err := m.git.Init(ctx, dest); err != nil {
		return err
	}
	if err := m.git.ConfigIdentity(ctx, dest, id); err != nil {
		return err
	}
	if err := m.git.AddAll(ctx, dest); err != nil {
		return err
	}
	return m.git.Commit(ctx, dest, git.CommitOpts{Message: InitCommitMessage})
}
