package scenarios

import (
	"context"

	"github.com/arthur-debert/scaffoldcheck/pkg/config"
	"github.com/arthur-debert/scaffoldcheck/pkg/copier"
	"github.com/arthur-debert/scaffoldcheck/pkg/errors"
	"github.com/arthur-debert/scaffoldcheck/pkg/git"
	"github.com/arthur-debert/scaffoldcheck/pkg/logging"
	"github.com/arthur-debert/scaffoldcheck/pkg/params"
	"github.com/arthur-debert/scaffoldcheck/pkg/runner"
	"github.com/arthur-debert/scaffoldcheck/pkg/snapshot"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
)

// Env is what every scenario runs against: the shared snapshot session,
// the materializer, the runner for verification tools and the config.
type Env struct {
	Session      *snapshot.Session
	Materializer *copier.Materializer
	Runner       runner.CommandRunner
	Config       *config.Config
	Fs           afero.Fs

	// Extra answers applied on top of each scenario's own parameters.
	Extra params.Params

	// TempRoot is the parent of per-scenario output directories; empty
	// means the OS temp dir.
	TempRoot string

	// TempDir, when set, replaces TempRoot-based directory creation. The
	// caller owns cleanup of what it returns (e.g. testing.T.TempDir).
	TempDir func() (string, error)

	// KeepOutputs leaves output directories in place for inspection.
	KeepOutputs bool

	// Stream copies tool output to the console.
	Stream bool

	git    *git.Git
	logger zerolog.Logger
}

// NewEnv wires an Env from its collaborators.
func NewEnv(cfg *config.Config, session *snapshot.Session, mat *copier.Materializer, r runner.CommandRunner) *Env {
	return &Env{
		Session:      session,
		Materializer: mat,
		Runner:       r,
		Config:       cfg,
		Fs:           afero.NewOsFs(),
		git:          git.New(r, cfg.Tools.Git),
		logger:       logging.GetLogger("scenarios"),
	}
}

func (e *Env) gitTool() *git.Git {
	if e.git == nil {
		e.git = git.New(e.Runner, e.Config.Tools.Git)
	}
	return e.git
}

// outputDir returns a fresh, empty directory for one materialization and
// the function that disposes of it.
func (e *Env) outputDir(name string) (string, func(), error) {
	if e.TempDir != nil {
		dir, err := e.TempDir()
		if err != nil {
			return "", nil, errors.Wrap(err, errors.ErrDirCreate, "failed to create output directory")
		}
		return dir, func() {}, nil
	}

	dir, err := afero.TempDir(e.Fs, e.TempRoot, "scaffoldcheck-"+name+"-")
	if err != nil {
		return "", nil, errors.Wrap(err, errors.ErrDirCreate, "failed to create output directory")
	}
	cleanup := func() {
		if e.KeepOutputs {
			e.logger.Info().Str("dir", dir).Msg("Keeping output directory")
			return
		}
		if err := e.Fs.RemoveAll(dir); err != nil {
			e.logger.Warn().Err(err).Str("dir", dir).Msg("Failed to remove output directory")
		}
	}
	return dir, cleanup, nil
}

// materialize renders the session snapshot into a fresh output directory.
// The returned cleanup must be called once the scenario is done with it.
func (e *Env) materialize(ctx context.Context, name string, initRepo bool, p params.Params) (string, func(), error) {
	snap, err := e.Session.Path(ctx)
	if err != nil {
		return "", nil, err
	}

	dest, cleanup, err := e.outputDir(name)
	if err != nil {
		return "", nil, err
	}

	out, err := e.Materializer.Materialize(ctx, snap, dest, copier.Options{
		InitRepo: initRepo,
		Identity: e.Config.Identity,
	}, p)
	if err != nil {
		cleanup()
		return "", nil, err
	}
	return out, cleanup, nil
}

// answers merges a scenario's own parameters with the Extra answers.
func (e *Env) answers(own params.Params) params.Params {
	return own.Merge(e.Extra)
}

// metadataParams are the answers the metadata checks assert on.
func (e *Env) metadataParams() params.Params {
	return e.answers(params.Params{
		params.ProjectName: e.Config.Params.ProjectName,
		params.AuthorName:  e.Config.Params.AuthorName,
		params.AuthorEmail: e.Config.Params.AuthorEmail,
	})
}

// tool runs an external verification tool in the current directory.
func (e *Env) tool(ctx context.Context, name string, args ...string) error {
	_, err := e.Runner.Run(ctx, name, args, runner.RunOpts{Stream: e.Stream})
	return err
}
