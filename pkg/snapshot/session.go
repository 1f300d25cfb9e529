// Package snapshot provides the session-scoped copy of a template that
// every materialization reads from.
//
// A Session copies the template root into a temporary directory the first
// time its Path is requested, records the copy as a single git commit and
// tags it, so the templating tool resolves a fixed project version. The
// snapshot is never modified afterwards; Close removes it.
package snapshot

import (
	"context"
	"sync"

	"github.com/arthur-debert/scaffoldcheck/pkg/errors"
	"github.com/arthur-debert/scaffoldcheck/pkg/git"
	"github.com/arthur-debert/scaffoldcheck/pkg/logging"
	"github.com/arthur-debert/scaffoldcheck/pkg/runner"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
)

// DefaultTag is the version the snapshot commit is labelled with.
const DefaultTag = "99.99.99"

// CommitMessage is used for the snapshot commit.
const CommitMessage = "test"

// Options configures a Session.
type Options struct {
	Runner    runner.CommandRunner
	GitBinary string
	Fs        afero.Fs     // defaults to the OS filesystem
	TempRoot  string       // parent of the snapshot dir; empty means the OS temp dir
	Tag       string       // defaults to DefaultTag
	Identity  git.Identity // committer for the snapshot commit
}

// Session owns one snapshot for the lifetime of a test session.
type Session struct {
	templateRoot string
	opts         Options
	git          *git.Git
	logger       zerolog.Logger

	once sync.Once
	path string
	err  error

	mu     sync.Mutex
	closed bool
}

// NewSession prepares a session for templateRoot. Nothing is copied until
// Path is called.
func NewSession(templateRoot string, opts Options) *Session {
	if opts.Runner == nil {
		opts.Runner = runner.NewRealRunner()
	}
	if opts.Fs == nil {
		opts.Fs = afero.NewOsFs()
	}
	if opts.Tag == "" {
		opts.Tag = DefaultTag
	}
	if opts.Identity.IsZero() {
		opts.Identity = git.DefaultIdentity
	}
	return &Session{
		templateRoot: templateRoot,
		opts:         opts,
		git:          git.New(opts.Runner, opts.GitBinary),
		logger:       logging.GetLogger("snapshot"),
	}
}

// TemplateRoot returns the directory the snapshot is copied from.
func (s *Session) TemplateRoot() string {
	return s.templateRoot
}

// Tag returns the version tag placed on the snapshot commit.
func (s *Session) Tag() string {
	return s.opts.Tag
}

// Path returns the snapshot directory, creating it on first use. A failed
// creation is remembered and returned on every later call.
func (s *Session) Path(ctx context.Context) (string, error) {
	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed {
		return "", errors.New(errors.ErrSnapshotCreate, "snapshot session is closed")
	}

	s.once.Do(func() {
		path, err := s.create(ctx)
		s.mu.Lock()
		s.path, s.err = path, err
		s.mu.Unlock()
	})

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.path, s.err
}

// Created reports whether the snapshot has been materialized successfully.
func (s *Session) Created() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.path != "" && s.err == nil && !s.closed
}

// Fingerprint returns the snapshot's HEAD commit.
func (s *Session) Fingerprint(ctx context.Context) (string, error) {
	dir, err := s.Path(ctx)
	if err != nil {
		return "", err
	}
	return s.git.HeadCommit(ctx, dir)
}

func (s *Session) create(ctx context.Context) (string, error) {
	done := logging.LogOperationStart(s.logger, "snapshot.create")
	defer done()

	fs := s.opts.Fs
	dir, err := afero.TempDir(fs, s.opts.TempRoot, "scaffoldcheck-template-")
	if err != nil {
		return "", errors.Wrap(err, errors.ErrDirCreate, "failed to create snapshot directory")
	}

	s.logger.Info().
		Str("template", s.templateRoot).
		Str("snapshot", dir).
		Msg("Creating template snapshot")

	if err := s.populate(ctx, dir); err != nil {
		if rmErr := fs.RemoveAll(dir); rmErr != nil {
			s.logger.Warn().Err(rmErr).Str("snapshot", dir).Msg("Failed to remove broken snapshot")
		}
		return "", errors.Wrapf(err, errors.ErrSnapshotCreate, "failed to snapshot template %s", s.templateRoot).
			WithDetail("template", s.templateRoot)
	}

	s.logger.Info().Str("snapshot", dir).Str("tag", s.opts.Tag).Msg("Template snapshot ready")
	return dir, nil
}

func (s *Session) populate(ctx context.Context, dir string) error {
	if err := CopyTree(s.opts.Fs, s.templateRoot, dir); err != nil {
		return err
	}

	if !git.IsRepo(s.opts.Fs, dir) {
		if err := s.git.Init(ctx, dir); err != nil {
			return err
		}
	}
	if err := s.git.AddAll(ctx, dir); err != nil {
		return err
	}
	// The template may already be a clean checkout, so an empty commit
	// must not fail.
	if err := s.git.Commit(ctx, dir, git.CommitOpts{
		Message:    CommitMessage,
		Identity:   s.opts.Identity,
		AllowEmpty: true,
	}); err != nil {
		return err
	}
	return s.git.Tag(ctx, dir, s.opts.Tag)
}

// Close removes the snapshot directory. It is safe to call more than once
// and before Path was ever called.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true

	if s.path == "" {
		return nil
	}
	s.logger.Debug().Str("snapshot", s.path).Msg("Removing template snapshot")
	if err := s.opts.Fs.RemoveAll(s.path); err != nil {
		return errors.Wrapf(err, errors.ErrFileAccess, "failed to remove snapshot %s", s.path).
			WithDetail("path", s.path)
	}
	return nil
}
