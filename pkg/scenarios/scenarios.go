// Package scenarios holds the independent checks run against a freshly
// materialized template.
//
// Each scenario is a linear pipeline: materialize into its own output
// directory, invoke one or more external tools, assert on what they
// produced. The first failing step ends the scenario with that step's
// error; nothing is retried.
package scenarios

import (
	"context"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/arthur-debert/scaffoldcheck/pkg/errors"
	"github.com/arthur-debert/scaffoldcheck/pkg/manifest"
	"github.com/arthur-debert/scaffoldcheck/pkg/params"
	"github.com/arthur-debert/scaffoldcheck/pkg/workdir"
	"github.com/spf13/afero"
)

// Scenario is one verification flow.
type Scenario interface {
	Name() string
	Description() string
	Run(ctx context.Context, env *Env) error
}

// All returns every scenario in run order.
func All() []Scenario {
	return []Scenario{
		Metadata{},
		TestSuite{},
		Build{},
		PreCommit{},
		Determinism{},
	}
}

// Lookup finds a scenario by name.
func Lookup(name string) (Scenario, bool) {
	for _, s := range All() {
		if s.Name() == name {
			return s, true
		}
	}
	return nil, false
}

// Select resolves names to scenarios, keeping the given order. An empty
// list selects everything.
func Select(names []string) ([]Scenario, error) {
	if len(names) == 0 {
		return All(), nil
	}
	out := make([]Scenario, 0, len(names))
	for _, name := range names {
		s, ok := Lookup(name)
		if !ok {
			return nil, errors.Newf(errors.ErrInvalidInput, "unknown scenario %q", name).
				WithDetail("scenario", name)
		}
		out = append(out, s)
	}
	return out, nil
}

// Metadata checks the generated manifest declares exactly the supplied
// project name and a single author.
type Metadata struct{}

func (Metadata) Name() string { return "metadata" }
func (Metadata) Description() string {
	return "generated pyproject.toml carries the supplied name and author"
}

func (s Metadata) Run(ctx context.Context, env *Env) error {
	p := env.metadataParams()
	out, cleanup, err := env.materialize(ctx, s.Name(), false, p)
	if err != nil {
		return err
	}
	defer cleanup()

	m, err := manifest.Load(filepath.Join(out, manifest.PyProjectFile))
	if err != nil {
		return err
	}
	return CheckMetadata(m, p)
}

// CheckMetadata asserts m was rendered from p.
func CheckMetadata(m *manifest.Manifest, p params.Params) error {
	if m.Project.Name != p[params.ProjectName] {
		return errors.Assertionf(p[params.ProjectName], m.Project.Name,
			"project.name is %q, expected %q", m.Project.Name, p[params.ProjectName])
	}

	want := []manifest.Author{{Name: p[params.AuthorName], Email: p[params.AuthorEmail]}}
	if !reflect.DeepEqual(m.Project.Authors, want) {
		return errors.Assertionf(want, m.Project.Authors,
			"project.authors is %v, expected %v", m.Project.Authors, want)
	}
	return nil
}

// TestSuite runs the generated project's own tests.
type TestSuite struct{}

func (TestSuite) Name() string        { return "test-suite" }
func (TestSuite) Description() string { return "generated project's test suite passes" }

func (s TestSuite) Run(ctx context.Context, env *Env) error {
	p := env.answers(params.Params{params.ProjectName: env.Config.Params.ProjectName})
	out, cleanup, err := env.materialize(ctx, s.Name(), true, p)
	if err != nil {
		return err
	}
	defer cleanup()

	return workdir.Inside(out, func() error {
		return env.tool(ctx, env.Config.Tools.Python, "-m", "pytest", "tests")
	})
}

// Build checks the project passes check-manifest and builds at least
// MinArtifacts distributions.
type Build struct{}

func (Build) Name() string        { return "build" }
func (Build) Description() string { return "check-manifest passes and the build writes distributions" }

func (s Build) Run(ctx context.Context, env *Env) error {
	distDir := strings.TrimSpace(env.Config.Build.DistDir)
	if distDir == "" {
		return errors.New(errors.ErrConfigValid, "build.dist_dir must not be empty").
			WithDetail("key", "build.dist_dir")
	}

	out, cleanup, err := env.materialize(ctx, s.Name(), true, env.answers(nil))
	if err != nil {
		return err
	}
	defer cleanup()

	err = workdir.Inside(out, func() error {
		if err := env.tool(ctx, env.Config.Tools.CheckManifest); err != nil {
			return err
		}
		return env.tool(ctx, env.Config.Tools.Python, "-m", "build")
	})
	if err != nil {
		return err
	}

	return CheckArtifacts(env.Fs, filepath.Join(out, distDir), env.Config.Build.MinArtifacts)
}

// CheckArtifacts asserts dir holds at least min entries. The count is a
// lower bound: build backends may add formats over time.
func CheckArtifacts(fs afero.Fs, dir string, min int) error {
	entries, err := afero.ReadDir(fs, dir)
	if err != nil {
		return errors.Wrapf(err, errors.ErrAssertion, "build produced no artifact directory %s", dir).
			WithDetail("expected", min).
			WithDetail("actual", 0)
	}
	if len(entries) < min {
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			names = append(names, e.Name())
		}
		return errors.Assertionf(min, len(entries),
			"expected at least %d build artifacts in %s, found %d", min, dir, len(entries)).
			WithDetail("artifacts", names)
	}
	return nil
}

// PreCommit checks every configured hook passes on the fresh project.
type PreCommit struct{}

func (PreCommit) Name() string        { return "pre-commit" }
func (PreCommit) Description() string { return "all pre-commit hooks pass on all files" }

func (s PreCommit) Run(ctx context.Context, env *Env) error {
	out, cleanup, err := env.materialize(ctx, s.Name(), true, env.answers(nil))
	if err != nil {
		return err
	}
	defer cleanup()

	cfgPath := filepath.Join(out, manifest.PreCommitFile)
	ok, err := afero.Exists(env.Fs, cfgPath)
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileAccess, "failed to stat %s", cfgPath)
	}
	if !ok {
		return errors.Assertionf(manifest.PreCommitFile, "missing",
			"%s not found in generated project", manifest.PreCommitFile)
	}
	cfg, err := manifest.LoadPreCommit(cfgPath)
	if err != nil {
		return err
	}
	env.logger.Debug().Strs("hooks", cfg.HookIDs()).Int("repos", len(cfg.Repos)).Msg("Loaded pre-commit config")

	tool := env.Config.Tools.PreCommit
	return workdir.Inside(out, func() error {
		if err := env.tool(ctx, tool, "autoupdate"); err != nil {
			return err
		}
		if err := env.tool(ctx, tool, "install"); err != nil {
			return err
		}
		// autoupdate rewrites the config; hooks only see staged content
		if err := env.gitTool().AddAll(ctx, out); err != nil {
			return err
		}
		return env.tool(ctx, tool, "run", "--all-files")
	})
}

// Determinism renders the same answers twice and compares the results.
type Determinism struct{}

func (Determinism) Name() string { return "determinism" }
func (Determinism) Description() string {
	return "two renders with the same answers declare the same metadata"
}

func (s Determinism) Run(ctx context.Context, env *Env) error {
	p := env.metadataParams()

	var manifests [2]*manifest.Manifest
	var answers [2]map[string]interface{}
	for i := range manifests {
		out, cleanup, err := env.materialize(ctx, s.Name(), false, p)
		if err != nil {
			return err
		}
		m, err := manifest.Load(filepath.Join(out, manifest.PyProjectFile))
		if err == nil {
			manifests[i] = m
			answers[i], err = loadOptionalAnswers(env.Fs, filepath.Join(out, manifest.AnswersFile))
		}
		cleanup()
		if err != nil {
			return err
		}
	}

	a, b := manifests[0].Project, manifests[1].Project
	if a.Name != b.Name {
		return errors.Assertionf(a.Name, b.Name, "project.name differs between renders")
	}
	if !reflect.DeepEqual(a.Authors, b.Authors) {
		return errors.Assertionf(a.Authors, b.Authors, "project.authors differs between renders")
	}
	if !reflect.DeepEqual(answers[0], answers[1]) {
		return errors.Assertionf(answers[0], answers[1], "%s differs between renders", manifest.AnswersFile)
	}
	return nil
}

// loadOptionalAnswers returns nil when the template does not record answers.
func loadOptionalAnswers(fs afero.Fs, path string) (map[string]interface{}, error) {
	ok, err := afero.Exists(fs, path)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrFileAccess, "failed to stat %s", path)
	}
	if !ok {
		return nil, nil
	}
	return manifest.LoadAnswers(path)
}
