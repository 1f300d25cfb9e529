// pkg/scenarios/scenarios_test.go
// TEST TYPE: Unit Test
// DEPENDENCIES: RecordingRunner, fake copier renders, real temp dirs
// PURPOSE: Verify each scenario's pipeline and assertions

package scenarios

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/arthur-debert/scaffoldcheck/pkg/config"
	"github.com/arthur-debert/scaffoldcheck/pkg/copier"
	"github.com/arthur-debert/scaffoldcheck/pkg/errors"
	"github.com/arthur-debert/scaffoldcheck/pkg/manifest"
	"github.com/arthur-debert/scaffoldcheck/pkg/params"
	"github.com/arthur-debert/scaffoldcheck/pkg/runner"
	"github.com/arthur-debert/scaffoldcheck/pkg/snapshot"
	"github.com/arthur-debert/scaffoldcheck/pkg/testutil"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	env  *Env
	rec  *testutil.RecordingRunner
	root string // parent of output dirs, symlinks resolved
}

func newFixture(t *testing.T, customize func(*testutil.Project)) *fixture {
	t.Helper()

	cfg, err := config.Default()
	require.NoError(t, err)

	rec := testutil.NewRecordingRunner().Handle("copier", testutil.CopierHandler(customize))

	tplFs := afero.NewMemMapFs()
	testutil.WriteTree(t, tplFs, "/tpl", testutil.TemplateTree())
	session := snapshot.NewSession("/tpl", snapshot.Options{Runner: rec, Fs: tplFs, TempRoot: "/tmp"})
	t.Cleanup(func() { _ = session.Close() })

	root, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)

	env := NewEnv(cfg, session, copier.NewMaterializer(rec, cfg.Tools.Copier, cfg.Tools.Git, copier.FlavorCopy), rec)
	env.TempRoot = root

	return &fixture{env: env, rec: rec, root: root}
}

// outputsLeft lists output directories that were not cleaned up.
func (f *fixture) outputsLeft(t *testing.T) []string {
	t.Helper()
	entries, err := os.ReadDir(f.root)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

// writeDist fakes `python -m build` by writing n files into ./dist.
func writeDist(n int) testutil.Handler {
	return func(call testutil.Call) (runner.Result, error) {
		if len(call.Args) < 2 || call.Args[1] != "build" {
			return runner.Result{}, nil
		}
		dist := filepath.Join(call.Cwd, "dist")
		if err := os.MkdirAll(dist, 0755); err != nil {
			return runner.Result{}, err
		}
		for i := 0; i < n; i++ {
			name := fmt.Sprintf("some_project-99.99.99-%d.tar.gz", i)
			if err := os.WriteFile(filepath.Join(dist, name), []byte("x"), 0644); err != nil {
				return runner.Result{}, err
			}
		}
		return runner.Result{}, nil
	}
}

func argsOf(calls []testutil.Call) [][]string {
	var out [][]string
	for _, c := range calls {
		out = append(out, c.Args)
	}
	return out
}

func TestMetadata(t *testing.T) {
	ctx := context.Background()

	t.Run("passes_with_supplied_answers", func(t *testing.T) {
		f := newFixture(t, nil)
		require.NoError(t, Metadata{}.Run(ctx, f.env))

		copierCalls := f.rec.CallsTo("copier")
		require.Len(t, copierCalls, 1)
		args := copierCalls[0].Args
		assert.Contains(t, args, "project_name=some-project")
		assert.Contains(t, args, "author_name=Test Name")
		assert.Contains(t, args, "author_email=test@example.com")
		assert.Empty(t, f.outputsLeft(t))
	})

	t.Run("name_mismatch_fails", func(t *testing.T) {
		f := newFixture(t, func(p *testutil.Project) { p.Name = "some_project" })
		err := Metadata{}.Run(ctx, f.env)

		require.Error(t, err)
		assert.True(t, errors.IsErrorCode(err, errors.ErrAssertion))
		details := errors.GetErrorDetails(err)
		assert.Equal(t, "some-project", details["expected"])
		assert.Equal(t, "some_project", details["actual"])
	})

	t.Run("author_mismatch_fails", func(t *testing.T) {
		f := newFixture(t, func(p *testutil.Project) { p.AuthorEmail = "other@example.com" })
		err := Metadata{}.Run(ctx, f.env)
		assert.True(t, errors.IsErrorCode(err, errors.ErrAssertion))
	})

	t.Run("extra_answers_flow_through", func(t *testing.T) {
		f := newFixture(t, nil)
		f.env.Extra = params.Params{params.ProjectName: "custom-name"}
		require.NoError(t, Metadata{}.Run(ctx, f.env))
		assert.Contains(t, f.rec.CallsTo("copier")[0].Args, "project_name=custom-name")
	})
}

func TestCheckMetadata(t *testing.T) {
	p := params.Params{
		params.ProjectName: "some-project",
		params.AuthorName:  "Test Name",
		params.AuthorEmail: "test@example.com",
	}
	ok := &manifest.Manifest{Project: manifest.Project{
		Name:    "some-project",
		Authors: []manifest.Author{{Name: "Test Name", Email: "test@example.com"}},
	}}
	assert.NoError(t, CheckMetadata(ok, p))

	twoAuthors := &manifest.Manifest{Project: manifest.Project{
		Name: "some-project",
		Authors: []manifest.Author{
			{Name: "Test Name", Email: "test@example.com"},
			{Name: "Test Name", Email: "test@example.com"},
		},
	}}
	assert.True(t, errors.IsErrorCode(CheckMetadata(twoAuthors, p), errors.ErrAssertion))
}

func TestTestSuite(t *testing.T) {
	ctx := context.Background()

	t.Run("runs_pytest_inside_output", func(t *testing.T) {
		f := newFixture(t, nil)
		wd, _ := os.Getwd()

		require.NoError(t, TestSuite{}.Run(ctx, f.env))

		calls := f.rec.CallsTo("python")
		require.Len(t, calls, 1)
		assert.Equal(t, []string{"-m", "pytest", "tests"}, calls[0].Args)
		assert.True(t, strings.HasPrefix(calls[0].Cwd, f.root), "pytest runs inside the output dir, got %s", calls[0].Cwd)

		after, _ := os.Getwd()
		assert.Equal(t, wd, after, "working directory is restored")

		copierArgs := f.rec.CallsTo("copier")[0].Args
		assert.Contains(t, copierArgs, "project_name=some-project")
		assert.NotContains(t, copierArgs, "author_name=Test Name")
	})

	t.Run("repository_is_initialized", func(t *testing.T) {
		f := newFixture(t, nil)
		require.NoError(t, TestSuite{}.Run(ctx, f.env))

		var commits int
		for _, c := range f.rec.CallsTo("git") {
			if strings.HasPrefix(c.Args[1], f.root) && contains(c.Args, "commit") {
				commits++
			}
		}
		assert.Equal(t, 1, commits)
	})

	t.Run("failing_tests_fail_scenario", func(t *testing.T) {
		f := newFixture(t, nil)
		f.rec.Handle("python", testutil.Fail(1, "1 failed"))
		wd, _ := os.Getwd()

		err := TestSuite{}.Run(ctx, f.env)
		require.Error(t, err)
		assert.True(t, errors.IsErrorCode(err, errors.ErrCommandFailed))
		assert.Equal(t, 1, runner.ExitCode(err))

		after, _ := os.Getwd()
		assert.Equal(t, wd, after)
		assert.Empty(t, f.outputsLeft(t))
	})
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func TestBuild(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name      string
		artifacts int
		wantErr   bool
	}{
		{"exactly_minimum", 2, false},
		{"more_than_minimum", 3, false},
		{"below_minimum", 1, true},
		{"nothing_built", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, nil)
			f.rec.Handle("python", writeDist(tt.artifacts))

			err := Build{}.Run(ctx, f.env)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.IsErrorCode(err, errors.ErrAssertion))
			} else {
				require.NoError(t, err)
			}

			assert.Len(t, f.rec.CallsTo("check-manifest"), 1)
			assert.Equal(t, [][]string{{"-m", "build"}}, argsOf(f.rec.CallsTo("python")))
		})
	}

	t.Run("check_manifest_failure_stops_build", func(t *testing.T) {
		f := newFixture(t, nil)
		f.rec.Handle("check-manifest", testutil.Fail(1, "missing from sdist"))

		err := Build{}.Run(ctx, f.env)
		assert.True(t, errors.IsErrorCode(err, errors.ErrCommandFailed))
		assert.Empty(t, f.rec.CallsTo("python"))
	})

	t.Run("empty_dist_dir_rejected", func(t *testing.T) {
		f := newFixture(t, nil)
		f.env.Config.Build.DistDir = ""
		f.rec.Handle("python", writeDist(0))

		err := Build{}.Run(ctx, f.env)
		assert.True(t, errors.IsErrorCode(err, errors.ErrConfigValid))
		assert.Empty(t, f.rec.CallsTo("copier"), "nothing is rendered")
	})

	t.Run("configured_minimum", func(t *testing.T) {
		f := newFixture(t, nil)
		f.env.Config.Build.MinArtifacts = 3
		f.rec.Handle("python", writeDist(2))

		err := Build{}.Run(ctx, f.env)
		assert.Equal(t, 3, errors.GetErrorDetails(err)["expected"])
		assert.Equal(t, 2, errors.GetErrorDetails(err)["actual"])
	})
}

func TestCheckArtifacts(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/out/dist/a.whl", nil, 0644))
	require.NoError(t, afero.WriteFile(fs, "/out/dist/a.tar.gz", nil, 0644))

	assert.NoError(t, CheckArtifacts(fs, "/out/dist", 2))
	assert.True(t, errors.IsErrorCode(CheckArtifacts(fs, "/out/dist", 3), errors.ErrAssertion))
	assert.True(t, errors.IsErrorCode(CheckArtifacts(fs, "/missing", 1), errors.ErrAssertion))
}

func TestPreCommit(t *testing.T) {
	ctx := context.Background()

	t.Run("runs_hooks_in_order", func(t *testing.T) {
		f := newFixture(t, nil)
		require.NoError(t, PreCommit{}.Run(ctx, f.env))

		assert.Equal(t, [][]string{
			{"autoupdate"},
			{"install"},
			{"run", "--all-files"},
		}, argsOf(f.rec.CallsTo("pre-commit")))

		// git add between install and run
		var sequence []string
		for _, c := range f.rec.Calls {
			if c.Name == "pre-commit" || (c.Name == "git" && contains(c.Args, "add")) {
				sequence = append(sequence, c.Name+" "+strings.Join(c.Args[len(c.Args)-1:], ""))
			}
		}
		assert.Equal(t, []string{
			"git -A", // snapshot
			"git -A", // materialized repo
			"pre-commit autoupdate",
			"pre-commit install",
			"git -A",
			"pre-commit --all-files",
		}, sequence)
	})

	t.Run("missing_config_fails_before_hooks", func(t *testing.T) {
		f := newFixture(t, func(p *testutil.Project) { p.NoPreCommit = true })

		err := PreCommit{}.Run(ctx, f.env)
		assert.True(t, errors.IsErrorCode(err, errors.ErrAssertion))
		assert.Empty(t, f.rec.CallsTo("pre-commit"))
	})

	t.Run("failing_hook_fails_scenario", func(t *testing.T) {
		f := newFixture(t, nil)
		f.rec.Handle("pre-commit", func(call testutil.Call) (runner.Result, error) {
			if call.Args[0] == "run" {
				return testutil.Fail(1, "ruff....Failed")(call)
			}
			return runner.Result{}, nil
		})

		err := PreCommit{}.Run(ctx, f.env)
		assert.Equal(t, 1, runner.ExitCode(err))
	})
}

func TestDeterminism(t *testing.T) {
	ctx := context.Background()

	t.Run("identical_renders_pass", func(t *testing.T) {
		f := newFixture(t, nil)
		require.NoError(t, Determinism{}.Run(ctx, f.env))
		assert.Len(t, f.rec.CallsTo("copier"), 2)

		dests := map[string]bool{}
		for _, c := range f.rec.CallsTo("copier") {
			dests[c.Args[len(c.Args)-1]] = true
		}
		assert.Len(t, dests, 2, "renders go to distinct directories")
	})

	t.Run("diverging_renders_fail", func(t *testing.T) {
		n := 0
		f := newFixture(t, func(p *testutil.Project) {
			n++
			p.Commit = fmt.Sprintf("rev-%d", n)
		})

		err := Determinism{}.Run(ctx, f.env)
		assert.True(t, errors.IsErrorCode(err, errors.ErrAssertion))
	})
}

func TestSnapshotSharedAcrossScenarios(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	f.rec.Handle("python", writeDist(2))

	report := Run(ctx, f.env, All())
	require.True(t, report.OK(), "%+v", report.Results)

	var tags int
	for _, c := range f.rec.CallsTo("git") {
		if contains(c.Args, "tag") {
			tags++
		}
	}
	assert.Equal(t, 1, tags, "snapshot is created once per session")
}

func TestRunReport(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	f.rec.Handle("python", testutil.Fail(2, "no module named build"))

	report := Run(ctx, f.env, []Scenario{Metadata{}, Build{}})
	require.Len(t, report.Results, 2)
	assert.True(t, report.Results[0].Passed())
	assert.False(t, report.Results[1].Passed())
	assert.Equal(t, 1, report.Passed())
	assert.Equal(t, 1, report.Failed())
	assert.False(t, report.OK())
}

func TestSelect(t *testing.T) {
	all, err := Select(nil)
	require.NoError(t, err)
	assert.Len(t, all, 5)

	picked, err := Select([]string{"build", "metadata"})
	require.NoError(t, err)
	assert.Equal(t, "build", picked[0].Name())
	assert.Equal(t, "metadata", picked[1].Name())

	_, err = Select([]string{"lint"})
	assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))

	for _, s := range All() {
		found, ok := Lookup(s.Name())
		assert.True(t, ok)
		assert.NotEmpty(t, found.Description())
	}
}

func TestKeepOutputs(t *testing.T) {
	f := newFixture(t, nil)
	f.env.KeepOutputs = true

	require.NoError(t, Metadata{}.Run(context.Background(), f.env))
	assert.Len(t, f.outputsLeft(t), 1)
}
