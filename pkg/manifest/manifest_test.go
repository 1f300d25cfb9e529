// pkg/manifest/manifest_test.go
// TEST TYPE: Unit Test
// DEPENDENCIES: Real filesystem (temp dirs)
// PURPOSE: Parse generated project metadata files

package manifest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/arthur-debert/scaffoldcheck/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const samplePyProject = `
[build-system]
requires = ["setuptools>=64", "setuptools_scm>=8"]
build-backend = "setuptools.build_meta"

[project]
name = "some-project"
description = "A generated project"
requires-python = ">=3.9"
authors = [{ name = "Test Name", email = "test@example.com" }]
dependencies = []
dynamic = ["version"]
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, PyProjectFile, samplePyProject)

	m, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "some-project", m.Project.Name)
	assert.Equal(t, []Author{{Name: "Test Name", Email: "test@example.com"}}, m.Project.Authors)
	assert.Equal(t, []string{"version"}, m.Project.Dynamic)
	assert.Equal(t, "setuptools.build_meta", m.BuildSystem.BuildBackend)

	author, err := m.SingleAuthor()
	require.NoError(t, err)
	assert.Equal(t, "Test Name", author.Name)
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()

	t.Run("missing_file", func(t *testing.T) {
		_, err := Load(filepath.Join(dir, "nope.toml"))
		assert.True(t, errors.IsErrorCode(err, errors.ErrNotFound))
	})

	t.Run("malformed_toml", func(t *testing.T) {
		path := writeFile(t, dir, "bad.toml", "[project\nname = ")
		_, err := Load(path)
		assert.True(t, errors.IsErrorCode(err, errors.ErrManifestParse))
	})
}

func TestSingleAuthor(t *testing.T) {
	tests := []struct {
		name    string
		authors []Author
		wantErr bool
	}{
		{"none", nil, true},
		{"one", []Author{{Name: "a", Email: "a@x"}}, false},
		{"two", []Author{{Name: "a"}, {Name: "b"}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &Manifest{Project: Project{Authors: tt.authors}}
			_, err := m.SingleAuthor()
			if tt.wantErr {
				assert.True(t, errors.IsErrorCode(err, errors.ErrAssertion))
				assert.Equal(t, len(tt.authors), errors.GetErrorDetails(err)["actual"])
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoadPreCommit(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, PreCommitFile, `
repos:
  - repo: https://github.com/pre-commit/pre-commit-hooks
    rev: v4.5.0
    hooks:
      - id: check-yaml
      - id: end-of-file-fixer
  - repo: https://github.com/astral-sh/ruff-pre-commit
    rev: v0.3.0
    hooks:
      - id: ruff
        args: [--fix]
`)

	cfg, err := LoadPreCommit(path)
	require.NoError(t, err)
	require.Len(t, cfg.Repos, 2)
	assert.Equal(t, "v4.5.0", cfg.Repos[0].Rev)
	assert.Equal(t, []string{"check-yaml", "end-of-file-fixer", "ruff"}, cfg.HookIDs())
	assert.Equal(t, []string{"--fix"}, cfg.Repos[1].Hooks[0].Args)

	t.Run("malformed_yaml", func(t *testing.T) {
		bad := writeFile(t, dir, "bad.yaml", "repos: [\n")
		_, err := LoadPreCommit(bad)
		assert.True(t, errors.IsErrorCode(err, errors.ErrManifestParse))
	})

	t.Run("missing", func(t *testing.T) {
		_, err := LoadPreCommit(filepath.Join(dir, "missing.yaml"))
		assert.True(t, errors.IsErrorCode(err, errors.ErrNotFound))
	})
}

func TestLoadAnswers(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, AnswersFile, "_commit: 99.99.99\n_src_path: /tmp/snap\nproject_name: some-project\n")

	answers, err := LoadAnswers(path)
	require.NoError(t, err)
	assert.Equal(t, "99.99.99", answers["_commit"])
	assert.Equal(t, "some-project", answers["project_name"])
}
