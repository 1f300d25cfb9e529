// Package manifest reads the metadata files a rendered project carries:
// the package manifest (pyproject.toml), the pre-commit hook configuration
// and copier's answers file.
package manifest

import (
	"os"

	"github.com/arthur-debert/scaffoldcheck/pkg/errors"
	toml "github.com/pelletier/go-toml/v2"
)

// File names relative to a rendered project root.
const (
	PyProjectFile = "pyproject.toml"
	PreCommitFile = ".pre-commit-config.yaml"
	AnswersFile   = ".copier-answers.yml"
)

// Author is one entry of project.authors.
type Author struct {
	Name  string `toml:"name"`
	Email string `toml:"email"`
}

// Project is the [project] table.
type Project struct {
	Name           string   `toml:"name"`
	Version        string   `toml:"version"`
	Description    string   `toml:"description"`
	RequiresPython string   `toml:"requires-python"`
	Authors        []Author `toml:"authors"`
	Dependencies   []string `toml:"dependencies"`
	Dynamic        []string `toml:"dynamic"`
}

// BuildSystem is the [build-system] table.
type BuildSystem struct {
	Requires     []string `toml:"requires"`
	BuildBackend string   `toml:"build-backend"`
}

// Manifest is the subset of pyproject.toml the harness inspects.
type Manifest struct {
	Project     Project     `toml:"project"`
	BuildSystem BuildSystem `toml:"build-system"`
}

// Load parses the manifest at path.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrapf(err, errors.ErrNotFound, "manifest not found: %s", path).
				WithDetail("path", path)
		}
		return nil, errors.Wrapf(err, errors.ErrFileAccess, "failed to read manifest %s", path).
			WithDetail("path", path)
	}
	return Parse(data, path)
}

// Parse decodes manifest bytes. source is only used in error details.
func Parse(data []byte, source string) (*Manifest, error) {
	var m Manifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, errors.Wrapf(err, errors.ErrManifestParse, "failed to parse manifest %s", source).
			WithDetail("path", source)
	}
	return &m, nil
}

// SingleAuthor returns the only author, failing unless exactly one is
// declared.
func (m *Manifest) SingleAuthor() (Author, error) {
	if len(m.Project.Authors) != 1 {
		return Author{}, errors.Assertionf(1, len(m.Project.Authors),
			"expected exactly one author, found %d", len(m.Project.Authors))
	}
	return m.Project.Authors[0], nil
}
