package manifest

import (
	"os"

	"github.com/arthur-debert/scaffoldcheck/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Hook is one entry of a repo's hooks list.
type Hook struct {
	ID   string   `yaml:"id"`
	Args []string `yaml:"args,omitempty"`
}

// HookRepo is one entry of the top-level repos list.
type HookRepo struct {
	Repo  string `yaml:"repo"`
	Rev   string `yaml:"rev,omitempty"`
	Hooks []Hook `yaml:"hooks"`
}

// PreCommitConfig is the shape of .pre-commit-config.yaml.
type PreCommitConfig struct {
	DefaultLanguageVersion map[string]string `yaml:"default_language_version,omitempty"`
	Repos                  []HookRepo        `yaml:"repos"`
}

// HookIDs lists every hook id across repos, in file order.
func (c *PreCommitConfig) HookIDs() []string {
	var ids []string
	for _, r := range c.Repos {
		for _, h := range r.Hooks {
			ids = append(ids, h.ID)
		}
	}
	return ids
}

// LoadPreCommit parses the hook configuration at path.
func LoadPreCommit(path string) (*PreCommitConfig, error) {
	data, err := readExisting(path)
	if err != nil {
		return nil, err
	}
	var cfg PreCommitConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrapf(err, errors.ErrManifestParse, "failed to parse pre-commit config %s", path).
			WithDetail("path", path)
	}
	return &cfg, nil
}

// LoadAnswers parses copier's answers file into a flat map. Copier-private
// keys (leading underscore) are kept.
func LoadAnswers(path string) (map[string]interface{}, error) {
	data, err := readExisting(path)
	if err != nil {
		return nil, err
	}
	answers := make(map[string]interface{})
	if err := yaml.Unmarshal(data, &answers); err != nil {
		return nil, errors.Wrapf(err, errors.ErrManifestParse, "failed to parse answers file %s", path).
			WithDetail("path", path)
	}
	return answers, nil
}

func readExisting(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrapf(err, errors.ErrNotFound, "file not found: %s", path).
				WithDetail("path", path)
		}
		return nil, errors.Wrapf(err, errors.ErrFileAccess, "failed to read %s", path).
			WithDetail("path", path)
	}
	return data, nil
}
