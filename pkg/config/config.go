package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/arthur-debert/scaffoldcheck/pkg/git"
	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/toml"
	kyaml "github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	scerrors "github.com/arthur-debert/scaffoldcheck/pkg/errors"
)

// EnvPrefix prefixes every configuration environment variable.
const EnvPrefix = "SCAFFOLDCHECK_"

// DefaultFileNames are looked up in the working directory when no explicit
// config path is given.
var DefaultFileNames = []string{"scaffoldcheck.toml", ".scaffoldcheck.toml", "scaffoldcheck.yaml", ".scaffoldcheck.yaml"}

//go:embed embedded/defaults.toml
var defaultConfig []byte

type rawBytesProvider struct{ bytes []byte }

func (r *rawBytesProvider) ReadBytes() ([]byte, error) { return r.bytes, nil }
func (r *rawBytesProvider) Read() (map[string]interface{}, error) {
	return nil, errors.New("not implemented")
}

// Template locates the template under test.
type Template struct {
	Root string `koanf:"root"`
	Tag  string `koanf:"tag"`
}

// Tools names the external binaries.
type Tools struct {
	Copier        string `koanf:"copier"`
	Git           string `koanf:"git"`
	Python        string `koanf:"python"`
	PreCommit     string `koanf:"pre_commit"`
	CheckManifest string `koanf:"check_manifest"`
}

// Build configures the build scenario.
type Build struct {
	MinArtifacts int    `koanf:"min_artifacts"`
	DistDir      string `koanf:"dist_dir"`
}

// Scenarios selects which scenarios run by default.
type Scenarios struct {
	Enabled []string `koanf:"enabled"`
}

// Params holds the default template answers.
type Params struct {
	ProjectName string `koanf:"project_name"`
	AuthorName  string `koanf:"author_name"`
	AuthorEmail string `koanf:"author_email"`
	DataFile    string `koanf:"data_file"`
}

// Config is the complete harness configuration.
type Config struct {
	Template  Template     `koanf:"template"`
	Tools     Tools        `koanf:"tools"`
	Identity  git.Identity `koanf:"identity"`
	Build     Build        `koanf:"build"`
	Scenarios Scenarios    `koanf:"scenarios"`
	Params    Params       `koanf:"params"`
}

// Default returns the embedded defaults with nothing layered on top.
func Default() (*Config, error) {
	return load("", nil, false)
}

// Load builds the configuration. path may be empty, in which case the
// DefaultFileNames are tried in the working directory. overrides are
// dotted keys (e.g. "build.min_artifacts") applied last.
func Load(path string, overrides map[string]interface{}) (*Config, error) {
	return load(path, overrides, true)
}

func load(path string, overrides map[string]interface{}, layered bool) (*Config, error) {
	k := koanf.New(".")

	// 1. Embedded defaults
	if err := k.Load(&rawBytesProvider{bytes: defaultConfig}, toml.Parser()); err != nil {
		return nil, scerrors.Wrap(err, scerrors.ErrConfigLoad, "failed to load defaults")
	}

	if layered {
		// 2. Config file
		configPath, err := resolveConfigPath(path)
		if err != nil {
			return nil, err
		}
		if configPath != "" {
			if err := k.Load(file.Provider(configPath), parserFor(configPath)); err != nil {
				return nil, scerrors.Wrapf(err, scerrors.ErrConfigParse, "failed to load config from %s", configPath).
					WithDetail("path", configPath)
			}
		}

		// 3. Environment
		if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
			return nil, scerrors.Wrap(err, scerrors.ErrConfigLoad, "failed to load environment")
		}

		// 4. Explicit overrides
		if len(overrides) > 0 {
			if err := k.Load(confmap.Provider(overrides, "."), nil); err != nil {
				return nil, scerrors.Wrap(err, scerrors.ErrConfigLoad, "failed to apply overrides")
			}
		}
	}

	var cfg Config
	unmarshalConf := koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           &cfg,
			WeaklyTypedInput: true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
				mapstructure.StringToSliceHookFunc(","),
			),
		},
	}
	if err := k.UnmarshalWithConf("", &cfg, unmarshalConf); err != nil {
		return nil, scerrors.Wrap(err, scerrors.ErrConfigParse, "failed to unmarshal configuration")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// envKey maps SCAFFOLDCHECK_SECTION_SOME_KEY to section.some_key. Variables
// without a section part are ignored.
func envKey(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	section, rest, ok := strings.Cut(key, "_")
	if !ok || section == "" || rest == "" {
		return ""
	}
	return section + "." + rest
}

// parserFor picks the koanf parser from the file extension; anything that
// is not YAML is read as TOML.
func parserFor(path string) koanf.Parser {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return kyaml.Parser()
	default:
		return toml.Parser()
	}
}

func resolveConfigPath(path string) (string, error) {
	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return "", scerrors.Wrapf(err, scerrors.ErrConfigLoad, "config file %s is not accessible", path).
				WithDetail("path", path)
		}
		return path, nil
	}
	for _, name := range DefaultFileNames {
		if _, err := os.Stat(name); err == nil {
			return filepath.Clean(name), nil
		}
	}
	return "", nil
}

// Validate rejects configurations no scenario can run with.
func (c *Config) Validate() error {
	if c.Build.MinArtifacts < 1 {
		return scerrors.Newf(scerrors.ErrConfigValid, "build.min_artifacts must be at least 1, got %d", c.Build.MinArtifacts)
	}
	// ordered: the first empty key is the one reported
	required := []struct{ key, value string }{
		{"tools.copier", c.Tools.Copier},
		{"tools.git", c.Tools.Git},
		{"tools.python", c.Tools.Python},
		{"tools.pre_commit", c.Tools.PreCommit},
		{"tools.check_manifest", c.Tools.CheckManifest},
		{"build.dist_dir", c.Build.DistDir},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return scerrors.Newf(scerrors.ErrConfigValid, "%s must not be empty", r.key).WithDetail("key", r.key)
		}
	}
	if c.Template.Tag == "" {
		return scerrors.New(scerrors.ErrConfigValid, "template.tag must not be empty")
	}
	return nil
}

// String renders the config for debug logging.
func (c *Config) String() string {
	return fmt.Sprintf("template=%s tag=%s copier=%s min_artifacts=%d scenarios=%v",
		c.Template.Root, c.Template.Tag, c.Tools.Copier, c.Build.MinArtifacts, c.Scenarios.Enabled)
}
