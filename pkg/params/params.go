// Package params holds the key/value substitutions handed to the templating
// tool and serializes them into its command-line form.
package params

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/arthur-debert/scaffoldcheck/pkg/errors"
	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Well-known template questions.
const (
	ProjectName = "project_name"
	AuthorName  = "author_name"
	AuthorEmail = "author_email"
)

// DataFlag is the copier flag that introduces one key=value answer.
const DataFlag = "-d"

// Params maps a template question to its answer. Keys are unique and their
// order carries no meaning.
type Params map[string]string

// Args serializes p as repeated `-d key=value` pairs, keys sorted so the
// same mapping always produces the same command line.
func (p Params) Args() []string {
	keys := p.Keys()
	args := make([]string, 0, 2*len(keys))
	for _, k := range keys {
		args = append(args, DataFlag, k+"="+p[k])
	}
	return args
}

// Keys returns the keys in sorted order.
func (p Params) Keys() []string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// With returns a copy of p with key set to value.
func (p Params) With(key, value string) Params {
	out := p.Merge(nil)
	out[key] = value
	return out
}

// Merge returns a copy of p overlaid with other. Values in other win.
func (p Params) Merge(other Params) Params {
	out := make(Params, len(p)+len(other))
	for k, v := range p {
		out[k] = v
	}
	for k, v := range other {
		out[k] = v
	}
	return out
}

// Validate rejects keys the templating tool could not parse back.
func (p Params) Validate() error {
	for k := range p {
		if strings.TrimSpace(k) == "" {
			return errors.New(errors.ErrInvalidInput, "parameter name must not be empty")
		}
		if strings.Contains(k, "=") {
			return errors.Newf(errors.ErrInvalidInput, "parameter name %q must not contain '='", k).
				WithDetail("key", k)
		}
	}
	return nil
}

// Parse turns `key=value` strings (as given on the command line) into
// Params. The value may itself contain '='.
func Parse(pairs []string) (Params, error) {
	out := make(Params, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, errors.Newf(errors.ErrInvalidInput, "parameter %q is not in key=value form", pair).
				WithDetail("pair", pair)
		}
		out[key] = value
	}
	return out, out.Validate()
}

// LoadFile reads answers from a YAML or TOML data file. Non-string scalars
// are stringified; nested tables are rejected.
func LoadFile(path string) (Params, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrFileAccess, "failed to read data file %s", path).
			WithDetail("path", path)
	}

	raw := make(map[string]interface{})
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yml", ".yaml":
		err = yaml.Unmarshal(data, &raw)
	case ".toml":
		err = toml.Unmarshal(data, &raw)
	default:
		return nil, errors.Newf(errors.ErrInvalidInput, "unsupported data file type %q", filepath.Ext(path)).
			WithDetail("path", path)
	}
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrConfigParse, "failed to parse data file %s", path).
			WithDetail("path", path)
	}

	out := make(Params, len(raw))
	for k, v := range raw {
		switch v.(type) {
		case map[string]interface{}, []interface{}:
			return nil, errors.Newf(errors.ErrInvalidInput, "data file key %q must be a scalar", k).
				WithDetail("path", path)
		case nil:
			out[k] = ""
		default:
			out[k] = fmt.Sprint(v)
		}
	}
	return out, out.Validate()
}
