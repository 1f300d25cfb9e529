package testutil

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/arthur-debert/scaffoldcheck/pkg/manifest"
	"github.com/arthur-debert/scaffoldcheck/pkg/params"
	"github.com/arthur-debert/scaffoldcheck/pkg/runner"
)

// Project describes the tree WriteProject renders.
type Project struct {
	Name        string
	AuthorName  string
	AuthorEmail string
	Commit      string // recorded in the answers file
	NoPreCommit bool
}

// ProjectFromParams fills a Project from template answers, using the same
// defaults a real template would.
func ProjectFromParams(p params.Params) Project {
	proj := Project{
		Name:        "python-project",
		AuthorName:  "Author",
		AuthorEmail: "author@example.com",
	}
	if v, ok := p[params.ProjectName]; ok {
		proj.Name = v
	}
	if v, ok := p[params.AuthorName]; ok {
		proj.AuthorName = v
	}
	if v, ok := p[params.AuthorEmail]; ok {
		proj.AuthorEmail = v
	}
	return proj
}

// WriteProject renders a minimal generated project into dir.
func WriteProject(dir string, p Project) error {
	files := map[string]string{
		manifest.PyProjectFile: fmt.Sprintf(`[build-system]
requires = ["setuptools>=64"]
build-backend = "setuptools.build_meta"

[project]
name = %q
authors = [{ name = %q, email = %q }]
dependencies = []
`, p.Name, p.AuthorName, p.AuthorEmail),
		manifest.AnswersFile: fmt.Sprintf("_commit: %s\nproject_name: %s\nauthor_name: %s\nauthor_email: %s\n",
			p.Commit, p.Name, p.AuthorName, p.AuthorEmail),
		filepath.Join("tests", "test_import.py"): "def test_import():\n    assert True\n",
	}
	if !p.NoPreCommit {
		files[manifest.PreCommitFile] = "repos:\n  - repo: local\n    hooks:\n      - id: noop\n"
	}

	for name, content := range files {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return err
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			return err
		}
	}
	return nil
}

// CopierVersion is what CopierHandler reports for --version.
const CopierVersion = "copier 9.4.1"

// CopierHandler fakes `copier [copy] --force -d k=v ... <src> <dest>` by
// rendering a Project built from the -d answers into dest.
func CopierHandler(customize func(*Project)) Handler {
	return func(call Call) (runner.Result, error) {
		if len(call.Args) == 1 && call.Args[0] == "--version" {
			return runner.Result{Stdout: CopierVersion + "\n"}, nil
		}
		if len(call.Args) < 2 {
			return runner.Result{}, fmt.Errorf("copier called with too few args: %v", call.Args)
		}
		dest := call.Args[len(call.Args)-1]

		answers := make([]string, 0)
		for i := 0; i < len(call.Args)-1; i++ {
			if call.Args[i] == params.DataFlag {
				answers = append(answers, call.Args[i+1])
				i++
			}
		}
		parsed, err := params.Parse(answers)
		if err != nil {
			return runner.Result{}, err
		}

		proj := ProjectFromParams(parsed)
		if customize != nil {
			customize(&proj)
		}
		if err := WriteProject(dest, proj); err != nil {
			return runner.Result{}, err
		}
		return runner.Result{Stdout: "copying from template " + call.Args[len(call.Args)-2]}, nil
	}
}
