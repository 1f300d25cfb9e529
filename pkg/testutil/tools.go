package testutil

import (
	"os"
	"os/exec"
	"testing"
)

// TemplateEnv names the variable pointing integration tests at a template.
const TemplateEnv = "SCAFFOLDCHECK_TEMPLATE_ROOT"

// RequireTools skips the test unless every named binary is on PATH.
func RequireTools(t testing.TB, names ...string) {
	t.Helper()
	for _, name := range names {
		if _, err := exec.LookPath(name); err != nil {
			t.Skipf("%s not found on PATH", name)
		}
	}
}

// RequireTemplate returns the template root from SCAFFOLDCHECK_TEMPLATE_ROOT or
// skips the test.
func RequireTemplate(t testing.TB) string {
	t.Helper()
	root := os.Getenv(TemplateEnv)
	if root == "" {
		t.Skipf("%s not set", TemplateEnv)
	}
	if _, err := os.Stat(root); err != nil {
		t.Skipf("template root %s: %v", root, err)
	}
	return root
}
