// Package filetest compares generated output against a checked-in testdata
// fixture, failing with a line-level diff instead of a bare inequality.
package filetest

import (
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/kylelemons/godebug/diff"
)

var update = flag.Bool("test.update-golden", false, "overwrite golden files under testdata/ with the test's actual output")

// Golden compares output against testdata/name under dir, failing the test
// with a diff on mismatch. With -test.update-golden it overwrites the
// golden file instead of comparing.
func Golden(t *testing.T, dir, name, output string) {
	t.Helper()
	path := filepath.Join(dir, name)
	if *update {
		if err := os.WriteFile(path, []byte(output), 0o600); err != nil {
			t.Fatal(err)
		}
		return
	}

	wantb, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		t.Fatal(err)
	}
	if patch := diff.Diff(string(wantb), output); patch != "" {
		t.Errorf("golden mismatch for %s (run with -test.update-golden to refresh):\n%s", name, patch)
	}
}
