package internal

import (
	"bytes"
	"go/format"
	"go/parser"
	"go/token"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
)

const modulePath = "github.com/JairoTorregrosa/picopala"

// projectRoot returns the module root whether the test runs from internal/
// or from the root itself.
func projectRoot(t *testing.T) string {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}
	if filepath.Base(wd) == "internal" {
		return filepath.Dir(wd)
	}
	return wd
}

// sourceFiles lists every .go file under internal/ and cmd/, skipping vendor
// and hidden directories.
func sourceFiles(t *testing.T, root string) []string {
	t.Helper()
	var files []string
	for _, dir := range []string{"internal", "cmd"} {
		err := filepath.WalkDir(filepath.Join(root, dir), func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if d.Name() == "vendor" || strings.HasPrefix(d.Name(), ".") {
					return filepath.SkipDir
				}
				return nil
			}
			if strings.HasSuffix(path, ".go") {
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			t.Fatalf("Failed to walk directory %s: %v", dir, err)
		}
	}
	return files
}

// TestGofmtCompliance verifies that all Go source files are formatted.
// If this test fails, run: gofmt -w ./internal/ ./cmd/
func TestGofmtCompliance(t *testing.T) {
	root := projectRoot(t)

	var unformatted []string
	for _, path := range sourceFiles(t, root) {
		content, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("Failed to read %s: %v", path, err)
		}
		formatted, err := format.Source(content)
		if err != nil {
			t.Errorf("%s does not parse: %v", path, err)
			continue
		}
		if !bytes.Equal(content, formatted) {
			rel, _ := filepath.Rel(root, path)
			unformatted = append(unformatted, rel)
		}
	}

	for _, f := range unformatted {
		t.Errorf("not gofmt-formatted: %s", f)
	}
}

// TestCommandPackageIsALeaf verifies that only the binary and the
// integration tests import the CLI package, keeping the engine, the hooks
// and the MCP server usable without cobra.
func TestCommandPackageIsALeaf(t *testing.T) {
	root := projectRoot(t)
	cliPkg := modulePath + "/internal/cmd"
	allowed := map[string]bool{
		filepath.Join(root, "cmd", "picopala"): true,
		filepath.Join(root, "internal"):        true,
		filepath.Join(root, "internal", "cmd"): true,
	}

	fset := token.NewFileSet()
	for _, path := range sourceFiles(t, root) {
		f, err := parser.ParseFile(fset, path, nil, parser.ImportsOnly)
		if err != nil {
			t.Fatalf("Failed to parse %s: %v", path, err)
		}
		for _, imp := range f.Imports {
			p, _ := strconv.Unquote(imp.Path.Value)
			if p == cliPkg && !allowed[filepath.Dir(path)] {
				rel, _ := filepath.Rel(root, path)
				t.Errorf("%s imports %s", rel, cliPkg)
			}
		}
	}
}
