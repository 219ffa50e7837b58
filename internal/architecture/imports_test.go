package architecture_test

import (
	"bufio"
	"fmt"
	"go/parser"
	"go/token"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
)

type importViolation struct {
	file string
	imp  string
	rule string
}

// walkImports reports every import of a non-test file under internal/ for
// which check returns a non-empty rule.
func walkImports(t *testing.T, check func(rel, imp, modulePath string) string) []importViolation {
	t.Helper()

	start, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	root, err := findModuleRoot(start)
	if err != nil {
		t.Fatalf("find module root: %v", err)
	}

	modulePath, err := readModulePath(filepath.Join(root, "go.mod"))
	if err != nil {
		t.Fatalf("read module path: %v", err)
	}

	internalDir := filepath.Join(root, "internal")
	fset := token.NewFileSet()
	var violations []importViolation

	walkErr := filepath.WalkDir(internalDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			switch d.Name() {
			case ".git", "vendor", "node_modules", ".gocache", "testutil":
				return filepath.SkipDir
			default:
				return nil
			}
		}
		if !strings.HasSuffix(path, ".go") || strings.HasSuffix(path, "_test.go") {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		f, err := parser.ParseFile(fset, path, nil, parser.ImportsOnly)
		if err != nil {
			return err
		}
		for _, spec := range f.Imports {
			if spec == nil || spec.Path == nil {
				continue
			}
			imp, err := strconv.Unquote(spec.Path.Value)
			if err != nil {
				continue
			}
			if rule := check(rel, imp, modulePath); rule != "" {
				violations = append(violations, importViolation{file: rel, imp: imp, rule: rule})
			}
		}
		return nil
	})
	if walkErr != nil {
		t.Fatalf("walk internal/: %v", walkErr)
	}
	return violations
}

func reportViolations(t *testing.T, header string, violations []importViolation) {
	t.Helper()
	if len(violations) == 0 {
		return
	}
	var b strings.Builder
	b.WriteString(header + "\n")
	for _, v := range violations {
		fmt.Fprintf(&b, "- %s imports %q (disallowed: %q)\n", v.file, v.imp, v.rule)
	}
	t.Fatal(b.String())
}

func TestImportBoundaries(t *testing.T) {
	violations := walkImports(t, func(rel, imp, modulePath string) string {
		for _, bad := range disallowedImports(modulePath, layerFor(rel)) {
			if strings.HasPrefix(imp, bad) {
				return bad
			}
		}
		return ""
	})
	reportViolations(t, "import boundary violations:", violations)
}

// Policy and domain code stay free of transport and broker libraries.
func TestCoreHasNoTransportImports(t *testing.T) {
	banned := []string{
		"github.com/gin-gonic/",
		"github.com/gin-contrib/",
		"github.com/redis/go-redis/",
		"github.com/prometheus/",
		"net/http",
	}
	violations := walkImports(t, func(rel, imp, _ string) string {
		if !strings.HasPrefix(rel, "internal/domain/") && !strings.HasPrefix(rel, "internal/policy/") {
			return ""
		}
		for _, bad := range banned {
			if strings.HasPrefix(imp, bad) {
				return bad
			}
		}
		return ""
	})
	reportViolations(t, "transport imports in core packages:", violations)
}

func layerFor(rel string) string {
	switch {
	case strings.HasPrefix(rel, "internal/platform/"):
		return "platform"
	case strings.HasPrefix(rel, "internal/domain/"):
		return "domain"
	case strings.HasPrefix(rel, "internal/policy/"):
		return "policy"
	case strings.HasPrefix(rel, "internal/data/"):
		return "data"
	case strings.HasPrefix(rel, "internal/services/"):
		return "services"
	case strings.HasPrefix(rel, "internal/http/"):
		return "http"
	default:
		return ""
	}
}

func disallowedImports(modulePath string, layer string) []string {
	app := modulePath + "/internal/app"
	httpPkg := modulePath + "/internal/http"
	services := modulePath + "/internal/services"
	data := modulePath + "/internal/data/"
	switch layer {
	case "platform":
		return []string{app, httpPkg, services, data, modulePath + "/internal/policy"}
	case "domain", "policy":
		return []string{app, httpPkg, services, data, modulePath + "/internal/observability"}
	case "data":
		return []string{app, httpPkg, services}
	case "services":
		return []string{app, httpPkg}
	case "http":
		return []string{app, modulePath + "/internal/data/repos"}
	default:
		return nil
	}
}

func findModuleRoot(start string) (string, error) {
	dir := start
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("go.mod not found from %s", start)
		}
		dir = parent
	}
}

func readModulePath(goModPath string) (string, error) {
	f, err := os.Open(goModPath)
	if err != nil {
		return "", err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "//") {
			continue
		}
		if !strings.HasPrefix(line, "module ") {
			continue
		}
		mp := strings.TrimSpace(strings.TrimPrefix(line, "module "))
		if mp == "" {
			return "", fmt.Errorf("empty module path in %s", goModPath)
		}
		return mp, nil
	}
	if err := scanner.Err(); err != nil {
		return "", err
	}
	return "", fmt.Errorf("module path not found in %s", goModPath)
}
