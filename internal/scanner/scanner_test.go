package scanner

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/panbanda/revue/pkg/config"
)

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(root, name)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
}

func relAll(t *testing.T, root string, paths []string) []string {
	t.Helper()
	out := make([]string, len(paths))
	for i, p := range paths {
		rel, err := filepath.Rel(root, p)
		if err != nil {
			t.Fatal(err)
		}
		out[i] = filepath.ToSlash(rel)
	}
	return out
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestNewScanner(t *testing.T) {
	if s := NewScanner(nil); s.config == nil {
		t.Error("nil config should fall back to defaults")
	}
	cfg := config.DefaultConfig()
	if s := NewScanner(cfg); s.config != cfg {
		t.Error("scanner should keep the provided config")
	}
}

func TestScanDir(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"App.java":                  "class App {}\n",
		"src/Service.java":          "class Service {}\n",
		"src/ServiceTest.java":      "class ServiceTest {}\n",
		"src/package-info.java":     "package src;\n",
		"target/classes/Gen.java":   "class Gen {}\n",
		"build/Out.java":            "class Out {}\n",
		"notes.txt":                 "notes\n",
		"src/deep/nested/Util.java": "class Util {}\n",
	})

	files, err := NewScanner(nil).ScanDir(root)
	if err != nil {
		t.Fatalf("ScanDir() error: %v", err)
	}
	want := []string{"App.java", "src/Service.java", "src/deep/nested/Util.java"}
	if got := relAll(t, root, files); !equal(got, want) {
		t.Errorf("ScanDir() = %v, want %v", got, want)
	}
}

func TestScanDir_Gitignore(t *testing.T) {
	root := t.TempDir()
	if err := os.Mkdir(filepath.Join(root, ".git"), 0755); err != nil {
		t.Fatal(err)
	}
	writeTree(t, root, map[string]string{
		".gitignore":       "generated/\n*.gen.java\n",
		"generated/G.java": "class G {}\n",
		"src/X.gen.java":   "class X {}\n",
		"src/Y.java":       "class Y {}\n",
	})

	cfg := config.DefaultConfig()
	cfg.Exclude.Gitignore = true
	files, err := NewScanner(cfg).ScanDir(root)
	if err != nil {
		t.Fatal(err)
	}
	if got := relAll(t, root, files); !equal(got, []string{"src/Y.java"}) {
		t.Errorf("with gitignore = %v", got)
	}

	// Scanning a subdirectory still resolves patterns against the repository root.
	files, err = NewScanner(cfg).ScanDir(filepath.Join(root, "generated"))
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 0 {
		t.Errorf("ignored directory scanned directly should stay ignored, got %v", files)
	}

	cfg.Exclude.Gitignore = false
	files, err = NewScanner(cfg).ScanDir(root)
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 3 {
		t.Errorf("without gitignore expected 3 files, got %v", relAll(t, root, files))
	}
}

func TestScanDir_SymlinkOutsideRoot(t *testing.T) {
	root := t.TempDir()
	outside := t.TempDir()
	writeTree(t, outside, map[string]string{"Out.java": "class Out {}\n"})
	writeTree(t, root, map[string]string{"In.java": "class In {}\n"})
	if err := os.Symlink(filepath.Join(outside, "Out.java"), filepath.Join(root, "Link.java")); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}

	files, err := NewScanner(nil).ScanDir(root)
	if err != nil {
		t.Fatal(err)
	}
	if got := relAll(t, root, files); !equal(got, []string{"In.java"}) {
		t.Errorf("ScanDir() = %v, symlink escaping root must be skipped", got)
	}
}

func TestScan(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"a/A.java":     "class A {}\n",
		"b/B.java":     "class B {}\n",
		"b/BTest.java": "class BTest {}\n",
		"README.md":    "# readme\n",
	})

	s := NewScanner(nil)
	files, err := s.Scan([]string{
		filepath.Join(root, "b"),
		filepath.Join(root, "a", "A.java"),
		filepath.Join(root, "b", "B.java"),
		filepath.Join(root, "b", "BTest.java"),
		filepath.Join(root, "README.md"),
	})
	if err != nil {
		t.Fatalf("Scan() error: %v", err)
	}
	if got := relAll(t, root, files); !equal(got, []string{"a/A.java", "b/B.java"}) {
		t.Errorf("Scan() = %v", got)
	}

	if _, err := s.Scan([]string{filepath.Join(root, "missing")}); err == nil {
		t.Error("Scan() should fail for a missing path")
	}
}

func TestScanFile(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"App.java":     "class App {}\n",
		"AppTest.java": "class AppTest {}\n",
		"App.kt":       "class App\n",
	})
	s := NewScanner(nil)

	tests := []struct {
		name string
		want bool
	}{
		{"App.java", true},
		{"AppTest.java", false},
		{"App.kt", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.ScanFile(filepath.Join(root, tt.name))
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("ScanFile(%s) = %v, want %v", tt.name, got, tt.want)
			}
		})
	}

	if ok, _ := s.ScanFile(root); ok {
		t.Error("directories are not files to analyze")
	}
	if _, err := s.ScanFile(filepath.Join(root, "Nope.java")); err == nil {
		t.Error("missing file should error")
	}
}

func TestFilterBySize(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"Small.java": "class S {}\n",
		"Big.java":   "class B { /* " + string(make([]byte, 200)) + " */ }\n",
	})
	small := filepath.Join(root, "Small.java")
	big := filepath.Join(root, "Big.java")
	missing := filepath.Join(root, "Missing.java")

	kept, skipped := FilterBySize([]string{small, big, missing}, 100)
	if !equal(kept, []string{small}) {
		t.Errorf("kept = %v", kept)
	}
	if !equal(skipped, []string{big, missing}) {
		t.Errorf("skipped = %v", skipped)
	}

	kept, skipped = FilterBySize([]string{small, big}, 0)
	if len(kept) != 2 || skipped != nil {
		t.Error("zero limit keeps everything")
	}
}

func TestIsWithinRoot(t *testing.T) {
	tests := []struct {
		path, root string
		want       bool
	}{
		{"/repo/src/A.java", "/repo", true},
		{"/repo", "/repo", true},
		{"/repo2/A.java", "/repo", false},
		{"/other/A.java", "/repo", false},
	}
	for _, tt := range tests {
		if got := isWithinRoot(tt.path, tt.root); got != tt.want {
			t.Errorf("isWithinRoot(%q, %q) = %v, want %v", tt.path, tt.root, got, tt.want)
		}
	}
}
