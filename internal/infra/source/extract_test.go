package source

import (
	"archive/zip"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeZip(t *testing.T, entries map[string]string) string {
	t.Helper()
	f, err := os.CreateTemp(t.TempDir(), "fixture-*.zip")
	if err != nil {
		t.Fatalf("create temp zip: %v", err)
	}
	w := zip.NewWriter(f)
	for name, content := range entries {
		fw, err := w.Create(name)
		if err != nil {
			t.Fatalf("create entry %s: %v", name, err)
		}
		if _, err := fw.Write([]byte(content)); err != nil {
			t.Fatalf("write entry %s: %v", name, err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close zip writer: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("close zip file: %v", err)
	}
	return f.Name()
}

func TestExtractZipRoundTrip(t *testing.T) {
	archive := writeZip(t, map[string]string{
		"app.js":        "eval(userInput)",
		"lib/helper.py": "print('hi')",
	})
	dest := t.TempDir()

	if err := ExtractZip(archive, dest); err != nil {
		t.Fatalf("extract failed: %v", err)
	}

	got, err := os.ReadFile(filepath.Join(dest, "app.js"))
	if err != nil {
		t.Fatalf("read extracted file: %v", err)
	}
	if string(got) != "eval(userInput)" {
		t.Errorf("unexpected content: %q", got)
	}
	if _, err := os.Stat(filepath.Join(dest, "lib", "helper.py")); err != nil {
		t.Errorf("nested file missing: %v", err)
	}
}

func TestExtractZipRejectsPathEscape(t *testing.T) {
	archive := writeZip(t, map[string]string{
		"../evil.sh": "rm -rf /",
	})
	dest := t.TempDir()

	err := ExtractZip(archive, dest)
	if !errors.Is(err, ErrUnsafePath) {
		t.Fatalf("expected ErrUnsafePath, got %v", err)
	}

	// nothing may have been written outside the destination
	if _, serr := os.Stat(filepath.Join(filepath.Dir(dest), "evil.sh")); !os.IsNotExist(serr) {
		t.Error("path-escaping entry was written outside the extraction root")
	}
}

func TestExtractZipRejectsDeepEscape(t *testing.T) {
	archive := writeZip(t, map[string]string{
		"ok.js":             "1",
		"a/../../../pwn.js": "2",
	})

	err := ExtractZip(archive, t.TempDir())
	if !errors.Is(err, ErrUnsafePath) {
		t.Fatalf("expected ErrUnsafePath, got %v", err)
	}
}

func TestExtractZipRejectsCorruptArchive(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.zip")
	if err := os.WriteFile(path, []byte("this is not a zip"), 0o644); err != nil {
		t.Fatal(err)
	}

	err := ExtractZip(path, t.TempDir())
	if !errors.Is(err, ErrBadArchive) {
		t.Fatalf("expected ErrBadArchive, got %v", err)
	}
}
