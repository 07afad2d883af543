package artifact

import (
	"os"
	"path/filepath"
	"testing"
)

func TestWriteFileCreatesAndReplaces(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index", "meta.json")

	if err := WriteFile(path, []byte("v1"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if err := WriteFile(path, []byte("v2"), 0o644); err != nil {
		t.Fatalf("WriteFile replace: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(data) != "v2" {
		t.Errorf("content = %q, want %q", data, "v2")
	}
}

func TestWriteFileLeavesNoTempOnSuccess(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "vectors.idx")

	if err := WriteFile(path, []byte("data"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("expected only the artifact, found %d entries", len(entries))
	}
}

func TestReplace(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "keywords.sqlite.new")
	dst := filepath.Join(dir, "index", "keywords.sqlite")

	if err := os.WriteFile(src, []byte("db"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := Replace(src, dst); err != nil {
		t.Fatalf("Replace: %v", err)
	}

	if _, err := os.Stat(src); !os.IsNotExist(err) {
		t.Error("source still exists after Replace")
	}
	data, err := os.ReadFile(dst)
	if err != nil || string(data) != "db" {
		t.Errorf("dst content = %q, err = %v", data, err)
	}
}
