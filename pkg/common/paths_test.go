package common

import (
	"os"
	"path/filepath"
	"testing"
)

func TestTryMkdir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b")

	for i := 0; i < 2; i++ {
		if err := TryMkdir(dir); err != nil {
			t.Fatalf("TryMkdir() #%d: %v", i, err)
		}
	}

	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		t.Errorf("%s not created: %v", dir, err)
	}
}

func TestTryCreateKeepsExistingFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "config.yaml")

	if err := TryCreate(file, []byte("first")); err != nil {
		t.Fatal(err)
	}

	if err := TryCreate(file, []byte("second")); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(file)
	if err != nil {
		t.Fatal(err)
	}

	if string(data) != "first" {
		t.Errorf("file contains %q, want %q", data, "first")
	}
}
