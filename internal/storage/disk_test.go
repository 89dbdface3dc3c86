package storage

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDiskUsageBytes(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "edura.db")
	sub := filepath.Join(dir, "sub")
	mustWrite := func(path, content string) {
		t.Helper()
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
	mustWrite(file, "hello")
	mustWrite(filepath.Join(sub, "a"), "ab")
	mustWrite(filepath.Join(sub, "nested", "b"), "c")

	tests := []struct {
		name  string
		paths []string
		want  int64
	}{
		{"single file", []string{file}, 5},
		{"directory is recursive", []string{sub}, 3},
		{"file and directory", []string{file, sub}, 8},
		{"missing path counts zero", []string{file, filepath.Join(dir, "edura.db-wal"), sub}, 8},
		{"empty path skipped", []string{"", file}, 5},
		{"nothing", nil, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DiskUsageBytes(tt.paths...)
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("got %d bytes, want %d", got, tt.want)
			}
		})
	}
}
