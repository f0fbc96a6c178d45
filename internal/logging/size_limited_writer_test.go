package logging

import (
	"os"
	"path/filepath"
	"testing"
)

func TestSizeLimitedWriterRollsOver(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	writer, err := newSizeLimitedWriter(path, 1)
	if err != nil {
		t.Fatalf("create writer: %v", err)
	}
	defer writer.Close()

	chunk := make([]byte, 512*1024)
	for i := 0; i < 3; i++ {
		if _, err := writer.Write(chunk); err != nil {
			t.Fatalf("write chunk %d: %v", i, err)
		}
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat log: %v", err)
	}
	if info.Size() > 1024*1024 {
		t.Fatalf("expected log <= 1MB, got %d", info.Size())
	}
	prev, err := os.Stat(path + ".1")
	if err != nil {
		t.Fatalf("stat previous generation: %v", err)
	}
	if prev.Size() != 1024*1024 {
		t.Fatalf("previous generation size = %d, want %d", prev.Size(), 1024*1024)
	}
}
