package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDisabledLoggingIsNoOp(t *testing.T) {
	t.Cleanup(CloseAll)
	dir := t.TempDir()
	if err := Initialize(dir, Options{Debug: false}); err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	API("should go nowhere")
	if _, err := os.Stat(filepath.Join(dir, "logs")); !os.IsNotExist(err) {
		t.Error("logs directory should not be created in production mode")
	}
}

func TestDebugLoggingWritesFile(t *testing.T) {
	t.Cleanup(CloseAll)
	dir := t.TempDir()
	if err := Initialize(dir, Options{Debug: true, Level: "debug"}); err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	Extract("parsed %d lines", 7)
	CloseAll()

	entries, err := os.ReadDir(filepath.Join(dir, "logs"))
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	var found bool
	for _, e := range entries {
		if strings.Contains(e.Name(), "extract") {
			found = true
			data, err := os.ReadFile(filepath.Join(dir, "logs", e.Name()))
			if err != nil {
				t.Fatal(err)
			}
			if !strings.Contains(string(data), "parsed 7 lines") {
				t.Errorf("log content missing message: %s", data)
			}
		}
	}
	if !found {
		t.Error("no extract log file written")
	}
}

func TestLevelFiltering(t *testing.T) {
	t.Cleanup(CloseAll)
	dir := t.TempDir()
	if err := Initialize(dir, Options{Debug: true, Level: "error"}); err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	l := Get(CategoryStore)
	l.Info("filtered out")
	l.Error("kept")
	CloseAll()

	entries, _ := os.ReadDir(filepath.Join(dir, "logs"))
	for _, e := range entries {
		if !strings.Contains(e.Name(), "store") {
			continue
		}
		data, _ := os.ReadFile(filepath.Join(dir, "logs", e.Name()))
		if strings.Contains(string(data), "filtered out") {
			t.Error("info entry should be filtered at error level")
		}
		if !strings.Contains(string(data), "kept") {
			t.Error("error entry missing")
		}
	}
}
