package config

import (
	"archive/zip"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

func readReport(t *testing.T, name string) map[string]string {
	t.Helper()
	zr, err := zip.OpenReader(name)
	if err != nil {
		t.Fatalf("failed to open report: %v", err)
	}
	defer zr.Close()

	out := make(map[string]string)
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("failed to open %s: %v", f.Name, err)
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			t.Fatalf("failed to read %s: %v", f.Name, err)
		}
		out[f.Name] = string(data)
	}
	return out
}

func TestReport_Archive(t *testing.T) {
	dir := t.TempDir()
	conf := ReporterConfig{Destination: filepath.Join(dir, "report.zip")}

	r, err := conf.Prepare()
	if err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}

	stored := filepath.Join(dir, "stored.txt")
	if err := os.WriteFile(stored, []byte("file content"), 0644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}
	sub := filepath.Join(dir, "sub")
	if err := os.MkdirAll(sub, 0755); err != nil {
		t.Fatalf("failed to create dir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(sub, "a.json"), []byte("{}"), 0644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}

	r.Store("stored.txt", stored)
	r.Store("stored.txt", stored) // same path is not duplicated
	r.Store("dir", sub)
	r.Store("absent", filepath.Join(dir, "nope"))
	r.StoreData("payload", []byte("one"))
	r.StoreData("payload", []byte("two"))

	if err := r.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	files := readReport(t, r.Name())
	if files["stored.txt"] != "file content" {
		t.Errorf("stored.txt = %q", files["stored.txt"])
	}
	if files["dir/a.json"] != "{}" {
		t.Errorf("dir/a.json = %q", files["dir/a.json"])
	}
	if files["payload"] != "one" || files["payload.1"] != "two" {
		t.Errorf("payload versions = %q, %q", files["payload"], files["payload.1"])
	}
	if _, ok := files["absent"]; ok {
		t.Error("absent file should not be archived")
	}
	if !strings.Contains(files["MANIFEST"], "payload.1") {
		t.Errorf("MANIFEST does not list versioned entry:\n%s", files["MANIFEST"])
	}
}

func TestReport_Concurrent(t *testing.T) {
	conf := ReporterConfig{Destination: filepath.Join(t.TempDir(), "report.zip")}
	r, err := conf.Prepare()
	if err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}

	var wg sync.WaitGroup
	for range 16 {
		wg.Go(func() {
			r.StoreData("story.md", []byte("data"))
		})
	}
	wg.Wait()

	if err := r.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	files := readReport(t, r.Name())
	// 16 entries plus MANIFEST
	if len(files) != 17 {
		t.Errorf("report has %d files, want 17", len(files))
	}
}

func TestReport_Nil(t *testing.T) {
	var r *Report
	r.Store("a", "b")
	r.StoreData("a", nil)
	if err := r.Close(); err != nil {
		t.Errorf("Close() on nil report error = %v", err)
	}
	if r.Name() != "" {
		t.Errorf("Name() on nil report = %q", r.Name())
	}
}
