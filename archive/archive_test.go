package archive

import (
	"archive/zip"
	"bytes"
	"errors"
	"testing"

	"obsync/common"
)

func makeZip(t *testing.T, files map[string]string) []byte {
	t.Helper()
	buf := new(bytes.Buffer)
	w := zip.NewWriter(buf)
	for name, content := range files {
		fw, err := w.Create(name)
		if err != nil {
			t.Fatalf("Failed to create file %s in zip: %v", name, err)
		}
		if _, err := fw.Write([]byte(content)); err != nil {
			t.Fatalf("Failed to write content for %s: %v", name, err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Failed to close zip writer: %v", err)
	}
	return buf.Bytes()
}

func TestOpen(t *testing.T) {
	data := makeZip(t, map[string]string{
		"summary.json":                 `{"canons":{}}`,
		"ot/syncable/en/d10/data.json": "10",
		"ot/syncable/en/d2/data.json":  "2",
		"nt/text-only/fr/x/data.json":  "fr",
		"../evil.json":                 "evil",
		"ot/../../escape.json":         "evil",
	})

	a, err := Open(data)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}

	if !a.Has("summary.json") {
		t.Error("Has(summary.json) = false")
	}
	if a.Has("../evil.json") {
		t.Error("unsafe entry must not be indexed")
	}
	if len(a.Skipped()) != 2 {
		t.Errorf("Skipped() = %v, want 2 entries", a.Skipped())
	}

	content, err := a.ReadEntry("ot/syncable/en/d2/data.json")
	if err != nil {
		t.Fatalf("ReadEntry() error = %v", err)
	}
	if string(content) != "2" {
		t.Errorf("ReadEntry() = %q, want 2", content)
	}

	_, err = a.ReadEntry("missing.json")
	if !errors.Is(err, common.ErrNotFound) {
		t.Errorf("ReadEntry(missing) error = %v, want not found", err)
	}
}

func TestOpen_NotZip(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"text", []byte("definitely not an archive")},
		{"json", []byte(`{"canons":{}}`)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Open(tt.data)
			if !errors.Is(err, common.ErrParse) {
				t.Errorf("Open() error = %v, want parse error", err)
			}
		})
	}
}

func TestWalk(t *testing.T) {
	a, err := Open(makeZip(t, map[string]string{
		"docs/readme10.txt": "10",
		"docs/readme2.txt":  "2",
		"docs/readme1.txt":  "1",
		"src/main.go":       "main",
	}))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}

	t.Run("natural order with prefix", func(t *testing.T) {
		var visited []string
		err := a.Walk("docs/", func(name string, file *zip.File) error {
			if name != file.Name {
				t.Errorf("name = %s, file name = %s", name, file.Name)
			}
			visited = append(visited, name)
			return nil
		})
		if err != nil {
			t.Errorf("Walk() error = %v", err)
		}
		want := []string{"docs/readme1.txt", "docs/readme2.txt", "docs/readme10.txt"}
		if len(visited) != len(want) {
			t.Fatalf("visited %v, want %v", visited, want)
		}
		for i := range want {
			if visited[i] != want[i] {
				t.Errorf("visited[%d] = %s, want %s", i, visited[i], want[i])
			}
		}
	})

	t.Run("no matching prefix", func(t *testing.T) {
		count := 0
		if err := a.Walk("nonexistent/", func(string, *zip.File) error {
			count++
			return nil
		}); err != nil {
			t.Errorf("Walk() error = %v", err)
		}
		if count != 0 {
			t.Errorf("visited %d files, want 0", count)
		}
	})

	t.Run("error stops walk", func(t *testing.T) {
		stop := errors.New("stop")
		count := 0
		err := a.Walk("", func(string, *zip.File) error {
			count++
			return stop
		})
		if !errors.Is(err, stop) {
			t.Errorf("Walk() error = %v, want stop", err)
		}
		if count != 1 {
			t.Errorf("visited %d files, want 1", count)
		}
	})
}

func TestIsSafePath(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"a/b/c.json", true},
		{"a/..b/c", true},
		{"/abs/path", false},
		{`\windows`, false},
		{"a/../b", false},
		{"..", false},
	}
	for _, tt := range tests {
		if got := isSafePath(tt.name); got != tt.want {
			t.Errorf("isSafePath(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}
