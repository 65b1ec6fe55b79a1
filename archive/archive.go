// Package archive gives random access to entries of a zip archive fully
// downloaded into memory.
package archive

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"path"
	"slices"
	"sort"
	"strings"

	"github.com/h2non/filetype"
	"github.com/maruel/natural"

	"obsync/common"
)

// WalkFunc is the type of the function called for each file in archive
// visited by Walk. If an error is returned, processing stops.
type WalkFunc func(name string, file *zip.File) error

// Archive is a read only view of zip archive. It is safe for concurrent reads.
type Archive struct {
	files   map[string]*zip.File
	names   []string
	skipped []string
}

// Open checks that data is zip archive and indexes its entries. Entries with
// path traversal components ("..") or absolute paths are skipped.
func Open(data []byte) (*Archive, error) {
	if !filetype.Is(data, "zip") {
		kind, _ := filetype.Match(data)
		return nil, &common.ParseError{Source: "archive", Err: fmt.Errorf("not a zip archive (detected %q)", kind.Extension)}
	}

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil && !errors.Is(err, zip.ErrInsecurePath) {
		return nil, &common.ParseError{Source: "archive", Err: err}
	}

	a := &Archive{files: make(map[string]*zip.File, len(zr.File))}
	for _, f := range zr.File {
		name := f.Name
		if f.FileInfo().IsDir() {
			continue
		}
		if !isSafePath(name) {
			a.skipped = append(a.skipped, name)
			continue
		}
		if _, exists := a.files[name]; exists {
			// first entry with the name wins, same as most unzip tools
			continue
		}
		a.files[name] = f
		a.names = append(a.names, name)
	}
	sort.Sort(natural.StringSlice(a.names))
	return a, nil
}

// Skipped returns names of entries which were ignored as unsafe.
func (a *Archive) Skipped() []string {
	return slices.Clone(a.skipped)
}

// Has reports whether archive has regular entry with the name.
func (a *Archive) Has(name string) bool {
	_, ok := a.files[name]
	return ok
}

// ReadEntry returns full content of the named entry.
func (a *Archive) ReadEntry(name string) ([]byte, error) {
	f, ok := a.files[name]
	if !ok {
		return nil, &common.NotFoundError{What: "archive entry", Key: name}
	}
	return ReadFile(f)
}

// Walk visits, in natural order, all files in the archive with names
// starting with prefix.
func (a *Archive) Walk(prefix string, walkFn WalkFunc) error {
	for _, name := range a.names {
		if !strings.HasPrefix(name, prefix) {
			continue
		}
		if err := walkFn(name, a.files[name]); err != nil {
			return err
		}
	}
	return nil
}

// ReadFile reads complete content of archived file.
func ReadFile(f *zip.File) ([]byte, error) {
	r, err := f.Open()
	if err != nil {
		return nil, &common.ParseError{Source: f.Name, Err: err}
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		if errors.Is(err, zip.ErrChecksum) || errors.Is(err, zip.ErrFormat) {
			return nil, &common.ParseError{Source: f.Name, Err: err}
		}
		return nil, fmt.Errorf("unable to read %s: %w", f.Name, err)
	}
	return data, nil
}

// isSafePath returns false for absolute paths and those containing ".."
// components.
func isSafePath(name string) bool {
	if path.IsAbs(name) || strings.HasPrefix(name, "/") || strings.HasPrefix(name, `\`) {
		return false
	}
	for part := range strings.SplitSeq(name, "/") {
		if part == ".." {
			return false
		}
	}
	return true
}
