package shader

import (
	"io/fs"
	"os"
	"path/filepath"
)

// SourceReader reads the raw text of a shader source file.
type SourceReader interface {
	// ReadSource returns the complete contents of the file at path.
	ReadSource(path string) ([]byte, error)
}

// SourceReaderFunc adapts a function to a SourceReader.
type SourceReaderFunc func(path string) ([]byte, error)

// ReadSource calls fn(path).
func (fn SourceReaderFunc) ReadSource(path string) ([]byte, error) {
	return fn(path)
}

// OSReader reads shader sources from the operating system's file system.
var OSReader SourceReader = SourceReaderFunc(os.ReadFile)

// FSReader reads shader sources from fsys. Paths are converted to slash form before lookup.
//
// Parameters:
//   - fsys: the file system to read from
//
// Returns:
//   - SourceReader: the reader
func FSReader(fsys fs.FS) SourceReader {
	return SourceReaderFunc(func(path string) ([]byte, error) {
		return fs.ReadFile(fsys, filepath.ToSlash(path))
	})
}
