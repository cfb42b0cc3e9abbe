package shader

import (
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"gopkg.in/yaml.v3"
)

// Manifest declares shader programs and the source files each one links.
//
// Example:
//
//	root: shaders
//	programs:
//	  basic: [basic.vert, basic.frag]
//	  post:  [quad.vert, blur.frag]
type Manifest struct {
	// Root is prepended to every file path.
	Root string `yaml:"root"`

	// Programs maps a program key to its shader file paths.
	Programs map[string][]string `yaml:"programs"`
}

// ParseManifest decodes a YAML manifest and validates every file extension.
//
// Parameters:
//   - data: the YAML document
//
// Returns:
//   - Manifest: the decoded manifest
//   - error: a YAML error or ErrUnknownShaderStage
func ParseManifest(data []byte) (Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return Manifest{}, fmt.Errorf("shader: invalid manifest: %w", err)
	}
	for key, files := range m.Programs {
		if len(files) == 0 {
			return Manifest{}, fmt.Errorf("shader: invalid manifest: program %q lists no files", key)
		}
		for _, f := range files {
			if _, err := StageFromPath(f); err != nil {
				return Manifest{}, err
			}
		}
	}
	return m, nil
}

// Keys returns the program keys in sorted order.
func (m Manifest) Keys() []string {
	keys := make([]string, 0, len(m.Programs))
	for k := range m.Programs {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Paths returns every distinct file path with Root applied, in first-use order over sorted keys.
func (m Manifest) Paths() []string {
	var paths []string
	seen := make(map[string]bool)
	for _, k := range m.Keys() {
		for _, f := range m.Programs[k] {
			p := filepath.Clean(filepath.Join(m.Root, f))
			if !seen[p] {
				seen[p] = true
				paths = append(paths, p)
			}
		}
	}
	return paths
}

func (r *registry) LoadManifest(path string) error {
	data, err := r.reader.ReadSource(path)
	if err != nil {
		return fmt.Errorf("%w: manifest %s: %w", ErrSourceNotFound, path, err)
	}
	m, err := ParseManifest(data)
	if err != nil {
		return err
	}
	m.Root = filepath.Join(filepath.Dir(path), m.Root)
	return r.load(m)
}

func (r *registry) LoadManifestBytes(data []byte) error {
	m, err := ParseManifest(data)
	if err != nil {
		return err
	}
	return r.load(m)
}

func (r *registry) load(m Manifest) error {
	paths := m.Paths()
	r.prefetch(paths)
	defer func() { r.prefetched = nil }()

	var errs []error
	for _, p := range paths {
		f, err := r.AddFile(p)
		if err != nil {
			return err
		}
		errs = append(errs, f.Reload())
	}
	for _, key := range m.Keys() {
		prog, ok := r.Program(key)
		if !ok {
			var err error
			if prog, err = r.AddProgram(key); err != nil {
				return err
			}
		}
		for _, name := range m.Programs[key] {
			f, _ := r.FileByPath(filepath.Join(m.Root, name))
			if _, err := prog.AppendDependency(f); err != nil {
				return err
			}
		}
		errs = append(errs, prog.Reload())
	}
	return errors.Join(errs...)
}

// prefetch reads every source concurrently so compilation on the context thread does not wait
// on file I/O. Read failures are left for Reload to report.
func (r *registry) prefetch(paths []string) {
	if len(paths) == 0 {
		return
	}
	r.prefetched = make(map[string][]byte, len(paths))
	pool := worker.NewDynamicWorkerPool(min(r.preloadWorkers, len(paths)), len(paths), 1*time.Second)

	var mu sync.Mutex
	var wg sync.WaitGroup
	for i, p := range paths {
		wg.Add(1)
		pool.SubmitTask(worker.Task{
			ID: i,
			Do: func() (any, error) {
				defer wg.Done()
				data, err := r.reader.ReadSource(p)
				if err != nil {
					return nil, err
				}
				mu.Lock()
				r.prefetched[p] = data
				mu.Unlock()
				return nil, nil
			},
		})
	}
	wg.Wait()
}
