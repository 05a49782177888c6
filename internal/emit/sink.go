package emit

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"sort"
	"sync"

	"brush2mdl/internal/converr"
)

// Sink receives emitted files by relative name.
type Sink interface {
	Create(name string) (io.WriteCloser, error)
}

// DirSink writes files under Dir, creating it as needed.
type DirSink struct {
	Dir string
}

func (s DirSink) Create(name string) (io.WriteCloser, error) {
	full := filepath.Join(s.Dir, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
		return nil, err
	}
	return os.Create(full)
}

// MemSink keeps emitted files in memory. Safe for concurrent use.
type MemSink struct {
	mu    sync.Mutex
	files map[string][]byte
}

func NewMemSink() *MemSink {
	return &MemSink{files: make(map[string][]byte)}
}

func (s *MemSink) Create(name string) (io.WriteCloser, error) {
	return &memFile{sink: s, name: name}, nil
}

// File returns the contents of a closed file.
func (s *MemSink) File(name string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.files[name]
	return data, ok
}

// Names lists stored files in lexical order.
func (s *MemSink) Names() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, 0, len(s.files))
	for n := range s.files {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

type memFile struct {
	bytes.Buffer
	sink *MemSink
	name string
}

func (f *memFile) Close() error {
	f.sink.mu.Lock()
	f.sink.files[f.name] = f.Bytes()
	f.sink.mu.Unlock()
	return nil
}

// writeFile creates name on the sink and runs fn over a buffered writer.
// Any failure is reported as IoFailure carrying the file name.
func writeFile(sink Sink, name string, fn func(w io.Writer) error) (err error) {
	f, err := sink.Create(name)
	if err != nil {
		return converr.New(converr.IoFailure, fmt.Errorf("create: %w", err)).WithPath(name)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = converr.New(converr.IoFailure, fmt.Errorf("close: %w", cerr)).WithPath(name)
		}
	}()

	bw := bufio.NewWriter(f)
	if err := fn(bw); err != nil {
		return converr.Wrap(converr.IoFailure, err).WithPath(name)
	}
	if err := bw.Flush(); err != nil {
		return converr.New(converr.IoFailure, fmt.Errorf("flush: %w", err)).WithPath(name)
	}
	return nil
}

// Prefix returns a Sink that places every file under dir on s.
func Prefix(s Sink, dir string) Sink {
	return prefixSink{s: s, dir: dir}
}

type prefixSink struct {
	s   Sink
	dir string
}

func (p prefixSink) Create(name string) (io.WriteCloser, error) {
	return p.s.Create(path.Join(p.dir, name))
}
