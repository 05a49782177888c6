package texture

import (
	"os"
	"path/filepath"
	"strings"
)

// extPriority ranks formats for the same stem; lossless with alpha wins.
var extPriority = map[string]int{
	".png":  4,
	".tga":  3,
	".bmp":  2,
	".jpg":  1,
	".jpeg": 1,
}

// Index maps lowercase texture stems to filesystem paths.
type Index struct {
	entries map[string]string // stem.lower() → full path
}

// NewIndex returns an empty index.
func NewIndex() *Index {
	return &Index{entries: make(map[string]string)}
}

// BuildIndex scans dirs recursively for source images. Earlier dirs win
// over later ones; within one dir the higher priority format wins.
func BuildIndex(dirs ...string) *Index {
	idx := NewIndex()
	for _, dir := range dirs {
		found := make(map[string]string)
		filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
			if err != nil || d.IsDir() {
				return nil
			}
			ext := strings.ToLower(filepath.Ext(path))
			if extPriority[ext] == 0 {
				return nil
			}
			stem := strings.ToLower(strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)))
			existing, exists := found[stem]
			if !exists || extPriority[ext] > extPriority[strings.ToLower(filepath.Ext(existing))] {
				found[stem] = path
			}
			return nil
		})
		for stem, path := range found {
			if _, taken := idx.entries[stem]; !taken {
				idx.entries[stem] = path
			}
		}
	}
	return idx
}

// Add registers a path under the stem of name.
func (idx *Index) Add(name, path string) {
	idx.entries[stemOf(name)] = path
}

func stemOf(texName string) string {
	texName = strings.ReplaceAll(texName, "\\", "/")
	base := filepath.Base(texName)
	if ext := filepath.Ext(base); extPriority[strings.ToLower(ext)] > 0 {
		base = strings.TrimSuffix(base, ext)
	}
	return strings.ToLower(base)
}

// ResolvePath returns the filesystem path for a texture name, or ("", false).
func (idx *Index) ResolvePath(texName string) (string, bool) {
	path, ok := idx.entries[stemOf(texName)]
	return path, ok
}

// Len returns the number of indexed textures.
func (idx *Index) Len() int {
	return len(idx.entries)
}
