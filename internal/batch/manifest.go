package batch

import (
	"encoding/json"
	"os"
	"path"
)

// ManifestEntry represents one unit in the output manifest.
type ManifestEntry struct {
	Entity    int      `json:"entity"`
	Output    string   `json:"output"`
	Success   bool     `json:"success"`
	Kind      string   `json:"kind,omitempty"`
	Error     string   `json:"error,omitempty"`
	Triangles int      `json:"triangles,omitempty"`
	Models    int      `json:"models,omitempty"`
	Package   []string `json:"package,omitempty"`
}

// Manifest summarizes results in unit order.
func Manifest(results []Result) []ManifestEntry {
	entries := make([]ManifestEntry, len(results))
	for i, r := range results {
		e := ManifestEntry{Entity: r.Entity, Output: r.Output, Success: r.Success}
		if r.Success {
			e.Triangles = r.Triangles
			e.Models = r.Models
			for _, f := range r.Package.Files {
				e.Package = append(e.Package, path.Join(r.Dir, f))
			}
		} else if r.Err != nil {
			e.Kind = r.Kind().String()
			e.Error = r.Err.Error()
		}
		entries[i] = e
	}
	return entries
}

// WriteManifest writes the JSON manifest to path.
func WriteManifest(path string, results []Result) error {
	data, err := json.MarshalIndent(Manifest(results), "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Failed reports whether any unit failed; the run's exit status follows it.
func Failed(results []Result) bool {
	for _, r := range results {
		if !r.Success {
			return true
		}
	}
	return false
}
