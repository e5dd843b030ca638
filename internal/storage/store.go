// Package storage persists episode traces as CSV, one file per scenario,
// alongside a small JSON metadata record.
package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/san-kum/cruisectl/internal/episode"
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Dir() string { return s.baseDir }

// Init creates the log directory. existed reports whether it was already
// there, in which case earlier logs may be overwritten.
func (s *Store) Init() (existed bool, err error) {
	if info, err := os.Stat(s.baseDir); err == nil {
		if !info.IsDir() {
			return false, fmt.Errorf("log dir %s: not a directory", s.baseDir)
		}
		return true, nil
	}
	if err := os.MkdirAll(s.baseDir, 0755); err != nil {
		return false, fmt.Errorf("create log dir %s: %w", s.baseDir, err)
	}
	return false, nil
}

// EpisodePath is where the trace for the named scenario is written.
func (s *Store) EpisodePath(name string) string {
	return filepath.Join(s.baseDir, "episode-"+name+".csv")
}

func (s *Store) metadataPath(name string) string {
	return filepath.Join(s.baseDir, "episode-"+name+".json")
}

type RunMetadata struct {
	Scenario   string             `json:"scenario"`
	Source     string             `json:"source,omitempty"`
	Timestamp  time.Time          `json:"timestamp"`
	Dt         float64            `json:"dt"`
	Duration   float64            `json:"duration"`
	Ticks      int                `json:"ticks"`
	Integrator string             `json:"integrator"`
	Preset     string             `json:"preset,omitempty"`
	Metrics    map[string]float64 `json:"metrics"`
}

// Save writes the trace CSV and its metadata and returns the CSV path.
func (s *Store) Save(name string, tr *episode.Trace, meta RunMetadata) (string, error) {
	path := s.EpisodePath(name)
	if err := WriteTraceFile(path, tr); err != nil {
		return "", err
	}

	meta.Scenario = name
	meta.Dt = tr.Dt
	meta.Duration = tr.Duration()
	meta.Ticks = len(tr.Commands)
	if meta.Timestamp.IsZero() {
		meta.Timestamp = time.Now()
	}

	metaPath := s.metadataPath(name)
	f, err := os.Create(metaPath)
	if err != nil {
		return "", fmt.Errorf("write %s: %w", metaPath, err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", fmt.Errorf("write %s: %w", metaPath, err)
	}
	return path, nil
}

// List returns the metadata of every saved episode, ordered by scenario.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, "episode-") || filepath.Ext(name) != ".json" {
			continue
		}

		data, err := os.ReadFile(filepath.Join(s.baseDir, name))
		if err != nil {
			continue
		}

		var meta RunMetadata
		if err := json.Unmarshal(data, &meta); err != nil {
			continue
		}
		runs = append(runs, meta)
	}

	sort.Slice(runs, func(i, j int) bool { return runs[i].Scenario < runs[j].Scenario })
	return runs, nil
}

func (s *Store) Load(name string) (*episode.Trace, error) {
	return ReadTraceFile(s.EpisodePath(name))
}
