package artifact

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/agenthands/nobelium/internal/core/model"
)

// Stage artifact file names under the data directory.
const (
	RawReferencesFile = "laureates_raw.json"
	ReferencesFile    = "reference.json"
	TreeFile          = "nobeltree.json"
	ResolutionsFile   = "resolutions.json"
	AnnotatedTreeFile = "nobeltree_ids.json"
)

// Store reads and writes stage artifacts. Writes go through a temp file and
// a rename, so a partially written artifact never masquerades as a valid one.
type Store struct {
	Dir string
}

func NewStore(dir string) *Store {
	return &Store{Dir: dir}
}

func (s *Store) Path(name string) string {
	return filepath.Join(s.Dir, name)
}

func (s *Store) SaveRawReferences(rows []model.RawReference) error {
	return s.save(RawReferencesFile, rows)
}

func (s *Store) LoadRawReferences() ([]model.RawReference, error) {
	var rows []model.RawReference
	if err := s.load(RawReferencesFile, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *Store) SaveReferences(records []model.ReferenceRecord) error {
	return s.save(ReferencesFile, records)
}

func (s *Store) LoadReferences() ([]model.ReferenceRecord, error) {
	var records []model.ReferenceRecord
	if err := s.load(ReferencesFile, &records); err != nil {
		return nil, err
	}
	return records, nil
}

func (s *Store) LoadTree() ([]model.TreeEntry, error) {
	var tree []model.TreeEntry
	if err := s.load(TreeFile, &tree); err != nil {
		return nil, err
	}
	return tree, nil
}

func (s *Store) SaveResolutions(results []model.ResolutionResult) error {
	return s.save(ResolutionsFile, results)
}

func (s *Store) LoadResolutions() ([]model.ResolutionResult, error) {
	var results []model.ResolutionResult
	if err := s.load(ResolutionsFile, &results); err != nil {
		return nil, err
	}
	return results, nil
}

func (s *Store) SaveAnnotatedTree(tree []model.TreeEntry) error {
	return s.save(AnnotatedTreeFile, tree)
}

func (s *Store) LoadAnnotatedTree() ([]model.TreeEntry, error) {
	var tree []model.TreeEntry
	if err := s.load(AnnotatedTreeFile, &tree); err != nil {
		return nil, err
	}
	return tree, nil
}

func (s *Store) save(name string, v any) error {
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return fmt.Errorf("failed to create data dir: %w", err)
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", name, err)
	}

	tmp, err := os.CreateTemp(s.Dir, name+".tmp-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	if err := os.Rename(tmp.Name(), s.Path(name)); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to replace %s: %w", name, err)
	}
	return nil
}

func (s *Store) load(name string, v any) error {
	data, err := os.ReadFile(s.Path(name))
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", name, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to parse %s: %w", name, err)
	}
	return nil
}
