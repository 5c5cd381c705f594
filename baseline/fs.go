package baseline

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/justapithecus/faultline/report"
)

const baselineExt = ".json"

// FSStore keeps baselines as JSON files under a root directory.
// Writes go through a temp file and rename so readers never observe a
// partially written baseline.
type FSStore struct {
	root string
}

// NewFSStore creates a filesystem store rooted at dir.
// The directory is created on first Save.
func NewFSStore(dir string) *FSStore {
	return &FSStore{root: dir}
}

// Verify FSStore implements Store.
var _ Store = (*FSStore)(nil)

// Save persists rates under key as an indented JSON document.
func (s *FSStore) Save(ctx context.Context, key string, rates report.RatesMap) error {
	if err := validateKey(key); err != nil {
		return err
	}
	data, err := json.MarshalIndent(rates, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal baseline: %w", err)
	}
	data = append(data, '\n')

	if err := os.MkdirAll(s.root, 0o755); err != nil {
		return wrapErr("save", s.root, err)
	}

	path := s.path(key)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return wrapErr("save", path, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return wrapErr("save", path, err)
	}
	return nil
}

// Load reads the baseline stored under key.
func (s *FSStore) Load(ctx context.Context, key string) (report.RatesMap, error) {
	if err := validateKey(key); err != nil {
		return nil, err
	}
	path := s.path(key)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, wrapErr("load", path, err)
	}

	var rates report.RatesMap
	if err := json.Unmarshal(data, &rates); err != nil {
		return nil, fmt.Errorf("failed to decode baseline %s: %w", path, err)
	}
	return rates, nil
}

// List returns the stored keys in lexical order.
// A missing root directory lists as empty rather than failing.
func (s *FSStore) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.root)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, wrapErr("list", s.root, err)
	}

	var keys []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, baselineExt) {
			continue
		}
		keys = append(keys, strings.TrimSuffix(name, baselineExt))
	}
	sort.Strings(keys)
	return keys, nil
}

func (s *FSStore) path(key string) string {
	return filepath.Join(s.root, key+baselineExt)
}
