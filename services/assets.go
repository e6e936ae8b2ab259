package services

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// AssetStore resolves named tip/tail documents from a directory of PDFs.
// The directory is scanned on demand so documents can be dropped in without
// a restart.
type AssetStore struct {
	Dir string
}

// NewAssetStore returns a store over dir.
func NewAssetStore(dir string) *AssetStore {
	return &AssetStore{Dir: dir}
}

// List returns the sorted base names of all PDF documents in the store.
func (s *AssetStore) List() ([]string, error) {
	entries, err := os.ReadDir(s.Dir)
	if err != nil {
		return nil, fmt.Errorf("asset store: %w", err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(e.Name()), ".pdf") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// Resolve reads a named asset. Only plain PDF base names are accepted;
// anything path-like is rejected.
func (s *AssetStore) Resolve(name string) ([]byte, error) {
	if name == "" || name != filepath.Base(name) || !strings.EqualFold(filepath.Ext(name), ".pdf") {
		return nil, fmt.Errorf("asset store: invalid asset name %q", name)
	}
	data, err := os.ReadFile(filepath.Join(s.Dir, name))
	if err != nil {
		return nil, fmt.Errorf("asset store: %w", err)
	}
	return data, nil
}
