package services

import (
	"os"
	"path/filepath"
	"testing"
)

func writeAsset(t *testing.T, dir, name string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte("%PDF-1.4 test"), 0o644); err != nil {
		t.Fatalf("write asset %s: %v", name, err)
	}
}

func TestAssetStore_ListSortedPDFsOnly(t *testing.T) {
	dir := t.TempDir()
	writeAsset(t, dir, "warranty.pdf")
	writeAsset(t, dir, "care-guide.pdf")
	writeAsset(t, dir, "readme.txt")

	store := NewAssetStore(dir)
	names, err := store.List()
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}

	want := []string{"care-guide.pdf", "warranty.pdf"}
	if len(names) != len(want) {
		t.Fatalf("List() = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("List()[%d] = %q, want %q", i, names[i], want[i])
		}
	}
}

func TestAssetStore_ListEmptyDir(t *testing.T) {
	store := NewAssetStore(t.TempDir())
	names, err := store.List()
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	if len(names) != 0 {
		t.Errorf("List() = %v, want empty", names)
	}
}

func TestAssetStore_Resolve(t *testing.T) {
	dir := t.TempDir()
	writeAsset(t, dir, "warranty.pdf")
	store := NewAssetStore(dir)

	data, err := store.Resolve("warranty.pdf")
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	if len(data) == 0 {
		t.Error("Resolve() returned empty data")
	}
}

func TestAssetStore_ResolveRejectsBadNames(t *testing.T) {
	dir := t.TempDir()
	writeAsset(t, dir, "warranty.pdf")
	store := NewAssetStore(dir)

	for _, name := range []string{"../warranty.pdf", "sub/warranty.pdf", "warranty.txt", "", "missing.pdf"} {
		if _, err := store.Resolve(name); err == nil {
			t.Errorf("Resolve(%q) should fail", name)
		}
	}
}
