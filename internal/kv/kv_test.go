package kv

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFileStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.json")

	s := NewFileStore(path)
	if _, ok := s.Get(KeyDeviceID); ok {
		t.Fatal("fresh store should be empty")
	}
	if err := s.Set(KeyDeviceID, "device-1"); err != nil {
		t.Fatalf("Set() = %v", err)
	}
	if err := s.Set(KeyLastCloseDone, "false"); err != nil {
		t.Fatalf("Set() = %v", err)
	}

	// A second store over the same file sees everything.
	reloaded := NewFileStore(path)
	if v, ok := reloaded.Get(KeyDeviceID); !ok || v != "device-1" {
		t.Fatalf("Get(%s) = %q, %v", KeyDeviceID, v, ok)
	}
	if v, ok := reloaded.Get(KeyLastCloseDone); !ok || v != "false" {
		t.Fatalf("Get(%s) = %q, %v", KeyLastCloseDone, v, ok)
	}
}

func TestFileStoreDelete(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.json")
	s := NewFileStore(path)

	if err := s.Delete("missing"); err != nil {
		t.Fatalf("Delete() of missing key = %v", err)
	}

	s.Set("k", "v")
	if err := s.Delete("k"); err != nil {
		t.Fatalf("Delete() = %v", err)
	}
	if _, ok := NewFileStore(path).Get("k"); ok {
		t.Fatal("deleted key survived a reload")
	}
}

func TestFileStoreDamagedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.json")
	if err := os.WriteFile(path, []byte("{broken"), 0o600); err != nil {
		t.Fatal(err)
	}

	s := NewFileStore(path)
	if _, ok := s.Get(KeyDeviceID); ok {
		t.Fatal("damaged file should load as empty")
	}
	if err := s.Set("k", "v"); err != nil {
		t.Fatalf("Set() after damaged load = %v", err)
	}
	if v, ok := NewFileStore(path).Get("k"); !ok || v != "v" {
		t.Fatalf("Get() after rewrite = %q, %v", v, ok)
	}
}

func TestMemoryStore(t *testing.T) {
	s := NewMemoryStore()
	if _, ok := s.Get("k"); ok {
		t.Fatal("fresh store should be empty")
	}
	s.Set("k", "v")
	if v, ok := s.Get("k"); !ok || v != "v" {
		t.Fatalf("Get() = %q, %v", v, ok)
	}
	s.Delete("k")
	if _, ok := s.Get("k"); ok {
		t.Fatal("deleted key should be gone")
	}
}
