package document

import (
	"context"
	"os"
	"strings"
	"testing"
)

func TestDiskStoreSaveAndRefuseOverwrite(t *testing.T) {
	store, err := NewDiskStore(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	path, err := store.Save(context.Background(), "doc-1.jpg", strings.NewReader("content"))
	if err != nil {
		t.Fatalf("save: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(data) != "content" {
		t.Fatalf("unexpected content %q", string(data))
	}

	if _, err := store.Save(context.Background(), "doc-1.jpg", strings.NewReader("other")); err == nil {
		t.Fatal("expected error when overwriting an existing document")
	}
}

func TestDiskStoreCreatesBaseDir(t *testing.T) {
	base := t.TempDir() + "/nested/documents"
	if _, err := NewDiskStore(base); err != nil {
		t.Fatalf("new store: %v", err)
	}
	info, err := os.Stat(base)
	if err != nil || !info.IsDir() {
		t.Fatalf("expected base dir to exist, err=%v", err)
	}
}
