package archive

import (
	"context"
	"errors"
	"testing"

	"github.com/newthinker/macross/internal/config"
	"github.com/newthinker/macross/internal/core"
)

func TestLocalFS_ImplementsStorage(t *testing.T) {
	var _ Storage = (*LocalFS)(nil)
	var _ Storage = (*S3Storage)(nil)
}

func TestNew(t *testing.T) {
	store, err := New(config.OutputConfig{Type: "localfs", Path: t.TempDir()})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, ok := store.(*LocalFS); !ok {
		t.Errorf("expected *LocalFS, got %T", store)
	}

	store, err = New(config.OutputConfig{Type: "s3", S3: config.S3Config{Bucket: "results"}})
	if err != nil {
		t.Fatalf("New s3: %v", err)
	}
	if _, ok := store.(*S3Storage); !ok {
		t.Errorf("expected *S3Storage, got %T", store)
	}

	_, err = New(config.OutputConfig{Type: "ftp"})
	if !errors.Is(err, core.ErrConfigInvalid) {
		t.Errorf("expected ErrConfigInvalid for unknown type, got %v", err)
	}
}

func TestLocalFS_WriteRead(t *testing.T) {
	fs, err := NewLocalFS(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocalFS: %v", err)
	}

	ctx := context.Background()
	data := []byte("symbol,shares\nAAPL,99\n")

	if err := fs.Write(ctx, "AAPL/run1/trades.csv", data); err != nil {
		t.Fatalf("Write: %v", err)
	}

	got, err := fs.Read(ctx, "AAPL/run1/trades.csv")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(got) != string(data) {
		t.Errorf("got %q, want %q", got, data)
	}
}

func TestLocalFS_Read_Missing(t *testing.T) {
	fs, _ := NewLocalFS(t.TempDir())

	_, err := fs.Read(context.Background(), "AAPL/missing/summary.txt")
	if !errors.Is(err, core.ErrStorageFailed) {
		t.Errorf("expected ErrStorageFailed, got %v", err)
	}
}

func TestLocalFS_Exists(t *testing.T) {
	fs, _ := NewLocalFS(t.TempDir())
	ctx := context.Background()

	exists, err := fs.Exists(ctx, "nonexistent.txt")
	if err != nil {
		t.Fatalf("Exists: %v", err)
	}
	if exists {
		t.Error("expected false for nonexistent file")
	}

	fs.Write(ctx, "exists.txt", []byte("data"))
	exists, _ = fs.Exists(ctx, "exists.txt")
	if !exists {
		t.Error("expected true for existing file")
	}
}

func TestLocalFS_List(t *testing.T) {
	fs, _ := NewLocalFS(t.TempDir())
	ctx := context.Background()

	fs.Write(ctx, "AAPL/run2/summary.txt", []byte("b"))
	fs.Write(ctx, "AAPL/run1/summary.txt", []byte("a"))
	fs.Write(ctx, "SPY/run1/summary.txt", []byte("c"))

	paths, err := fs.List(ctx, "AAPL")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(paths) != 2 {
		t.Fatalf("expected 2 paths, got %d", len(paths))
	}
	if paths[0] != "AAPL/run1/summary.txt" {
		t.Errorf("expected sorted paths, got %v", paths)
	}

	paths, err = fs.List(ctx, "MSFT")
	if err != nil {
		t.Fatalf("List missing prefix: %v", err)
	}
	if len(paths) != 0 {
		t.Errorf("expected no paths for missing prefix, got %v", paths)
	}
}

func TestLocalFS_Delete(t *testing.T) {
	fs, _ := NewLocalFS(t.TempDir())
	ctx := context.Background()

	fs.Write(ctx, "delete.txt", []byte("data"))
	if err := fs.Delete(ctx, "delete.txt"); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	exists, _ := fs.Exists(ctx, "delete.txt")
	if exists {
		t.Error("file should be deleted")
	}
}
