package local

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/photovault/photovault/internal/config"
	"github.com/photovault/photovault/internal/storage"
)

// newTestStorage creates a LocalStorage backed by a temporary directory.
// The temp dir is cleaned up when the test ends.
func newTestStorage(t *testing.T) *LocalStorage {
	t.Helper()
	dir, err := os.MkdirTemp("", "local-storage-test-*")
	if err != nil {
		t.Fatal("MkdirTemp:", err)
	}
	t.Cleanup(func() { os.RemoveAll(dir) })

	cfg := &config.LocalStorageConfig{Root: dir}
	s, err := New(cfg, "photos")
	if err != nil {
		t.Fatal("New:", err)
	}
	if err := s.CreateContainer(context.Background()); err != nil {
		t.Fatal("CreateContainer:", err)
	}
	return s
}

// ---------------------------------------------------------------------------
// New / CreateContainer
// ---------------------------------------------------------------------------

func TestNew_RequiresRootAndContainer(t *testing.T) {
	if _, err := New(&config.LocalStorageConfig{}, "photos"); err == nil {
		t.Error("New() with empty root expected error, got nil")
	}
	if _, err := New(&config.LocalStorageConfig{Root: "uploads"}, ""); err == nil {
		t.Error("New() with empty container expected error, got nil")
	}
}

func TestCreateContainer_CreatesDirectory(t *testing.T) {
	dir, err := os.MkdirTemp("", "create-container-test-*")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)

	s, err := New(&config.LocalStorageConfig{Root: filepath.Join(dir, "a", "b")}, "photos")
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	if err := s.CreateContainer(context.Background()); err != nil {
		t.Fatalf("CreateContainer() error: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "a", "b", "photos")); os.IsNotExist(err) {
		t.Error("CreateContainer() did not create container directory")
	}
}

func TestCreateContainer_Idempotent(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	// Second call on an existing directory must still succeed.
	if err := s.CreateContainer(ctx); err != nil {
		t.Errorf("CreateContainer() second call error: %v (want nil)", err)
	}
}

// ---------------------------------------------------------------------------
// Upload
// ---------------------------------------------------------------------------

func TestUpload(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	content := "hello, world"
	url, err := s.Upload(ctx, "hello.png", strings.NewReader(content))
	if err != nil {
		t.Fatalf("Upload() error: %v", err)
	}

	if url != s.GetURL("hello.png") {
		t.Errorf("Upload() url = %q, want %q", url, s.GetURL("hello.png"))
	}

	data, err := os.ReadFile(filepath.Join(s.root, "photos", "hello.png"))
	if err != nil {
		t.Fatal("ReadFile:", err)
	}
	if string(data) != content {
		t.Errorf("stored content = %q, want %q", string(data), content)
	}
}

func TestUpload_OverwritesInPlace(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	if _, err := s.Upload(ctx, "a.png", strings.NewReader("first")); err != nil {
		t.Fatal("Upload:", err)
	}
	if _, err := s.Upload(ctx, "a.png", strings.NewReader("second")); err != nil {
		t.Fatal("Upload:", err)
	}

	rc, err := s.Download(ctx, "a.png")
	if err != nil {
		t.Fatal("Download:", err)
	}
	defer rc.Close()
	data, _ := io.ReadAll(rc)
	if string(data) != "second" {
		t.Errorf("content after overwrite = %q, want %q", string(data), "second")
	}

	objects, err := s.List(ctx)
	if err != nil {
		t.Fatal("List:", err)
	}
	if len(objects) != 1 {
		t.Errorf("List() after overwrite returned %d objects, want 1", len(objects))
	}
}

// failingReader errors partway through to exercise partial-write cleanup.
type failingReader struct{ n int }

func (r *failingReader) Read(p []byte) (int, error) {
	if r.n > 0 {
		r.n--
		p[0] = 0xAB
		return 1, nil
	}
	return 0, errors.New("read failed")
}

func TestUpload_CleansUpPartialFile(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	_, err := s.Upload(ctx, "partial.png", &failingReader{n: 3})
	if !errors.Is(err, storage.ErrWriteFailed) {
		t.Fatalf("Upload() error = %v, want ErrWriteFailed", err)
	}

	if _, err := os.Stat(filepath.Join(s.root, "photos", "partial.png")); !os.IsNotExist(err) {
		t.Error("Upload() left partial file behind after write failure")
	}
}

// ---------------------------------------------------------------------------
// Download
// ---------------------------------------------------------------------------

func TestDownload(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	want := []byte{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF}
	if _, err := s.Upload(ctx, "a.png", bytes.NewReader(want)); err != nil {
		t.Fatal("Upload:", err)
	}

	rc, err := s.Download(ctx, "a.png")
	if err != nil {
		t.Fatalf("Download() error: %v", err)
	}
	defer rc.Close()

	data, _ := io.ReadAll(rc)
	if !bytes.Equal(data, want) {
		t.Errorf("Download() content = %v, want %v", data, want)
	}
}

func TestDownload_NotFound(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	_, err := s.Download(ctx, "nonexistent.png")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Download() error = %v, want ErrNotFound", err)
	}
}

// ---------------------------------------------------------------------------
// Delete
// ---------------------------------------------------------------------------

func TestDelete(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	if _, err := s.Upload(ctx, "to-delete.png", strings.NewReader("bye")); err != nil {
		t.Fatal("Upload:", err)
	}

	deleted, err := s.Delete(ctx, "to-delete.png")
	if err != nil {
		t.Fatalf("Delete() error: %v", err)
	}
	if !deleted {
		t.Error("Delete() = false, want true for existing file")
	}

	exists, _ := s.Exists(ctx, "to-delete.png")
	if exists {
		t.Error("Delete() file still exists after deletion")
	}
}

func TestDelete_NonExistentFile(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	// Deleting a file that doesn't exist reports false, not an error.
	deleted, err := s.Delete(ctx, "does-not-exist.png")
	if err != nil {
		t.Errorf("Delete() error for non-existent file: %v (want nil)", err)
	}
	if deleted {
		t.Error("Delete() = true for non-existent file, want false")
	}
}

// ---------------------------------------------------------------------------
// List
// ---------------------------------------------------------------------------

func TestList_EmptyWhenContainerMissing(t *testing.T) {
	dir, err := os.MkdirTemp("", "list-missing-test-*")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)

	s, err := New(&config.LocalStorageConfig{Root: dir}, "photos")
	if err != nil {
		t.Fatal("New:", err)
	}

	// Container directory was never created.
	objects, err := s.List(context.Background())
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	if len(objects) != 0 {
		t.Errorf("List() = %d objects for missing container, want 0", len(objects))
	}
}

func TestList_NewestFirst(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	names := []string{"old.png", "mid.jpg", "new.gif"}
	for _, name := range names {
		if _, err := s.Upload(ctx, name, strings.NewReader("x")); err != nil {
			t.Fatal("Upload:", err)
		}
	}

	// Force distinct, ordered modtimes regardless of filesystem resolution.
	base := time.Now().Add(-time.Hour)
	for i, name := range names {
		ts := base.Add(time.Duration(i) * time.Minute)
		if err := os.Chtimes(filepath.Join(s.root, "photos", name), ts, ts); err != nil {
			t.Fatal("Chtimes:", err)
		}
	}

	objects, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	if len(objects) != 3 {
		t.Fatalf("List() = %d objects, want 3", len(objects))
	}

	want := []string{"new.gif", "mid.jpg", "old.png"}
	for i, name := range want {
		if objects[i].Name != name {
			t.Errorf("List()[%d].Name = %q, want %q", i, objects[i].Name, name)
		}
	}
}

func TestList_SkipsSubdirectories(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	if _, err := s.Upload(ctx, "keep.png", strings.NewReader("x")); err != nil {
		t.Fatal("Upload:", err)
	}
	if err := os.Mkdir(filepath.Join(s.root, "photos", "subdir"), 0750); err != nil {
		t.Fatal("Mkdir:", err)
	}

	objects, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	if len(objects) != 1 || objects[0].Name != "keep.png" {
		t.Errorf("List() = %+v, want only keep.png", objects)
	}
}

func TestList_PopulatesObjectFields(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	content := []byte{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF}
	if _, err := s.Upload(ctx, "a.png", bytes.NewReader(content)); err != nil {
		t.Fatal("Upload:", err)
	}

	objects, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	if len(objects) != 1 {
		t.Fatalf("List() = %d objects, want 1", len(objects))
	}

	obj := objects[0]
	if obj.Name != "a.png" {
		t.Errorf("Name = %q, want a.png", obj.Name)
	}
	if obj.Size != 10 {
		t.Errorf("Size = %d, want 10", obj.Size)
	}
	if obj.ContentType != "image/png" {
		t.Errorf("ContentType = %q, want image/png", obj.ContentType)
	}
	if obj.CreatedAt.IsZero() {
		t.Error("CreatedAt should not be zero")
	}
	if obj.URL != s.GetURL("a.png") {
		t.Errorf("URL = %q, want %q", obj.URL, s.GetURL("a.png"))
	}
}

// ---------------------------------------------------------------------------
// Exists
// ---------------------------------------------------------------------------

func TestExists(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	ok, err := s.Exists(ctx, "no-such.png")
	if err != nil {
		t.Fatalf("Exists() error: %v", err)
	}
	if ok {
		t.Error("Exists() = true for non-existent file, want false")
	}

	if _, err := s.Upload(ctx, "yes.png", strings.NewReader("data")); err != nil {
		t.Fatal("Upload:", err)
	}

	ok, err = s.Exists(ctx, "yes.png")
	if err != nil {
		t.Fatalf("Exists() error after upload: %v", err)
	}
	if !ok {
		t.Error("Exists() = false for existing file, want true")
	}
}

// ---------------------------------------------------------------------------
// GetURL
// ---------------------------------------------------------------------------

func TestGetURL(t *testing.T) {
	tests := []struct {
		name string
		root string
		want string
	}{
		{"relative root", "uploads", "/uploads/photos/a.png"},
		{"absolute root keeps single leading slash", "/var/uploads", "/var/uploads/photos/a.png"},
		{"trailing slash on root", "uploads/", "/uploads/photos/a.png"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := New(&config.LocalStorageConfig{Root: tt.root}, "photos")
			if err != nil {
				t.Fatal("New:", err)
			}
			if got := s.GetURL("a.png"); got != tt.want {
				t.Errorf("GetURL() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestGetURL_NoExistenceCheck(t *testing.T) {
	s := newTestStorage(t)

	// GetURL is pure string construction; a missing file still gets a URL.
	if got := s.GetURL("missing.png"); !strings.HasSuffix(got, "/photos/missing.png") {
		t.Errorf("GetURL() = %q, want suffix /photos/missing.png", got)
	}
}
