package walker

import (
	"context"
	"os"
	"reflect"
	"sort"
	"strings"
	"testing"

	"pathwatch/internal/testutil"
)

func TestListFilesEnumeratesTree(t *testing.T) {
	root := t.TempDir()
	testutil.WriteTree(t, root,
		"index.md",
		"content/post.md",
		"content/deep/page.md",
	)

	w, err := New(root)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	got, err := w.ListFiles(context.Background(), ".", nil)
	if err != nil {
		t.Fatalf("ListFiles: %v", err)
	}

	want := []string{"content/deep/page.md", "content/post.md", "index.md"}
	sort.Strings(got)
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("ListFiles = %v, want %v", got, want)
	}
}

func TestListFilesScopedToTarget(t *testing.T) {
	root := t.TempDir()
	testutil.WriteTree(t, root, "a.md", "sub/b.md", "sub/deep/c.md")

	w, err := New(root)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	got, err := w.ListFiles(context.Background(), "sub", nil)
	if err != nil {
		t.Fatalf("ListFiles: %v", err)
	}

	sort.Strings(got)
	want := []string{"sub/b.md", "sub/deep/c.md"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("ListFiles(sub) = %v, want %v", got, want)
	}
}

func TestListFilesPrunesIgnoredDirectories(t *testing.T) {
	root := t.TempDir()
	testutil.WriteTree(t, root,
		"keep.md",
		"node_modules/pkg/index.js",
		"sub/skip.tmp",
		"sub/keep.md",
	)

	w, err := New(root)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ignored := func(p string) bool {
		return strings.HasPrefix(p, "node_modules") || strings.HasSuffix(p, ".tmp")
	}

	got, err := w.ListFiles(context.Background(), ".", ignored)
	if err != nil {
		t.Fatalf("ListFiles: %v", err)
	}

	sort.Strings(got)
	want := []string{"keep.md", "sub/keep.md"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("ListFiles = %v, want %v", got, want)
	}
}

func TestListFilesSingleFileTarget(t *testing.T) {
	root := t.TempDir()
	testutil.WriteTree(t, root, "sub/only.md")

	w, err := New(root)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	got, err := w.ListFiles(context.Background(), "sub/only.md", nil)
	if err != nil {
		t.Fatalf("ListFiles: %v", err)
	}
	if len(got) != 1 || got[0] != "sub/only.md" {
		t.Fatalf("ListFiles = %v, want [sub/only.md]", got)
	}

	// An ignored single-file target yields nothing.
	got, err = w.ListFiles(context.Background(), "sub/only.md", func(string) bool { return true })
	if err != nil {
		t.Fatalf("ListFiles ignored: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("ListFiles ignored = %v, want empty", got)
	}
}

func TestListFilesMissingTarget(t *testing.T) {
	root := t.TempDir()

	w, err := New(root)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	_, err = w.ListFiles(context.Background(), "missing", nil)
	if !os.IsNotExist(err) {
		t.Fatalf("ListFiles(missing) err = %v, want not-exist", err)
	}
}

func TestListFilesCanceledContext(t *testing.T) {
	root := t.TempDir()
	testutil.WriteTree(t, root, "a.md")

	w, err := New(root)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := w.ListFiles(ctx, ".", nil); err != context.Canceled {
		t.Fatalf("ListFiles err = %v, want context.Canceled", err)
	}
}
