package storage

import (
	"context"
	"strings"
	"testing"
	"time"
)

func TestObjectKeyLayout(t *testing.T) {
	now := time.Date(2026, time.March, 4, 10, 0, 0, 0, time.UTC)

	key := objectKey("/teachers/photos/", "webp", now)
	if !strings.HasPrefix(key, "teachers/photos/2026/03/") {
		t.Fatalf("unexpected key prefix: %s", key)
	}
	if !strings.HasSuffix(key, ".webp") {
		t.Fatalf("expected webp suffix: %s", key)
	}
	if other := objectKey("teachers/photos", "webp", now); other == key {
		t.Fatalf("expected unique keys, got %s twice", key)
	}
	if def := objectKey("", "", now); !strings.HasPrefix(def, "uploads/") {
		t.Fatalf("expected default folder, got %s", def)
	}
}

func TestGetContentType(t *testing.T) {
	tests := map[string]string{
		"webp": "image/webp",
		"JPG":  "image/jpeg",
		"png":  "image/png",
		"bin":  "application/octet-stream",
	}
	for ext, want := range tests {
		if got := getContentType(ext); got != want {
			t.Fatalf("getContentType(%q) = %q, want %q", ext, got, want)
		}
	}
}

func TestMemoryStoreRoundTrip(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	obj, err := store.Upload(ctx, []byte("img"), "gallery", "photo.png")
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if !store.Has(obj.Key) || !strings.HasSuffix(obj.Key, ".png") {
		t.Fatalf("expected stored png object, got %+v", obj)
	}
	if err := store.Delete(ctx, obj.Key); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if store.Len() != 0 {
		t.Fatalf("expected empty store after delete")
	}
}
