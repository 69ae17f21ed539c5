package storage

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"melhado-backend/internal/inspection"
)

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"photo.jpg", "photo.jpg"},
		{"../../etc/passwd", "passwd"},
		{`C:\Users\me\Kitchen Sink.png`, "Kitchen_Sink.png"},
		{"gas cert (2025).pdf", "gas_cert_2025_.pdf"},
		{"...", "file"},
		{"", "file"},
	}
	for _, tt := range tests {
		if got := SanitizeFilename(tt.in); got != tt.want {
			t.Errorf("SanitizeFilename(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestKey(t *testing.T) {
	got := Key("inspections", "rec 1", "../evil.jpg")
	if got != "inspections/rec_1/evil.jpg" {
		t.Errorf("Key() = %q", got)
	}
}

func TestLocalStoreRoundTrip(t *testing.T) {
	store, err := NewLocalStore(t.TempDir(), "/uploads/")
	if err != nil {
		t.Fatalf("NewLocalStore() error: %v", err)
	}
	ctx := context.Background()

	url, n, err := store.Save(ctx, "documents/p1/gas.pdf", "application/pdf", strings.NewReader("certificate"))
	if err != nil {
		t.Fatalf("Save() error: %v", err)
	}
	if url != "/uploads/documents/p1/gas.pdf" || n != int64(len("certificate")) {
		t.Errorf("Save() = %q, %d", url, n)
	}

	rc, err := store.Open(ctx, "documents/p1/gas.pdf")
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	data, _ := io.ReadAll(rc)
	rc.Close()
	if string(data) != "certificate" {
		t.Errorf("Open() read %q", data)
	}

	if err := store.Delete(ctx, "documents/p1/gas.pdf"); err != nil {
		t.Fatalf("Delete() error: %v", err)
	}
	if _, err := store.Open(ctx, "documents/p1/gas.pdf"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Open() after delete error = %v, want ErrNotFound", err)
	}
	if err := store.Delete(ctx, "documents/p1/gas.pdf"); err != nil {
		t.Errorf("Delete() of missing file error = %v, want nil", err)
	}
}

func TestLocalStoreRejectsTraversal(t *testing.T) {
	store, _ := NewLocalStore(t.TempDir(), "/uploads")
	for _, key := range []string{"../outside.txt", "/abs.txt", "a/../../b", ""} {
		if _, _, err := store.Save(context.Background(), key, "text/plain", strings.NewReader("x")); !errors.Is(err, ErrInvalidName) {
			t.Errorf("Save(%q) error = %v, want ErrInvalidName", key, err)
		}
	}
}

func TestNewMediaFile(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	f := NewMediaFile("item-1", "sink.jpg", "/uploads/x.jpg", "image/jpeg", 2048, now)
	if f.Type != inspection.MediaImage || f.ChecklistItemID != "item-1" || f.FileSize != 2048 || f.ID == "" {
		t.Errorf("NewMediaFile() = %+v", f)
	}
	if MediaTypeOf("video/mp4") != inspection.MediaVideo || MediaTypeOf("application/pdf") != inspection.MediaDocument {
		t.Error("MediaTypeOf() misclassified")
	}
}
