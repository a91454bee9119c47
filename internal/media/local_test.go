package media

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"focusgram/internal/models"
)

func TestStoreImageNormalizesToWebP(t *testing.T) {
	dir := t.TempDir()
	s := NewLocalStorage(dir, "/media/")

	stored, err := s.Store(context.Background(), Upload{
		OwnerID:     "u1",
		Filename:    "photo.png",
		ContentType: "image/png",
		Content:     tinyPNG(t, 2400, 1600),
	})
	if err != nil {
		t.Fatalf("store failed: %v", err)
	}
	if stored.Kind != models.MediaKindImage {
		t.Fatalf("expected image kind, got %q", stored.Kind)
	}
	if !strings.HasSuffix(stored.URL, ".webp") {
		t.Fatalf("expected webp URL, got %q", stored.URL)
	}

	rel := strings.TrimPrefix(stored.URL, "/media/")
	data, err := os.ReadFile(filepath.Join(dir, rel))
	if err != nil {
		t.Fatalf("expected file on disk: %v", err)
	}

	decoded, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("stored file does not decode: %v", err)
	}
	b := decoded.Bounds()
	if b.Dx() > ImageMaxDimension || b.Dy() > ImageMaxDimension {
		t.Fatalf("expected dimensions <= %d, got %dx%d", ImageMaxDimension, b.Dx(), b.Dy())
	}
}

func TestStoreImageDeduplicates(t *testing.T) {
	dir := t.TempDir()
	s := NewLocalStorage(dir, "/media")
	content := tinyPNG(t, 100, 100)

	first, err := s.Store(context.Background(), Upload{OwnerID: "u1", Content: content})
	if err != nil {
		t.Fatalf("store failed: %v", err)
	}
	second, err := s.Store(context.Background(), Upload{OwnerID: "u1", Content: content})
	if err != nil {
		t.Fatalf("second store failed: %v", err)
	}
	if first.URL != second.URL {
		t.Fatalf("expected identical content to share a URL, got %q and %q", first.URL, second.URL)
	}

	// a different owner gets a different address
	other, err := s.Store(context.Background(), Upload{OwnerID: "u2", Content: content})
	if err != nil {
		t.Fatalf("other owner store failed: %v", err)
	}
	if other.URL == first.URL {
		t.Fatal("expected per-owner addressing")
	}
}

func TestStoreVideoVerbatim(t *testing.T) {
	dir := t.TempDir()
	s := NewLocalStorage(dir, "/media")

	content := append([]byte{0, 0, 0, 0x18}, []byte("ftypmp42")...)
	content = append(content, bytes.Repeat([]byte{0}, 64)...)

	stored, err := s.Store(context.Background(), Upload{OwnerID: "u1", Content: content})
	if err != nil {
		t.Fatalf("store failed: %v", err)
	}
	if stored.Kind != models.MediaKindVideo {
		t.Fatalf("expected video kind, got %q", stored.Kind)
	}
	if !strings.HasSuffix(stored.URL, ".mp4") {
		t.Fatalf("expected mp4 URL, got %q", stored.URL)
	}

	rel := strings.TrimPrefix(stored.URL, "/media/")
	data, err := os.ReadFile(filepath.Join(dir, rel))
	if err != nil {
		t.Fatalf("expected file on disk: %v", err)
	}
	if !bytes.Equal(data, content) {
		t.Fatal("expected video bytes stored untouched")
	}
}

func TestStoreValidation(t *testing.T) {
	s := NewLocalStorage(t.TempDir(), "/media")
	ctx := context.Background()

	if _, err := s.Store(ctx, Upload{Content: tinyPNG(t, 10, 10)}); !models.HasCode(err, models.CodeUnauthenticated) {
		t.Fatalf("expected unauthenticated error, got %v", err)
	}
	if _, err := s.Store(ctx, Upload{OwnerID: "u1"}); !models.HasCode(err, models.CodeValidation) {
		t.Fatalf("expected validation error for empty upload, got %v", err)
	}
	if _, err := s.Store(ctx, Upload{OwnerID: "u1", Content: []byte("plain text, not media")}); !models.HasCode(err, models.CodeValidation) {
		t.Fatalf("expected validation error for unsupported type, got %v", err)
	}
}

func tinyPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			// #nosec G115: modulo keeps values in uint8 range
			img.SetRGBA(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 128, A: 255})
		}
	}
	buf := bytes.NewBuffer(nil)
	if err := png.Encode(buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}
