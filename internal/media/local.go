package media

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"image"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"focusgram/internal/models"

	"github.com/chai2010/webp"
	xdraw "golang.org/x/image/draw"

	_ "image/gif"
	_ "image/png"

	_ "golang.org/x/image/webp" // register WebP decoder
)

const (
	DefaultMaxUploadSizeMB = 25
	ImageMaxDimension      = 1080
	WebPQuality            = 80
)

// LocalStorage stores media under a directory on disk and serves it under a
// base URL. Images are decoded, scaled down to at most ImageMaxDimension on
// the long edge, and re-encoded as WebP; videos are written untouched.
type LocalStorage struct {
	dir      string
	baseURL  string
	maxBytes int64
}

// NewLocalStorage creates disk-backed media storage rooted at dir.
func NewLocalStorage(dir, baseURL string) *LocalStorage {
	return &LocalStorage{
		dir:      dir,
		baseURL:  strings.TrimRight(baseURL, "/"),
		maxBytes: DefaultMaxUploadSizeMB * 1024 * 1024,
	}
}

// Store implements Storage.
func (s *LocalStorage) Store(_ context.Context, in Upload) (*Stored, error) {
	if in.OwnerID == "" {
		return nil, models.NewUnauthenticatedError()
	}
	if len(in.Content) == 0 {
		return nil, models.NewValidationError("no file uploaded")
	}
	if int64(len(in.Content)) > s.maxBytes {
		return nil, models.NewValidationError(fmt.Sprintf("file too large (max %dMB)", s.maxBytes/(1024*1024)))
	}

	detected := http.DetectContentType(in.Content)
	switch {
	case isAllowedImageMIME(detected):
		return s.storeImage(in)
	case isAllowedVideoMIME(detected):
		return s.storeVideo(in, detected)
	default:
		return nil, models.NewValidationError("unsupported media type")
	}
}

func (s *LocalStorage) storeImage(in Upload) (*Stored, error) {
	decoded, _, err := image.Decode(bytes.NewReader(in.Content))
	if err != nil {
		return nil, models.NewValidationError("invalid image file")
	}

	normalized := resizeToFit(decoded, ImageMaxDimension, ImageMaxDimension)
	encoded, err := encodeWebP(normalized, WebPQuality)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	rel := contentAddressedName(in.OwnerID, encoded) + ".webp"
	if err := writeBytesToFile(filepath.Join(s.dir, rel), encoded); err != nil {
		return nil, models.NewInternalError(err)
	}
	return &Stored{
		URL:   s.baseURL + "/" + rel,
		Kind:  models.MediaKindImage,
		Bytes: int64(len(encoded)),
	}, nil
}

func (s *LocalStorage) storeVideo(in Upload, detected string) (*Stored, error) {
	rel := contentAddressedName(in.OwnerID, in.Content) + videoExtension(detected)
	if err := writeBytesToFile(filepath.Join(s.dir, rel), in.Content); err != nil {
		return nil, models.NewInternalError(err)
	}
	return &Stored{
		URL:   s.baseURL + "/" + rel,
		Kind:  models.MediaKindVideo,
		Bytes: int64(len(in.Content)),
	}, nil
}

func resizeToFit(src image.Image, maxWidth, maxHeight int) image.Image {
	bounds := src.Bounds()
	w := bounds.Dx()
	h := bounds.Dy()
	if w <= 0 || h <= 0 {
		return src
	}
	if w <= maxWidth && h <= maxHeight {
		return src
	}

	scaleW := float64(maxWidth) / float64(w)
	scaleH := float64(maxHeight) / float64(h)
	scale := scaleW
	if scaleH < scale {
		scale = scaleH
	}
	newW := int(float64(w) * scale)
	newH := int(float64(h) * scale)
	if newW < 1 {
		newW = 1
	}
	if newH < 1 {
		newH = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, newW, newH))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, xdraw.Over, nil)
	return dst
}

func encodeWebP(img image.Image, quality int) ([]byte, error) {
	buf := bytes.NewBuffer(nil)
	if err := webp.Encode(buf, img, &webp.Options{Quality: float32(quality)}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// contentAddressedName hashes owner and content so identical re-uploads land
// on the same file instead of piling up copies.
func contentAddressedName(ownerID string, content []byte) string {
	h := sha256.New()
	_, _ = fmt.Fprintf(h, "%s:", ownerID)
	h.Write(content)
	return hex.EncodeToString(h.Sum(nil))
}

func writeBytesToFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

func isAllowedImageMIME(contentType string) bool {
	switch normalizeContentType(contentType) {
	case "image/jpeg", "image/jpg", "image/png", "image/gif", "image/webp":
		return true
	default:
		return false
	}
}

func isAllowedVideoMIME(contentType string) bool {
	switch normalizeContentType(contentType) {
	case "video/mp4", "video/webm", "video/quicktime":
		return true
	default:
		return false
	}
}

func videoExtension(contentType string) string {
	switch normalizeContentType(contentType) {
	case "video/webm":
		return ".webm"
	case "video/quicktime":
		return ".mov"
	default:
		return ".mp4"
	}
}

func normalizeContentType(contentType string) string {
	if contentType == "" {
		return ""
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(contentType))
	}
	return strings.ToLower(strings.TrimSpace(mediaType))
}
