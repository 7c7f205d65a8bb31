package imaging

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif" // register decoders for image.Decode
	"image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"golang.org/x/image/draw"
)

// MaxUploadSize is the largest accepted problem image (5 MB).
const MaxUploadSize = 5 * 1024 * 1024

// MaxDimension is the maximum width or height for stored images.
const MaxDimension = 1024

// JPEGQuality is the compression quality for JPEG output.
const JPEGQuality = 85

// AllowedMIME lists the accepted input MIME types.
var AllowedMIME = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
}

// ErrTooLarge is returned when the upload exceeds MaxUploadSize.
var ErrTooLarge = fmt.Errorf("image exceeds the %d MB limit", MaxUploadSize/(1024*1024))

// Store persists a problem image and returns a stable reference that
// resolves to a fetchable URL.
type Store interface {
	// Save stores the image under the owner's key (or "anonymous") and a
	// freshly generated random name.
	Save(owner string, r io.Reader, size int64) (string, error)
}

// DiskStore writes processed images beneath a base directory, one
// subdirectory per owner, served under a URL prefix.
type DiskStore struct {
	baseDir   string
	urlPrefix string
}

func NewDiskStore(baseDir, urlPrefix string) *DiskStore {
	return &DiskStore{baseDir: baseDir, urlPrefix: urlPrefix}
}

func (s *DiskStore) Save(owner string, r io.Reader, size int64) (string, error) {
	if size > MaxUploadSize {
		return "", ErrTooLarge
	}
	if owner == "" {
		owner = "anonymous"
	}

	processed, err := Process(io.LimitReader(r, MaxUploadSize+1))
	if err != nil {
		return "", err
	}

	dir := filepath.Join(s.baseDir, owner)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating image directory: %w", err)
	}

	name := uuid.NewString() + ".jpg"
	if err := os.WriteFile(filepath.Join(dir, name), processed.Data, 0o644); err != nil {
		return "", fmt.Errorf("writing image: %w", err)
	}

	return s.urlPrefix + "/" + owner + "/" + name, nil
}

// ProcessResult contains the processed image data.
type ProcessResult struct {
	Data []byte
	MIME string
}

// Process reads image data, validates the format by sniffing bytes,
// downscales if larger than MaxDimension, and re-encodes as JPEG.
func Process(r io.Reader) (*ProcessResult, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading image data: %w", err)
	}
	if len(data) > MaxUploadSize {
		return nil, ErrTooLarge
	}

	// Sniff actual MIME type from bytes (not trusting client headers).
	detected := http.DetectContentType(data)
	if !AllowedMIME[detected] {
		return nil, fmt.Errorf("unsupported image format: %s", detected)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding image: %w", err)
	}

	img = downscale(img, MaxDimension)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: JPEGQuality}); err != nil {
		return nil, fmt.Errorf("encoding JPEG: %w", err)
	}

	return &ProcessResult{
		Data: buf.Bytes(),
		MIME: "image/jpeg",
	}, nil
}

// downscale resizes the image so neither dimension exceeds maxDim,
// preserving aspect ratio. Returns the original if already within bounds.
func downscale(img image.Image, maxDim int) image.Image {
	bounds := img.Bounds()
	w := bounds.Dx()
	h := bounds.Dy()

	if w <= maxDim && h <= maxDim {
		return img
	}

	newW, newH := w, h
	if w > h {
		newW = maxDim
		newH = int(float64(h) * float64(maxDim) / float64(w))
	} else {
		newH = maxDim
		newW = int(float64(w) * float64(maxDim) / float64(h))
	}

	if newW < 1 {
		newW = 1
	}
	if newH < 1 {
		newH = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, newW, newH))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
	return dst
}
