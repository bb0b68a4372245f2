package services

import (
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// targetWidths returns the widths to produce for a source of srcWidth pixels:
// the configured widths that do not upscale, or the source width alone when
// every configured width is larger.
func targetWidths(srcWidth int, widths []int) []int {
	seen := make(map[int]bool, len(widths))
	var out []int
	for _, w := range widths {
		if w <= srcWidth && !seen[w] {
			seen[w] = true
			out = append(out, w)
		}
	}
	if len(out) == 0 && srcWidth > 0 {
		out = append(out, srcWidth)
	}
	sort.Ints(out)
	return out
}

var errImageTooLarge = errors.New("image exceeds the pixel limit")

// decodeImageFile decodes the image at path, refusing sources above maxPixels
// before any pixel memory is allocated.
func decodeImageFile(path string, maxPixels int) (image.Image, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, "", err
	}
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return nil, "", fmt.Errorf("decode image header: %w", err)
	}
	if pixels := int64(cfg.Width) * int64(cfg.Height); pixels > int64(maxPixels) {
		return nil, "", fmt.Errorf("%w: %dx%d", errImageTooLarge, cfg.Width, cfg.Height)
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, "", err
	}

	img, format, err := image.Decode(f)
	if err != nil {
		return nil, "", fmt.Errorf("decode image: %w", err)
	}
	return img, format, nil
}

// resizeToWidth scales img to width, keeping the aspect ratio.
func resizeToWidth(img image.Image, width int) image.Image {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w == width {
		return img
	}
	newH := h * width / w
	if newH < 1 {
		newH = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, width, newH))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
	return dst
}

// outputFormat picks the encoding for a decoded format: png and transparent
// sources become png, the rest become jpeg.
func outputFormat(format, originalName string, transparent bool) (ext, contentType string) {
	if format == "png" || transparent {
		return ".png", "image/png"
	}
	switch strings.ToLower(filepath.Ext(originalName)) {
	case ".jpeg":
		return ".jpeg", "image/jpeg"
	default:
		return ".jpg", "image/jpeg"
	}
}

// hasTransparency reports whether img has any pixel that is not fully opaque.
func hasTransparency(img image.Image) bool {
	if o, ok := img.(interface{ Opaque() bool }); ok {
		return !o.Opaque()
	}
	return true
}

func encodeImage(w io.Writer, img image.Image, contentType string, quality int) error {
	if contentType == "image/png" {
		return png.Encode(w, img)
	}
	return jpeg.Encode(w, img, &jpeg.Options{Quality: quality})
}

// variantName builds the object name of a resized copy: {dir}/{base}_thumb@{width}w{ext}.
func variantName(dir, fileName string, width int, ext string) string {
	base := strings.TrimSuffix(fileName, filepath.Ext(fileName))
	return fmt.Sprintf("%s/%s_thumb@%dw%s", dir, base, width, ext)
}
