// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package resize scales raster images down to a maximum width in place.
package resize

import (
	"bytes"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"os"

	"github.com/nfnt/resize"
	"github.com/rs/zerolog/log"
	"github.com/wailsapp/mimetype"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

const jpegQuality = 90

// codec decodes and re-encodes one image format.
type codec struct {
	decode func(io.Reader) (image.Image, error)
	encode func(io.Writer, image.Image) error
}

var codecs = map[string]codec{
	"image/png": {
		decode: png.Decode,
		encode: png.Encode,
	},
	"image/jpeg": {
		decode: jpeg.Decode,
		encode: func(w io.Writer, m image.Image) error {
			return jpeg.Encode(w, m, &jpeg.Options{Quality: jpegQuality})
		},
	},
	"image/gif": {
		decode: gif.Decode,
		encode: func(w io.Writer, m image.Image) error {
			return gif.Encode(w, m, nil)
		},
	},
	"image/bmp": {
		decode: bmp.Decode,
		encode: bmp.Encode,
	},
	"image/tiff": {
		decode: tiff.Decode,
		encode: func(w io.Writer, m image.Image) error {
			return tiff.Encode(w, m, nil)
		},
	},
}

// Resizer downsizes images with Lanczos resampling. The zero value is ready
// to use.
type Resizer struct{}

// Resize scales the image at path so its width is at most maxWidth,
// keeping the aspect ratio, and overwrites the file in the same format.
// Images already within the limit are not touched. Formats that cannot be
// re-encoded (svg, webp) are skipped. It reports whether the file changed.
func (Resizer) Resize(path string, maxWidth int) (bool, error) {
	if maxWidth <= 0 {
		return false, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return false, fmt.Errorf("reading image: %w", err)
	}

	mType := mimetype.Detect(data).String()
	c, ok := codecs[mType]
	if !ok {
		log.Debug().Str("path", path).Str("type", mType).Msg("skipping resize of unsupported image type")
		return false, nil
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err == nil && cfg.Width <= maxWidth {
		return false, nil
	}

	img, err := c.decode(bytes.NewReader(data))
	if err != nil {
		return false, fmt.Errorf("decoding %s: %w", mType, err)
	}

	w, h := img.Bounds().Dx(), img.Bounds().Dy()
	if w <= maxWidth {
		return false, nil
	}
	newW, newH := Scale(w, h, maxWidth)
	resized := resize.Resize(uint(newW), uint(newH), img, resize.Lanczos3)

	var buf bytes.Buffer
	if err := c.encode(&buf, resized); err != nil {
		return false, fmt.Errorf("encoding %s: %w", mType, err)
	}

	info, err := os.Stat(path)
	if err != nil {
		return false, fmt.Errorf("stat image: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), info.Mode().Perm()); err != nil {
		return false, fmt.Errorf("writing resized image: %w", err)
	}

	log.Debug().
		Str("path", path).
		Int("from_width", w).
		Int("to_width", newW).
		Int("to_height", newH).
		Msg("resized image")
	return true, nil
}

// Scale returns the dimensions of a w x h image shrunk to maxWidth. The
// height is truncated to an integer and never drops below 1.
func Scale(w, h, maxWidth int) (int, int) {
	if w <= maxWidth || w <= 0 {
		return w, h
	}
	newH := h * maxWidth / w
	if newH < 1 {
		newH = 1
	}
	return maxWidth, newH
}
