// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package imageref renames images extracted by a converter and rewrites
// every image reference in the converted Markdown to an Obsidian embed
// (![[name]]) pointing at the new filename.
//
// A run is: Discover the extracted files once, rename (and optionally
// resize) each in discovery order, Rewrite the document, then Cleanup the
// converter's leftover media directory.
package imageref

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/pdiddy/pb2obsidian/pkg/types"
)

// mediaDir is the subdirectory converters commonly extract into.
const mediaDir = "media"

// defaultExt is used for an image whose source file has no extension.
const defaultExt = ".png"

// Extensions lists the recognized image file extensions, lowercase.
var Extensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".bmp":  true,
	".tiff": true,
	".tif":  true,
	".webp": true,
	".svg":  true,
}

// Resizer scales an image file down in place so its width does not exceed
// maxWidth. It reports whether the file was rewritten.
type Resizer interface {
	Resize(path string, maxWidth int) (bool, error)
}

// Options controls Process.
type Options struct {
	// BaseName prefixes every renamed image.
	BaseName string

	// DestDir is where renamed images end up. Empty keeps them in the
	// extraction root.
	DestDir string

	// MaxWidth enables resizing when positive. Requires Resizer.
	MaxWidth int
	Resizer  Resizer

	// Substring selects whole-document substring replacement of image
	// paths instead of replacing only inside image reference spans.
	Substring bool
}

// Result is the outcome of Process.
type Result struct {
	Markdown string
	Images   []types.Image
}

// IsImage reports whether path has a recognized image extension.
func IsImage(path string) bool {
	return Extensions[strings.ToLower(filepath.Ext(path))]
}

// NewName returns the renamed filename for the seq-th image:
// {base}.image-{seq:03d}{ext}. An empty ext becomes ".png".
func NewName(base string, seq int, ext string) string {
	if ext == "" {
		ext = defaultExt
	}
	return fmt.Sprintf("%s.image-%03d%s", base, seq, ext)
}

// Discover returns the absolute paths of every image file under root,
// sorted lexicographically. The root must exist.
func Discover(root string) ([]string, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", root, err)
	}

	var paths []string
	err = filepath.WalkDir(abs, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() || !IsImage(path) {
			return nil
		}
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scanning %s for images: %w", abs, err)
	}

	sort.Strings(paths)
	return paths, nil
}

// Process renames every image under root, optionally resizes it, moves it
// to opts.DestDir, and rewrites the references in markdown. The image set
// is captured once before any file is touched. A failed move or resize
// aborts the run.
func Process(markdown, root string, opts Options) (Result, error) {
	root, err := filepath.Abs(root)
	if err != nil {
		return Result{}, fmt.Errorf("resolving %s: %w", root, err)
	}

	sources, err := Discover(root)
	if err != nil {
		return Result{}, err
	}

	destDir := root
	if opts.DestDir != "" {
		if destDir, err = filepath.Abs(opts.DestDir); err != nil {
			return Result{}, fmt.Errorf("resolving %s: %w", opts.DestDir, err)
		}
	}

	images := make([]types.Image, 0, len(sources))
	for i, src := range sources {
		img, err := renameOne(root, destDir, src, i+1, opts)
		if err != nil {
			return Result{}, err
		}
		images = append(images, img)
	}

	out := Rewrite(markdown, images, opts.Substring)
	Cleanup(root)

	return Result{Markdown: out, Images: images}, nil
}

func renameOne(root, destDir, src string, seq int, opts Options) (types.Image, error) {
	rel, err := filepath.Rel(root, src)
	if err != nil {
		return types.Image{}, fmt.Errorf("relativizing %s: %w", src, err)
	}

	name := NewName(opts.BaseName, seq, filepath.Ext(src))
	img := types.Image{
		Seq:      seq,
		Source:   src,
		Relative: filepath.ToSlash(rel),
		Name:     name,
	}

	staged := filepath.Join(root, name)
	if src != staged {
		if err := moveFile(src, staged); err != nil {
			return types.Image{}, err
		}
	}

	if opts.MaxWidth > 0 && opts.Resizer != nil {
		resized, err := opts.Resizer.Resize(staged, opts.MaxWidth)
		if err != nil {
			return types.Image{}, fmt.Errorf("resizing %s: %w", name, err)
		}
		img.Resized = resized
	}

	img.Path = staged
	if destDir != root {
		final := filepath.Join(destDir, name)
		if err := moveFile(staged, final); err != nil {
			return types.Image{}, err
		}
		img.Path = final
	}

	log.Debug().
		Int("seq", seq).
		Str("source", rel).
		Str("path", img.Path).
		Bool("resized", img.Resized).
		Msg("renamed image")
	return img, nil
}

// Cleanup removes the media subdirectory under root when it is empty.
// Failures are ignored.
func Cleanup(root string) {
	dir := filepath.Join(root, mediaDir)
	entries, err := os.ReadDir(dir)
	if err != nil || len(entries) > 0 {
		return
	}
	if err := os.Remove(dir); err != nil {
		log.Debug().Err(err).Str("dir", dir).Msg("leaving media directory in place")
	}
}
