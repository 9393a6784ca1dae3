// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// SourceFormat is the clipboard representation fed to the converter.
type SourceFormat string

const (
	FormatRTF  SourceFormat = "rtf"
	FormatHTML SourceFormat = "html"
)

// Image describes one extracted image after renaming.
type Image struct {
	// Seq is the 1-based sequence number assigned in discovery order.
	Seq int `json:"seq" yaml:"seq"`

	// Source is the absolute path the converter wrote the image to.
	Source string `json:"source" yaml:"source"`

	// Relative is Source relative to the extraction root (e.g. "media/rId5.png").
	Relative string `json:"relative" yaml:"relative"`

	// Name is the new bare filename, e.g. "my_notes.image-001.png".
	Name string `json:"name" yaml:"name"`

	// Path is where the image lives after processing.
	Path string `json:"path" yaml:"path"`

	// Resized reports whether the image was scaled down.
	Resized bool `json:"resized" yaml:"resized"`
}

// Summary reports the outcome of a run.
type Summary struct {
	Format      SourceFormat `json:"format"`
	BaseName    string       `json:"base_name"`
	NotePath    string       `json:"note_path"`
	NoteWritten bool         `json:"note_written"`
	ImageDir    string       `json:"image_dir"`
	Images      []Image      `json:"images"`
	MaxWidth    int          `json:"max_width"`
	Markdown    string       `json:"-"`
}

// ImageCount returns the number of extracted images.
func (s Summary) ImageCount() int {
	return len(s.Images)
}

// ResizedCount returns the number of images that were scaled down.
func (s Summary) ResizedCount() int {
	n := 0
	for _, img := range s.Images {
		if img.Resized {
			n++
		}
	}
	return n
}
