// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// Backend identifies the rich-text-to-Markdown conversion engine.
type Backend string

const (
	// BackendPandoc shells out to the pandoc binary. Handles RTF and HTML.
	BackendPandoc Backend = "pandoc"
	// BackendHTML converts HTML in-process. RTF is not supported.
	BackendHTML Backend = "html"
)

// Config holds the fully resolved settings for one run. It is built once by
// config.Resolve before any pipeline stage runs and is not modified afterwards.
type Config struct {
	// ImageWidth is the maximum image width in pixels. Zero disables resizing.
	ImageWidth int `json:"image_width" yaml:"image_width"`

	// Title names the note, its images, and the default output subfolder.
	// Empty means a timestamped name is used.
	Title string `json:"title" yaml:"title"`

	// MDDir overrides the directory the note is written to.
	MDDir string `json:"md_dir" yaml:"md_dir"`

	// ImageDir overrides the directory extracted images are moved to.
	ImageDir string `json:"image_dir" yaml:"image_dir"`

	// SkipNote suppresses writing the Markdown file. Images are still
	// extracted and the clipboard is still updated.
	SkipNote bool `json:"skip_note" yaml:"skip_note"`

	// Backend selects the conversion engine (default pandoc).
	Backend Backend `json:"backend" yaml:"backend"`

	// Frontmatter prepends a YAML frontmatter block to the note.
	Frontmatter bool `json:"frontmatter" yaml:"frontmatter"`

	// SubstringPaths switches image path rewriting to plain substring
	// replacement over the whole document instead of only inside image
	// reference spans.
	SubstringPaths bool `json:"substring_paths" yaml:"substring_paths"`

	// Verbose enables debug logging on stderr.
	Verbose bool `json:"verbose" yaml:"verbose"`
}
