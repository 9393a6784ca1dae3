// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package convert turns clipboard rich text (RTF or HTML) into GitHub-flavored
// Markdown, extracting embedded images into a media directory. Backends:
// pandoc (external binary, RTF and HTML) and an in-process HTML converter.
package convert

import (
	"errors"
	"fmt"

	"github.com/pdiddy/pb2obsidian/internal/command"
	"github.com/pdiddy/pb2obsidian/pkg/types"
)

var (
	// ErrConverterUnavailable means the conversion engine is not installed.
	ErrConverterUnavailable = errors.New("converter unavailable")

	// ErrUnsupportedFormat means the backend cannot read the source format.
	ErrUnsupportedFormat = errors.New("unsupported source format")
)

// Request is one conversion job.
type Request struct {
	// Data is the raw clipboard payload.
	Data []byte

	// Format declares what Data is.
	Format types.SourceFormat

	// MediaDir receives extracted images. Backends may nest them under a
	// media/ subdirectory.
	MediaDir string
}

// Converter transforms rich text into Markdown. Image references in the
// output point at the files written under Request.MediaDir.
type Converter interface {
	// Name identifies the backend in messages.
	Name() string

	// Convert returns the Markdown for req.
	Convert(req Request) (string, error)
}

// New returns the converter for backend. For pandoc it fails with
// ErrConverterUnavailable when the binary is missing.
func New(backend types.Backend) (Converter, error) {
	switch backend {
	case types.BackendPandoc, "":
		return NewPandocConverter(command.OS{})
	case types.BackendHTML:
		return NewHTMLConverter(), nil
	default:
		return nil, fmt.Errorf("unknown conversion backend %q", backend)
	}
}

func checkFormat(f types.SourceFormat) error {
	switch f {
	case types.FormatRTF, types.FormatHTML:
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, f)
	}
}
