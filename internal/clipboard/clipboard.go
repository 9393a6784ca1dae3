// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package clipboard reads rich text representations from the system
// clipboard and writes plain text back to it.
//
// Reading goes through a platform helper binary: osascript on macOS,
// wl-paste on Wayland, xclip on X11. Writing uses github.com/atotto/clipboard.
package clipboard

import (
	"errors"
	"fmt"
	"os"
	"runtime"

	atotto "github.com/atotto/clipboard"
	"github.com/rs/zerolog/log"

	"github.com/pdiddy/pb2obsidian/internal/command"
	"github.com/pdiddy/pb2obsidian/pkg/types"
)

var (
	// ErrNoRichText means neither RTF nor HTML is on the clipboard.
	ErrNoRichText = errors.New("no rich text (RTF or HTML) found on clipboard")

	// ErrFormatUnavailable means the requested representation is absent.
	ErrFormatUnavailable = errors.New("format not available on clipboard")

	// ErrNoClipboard means no supported clipboard helper was found.
	ErrNoClipboard = errors.New("no clipboard access available")
)

// preference lists the formats Detect tries, best first. RTF tends to
// produce cleaner Markdown than HTML.
var preference = []types.SourceFormat{types.FormatRTF, types.FormatHTML}

// Reader fetches one representation of the clipboard contents.
type Reader interface {
	// Name identifies the helper in messages.
	Name() string

	// Read returns the raw bytes for format, or an error wrapping
	// ErrFormatUnavailable when the clipboard does not hold it.
	Read(format types.SourceFormat) ([]byte, error)
}

// Writer replaces the clipboard contents with plain text.
type Writer interface {
	WriteText(text string) error
}

// Detect returns the best rich text format on the clipboard and its bytes.
// Empty payloads count as absent. It returns ErrNoRichText when neither
// RTF nor HTML is present.
func Detect(r Reader) (types.SourceFormat, []byte, error) {
	for _, f := range preference {
		data, err := r.Read(f)
		if errors.Is(err, ErrFormatUnavailable) {
			log.Debug().Str("format", string(f)).Str("reader", r.Name()).Msg("format not on clipboard")
			continue
		}
		if err != nil {
			return "", nil, fmt.Errorf("reading %s from clipboard: %w", f, err)
		}
		if len(data) == 0 {
			continue
		}
		return f, data, nil
	}
	return "", nil, ErrNoRichText
}

// DetectReader picks the clipboard helper for the current platform.
func DetectReader() (Reader, error) {
	return detectReader(command.OS{}, runtime.GOOS, os.Getenv)
}

func detectReader(exec command.Executor, goos string, getenv func(string) string) (Reader, error) {
	if goos == "darwin" && command.Available(exec, binOsascript) {
		return newMacReader(exec), nil
	}
	if getenv("WAYLAND_DISPLAY") != "" && command.Available(exec, binWlPaste) {
		return newWaylandReader(exec), nil
	}
	if getenv("DISPLAY") != "" && command.Available(exec, binXclip) {
		return newX11Reader(exec), nil
	}
	return nil, fmt.Errorf("%w: need %s (macOS), %s (Wayland) or %s (X11)",
		ErrNoClipboard, binOsascript, binWlPaste, binXclip)
}

// SystemWriter writes to the system clipboard as plain text.
type SystemWriter struct{}

func (SystemWriter) WriteText(text string) error {
	if atotto.Unsupported {
		return fmt.Errorf("writing clipboard: %w", ErrNoClipboard)
	}
	if err := atotto.WriteAll(text); err != nil {
		return fmt.Errorf("writing clipboard: %w", err)
	}
	return nil
}
