// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package clipboard

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/pdiddy/pb2obsidian/internal/command"
	"github.com/pdiddy/pb2obsidian/pkg/types"
)

const (
	binOsascript = "osascript"
	binWlPaste   = "wl-paste"
	binXclip     = "xclip"
)

// mimeTypes lists the MIME targets accepted for each format, in order.
var mimeTypes = map[types.SourceFormat][]string{
	types.FormatRTF:  {"text/rtf", "application/rtf", "text/richtext"},
	types.FormatHTML: {"text/html"},
}

// targetsReader serves helpers that can list the clipboard's MIME targets
// and then print one of them (wl-paste, xclip).
type targetsReader struct {
	bin      string
	exec     command.Executor
	listArgs []string
	readArgs func(mime string) []string
}

func newWaylandReader(exec command.Executor) *targetsReader {
	return &targetsReader{
		bin:      binWlPaste,
		exec:     exec,
		listArgs: []string{"--list-types"},
		readArgs: func(mime string) []string {
			return []string{"--no-newline", "--type", mime}
		},
	}
}

func newX11Reader(exec command.Executor) *targetsReader {
	return &targetsReader{
		bin:      binXclip,
		exec:     exec,
		listArgs: []string{"-selection", "clipboard", "-t", "TARGETS", "-o"},
		readArgs: func(mime string) []string {
			return []string{"-selection", "clipboard", "-t", mime, "-o"}
		},
	}
}

func (r *targetsReader) Name() string { return r.bin }

func (r *targetsReader) Read(format types.SourceFormat) ([]byte, error) {
	var list bytes.Buffer
	if err := r.exec.Run(r.bin, r.listArgs, nil, &list); err != nil {
		// Both helpers fail when the clipboard is empty.
		return nil, fmt.Errorf("%w: %s: %v", ErrFormatUnavailable, format, err)
	}

	offered := make(map[string]bool)
	for _, line := range strings.Split(list.String(), "\n") {
		offered[strings.TrimSpace(line)] = true
	}

	for _, mime := range mimeTypes[format] {
		if !offered[mime] {
			continue
		}
		var out bytes.Buffer
		if err := r.exec.Run(r.bin, r.readArgs(mime), nil, &out); err != nil {
			return nil, fmt.Errorf("reading %s with %s: %w", mime, r.bin, err)
		}
		return out.Bytes(), nil
	}
	return nil, fmt.Errorf("%w: %s", ErrFormatUnavailable, format)
}

// macReader asks AppleScript for the clipboard as a typed data class. The
// result is printed as «data RTF 7B5C...», a hex dump of the bytes.
type macReader struct {
	exec command.Executor
}

// appleClass maps formats to AppleScript clipboard classes. The RTF class
// name is four characters including a trailing space.
var appleClass = map[types.SourceFormat]string{
	types.FormatRTF:  "«class RTF »",
	types.FormatHTML: "«class HTML»",
}

func newMacReader(exec command.Executor) *macReader {
	return &macReader{exec: exec}
}

func (r *macReader) Name() string { return binOsascript }

func (r *macReader) Read(format types.SourceFormat) ([]byte, error) {
	class, ok := appleClass[format]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrFormatUnavailable, format)
	}

	var out bytes.Buffer
	script := "get the clipboard as " + class
	if err := r.exec.Run(binOsascript, []string{"-e", script}, nil, &out); err != nil {
		// osascript errors when the clipboard cannot be coerced to class.
		return nil, fmt.Errorf("%w: %s: %v", ErrFormatUnavailable, format, err)
	}
	return decodeAppleData(out.String())
}

// decodeAppleData parses AppleScript's «data TYPE HEX» literal.
func decodeAppleData(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	body, ok := strings.CutPrefix(s, "«data ")
	if !ok {
		return nil, fmt.Errorf("unexpected osascript output %.40q", s)
	}
	body = strings.TrimSuffix(body, "»")
	if len(body) < 4 {
		return nil, fmt.Errorf("unexpected osascript output %.40q", s)
	}
	// The four-character type code is followed by the hex payload.
	data, err := hex.DecodeString(body[4:])
	if err != nil {
		return nil, fmt.Errorf("decoding osascript data: %w", err)
	}
	return data, nil
}
