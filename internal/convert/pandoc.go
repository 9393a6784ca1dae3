// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"bytes"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"

	"github.com/pdiddy/pb2obsidian/internal/command"
)

const (
	binPandoc = "pandoc"

	// outputFormat is GitHub-flavored Markdown. Pandoc's own markdown emits
	// fenced divs, bracketed spans and header attributes Obsidian cannot render.
	outputFormat = "gfm"
)

// PandocInstallHint tells the user how to get pandoc.
const PandocInstallHint = "Install it with: brew install pandoc (or your package manager)"

// PandocConverter converts by running the pandoc binary.
type PandocConverter struct {
	exec command.Executor
	bin  string
}

// NewPandocConverter locates pandoc on PATH. It returns an error wrapping
// ErrConverterUnavailable if pandoc is not installed.
func NewPandocConverter(exec command.Executor) (*PandocConverter, error) {
	bin, err := exec.LookPath(binPandoc)
	if err != nil {
		return nil, fmt.Errorf("%w: %s is not installed", ErrConverterUnavailable, binPandoc)
	}
	return &PandocConverter{exec: exec, bin: bin}, nil
}

func (p *PandocConverter) Name() string { return binPandoc }

// Convert writes the payload to a temporary file named for its format and
// runs pandoc on it with media extraction into req.MediaDir and line
// wrapping disabled.
func (p *PandocConverter) Convert(req Request) (string, error) {
	if err := checkFormat(req.Format); err != nil {
		return "", err
	}

	tmp, err := os.CreateTemp("", "pb2obsidian-*."+string(req.Format))
	if err != nil {
		return "", fmt.Errorf("creating pandoc input: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(req.Data); err != nil {
		tmp.Close()
		return "", fmt.Errorf("writing pandoc input: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("writing pandoc input: %w", err)
	}

	args := pandocArgs(tmp.Name(), string(req.Format), req.MediaDir)
	log.Debug().Str("bin", p.bin).Strs("args", args).Msg("running pandoc")

	var out bytes.Buffer
	if err := p.exec.Run(p.bin, args, nil, &out); err != nil {
		return "", fmt.Errorf("converting %s with pandoc: %w", req.Format, err)
	}
	return out.String(), nil
}

func pandocArgs(input, from, mediaDir string) []string {
	return []string{
		input,
		"-f", from,
		"-t", outputFormat,
		"--extract-media", mediaDir,
		"--wrap=none",
	}
}
