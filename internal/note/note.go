// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package note runs the clipboard-to-note pipeline: detect rich text,
// convert it to Markdown, process the extracted images, write the note, and
// put the Markdown back on the clipboard.
package note

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/pdiddy/pb2obsidian/internal/clipboard"
	"github.com/pdiddy/pb2obsidian/internal/convert"
	"github.com/pdiddy/pb2obsidian/internal/imageref"
	"github.com/pdiddy/pb2obsidian/internal/slug"
	"github.com/pdiddy/pb2obsidian/pkg/types"
)

const stagingPattern = "pb2obsidian-*"

// Pipeline wires the collaborators of one run. Converter must already be
// constructed, so a missing conversion engine is reported before the
// clipboard is touched.
type Pipeline struct {
	Clipboard clipboard.Reader
	Sink      clipboard.Writer
	Converter convert.Converter
	Resizer   imageref.Resizer

	// Now returns the run's clock reading. Defaults to time.Now.
	Now func() time.Time

	// WorkDir is the parent of the default output subfolder. Defaults to
	// the process working directory.
	WorkDir string

	// Out receives the human-readable summary. Nil discards it.
	Out io.Writer
}

// Run executes the pipeline for cfg. A missing rich text payload returns
// clipboard.ErrNoRichText before anything is written. Filesystem errors
// abort the run; the staging directory is removed on every path.
func (p *Pipeline) Run(cfg types.Config) (types.Summary, error) {
	out := p.Out
	if out == nil {
		out = io.Discard
	}
	clock := time.Now
	if p.Now != nil {
		clock = p.Now
	}
	now := clock()

	format, data, err := clipboard.Detect(p.Clipboard)
	if err != nil {
		return types.Summary{}, err
	}
	fmt.Fprintf(out, "Detected clipboard format: %s\n", strings.ToUpper(string(format)))

	base := slug.BaseName(cfg.Title, now)
	mdDir, imageDir, err := p.outputDirs(cfg, base)
	if err != nil {
		return types.Summary{}, err
	}
	for _, d := range []string{mdDir, imageDir} {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return types.Summary{}, fmt.Errorf("creating %s: %w", d, err)
		}
	}

	markdown, images, err := p.convertAndProcess(cfg, format, data, base, imageDir)
	if err != nil {
		return types.Summary{}, err
	}

	if cfg.Frontmatter {
		markdown, err = addFrontmatter(markdown, cfg.Title, format, now, images)
		if err != nil {
			return types.Summary{}, err
		}
	}

	sum := types.Summary{
		Format:   format,
		BaseName: base,
		NotePath: filepath.Join(mdDir, base+".md"),
		ImageDir: imageDir,
		Images:   images,
		MaxWidth: cfg.ImageWidth,
		Markdown: markdown,
	}

	if !cfg.SkipNote {
		if err := os.WriteFile(sum.NotePath, []byte(markdown), 0o644); err != nil {
			return types.Summary{}, fmt.Errorf("writing note: %w", err)
		}
		sum.NoteWritten = true
	}

	if err := p.Sink.WriteText(markdown); err != nil {
		return sum, err
	}

	log.Debug().Int("images", sum.ImageCount()).Int("resized", sum.ResizedCount()).Msg("run complete")
	printSummary(out, sum)
	return sum, nil
}

// convertAndProcess owns the staging directory: the converter extracts into
// it, images are renamed there and moved to imageDir, and it is removed
// before returning. Staging keeps pre-existing files in a shared image
// directory out of discovery.
func (p *Pipeline) convertAndProcess(cfg types.Config, format types.SourceFormat, data []byte, base, imageDir string) (string, []types.Image, error) {
	staging, err := os.MkdirTemp("", stagingPattern)
	if err != nil {
		return "", nil, fmt.Errorf("creating staging directory: %w", err)
	}
	defer func() {
		if err := os.RemoveAll(staging); err != nil {
			log.Warn().Err(err).Str("dir", staging).Msg("could not remove staging directory")
		}
	}()

	raw, err := p.Converter.Convert(convert.Request{Data: data, Format: format, MediaDir: staging})
	if err != nil {
		return "", nil, err
	}
	log.Debug().Str("converter", p.Converter.Name()).Int("bytes", len(raw)).Msg("converted clipboard")

	res, err := imageref.Process(raw, staging, imageref.Options{
		BaseName:  base,
		DestDir:   imageDir,
		MaxWidth:  cfg.ImageWidth,
		Resizer:   p.Resizer,
		Substring: cfg.SubstringPaths,
	})
	if err != nil {
		return "", nil, err
	}
	return res.Markdown, res.Images, nil
}

// outputDirs returns the note and image directories. Both default to
// WorkDir/base; MDDir and ImageDir override them independently.
func (p *Pipeline) outputDirs(cfg types.Config, base string) (string, string, error) {
	work := p.WorkDir
	if work == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", "", fmt.Errorf("resolving working directory: %w", err)
		}
		work = wd
	}
	def := filepath.Join(work, base)

	mdDir, err := ExpandDir(cfg.MDDir, def)
	if err != nil {
		return "", "", err
	}
	imageDir, err := ExpandDir(cfg.ImageDir, def)
	if err != nil {
		return "", "", err
	}
	return mdDir, imageDir, nil
}

// ExpandDir resolves a directory override: empty returns def, a leading ~
// expands to the home directory, and relative paths become absolute.
func ExpandDir(dir, def string) (string, error) {
	if dir == "" {
		return def, nil
	}
	if dir == "~" || strings.HasPrefix(dir, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("expanding %s: %w", dir, err)
		}
		dir = filepath.Join(home, strings.TrimPrefix(dir, "~"))
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolving %s: %w", dir, err)
	}
	return abs, nil
}

func printSummary(w io.Writer, s types.Summary) {
	if s.NoteWritten {
		fmt.Fprintf(w, "Markdown written to: %s\n", s.NotePath)
	}
	if n := s.ImageCount(); n > 0 {
		fmt.Fprintf(w, "Extracted %d image(s) to: %s\n", n, s.ImageDir)
		if s.MaxWidth > 0 {
			fmt.Fprintf(w, "Images scaled to max width: %dpx\n", s.MaxWidth)
		}
	} else {
		fmt.Fprintln(w, "Extracted 0 images.")
	}
	fmt.Fprintln(w, "Markdown placed on clipboard.")
}
