// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the pb2obsidian CLI.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/pb2obsidian/internal/clipboard"
	"github.com/pdiddy/pb2obsidian/internal/convert"
	"github.com/pdiddy/pb2obsidian/internal/note"
	"github.com/pdiddy/pb2obsidian/internal/resize"
)

// version is set at build time via ldflags.
var version = "dev"

const copyHint = "Copy some rich text first (e.g., from a webpage, email, Teams, or Word doc)."

// rootCmd converts the clipboard into a note.
var rootCmd = &cobra.Command{
	Use:   "pb2obsidian",
	Short: "Convert clipboard rich text (RTF/HTML) to Markdown with Obsidian image links",
	Long: `pb2obsidian reads rich text from the clipboard (RTF preferred, HTML as
fallback), converts it to GitHub-flavored Markdown with pandoc, extracts
embedded images as {name}.image-001.png, ..., rewrites image references as
Obsidian ![[embeds]], writes {name}.md, and puts the Markdown on the clipboard.

Options can also be set with PB2OBSIDIAN_* environment variables, a .env file
next to the binary or in the working directory, or pb2obsidian.yaml.
Precedence: flag > environment > .env > config file > default.`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runConvert,
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file (default: ./pb2obsidian.yaml or ~/.config/pb2obsidian/pb2obsidian.yaml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "log debug details to stderr")

	f := rootCmd.Flags()
	f.Int("image-width", 0, "maximum image width in pixels; wider images are scaled down (env PB2OBSIDIAN_IMAGE_WIDTH)")
	f.StringP("title", "t", "", "title used to name the subfolder, Markdown file, and images")
	f.String("md-dir", "", "directory for the Markdown file (env PB2OBSIDIAN_MD_DIR)")
	f.String("image-dir", "", "directory for extracted images (env PB2OBSIDIAN_IMAGE_DIR)")
	f.Bool("skip-note", false, "do not write the Markdown file; only extract images and fill the clipboard")
	f.String("backend", "", "conversion backend: pandoc or html (env PB2OBSIDIAN_BACKEND, default pandoc)")
	f.Bool("frontmatter", false, "prepend YAML frontmatter to the note (env PB2OBSIDIAN_FRONTMATTER)")
	f.Bool("substring-paths", false, "replace image paths anywhere in the text, not only inside image references (env PB2OBSIDIAN_SUBSTRING_PATHS)")
}

func runConvert(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	setupLogging(cmd.ErrOrStderr(), cfg.Verbose)

	// The converter is resolved first so a missing pandoc is reported
	// before the clipboard is read.
	conv, err := convert.New(cfg.Backend)
	if err != nil {
		if errors.Is(err, convert.ErrConverterUnavailable) {
			return fmt.Errorf("%w\n%s", err, convert.PandocInstallHint)
		}
		return err
	}

	reader, err := clipboard.DetectReader()
	if err != nil {
		return err
	}

	p := &note.Pipeline{
		Clipboard: reader,
		Sink:      clipboard.SystemWriter{},
		Converter: conv,
		Resizer:   resize.Resizer{},
		Out:       cmd.OutOrStdout(),
	}
	if _, err := p.Run(cfg); err != nil {
		if errors.Is(err, clipboard.ErrNoRichText) {
			return fmt.Errorf("%w\n%s", err, copyHint)
		}
		return err
	}
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
