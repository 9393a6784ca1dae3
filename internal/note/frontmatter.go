// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package note

import (
	"fmt"
	"strings"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/pb2obsidian/pkg/types"
)

// frontmatter is the YAML block optionally prepended to a note.
type frontmatter struct {
	Title        string   `yaml:"title,omitempty"`
	Created      string   `yaml:"created"`
	SourceFormat string   `yaml:"source_format"`
	Images       []string `yaml:"images,omitempty"`
}

func addFrontmatter(body, title string, format types.SourceFormat, now time.Time, images []types.Image) (string, error) {
	fm := frontmatter{
		Title:        title,
		Created:      now.Format(time.RFC3339),
		SourceFormat: string(format),
	}
	for _, img := range images {
		fm.Images = append(fm.Images, img.Name)
	}

	data, err := yaml.Marshal(fm)
	if err != nil {
		return "", fmt.Errorf("encoding frontmatter: %w", err)
	}

	var b strings.Builder
	b.WriteString("---\n")
	b.Write(data)
	b.WriteString("---\n\n")
	b.WriteString(body)
	return b.String(), nil
}
