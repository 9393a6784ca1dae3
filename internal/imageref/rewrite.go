// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package imageref

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/pdiddy/pb2obsidian/pkg/types"
)

var (
	// markdownImage matches ![alt](path); group 1 is the path.
	markdownImage = regexp.MustCompile(`!\[[^\]\n]*\]\(([^)]+)\)`)

	// htmlImage matches <img ... src="path" ...> and its self-closing form.
	htmlImage = regexp.MustCompile(`<img\s[^>]*src="([^"]+)"[^>]*/?>`)

	// adjacentEmbeds matches a closing ]] glued to the next [[ or ![[.
	adjacentEmbeds = regexp.MustCompile(`(\]\])(!?\[\[)`)
)

// Rewrite replaces the paths of images with their new names and converts
// all Markdown and HTML image syntax to ![[...]] embeds. Passes run in a
// fixed order: path substitution, Markdown syntax, HTML syntax, spacing
// between adjacent embeds.
//
// With substring false, paths are only replaced where they appear as the
// target of an image reference. With substring true, every literal
// occurrence of an image's absolute path and then its relative path is
// replaced anywhere in the document.
func Rewrite(markdown string, images []types.Image, substring bool) string {
	out := markdown
	if substring {
		out = substitutePaths(out, images)
	} else {
		names := pathIndex(images)
		out = replaceGroup(markdownImage, out, names.lookup)
		out = replaceGroup(htmlImage, out, names.lookup)
	}

	out = markdownImage.ReplaceAllString(out, "![[${1}]]")
	out = htmlImage.ReplaceAllString(out, "![[${1}]]")
	out = adjacentEmbeds.ReplaceAllString(out, "${1} ${2}")
	return out
}

func substitutePaths(s string, images []types.Image) string {
	for _, img := range images {
		for _, p := range []string{img.Source, img.Relative} {
			if p == "" {
				continue
			}
			s = strings.ReplaceAll(s, p, img.Name)
			if enc := escapePath(p); enc != p {
				s = strings.ReplaceAll(s, enc, img.Name)
			}
		}
	}
	return s
}

// escapePath percent-encodes each segment of a slash-separated path the way
// converters write link targets ("with space" -> "with%20space").
func escapePath(p string) string {
	segs := strings.Split(p, "/")
	for i, seg := range segs {
		segs[i] = url.PathEscape(seg)
	}
	return strings.Join(segs, "/")
}

// pathIndex maps every spelling of an image's original location to its new
// name. Earlier images win on a conflicting key.
type pathIndex []types.Image

func (p pathIndex) lookup(token string) (string, bool) {
	for _, candidate := range tokenCandidates(token) {
		for _, img := range p {
			if candidate == img.Source || candidate == img.Relative || candidate == "./"+img.Relative {
				return img.Name, true
			}
		}
	}
	return "", false
}

// tokenCandidates lists the forms a reference target may take: as written,
// without angle brackets, without a trailing "title", and percent-decoded.
func tokenCandidates(token string) []string {
	t := strings.TrimSpace(token)
	out := []string{t}
	if strings.HasPrefix(t, "<") && strings.HasSuffix(t, ">") {
		t = t[1 : len(t)-1]
		out = append(out, t)
	}
	if head, _, ok := strings.Cut(t, " "); ok {
		out = append(out, strings.Trim(head, "<>"))
	}
	for _, c := range out {
		if dec, err := url.PathUnescape(c); err == nil && dec != c {
			out = append(out, dec)
		}
	}
	return out
}

// replaceGroup rewrites capture group 1 of every match of re in s with the
// result of fn, leaving the text of unmatched tokens untouched.
func replaceGroup(re *regexp.Regexp, s string, fn func(string) (string, bool)) string {
	matches := re.FindAllStringSubmatchIndex(s, -1)
	if len(matches) == 0 {
		return s
	}

	var b strings.Builder
	b.Grow(len(s))
	last := 0
	for _, m := range matches {
		start, end := m[2], m[3]
		repl, ok := fn(s[start:end])
		if !ok {
			continue
		}
		b.WriteString(s[last:start])
		b.WriteString(repl)
		last = end
	}
	b.WriteString(s[last:])
	return b.String()
}
