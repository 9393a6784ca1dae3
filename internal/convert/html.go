// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"mime"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/strikethrough"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	"github.com/rs/zerolog/log"
	"github.com/wailsapp/mimetype"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/pdiddy/pb2obsidian/internal/httputil"
	"github.com/pdiddy/pb2obsidian/pkg/types"
)

const (
	htmlBackendName = "html-to-markdown"
	mediaSubdir     = "media"

	defaultFetchTimeout  = 15 * time.Second
	defaultMaxImageBytes = 32 << 20
)

// dataImageExt maps inline image media types to file extensions.
var dataImageExt = map[string]string{
	"image/png":     ".png",
	"image/jpeg":    ".jpg",
	"image/jpg":     ".jpg",
	"image/gif":     ".gif",
	"image/bmp":     ".bmp",
	"image/tiff":    ".tiff",
	"image/webp":    ".webp",
	"image/svg+xml": ".svg",
}

// HTMLConverter converts HTML in-process. Inline data: images, remote
// http(s) images and local image files are written to MediaDir/media/ as
// image-001.ext, image-002.ext, ... in document order and referenced as
// media/image-NNN.ext, relative to MediaDir. An image that cannot be loaded
// keeps its original src.
type HTMLConverter struct {
	// Client fetches remote images. Nil disables fetching.
	Client *http.Client

	// ResourceDir resolves relative local sources. Empty means the working
	// directory.
	ResourceDir string

	// FetchTimeout bounds each remote fetch.
	FetchTimeout time.Duration

	// MaxImageBytes caps the size of a fetched or copied image.
	MaxImageBytes int64

	conv *converter.Converter
}

// NewHTMLConverter returns a converter producing GFM-style output.
func NewHTMLConverter() *HTMLConverter {
	return &HTMLConverter{
		Client:        &http.Client{},
		FetchTimeout:  defaultFetchTimeout,
		MaxImageBytes: defaultMaxImageBytes,
		conv: converter.NewConverter(
			converter.WithPlugins(
				base.NewBasePlugin(),
				commonmark.NewCommonmarkPlugin(),
				strikethrough.NewStrikethroughPlugin(),
				table.NewTablePlugin(),
			),
		),
	}
}

func (h *HTMLConverter) Name() string { return htmlBackendName }

// Convert extracts inline images and renders the document as Markdown.
// RTF input is rejected with ErrUnsupportedFormat.
func (h *HTMLConverter) Convert(req Request) (string, error) {
	if req.Format != types.FormatHTML {
		return "", fmt.Errorf("%w: %s backend reads HTML only, got %s", ErrUnsupportedFormat, htmlBackendName, req.Format)
	}

	doc, err := html.Parse(bytes.NewReader(req.Data))
	if err != nil {
		return "", fmt.Errorf("parsing HTML: %w", err)
	}

	x := &imageExtractor{dir: filepath.Join(req.MediaDir, mediaSubdir), resolve: h.resource}
	if err := x.walk(doc); err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := html.Render(&buf, doc); err != nil {
		return "", fmt.Errorf("rendering HTML: %w", err)
	}

	md, err := h.conv.ConvertString(buf.String())
	if err != nil {
		return "", fmt.Errorf("converting HTML to Markdown: %w", err)
	}
	return md, nil
}

// resource loads the image src refers to: an http(s) URL through Client, or
// a local file (file:// URL, absolute or relative path). handled is false
// for sources it does not resolve, such as cid: references.
func (h *HTMLConverter) resource(src string) ([]byte, string, bool, error) {
	if strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://") {
		if h.Client == nil {
			return nil, "", false, nil
		}
		ctx := context.Background()
		if h.FetchTimeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, h.FetchTimeout)
			defer cancel()
		}
		body, ctype, err := httputil.Fetch(ctx, h.Client, src, h.MaxImageBytes)
		return body, ctype, true, err
	}

	path, ok := h.localPath(src)
	if !ok {
		return nil, "", false, nil
	}
	body, err := readLocal(path, h.MaxImageBytes)
	return body, "", true, err
}

// localPath maps src to a filesystem path. Sources with a URL scheme other
// than file are not local.
func (h *HTMLConverter) localPath(src string) (string, bool) {
	u, err := url.Parse(src)
	if err != nil || u.Path == "" {
		return "", false
	}
	if u.Scheme != "" && u.Scheme != "file" {
		return "", false
	}

	p := filepath.FromSlash(u.Path)
	if !filepath.IsAbs(p) && h.ResourceDir != "" {
		p = filepath.Join(h.ResourceDir, p)
	}
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", false
	}
	return abs, true
}

func readLocal(path string, maxBytes int64) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("%s is not a regular file", path)
	}
	if maxBytes > 0 && info.Size() > maxBytes {
		return nil, fmt.Errorf("%s exceeds %d bytes", path, maxBytes)
	}
	return os.ReadFile(path)
}

// imageExtractor writes each <img> payload to dir as image-NNN.ext and
// points src at the written file, relative to dir's parent.
type imageExtractor struct {
	dir     string
	count   int
	resolve func(src string) (body []byte, contentType string, handled bool, err error)
}

func (x *imageExtractor) walk(n *html.Node) error {
	if n.Type == html.ElementNode && n.DataAtom == atom.Img {
		if err := x.extract(n); err != nil {
			return err
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if err := x.walk(c); err != nil {
			return err
		}
	}
	return nil
}

func (x *imageExtractor) extract(n *html.Node) error {
	for i, a := range n.Attr {
		if a.Key != "src" {
			continue
		}
		payload, ext, ok := x.load(a.Val)
		if !ok {
			return nil
		}

		if err := os.MkdirAll(x.dir, 0o755); err != nil {
			return fmt.Errorf("creating media directory: %w", err)
		}
		x.count++
		name := fmt.Sprintf("image-%03d%s", x.count, ext)
		if err := os.WriteFile(filepath.Join(x.dir, name), payload, 0o644); err != nil {
			return fmt.Errorf("writing image: %w", err)
		}
		n.Attr[i].Val = mediaSubdir + "/" + name
		return nil
	}
	return nil
}

// load returns the bytes and extension for src, or false when src is not
// an extractable image.
func (x *imageExtractor) load(src string) ([]byte, string, bool) {
	if mediaType, payload, ok := parseDataURI(src); ok {
		ext, ok := dataImageExt[mediaType]
		return payload, ext, ok
	}
	if x.resolve == nil || strings.HasPrefix(src, "data:") {
		return nil, "", false
	}

	body, ctype, handled, err := x.resolve(src)
	if !handled {
		return nil, "", false
	}
	if err != nil {
		log.Warn().Err(err).Str("src", src).Msg("could not load image, keeping link")
		return nil, "", false
	}
	ext, ok := imageExt(body, ctype)
	if !ok {
		log.Warn().Str("src", src).Str("content_type", ctype).Msg("resource is not an image, keeping link")
		return nil, "", false
	}
	return body, ext, true
}

// imageExt sniffs body, falling back to the Content-Type header.
func imageExt(body []byte, contentType string) (string, bool) {
	if ext, ok := dataImageExt[mimetype.Detect(body).String()]; ok {
		return ext, true
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return "", false
	}
	ext, ok := dataImageExt[strings.ToLower(mediaType)]
	return ext, ok
}

// parseDataURI decodes a base64 data: URI, returning its lowercase media
// type and payload. Non-base64 and malformed URIs report false.
func parseDataURI(uri string) (string, []byte, bool) {
	rest, ok := strings.CutPrefix(uri, "data:")
	if !ok {
		return "", nil, false
	}
	header, data, ok := strings.Cut(rest, ",")
	if !ok {
		return "", nil, false
	}
	params := strings.Split(header, ";")
	if params[len(params)-1] != "base64" {
		return "", nil, false
	}

	data = strings.Map(func(r rune) rune {
		if r == ' ' || r == '\n' || r == '\r' || r == '\t' {
			return -1
		}
		return r
	}, data)
	payload, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return "", nil, false
	}
	return strings.ToLower(params[0]), payload, true
}
