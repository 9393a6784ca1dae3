// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package imageref

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeResizer records calls and reports images wider than maxWidth as
// resized, using the widths map keyed by base filename.
type fakeResizer struct {
	widths map[string]int
	err    error
	calls  []string
}

func (f *fakeResizer) Resize(path string, maxWidth int) (bool, error) {
	f.calls = append(f.calls, path)
	if f.err != nil {
		return false, f.err
	}
	return f.widths[filepath.Base(path)] > maxWidth, nil
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestNewName(t *testing.T) {
	tests := []struct {
		base string
		seq  int
		ext  string
		want string
	}{
		{base: "my_notes", seq: 1, ext: ".png", want: "my_notes.image-001.png"},
		{base: "my_notes", seq: 12, ext: ".JPG", want: "my_notes.image-012.JPG"},
		{base: "clipboard-20260201-090000", seq: 999, ext: ".gif", want: "clipboard-20260201-090000.image-999.gif"},
		{base: "x", seq: 3, ext: "", want: "x.image-003.png"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, NewName(tt.base, tt.seq, tt.ext))
		})
	}
}

func TestIsImage(t *testing.T) {
	assert.True(t, IsImage("a.png"))
	assert.True(t, IsImage("/x/y/B.JPEG"))
	assert.True(t, IsImage("scan.TIF"))
	assert.True(t, IsImage("logo.svg"))
	assert.False(t, IsImage("notes.md"))
	assert.False(t, IsImage("noext"))
	assert.False(t, IsImage("archive.png.zip"))
}

func TestDiscover(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "b.png"), "b")
	writeFile(t, filepath.Join(root, "media", "a.JPG"), "a")
	writeFile(t, filepath.Join(root, "media", "c.webp"), "c")
	writeFile(t, filepath.Join(root, "media", "deep", "d.svg"), "d")
	writeFile(t, filepath.Join(root, "notes.txt"), "not an image")
	writeFile(t, filepath.Join(root, "noext"), "no extension")
	require.NoError(t, os.Mkdir(filepath.Join(root, "folder.png"), 0o755))

	got, err := Discover(root)
	require.NoError(t, err)

	want := []string{
		filepath.Join(root, "b.png"),
		filepath.Join(root, "media", "a.JPG"),
		filepath.Join(root, "media", "c.webp"),
		filepath.Join(root, "media", "deep", "d.svg"),
	}
	assert.Equal(t, want, got)

	again, err := Discover(root)
	require.NoError(t, err)
	assert.Equal(t, got, again, "discovery order must be stable")
}

func TestDiscoverEmptyAndMissing(t *testing.T) {
	got, err := Discover(t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = Discover(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}

func TestProcess(t *testing.T) {
	root := t.TempDir()
	dest := t.TempDir()
	second := filepath.Join(root, "media", "rId9.png")
	first := filepath.Join(root, "media", "rId10.jpeg")
	writeFile(t, second, "second")
	writeFile(t, first, "first")

	markdown := "Intro\n\n![](" + second + ")![chart](" + first + ")\n\nEnd <img src=\"media/rId9.png\" width=\"20\" />\n"

	res, err := Process(markdown, root, Options{BaseName: "my_notes", DestDir: dest})
	require.NoError(t, err)

	// rId10.jpeg sorts before rId9.png.
	require.Len(t, res.Images, 2)
	assert.Equal(t, "my_notes.image-001.jpeg", res.Images[0].Name)
	assert.Equal(t, first, res.Images[0].Source)
	assert.Equal(t, "media/rId10.jpeg", res.Images[0].Relative)
	assert.Equal(t, "my_notes.image-002.png", res.Images[1].Name)
	assert.Equal(t, filepath.Join(dest, "my_notes.image-002.png"), res.Images[1].Path)

	assert.Equal(t,
		"Intro\n\n![[my_notes.image-002.png]] ![[my_notes.image-001.jpeg]]\n\nEnd ![[my_notes.image-002.png]]\n",
		res.Markdown)

	data, err := os.ReadFile(filepath.Join(dest, "my_notes.image-001.jpeg"))
	require.NoError(t, err)
	assert.Equal(t, "first", string(data))
	data, err = os.ReadFile(filepath.Join(dest, "my_notes.image-002.png"))
	require.NoError(t, err)
	assert.Equal(t, "second", string(data))

	left, err := Discover(root)
	require.NoError(t, err)
	assert.Empty(t, left, "all images should have moved to the destination")

	_, err = os.Stat(filepath.Join(root, "media"))
	assert.True(t, os.IsNotExist(err), "empty media directory should be removed")
}

func TestProcessInPlace(t *testing.T) {
	root := t.TempDir()
	src := filepath.Join(root, "image1.gif")
	writeFile(t, src, "gif")

	res, err := Process("![]("+src+")", root, Options{BaseName: "n"})
	require.NoError(t, err)
	require.Len(t, res.Images, 1)
	assert.Equal(t, filepath.Join(root, "n.image-001.gif"), res.Images[0].Path)
	assert.Equal(t, "![[n.image-001.gif]]", res.Markdown)
	assert.FileExists(t, filepath.Join(root, "n.image-001.gif"))
	assert.NoFileExists(t, src)
}

func TestProcessNumberingIsContiguous(t *testing.T) {
	root := t.TempDir()
	dest := t.TempDir()
	for _, name := range []string{"e.png", "a.png", "c.gif", "b.jpg", "d.bmp"} {
		writeFile(t, filepath.Join(root, "media", name), name)
	}

	res, err := Process("", root, Options{BaseName: "base", DestDir: dest})
	require.NoError(t, err)

	want := []string{
		"base.image-001.png", // a.png
		"base.image-002.jpg", // b.jpg
		"base.image-003.gif", // c.gif
		"base.image-004.bmp", // d.bmp
		"base.image-005.png", // e.png
	}
	entries, err := os.ReadDir(dest)
	require.NoError(t, err)
	var got []string
	for _, e := range entries {
		got = append(got, e.Name())
	}
	assert.ElementsMatch(t, want, got)

	for i, img := range res.Images {
		assert.Equal(t, i+1, img.Seq)
		assert.Equal(t, want[i], img.Name)
	}
}

func TestProcessResize(t *testing.T) {
	root := t.TempDir()
	dest := t.TempDir()
	writeFile(t, filepath.Join(root, "big.png"), "big")
	writeFile(t, filepath.Join(root, "small.png"), "small")

	r := &fakeResizer{widths: map[string]int{
		"n.image-001.png": 2000,
		"n.image-002.png": 400,
	}}
	res, err := Process("", root, Options{BaseName: "n", DestDir: dest, MaxWidth: 800, Resizer: r})
	require.NoError(t, err)

	// Resizing happens on the staged file, before the move to dest.
	assert.Equal(t, []string{
		filepath.Join(root, "n.image-001.png"),
		filepath.Join(root, "n.image-002.png"),
	}, r.calls)
	assert.True(t, res.Images[0].Resized)
	assert.False(t, res.Images[1].Resized)
}

func TestProcessResizeDisabled(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.png"), "a")

	r := &fakeResizer{}
	_, err := Process("", root, Options{BaseName: "n", Resizer: r})
	require.NoError(t, err)
	assert.Empty(t, r.calls)
}

func TestProcessResizeErrorAborts(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.png"), "a")

	r := &fakeResizer{err: errors.New("corrupt image")}
	_, err := Process("", root, Options{BaseName: "n", MaxWidth: 10, Resizer: r})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "corrupt image")
	assert.Contains(t, err.Error(), "n.image-001.png")
}

func TestProcessMoveErrorAborts(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.png"), "a")

	// Destination is a file, so it cannot hold the image.
	dest := filepath.Join(t.TempDir(), "not-a-dir")
	writeFile(t, dest, "")

	_, err := Process("", root, Options{BaseName: "n", DestDir: dest})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "moving")
}

func TestProcessNoImages(t *testing.T) {
	root := t.TempDir()
	markdown := "Logo <img src=\"https://example.com/logo.png\"> and ![x](https://example.com/a.gif)\n"

	res, err := Process(markdown, root, Options{BaseName: "n"})
	require.NoError(t, err)
	assert.Empty(t, res.Images)
	assert.Equal(t, "Logo ![[https://example.com/logo.png]] and ![[https://example.com/a.gif]]\n", res.Markdown)
}

func TestCleanup(t *testing.T) {
	t.Run("removes empty media directory", func(t *testing.T) {
		root := t.TempDir()
		require.NoError(t, os.Mkdir(filepath.Join(root, "media"), 0o755))
		Cleanup(root)
		assert.NoDirExists(t, filepath.Join(root, "media"))
	})

	t.Run("keeps non-empty media directory", func(t *testing.T) {
		root := t.TempDir()
		writeFile(t, filepath.Join(root, "media", "stray.txt"), "x")
		Cleanup(root)
		assert.FileExists(t, filepath.Join(root, "media", "stray.txt"))
	})

	t.Run("absent media directory is fine", func(t *testing.T) {
		root := t.TempDir()
		Cleanup(root)
		assert.DirExists(t, root)
	})
}
