// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package clipboard

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/pb2obsidian/pkg/types"
)

// fakeReader serves canned payloads per format.
type fakeReader struct {
	data map[types.SourceFormat][]byte
	errs map[types.SourceFormat]error
}

func (f *fakeReader) Name() string { return "fake" }

func (f *fakeReader) Read(format types.SourceFormat) ([]byte, error) {
	if err, ok := f.errs[format]; ok {
		return nil, err
	}
	if d, ok := f.data[format]; ok {
		return d, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrFormatUnavailable, format)
}

func TestDetect(t *testing.T) {
	tests := []struct {
		name       string
		reader     *fakeReader
		wantFormat types.SourceFormat
		wantData   string
		wantErr    error
	}{
		{
			name: "rtf preferred over html",
			reader: &fakeReader{data: map[types.SourceFormat][]byte{
				types.FormatRTF:  []byte(`{\rtf1 hi}`),
				types.FormatHTML: []byte("<p>hi</p>"),
			}},
			wantFormat: types.FormatRTF,
			wantData:   `{\rtf1 hi}`,
		},
		{
			name: "html fallback",
			reader: &fakeReader{data: map[types.SourceFormat][]byte{
				types.FormatHTML: []byte("<p>hi</p>"),
			}},
			wantFormat: types.FormatHTML,
			wantData:   "<p>hi</p>",
		},
		{
			name: "empty rtf falls through to html",
			reader: &fakeReader{data: map[types.SourceFormat][]byte{
				types.FormatRTF:  {},
				types.FormatHTML: []byte("<b>x</b>"),
			}},
			wantFormat: types.FormatHTML,
			wantData:   "<b>x</b>",
		},
		{
			name:    "nothing rich",
			reader:  &fakeReader{},
			wantErr: ErrNoRichText,
		},
		{
			name: "read failure is reported",
			reader: &fakeReader{errs: map[types.SourceFormat]error{
				types.FormatRTF: errors.New("xclip: exit status 1"),
			}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			format, data, err := Detect(tt.reader)
			if tt.wantFormat == "" {
				require.Error(t, err)
				if tt.wantErr != nil {
					assert.ErrorIs(t, err, tt.wantErr)
				}
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantFormat, format)
			assert.Equal(t, tt.wantData, string(data))
		})
	}
}

// mockExecutor answers Run calls keyed by "bin arg1 arg2".
type mockExecutor struct {
	bins    map[string]bool
	outputs map[string]string
	calls   []string
}

func (m *mockExecutor) LookPath(file string) (string, error) {
	if m.bins[file] {
		return "/usr/bin/" + file, nil
	}
	return "", errors.New("not found: " + file)
}

func (m *mockExecutor) Run(name string, args []string, stdin io.Reader, stdout io.Writer) error {
	key := name + " " + strings.Join(args, " ")
	m.calls = append(m.calls, key)
	out, ok := m.outputs[key]
	if !ok {
		return errors.New("command failed: " + key)
	}
	_, err := io.WriteString(stdout, out)
	return err
}

func TestDetectReader(t *testing.T) {
	tests := []struct {
		name     string
		goos     string
		env      map[string]string
		bins     map[string]bool
		wantName string
	}{
		{name: "macOS", goos: "darwin", bins: map[string]bool{"osascript": true}, wantName: "osascript"},
		{
			name: "wayland preferred over x11", goos: "linux",
			env:  map[string]string{"WAYLAND_DISPLAY": "wayland-0", "DISPLAY": ":0"},
			bins: map[string]bool{"wl-paste": true, "xclip": true}, wantName: "wl-paste",
		},
		{
			name: "x11 when wl-paste missing", goos: "linux",
			env:  map[string]string{"WAYLAND_DISPLAY": "wayland-0", "DISPLAY": ":0"},
			bins: map[string]bool{"xclip": true}, wantName: "xclip",
		},
		{name: "headless", goos: "linux", bins: map[string]bool{"xclip": true}},
		{name: "darwin without osascript", goos: "darwin"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exec := &mockExecutor{bins: tt.bins}
			r, err := detectReader(exec, tt.goos, func(k string) string { return tt.env[k] })
			if tt.wantName == "" {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrNoClipboard)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, r.Name())
		})
	}
}

func TestX11Reader(t *testing.T) {
	exec := &mockExecutor{outputs: map[string]string{
		"xclip -selection clipboard -t TARGETS -o":   "TARGETS\nUTF8_STRING\ntext/html\napplication/rtf\n",
		"xclip -selection clipboard -t application/rtf -o": `{\rtf1 x}`,
		"xclip -selection clipboard -t text/html -o":       "<p>x</p>",
	}}
	r := newX11Reader(exec)

	data, err := r.Read(types.FormatRTF)
	require.NoError(t, err)
	assert.Equal(t, `{\rtf1 x}`, string(data))

	data, err = r.Read(types.FormatHTML)
	require.NoError(t, err)
	assert.Equal(t, "<p>x</p>", string(data))
}

func TestWaylandReaderMissingFormat(t *testing.T) {
	exec := &mockExecutor{outputs: map[string]string{
		"wl-paste --list-types": "text/plain\ntext/plain;charset=utf-8\n",
	}}
	r := newWaylandReader(exec)

	_, err := r.Read(types.FormatRTF)
	assert.ErrorIs(t, err, ErrFormatUnavailable)

	// An empty clipboard makes --list-types fail.
	empty := newWaylandReader(&mockExecutor{})
	_, err = empty.Read(types.FormatHTML)
	assert.ErrorIs(t, err, ErrFormatUnavailable)
}

func TestWaylandReaderEndToEndDetect(t *testing.T) {
	exec := &mockExecutor{outputs: map[string]string{
		"wl-paste --list-types":                 "text/html\ntext/plain\n",
		"wl-paste --no-newline --type text/html": `<p>Hello <img src="data/pic.png"></p>`,
	}}
	format, data, err := Detect(newWaylandReader(exec))
	require.NoError(t, err)
	assert.Equal(t, types.FormatHTML, format)
	assert.Equal(t, `<p>Hello <img src="data/pic.png"></p>`, string(data))
}

func TestMacReader(t *testing.T) {
	exec := &mockExecutor{outputs: map[string]string{
		"osascript -e get the clipboard as «class RTF »": "«data RTF 7B5C72746631207D»\n",
	}}
	r := newMacReader(exec)

	data, err := r.Read(types.FormatRTF)
	require.NoError(t, err)
	assert.Equal(t, `{\rtf1 }`, string(data))

	_, err = r.Read(types.FormatHTML)
	assert.ErrorIs(t, err, ErrFormatUnavailable)
}

func TestDecodeAppleData(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{name: "rtf class", in: "«data RTF 7B7D»", want: "{}"},
		{name: "html class", in: "«data HTML3C703E»\n", want: "<p>"},
		{name: "plain text output", in: "hello", wantErr: true},
		{name: "bad hex", in: "«data HTMLZZ»", wantErr: true},
		{name: "truncated", in: "«data HT»", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := decodeAppleData(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(got))
		})
	}
}
