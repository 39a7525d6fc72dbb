package media_test

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"facade/internal/media"
)

func TestIsURL(t *testing.T) {
	assert.True(t, media.IsURL("https://cdn.example.com/products/a.png"))
	assert.True(t, media.IsURL("http://example.com/a.mp4"))

	assert.False(t, media.IsURL("data:image/png;base64,aGk="))
	assert.False(t, media.IsURL("ftp://example.com/a.png"))
	assert.False(t, media.IsURL("/relative/path.png"))
	assert.False(t, media.IsURL("https://"))
	assert.False(t, media.IsURL(""))
}

func TestParseDataURI(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		ext     string
		payload string
		wantErr bool
	}{
		{name: "png", input: "data:image/png;base64,aGVsbG8=", ext: "png", payload: "aGVsbG8="},
		{name: "jpeg", input: "data:image/jpeg;base64,YQ==", ext: "jpeg", payload: "YQ=="},
		{name: "svg normalizes", input: "data:image/svg+xml;base64,YQ==", ext: "svg", payload: "YQ=="},
		{name: "x-icon normalizes", input: "data:image/x-icon;base64,YQ==", ext: "ico", payload: "YQ=="},
		{name: "video", input: "data:video/mp4;base64,YQ==", ext: "mp4", payload: "YQ=="},
		{name: "uppercase subtype", input: "data:image/PNG;base64,YQ==", ext: "png", payload: "YQ=="},
		{name: "not a data uri", input: "image/png;base64,YQ==", wantErr: true},
		{name: "no payload delimiter", input: "data:image/png;base64", wantErr: true},
		{name: "no subtype", input: "data:image;base64,YQ==", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ext, payload, err := media.ParseDataURI(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.ext, ext)
			assert.Equal(t, tt.payload, payload)
		})
	}
}

func TestSupportedFormat(t *testing.T) {
	for _, ext := range []string{"jpg", "jpeg", "png", "gif", "bmp", "ico", "webp", "svg"} {
		assert.True(t, media.SupportedFormat(media.KindImage, ext), ext)
	}
	for _, ext := range []string{"mp4", "avi", "mov", "wmv", "flv", "webm"} {
		assert.True(t, media.SupportedFormat(media.KindVideo, ext), ext)
	}

	assert.False(t, media.SupportedFormat(media.KindImage, "mp4"))
	assert.False(t, media.SupportedFormat(media.KindVideo, "png"))
	assert.False(t, media.SupportedFormat(media.KindImage, "exe"))
	assert.True(t, media.SupportedFormat(media.KindImage, "PNG"))
}

func TestDecode(t *testing.T) {
	payload := base64.StdEncoding.EncodeToString([]byte("hello"))

	data, err := media.Decode(payload, 0)
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), data)

	_, err = media.Decode("not base64!!!", 0)
	assert.Error(t, err)

	big := base64.StdEncoding.EncodeToString([]byte(strings.Repeat("x", 100)))
	_, err = media.Decode(big, 10)
	assert.Error(t, err)
}

func TestMIMEForExtension(t *testing.T) {
	assert.Equal(t, "image/jpeg", media.MIMEForExtension("jpg"))
	assert.Equal(t, "image/jpeg", media.MIMEForExtension("jpeg"))
	assert.Equal(t, "image/svg+xml", media.MIMEForExtension("svg"))
	assert.Equal(t, "video/mp4", media.MIMEForExtension("mp4"))
	assert.Equal(t, "image/png", media.MIMEForExtension(".png"))
	assert.Equal(t, "application/octet-stream", media.MIMEForExtension("bin"))
}
