package utils

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngFixture(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 3))
	img.Set(1, 1, color.RGBA{R: 200, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestDecodeBase64Image(t *testing.T) {
	raw := pngFixture(t)
	encoded := base64.StdEncoding.EncodeToString(raw)

	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{name: "plain base64", input: encoded},
		{name: "data url", input: "data:image/png;base64," + encoded},
		{name: "unpadded", input: base64.RawStdEncoding.EncodeToString(raw)},
		{name: "empty", input: "", wantErr: true},
		{name: "not base64", input: "%%%", wantErr: true},
		{name: "not an image", input: base64.StdEncoding.EncodeToString([]byte("hello world")), wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decoded, err := DecodeBase64Image(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidImage)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, raw, decoded)
		})
	}
}

func TestImageFormat(t *testing.T) {
	format, size, err := ImageFormat(pngFixture(t))
	require.NoError(t, err)
	assert.Equal(t, "png", format)
	assert.Equal(t, image.Point{X: 4, Y: 3}, size)
	assert.Equal(t, "image/png", ContentType(format))
	assert.Equal(t, "image/jpeg", ContentType("jpeg"))
}
