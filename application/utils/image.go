package utils

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"strings"

	_ "golang.org/x/image/webp"
)

// MaxStillBytes bounds a decoded still frame.
const MaxStillBytes = 8 << 20

var ErrInvalidImage = errors.New("invalid image format")

// DecodeBase64Image decodes a base64 still frame, with or without a data URL
// prefix, and checks that it is a jpeg, png or webp image.
func DecodeBase64Image(encoded string) ([]byte, error) {
	encoded = strings.TrimSpace(encoded)
	if i := strings.Index(encoded, ";base64,"); strings.HasPrefix(encoded, "data:") && i >= 0 {
		encoded = encoded[i+len(";base64,"):]
	}
	if encoded == "" {
		return nil, ErrInvalidImage
	}
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		raw, err = base64.RawStdEncoding.DecodeString(encoded)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidImage, err)
		}
	}
	if len(raw) > MaxStillBytes {
		return nil, fmt.Errorf("%w: image larger than %d bytes", ErrInvalidImage, MaxStillBytes)
	}
	if _, _, err := ImageFormat(raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// ImageFormat returns the registered format name and size of an encoded image.
func ImageFormat(raw []byte) (string, image.Point, error) {
	config, format, err := image.DecodeConfig(bytes.NewReader(raw))
	if err != nil {
		return "", image.Point{}, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}
	if config.Width == 0 || config.Height == 0 {
		return "", image.Point{}, fmt.Errorf("%w: empty image", ErrInvalidImage)
	}
	return format, image.Point{X: config.Width, Y: config.Height}, nil
}

// ContentType maps a registered image format to its MIME type.
func ContentType(format string) string {
	switch format {
	case "png":
		return "image/png"
	case "webp":
		return "image/webp"
	}
	return "image/jpeg"
}
