package generator

import (
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// EncodeDataRef builds a data-URI image reference from raw image bytes.
func EncodeDataRef(mimeType string, data []byte) string {
	return fmt.Sprintf("data:%s;base64,%s", mimeType, base64.StdEncoding.EncodeToString(data))
}

// EncodeImageFile reads an image file into a data-URI reference, inferring
// the media type from the file extension.
func EncodeImageFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read image file: %w", err)
	}
	return EncodeDataRef(mimeTypeFor(path), data), nil
}

// DecodeDataRef splits a data-URI image reference into its media type and
// raw bytes.
func DecodeDataRef(ref string) (mimeType string, data []byte, err error) {
	inline, err := parseDataRef(ref)
	if err != nil {
		return "", nil, err
	}
	data, err = base64.StdEncoding.DecodeString(inline.Data)
	if err != nil {
		return "", nil, fmt.Errorf("decode image data: %w", err)
	}
	return inline.MimeType, data, nil
}

func mimeTypeFor(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".webp":
		return "image/webp"
	case ".gif":
		return "image/gif"
	default:
		return "image/png"
	}
}
