package llm

import (
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joseph-ayodele/cadastre-extractor/constants"
)

// MaxImageBytes bounds the page images sent to a vision backend.
const MaxImageBytes = 20 * 1024 * 1024

// ReadImage loads a page image as base64 with its media type.
func ReadImage(path string) (data, mediaType string, err error) {
	st, err := os.Stat(path)
	if err != nil {
		return "", "", err
	}
	if st.Size() > MaxImageBytes {
		return "", "", fmt.Errorf("image %s is %d bytes, limit %d", filepath.Base(path), st.Size(), MaxImageBytes)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return "", "", err
	}
	ext := constants.NormalizeExt(filepath.Ext(path))
	return base64.StdEncoding.EncodeToString(b), constants.MimeForExt(ext), nil
}

// DataURL renders req's image as a data URL.
func DataURL(req VisionRequest) string {
	return "data:" + req.MediaType + ";base64," + req.ImageBase64
}
