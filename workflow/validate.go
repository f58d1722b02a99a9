package workflow

import (
	"encoding/base64"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// MaxFileSize is the largest image the backend accepts
const MaxFileSize = 10 * 1024 * 1024

// Validate checks a file descriptor before it may become the selection
func Validate(f *File) error {
	if f == nil || !strings.HasPrefix(f.MediaType, "image/") {
		return &ValidationError{Message: msgInvalidType}
	}
	if f.Size > MaxFileSize {
		return &ValidationError{Message: msgTooLarge}
	}
	return nil
}

// DescribeFile builds a descriptor for path. The media type comes from the
// extension, with content sniffing when the extension is unknown.
func DescribeFile(path string) (*File, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", path)
	}

	mediaType := mime.TypeByExtension(strings.ToLower(filepath.Ext(path)))
	if mediaType == "" {
		mediaType, err = sniff(path)
		if err != nil {
			return nil, err
		}
	}
	if i := strings.IndexByte(mediaType, ';'); i >= 0 {
		mediaType = strings.TrimSpace(mediaType[:i])
	}

	return &File{
		Path:      path,
		Name:      filepath.Base(path),
		MediaType: mediaType,
		Size:      info.Size(),
	}, nil
}

func sniff(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	buf := make([]byte, 512)
	n, err := io.ReadFull(f, buf)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return "", fmt.Errorf("failed to read file: %w", err)
	}
	return http.DetectContentType(buf[:n]), nil
}

// ParseAudioDataURL decodes a "data:audio/...;base64,..." narration payload
func ParseAudioDataURL(dataURL string) (*AudioAsset, error) {
	rest, ok := strings.CutPrefix(dataURL, "data:")
	if !ok {
		return nil, fmt.Errorf("audio data is not a data URL")
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return nil, fmt.Errorf("audio data URL has no payload")
	}
	mediaType, ok := strings.CutSuffix(meta, ";base64")
	if !ok {
		return nil, fmt.Errorf("audio data URL is not base64 encoded")
	}
	if !strings.HasPrefix(mediaType, "audio/") {
		return nil, fmt.Errorf("unexpected audio media type %q", mediaType)
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to decode audio data: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("audio data is empty")
	}
	return &AudioAsset{MediaType: mediaType, Data: data}, nil
}
