package filestore

import (
	"encoding/json"
	"strings"
)

// MetadataType discriminates the FileMetadata union.
type MetadataType string

// The four metadata cases. Every content type maps to exactly one of them.
const (
	MetadataImage MetadataType = "image"
	MetadataVideo MetadataType = "video"
	MetadataText  MetadataType = "text"
	MetadataOther MetadataType = "other"
)

// FileMetadata is a tagged union over the content type of a file. Dimensions
// are populated for image and video only, and may still be nil there when the
// media headers could not be parsed.
type FileMetadata struct {
	Type   MetadataType
	Width  *int
	Height *int
}

type metadataJSON struct {
	Type   MetadataType `json:"type"`
	Width  *int         `json:"width,omitempty"`
	Height *int         `json:"height,omitempty"`
}

// MarshalJSON encodes the union with its discriminator; text and other carry
// no dimensions regardless of struct contents.
func (m FileMetadata) MarshalJSON() ([]byte, error) {
	out := metadataJSON{Type: m.Type}
	if m.Type == MetadataImage || m.Type == MetadataVideo {
		out.Width = m.Width
		out.Height = m.Height
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes the union, dropping dimensions on non-media cases.
func (m *FileMetadata) UnmarshalJSON(data []byte) error {
	var in metadataJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	m.Type = in.Type
	m.Width, m.Height = nil, nil
	if in.Type == MetadataImage || in.Type == MetadataVideo {
		m.Width, m.Height = in.Width, in.Height
	}
	return nil
}

// metadataFor maps a MIME type and optional dimensions onto the union.
func metadataFor(contentType string, width, height *int) FileMetadata {
	base := contentType
	if i := strings.IndexByte(base, ';'); i >= 0 {
		base = strings.TrimSpace(base[:i])
	}

	switch {
	case strings.HasPrefix(base, "image/"):
		return FileMetadata{Type: MetadataImage, Width: width, Height: height}
	case strings.HasPrefix(base, "video/"):
		return FileMetadata{Type: MetadataVideo, Width: width, Height: height}
	case strings.HasPrefix(base, "text/"):
		return FileMetadata{Type: MetadataText}
	default:
		return FileMetadata{Type: MetadataOther}
	}
}
