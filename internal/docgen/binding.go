package docgen

import (
	"encoding/base64"
	"fmt"
	"strings"
)

// Binding supplies values for a template's placeholders. Fields and Images
// resolve {{key}} and {%key} tokens at document scope; Rows supplies the row
// sequences for {#name}...{/name} loop blocks. Within a cloned row, row-scoped
// values win over document-scoped ones. Keys with no binding entry render as
// the empty string.
type Binding struct {
	Fields map[string]string
	Images map[string]Image
	Rows   map[string][]Row
}

// Row is one element of a loop block's data sequence.
type Row struct {
	Values map[string]string
	Images map[string]Image
}

// Image is a binary image payload. A zero Image renders as nothing: the
// placeholder run is removed and the surrounding structure kept. Images are
// embedded at a fixed 120x90 px box; aspect ratio is not preserved, callers
// wanting it must pre-crop or pad before binding.
type Image struct {
	Data []byte
}

// ImageFromBase64 decodes a base64 payload (optionally a data: URI) into an
// Image. An empty string yields an empty Image.
func ImageFromBase64(s string) (Image, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Image{}, nil
	}
	if i := strings.Index(s, ";base64,"); i >= 0 && strings.HasPrefix(s, "data:") {
		s = s[i+len(";base64,"):]
	}
	data, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		// Some producers emit unpadded payloads.
		data, err = base64.RawStdEncoding.DecodeString(s)
		if err != nil {
			return Image{}, fmt.Errorf("decode image payload: %w", err)
		}
	}
	return Image{Data: data}, nil
}
