package source

import (
	"bytes"
	"fmt"
	"io"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

var (
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
)

// decode returns the UTF-8 text of data. A UTF-8 or UTF-16 byte order mark is
// honored and stripped. Anything else that is not valid UTF-8 is read as
// Windows-1252, the encoding the Superstore sample is usually distributed in.
func decode(data []byte) ([]byte, error) {
	if !utf8.Valid(data) && !bytes.HasPrefix(data, bomUTF16LE) && !bytes.HasPrefix(data, bomUTF16BE) {
		out, err := charmap.Windows1252.NewDecoder().Bytes(data)
		if err != nil {
			return nil, fmt.Errorf("failed to decode source as Windows-1252: %w", err)
		}
		return out, nil
	}

	bom := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	out, err := io.ReadAll(transform.NewReader(bytes.NewReader(data), bom))
	if err != nil {
		return nil, fmt.Errorf("failed to decode source: %w", err)
	}
	return out, nil
}
