package payroll

import (
	"bytes"
	"fmt"
	"io"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// decode converts raw payroll export bytes into UTF-8. A byte order mark selects UTF-8/UTF-16;
// without one, valid UTF-8 passes through and anything else is read as Windows-1252, the usual
// output of spreadsheet exports on government desktops.
func decode(data []byte) ([]byte, string, error) {
	name := detectEncoding(data)

	fallback := encoding.Nop.NewDecoder()
	if name == "windows-1252" {
		fallback = charmap.Windows1252.NewDecoder()
	}

	out, err := io.ReadAll(transform.NewReader(bytes.NewReader(data), unicode.BOMOverride(fallback)))
	if err != nil {
		return nil, name, fmt.Errorf("failed to decode %s input: %w", name, err)
	}
	return out, name, nil
}

func detectEncoding(data []byte) string {
	switch {
	case bytes.HasPrefix(data, []byte{0xEF, 0xBB, 0xBF}):
		return "utf-8-bom"
	case bytes.HasPrefix(data, []byte{0xFF, 0xFE}):
		return "utf-16le"
	case bytes.HasPrefix(data, []byte{0xFE, 0xFF}):
		return "utf-16be"
	case utf8.Valid(data):
		return "utf-8"
	default:
		return "windows-1252"
	}
}
