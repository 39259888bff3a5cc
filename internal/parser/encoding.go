package parser

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// Encoding names a single-byte or UTF-8 text encoding.
type Encoding string

const (
	Latin1      Encoding = "latin1"
	Windows1252 Encoding = "windows-1252"
	UTF8        Encoding = "utf-8"
)

// ParseEncoding normalizes common aliases.
func ParseEncoding(s string) (Encoding, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "latin1", "latin-1", "iso-8859-1", "iso8859-1", "l1":
		return Latin1, nil
	case "windows-1252", "cp1252", "win1252":
		return Windows1252, nil
	case "utf-8", "utf8":
		return UTF8, nil
	default:
		return "", fmt.Errorf("unsupported encoding: %s (use latin1, windows-1252 or utf-8)", s)
	}
}

// DecodeError reports bytes that are not valid in the configured encoding.
type DecodeError struct {
	Encoding Encoding
	Offset   int
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s: invalid byte sequence at offset %d", e.Encoding, e.Offset)
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// decodeReader wraps r so it yields UTF-8 text.
func decodeReader(r io.Reader, enc Encoding) (io.Reader, error) {
	switch enc {
	case "", Latin1:
		return charmap.ISO8859_1.NewDecoder().Reader(r), nil
	case Windows1252:
		return charmap.Windows1252.NewDecoder().Reader(r), nil
	case UTF8:
		b, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("read dataset: %w", err)
		}
		b = bytes.TrimPrefix(b, utf8BOM)
		if !utf8.Valid(b) {
			return nil, &DecodeError{Encoding: UTF8, Offset: firstInvalid(b)}
		}
		return bytes.NewReader(b), nil
	default:
		return nil, fmt.Errorf("unsupported encoding: %s", enc)
	}
}

func firstInvalid(b []byte) int {
	for i := 0; i < len(b); {
		r, size := utf8.DecodeRune(b[i:])
		if r == utf8.RuneError && size <= 1 {
			return i
		}
		i += size
	}
	return len(b)
}
