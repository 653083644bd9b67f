// Package source decodes raw file contents into analyzable text.
// UTF-8 (with or without a byte order mark) and UTF-16 of either
// endianness are accepted; everything else is rejected up front since
// no later pass could recover from garbled input.
package source

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/cvet-dev/cvet/cvet/errors"
)

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16BE = []byte{0xFE, 0xFF}
	bomUTF16LE = []byte{0xFF, 0xFE}
)

// Decode converts raw bytes into source text.
func Decode(raw []byte, filename string) (string, *errors.Error) {
	switch {
	case bytes.HasPrefix(raw, bomUTF16BE):
		return decodeUTF16(raw, unicode.BigEndian, filename)
	case bytes.HasPrefix(raw, bomUTF16LE):
		return decodeUTF16(raw, unicode.LittleEndian, filename)
	default:
		raw = bytes.TrimPrefix(raw, bomUTF8)
		if !utf8.Valid(raw) {
			return "", encodingError(filename, fmt.Sprintf(
				"invalid UTF-8 byte at offset %d", firstInvalidOffset(raw),
			))
		}
		return rejectNul(string(raw), filename)
	}
}

// rejectNul refuses NUL bytes; they are valid UTF-8 but mark binary
// input, and the phases index source text by byte offset.
func rejectNul(program string, filename string) (string, *errors.Error) {
	if offset := strings.IndexByte(program, 0); offset >= 0 {
		return "", encodingError(filename, fmt.Sprintf(
			"NUL byte at offset %d, input looks binary", offset,
		))
	}
	return program, nil
}

func decodeUTF16(raw []byte, endianness unicode.Endianness, filename string) (string, *errors.Error) {
	if len(raw)%2 != 0 {
		return "", encodingError(filename, "UTF-16 input has an odd number of bytes")
	}
	decoder := unicode.UTF16(endianness, unicode.UseBOM).NewDecoder()
	decoded, _, err := transform.Bytes(decoder, raw)
	if err != nil {
		return "", encodingError(filename, fmt.Sprintf("cannot decode UTF-16: %s", err))
	}
	return rejectNul(string(decoded), filename)
}

func firstInvalidOffset(raw []byte) int {
	for offset := 0; offset < len(raw); {
		r, size := utf8.DecodeRune(raw[offset:])
		if r == utf8.RuneError && size == 1 {
			return offset
		}
		offset += size
	}
	return len(raw)
}

func encodingError(filename string, reason string) *errors.Error {
	return errors.NewError(
		errors.Span{Filename: filename},
		fmt.Sprintf("Cannot decode source file: %s", reason),
		errors.EncodingError,
	)
}
