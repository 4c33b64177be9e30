// Package encoding provides text decoding helpers for embedded chunk strings.
package encoding

import (
	"bytes"
	"errors"
	"strings"
	"unicode"

	xencoding "golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// ErrInvalidUTF8 is returned when text is not valid UTF-8.
var ErrInvalidUTF8 = errors.New("invalid UTF-8 text")

// DecodeUTF8 validates data as UTF-8 and returns it as a string.
func DecodeUTF8(data []byte) (string, error) {
	result, _, err := transform.Bytes(xencoding.UTF8Validator, data)
	if err != nil {
		return "", ErrInvalidUTF8
	}
	return string(result), nil
}

// TrimText trims surrounding whitespace and then trailing NUL characters.
func TrimText(s string) string {
	s = strings.TrimSpace(s)
	return strings.TrimRight(s, "\x00")
}

// DecodeText validates data as UTF-8 and trims it with TrimText.
func DecodeText(data []byte) (string, error) {
	s, err := DecodeUTF8(data)
	if err != nil {
		return "", err
	}
	return TrimText(s), nil
}

// FixedString converts a fixed-size single-byte name field to a string.
// Decoding stops at the first NUL; bytes above 0x7f are mapped through Latin-1.
func FixedString(data []byte) string {
	if i := bytes.IndexByte(data, 0); i >= 0 {
		data = data[:i]
	}
	if isASCII(data) {
		return string(data)
	}
	result, _, err := transform.Bytes(charmap.ISO8859_1.NewDecoder(), data)
	if err != nil {
		return string(data)
	}
	return string(result)
}

// StringToFixed encodes s into a zero-padded buffer of the given size.
// Characters outside Latin-1 are replaced; overlong input is truncated.
func StringToFixed(s string, size int) []byte {
	result := make([]byte, size)
	encoded, _, err := transform.Bytes(charmap.ISO8859_1.NewEncoder(), []byte(s))
	if err != nil {
		encoded = []byte(s)
	}
	copy(result, encoded)
	return result
}

func isASCII(data []byte) bool {
	for _, b := range data {
		if b > unicode.MaxASCII {
			return false
		}
	}
	return true
}
