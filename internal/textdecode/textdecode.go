// Package textdecode recovers text from raw entry bytes using a fixed
// encoding fallback chain: strict UTF-8 first, then GBK.
package textdecode

import (
	"errors"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/simplifiedchinese"
)

// Encoding names the decoder that produced a Text.
type Encoding string

const (
	UTF8 Encoding = "utf-8"
	GBK  Encoding = "gbk"
)

// ErrNotText is returned when the bytes are neither valid UTF-8 nor cleanly
// decodable as GBK.
var ErrNotText = errors.New("not a text file")

// Text is decoded content plus the encoding that succeeded.
type Text struct {
	Content  string
	Encoding Encoding
}

// Decode tries UTF-8, then GBK. A GBK decode that had to substitute
// unmappable sequences is reported as ErrNotText.
func Decode(b []byte) (Text, error) {
	if utf8.Valid(b) {
		return Text{Content: string(b), Encoding: UTF8}, nil
	}
	s, lossy := decodeGBK(b)
	if lossy {
		return Text{}, ErrNotText
	}
	return Text{Content: s, Encoding: GBK}, nil
}

// DecodeGBK decodes b as GBK unconditionally, accepting substitutions.
func DecodeGBK(b []byte) Text {
	s, _ := decodeGBK(b)
	return Text{Content: s, Encoding: GBK}
}

// DecodeName decodes an archive entry name. Names never fail: invalid
// sequences are substituted and the best-effort result is returned.
func DecodeName(raw string) string {
	if utf8.ValidString(raw) {
		return raw
	}
	s, _ := decodeGBK([]byte(raw))
	return s
}

func decodeGBK(b []byte) (string, bool) {
	out, err := simplifiedchinese.GBK.NewDecoder().Bytes(b)
	if err != nil {
		return string(out), true
	}
	s := string(out)
	return s, strings.ContainsRune(s, utf8.RuneError)
}
