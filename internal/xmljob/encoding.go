package xmljob

import (
	"bytes"
	"io"

	"github.com/cockroachdb/errors"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
)

var (
	bomUTF8    = []byte{0xef, 0xbb, 0xbf}
	bomUTF16LE = []byte{0xff, 0xfe}
	bomUTF16BE = []byte{0xfe, 0xff}
)

// Encoding names the byte encoding detected by DetectEncoding.
type Encoding int

const (
	EncodingUTF8 Encoding = iota
	EncodingUTF16LE
	EncodingUTF16BE
)

func (e Encoding) String() string {
	switch e {
	case EncodingUTF16LE:
		return "utf-16le"
	case EncodingUTF16BE:
		return "utf-16be"
	default:
		return "utf-8"
	}
}

// DetectEncoding inspects the first bytes of a document. UTF-16 is
// recognized by its byte-order mark, or without one by the zero byte
// that ASCII markup leaves in every other position.
func DetectEncoding(data []byte) (enc Encoding, hasBOM bool) {
	switch {
	case bytes.HasPrefix(data, bomUTF16LE):
		return EncodingUTF16LE, true
	case bytes.HasPrefix(data, bomUTF16BE):
		return EncodingUTF16BE, true
	case bytes.HasPrefix(data, bomUTF8):
		return EncodingUTF8, true
	case len(data) >= 2 && data[0] != 0 && data[1] == 0:
		return EncodingUTF16LE, false
	case len(data) >= 2 && data[0] == 0 && data[1] != 0:
		return EncodingUTF16BE, false
	}
	return EncodingUTF8, false
}

// ToUTF8 transcodes data to UTF-8 and strips any byte-order mark.
// Invalid UTF-16 sequences become U+FFFD.
func ToUTF8(data []byte) ([]byte, error) {
	enc, hasBOM := DetectEncoding(data)
	var dec encoding.Encoding
	switch enc {
	case EncodingUTF16LE:
		dec = unicode.UTF16(unicode.LittleEndian, bomPolicy(hasBOM))
	case EncodingUTF16BE:
		dec = unicode.UTF16(unicode.BigEndian, bomPolicy(hasBOM))
	default:
		if hasBOM {
			return data[len(bomUTF8):], nil
		}
		return data, nil
	}

	out, err := dec.NewDecoder().Bytes(data)
	if err != nil {
		return nil, errors.Wrapf(err, "transcoding %s", enc)
	}
	return out, nil
}

func bomPolicy(hasBOM bool) unicode.BOMPolicy {
	if hasBOM {
		return unicode.ExpectBOM
	}
	return unicode.IgnoreBOM
}

// passthroughCharset accepts the encoding named in the XML declaration.
// The input has already been transcoded to UTF-8 by ToUTF8, so an
// encoding="UTF-16" declaration must not be acted on a second time.
func passthroughCharset(_ string, input io.Reader) (io.Reader, error) {
	return input, nil
}
