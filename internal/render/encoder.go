package render

import (
	"bytes"
	"compress/flate"
	"strings"
)

// PlantUML servers expect diagram source deflated and re-encoded with their
// own 64-character alphabet (not standard base64), so the token can travel
// in a URL path segment.
const encodeAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz-_"

// Encode turns diagram source into the transport token consumed by the
// renderer. It is deterministic: identical source always yields an identical
// token, which is what makes token-keyed render caching sound.
func Encode(source string) string {
	var buf bytes.Buffer

	w, err := flate.NewWriter(&buf, flate.BestCompression)
	if err != nil {
		// flate.NewWriter only fails on an invalid level constant.
		panic(err)
	}
	_, _ = w.Write([]byte(source))
	_ = w.Close()

	return encode64(buf.Bytes())
}

func encode64(data []byte) string {
	var sb strings.Builder
	sb.Grow((len(data) + 2) / 3 * 4)

	for i := 0; i < len(data); i += 3 {
		var b1, b2, b3 byte
		b1 = data[i]
		if i+1 < len(data) {
			b2 = data[i+1]
		}
		if i+2 < len(data) {
			b3 = data[i+2]
		}

		sb.WriteByte(encodeAlphabet[b1>>2])
		sb.WriteByte(encodeAlphabet[((b1&0x3)<<4)|(b2>>4)])
		sb.WriteByte(encodeAlphabet[((b2&0xF)<<2)|(b3>>6)])
		sb.WriteByte(encodeAlphabet[b3&0x3F])
	}

	return sb.String()
}
