package packet

import (
	"fmt"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
)

// Single-byte client encodings selectable with network.client_encoding.
var encodings = map[string]*charmap.Charmap{
	"windows-1252": charmap.Windows1252,
	"windows-1251": charmap.Windows1251,
	"iso-8859-1":   charmap.ISO8859_1,
	"iso-8859-15":  charmap.ISO8859_15,
	"cp437":        charmap.CodePage437,
	"cp850":        charmap.CodePage850,
	"koi8-r":       charmap.KOI8R,
}

// LookupEncoding returns the client string encoding for a config name.
// An empty name selects windows-1252.
func LookupEncoding(name string) (encoding.Encoding, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		key = "windows-1252"
	}
	cm, ok := encodings[key]
	if !ok {
		return nil, fmt.Errorf("unknown client encoding %q", name)
	}
	return cm, nil
}

func isASCII(b []byte) bool {
	for _, c := range b {
		if c >= 0x80 {
			return false
		}
	}
	return true
}

func decodeString(enc encoding.Encoding, raw []byte) string {
	if len(raw) == 0 {
		return ""
	}
	if enc == nil || isASCII(raw) {
		return string(raw)
	}
	decoded, err := enc.NewDecoder().Bytes(raw)
	if err != nil {
		return string(raw)
	}
	return string(decoded)
}

func encodeString(enc encoding.Encoding, s string) []byte {
	if enc == nil || isASCII([]byte(s)) {
		return []byte(s)
	}
	// Runes the charmap cannot represent become the charmap's replacement byte.
	encoded, err := encoding.ReplaceUnsupported(enc.NewEncoder()).Bytes([]byte(s))
	if err != nil {
		return []byte(s)
	}
	return encoded
}
