package backends

import (
	"fmt"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"

	"github.com/systmms/dskeyring/pkg/backend"
)

var utf16le = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)

// checkUTF8 returns a copy of b after verifying it is valid UTF-8.
func checkUTF8(b []byte) ([]byte, error) {
	if !utf8.Valid(b) {
		return nil, fmt.Errorf("%w: invalid UTF-8", backend.ErrInvalidEncoding)
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out, nil
}

// encodeUTF16LE converts UTF-8 text to UTF-16LE without a byte order mark.
func encodeUTF16LE(b []byte) ([]byte, error) {
	if !utf8.Valid(b) {
		return nil, fmt.Errorf("%w: invalid UTF-8", backend.ErrInvalidEncoding)
	}
	out, err := utf16le.NewEncoder().Bytes(b)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", backend.ErrInvalidEncoding, err)
	}
	return out, nil
}

// decodeUTF16LE converts UTF-16LE text to UTF-8. An odd byte count or an
// unpaired surrogate is an encoding error.
func decodeUTF16LE(b []byte) ([]byte, error) {
	if len(b)%2 != 0 {
		return nil, fmt.Errorf("%w: odd UTF-16 byte count %d", backend.ErrInvalidEncoding, len(b))
	}
	out, err := utf16le.NewDecoder().Bytes(b)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", backend.ErrInvalidEncoding, err)
	}
	if !utf8.Valid(out) || containsReplacement(out, b) {
		return nil, fmt.Errorf("%w: unpaired UTF-16 surrogate", backend.ErrInvalidEncoding)
	}
	return out, nil
}

// containsReplacement reports whether the decoder substituted U+FFFD for a
// code unit that was not itself U+FFFD in the source.
func containsReplacement(decoded, src []byte) bool {
	want := 0
	for i := 0; i+1 < len(src); i += 2 {
		if src[i] == 0xFD && src[i+1] == 0xFF {
			want++
		}
	}
	got := 0
	for _, r := range string(decoded) {
		if r == utf8.RuneError {
			got++
		}
	}
	return got != want
}
