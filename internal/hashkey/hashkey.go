package hashkey

import (
	"crypto/md5"
	"encoding/hex"
	"strings"

	"github.com/vvka-141/dvload/pkg/dvload"
)

// Size is the length of a Key in hex characters (128 bits).
const Size = md5.Size * 2

// Key is a hex-encoded hash key.
type Key string

// String returns the hex form of the key.
func (k Key) String() string {
	return string(k)
}

// Deriver computes hash keys for attribute tuples.
type Deriver struct {
	mode dvload.HashMode
}

// New creates a Deriver for the given mode.
// An unknown or empty mode falls back to HashModeDelimited.
func New(mode dvload.HashMode) Deriver {
	if !mode.IsValid() {
		mode = dvload.HashModeDelimited
	}
	return Deriver{mode: mode}
}

// Mode returns the encoding mode of the deriver.
func (d Deriver) Mode() dvload.HashMode {
	if d.mode == "" {
		return dvload.HashModeDelimited
	}
	return d.mode
}

// Derive returns the key of attrs, in the given order.
func (d Deriver) Derive(attrs ...any) Key {
	sum := md5.Sum([]byte(d.Encode(attrs...)))
	return Key(hex.EncodeToString(sum[:]))
}

// Encode returns the string that Derive hashes.
func (d Deriver) Encode(attrs ...any) string {
	var b strings.Builder

	if d.Mode() == dvload.HashModeConcat {
		for _, a := range attrs {
			b.WriteString(canonical(a, concatNullToken))
		}
		return b.String()
	}

	for i, a := range attrs {
		if i > 0 {
			b.WriteByte(separator)
		}
		if isNull(a) {
			b.WriteString(NullToken)
			continue
		}
		writeEscaped(&b, Canonical(a))
	}
	return b.String()
}

const separator = ';'

// writeEscaped escapes the separator and the escape character itself, so a
// literal `\N` value is written as `\\N` and never reads as the null token.
func writeEscaped(b *strings.Builder, token string) {
	for i := 0; i < len(token); i++ {
		ch := token[i]
		if ch == '\\' || ch == separator {
			b.WriteByte('\\')
		}
		b.WriteByte(ch)
	}
}
