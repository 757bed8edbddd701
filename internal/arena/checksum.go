package arena

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"unicode/utf16"
)

// The arena has years of battle records whose checksums were computed over
// Python's json.dumps(d, sort_keys=True) output. Content-addressed lookups
// (prebaked prompts, audio keys, user identity) only keep working if we
// reproduce that byte stream exactly: sorted keys, ", " / ": " separators,
// ensure_ascii escaping, and Python float repr.

// Checksum returns the md5 hex digest of b.
func Checksum(b []byte) string {
	sum := md5.Sum(b)
	return hex.EncodeToString(sum[:])
}

// SaltedChecksum returns the md5 hex digest of s followed by salt.
func SaltedChecksum(s, salt string) string {
	return Checksum([]byte(s + salt))
}

// dictChecksum hashes the canonical encoding of a flat string-keyed dict.
func dictChecksum(d map[string]any) string {
	return Checksum(canonicalDict(d))
}

func canonicalDict(d map[string]any) []byte {
	keys := make([]string, 0, len(d))
	for k := range d {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			b.WriteString(", ")
		}
		writeCanonicalString(&b, k)
		b.WriteString(": ")
		writeCanonicalValue(&b, d[k])
	}
	b.WriteByte('}')
	return []byte(b.String())
}

func writeCanonicalValue(b *strings.Builder, v any) {
	switch x := v.(type) {
	case nil:
		b.WriteString("null")
	case bool:
		if x {
			b.WriteString("true")
		} else {
			b.WriteString("false")
		}
	case string:
		writeCanonicalString(b, x)
	case int:
		b.WriteString(strconv.Itoa(x))
	case int64:
		b.WriteString(strconv.FormatInt(x, 10))
	case float64:
		b.WriteString(canonicalFloat(x))
	default:
		panic(fmt.Sprintf("arena: unsupported canonical value %T", v))
	}
}

// canonicalFloat matches Python's float repr: shortest round-trip form,
// with a trailing ".0" on integral values.
func canonicalFloat(f float64) string {
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}

// writeCanonicalString escapes like json.dumps with ensure_ascii=True:
// every rune above 0x7e becomes a \uXXXX escape (surrogate pairs beyond
// the BMP), controls below 0x20 are escaped too.
func writeCanonicalString(b *strings.Builder, s string) {
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		case '\b':
			b.WriteString(`\b`)
		case '\f':
			b.WriteString(`\f`)
		default:
			switch {
			case r < 0x20:
				fmt.Fprintf(b, `\u%04x`, r)
			case r > 0x7e:
				if r > 0xffff {
					hi, lo := utf16.EncodeRune(r)
					fmt.Fprintf(b, `\u%04x\u%04x`, hi, lo)
				} else {
					fmt.Fprintf(b, `\u%04x`, r)
				}
			default:
				b.WriteRune(r)
			}
		}
	}
	b.WriteByte('"')
}
