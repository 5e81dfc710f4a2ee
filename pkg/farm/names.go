package farm

import (
	"fmt"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// substitute replaces every filesystem-unsafe character in link and
// directory names.
const substitute = '_'

// unsafeRune reports whether r may not appear in a path segment on
// common filesystems.
func unsafeRune(r rune) bool {
	switch r {
	case '/', '\\', ':', '*', '?', '"', '<', '>', '|', 0:
		return true
	}
	return r < 0x20 || r == 0x7f
}

// Sanitize maps an arbitrary catalog string to a safe path segment.
// Runs of unsafe characters collapse to a single substitute so names
// never end up visually empty; leading/trailing whitespace and dots are
// trimmed. The result is never empty: unsalvageable input falls back to
// "untitled-<h6>" where h6 is derived from the raw input, keeping the
// function deterministic and re-runs byte-identical.
func Sanitize(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	pending := false
	for _, r := range raw {
		if unsafeRune(r) {
			pending = true
			continue
		}
		if pending {
			b.WriteRune(substitute)
			pending = false
		}
		b.WriteRune(r)
	}
	if pending {
		b.WriteRune(substitute)
	}

	s := strings.Trim(b.String(), ". \t")
	if s == "" {
		return "untitled-" + hash6(raw)
	}
	return s
}

// hash6 returns the first 6 hex digits of the xxhash64 of s.
func hash6(s string) string {
	return fmt.Sprintf("%016x", xxhash.Sum64String(s))[:6]
}
