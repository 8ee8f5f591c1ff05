// Package text cleans raw item text before it is sent to an embedding
// model: normalizing encoding artifacts, dropping invalid escape
// sequences, and stripping control characters that confuse tokenizers.
package text

import (
	"strings"
	"unicode/utf8"
)

// CleanForEmbedding runs the full cleaning pipeline used before text is
// sent to an embedding provider: encoding normalization, invalid-escape
// removal, and control-character filtering, in that order.
func CleanForEmbedding(s string) string {
	s = normalizeEncoding(s)
	s = removeInvalidEscapes(s)
	s = filterControlChars(s)

	return strings.TrimSpace(s)
}

// normalizeEncoding replaces invalid UTF-8 byte sequences with the
// replacement character's ASCII-safe stand-in (a space), since a single
// bad byte can otherwise poison an entire request body.
func normalizeEncoding(s string) string {
	if utf8.ValidString(s) {
		return s
	}

	var b strings.Builder
	b.Grow(len(s))

	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		if r == utf8.RuneError && size <= 1 {
			b.WriteByte(' ')
			i++

			continue
		}

		b.WriteRune(r)
		i += size
	}

	return b.String()
}

// removeInvalidEscapes replaces every literal backslash with a space,
// whether or not it introduces a valid \xHH/\uHHHH escape. Text arriving
// from feed parsers and scrapers occasionally carries literal "\x" or
// "\u" fragments that are not escapes at all, and even a genuine hex
// escape is meaningless once this text is headed for an embedding model
// rather than a decoder — so every backslash goes, unconditionally,
// mirroring the original's incomplete-escape passes followed by its
// unconditional `text.replace('\\', ' ')`.
func removeInvalidEscapes(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	for _, r := range s {
		if r == '\\' {
			b.WriteRune(' ')

			continue
		}

		b.WriteRune(r)
	}

	return b.String()
}

// filterControlChars drops every rune below U+0020 except newline,
// carriage return, and tab; every rune from U+0020 up is kept.
func filterControlChars(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	for _, r := range s {
		if r >= 0x20 || r == '\n' || r == '\r' || r == '\t' {
			b.WriteRune(r)
		}
	}

	return b.String()
}
