package util

import (
	"bytes"
	"strings"
	"unicode/utf8"

	log "github.com/sirupsen/logrus"
)

const maxBinaryCheckBytes = 512

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// typographic punctuation and C1 leftovers of cp1252 text decoded as latin-1
var punctuation = strings.NewReplacer(
	"\u2018", "'", "\u2019", "'", "\u201C", "\"", "\u201D", "\"",
	"\u2013", "-", "\u2014", "--", "\u2026", "...", "\u00a0", " ",
	"\u0091", "'", "\u0092", "'", "\u0093", "\"", "\u0094", "\"",
	"\u0096", "-", "\u0097", "--",
)

// LooksBinary reports whether the leading bytes contain a NUL.
func LooksBinary(b []byte) bool {
	if len(b) > maxBinaryCheckBytes {
		b = b[:maxBinaryCheckBytes]
	}
	return bytes.IndexByte(b, 0) >= 0
}

// CleanText strips a BOM, replaces invalid UTF-8 and flattens typographic
// punctuation. src only labels the log line.
func CleanText(b []byte, src string) string {
	b = bytes.TrimPrefix(b, utf8BOM)
	if !utf8.Valid(b) {
		log.Debugf("%s has invalid UTF-8, replacing invalid bytes", src)
		b = bytes.ToValidUTF8(b, []byte(string(utf8.RuneError)))
	}
	return punctuation.Replace(string(b))
}
