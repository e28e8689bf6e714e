// Package textnorm converts raw scripture markup into display text.
//
// Both variants apply the same fixed sequence of rules; only the treatment of
// editorial brackets differs:
//
//  1. editorial brackets: "[X]" becomes "*X*" (Normalize) or "X" (Plain)
//  2. pilcrow glyphs, including mis-encoded pilcrows, are removed
//  3. guillemets become curly quotes
//  4. "{...}" annotations are removed
//  5. "(...)" annotations are removed
//  6. whitespace runs collapse to one space; the result is trimmed
//  7. the result is composed to Unicode NFC
//
// Invalid UTF-8 is replaced with U+FFFD before any rule runs, so removing a
// pilcrow can never splice stray bytes into a new one. Nested pairs are resolved innermost first. Unmatched delimiters are kept
// as literal characters. Every function here is total and idempotent.
package textnorm

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var (
	bracketPair = regexp.MustCompile(`\[([^\[\]]*)\]`)
	bracePair   = regexp.MustCompile(`\{[^{}]*\}`)
	parenPair   = regexp.MustCompile(`\([^()]*\)`)
)

// Longest first: the mis-encoded forms contain the shorter ones.
var pilcrows = strings.NewReplacer(
	"\u00c3\u201a\u00c2\u00b6", "", // UTF-8 pilcrow decoded twice as cp1252
	"\u00c2\u00b6", "", // UTF-8 pilcrow decoded as Latin-1
	"\u00b6", "", // pilcrow
	"\u204b", "", // reversed pilcrow
)

var quotes = strings.NewReplacer(
	"\u00ab", "\u201c", // « to left double quote
	"\u00bb", "\u201d", // » to right double quote
	"\u2039", "\u2018", // ‹ to left single quote
	"\u203a", "\u2019", // › to right single quote
	"\u201e", "\u201c", // low double quote
	"\u201a", "\u2018", // low single quote
)

// Normalize returns the display form of raw: editorial insertions become
// *emphasis*, annotations and pilcrows disappear and whitespace is collapsed.
//
//	Normalize("In the beginning [God] created") == "In the beginning *God* created"
func Normalize(raw string) string {
	return finish(replacePairs(valid(raw), bracketPair, emphasize))
}

// Plain returns the note-taking form of raw. It differs from Normalize only
// in dropping editorial brackets without adding emphasis markers.
func Plain(raw string) string {
	return finish(replacePairs(valid(raw), bracketPair, unwrap))
}

func valid(s string) string {
	return strings.ToValidUTF8(s, "\uFFFD")
}

// finish applies the rules shared by both variants.
func finish(s string) string {
	s = pilcrows.Replace(s)
	s = quotes.Replace(s)
	s = replacePairs(s, bracePair, drop)
	s = replacePairs(s, parenPair, drop)
	s = strings.Join(strings.Fields(s), " ")
	return norm.NFC.String(s)
}

// replacePairs rewrites innermost matches of re until none are left.
func replacePairs(s string, re *regexp.Regexp, fn func(string) string) string {
	for re.MatchString(s) {
		s = re.ReplaceAllStringFunc(s, fn)
	}
	return s
}

func emphasize(match string) string {
	return "*" + match[1:len(match)-1] + "*"
}

func unwrap(match string) string {
	return match[1 : len(match)-1]
}

func drop(string) string {
	return ""
}
