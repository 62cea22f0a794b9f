// Package textnorm turns raw extracted document text into normalized, token-separated text.
package textnorm

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

var (
	urlPattern   = regexp.MustCompile(`(?i)\b(?:https?://|www\.)\S+`)
	emailPattern = regexp.MustCompile(`\S+@\S+\.\S+`)
)

// Normalize lowercases text, drops URLs and e-mail addresses, and collapses everything that is
// not part of a token into single spaces.
//
// Token characters are letters, digits and the joiners '.', '+' and '#'. Joiners survive only
// where they are part of a technical name:
//
//	"C++"      -> "c++"
//	"C#"       -> "c#"
//	"Node.js," -> "node.js"
//	".NET"     -> ".net"
//	"Python."  -> "python"
//
// Every other character ('/', '-', '(', bullet glyphs, ...) separates tokens, so "CI/CD" becomes
// "ci cd". Skill vocabularies are normalized with the same function, which keeps both sides of
// a comparison in agreement.
//
// The result of Normalize is a fixed point: Normalize(Normalize(s)) == Normalize(s).
func Normalize(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}

	text := strings.ToValidUTF8(raw, " ")
	text = norm.NFKC.String(text)
	text = strings.ToLower(text)
	text = urlPattern.ReplaceAllString(text, " ")
	text = emailPattern.ReplaceAllString(text, " ")

	var out strings.Builder
	out.Grow(len(text))

	var token strings.Builder
	flush := func() {
		cleaned := cleanToken(token.String())
		token.Reset()
		if cleaned == "" {
			return
		}
		if out.Len() > 0 {
			out.WriteByte(' ')
		}
		out.WriteString(cleaned)
	}

	for _, r := range text {
		if isTokenRune(r) {
			token.WriteRune(r)
			continue
		}
		flush()
	}
	flush()

	return out.String()
}

// Tokens splits normalized text into its tokens.
func Tokens(normalized string) []string {
	return strings.Fields(normalized)
}

func isTokenRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || isJoiner(r)
}

func isJoiner(r rune) bool {
	return r == '.' || r == '+' || r == '#'
}

// cleanToken trims joiners that cannot belong to a technical name.
// Leading '+' and '#' are dropped, a leading '.' is kept only in front of a letter (".net"),
// and trailing dots are dropped. Tokens without a letter or digit are discarded.
func cleanToken(tok string) string {
	for len(tok) > 0 {
		c := tok[0]
		if c == '+' || c == '#' || (c == '.' && !startsWithLetter(tok[1:])) {
			tok = tok[1:]
			continue
		}
		break
	}
	tok = strings.TrimRight(tok, ".")

	if !strings.ContainsFunc(tok, func(r rune) bool { return unicode.IsLetter(r) || unicode.IsDigit(r) }) {
		return ""
	}
	return tok
}

func startsWithLetter(s string) bool {
	for _, r := range s {
		return unicode.IsLetter(r)
	}
	return false
}
