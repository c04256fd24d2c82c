// Package fts normalizes free text for the search index. It provides
// the tokenizer, the indexed-content normalizer, and the match
// expression builder used for ranked queries.
package fts

import "strings"

// Tokenize splits text into normalized tokens. ASCII alphanumerics
// accumulate case-folded into the current token. Each CJK ideograph is
// emitted as its own single-character token since whitespace is uncommon
// in those scripts and no word segmentation is attempted. Everything
// else only terminates the current token.
func Tokenize(source string) []string {
	var tokens []string
	var current strings.Builder

	flush := func() {
		if current.Len() > 0 {
			tokens = append(tokens, current.String())
			current.Reset()
		}
	}

	for _, ch := range source {
		switch {
		case ch >= 'a' && ch <= 'z' || ch >= '0' && ch <= '9':
			current.WriteRune(ch)
		case ch >= 'A' && ch <= 'Z':
			current.WriteRune(ch + ('a' - 'A'))
		case isCJK(ch):
			flush()
			tokens = append(tokens, string(ch))
		default:
			flush()
		}
	}
	flush()

	return tokens
}

// NormalizeContent produces the text stored in the search index for raw
// note content. Returns "" when nothing indexable remains, in which case
// no entry is written: a note with a purely-punctuation body exists but
// is unsearchable. If tokenization yields nothing for non-blank input,
// the raw text is indexed verbatim with newlines collapsed to spaces.
func NormalizeContent(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}

	tokens := Tokenize(trimmed)
	if len(tokens) == 0 {
		return strings.ReplaceAll(trimmed, "\n", " ")
	}
	return strings.Join(tokens, " ")
}

// BuildMatchExpression turns a free-text search term into an FTS match
// expression: each token becomes a prefix match and tokens are ANDed.
// Returns "" for terms with no queryable content.
func BuildMatchExpression(term string) string {
	trimmed := strings.TrimSpace(term)
	if trimmed == "" {
		return ""
	}

	tokens := Tokenize(trimmed)
	if len(tokens) == 0 {
		tokens = strings.Fields(trimmed)
	}
	if len(tokens) == 0 {
		return ""
	}

	parts := make([]string, len(tokens))
	for i, token := range tokens {
		parts[i] = token + "*"
	}
	return strings.Join(parts, " ")
}

// isCJK reports whether the rune falls in the ideographic ranges that
// tokenize per-character.
func isCJK(ch rune) bool {
	switch {
	case ch >= 0x4E00 && ch <= 0x9FFF: // CJK Unified Ideographs
		return true
	case ch >= 0x3400 && ch <= 0x4DBF: // Extension A
		return true
	case ch >= 0x20000 && ch <= 0x2A6DF: // Extension B
		return true
	case ch >= 0x2A700 && ch <= 0x2B73F: // Extension C
		return true
	case ch >= 0x2B740 && ch <= 0x2B81F: // Extension D
		return true
	case ch >= 0x2B820 && ch <= 0x2CEAF: // Extension E
		return true
	case ch >= 0xF900 && ch <= 0xFAFF: // Compatibility Ideographs
		return true
	case ch >= 0x2F800 && ch <= 0x2FA1F: // Compatibility Supplement
		return true
	}
	return false
}
