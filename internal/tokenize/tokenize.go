package tokenize

import (
	"strings"
	"unicode"
)

// Set is a set of normalized tokens.
type Set map[string]struct{}

// Trailing particles (josa) stripped from nouns. Longer suffixes are checked
// first so 에서 wins over 서.
var particleSuffixes = []string{
	"에서", "에게", "으로", "까지", "부터", "보다", "처럼", "하고", "이나", "라고", "마저", "조차",
	"이", "가", "은", "는", "을", "를", "과", "와", "의", "도", "만", "로", "에",
}

// Predicate endings reduced to the verb/adjective stem, longest first.
var predicateSuffixes = []string{
	"했습니다", "됐습니다", "입니다", "하면서", "했다가",
	"했다", "한다", "합니다", "하여", "하고", "해서",
	"됐다", "된다", "됩니다", "되어",
	"이었다", "였다", "었다", "았다", "이다",
}

// Extract splits text into a set of normalized tokens: punctuation removed,
// trailing particles stripped, inflected predicates reduced to their stem, and
// unspaced compounds additionally segmented so they overlap with their spaced
// spelling. Never fails; any panic inside the analyzer falls back to plain
// whitespace splitting.
func Extract(text string) Set {
	tokens := make(Set)
	if strings.TrimSpace(text) == "" {
		return tokens
	}

	defer func() {
		if r := recover(); r != nil {
			for _, word := range strings.Fields(text) {
				tokens[word] = struct{}{}
			}
		}
	}()

	for _, word := range splitWords(text) {
		for _, token := range analyze(word) {
			tokens[token] = struct{}{}
		}
	}
	return tokens
}

// splitWords breaks text on whitespace and punctuation, keeping only letters
// and digits inside each fragment.
func splitWords(text string) []string {
	return strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
}

// analyze normalizes one surface word into one or more tokens.
func analyze(word string) []string {
	stem, inflected := stripPredicate(word)
	if !inflected {
		stem = stripParticle(word)
	}
	if stem == "" {
		return nil
	}

	out := []string{stem}
	out = append(out, segments(stem)...)
	return out
}

// stripPredicate removes a known predicate ending, preferring the base stem
// over the surface form. The stem must keep at least one syllable.
func stripPredicate(word string) (string, bool) {
	runes := []rune(word)
	for _, suffix := range predicateSuffixes {
		sr := []rune(suffix)
		if len(runes) > len(sr) && strings.HasSuffix(word, suffix) {
			return string(runes[:len(runes)-len(sr)]), true
		}
	}
	return word, false
}

// stripParticle removes one trailing particle when the remaining stem keeps at
// least two syllables, so genuine short words are left alone.
func stripParticle(word string) string {
	runes := []rune(word)
	for _, suffix := range particleSuffixes {
		sr := []rune(suffix)
		if len(runes)-len(sr) >= 2 && strings.HasSuffix(word, suffix) {
			return string(runes[:len(runes)-len(sr)])
		}
	}
	return word
}

// segments splits an even-length hangul token of four or more syllables into
// two-syllable chunks. Korean compounds are mostly two-syllable nouns run
// together, so 주식시장 also yields 주식 and 시장 and matches "주식 시장".
func segments(token string) []string {
	runes := []rune(token)
	if len(runes) < 4 || len(runes)%2 != 0 {
		return nil
	}
	for _, r := range runes {
		if !unicode.Is(unicode.Hangul, r) {
			return nil
		}
	}

	chunks := make([]string, 0, len(runes)/2)
	for i := 0; i+2 <= len(runes); i += 2 {
		chunks = append(chunks, string(runes[i:i+2]))
	}
	return chunks
}
