package coach

import (
	"strings"
)

// fillerLexicon is the fixed set of disfluency tokens counted against
// delivery quality. Multi-word entries are matched as phrases.
var fillerLexicon = []string{
	"um", "uh", "uhm", "umm",
	"like",
	"you know", "y'know",
	"i mean",
	"kind of", "kinda",
	"sort of", "sorta",
	"basically",
	"literally",
	"actually",
}

// CountFillers counts whole-word, case-insensitive occurrences of the
// filler lexicon in the transcript. Matching is token-based so substrings
// never count: "likely" contributes nothing for "like".
func CountFillers(transcript string) int {
	tokens := tokenize(transcript)
	if len(tokens) == 0 {
		return 0
	}

	count := 0
	for _, filler := range fillerLexicon {
		phrase := strings.Split(filler, " ")
		count += countPhrase(tokens, phrase)
	}
	return count
}

// tokenize lower-cases the text and strips surrounding punctuation from
// each word, keeping inner apostrophes ("y'know").
func tokenize(text string) []string {
	fields := strings.Fields(strings.ToLower(text))
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.TrimFunc(f, func(r rune) bool {
			return !isWordRune(r)
		})
		if f != "" {
			tokens = append(tokens, f)
		}
	}
	return tokens
}

func isWordRune(r rune) bool {
	return r == '\'' ||
		(r >= 'a' && r <= 'z') ||
		(r >= '0' && r <= '9')
}

// countPhrase counts non-overlapping occurrences of phrase in tokens.
func countPhrase(tokens, phrase []string) int {
	if len(phrase) == 0 || len(phrase) > len(tokens) {
		return 0
	}
	count := 0
	for i := 0; i+len(phrase) <= len(tokens); i++ {
		match := true
		for j, w := range phrase {
			if tokens[i+j] != w {
				match = false
				break
			}
		}
		if match {
			count++
			i += len(phrase) - 1
		}
	}
	return count
}
