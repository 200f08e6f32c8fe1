package chunker

import "unicode/utf8"

// EstimateTokens gives a rough token count using the ~4 chars/token heuristic.
func EstimateTokens(text string) int {
	return utf8.RuneCountInString(text) / 4
}

// Truncate returns the first n characters of text.
func Truncate(text string, n int) (string, bool) {
	if n <= 0 || utf8.RuneCountInString(text) <= n {
		return text, false
	}
	count := 0
	for i := range text {
		if count == n {
			return text[:i], true
		}
		count++
	}
	return text, false
}
