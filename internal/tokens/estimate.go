// Package tokens approximates request cost for the remote completion service.
package tokens

import "unicode/utf8"

// CharsPerToken is shared by size classification, chunking and the remote
// engine. Changing it in one place only keeps chunk counts consistent.
const CharsPerToken = 4

// Estimate returns ceil(chars/CharsPerToken). Characters are runes, not bytes.
func Estimate(text string) int {
	n := utf8.RuneCountInString(text)
	if n == 0 {
		return 0
	}
	return (n + CharsPerToken - 1) / CharsPerToken
}

// Budget converts a token budget into the character width it allows.
func Budget(maxTokens int) int {
	if maxTokens <= 0 {
		return 0
	}
	return maxTokens * CharsPerToken
}
