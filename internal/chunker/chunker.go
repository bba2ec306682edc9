// Package chunker splits extracted text into bounded word-aligned
// segments, the unit of embedding and retrieval.
package chunker

import "strings"

// DefaultMaxChars is the soft cap on chunk length in characters.
const DefaultMaxChars = 512

// Split normalizes all whitespace runs to single spaces, trims, and
// greedily packs words into chunks. The size check runs after each word
// is appended: the buffer flushes once its joined length reaches the
// cap, so a chunk may exceed maxChars by up to one word's length. That
// is the intended boundary policy: words are never split, and
// consecutive chunks never overlap. Whitespace-only input produces no
// chunks.
func Split(text string, maxChars int) []string {
	if maxChars <= 0 {
		maxChars = DefaultMaxChars
	}

	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	var chunks []string
	var current []string
	length := 0 // joined length of current, including separating spaces

	for _, word := range words {
		if len(current) > 0 {
			length++ // space before the word
		}
		current = append(current, word)
		length += len(word)

		if length >= maxChars {
			chunks = append(chunks, strings.Join(current, " "))
			current = current[:0]
			length = 0
		}
	}
	if len(current) > 0 {
		chunks = append(chunks, strings.Join(current, " "))
	}

	return chunks
}
