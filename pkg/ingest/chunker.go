package ingest

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// Sentence boundaries for both Latin and CJK punctuation, plus newlines.
var sentencePattern = regexp.MustCompile(`[.!?。！？\n]+`)

// SplitText splits text into chunks of roughly chunkSize characters,
// breaking only at sentence boundaries. Size is measured in runes, not
// bytes, so Korean text packs to the same granularity as ASCII.
func SplitText(text string, chunkSize int) []string {
	if chunkSize <= 0 {
		chunkSize = 1000
	}

	var chunks []string
	sentences := sentencePattern.Split(text, -1)

	var current strings.Builder
	currentLen := 0
	for _, sentence := range sentences {
		trimmed := strings.TrimSpace(sentence)
		if trimmed == "" {
			continue
		}

		sentenceLen := utf8.RuneCountInString(trimmed)
		if currentLen+sentenceLen > chunkSize && currentLen > 0 {
			chunks = append(chunks, current.String())
			current.Reset()
			currentLen = 0
		}
		if currentLen > 0 {
			current.WriteString(" ")
			currentLen++
		}
		current.WriteString(trimmed)
		currentLen += sentenceLen
	}

	if current.Len() > 0 {
		chunks = append(chunks, current.String())
	}

	return chunks
}
