package ingest

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitTextKeepsSentencesTogether(t *testing.T) {
	text := "첫 번째 문장입니다. 두 번째 문장입니다! 세 번째 문장입니다?"

	chunks := SplitText(text, 1000)

	assert.Len(t, chunks, 1)
	assert.Equal(t, "첫 번째 문장입니다 두 번째 문장입니다 세 번째 문장입니다", chunks[0])
}

func TestSplitTextBreaksAtChunkSize(t *testing.T) {
	var sb strings.Builder
	for i := 0; i < 50; i++ {
		sb.WriteString("This sentence fills up the current chunk with some words. ")
	}

	chunks := SplitText(sb.String(), 200)

	assert.Greater(t, len(chunks), 1)
	for _, chunk := range chunks {
		// A single sentence may exceed the limit but merged chunks may not.
		assert.LessOrEqual(t, len(chunk), 260)
		assert.NotEqual(t, "", strings.TrimSpace(chunk))
	}
}

func TestSplitTextEmptyInput(t *testing.T) {
	assert.Empty(t, SplitText("", 1000))
	assert.Empty(t, SplitText("  \n\n  ", 1000))
}

func TestSplitTextCJKBoundaries(t *testing.T) {
	text := "日本語の文。中国語的句子！한국어 문장?"

	chunks := SplitText(text, 5)

	assert.Equal(t, []string{"日本語の文", "中国語的句子", "한국어 문장"}, chunks)
}

func TestSplitTextCountsRunesNotBytes(t *testing.T) {
	// Two 10-character Hangul sentences (30 bytes each in UTF-8). Byte
	// counting would split them apart long before the character limit.
	text := "가나다라마바사아자차. 하파타카차자아사바마."

	chunks := SplitText(text, 25)
	assert.Equal(t, []string{"가나다라마바사아자차 하파타카차자아사바마"}, chunks)

	// 10 + 1 (joining space) + 10 = 21 characters: just over a 20-char limit.
	chunks = SplitText(text, 20)
	assert.Equal(t, []string{"가나다라마바사아자차", "하파타카차자아사바마"}, chunks)
}

func TestSplitTextDefaultChunkSize(t *testing.T) {
	chunks := SplitText("one sentence only", 0)
	assert.Equal(t, []string{"one sentence only"}, chunks)
}
