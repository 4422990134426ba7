package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/text/encoding/korean"
)

func TestDecodeTextUTF8(t *testing.T) {
	got := DecodeText([]byte("안녕하세요 hello"))

	assert.Equal(t, "안녕하세요 hello", got)
}

func TestDecodeTextUTF8BOM(t *testing.T) {
	raw := append([]byte{0xEF, 0xBB, 0xBF}, []byte("한글 문서")...)

	got := DecodeText(raw)

	assert.Equal(t, "한글 문서", got)
}

func TestDecodeTextUTF16LE(t *testing.T) {
	// BOM + "가A" as little-endian code units
	raw := []byte{0xFF, 0xFE, 0x00, 0xAC, 0x41, 0x00}

	got := DecodeText(raw)

	assert.Equal(t, "가A", got)
}

func TestDecodeTextUTF16BE(t *testing.T) {
	raw := []byte{0xFE, 0xFF, 0xAC, 0x00, 0x00, 0x41}

	got := DecodeText(raw)

	assert.Equal(t, "가A", got)
}

func TestDecodeTextEUCKR(t *testing.T) {
	raw, err := korean.EUCKR.NewEncoder().Bytes([]byte("한국어 텍스트입니다"))
	assert.NoError(t, err)

	got := DecodeText(raw)

	assert.Equal(t, "한국어 텍스트입니다", got)
}

func TestDecodeTextLossyFallback(t *testing.T) {
	// Invalid UTF-8 with no Hangul: falls through to replacement characters.
	got := DecodeText([]byte{0xFF, 0x01, 0xFF})

	assert.NotEmpty(t, got)
	assert.Contains(t, got, "�")
}

func TestIsKoreanText(t *testing.T) {
	assert.True(t, IsKoreanText("약간의 한글"))
	assert.False(t, IsKoreanText("english only"))
}

func TestRemoveBOM(t *testing.T) {
	assert.Equal(t, "본문", RemoveBOM("\uFEFF본문"))
	assert.Equal(t, "본문", RemoveBOM("본문"))
}

func TestSafeFileName(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"hangul preserved", "보고서 2024.pdf", "보고서_2024.pdf"},
		{"unsafe chars replaced", `a<b>:c"d.txt`, "a_b_c_d.txt"},
		{"underscore runs collapsed", "a   b___c.csv", "a_b_c.csv"},
		{"leading and trailing trimmed", "_report_", "report"},
		{"empty input", "", "unnamed_file"},
		{"all unsafe", "???", "unnamed_file"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SafeFileName(tt.input))
		})
	}
}
