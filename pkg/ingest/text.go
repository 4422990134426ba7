package ingest

import (
	"bytes"
	"fmt"
	"os"
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/korean"
)

var (
	hangulPattern = regexp.MustCompile(`[가-힣]`)
	// Replacement character or stray control bytes mean a decode went wrong.
	brokenPattern = regexp.MustCompile("�|[\x00-\x08\x0B\x0C\x0E-\x1F\x7F]")
)

type bomEntry struct {
	name string
	bom  []byte
}

// Ordered longest-BOM-first so UTF-32LE is not mistaken for UTF-16LE.
var bomTable = []bomEntry{
	{"utf-32le", []byte{0xFF, 0xFE, 0x00, 0x00}},
	{"utf-32be", []byte{0x00, 0x00, 0xFE, 0xFF}},
	{"utf-8", []byte{0xEF, 0xBB, 0xBF}},
	{"utf-16le", []byte{0xFF, 0xFE}},
	{"utf-16be", []byte{0xFE, 0xFF}},
}

// ReadFileWithEncoding reads a text file whose encoding is unknown.
// UTF-8 is tried first, then EUC-KR/CP949 (common for Korean documents),
// falling back to a lossy UTF-8 interpretation.
func ReadFileWithEncoding(path string) (string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read file %s: %w", path, err)
	}
	return DecodeText(raw), nil
}

// DecodeText converts raw bytes to a UTF-8 string, detecting BOMs and
// legacy Korean encodings.
func DecodeText(raw []byte) string {
	// 1. BOM detection
	for _, e := range bomTable {
		if bytes.HasPrefix(raw, e.bom) {
			body := raw[len(e.bom):]
			switch e.name {
			case "utf-8":
				return string(body)
			case "utf-16le":
				return decodeUTF16(body, true)
			case "utf-16be":
				return decodeUTF16(body, false)
			default:
				// UTF-32 is rare enough to handle byte-pairwise via UTF-16 logic
				// after dropping the high zero bytes.
				return decodeUTF32(body, e.name == "utf-32le")
			}
		}
	}

	// 2. Valid UTF-8 wins
	if utf8.Valid(raw) {
		return string(raw)
	}

	// 3. EUC-KR / CP949 (x/text's EUCKR decoder covers the CP949 extension)
	decoded, err := korean.EUCKR.NewDecoder().Bytes(raw)
	if err == nil {
		text := string(decoded)
		if IsKoreanText(text) && !HasBrokenCharacters(text) {
			return text
		}
	}

	// 4. Last resort: lossy UTF-8
	return string(bytes.ToValidUTF8(raw, []byte("�")))
}

// IsKoreanText reports whether the text contains at least one Hangul syllable.
func IsKoreanText(text string) bool {
	return hangulPattern.MatchString(text)
}

// HasBrokenCharacters reports whether a decode produced replacement or
// control characters.
func HasBrokenCharacters(text string) bool {
	return brokenPattern.MatchString(text)
}

// RemoveBOM strips a leading UTF-8 BOM from decoded text.
func RemoveBOM(content string) string {
	return strings.TrimPrefix(content, "\uFEFF")
}

func decodeUTF16(raw []byte, littleEndian bool) string {
	var sb strings.Builder
	for i := 0; i+1 < len(raw); i += 2 {
		var u uint16
		if littleEndian {
			u = uint16(raw[i]) | uint16(raw[i+1])<<8
		} else {
			u = uint16(raw[i])<<8 | uint16(raw[i+1])
		}
		// Surrogate pair handling
		if u >= 0xD800 && u <= 0xDBFF && i+3 < len(raw) {
			var lo uint16
			if littleEndian {
				lo = uint16(raw[i+2]) | uint16(raw[i+3])<<8
			} else {
				lo = uint16(raw[i+2])<<8 | uint16(raw[i+3])
			}
			if lo >= 0xDC00 && lo <= 0xDFFF {
				r := 0x10000 + (rune(u)-0xD800)<<10 + (rune(lo) - 0xDC00)
				sb.WriteRune(r)
				i += 2
				continue
			}
		}
		sb.WriteRune(rune(u))
	}
	return sb.String()
}

func decodeUTF32(raw []byte, littleEndian bool) string {
	var sb strings.Builder
	for i := 0; i+3 < len(raw); i += 4 {
		var r rune
		if littleEndian {
			r = rune(uint32(raw[i]) | uint32(raw[i+1])<<8 | uint32(raw[i+2])<<16 | uint32(raw[i+3])<<24)
		} else {
			r = rune(uint32(raw[i])<<24 | uint32(raw[i+1])<<16 | uint32(raw[i+2])<<8 | uint32(raw[i+3]))
		}
		if utf8.ValidRune(r) {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}
