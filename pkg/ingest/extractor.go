package ingest

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
)

// ExtractText dispatches on file extension and returns the document's plain
// text. Supported: .pdf, .txt, .csv.
func ExtractText(path, fileName string) (string, error) {
	ext := strings.ToLower(filepath.Ext(fileName))

	switch ext {
	case ".pdf":
		return ExtractTextFromPDF(path)
	case ".txt":
		content, err := ReadFileWithEncoding(path)
		if err != nil {
			return "", err
		}
		return RemoveBOM(content), nil
	case ".csv":
		return ProcessCSVFile(path)
	default:
		return "", fmt.Errorf("지원하지 않는 파일 형식입니다. PDF, TXT, CSV 파일만 지원됩니다")
	}
}

var (
	unsafeChars     = regexp.MustCompile(`[<>:"/\\|?*]`)
	whitespaceRun   = regexp.MustCompile(`\s+`)
	disallowedChars = regexp.MustCompile(`[^\w가-힣ㄱ-ㅎㅏ-ㅣ._-]`)
	underscoreRun   = regexp.MustCompile(`_+`)
	trimUnderscores = regexp.MustCompile(`^_|_$`)
)

// SafeFileName produces a filesystem-safe name while preserving Hangul.
func SafeFileName(original string) string {
	name := unsafeChars.ReplaceAllString(original, "_")
	name = whitespaceRun.ReplaceAllString(name, "_")
	name = disallowedChars.ReplaceAllString(name, "_")
	name = underscoreRun.ReplaceAllString(name, "_")
	name = trimUnderscores.ReplaceAllString(name, "")

	if name == "" {
		return "unnamed_file"
	}
	return name
}
