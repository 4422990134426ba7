package ingest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestProcessCSVFile(t *testing.T) {
	path := writeTempCSV(t, "이름,나이,도시\n홍길동,30,서울\n김철수,25,부산\n")

	text, err := ProcessCSVFile(path)

	require.NoError(t, err)
	assert.Contains(t, text, "데이터셋 정보:")
	assert.Contains(t, text, "총 2개의 레코드가 있습니다.")
	assert.Contains(t, text, "컬럼: 이름, 나이, 도시")
	assert.Contains(t, text, "레코드 1:")
	assert.Contains(t, text, "- 이름: 홍길동")
	assert.Contains(t, text, StatisticsMarker)
}

func TestProcessCSVFileNumericStatistics(t *testing.T) {
	path := writeTempCSV(t, "product,price\na,100\nb,200\nc,300\n")

	text, err := ProcessCSVFile(path)

	require.NoError(t, err)
	assert.Contains(t, text, "price 컬럼:")
	assert.Contains(t, text, "- 평균: 200")
	assert.Contains(t, text, "- 최소값: 100")
	assert.Contains(t, text, "- 최대값: 300")
}

func TestProcessCSVFileCategoricalStatistics(t *testing.T) {
	path := writeTempCSV(t, "city\n서울\n부산\n서울\n")

	text, err := ProcessCSVFile(path)

	require.NoError(t, err)
	assert.Contains(t, text, "- 고유값 개수: 2")
	assert.Contains(t, text, "- 값별 빈도:")
	assert.Contains(t, text, "서울: 2회")
	assert.Contains(t, text, "부산: 1회")
}

func TestProcessCSVFileSkipsEmptyRows(t *testing.T) {
	path := writeTempCSV(t, "a,b\n1,2\n,\n3,4\n")

	text, err := ProcessCSVFile(path)

	require.NoError(t, err)
	assert.Contains(t, text, "총 2개의 레코드가 있습니다.")
}

func TestProcessCSVFileNumbersWithThousandsSeparator(t *testing.T) {
	path := writeTempCSV(t, `amount
"1,000"
"2,000"
`)

	text, err := ProcessCSVFile(path)

	require.NoError(t, err)
	assert.Contains(t, text, "- 평균: 1500")
}

func TestProcessCSVFileEmpty(t *testing.T) {
	path := writeTempCSV(t, "")

	_, err := ProcessCSVFile(path)

	assert.Error(t, err)
}

func TestConvertCSVToTextRaggedRows(t *testing.T) {
	records := []map[string]string{
		{"a": "1", "b": "2"},
		{"a": "3"},
	}

	text := ConvertCSVToText(records, []string{"a", "b"})

	assert.Contains(t, text, "레코드 2:")
	assert.Contains(t, text, "- a: 3")
}
