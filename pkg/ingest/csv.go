package ingest

import (
	"encoding/csv"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
)

// StatisticsMarker tags the statistics block so analysis can find the
// chunk that carries it after chunking.
const StatisticsMarker = "=== 데이터 통계 ==="

// ProcessCSVFile reads a CSV file of unknown encoding and converts it to
// natural-language text (record descriptions plus per-column statistics),
// which embeds far better than raw comma-separated rows.
func ProcessCSVFile(path string) (string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read csv %s: %w", path, err)
	}

	content := RemoveBOM(DecodeText(raw))

	reader := csv.NewReader(strings.NewReader(content))
	reader.FieldsPerRecord = -1 // tolerate ragged rows
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		return "", fmt.Errorf("parse csv: %w", err)
	}
	if len(rows) == 0 {
		return "", fmt.Errorf("csv is empty")
	}

	headers := rows[0]
	records := make([]map[string]string, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if isEmptyRow(row) {
			continue
		}
		record := make(map[string]string, len(headers))
		for i, h := range headers {
			if i < len(row) {
				record[h] = strings.TrimSpace(row[i])
			}
		}
		records = append(records, record)
	}

	return ConvertCSVToText(records, headers), nil
}

// ConvertCSVToText renders parsed CSV records as Korean natural-language text.
func ConvertCSVToText(records []map[string]string, headers []string) string {
	var sb strings.Builder

	sb.WriteString("데이터셋 정보:\n")
	sb.WriteString(fmt.Sprintf("총 %d개의 레코드가 있습니다.\n", len(records)))
	sb.WriteString(fmt.Sprintf("컬럼: %s\n\n", strings.Join(headers, ", ")))

	for i, record := range records {
		sb.WriteString(fmt.Sprintf("레코드 %d:\n", i+1))
		for _, h := range headers {
			if v := record[h]; v != "" {
				sb.WriteString(fmt.Sprintf("- %s: %s\n", h, v))
			}
		}
		sb.WriteString("\n")
	}

	sb.WriteString(generateCSVStatistics(records, headers))

	return sb.String()
}

func generateCSVStatistics(records []map[string]string, headers []string) string {
	var sb strings.Builder
	sb.WriteString("\n" + StatisticsMarker + "\n")

	for _, header := range headers {
		var values []string
		for _, record := range records {
			if v := record[header]; v != "" {
				values = append(values, v)
			}
		}

		sb.WriteString(fmt.Sprintf("\n%s 컬럼:\n", header))
		sb.WriteString(fmt.Sprintf("- 총 %d개의 값\n", len(values)))

		numeric := parseNumeric(values)
		if len(numeric) > 0 && len(numeric) == len(values) {
			sum := 0.0
			min, max := numeric[0], numeric[0]
			for _, n := range numeric {
				sum += n
				if n < min {
					min = n
				}
				if n > max {
					max = n
				}
			}
			avg := sum / float64(len(numeric))
			sb.WriteString(fmt.Sprintf("- 평균: %s\n", formatNumber(avg)))
			sb.WriteString(fmt.Sprintf("- 최소값: %s\n", formatNumber(min)))
			sb.WriteString(fmt.Sprintf("- 최대값: %s\n", formatNumber(max)))
		} else {
			unique := uniqueValues(values)
			sb.WriteString(fmt.Sprintf("- 고유값 개수: %d\n", len(unique)))

			if len(unique) <= 10 {
				type valueCount struct {
					value string
					count int
				}
				counts := make([]valueCount, 0, len(unique))
				for _, u := range unique {
					n := 0
					for _, v := range values {
						if v == u {
							n++
						}
					}
					counts = append(counts, valueCount{u, n})
				}
				sort.SliceStable(counts, func(i, j int) bool {
					return counts[i].count > counts[j].count
				})
				sb.WriteString("- 값별 빈도:\n")
				for _, c := range counts {
					sb.WriteString(fmt.Sprintf("  %s: %d회\n", c.value, c.count))
				}
			}
		}
	}

	return sb.String()
}

func parseNumeric(values []string) []float64 {
	var out []float64
	for _, v := range values {
		cleaned := strings.ReplaceAll(v, ",", "")
		if n, err := strconv.ParseFloat(cleaned, 64); err == nil {
			out = append(out, n)
		}
	}
	return out
}

func uniqueValues(values []string) []string {
	seen := make(map[string]bool, len(values))
	var out []string
	for _, v := range values {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}

func formatNumber(n float64) string {
	if n == float64(int64(n)) {
		return strconv.FormatInt(int64(n), 10)
	}
	return strconv.FormatFloat(n, 'f', 2, 64)
}

func isEmptyRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
