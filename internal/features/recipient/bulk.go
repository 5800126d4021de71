package recipient

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ParseBulkFile extracts candidate addresses from an uploaded CSV or
// XLSX recipient list. The first column is taken as the address; a
// header row is skipped if its first cell is not address-shaped.
// Addresses are normalized and deduplicated but NOT validated here;
// validation happens atomically in Resolve.
func ParseBulkFile(file io.Reader, filename string) ([]string, error) {
	lower := strings.ToLower(filename)
	switch {
	case strings.HasSuffix(lower, ".csv"):
		return parseBulkCSV(file)
	case strings.HasSuffix(lower, ".xlsx"):
		return parseBulkExcel(file)
	default:
		return nil, fmt.Errorf("unsupported file type %s, expected .csv or .xlsx", filename)
	}
}

func parseBulkCSV(file io.Reader) ([]string, error) {
	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	var cells []string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse CSV: %w", err)
		}
		if len(record) > 0 {
			cells = append(cells, record[0])
		}
	}
	return collectAddresses(cells), nil
}

func parseBulkExcel(file io.Reader) ([]string, error) {
	f, err := excelize.OpenReader(file)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("Excel file has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet: %w", err)
	}

	var cells []string
	for _, row := range rows {
		if len(row) > 0 {
			cells = append(cells, row[0])
		}
	}
	return collectAddresses(cells), nil
}

func collectAddresses(cells []string) []string {
	cells = normalizeAll(cells)
	// Drop a leading header cell ("email", "address", ...).
	if len(cells) > 0 && !strings.Contains(cells[0], "@") {
		cells = cells[1:]
	}
	return dedup(cells)
}
