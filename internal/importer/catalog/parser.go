package catalog

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	enc "github.com/karimelh/salespoint/internal/encoding"
	"github.com/karimelh/salespoint/internal/product"
)

// Parser reads product catalog CSV exports. It auto-detects the column
// layout (English or Arabic headers) and the delimiter (comma or
// semicolon, depending on the spreadsheet locale).
type Parser struct{}

func NewParser() *Parser {
	return &Parser{}
}

func (p *Parser) Parse(r io.Reader) ([]product.CreateParams, error) {
	utf8r, err := enc.NewUTF8Reader(r)
	if err != nil {
		return nil, fmt.Errorf("detect encoding: %w", err)
	}

	raw, err := io.ReadAll(utf8r)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}

	for _, comma := range []rune{',', ';'} {
		reader := csv.NewReader(strings.NewReader(string(raw)))
		reader.Comma = comma
		reader.FieldsPerRecord = -1
		reader.LazyQuotes = true

		rows, err := reader.ReadAll()
		if err != nil {
			continue
		}

		profile, cols, headerIdx := detectProfile(rows)
		if profile == nil {
			continue
		}

		return parseRows(profile, cols, rows[headerIdx+1:], headerIdx+1)
	}

	return nil, fmt.Errorf("no matching catalog layout found: expected name and price columns")
}

// colIndex maps column names to their index in the row.
type colIndex map[string]int

func detectProfile(rows [][]string) (*Profile, colIndex, int) {
	for rowIdx, row := range rows {
		cols := make(colIndex)

		for i, cell := range row {
			name := strings.ToLower(strings.TrimSpace(cell))
			if name != "" {
				cols[name] = i
			}
		}

		for i := range profiles {
			if matchesProfile(&profiles[i], cols) {
				return &profiles[i], cols, rowIdx
			}
		}
	}

	return nil, nil, 0
}

func matchesProfile(p *Profile, cols colIndex) bool {
	for _, name := range p.requiredCols() {
		if _, ok := cols[name]; !ok {
			return false
		}
	}

	return true
}

func parseRows(p *Profile, cols colIndex, rows [][]string, headerRowNum int) ([]product.CreateParams, error) {
	var params []product.CreateParams

	for i, row := range rows {
		rowNum := headerRowNum + i + 1 // 1-based, first row after the header

		name := cellValue(row, cols, p.NameCol)
		if name == "" {
			// Blank or footer row.
			continue
		}

		price, err := parsePrice(cellValue(row, cols, p.PriceCol))
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", rowNum, err)
		}

		quantity, err := parseQuantity(cellValue(row, cols, p.QuantityCol))
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", rowNum, err)
		}

		params = append(params, product.CreateParams{
			Barcode:     cellValue(row, cols, p.BarcodeCol),
			Name:        name,
			Price:       price,
			Quantity:    quantity,
			Description: cellValue(row, cols, p.DescCol),
			Category:    cellValue(row, cols, p.CategoryCol),
		})
	}

	return params, nil
}

// parsePrice accepts both dot and comma decimal separators.
func parsePrice(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Decimal{}, fmt.Errorf("missing price")
	}

	if !strings.Contains(s, ".") {
		s = strings.ReplaceAll(s, ",", ".")
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("invalid price %q", s)
	}

	if d.IsNegative() {
		return decimal.Decimal{}, fmt.Errorf("negative price %q", s)
	}

	return d, nil
}

// parseQuantity treats a missing quantity column as zero stock.
func parseQuantity(s string) (int64, error) {
	if s == "" {
		return 0, nil
	}

	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid quantity %q", s)
	}

	return n, nil
}

func cellValue(row []string, cols colIndex, name string) string {
	idx, ok := cols[name]
	if !ok || idx < 0 || idx >= len(row) {
		return ""
	}

	return strings.TrimSpace(row[idx])
}
