package ingest

import (
	"fmt"
	"io"

	"github.com/tealeg/xlsx/v2"

	"github.com/verdict-finance/verdict/internal/common"
	"github.com/verdict-finance/verdict/internal/model"
)

// ParseXLSX reads the first sheet of an Excel workbook. The first row is
// treated as the header.
func (p *Parser) ParseXLSX(r io.Reader) ([]model.Transaction, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read XLSX: %w", err)
	}

	file, err := xlsx.OpenBinary(content)
	if err != nil {
		return nil, fmt.Errorf("failed to parse XLSX: %w", err)
	}
	if len(file.Sheets) == 0 {
		return nil, common.ErrNoTransactions
	}

	sheet := file.Sheets[0]
	if len(sheet.Rows) == 0 {
		return nil, common.ErrNoTransactions
	}

	header := rowToStrings(sheet.Rows[0])
	index, err := columnIndex(header)
	if err != nil {
		return nil, err
	}

	rows := make([][]string, 0, len(sheet.Rows)-1)
	for _, row := range sheet.Rows[1:] {
		rows = append(rows, rowToStrings(row))
	}

	return convertRows(rows, index), nil
}

func rowToStrings(row *xlsx.Row) []string {
	cells := make([]string, len(row.Cells))
	for i, cell := range row.Cells {
		cells[i] = cell.String()
	}
	return cells
}
