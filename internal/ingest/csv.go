package ingest

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/verdict-finance/verdict/internal/common"
	"github.com/verdict-finance/verdict/internal/model"
)

// ParseCSV reads a comma-separated statement with a header row.
func (p *Parser) ParseCSV(r io.Reader) ([]model.Transaction, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // malformed rows are skipped, not fatal
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}
	if len(records) == 0 {
		return nil, common.ErrNoTransactions
	}

	index, err := columnIndex(records[0])
	if err != nil {
		return nil, err
	}

	return convertRows(records[1:], index), nil
}
