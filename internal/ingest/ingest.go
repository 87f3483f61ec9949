// Package ingest parses uploaded bank-statement files (CSV, XLSX, OFX/QFX)
// into canonical transaction rows for the behavior analyzer.
package ingest

import (
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/verdict-finance/verdict/internal/common"
	"github.com/verdict-finance/verdict/internal/model"
)

// Columns every tabular statement must carry, by lower-cased header name.
var requiredColumns = []string{"date", "description", "amount", "type"}

// Accepted row date layouts: ISO date, ISO date-time, RFC3339.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
}

// Parser converts statement files into transactions. Malformed rows are
// skipped with a warning rather than failing the batch; format-level
// problems (unreadable file, missing columns) are errors.
type Parser struct{}

// NewParser creates a statement parser.
func NewParser() *Parser {
	return &Parser{}
}

// ParseFile dispatches on the file extension and parses the content. It
// returns an error when the format is unsupported or no valid rows remain
// after skipping malformed ones.
func (p *Parser) ParseFile(filename string, r io.Reader) ([]model.Transaction, error) {
	var transactions []model.Transaction
	var err error

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		transactions, err = p.ParseCSV(r)
	case ".xlsx", ".xls":
		transactions, err = p.ParseXLSX(r)
	case ".ofx", ".qfx":
		transactions, err = p.ParseOFX(r)
	default:
		return nil, fmt.Errorf("%w: %s (allowed: csv, xlsx, xls, ofx, qfx)", common.ErrUnsupportedFormat, filename)
	}

	if err != nil {
		return nil, err
	}
	if len(transactions) == 0 {
		return nil, fmt.Errorf("%w in %s", common.ErrNoTransactions, filename)
	}

	return transactions, nil
}

// columnIndex maps the required columns onto header positions. Header
// matching is case-insensitive and ignores surrounding whitespace.
func columnIndex(header []string) (map[string]int, error) {
	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.ToLower(strings.TrimSpace(name))] = i
	}

	var missing []string
	for _, col := range requiredColumns {
		if _, ok := index[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", common.ErrMissingColumns, strings.Join(missing, ", "))
	}

	return index, nil
}

// parseRow converts one tabular row into a transaction. An error means
// the row should be skipped, not that the batch failed.
func parseRow(cells []string, index map[string]int) (model.Transaction, error) {
	cell := func(col string) string {
		i := index[col]
		if i >= len(cells) {
			return ""
		}
		return strings.TrimSpace(cells[i])
	}

	date, err := parseDate(cell("date"))
	if err != nil {
		return model.Transaction{}, err
	}

	description := cell("description")
	if description == "" {
		return model.Transaction{}, fmt.Errorf("empty description")
	}

	amount, err := strconv.ParseFloat(cell("amount"), 64)
	if err != nil {
		return model.Transaction{}, fmt.Errorf("bad amount %q: %w", cell("amount"), err)
	}
	if amount < 0 {
		amount = -amount
	}

	direction := model.TransactionDirection(strings.ToLower(cell("type")))
	if direction != model.DirectionDebit && direction != model.DirectionCredit {
		return model.Transaction{}, fmt.Errorf("bad transaction type %q", cell("type"))
	}

	return model.Transaction{
		Date:        date,
		Description: description,
		Amount:      amount,
		Direction:   direction,
	}, nil
}

func parseDate(value string) (time.Time, error) {
	// Date-time values may carry the time after a space; the date part is
	// what matters for depth calculations.
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	if fields := strings.Fields(value); len(fields) > 1 {
		if t, err := time.Parse("2006-01-02", fields[0]); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable date %q", value)
}

// convertRows applies parseRow across a table, skipping malformed rows.
func convertRows(rows [][]string, index map[string]int) []model.Transaction {
	var transactions []model.Transaction
	for i, cells := range rows {
		txn, err := parseRow(cells, index)
		if err != nil {
			slog.Warn("skipping malformed statement row",
				"row", i+2, // 1-based, counting the header
				"error", err)
			continue
		}
		transactions = append(transactions, txn)
	}
	return transactions
}
