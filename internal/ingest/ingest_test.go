package ingest

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"

	"github.com/verdict-finance/verdict/internal/common"
	"github.com/verdict-finance/verdict/internal/model"
)

const sampleCSV = `date,description,amount,type
2024-03-01,Salary credit,50000,credit
2024-03-02,Uber ride to office,350,debit
2024-03-05,Zomato order,-420,DEBIT
2024-03-08 10:30:00,Netflix subscription,649,debit
`

func TestParseCSV(t *testing.T) {
	parser := NewParser()

	transactions, err := parser.ParseCSV(strings.NewReader(sampleCSV))
	require.NoError(t, err)
	require.Len(t, transactions, 4)

	assert.Equal(t, "Salary credit", transactions[0].Description)
	assert.Equal(t, model.DirectionCredit, transactions[0].Direction)
	assert.InDelta(t, 50000.0, transactions[0].Amount, 1e-9)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), transactions[0].Date)

	// Negative amounts are stored as magnitudes; type is case-insensitive.
	assert.InDelta(t, 420.0, transactions[2].Amount, 1e-9)
	assert.Equal(t, model.DirectionDebit, transactions[2].Direction)

	// Date-time cells keep their calendar date.
	assert.Equal(t, time.Date(2024, 3, 8, 0, 0, 0, 0, time.UTC),
		time.Date(transactions[3].Date.Year(), transactions[3].Date.Month(), transactions[3].Date.Day(), 0, 0, 0, 0, time.UTC))
}

func TestParseCSV_SkipsMalformedRows(t *testing.T) {
	csvData := `date,description,amount,type
2024-03-01,Valid row,100,debit
not-a-date,Bad date,100,debit
2024-03-02,Bad amount,abc,debit
2024-03-03,Bad type,100,transfer
2024-03-04,,100,debit
2024-03-05,Second valid row,200,credit
`

	transactions, err := NewParser().ParseCSV(strings.NewReader(csvData))
	require.NoError(t, err)
	require.Len(t, transactions, 2)
	assert.Equal(t, "Valid row", transactions[0].Description)
	assert.Equal(t, "Second valid row", transactions[1].Description)
}

func TestParseCSV_MissingColumns(t *testing.T) {
	csvData := `date,description,amount
2024-03-01,No type column,100
`

	_, err := NewParser().ParseCSV(strings.NewReader(csvData))
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrMissingColumns)
	assert.Contains(t, err.Error(), "type")
}

func TestParseFile_UnsupportedExtension(t *testing.T) {
	_, err := NewParser().ParseFile("statement.pdf", strings.NewReader("junk"))
	assert.ErrorIs(t, err, common.ErrUnsupportedFormat)
}

func TestParseFile_EmptyResultIsError(t *testing.T) {
	csvData := `date,description,amount,type
bad,row,only,here
`
	_, err := NewParser().ParseFile("statement.csv", strings.NewReader(csvData))
	assert.ErrorIs(t, err, common.ErrNoTransactions)
}

func TestParseXLSX(t *testing.T) {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Transactions")
	require.NoError(t, err)

	addRow := func(cells ...string) {
		row := sheet.AddRow()
		for _, c := range cells {
			row.AddCell().SetString(c)
		}
	}
	addRow("Date", "Description", "Amount", "Type")
	addRow("2024-03-01", "Salary credit", "45000", "credit")
	addRow("2024-03-04", "dmart groceries", "2300", "debit")
	addRow("garbage", "row", "zz", "debit")

	var buf bytes.Buffer
	require.NoError(t, file.Write(&buf))

	transactions, err := NewParser().ParseXLSX(&buf)
	require.NoError(t, err)
	require.Len(t, transactions, 2)
	assert.Equal(t, "dmart groceries", transactions[1].Description)
	assert.Equal(t, model.DirectionDebit, transactions[1].Direction)
}

const sampleOFX = `OFXHEADER:100
DATA:OFXSGML
VERSION:102
SECURITY:NONE
ENCODING:USASCII
CHARSET:1252
COMPRESSION:NONE
OLDFILEUID:NONE
NEWFILEUID:NONE

<OFX>
<SIGNONMSGSRSV1>
<SONRS>
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<DTSERVER>20240315120000[0:GMT]
<LANGUAGE>ENG
</SONRS>
</SIGNONMSGSRSV1>
<BANKMSGSRSV1>
<STMTTRNRS>
<TRNUID>1
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<STMTRS>
<CURDEF>INR
<BANKACCTFROM>
<BANKID>123456789
<ACCTID>1234567890
<ACCTTYPE>CHECKING
</BANKACCTFROM>
<BANKTRANLIST>
<DTSTART>20240301120000[0:GMT]
<DTEND>20240331120000[0:GMT]
<STMTTRN>
<TRNTYPE>CREDIT
<DTPOSTED>20240301120000[0:GMT]
<TRNAMT>50000.00
<FITID>2024030101
<NAME>SALARY MARCH
</STMTTRN>
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20240305120000[0:GMT]
<TRNAMT>-649.00
<FITID>2024030501
<NAME>NETFLIX SUBSCRIPTION
</STMTTRN>
</BANKTRANLIST>
<LEDGERBAL>
<BALAMT>49351.00
<DTASOF>20240331120000[0:GMT]
</LEDGERBAL>
</STMTRS>
</STMTTRNRS>
</BANKMSGSRSV1>
</OFX>
`

func TestParseOFX(t *testing.T) {
	transactions, err := NewParser().ParseOFX(strings.NewReader(sampleOFX))
	require.NoError(t, err)
	require.Len(t, transactions, 2)

	assert.Equal(t, model.DirectionCredit, transactions[0].Direction)
	assert.InDelta(t, 50000.0, transactions[0].Amount, 1e-9)
	assert.Equal(t, "SALARY MARCH", transactions[0].Description)

	assert.Equal(t, model.DirectionDebit, transactions[1].Direction)
	assert.InDelta(t, 649.0, transactions[1].Amount, 1e-9)
}

func TestPreprocessOFX(t *testing.T) {
	content := "\n\n  " + "<SEVERITY>Info</SEVERITY>"
	processed := preprocessOFX(content)
	assert.Equal(t, "<SEVERITY>INFO</SEVERITY>", processed)
}
