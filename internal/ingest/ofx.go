package ingest

import (
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/aclindsa/ofxgo"

	"github.com/verdict-finance/verdict/internal/model"
)

var (
	severityRegex = regexp.MustCompile(`(?i)<SEVERITY>(Info|Warn|Error)</SEVERITY>`)
	tagFixRegex   = regexp.MustCompile(`(?m)^(\s*<[A-Z][A-Z0-9._]*[A-Z0-9])$`)
)

// preprocessOFX fixes common formatting issues in bank-exported OFX files:
// leading whitespace, mixed-case SEVERITY values, and SGML-style tags
// missing their closing bracket.
func preprocessOFX(content string) string {
	content = strings.TrimLeft(content, " \t\r\n")

	content = severityRegex.ReplaceAllStringFunc(content, strings.ToUpper)
	content = tagFixRegex.ReplaceAllString(content, "$1>")

	return content
}

// ParseOFX reads an OFX/QFX statement. Sign carries direction in OFX, so
// negative amounts become debits and positive ones credits, with the
// magnitude kept on the transaction.
func (p *Parser) ParseOFX(r io.Reader) ([]model.Transaction, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read OFX file: %w", err)
	}

	resp, err := ofxgo.ParseResponse(strings.NewReader(preprocessOFX(string(content))))
	if err != nil {
		return nil, fmt.Errorf("failed to parse OFX file: %w", err)
	}

	var transactions []model.Transaction

	for _, msg := range resp.Bank {
		if stmt, ok := msg.(*ofxgo.StatementResponse); ok && stmt.BankTranList != nil {
			for _, ofxTx := range stmt.BankTranList.Transactions {
				transactions = append(transactions, convertOFXTransaction(ofxTx))
			}
		}
	}
	for _, msg := range resp.CreditCard {
		if stmt, ok := msg.(*ofxgo.CCStatementResponse); ok && stmt.BankTranList != nil {
			for _, ofxTx := range stmt.BankTranList.Transactions {
				transactions = append(transactions, convertOFXTransaction(ofxTx))
			}
		}
	}

	return transactions, nil
}

func convertOFXTransaction(ofxTx ofxgo.Transaction) model.Transaction {
	amount, _ := ofxTx.TrnAmt.Float64()
	direction := model.DirectionCredit
	if amount < 0 {
		amount = -amount
		direction = model.DirectionDebit
	}

	description := string(ofxTx.Name)
	if ofxTx.Payee != nil && ofxTx.Payee.Name != "" {
		description = string(ofxTx.Payee.Name)
	}
	if description == "" {
		description = string(ofxTx.Memo)
	}

	return model.Transaction{
		Date:        ofxTx.DtPosted.Time,
		Description: strings.TrimSpace(description),
		Amount:      amount,
		Direction:   direction,
	}
}
