// Package ofx imports bank and credit card statements in OFX/QFX format.
package ofx

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/Veraticus/spacesub/internal/model"
	"github.com/aclindsa/ofxgo"
	"github.com/shopspring/decimal"
)

// SourceName tags transactions imported by this package.
const SourceName = "ofx"

var (
	severityRegex = regexp.MustCompile(`(?i)<SEVERITY>(Info|Warn|Error)</SEVERITY>`)
	tagFixRegex   = regexp.MustCompile(`(?m)^(\s*<[A-Z][A-Z0-9._]*[A-Z0-9])$`)
	// Leading "MM/DD " or "DD.MM " posting dates.
	leadingDateRegex = regexp.MustCompile(`^\d{2}[/.]\d{2}\s+`)
)

// Card processors prepend these to the merchant; both US and Russian bank
// exports are covered.
var merchantPrefixes = []string{
	"POS PURCHASE ",
	"PURCHASE AUTHORIZED ON ",
	"DEBIT CARD PURCHASE ",
	"ACH DEBIT ",
	"CHECK CARD ",
	"VISA PURCHASE ",
	"MC PURCHASE ",
	"DEBIT PURCHASE ",
	"RECURRING PAYMENT ",
	"ОПЛАТА ",
	"ПОКУПКА ",
	"СПИСАНИЕ ",
}

var genericDescriptions = map[string]bool{
	"DEBIT":           true,
	"CREDIT":          true,
	"PURCHASE":        true,
	"PAYMENT":         true,
	"POS TRANSACTION": true,
	"CARD PURCHASE":   true,
	"ОПЛАТА":          true,
	"ПОКУПКА":         true,
}

// statement is one account's transaction list, bank or credit card alike.
type statement struct {
	accountID    string
	currency     ofxgo.CurrSymbol
	transactions []ofxgo.Transaction
}

// Parser turns OFX/QFX files into transactions owned by one user.
type Parser struct {
	logger          *slog.Logger
	userID          string
	defaultCurrency string
}

// NewParser creates a new OFX parser. defaultCurrency is used when a
// statement does not declare CURDEF.
func NewParser(userID, defaultCurrency string) *Parser {
	return &Parser{
		userID:          userID,
		defaultCurrency: defaultCurrency,
		logger:          slog.Default().With("component", "ofx"),
	}
}

// preprocessOFX repairs formatting that ofxgo rejects but banks emit anyway.
func (p *Parser) preprocessOFX(content string) string {
	content = strings.TrimLeft(content, " \t\r\n")
	content = severityRegex.ReplaceAllStringFunc(content, strings.ToUpper)
	// Some SGML exports drop the closing bracket of a bare opening tag.
	return tagFixRegex.ReplaceAllString(content, "$1>")
}

func (p *Parser) statements(reader io.Reader) ([]statement, error) {
	content, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read OFX file: %w", err)
	}

	resp, err := ofxgo.ParseResponse(strings.NewReader(p.preprocessOFX(string(content))))
	if err != nil {
		return nil, fmt.Errorf("failed to parse OFX file: %w", err)
	}

	var stmts []statement
	for _, msg := range resp.Bank {
		if s, ok := msg.(*ofxgo.StatementResponse); ok && s.BankTranList != nil {
			stmts = append(stmts, statement{
				accountID:    string(s.BankAcctFrom.AcctID),
				currency:     s.CurDef,
				transactions: s.BankTranList.Transactions,
			})
		}
	}
	for _, msg := range resp.CreditCard {
		if s, ok := msg.(*ofxgo.CCStatementResponse); ok && s.BankTranList != nil {
			stmts = append(stmts, statement{
				accountID:    string(s.CCAcctFrom.AcctID),
				currency:     s.CurDef,
				transactions: s.BankTranList.Transactions,
			})
		}
	}
	return stmts, nil
}

// ParseFile parses an OFX/QFX file and returns its transactions in file
// order. Amounts are flipped so that money leaving the account is positive.
func (p *Parser) ParseFile(ctx context.Context, reader io.Reader) ([]model.Transaction, error) {
	stmts, err := p.statements(reader)
	if err != nil {
		return nil, err
	}

	var transactions []model.Transaction
	for _, stmt := range stmts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		currency := p.currency(stmt.currency)
		for _, ofxTx := range stmt.transactions {
			transactions = append(transactions, p.convertTransaction(ofxTx, stmt.accountID, currency))
		}

		p.logger.Debug("Parsed statement",
			"account_id", stmt.accountID,
			"currency", currency,
			"transactions", len(stmt.transactions))
	}

	p.logger.Info("Parsed OFX file",
		"statements", len(stmts),
		"total_transactions", len(transactions))

	return transactions, nil
}

func (p *Parser) currency(cur ofxgo.CurrSymbol) string {
	code := strings.TrimSpace(cur.String())
	if code == "" || code == "XXX" {
		return p.defaultCurrency
	}
	return code
}

func (p *Parser) convertTransaction(ofxTx ofxgo.Transaction, accountID, currency string) model.Transaction {
	amount, err := decimal.NewFromString(ofxTx.TrnAmt.FloatString(2))
	if err != nil {
		p.logger.Warn("Unparseable amount", "fitid", ofxTx.FiTID, "error", err)
		amount = decimal.Zero
	}

	tx := model.Transaction{
		ID:           model.DeriveID(p.userID, SourceName, accountID, string(ofxTx.FiTID)),
		UserID:       p.userID,
		AccountID:    accountID,
		Date:         ofxTx.DtPosted.Time.UTC(),
		Description:  description(ofxTx),
		MerchantName: merchantName(ofxTx),
		Amount:       amount.Neg(),
		Currency:     currency,
		Source:       SourceName,
	}
	tx.Hash = tx.GenerateHash()
	return tx
}

// description is NAME, or MEMO when NAME is missing or generic.
func description(tx ofxgo.Transaction) string {
	name := strings.TrimSpace(string(tx.Name))
	memo := strings.TrimSpace(string(tx.Memo))
	if memo != "" && (name == "" || isGenericDescription(name)) {
		return memo
	}
	return name
}

// merchantName prefers PAYEE and otherwise strips processor prefixes and a
// posting date from the description.
func merchantName(tx ofxgo.Transaction) string {
	if tx.Payee != nil && tx.Payee.Name != "" {
		return string(tx.Payee.Name)
	}

	name := description(tx)
	upper := strings.ToUpper(name)
	for _, prefix := range merchantPrefixes {
		if strings.HasPrefix(upper, prefix) {
			name = string([]rune(name)[utf8.RuneCountInString(prefix):])
			break
		}
	}

	return strings.TrimSpace(leadingDateRegex.ReplaceAllString(name, ""))
}

func isGenericDescription(name string) bool {
	return genericDescriptions[strings.ToUpper(strings.TrimSpace(name))]
}
