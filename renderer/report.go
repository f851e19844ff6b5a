package renderer

import (
	"fmt"
	"strings"

	"github.com/etnz/statement"
)

// Report is the view model of an extraction run over one or more documents.
type Report struct {
	AccountCurrency string // empty when no currency check was requested
	Documents       []DocumentReport
}

// DocumentReport is the per-document section of the report.
type DocumentReport struct {
	Source       string
	Catalog      string
	Securities   []SecurityRow
	Transactions []TransactionRow
	Errors       []string
}

// SecurityRow is one newly created security.
type SecurityRow struct {
	Name     string
	ID       string // ISIN, WKN or ticker, whichever identifies it
	Currency string
}

// TransactionRow is one finalized transaction, fields preformatted for the
// markdown table.
type TransactionRow struct {
	Date    string
	Type    string
	Detail  string // shares and security for trades, note otherwise
	Amount  string
	Gross   string
	Fees    string
	Taxes   string
	Status  string // currency check verdict, or the failure reason
	Failure bool
}

// NewReport builds the view model from extraction results. When
// accountCurrency is non-empty every transaction also carries its currency
// check verdict.
func NewReport(accountCurrency string, results ...*statement.Result) *Report {
	report := &Report{AccountCurrency: accountCurrency}
	for _, r := range results {
		doc := DocumentReport{Source: r.Source, Catalog: r.Catalog}
		for _, sec := range r.Securities() {
			doc.Securities = append(doc.Securities, SecurityRow{
				Name:     sec.Name,
				ID:       securityID(sec),
				Currency: sec.Currency,
			})
		}
		for _, item := range r.Transactions() {
			doc.Transactions = append(doc.Transactions, transactionRow(item, accountCurrency))
		}
		for _, err := range r.Errors {
			doc.Errors = append(doc.Errors, err.Error())
		}
		report.Documents = append(report.Documents, doc)
	}
	return report
}

func securityID(sec *statement.Security) string {
	switch {
	case sec.ISIN != "":
		return sec.ISIN
	case sec.WKN != "":
		return sec.WKN
	case sec.Ticker != "":
		return sec.Ticker
	default:
		return "-"
	}
}

func transactionRow(item statement.TransactionItem, accountCurrency string) TransactionRow {
	tx := item.Transaction
	row := TransactionRow{
		Date:   tx.Date.Format("2006-01-02"),
		Type:   string(tx.Type),
		Detail: detail(&tx),
		Amount: tx.Amount.String(),
	}
	if item.Failure != "" {
		row.Status = item.Failure
		row.Failure = true
		return row
	}
	if gross, ok := tx.Unit(statement.UnitGross); ok {
		row.Gross = gross.Value.String()
		if gross.HasForex() {
			row.Gross = fmt.Sprintf("%s (%s @ %s)", gross.Value, gross.Forex, gross.Rate)
		}
	}
	if fees := tx.UnitSum(statement.UnitFee); !fees.IsZero() {
		row.Fees = fees.String()
	}
	if taxes := tx.UnitSum(statement.UnitTax); !taxes.IsZero() {
		row.Taxes = taxes.String()
	}
	if accountCurrency != "" {
		status, err := statement.CheckCurrencies(&tx, accountCurrency)
		row.Status = status.String()
		if err != nil {
			row.Status = fmt.Sprintf("%s: %v", status, err)
		}
	}
	return row
}

func detail(tx *statement.Transaction) string {
	var parts []string
	if tx.Security != nil {
		if tx.Type.IsShareBased() {
			parts = append(parts, fmt.Sprintf("%s × %s", tx.Shares, tx.Security.Name))
		} else {
			parts = append(parts, tx.Security.Name)
		}
	}
	if tx.Note != "" {
		parts = append(parts, tx.Note)
	}
	if len(parts) == 0 {
		return "-"
	}
	return strings.Join(parts, ", ")
}
