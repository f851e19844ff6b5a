package statement

import (
	"time"

	"github.com/shopspring/decimal"
)

// SecurityDraft accumulates security identity fields across blocks before
// finalization.
type SecurityDraft struct {
	ISIN     string
	WKN      string
	Ticker   string
	Name     string
	Currency string
}

// touched reports whether any identity field was captured.
func (d *SecurityDraft) touched() bool {
	return d.ISIN != "" || d.WKN != "" || d.Ticker != "" || d.Name != "" || d.Currency != ""
}

// TransactionDraft accumulates transaction fields across one or more blocks
// before the assembler finalizes it.
type TransactionDraft struct {
	Type       TxType
	Date       time.Time
	Shares     Quantity
	Amount     Money
	Gross      Money           // gross value in the settlement currency, when captured
	GrossForex Money           // gross value in the security's native currency, when captured
	Rate       decimal.Decimal // explicit exchange rate, when captured
	Units      []Unit          // fee and tax units
	Note       string
	Failure    string // reason tag for recognized-but-unsupported entries
}

// touched reports whether any field was captured into the draft.
func (d *TransactionDraft) touched() bool {
	return d.Type != "" || !d.Date.IsZero() || !d.Shares.IsZero() ||
		d.Amount.Currency() != "" || len(d.Units) > 0 || d.Note != "" || d.Failure != ""
}

// complete reports whether the draft carries the fields its type requires.
func (d *TransactionDraft) complete() bool {
	if d.Type == "" || d.Date.IsZero() {
		return false
	}
	if d.Type == TypeUnsupported {
		return true
	}
	if d.Amount.Currency() == "" {
		return false
	}
	if d.Type.IsShareBased() && d.Shares.IsZero() {
		return false
	}
	return true
}

// Context is the mutable state of one in-flight document extraction. It is
// owned by exactly one single-threaded pass and discarded at document end.
//
// Scratch values and the open drafts persist across blocks, so identity
// captured in a header block can be completed by amounts captured further
// down the document.
type Context struct {
	doc             Document
	defaultCurrency string
	vars            map[string]string
	security        *SecurityDraft
	tx              *TransactionDraft
}

// NewContext creates the context for one document pass.
func NewContext(doc Document, defaultCurrency string) *Context {
	return &Context{
		doc:             doc,
		defaultCurrency: defaultCurrency,
		vars:            make(map[string]string),
	}
}

// Doc returns the document under extraction.
func (c *Context) Doc() Document { return c.doc }

// DefaultCurrency returns the document's account currency as currently known.
func (c *Context) DefaultCurrency() string { return c.defaultCurrency }

// SetDefaultCurrency records the document's account currency.
func (c *Context) SetDefaultCurrency(cur string) { c.defaultCurrency = cur }

// Set stores a scratch value that persists across blocks until overwritten.
func (c *Context) Set(name, value string) { c.vars[name] = value }

// Get returns a scratch value previously stored with Set.
func (c *Context) Get(name string) (string, bool) {
	v, ok := c.vars[name]
	return v, ok
}

// Security returns the open security draft, creating it on first use.
func (c *Context) Security() *SecurityDraft {
	if c.security == nil {
		c.security = &SecurityDraft{}
	}
	return c.security
}

// Tx returns the open transaction draft, creating it on first use.
func (c *Context) Tx() *TransactionDraft {
	if c.tx == nil {
		c.tx = &TransactionDraft{}
	}
	return c.tx
}

// clearDrafts drops the open drafts after a finalization (successful or
// not), keeping scratch values and the default currency for the rest of the
// document.
func (c *Context) clearDrafts() {
	c.security = nil
	c.tx = nil
}
