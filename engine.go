package statement

import (
	"fmt"
	"sort"
	"strings"
)

// Item is one element of an extraction result: a finalized security, a
// finalized transaction, or a transaction the caller cannot import carrying
// a failure message.
type Item interface {
	// Kind returns "security" or "transaction".
	Kind() string
}

// SecurityItem wraps a newly created security. Securities already known to
// the Resolver are not re-emitted.
type SecurityItem struct {
	Security *Security
}

func (SecurityItem) Kind() string { return "security" }

// MarshalJSON implements the json.Marshaler interface for SecurityItem.
func (s SecurityItem) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("kind", s.Kind())
	w.EmbedFrom(s.Security)
	return w.MarshalJSON()
}

// TransactionItem wraps a finalized transaction. Failure is non-empty for
// recognized-but-unsupported entries ("found but not imported").
type TransactionItem struct {
	Transaction Transaction
	Failure     string
}

func (TransactionItem) Kind() string { return "transaction" }

// MarshalJSON implements the json.Marshaler interface for TransactionItem.
func (t TransactionItem) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("kind", t.Kind())
	w.EmbedFrom(t.Transaction)
	w.Optional("failure", t.Failure)
	return w.MarshalJSON()
}

// Result collects everything one document yielded: finalized items in
// document order and the non-fatal errors recorded along the way.
type Result struct {
	Source  string
	Catalog string // name of the catalog that recognized the document
	Items   []Item
	Errors  []*BlockError
}

// Securities returns the newly created securities of the result.
func (r *Result) Securities() []*Security {
	var secs []*Security
	for _, it := range r.Items {
		if s, ok := it.(SecurityItem); ok {
			secs = append(secs, s.Security)
		}
	}
	return secs
}

// Transactions returns the finalized transactions of the result, the
// unsupported placeholders included.
func (r *Result) Transactions() []TransactionItem {
	var txs []TransactionItem
	for _, it := range r.Items {
		if t, ok := it.(TransactionItem); ok {
			txs = append(txs, t)
		}
	}
	return txs
}

// Extractor drives the extraction of documents against a set of issuer
// catalogs. It is stateless across documents: each Extract call builds its
// own context and collector, so one Extractor may serve concurrent
// extractions as long as the Resolver tolerates concurrent calls.
type Extractor struct {
	catalogs []*Catalog
	resolver Resolver
}

// NewExtractor creates an extractor over the given catalogs.
func NewExtractor(resolver Resolver, catalogs ...*Catalog) *Extractor {
	return &Extractor{catalogs: catalogs, resolver: resolver}
}

// Extract runs the single-threaded, single-pass extraction of one document.
//
// The returned error is non-nil only for structural failures that make the
// whole document unprocessable (empty text, no catalog recognizing it).
// Everything else, a malformed block included, is recorded in the result's
// Errors and never aborts the siblings.
func (x *Extractor) Extract(doc Document) (*Result, error) {
	if strings.TrimSpace(doc.Text) == "" {
		return nil, fmt.Errorf("%s: %w", doc.Source, ErrEmptyDocument)
	}
	catalog := x.match(doc)
	if catalog == nil {
		return nil, fmt.Errorf("%s: %w", doc.Source, ErrUnrecognizedDocument)
	}
	return catalog.extract(doc, x.resolver), nil
}

// match returns the first catalog whose marker recognizes the document.
func (x *Extractor) match(doc Document) *Catalog {
	for _, c := range x.catalogs {
		if c.Marker.MatchString(doc.Text) {
			return c
		}
	}
	return nil
}

// extract is the per-document pass: split, match, assemble, collect.
func (c *Catalog) extract(doc Document, resolver Resolver) *Result {
	result := &Result{Source: doc.Source, Catalog: c.Name}
	ctx := NewContext(doc, c.Currency)

	for block := range SplitBlocks(doc, c.Blocks) {
		if err := c.applyRules(ctx, block); err != nil {
			result.fail(doc, block, err)
			ctx.clearDrafts()
			continue
		}
		if c.partial(block.Type) {
			continue
		}
		c.finalize(ctx, block, resolver, result)
	}
	return result
}

// applyRules evaluates the block's applicable rules, category by category,
// first match wins within a category. It returns ErrNoRuleMatched when a
// block of a recognized type produced nothing.
func (c *Catalog) applyRules(ctx *Context, block Block) error {
	matched := false
	for _, rules := range c.rulesFor(block.Type) {
		for _, r := range rules {
			ok, err := r.apply(ctx, block.Text)
			if err != nil {
				return err
			}
			if ok {
				matched = true
				break // next category
			}
		}
	}
	if !matched {
		return ErrNoRuleMatched
	}
	return nil
}

// finalize closes the open drafts at the end of a non-partial block,
// emitting a security before the transaction that references it.
func (c *Catalog) finalize(ctx *Context, block Block, resolver Resolver, result *Result) {
	defer ctx.clearDrafts()

	var sec *Security
	if ctx.security != nil && ctx.security.touched() {
		var created bool
		var err error
		sec, created, err = finalizeSecurity(ctx.security, ctx.DefaultCurrency(), resolver)
		if err != nil {
			result.fail(ctx.Doc(), block, err)
			return
		}
		if created {
			result.Items = append(result.Items, SecurityItem{Security: sec})
		}
	}

	if ctx.tx == nil || !ctx.tx.touched() {
		return
	}
	if !ctx.tx.complete() {
		result.fail(ctx.Doc(), block, assemblyErrorf("draft is missing required fields"))
		return
	}
	tx, err := finalizeTransaction(ctx.tx, sec, ctx.Doc().Source)
	if err != nil {
		result.fail(ctx.Doc(), block, err)
		return
	}
	result.Items = append(result.Items, TransactionItem{Transaction: tx, Failure: ctx.tx.Failure})
}

func (r *Result) fail(doc Document, block Block, err error) {
	r.Errors = append(r.Errors, &BlockError{Source: doc.Source, Block: block, Err: err})
}

// rulesFor returns the block type's rules grouped by category, categories in
// declaration order, rules within a category by ascending priority (stable).
func (c *Catalog) rulesFor(blockType string) [][]*Rule {
	var order []string
	groups := make(map[string][]*Rule)
	for i := range c.Rules {
		r := &c.Rules[i]
		if r.Block != blockType {
			continue
		}
		if _, ok := groups[r.Category]; !ok {
			order = append(order, r.Category)
		}
		groups[r.Category] = append(groups[r.Category], r)
	}
	out := make([][]*Rule, 0, len(order))
	for _, cat := range order {
		rules := groups[cat]
		sort.SliceStable(rules, func(i, j int) bool { return rules[i].Priority < rules[j].Priority })
		out = append(out, rules)
	}
	return out
}

// partial reports whether the block type only contributes to open drafts.
func (c *Catalog) partial(blockType string) bool {
	for i := range c.Blocks {
		if c.Blocks[i].Type == blockType {
			return c.Blocks[i].Partial
		}
	}
	return false
}
