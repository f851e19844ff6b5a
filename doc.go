// Package statement extracts normalized financial transactions from the
// plain text of bank and broker statements.
//
// The input is a [Document]: raw text already converted from the original
// binary file, plus a source name. An issuer-specific [Catalog] describes how
// to recognize the document, how to split it into logical blocks (a trade
// confirmation, a dividend advice, a single account statement line), and
// which [Rule] patterns extract fields from each block.
//
// The [Extractor] drives the pass: it splits the document, applies the
// matching rules in priority order, accumulates partial entities in an
// extraction context that survives across blocks, and finalizes securities
// and transactions once their required fields are complete. Monetary
// invariants (net amount vs gross value, fees, taxes, and foreign exchange
// pairs) are enforced at finalization.
//
// A malformed block never aborts the rest of the document: extraction
// returns the entities it could finalize together with the per-block errors
// it collected. Only a structurally unusable document (empty text, no
// catalog recognizing it) fails the whole call.
package statement
