package statement

import (
	"errors"
	"fmt"
)

// Structural failures abort the whole document; everything else is recorded
// per block and extraction continues.
var (
	// ErrEmptyDocument is returned when the document has no text at all.
	ErrEmptyDocument = errors.New("document is empty")
	// ErrUnrecognizedDocument is returned when no catalog's marker matches
	// the document.
	ErrUnrecognizedDocument = errors.New("no catalog recognizes this document")
)

// BlockError records a non-fatal failure on one block: either no rule
// matched a block of a recognized type, or the captured fields could not be
// assembled into a consistent entity. Sibling blocks are unaffected.
type BlockError struct {
	Source string // document source name
	Block  Block
	Err    error
}

func (e *BlockError) Error() string {
	return fmt.Sprintf("%s:%d: block %q: %v", e.Source, e.Block.Line, e.Block.Type, e.Err)
}

func (e *BlockError) Unwrap() error { return e.Err }

// ErrNoRuleMatched tags a block of a recognized type that produced nothing.
var ErrNoRuleMatched = errors.New("no rule matched")

// AssemblyError reports captured fields violating a monetary invariant at
// finalization. The draft is discarded and recorded as a BlockError.
type AssemblyError struct {
	Reason string
}

func (e *AssemblyError) Error() string { return "assembly: " + e.Reason }

func assemblyErrorf(format string, args ...any) error {
	return &AssemblyError{Reason: fmt.Sprintf(format, args...)}
}
