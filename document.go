package statement

import (
	"iter"
	"regexp"
	"strings"
)

// Document is the raw text of a statement plus its source name (usually the
// original file name). It is immutable: the engine reads it exactly once.
type Document struct {
	Source string
	Text   string
}

// NewDocument creates a Document from a source name and its plain text.
func NewDocument(source, text string) Document {
	return Document{Source: source, Text: text}
}

// Block is a contiguous span of a document relevant to one logical entity: a
// trade confirmation, a dividend advice, one account statement line. Blocks
// are produced by [SplitBlocks] and read-only thereafter.
type Block struct {
	Type string // the block definition's type tag
	Text string // the span's text, begin and end anchor lines included
	Line int    // 1-based line of the begin anchor, for error reports
}

// Lines returns the block's text split into lines.
func (b Block) Lines() []string { return strings.Split(b.Text, "\n") }

// BlockDef bounds one block type with anchor patterns. Begin is mandatory.
// When End is nil the block runs until the next begin anchor of any
// definition, or to the end of the document.
type BlockDef struct {
	Type  string
	Begin *regexp.Regexp
	End   *regexp.Regexp
	// Partial marks a block type that only contributes fields to the open
	// drafts (e.g. a document header): the engine will not attempt to
	// finalize an entity at the end of such a block.
	Partial bool
}

// SplitBlocks partitions the document's text into an ordered, lazy sequence
// of non-overlapping blocks bounded by the given anchor definitions.
//
// Text before the first anchor, between blocks, or after the last block is
// simply not emitted. A begin anchor whose end anchor never shows up yields
// a block running to the end of the document.
func SplitBlocks(doc Document, defs []BlockDef) iter.Seq[Block] {
	lines := strings.Split(doc.Text, "\n")
	return func(yield func(Block) bool) {
		for i := 0; i < len(lines); {
			def := matchBegin(lines[i], defs)
			if def == nil {
				i++
				continue
			}
			end := blockEnd(lines, i, def, defs)
			block := Block{
				Type: def.Type,
				Text: strings.Join(lines[i:end], "\n"),
				Line: i + 1,
			}
			if !yield(block) {
				return
			}
			i = end
		}
	}
}

// matchBegin returns the first definition whose begin anchor matches the line.
func matchBegin(line string, defs []BlockDef) *BlockDef {
	for i := range defs {
		if defs[i].Begin.MatchString(line) {
			return &defs[i]
		}
	}
	return nil
}

// blockEnd computes the exclusive end line index of a block starting at 'start'.
func blockEnd(lines []string, start int, def *BlockDef, defs []BlockDef) int {
	for i := start + 1; i < len(lines); i++ {
		if def.End != nil {
			if def.End.MatchString(lines[i]) {
				return i + 1 // end anchor line belongs to the block
			}
			continue
		}
		// No end anchor: the block closes right before the next begin anchor.
		if matchBegin(lines[i], defs) != nil {
			return i
		}
	}
	return len(lines)
}
