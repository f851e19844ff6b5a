package statement

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
)

// Catalog is the complete rule set of one issuer (or one document family of
// an issuer): a marker recognizing the document, the block anchor
// definitions, and the extraction rules. Catalogs are static configuration:
// they are built once, never mutated at runtime, and shared freely across
// concurrent extractions.
type Catalog struct {
	Name     string
	Marker   *regexp.Regexp // recognizes the document (version/issuer marker)
	Currency string         // account currency when the document states none
	Blocks   []BlockDef
	Rules    []Rule
}

// This file also implements the JSON catalog format, so that issuer rule
// sets can ship as plain configuration files next to the binary. The format
// is a single JSON object per file, kept human readable and git friendly.

type jcatalog struct {
	Name     string   `json:"name"`
	Marker   string   `json:"marker"`
	Currency string   `json:"currency,omitempty"`
	Blocks   []jblock `json:"blocks"`
	Rules    []jrule  `json:"rules"`
}

type jblock struct {
	Type    string `json:"type"`
	Begin   string `json:"begin"`
	End     string `json:"end,omitempty"`
	Partial bool   `json:"partial,omitempty"`
}

type jrule struct {
	Category string    `json:"category"`
	Block    string    `json:"block"`
	Trigger  string    `json:"trigger"`
	Priority int       `json:"priority,omitempty"`
	Repeat   bool      `json:"repeat,omitempty"`
	Actions  []jaction `json:"actions"`
}

// jaction is one declarative assembler step. 'do' selects the primitive,
// the remaining attributes parameterize it.
type jaction struct {
	Do       string `json:"do"`
	Value    string `json:"value,omitempty"`    // type, unsupported
	Group    string `json:"group,omitempty"`    // capture group name
	Currency string `json:"currency,omitempty"` // capture group of the currency
	Layout   string `json:"layout,omitempty"`   // time layout for dates
	Prefix   string `json:"prefix,omitempty"`   // note prefix
	Name     string `json:"name,omitempty"`     // scratch value name
}

// ReadCatalog parses one JSON catalog.
func ReadCatalog(r io.Reader) (*Catalog, error) {
	var jc jcatalog
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&jc); err != nil {
		return nil, fmt.Errorf("cannot parse catalog: %w", err)
	}
	return jc.compile()
}

// LoadCatalogs reads all *.json catalogs of a directory, sorted by file
// name so that rule set precedence is deterministic.
func LoadCatalogs(dir string) ([]*Catalog, error) {
	filenames, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, fmt.Errorf("cannot scan folder %q for catalogs: %w", dir, err)
	}
	sort.Strings(filenames)

	catalogs := make([]*Catalog, 0, len(filenames))
	for _, filename := range filenames {
		f, err := os.Open(filename)
		if err != nil {
			return nil, fmt.Errorf("cannot open catalog %q: %w", filename, err)
		}
		c, err := ReadCatalog(f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("catalog %q: %w", filename, err)
		}
		catalogs = append(catalogs, c)
	}
	return catalogs, nil
}

func (jc *jcatalog) compile() (*Catalog, error) {
	if jc.Name == "" {
		return nil, fmt.Errorf("catalog has no name")
	}
	marker, err := regexp.Compile(jc.Marker)
	if err != nil {
		return nil, fmt.Errorf("invalid marker pattern: %w", err)
	}
	c := &Catalog{Name: jc.Name, Marker: marker, Currency: jc.Currency}

	for _, jb := range jc.Blocks {
		begin, err := regexp.Compile(jb.Begin)
		if err != nil {
			return nil, fmt.Errorf("block %q: invalid begin pattern: %w", jb.Type, err)
		}
		def := BlockDef{Type: jb.Type, Begin: begin, Partial: jb.Partial}
		if jb.End != "" {
			end, err := regexp.Compile(jb.End)
			if err != nil {
				return nil, fmt.Errorf("block %q: invalid end pattern: %w", jb.Type, err)
			}
			def.End = end
		}
		c.Blocks = append(c.Blocks, def)
	}

	for i, jr := range jc.Rules {
		trigger, err := regexp.Compile("(?m)" + jr.Trigger)
		if err != nil {
			return nil, fmt.Errorf("rule #%d (%s/%s): invalid trigger: %w", i, jr.Block, jr.Category, err)
		}
		assemble, err := compileActions(jr.Actions)
		if err != nil {
			return nil, fmt.Errorf("rule #%d (%s/%s): %w", i, jr.Block, jr.Category, err)
		}
		c.Rules = append(c.Rules, Rule{
			Category: jr.Category,
			Block:    jr.Block,
			Trigger:  trigger,
			Priority: jr.Priority,
			Repeat:   jr.Repeat,
			Assemble: assemble,
		})
	}
	return c, nil
}

func compileActions(actions []jaction) (AssembleFunc, error) {
	if len(actions) == 0 {
		return nil, fmt.Errorf("rule has no actions")
	}
	fns := make([]AssembleFunc, 0, len(actions))
	for _, a := range actions {
		fn, err := a.compile()
		if err != nil {
			return nil, err
		}
		fns = append(fns, fn)
	}
	return All(fns...), nil
}

func (a jaction) compile() (AssembleFunc, error) {
	switch a.Do {
	case "type":
		t, err := ParseTxType(a.Value)
		if err != nil {
			return nil, err
		}
		return SetType(t), nil
	case "unsupported":
		return SetUnsupported(a.Value), nil
	case "date":
		if a.Layout == "" {
			return nil, fmt.Errorf("date action requires a layout")
		}
		return Date(a.Group, a.Layout), nil
	case "shares":
		return Shares(a.Group), nil
	case "amount":
		return Amount(a.Group, a.Currency), nil
	case "gross":
		return Gross(a.Group, a.Currency), nil
	case "forex-gross":
		return ForexGross(a.Group, a.Currency), nil
	case "tax":
		return Tax(a.Group, a.Currency), nil
	case "fee":
		return Fee(a.Group, a.Currency), nil
	case "rate":
		return ExchangeRate(a.Group), nil
	case "identity":
		return Identity(), nil
	case "default-currency":
		return DefaultCurrency(a.Group), nil
	case "note":
		return Note(a.Prefix, a.Group), nil
	case "remember":
		return Remember(a.Name, a.Group), nil
	case "recall-note":
		return RecallNote(a.Prefix, a.Name), nil
	default:
		return nil, fmt.Errorf("unknown action %q", a.Do)
	}
}
