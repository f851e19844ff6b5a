// Package agent drafts extraction catalogs for unrecognized statements with
// a Gemini chat session. The model proposes a catalog in the JSON format of
// [statement.ReadCatalog]; the drafter compiles and dry-runs every proposal
// against the document and feeds the failures back until the catalog holds.
package agent

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/etnz/statement"
)

const model = "gemini-2.5-pro"

// maxAttempts bounds the propose-validate-refine loop.
const maxAttempts = 4

// Drafter keeps one chat session alive across refinement rounds so the model
// retains its own previous proposals and the failures they caused.
type Drafter struct {
	chat *genai.Chat
}

// NewDrafter creates the chat session.
func NewDrafter(ctx context.Context, client *genai.Client) (*Drafter, error) {
	config := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: systemInstruction}}},
	}
	chat, err := client.Chats.Create(ctx, model, config, nil)
	if err != nil {
		return nil, fmt.Errorf("could not create chat session: %w", err)
	}
	return &Drafter{chat: chat}, nil
}

// Draft proposes a catalog for the document. It returns the compiled catalog
// together with its JSON source, ready to be saved to the catalog folder.
//
// The returned catalog recognizes the document and extracts at least one
// item from it; a model that cannot get there within the attempt budget is
// reported as an error carrying the last failure.
func (d *Drafter) Draft(ctx context.Context, doc statement.Document) (*statement.Catalog, string, error) {
	prompt := fmt.Sprintf("Write a catalog for this statement (%s):\n\n```\n%s\n```", doc.Source, doc.Text)

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		text, err := d.ask(ctx, prompt)
		if err != nil {
			return nil, "", err
		}
		src, ok := jsonFence(text)
		if !ok {
			lastErr = fmt.Errorf("response carries no json code fence")
			prompt = "Your response contains no ```json code fence. Send the full catalog again, inside one."
			continue
		}
		catalog, err := statement.ReadCatalog(strings.NewReader(src))
		if err != nil {
			lastErr = err
			prompt = fmt.Sprintf("The catalog does not compile: %v\nFix it and send the full catalog again.", err)
			continue
		}
		if err := dryRun(catalog, doc); err != nil {
			lastErr = err
			prompt = fmt.Sprintf("The catalog compiles but fails on the statement: %v\nFix it and send the full catalog again.", err)
			continue
		}
		return catalog, src, nil
	}
	return nil, "", fmt.Errorf("no usable catalog after %d attempts: %w", maxAttempts, lastErr)
}

func (d *Drafter) ask(ctx context.Context, prompt string) (string, error) {
	resp, err := d.chat.Send(ctx, &genai.Part{Text: prompt})
	if err != nil {
		return "", err
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("no response from the model")
	}
	return resp.Candidates[0].Content.Parts[0].Text, nil
}

// dryRun extracts the document with the proposed catalog alone and checks it
// produced something usable.
func dryRun(catalog *statement.Catalog, doc statement.Document) error {
	extractor := statement.NewExtractor(statement.NewMemResolver(), catalog)
	result, err := extractor.Extract(doc)
	if err != nil {
		return err
	}
	if len(result.Transactions()) == 0 {
		if len(result.Errors) > 0 {
			return fmt.Errorf("no transaction extracted; first error: %v", result.Errors[0])
		}
		return fmt.Errorf("the marker matches but no block produced a transaction")
	}
	return nil
}

// jsonFence returns the content of the first ```json code fence.
func jsonFence(text string) (string, bool) {
	_, rest, ok := strings.Cut(text, "```json")
	if !ok {
		return "", false
	}
	src, _, ok := strings.Cut(rest, "```")
	if !ok {
		return "", false
	}
	return strings.TrimSpace(src), true
}

const systemInstruction = `
You write extraction catalogs that turn bank and broker statement text into
normalized transactions. A catalog is one JSON object:

{
  "name": "issuer-document",        // unique catalog name
  "marker": "regexp",               // recognizes the document text
  "currency": "CHF",                // optional account currency fallback
  "blocks": [
    {"type": "trade", "begin": "regexp", "end": "regexp", "partial": false}
  ],
  "rules": [
    {"category": "type", "block": "trade", "trigger": "regexp with (?P<name>...) groups",
     "actions": [ ... ]}
  ]
}

Block 'begin'/'end' are line-anchored patterns; omit 'end' to close the
block at the next begin anchor. Mark header blocks "partial": true when they
only feed later blocks. Rules of the same category are alternatives (first
match wins); rules of different categories all apply to the block.

Actions (each {"do": ...}):
  {"do":"type","value":"purchase|sale|dividend|interest|interest-charge|fee|tax|deposit|withdrawal"}
  {"do":"unsupported","value":"reason"}
  {"do":"date","group":"g","layout":"02.01.2006"}   // Go time layout
  {"do":"shares","group":"g"}
  {"do":"amount","group":"g","currency":"c"}        // settlement amount
  {"do":"gross","group":"g","currency":"c"}
  {"do":"forex-gross","group":"g","currency":"c"}   // gross in the security currency
  {"do":"tax","group":"g","currency":"c"}
  {"do":"fee","group":"g","currency":"c"}
  {"do":"rate","group":"g"}                         // exchange rate
  {"do":"identity"}     // trigger groups: isin, wkn, ticker, name, currency
  {"do":"default-currency","group":"g"}
  {"do":"note","prefix":"Referenz: ","group":"g"}
  {"do":"remember","name":"v","group":"g"}
  {"do":"recall-note","prefix":"Referenz: ","name":"v"}

Monetary invariants the extraction enforces: for a purchase the settlement
amount equals gross plus taxes plus fees; for sale, dividend and interest it
equals gross minus taxes minus fees. Capture deductions rather than forcing
the amounts to match.

Always answer with the complete catalog in a single ` + "```json" + ` code fence.
`
