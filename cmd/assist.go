package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/subcommands"
	"google.golang.org/genai"

	"github.com/etnz/statement/agent"
)

// assistCmd holds the flags for the 'assist' subcommand.
type assistCmd struct {
	output string
}

func (*assistCmd) Name() string     { return "assist" }
func (*assistCmd) Synopsis() string { return "draft a catalog for an unrecognized statement with AI" }
func (*assistCmd) Usage() string {
	return `pse assist [-o <file>] <file>

  Asks the AI assistant to draft an extraction catalog for the given
  statement. The draft is validated against the statement before being
  written out; by default it lands in the catalog folder under the
  catalog's name.
`
}

func (c *assistCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.output, "o", "", "file to write the drafted catalog to (default <catalog-dir>/<name>.json)")
}

func (c *assistCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Error: exactly one statement file is required")
		return subcommands.ExitUsageError
	}
	doc, err := ReadDocument(f.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	client, err := genai.NewClient(ctx, nil)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error initializing Gemini's client:", err)
		return subcommands.ExitFailure
	}
	drafter, err := agent.NewDrafter(ctx, client)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	catalog, src, err := drafter.Draft(ctx, doc)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	filename := c.output
	if filename == "" {
		filename = filepath.Join(*catalogDir, catalog.Name+".json")
	}
	if err := os.WriteFile(filename, []byte(src+"\n"), 0644); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing catalog %q: %v\n", filename, err)
		return subcommands.ExitFailure
	}
	fmt.Printf("Drafted catalog %q into %s\n", catalog.Name, filename)
	return subcommands.ExitSuccess
}
