package cmd

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
	"golang.org/x/sync/errgroup"

	"github.com/etnz/statement"
	"github.com/etnz/statement/renderer"
)

// extractCmd holds the flags for the 'extract' subcommand.
type extractCmd struct {
	jsonOut bool
}

func (*extractCmd) Name() string     { return "extract" }
func (*extractCmd) Synopsis() string { return "extract transactions from statement text files" }
func (*extractCmd) Usage() string {
	return `pse extract [-json] <file>...

  Extracts securities and transactions from one or more statement text
  files and prints a report. With -json, emits one JSON item per line
  instead of the markdown report.
`
}

func (c *extractCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.jsonOut, "json", false, "emit items as JSON lines instead of a markdown report")
}

func (c *extractCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	if f.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "Error: at least one statement file is required")
		return subcommands.ExitUsageError
	}
	results, err := extractAll(ctx, f.Args())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	if c.jsonOut {
		enc := json.NewEncoder(os.Stdout)
		for _, r := range results {
			for _, item := range r.Items {
				if err := enc.Encode(item); err != nil {
					fmt.Fprintf(os.Stderr, "Error encoding item: %v\n", err)
					return subcommands.ExitFailure
				}
			}
		}
		return subcommands.ExitSuccess
	}

	printMarkdown(renderer.RenderReport(renderer.NewReport("", results...)))
	return subcommands.ExitSuccess
}

// extractAll runs the extraction of every file concurrently, results in
// input order. Documents share one resolver so a security showing up in
// several statements is created exactly once.
func extractAll(ctx context.Context, filenames []string) ([]*statement.Result, error) {
	catalogs, err := LoadCatalogs()
	if err != nil {
		return nil, err
	}
	extractor := statement.NewExtractor(statement.NewMemResolver(), catalogs...)

	results := make([]*statement.Result, len(filenames))
	g, ctx := errgroup.WithContext(ctx)
	for i, filename := range filenames {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			doc, err := ReadDocument(filename)
			if err != nil {
				return err
			}
			result, err := extractor.Extract(doc)
			if err != nil {
				return err
			}
			results[i] = result
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
