package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/google/subcommands"
)

// catalogsCmd holds the flags for the 'catalogs' subcommand.
type catalogsCmd struct{}

func (*catalogsCmd) Name() string     { return "catalogs" }
func (*catalogsCmd) Synopsis() string { return "list and validate the issuer catalogs" }
func (*catalogsCmd) Usage() string {
	return `pse catalogs

  Loads every catalog of the catalog folder, reporting compilation errors,
  and lists the valid ones with their block and rule counts.
`
}

func (*catalogsCmd) SetFlags(_ *flag.FlagSet) {}

func (c *catalogsCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	catalogs, err := LoadCatalogs()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# Catalogs in %s\n\n", *catalogDir)
	fmt.Fprintln(&b, "| Name | Currency | Blocks | Rules |")
	fmt.Fprintln(&b, "|:---|:---|---:|---:|")
	for _, cat := range catalogs {
		currency := cat.Currency
		if currency == "" {
			currency = "-"
		}
		fmt.Fprintf(&b, "| %s | %s | %d | %d |\n", cat.Name, currency, len(cat.Blocks), len(cat.Rules))
	}
	printMarkdown(b.String())
	return subcommands.ExitSuccess
}
