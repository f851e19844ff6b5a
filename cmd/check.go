package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"github.com/etnz/statement"
	"github.com/etnz/statement/renderer"
)

// checkCmd holds the flags for the 'check' subcommand.
type checkCmd struct {
	accountCurrency string
}

func (*checkCmd) Name() string { return "check" }
func (*checkCmd) Synopsis() string {
	return "extract and validate transaction currencies against an account"
}
func (*checkCmd) Usage() string {
	return `pse check -account-currency <code> <file>...

  Extracts transactions and validates every one against the target account
  currency: 'ok' books as-is, 'needs-conversion' settles in another
  currency, 'error' flags an internal currency inconsistency.
`
}

func (c *checkCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.accountCurrency, "account-currency", "", "ISO 4217 code of the target account")
}

func (c *checkCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	if err := statement.ValidateCurrency(c.accountCurrency); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	if f.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "Error: at least one statement file is required")
		return subcommands.ExitUsageError
	}
	results, err := extractAll(ctx, f.Args())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	printMarkdown(renderer.RenderReport(renderer.NewReport(c.accountCurrency, results...)))

	for _, r := range results {
		for _, item := range r.Transactions() {
			if item.Failure != "" {
				continue
			}
			if status, _ := statement.CheckCurrencies(&item.Transaction, c.accountCurrency); status == statement.StatusError {
				return subcommands.ExitFailure
			}
		}
	}
	return subcommands.ExitSuccess
}
