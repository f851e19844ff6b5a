// Package cmd implements the CLI application to extract transactions from
// statement text files.
package cmd

import (
	"flag"
	"fmt"
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/google/subcommands"

	"github.com/etnz/statement"
)

// Commands lists the subcommands a main package registers.
var Commands = []subcommands.Command{
	&extractCmd{},
	&checkCmd{},
	&catalogsCmd{},
	&assistCmd{},
	&topicCmd{},
}

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var catalogDir = flag.String("catalog-dir", "catalogs", "Path to the folder containing issuer catalogs (JSON format)")

// LoadCatalogs loads the issuer catalogs from the app catalog folder.
func LoadCatalogs() ([]*statement.Catalog, error) {
	catalogs, err := statement.LoadCatalogs(*catalogDir)
	if err != nil {
		return nil, err
	}
	if len(catalogs) == 0 {
		return nil, fmt.Errorf("no catalog found in %q", *catalogDir)
	}
	return catalogs, nil
}

// ReadDocument reads one statement text file into a Document, the file name
// acting as the document source.
func ReadDocument(filename string) (statement.Document, error) {
	text, err := os.ReadFile(filename)
	if err != nil {
		return statement.Document{}, fmt.Errorf("cannot read statement file %q: %w", filename, err)
	}
	return statement.NewDocument(filename, string(text)), nil
}

// printMarkdown renders markdown to the terminal. It falls back to the raw
// text when the renderer cannot be created (e.g. dumb terminal).
func printMarkdown(md string) {
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(120))
	if err != nil {
		fmt.Print(md)
		return
	}
	out, err := r.Render(md)
	if err != nil {
		fmt.Print(md)
		return
	}
	fmt.Print(out)
}
