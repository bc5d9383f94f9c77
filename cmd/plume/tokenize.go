package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"plume/internal/diag"
	"plume/internal/lexer"
	"plume/internal/token"
)

var tokenizeCmd = &cobra.Command{
	Use:   "tokenize [flags] file.plm",
	Short: "Tokenize a plume source file",
	Long:  `Tokenize breaks down a plume source file into its constituent tokens`,
	Args:  cobra.ExactArgs(1),
	RunE:  runTokenize,
}

func runTokenize(cmd *cobra.Command, args []string) error {
	fset, id, err := loadSource(args[0])
	if err != nil {
		return err
	}

	bag := diag.NewBag(maxDiagnostics(cmd))
	toks := lexer.New(fset.Get(id), bag).Tokens()
	printDiagnostics(cmd, bag, fset)

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	for _, tok := range toks {
		pos := fset.Position(tok.Span)
		text := tok.Text
		if tok.Kind == token.EOF {
			text = ""
		}
		fmt.Fprintf(w, "%d:%d\t%s\t%s\n", pos.Line, pos.Col, tok.Kind, text)
	}
	return w.Flush()
}
