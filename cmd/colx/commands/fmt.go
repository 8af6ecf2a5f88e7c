package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/eponymouse/columnal-sub000/decl"
	"github.com/eponymouse/columnal-sub000/parser"
)

var displayForm bool

var fmtCmd = &cobra.Command{
	Use:   "fmt <formula>",
	Short: "Rewrites a formula in canonical form",
	Long: `The fmt command parses a formula and prints it back in the canonical save
syntax, or with --display in the shorter form shown to users.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := parser.ParseExpression(args[0])
		if err != nil {
			errorLabel.Fprint(cmd.ErrOrStderr(), "syntax error: ")
			fmt.Fprintln(cmd.ErrOrStderr(), err)
			return errReported
		}
		dest := decl.ToFile
		if displayForm {
			dest = decl.ToDisplay
		}
		fmt.Fprintln(cmd.OutOrStdout(), decl.Save(e, dest))
		return nil
	},
}

func init() {
	AddCommand(fmtCmd)
	fmtCmd.Flags().BoolVar(&displayForm, "display", false, "Print the display form instead of the save form")
}
