package commands

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check <formula>",
	Short: "Type checks a formula",
	Long: `The check command type checks a formula against the loaded tables and
prints its type, or its errors along with any suggested fixes.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		checked, d, err := checkFormula(cmd.ErrOrStderr(), store, args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), color.GreenString(checked.Type.String()))
		printNotes(cmd.ErrOrStderr(), d)
		return nil
	},
}

func init() {
	AddCommand(checkCmd)
}
