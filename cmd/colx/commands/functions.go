package commands

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/eponymouse/columnal-sub000/functions"
)

var functionsCmd = &cobra.Command{
	Use:   "functions",
	Short: "Lists the standard functions",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		bold := color.New(color.Bold)
		for _, d := range store.Functions().AllFunctions() {
			bold.Fprint(cmd.OutOrStdout(), d.Name)
			fmt.Fprintf(cmd.OutOrStdout(), " :: %s\n    %s\n", functions.Signature(d), d.Synopsis)
		}
		return nil
	},
}

func init() {
	AddCommand(functionsCmd)
}
