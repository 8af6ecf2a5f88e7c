package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/eponymouse/columnal-sub000/runtime"
)

var explainCmd = &cobra.Command{
	Use:   "explain <formula>",
	Short: "Shows how a formula reached its value",
	Long: `The explain command evaluates a formula against --row of the current
table and prints the tree of intermediate values that led to the result,
with the table cells each one read.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		checked, _, err := checkFormula(cmd.ErrOrStderr(), store, args[0])
		if err != nil {
			return err
		}
		res, err := runtime.NewEvaluator(checked).Evaluate(evaluateState(store, true))
		if err != nil {
			return reportEvaluation(cmd.ErrOrStderr(), err)
		}
		ex, err := res.MakeExplanation()
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), ex.Describe())
		return nil
	},
}

func init() {
	AddCommand(explainCmd)
}
