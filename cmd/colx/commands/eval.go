package commands

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/eponymouse/columnal-sub000/runtime"
)

var (
	batchSize  int
	numWorkers int
)

var evalCmd = &cobra.Command{
	Use:   "eval <formula>",
	Short: "Evaluates a formula",
	Long: `The eval command checks and evaluates a formula.  With --row it is
evaluated against that row of the current table; without, it is evaluated
once for every row, or once on its own if there are no rows.`,
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
		ev := runtime.NewEvaluator(checked)
		out := cmd.OutOrStdout()

		rows := 0
		if t := store.Current(); t != nil && rowIndex < 0 {
			if rows, err = t.RowCount(); err != nil {
				return err
			}
		}
		if rows == 0 {
			res, err := ev.Evaluate(evaluateState(store, false))
			if err != nil {
				return reportEvaluation(cmd.ErrOrStderr(), err)
			}
			fmt.Fprintln(out, res.Value.String())
			return nil
		}

		start := time.Now()
		values, err := ev.EvaluateColumnInBatches(runtime.NewEvaluateState(store.Types(), false), rows, batchSize, numWorkers, nil)
		if err != nil {
			return reportEvaluation(cmd.ErrOrStderr(), err)
		}
		slog.Debug("evaluated column", "rows", rows, "elapsed", time.Since(start))
		for i, v := range values {
			fmt.Fprintf(out, "%d: %s\n", i, v.String())
		}
		return nil
	},
}

func init() {
	AddCommand(evalCmd)
	evalCmd.Flags().IntVar(&batchSize, "batch", 256, "Rows per batch when evaluating every row")
	evalCmd.Flags().IntVar(&numWorkers, "workers", 4, "Workers evaluating batches in parallel")
}
