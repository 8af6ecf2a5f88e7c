package runtime

import (
	"fmt"
	"sync"
	"time"

	"github.com/eponymouse/columnal-sub000/core"
)

// EvaluateColumnInBatches evaluates rows rows split into batches of
// batchSize, spread over numWorkers goroutines.  Each row gets its own
// state.  onBatch, if given, is called as each batch finishes, possibly
// from several goroutines at once.  The first error by row order wins.
func (ev *Evaluator) EvaluateColumnInBatches(state *EvaluateState, rows, batchSize, numWorkers int, onBatch func(batch int, values []Value)) ([]Value, error) {
	if batchSize <= 0 {
		batchSize = rows
	}
	if rows == 0 {
		return nil, nil
	}
	nbatches := (rows + batchSize - 1) / batchSize
	numWorkers = max(1, min(numWorkers, nbatches))

	startTime := time.Now()
	defer func() {
		core.Debug("evaluated %d rows in %d batches on %d workers in %v", rows, nbatches, numWorkers, time.Since(startTime))
	}()

	results := make([]Value, rows)
	errs := make([]error, nbatches)
	batchesPerWorker := (nbatches + numWorkers - 1) / numWorkers

	var wg sync.WaitGroup
	for i := range numWorkers {
		wg.Add(1)
		go func(workerIndex int) {
			defer wg.Done()
			startBatch := workerIndex * batchesPerWorker
			endBatch := min((workerIndex+1)*batchesPerWorker, nbatches)
			for batch := startBatch; batch < endBatch; batch++ {
				first := batch * batchSize
				last := min(first+batchSize, rows)
				for row := first; row < last; row++ {
					res, err := ev.Evaluate(state.WithRow(row))
					if err != nil {
						errs[batch] = fmt.Errorf("row %d: %w", row, err)
						break
					}
					results[row] = res.Value
				}
				if errs[batch] == nil && onBatch != nil {
					onBatch(batch, results[first:last])
				}
			}
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return results, nil
}
