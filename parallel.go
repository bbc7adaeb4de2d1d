package ldc

import "sync"

// parallelRange splits [0, n) into contiguous chunks and runs fn on each
// chunk in its own goroutine. Chunks never overlap, so fn may write to
// per-index output slots without synchronization. With numWorkers <= 1 or
// n <= 1, fn runs once on the calling goroutine.
func parallelRange(n, numWorkers int, fn func(start, end int)) {
	if n <= 0 {
		return
	}
	if numWorkers <= 1 || n <= 1 {
		fn(0, n)
		return
	}

	var wg sync.WaitGroup
	rowsPerWorker := (n + numWorkers - 1) / numWorkers

	for w := 0; w < numWorkers; w++ {
		startRow := w * rowsPerWorker
		endRow := startRow + rowsPerWorker
		if endRow > n {
			endRow = n
		}
		if startRow >= n {
			break
		}

		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			fn(start, end)
		}(startRow, endRow)
	}

	wg.Wait()
}
