package assembly

import "sync"

// parallelFor runs fn over [0, n) split into at most workers chunks.
// Ranges shorter than minChunk run on the calling goroutine.
func parallelFor(n, workers, minChunk int, fn func(worker, start, end int)) int {
	if n <= minChunk || workers <= 1 {
		fn(0, 0, n)
		return 1
	}

	if n/minChunk < workers {
		workers = n / minChunk
	}
	if workers < 1 {
		workers = 1
	}

	chunkSize := (n + workers - 1) / workers

	var wg sync.WaitGroup
	wg.Add(workers)

	for w := 0; w < workers; w++ {
		start := w * chunkSize
		end := start + chunkSize
		if end > n {
			end = n
		}

		go func(w, s, e int) {
			defer wg.Done()
			if s < e {
				fn(w, s, e)
			}
		}(w, start, end)
	}

	wg.Wait()
	return workers
}
