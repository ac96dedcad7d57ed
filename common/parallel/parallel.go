// Copyright 2026 gorse Project Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package parallel

import (
	"sync"

	"go.uber.org/atomic"
)

// For runs worker for every job in [0, nJobs) using at most nWorkers goroutines.
// Workers claim jobs from a shared cursor, so every job id is handed out exactly
// once and callers may write results into a slot owned by the job id.
func For(nJobs, nWorkers int, worker func(workerId, jobId int)) {
	if nWorkers <= 1 || nJobs <= 1 {
		for i := 0; i < nJobs; i++ {
			worker(0, i)
		}
		return
	}
	if nWorkers > nJobs {
		nWorkers = nJobs
	}
	cursor := atomic.NewInt64(-1)
	var wg sync.WaitGroup
	for j := 0; j < nWorkers; j++ {
		workerId := j
		wg.Go(func() {
			for {
				jobId := int(cursor.Inc())
				if jobId >= nJobs {
					return
				}
				worker(workerId, jobId)
			}
		})
	}
	wg.Wait()
}

// ForEach runs worker on every element of a with at most nWorkers in flight.
func ForEach[T any](a []T, nWorkers int, worker func(int, T)) {
	For(len(a), nWorkers, func(_, jobId int) {
		worker(jobId, a[jobId])
	})
}
