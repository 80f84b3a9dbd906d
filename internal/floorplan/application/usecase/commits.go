package usecase

import "sync"

// commitTracker serializes repository commits per table. At most one commit
// per table is in flight; a newer submission replaces any queued one
// (queue-of-one) and bumps the table's sequence so the superseded result is
// discarded instead of racing the newer write. Commits for distinct tables
// run concurrently.
type commitTracker struct {
	mu       sync.Mutex
	seq      map[int64]uint64
	inflight map[int64]bool
	pending  map[int64]func()
	wg       sync.WaitGroup
}

func newCommitTracker() *commitTracker {
	return &commitTracker{
		seq:      make(map[int64]uint64),
		inflight: make(map[int64]bool),
		pending:  make(map[int64]func()),
	}
}

// Submit schedules fn for the table. fn receives the sequence number of
// this submission; after its repository call resolves it must check Stale
// before applying the result.
func (t *commitTracker) Submit(tableID int64, fn func(seq uint64)) {
	t.mu.Lock()
	t.seq[tableID]++
	seq := t.seq[tableID]
	run := func() { fn(seq) }
	if t.inflight[tableID] {
		if _, queued := t.pending[tableID]; queued {
			// The queued commit never runs; its submission is superseded.
			t.wg.Done()
		}
		t.pending[tableID] = run
		t.wg.Add(1)
		t.mu.Unlock()
		return
	}
	t.inflight[tableID] = true
	t.wg.Add(1)
	t.mu.Unlock()
	go t.drain(tableID, run)
}

func (t *commitTracker) drain(tableID int64, fn func()) {
	for {
		fn()
		t.mu.Lock()
		next, ok := t.pending[tableID]
		if ok {
			delete(t.pending, tableID)
		} else {
			t.inflight[tableID] = false
		}
		t.mu.Unlock()
		t.wg.Done()
		if !ok {
			return
		}
		fn = next
	}
}

// Stale reports whether a newer commit for the table has been submitted
// since seq. Stale results must be dropped, not applied.
func (t *commitTracker) Stale(tableID int64, seq uint64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.seq[tableID] != seq
}

// Wait blocks until every submitted commit has resolved or been superseded.
func (t *commitTracker) Wait() {
	t.wg.Wait()
}
