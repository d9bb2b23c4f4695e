package fit

import "sync"

// overheadSteps is the per-problem budget for the final model trace.
const overheadSteps = 1

// Progress is an upper-bound step counter. All methods are safe for
// concurrent use; the sink is invoked under the lock so observed values
// are ordered.
type Progress struct {
	mu    sync.Mutex
	total int64
	done  int64
	sink  ProgressFunc
}

func newProgress(sink ProgressFunc) *Progress { return &Progress{sink: sink} }

// budget is the step allowance of one problem.
func budget(maxIterations, enabled int) int64 {
	return int64(maxIterations+1)*int64(enabled+1) + overheadSteps
}

// Snapshot returns (total, done).
func (p *Progress) Snapshot() (int64, int64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.total, p.done
}

func (p *Progress) reset(total int64) {
	p.mu.Lock()
	p.total, p.done = total, 0
	p.emit()
	p.mu.Unlock()
}

func (p *Progress) advance(n int64) {
	p.mu.Lock()
	p.done += n
	if p.done > p.total {
		p.done = p.total
	}
	p.emit()
	p.mu.Unlock()
}

// shrink removes unused budget from the total.
func (p *Progress) shrink(n int64) {
	if n <= 0 {
		return
	}
	p.mu.Lock()
	p.total -= n
	if p.total < p.done {
		p.total = p.done
	}
	p.emit()
	p.mu.Unlock()
}

func (p *Progress) emit() {
	if p.sink != nil {
		p.sink(p.total, p.done)
	}
}

// tracker meters one problem against its budget.
type tracker struct {
	p      *Progress
	budget int64
	used   int64
}

func (t *tracker) step(n int64) {
	if t.used+n > t.budget {
		n = t.budget - t.used
	}
	if n <= 0 {
		return
	}
	t.used += n
	t.p.advance(n)
}

// close returns the unused budget.
func (t *tracker) close() {
	t.p.shrink(t.budget - t.used)
	t.used = t.budget
}
