package summarize

import (
	"sync"

	"github.com/dgallion1/docsum/internal/llm"
)

// UsageMeter accumulates token usage and cost over one run.
type UsageMeter struct {
	mu    sync.Mutex
	usage llm.Usage
	cost  float64
	calls int
}

// Totals is a snapshot of a UsageMeter.
type Totals struct {
	Usage llm.Usage
	Cost  float64
	Calls int
}

// Record adds a step if it succeeded. Failed steps contribute nothing.
func (m *UsageMeter) Record(s StepResult) {
	if !s.OK {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.usage = m.usage.Add(s.Usage)
	m.cost += s.Cost
	m.calls++
}

func (m *UsageMeter) Totals() Totals {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Totals{Usage: m.usage, Cost: m.cost, Calls: m.calls}
}
