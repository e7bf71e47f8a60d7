package scheduler

import (
	"context"
	"fmt"
	"sync"

	"github.com/robfig/cron/v3"
)

// Manual records registrations and runs them only when asked. Specs are
// still parsed so an invalid schedule fails the same way it would in Cron.
type Manual struct {
	mu    sync.Mutex
	jobs  map[string]Job
	specs map[string]string
}

func NewManual() *Manual {
	return &Manual{jobs: map[string]Job{}, specs: map[string]string{}}
}

func (m *Manual) Register(name, spec string, job Job) error {
	if _, err := cron.ParseStandard(spec); err != nil {
		return fmt.Errorf("invalid schedule for %s: %w", name, err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.jobs[name] = job
	m.specs[name] = spec
	return nil
}

func (m *Manual) Spec(name string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	spec, ok := m.specs[name]
	return spec, ok
}

// Run executes a registered job synchronously.
func (m *Manual) Run(ctx context.Context, name string) error {
	m.mu.Lock()
	job, ok := m.jobs[name]
	m.mu.Unlock()
	if !ok {
		return fmt.Errorf("job %s not registered", name)
	}
	job(ctx)
	return nil
}
