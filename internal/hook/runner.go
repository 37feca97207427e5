package hook

import "log"

// DefaultTimeoutMs is the per-command execution timeout.
const DefaultTimeoutMs = 5000

// Runner dispatches confirmed gesture events to their bound commands.
type Runner struct {
	manager  *Manager
	executor *Executor
}

// NewRunner creates a Runner over the given bindings file.
func NewRunner(hooksPath string) *Runner {
	return &Runner{
		manager:  NewManager(hooksPath),
		executor: NewExecutor(DefaultTimeoutMs),
	}
}

// Load reads the bindings file.
func (r *Runner) Load() error {
	return r.manager.Load()
}

// Manager returns the binding manager.
func (r *Runner) Manager() *Manager {
	return r.manager
}

// Dispatch runs every enabled binding for the payload's label. Commands
// run sequentially; a failing hook is logged and does not stop the rest.
func (r *Runner) Dispatch(payload Payload) {
	for _, binding := range r.manager.ForLabel(payload.Label) {
		if err := r.executor.Execute(binding, payload); err != nil {
			log.Printf("Hook %q for %s: %v", binding.Command, payload.Label, err)
		}
	}
}
