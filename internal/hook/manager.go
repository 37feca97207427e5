package hook

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"sync"

	"github.com/ayusman/mudra/internal/gesture"
)

// Manager loads gesture hook bindings from a hooks.json file and serves
// lookups by label.
type Manager struct {
	path     string
	bindings map[gesture.Label][]Binding
	mu       sync.RWMutex
}

// NewManager creates a Manager reading bindings from the given file path.
func NewManager(path string) *Manager {
	return &Manager{
		path:     path,
		bindings: make(map[gesture.Label][]Binding),
	}
}

// Load reads the hooks file and replaces the current bindings. A missing
// file is not an error: it simply yields no bindings.
func (m *Manager) Load() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.bindings = make(map[gesture.Label][]Binding)

	data, err := os.ReadFile(m.path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read hooks file: %w", err)
	}

	var file hooksFile
	if err := json.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("failed to parse hooks file: %w", err)
	}

	for _, b := range file.Hooks {
		if b.Command == "" {
			continue
		}
		if !knownLabel(b.Label) {
			log.Printf("Skipping hook binding for unknown gesture %q", b.Label)
			continue
		}
		m.bindings[b.Label] = append(m.bindings[b.Label], b)
	}

	return nil
}

// knownLabel reports whether a binding label names a recognizable gesture.
// LabelNone is allowed so hooks can react to closing events.
func knownLabel(label gesture.Label) bool {
	if label == gesture.LabelNone {
		return true
	}
	for _, l := range gesture.Labels() {
		if label == l {
			return true
		}
	}
	return false
}

// ForLabel returns the enabled bindings for a label.
func (m *Manager) ForLabel(label gesture.Label) []Binding {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var enabled []Binding
	for _, b := range m.bindings[label] {
		if b.Enabled {
			enabled = append(enabled, b)
		}
	}
	return enabled
}

// Count returns the total number of loaded bindings.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	n := 0
	for _, bs := range m.bindings {
		n += len(bs)
	}
	return n
}

// Path returns the hooks file path.
func (m *Manager) Path() string {
	return m.path
}
