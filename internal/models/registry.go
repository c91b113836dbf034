// internal/models/registry.go
package models

import "strings"

// Registry holds all available models
type Registry struct {
	models map[string]Model
	order  []string // Preserve order for consistent display
}

// NewRegistry creates a registry with one simulated backend per descriptor.
func NewRegistry(infos []ModelInfo, opts ...SimOption) *Registry {
	r := &Registry{
		models: make(map[string]Model),
		order:  []string{},
	}
	for _, info := range infos {
		r.Add(NewSimulated(info, opts...))
	}
	return r
}

// Add registers a model backend. A backend with an ID that is already
// registered replaces the old one without changing its position.
func (r *Registry) Add(m Model) {
	id := m.Info().ID
	if _, ok := r.models[id]; !ok {
		r.order = append(r.order, id)
	}
	r.models[id] = m
}

// Get returns a model by ID
func (r *Registry) Get(id string) Model {
	if r == nil {
		return nil
	}
	m, ok := r.models[id]
	if !ok {
		return nil
	}
	return m
}

// Info returns the descriptor for id.
func (r *Registry) Info(id string) (ModelInfo, bool) {
	m, ok := r.models[id]
	if !ok {
		return ModelInfo{}, false
	}
	return m.Info(), true
}

// All returns all models in order
func (r *Registry) All() []Model {
	result := make([]Model, 0, len(r.order))
	for _, id := range r.order {
		if m, ok := r.models[id]; ok {
			result = append(result, m)
		}
	}
	return result
}

// Infos returns every descriptor in registration order.
func (r *Registry) Infos() []ModelInfo {
	result := make([]ModelInfo, 0, len(r.order))
	for _, m := range r.All() {
		result = append(result, m.Info())
	}
	return result
}

// ByProvider returns the descriptors served by provider, matched without
// regard to case.
func (r *Registry) ByProvider(provider Provider) []ModelInfo {
	result := make([]ModelInfo, 0)
	for _, info := range r.Infos() {
		if strings.EqualFold(string(info.Provider), string(provider)) {
			result = append(result, info)
		}
	}
	return result
}

// Resolve maps ids onto descriptors, preserving the order given. The second
// return value lists ids that are not registered.
func (r *Registry) Resolve(ids []string) ([]ModelInfo, []string) {
	var (
		found   []ModelInfo
		missing []string
	)
	for _, id := range ids {
		if info, ok := r.Info(id); ok {
			found = append(found, info)
		} else {
			missing = append(missing, id)
		}
	}
	return found, missing
}

// IDs returns IDs of all registered models
func (r *Registry) IDs() []string {
	return append([]string(nil), r.order...)
}

// Count returns number of registered models
func (r *Registry) Count() int {
	return len(r.order)
}
