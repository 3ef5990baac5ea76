package tools

import (
	"context"
	"errors"
	"sync"

	"taskmate/app/pkg/types"
)

// Registry holds the tools exposed to the agent.
type Registry struct {
	tools map[string]types.Tool
	mu    sync.RWMutex
}

func NewRegistry() *Registry {
	return &Registry{
		tools: make(map[string]types.Tool),
	}
}

func (r *Registry) Register(t types.Tool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	manifest := t.Manifest()
	r.tools[manifest.Name] = t
}

func (r *Registry) Get(name string) (types.Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tools[name]
	return t, ok
}

func (r *Registry) List() []types.ToolManifest {
	r.mu.RLock()
	defer r.mu.RUnlock()
	list := make([]types.ToolManifest, 0, len(r.tools))
	for _, t := range r.tools {
		list = append(list, t.Manifest())
	}
	return list
}

// Mutating reports whether the named tool changes the task store.
// Unknown names report false.
func (r *Registry) Mutating(name string) bool {
	t, ok := r.Get(name)
	if !ok {
		return false
	}
	return t.Manifest().Mutating
}

func (r *Registry) Execute(ctx context.Context, name string, args map[string]interface{}) (string, error) {
	t, ok := r.Get(name)
	if !ok {
		return "", errors.New("tool not found: " + name)
	}
	return t.Execute(ctx, args)
}
