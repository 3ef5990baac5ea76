package ws

import (
	"sync"

	"taskmate/app/pkg/logger"
)

// Registry tracks every live connection so replies can go to one peer
// and task changes can fan out to all of them.
type Registry struct {
	clients map[string]Client
	mu      sync.RWMutex
}

func NewRegistry() *Registry {
	return &Registry{
		clients: make(map[string]Client),
	}
}

func (r *Registry) Connect(c Client) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clients[c.ID()] = c
	logger.Info("[WS] Client connected: %s (%d active)", c.ID(), len(r.clients))
}

// Disconnect is idempotent; a second call for the same client is a no-op.
func (r *Registry) Disconnect(c Client) {
	r.mu.Lock()
	_, present := r.clients[c.ID()]
	delete(r.clients, c.ID())
	remaining := len(r.clients)
	r.mu.Unlock()
	if present {
		logger.Info("[WS] Client disconnected: %s (%d active)", c.ID(), remaining)
	}
}

func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.clients)
}

// Send delivers one frame to one client. A write failure drops the
// client from the registry and is not reported to the caller; a dead
// peer must not abort the turn that produced the frame.
func (r *Registry) Send(c Client, v interface{}) {
	if err := c.WriteJSON(v); err != nil {
		logger.Error("[WS] Send to %s failed, dropping client: %v", c.ID(), err)
		r.Disconnect(c)
		_ = c.Close()
	}
}

// CloseAll tears down every live connection; used during shutdown.
func (r *Registry) CloseAll() {
	r.mu.Lock()
	clients := make([]Client, 0, len(r.clients))
	for _, c := range r.clients {
		clients = append(clients, c)
	}
	r.clients = make(map[string]Client)
	r.mu.Unlock()

	for _, c := range clients {
		_ = c.Close()
	}
}

// Broadcast fans a frame out to a point-in-time copy of the registry.
// Clients that fail the write are dropped; the loop continues through
// the rest.
func (r *Registry) Broadcast(v interface{}) {
	r.mu.RLock()
	snapshot := make([]Client, 0, len(r.clients))
	for _, c := range r.clients {
		snapshot = append(snapshot, c)
	}
	r.mu.RUnlock()

	for _, c := range snapshot {
		r.Send(c, v)
	}
}
