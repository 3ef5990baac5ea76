package ws

import (
	"errors"
	"testing"
)

type fakeClient struct {
	id     string
	frames []interface{}
	fail   bool
	closed bool
}

func (f *fakeClient) ID() string { return f.id }

func (f *fakeClient) WriteJSON(v interface{}) error {
	if f.fail {
		return errors.New("write on closed connection")
	}
	f.frames = append(f.frames, v)
	return nil
}

func (f *fakeClient) Close() error {
	f.closed = true
	return nil
}

func TestRegistryConnectDisconnect(t *testing.T) {
	registry := NewRegistry()
	c := &fakeClient{id: "a"}

	registry.Connect(c)
	if registry.Count() != 1 {
		t.Fatalf("expected 1 client, got %d", registry.Count())
	}

	registry.Disconnect(c)
	if registry.Count() != 0 {
		t.Fatalf("expected 0 clients, got %d", registry.Count())
	}

	// second disconnect is a no-op
	registry.Disconnect(c)
	if registry.Count() != 0 {
		t.Fatalf("expected 0 clients after double disconnect, got %d", registry.Count())
	}
}

func TestBroadcastContinuesPastFailedClient(t *testing.T) {
	registry := NewRegistry()
	first := &fakeClient{id: "a"}
	dead := &fakeClient{id: "b", fail: true}
	third := &fakeClient{id: "c"}
	registry.Connect(first)
	registry.Connect(dead)
	registry.Connect(third)

	registry.Broadcast(map[string]string{"type": "task_update"})

	if len(first.frames) != 1 || len(third.frames) != 1 {
		t.Fatalf("healthy clients should receive the frame: %d, %d", len(first.frames), len(third.frames))
	}
	if !dead.closed {
		t.Fatal("failed client should be closed")
	}
	if registry.Count() != 2 {
		t.Fatalf("failed client should be pruned, got %d", registry.Count())
	}
}

func TestCloseAllEmptiesRegistry(t *testing.T) {
	registry := NewRegistry()
	a := &fakeClient{id: "a"}
	b := &fakeClient{id: "b"}
	registry.Connect(a)
	registry.Connect(b)

	registry.CloseAll()

	if registry.Count() != 0 {
		t.Fatalf("expected empty registry, got %d", registry.Count())
	}
	if !a.closed || !b.closed {
		t.Fatal("all clients should be closed")
	}
}

func TestSendToDeadClientPrunes(t *testing.T) {
	registry := NewRegistry()
	dead := &fakeClient{id: "a", fail: true}
	registry.Connect(dead)

	registry.Send(dead, map[string]string{"type": "agent_response"})

	if registry.Count() != 0 {
		t.Fatalf("dead client should be pruned, got %d", registry.Count())
	}
	if !dead.closed {
		t.Fatal("dead client should be closed")
	}
}
