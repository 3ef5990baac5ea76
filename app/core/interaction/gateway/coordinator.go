package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"taskmate/app/core/interaction/ws"
	"taskmate/app/core/orchestrator/task"
	"taskmate/app/pkg/logger"
	"taskmate/app/pkg/types"
)

// Coordinator runs the chat session loop for every connection: deliver
// the initial snapshot, feed user messages to the agent, reply to the
// sender, and resynchronize task state across all peers after each turn.
type Coordinator struct {
	agent    types.Agent
	store    *task.Store
	registry *ws.Registry

	mu     sync.RWMutex
	tracer TraceRecorder

	processedTurns uint64
	startedUnix    atomic.Int64
}

func NewCoordinator(agent types.Agent, store *task.Store, registry *ws.Registry) *Coordinator {
	c := &Coordinator{
		agent:    agent,
		store:    store,
		registry: registry,
	}
	c.startedUnix.Store(time.Now().Unix())
	return c
}

func (c *Coordinator) SetTraceRecorder(tracer TraceRecorder) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tracer = tracer
}

// HandleConnection owns one peer from upgrade to disconnect. The
// transcript and memory summary live only as long as the connection.
func (c *Coordinator) HandleConnection(ctx context.Context, conn ws.Conn) {
	c.registry.Connect(conn)
	defer func() {
		c.registry.Disconnect(conn)
		_ = conn.Close()
		c.trace(conn.ID(), "disconnected", "ok", "", nil)
	}()
	c.trace(conn.ID(), "connected", "ok", "", nil)

	if !c.sendSnapshot(ctx, conn, frameInitialTasks, task.Filter{}) {
		return
	}

	var transcript []types.ChatTurn
	memory := ""

	for {
		if ctx.Err() != nil {
			return
		}

		var frame inboundFrame
		if err := conn.ReadJSON(&frame); err != nil {
			if isDecodeError(err) {
				logger.Info("[Gateway] Dropping malformed frame from %s: %v", conn.ID(), err)
				c.trace(conn.ID(), "frame_dropped", "error", err.Error(), nil)
				continue
			}
			return
		}

		message := strings.TrimSpace(frame.Message)
		if message == "" {
			continue
		}
		logger.Info("[Gateway] User (%s): %s", conn.ID(), message)
		atomic.AddUint64(&c.processedTurns, 1)
		transcript = append(transcript, types.ChatTurn{Role: types.RoleUser, Content: message})

		result, err := c.agent.Respond(ctx, transcript, memory)
		if err != nil {
			logger.Error("[Gateway] Agent turn failed for %s: %v", conn.ID(), err)
			c.trace(conn.ID(), "agent_turn", "error", err.Error(), nil)
			c.registry.Send(conn, messageFrame{Type: frameError, Message: "Error: " + err.Error()})
			continue
		}
		c.trace(conn.ID(), "agent_turn", "ok", "", result.ToolCalls)

		reply := result.Reply
		if strings.TrimSpace(reply) == "" {
			reply = "I didn't generate a response."
		}
		transcript = append(transcript, types.ChatTurn{Role: types.RoleAssistant, Content: reply})
		memory = result.Memory

		logger.Info("[Gateway] Agent (%s): %s", conn.ID(), reply)
		c.registry.Send(conn, messageFrame{Type: frameAgentResponse, Message: reply})

		// Filtered reads stay private to the requesting peer; anything
		// else refreshes everyone with the full snapshot.
		if task.IsReadIntent(message) {
			f := task.DeriveFilter(message, time.Now())
			if c.sendSnapshot(ctx, conn, frameTaskUpdate, f) {
				c.trace(conn.ID(), "sync_personal", "ok", "", nil)
			}
			continue
		}
		c.broadcastSnapshot(ctx, conn.ID())
	}
}

// sendSnapshot delivers a task frame to one peer. Reports false only
// when the snapshot could not be read; delivery failures are handled by
// the registry.
func (c *Coordinator) sendSnapshot(ctx context.Context, conn ws.Conn, frameType string, f task.Filter) bool {
	items, err := c.store.Snapshot(ctx, f)
	if err != nil {
		logger.Error("[Gateway] Snapshot failed for %s: %v", conn.ID(), err)
		c.trace(conn.ID(), "snapshot", "error", err.Error(), nil)
		c.registry.Send(conn, messageFrame{Type: frameError, Message: "Error: " + err.Error()})
		return false
	}
	c.registry.Send(conn, taskFrame{Type: frameType, Tasks: task.Payloads(items)})
	return true
}

func (c *Coordinator) broadcastSnapshot(ctx context.Context, connID string) {
	items, err := c.store.All(ctx)
	if err != nil {
		logger.Error("[Gateway] Broadcast snapshot failed: %v", err)
		c.trace(connID, "sync_broadcast", "error", err.Error(), nil)
		return
	}
	c.registry.Broadcast(taskFrame{Type: frameTaskUpdate, Tasks: task.Payloads(items)})
	c.trace(connID, "sync_broadcast", "ok", "", nil)
}

// Status feeds the /api/status endpoint.
func (c *Coordinator) Status(ctx context.Context) map[string]interface{} {
	status := map[string]interface{}{
		"status":             "ok",
		"agent":              c.agent.Name(),
		"active_connections": c.registry.Count(),
		"processed_turns":    atomic.LoadUint64(&c.processedTurns),
		"started_at":         time.Unix(c.startedUnix.Load(), 0).UTC().Format(time.RFC3339),
	}
	if items, err := c.store.All(ctx); err == nil {
		status["task_count"] = len(items)
	}
	return status
}

func (c *Coordinator) trace(connID, event, status, detail string, toolCalls []string) {
	c.mu.RLock()
	tracer := c.tracer
	c.mu.RUnlock()
	if tracer == nil {
		return
	}
	err := tracer.Record(TraceEvent{
		ConnectionID: connID,
		Event:        event,
		Status:       status,
		Detail:       detail,
		ToolCalls:    toolCalls,
	})
	if err != nil {
		logger.Error("[Gateway] Trace write failed: %v", err)
	}
}

// isDecodeError separates malformed payloads, which cost the frame,
// from transport failures, which cost the connection.
func isDecodeError(err error) bool {
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	return errors.As(err, &syntaxErr) || errors.As(err, &typeErr)
}
