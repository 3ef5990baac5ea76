package gateway

import "taskmate/app/core/orchestrator/task"

const (
	frameInitialTasks  = "initial_tasks"
	frameAgentResponse = "agent_response"
	frameTaskUpdate    = "task_update"
	frameError         = "error"
)

// inboundFrame is what the client sends. Unknown fields are ignored.
type inboundFrame struct {
	Message string `json:"message"`
}

type taskFrame struct {
	Type  string         `json:"type"`
	Tasks []task.Payload `json:"tasks"`
}

type messageFrame struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}
