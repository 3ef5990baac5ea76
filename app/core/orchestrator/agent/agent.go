package agent

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/tidwall/gjson"

	config "taskmate/app/configs"
	"taskmate/app/core/orchestrator/tools"
	"taskmate/app/pkg/logger"
	"taskmate/app/pkg/types"
)

// TaskMate is the tool-calling agent behind the chat endpoint. One
// Respond call covers a full model round trip including any tool rounds.
type TaskMate struct {
	name     string
	llmCfg   config.LLMConfig
	taskCfg  config.TaskConfig
	registry *tools.Registry
	client   openai.Client
}

func New(name string, apiKey string, llmCfg config.LLMConfig, taskCfg config.TaskConfig, registry *tools.Registry) *TaskMate {
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if strings.TrimSpace(llmCfg.BaseURL) != "" {
		opts = append(opts, option.WithBaseURL(llmCfg.BaseURL))
	}
	return &TaskMate{
		name:     name,
		llmCfg:   llmCfg,
		taskCfg:  taskCfg,
		registry: registry,
		client:   openai.NewClient(opts...),
	}
}

func (a *TaskMate) Name() string {
	return a.name
}

func (a *TaskMate) Respond(ctx context.Context, transcript []types.ChatTurn, memory string) (types.TurnResult, error) {
	ctx, cancel := context.WithTimeout(ctx, time.Duration(a.llmCfg.RequestTimeoutSec)*time.Second)
	defer cancel()

	transcript = trimTranscript(transcript, a.taskCfg.TranscriptMaxTurns)
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(transcript)+1)
	messages = append(messages, openai.SystemMessage(a.systemPrompt(time.Now(), memory)))
	for _, turn := range transcript {
		switch turn.Role {
		case types.RoleAssistant:
			messages = append(messages, openai.AssistantMessage(turn.Content))
		default:
			messages = append(messages, openai.UserMessage(turn.Content))
		}
	}

	result := types.TurnResult{}
	for round := 0; round < a.llmCfg.MaxToolRounds; round++ {
		completion, err := a.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
			Model:    openai.ChatModel(a.llmCfg.Model),
			Messages: messages,
			Tools:    a.toolParams(),
		})
		if err != nil {
			return types.TurnResult{}, fmt.Errorf("chat completion: %w", err)
		}
		if len(completion.Choices) == 0 {
			return types.TurnResult{}, fmt.Errorf("chat completion returned no choices")
		}

		message := completion.Choices[0].Message
		if len(message.ToolCalls) == 0 {
			result.Reply = strings.TrimSpace(message.Content)
			result.Memory = updateMemory(memory, lastUserContent(transcript), result.Reply, a.taskCfg.MemoryMaxRunes)
			return result, nil
		}

		messages = append(messages, message.ToParam())
		for _, call := range message.ToolCalls {
			output, execErr := a.registry.Execute(ctx, call.Function.Name, parseToolArgs(call.Function.Arguments))
			if execErr != nil {
				output = fmt.Sprintf("Tool %s failed: %v", call.Function.Name, execErr)
			}
			logger.Info("[Agent] tool %s -> %s", call.Function.Name, firstLine(output))
			result.ToolCalls = append(result.ToolCalls, call.Function.Name)
			if a.registry.Mutating(call.Function.Name) && execErr == nil && !strings.HasPrefix(output, "Error") {
				result.Mutated = true
			}
			messages = append(messages, openai.ToolMessage(output, call.ID))
		}
	}

	return types.TurnResult{}, fmt.Errorf("tool loop exceeded %d rounds without a final reply", a.llmCfg.MaxToolRounds)
}

func (a *TaskMate) toolParams() []openai.ChatCompletionToolUnionParam {
	manifests := a.registry.List()
	params := make([]openai.ChatCompletionToolUnionParam, 0, len(manifests))
	for _, m := range manifests {
		def := openai.FunctionDefinitionParam{
			Name:        m.Name,
			Description: openai.String(m.Description),
			Parameters: openai.FunctionParameters{
				"type":       "object",
				"properties": m.Parameters,
			},
		}
		if len(m.Required) > 0 {
			def.Parameters["required"] = m.Required
		}
		params = append(params, openai.ChatCompletionFunctionTool(def))
	}
	return params
}

func (a *TaskMate) systemPrompt(now time.Time, memory string) string {
	var b strings.Builder
	b.WriteString("You are ")
	b.WriteString(a.name)
	b.WriteString(", a friendly task management assistant.\n")
	b.WriteString("You help the user create, update, delete, and review their tasks using the provided tools.\n")
	b.WriteString("Before creating a task, call check_duplicate with the intended title; if a very similar task exists, ask the user instead of creating a duplicate.\n")
	b.WriteString("When a tool reports an error, explain it to the user in plain language.\n")
	b.WriteString("Never mention internal task IDs to the user; refer to tasks by title.\n\n")
	b.WriteString("Current date: ")
	b.WriteString(now.Format("Monday, January 2, 2006"))
	b.WriteString("\n")
	b.WriteString("Date rules: resolve relative dates like 'tomorrow' or 'next Friday' against the current date. ")
	b.WriteString("Pass due dates in ISO 8601. When the user gives a day without a time, use 23:59:59 on that day.\n")
	if strings.TrimSpace(memory) != "" {
		b.WriteString("\nConversation so far:\n")
		b.WriteString(memory)
		b.WriteString("\n")
	}
	b.WriteString("\nKeep replies short and conversational. Return plain text only.")
	return b.String()
}

// parseToolArgs tolerates the malformed JSON models occasionally emit,
// keeping whatever top-level fields are still readable.
func parseToolArgs(raw string) map[string]interface{} {
	args := make(map[string]interface{})
	parsed := gjson.Parse(raw)
	if !parsed.IsObject() {
		return args
	}
	parsed.ForEach(func(key, value gjson.Result) bool {
		args[key.String()] = value.Value()
		return true
	})
	return args
}

func trimTranscript(transcript []types.ChatTurn, maxTurns int) []types.ChatTurn {
	if maxTurns <= 0 || len(transcript) <= maxTurns {
		return transcript
	}
	return transcript[len(transcript)-maxTurns:]
}

func lastUserContent(transcript []types.ChatTurn) string {
	for i := len(transcript) - 1; i >= 0; i-- {
		if transcript[i].Role == types.RoleUser {
			return transcript[i].Content
		}
	}
	return ""
}

// updateMemory appends the latest exchange to the running summary and
// keeps the newest maxRunes runes.
func updateMemory(old, userMsg, reply string, maxRunes int) string {
	var b strings.Builder
	if strings.TrimSpace(old) != "" {
		b.WriteString(strings.TrimSpace(old))
		b.WriteString("\n")
	}
	if strings.TrimSpace(userMsg) != "" {
		b.WriteString("User: ")
		b.WriteString(strings.TrimSpace(userMsg))
		b.WriteString("\n")
	}
	if strings.TrimSpace(reply) != "" {
		b.WriteString("Assistant: ")
		b.WriteString(strings.TrimSpace(reply))
	}
	return keepTailRunes(strings.TrimSpace(b.String()), maxRunes)
}

func keepTailRunes(text string, maxRunes int) string {
	if maxRunes <= 0 {
		return ""
	}
	if utf8.RuneCountInString(text) <= maxRunes {
		return text
	}
	runes := []rune(text)
	return string(runes[len(runes)-maxRunes:])
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
