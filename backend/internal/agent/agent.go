package agent

import (
	"context"

	"github.com/google/uuid"
	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/bbrillhart19/vapor/backend/internal/adapter"
	"github.com/bbrillhart19/vapor/backend/internal/tools"
	"github.com/bbrillhart19/vapor/backend/pkg/logger"
)

// maxToolIterations bounds how many tool-call rounds one user message
// may trigger before the agent must answer with what it has.
const maxToolIterations = 4

const systemPrompt = `You are Vapor, a companion that knows the user's Steam ` +
	`social graph and game library. Answer questions about games using your ` +
	`tools: use about_the_game to look up a game's description by (possibly ` +
	`inexact) title, and find_similar_games to discover games similar to a ` +
	`description. Ground your answers in tool results; if the tools return ` +
	`nothing, say the game data has not been populated rather than guessing.`

// ChatModel produces the next assistant turn for a conversation.
type ChatModel interface {
	Chat(ctx context.Context, messages []openai.ChatCompletionMessage, tools []adapter.Tool) (*adapter.Response, error)
}

// ToolExecutor resolves a tool call into its JSON result.
type ToolExecutor interface {
	Execute(ctx context.Context, name string, args map[string]any) (string, error)
}

// Agent runs the tool-calling chat loop over the graph-backed game tools
type Agent struct {
	llm       ChatModel
	executor  ToolExecutor
	toolSet   []adapter.Tool
	messages  []openai.ChatCompletionMessage
	sessionID string
	logger    *zap.Logger
}

// New creates an agent with a fresh conversation
func New(llm ChatModel, executor ToolExecutor) *Agent {
	return &Agent{
		llm:      llm,
		executor: executor,
		toolSet:  tools.GetGameTools(),
		messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
		},
		sessionID: uuid.NewString(),
		logger:    logger.Get(),
	}
}

// SessionID identifies this conversation
func (a *Agent) SessionID() string {
	return a.sessionID
}

// HandleMessage appends the user message to the conversation, resolves
// any tool calls the model makes, and returns the model's final answer.
func (a *Agent) HandleMessage(ctx context.Context, userMsg string) (string, error) {
	a.messages = append(a.messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: userMsg,
	})

	for iteration := 0; iteration < maxToolIterations; iteration++ {
		response, err := a.llm.Chat(ctx, a.messages, a.toolSet)
		if err != nil {
			return "", err
		}
		a.messages = append(a.messages, response.Message)

		if len(response.ToolCalls) == 0 {
			return response.Content, nil
		}

		for _, call := range response.ToolCalls {
			a.logger.Info("Executing tool",
				zap.String("session", a.sessionID),
				zap.String("tool", call.Name),
			)
			result, err := a.executor.Execute(ctx, call.Name, call.Arguments)
			if err != nil {
				a.logger.Warn("Tool execution failed",
					zap.String("tool", call.Name),
					zap.Error(err),
				)
				result = `{"error": "tool execution failed"}`
			}
			a.messages = append(a.messages, openai.ChatCompletionMessage{
				Role:       openai.ChatMessageRoleTool,
				ToolCallID: call.ID,
				Content:    result,
			})
		}
	}

	// Tool budget exhausted; ask for a final answer with no tools offered
	response, err := a.llm.Chat(ctx, a.messages, nil)
	if err != nil {
		return "", err
	}
	a.messages = append(a.messages, response.Message)
	return response.Content, nil
}
