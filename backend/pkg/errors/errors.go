package errors

import (
	stderrors "errors"
	"fmt"
	"time"
)

// ErrorType represents the category of error
type ErrorType string

const (
	// ErrorTypeGraph represents graph database errors
	ErrorTypeGraph ErrorType = "graph"
	// ErrorTypeSteam represents Steam Web API errors
	ErrorTypeSteam ErrorType = "steam"
	// ErrorTypeEmbedding represents embedding provider errors
	ErrorTypeEmbedding ErrorType = "embedding"
	// ErrorTypeAgent represents agent/LLM-related errors
	ErrorTypeAgent ErrorType = "agent"
	// ErrorTypeTool represents tool execution errors
	ErrorTypeTool ErrorType = "tool"
	// ErrorTypeConfig represents configuration errors
	ErrorTypeConfig ErrorType = "config"
)

// BaseError is the base error type with common fields
type BaseError struct {
	Type      ErrorType
	Message   string
	Timestamp time.Time
	Err       error // Wrapped error
}

// Error implements the error interface
func (e *BaseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap returns the wrapped error for error unwrapping
func (e *BaseError) Unwrap() error {
	return e.Err
}

// ErrorType returns the error's category. Promoted to every typed error
// embedding BaseError.
func (e *BaseError) ErrorType() ErrorType {
	return e.Type
}

// NewBaseError creates a new base error
func NewBaseError(errType ErrorType, message string, err error) *BaseError {
	return &BaseError{
		Type:      errType,
		Message:   message,
		Timestamp: time.Now(),
		Err:       err,
	}
}

// Graph Errors

// ErrGraphConnectionFailed is returned when the Neo4j store is unreachable
// after the bounded startup retry budget is exhausted
type ErrGraphConnectionFailed struct {
	*BaseError
	URI      string
	Attempts int
}

func NewGraphConnectionFailed(uri string, attempts int, err error) *ErrGraphConnectionFailed {
	return &ErrGraphConnectionFailed{
		BaseError: NewBaseError(ErrorTypeGraph, fmt.Sprintf("failed to connect to Neo4j after %d attempts: %s", attempts, uri), err),
		URI:       uri,
		Attempts:  attempts,
	}
}

// ErrGraphNotSetup is returned when a population operation runs against a
// graph that is missing its constraints or primary user
type ErrGraphNotSetup struct {
	*BaseError
	Reason string
}

func NewGraphNotSetup(reason string) *ErrGraphNotSetup {
	return &ErrGraphNotSetup{
		BaseError: NewBaseError(ErrorTypeGraph, fmt.Sprintf("graph is not set up: %s", reason), nil),
		Reason:    reason,
	}
}

// ErrPrimaryUserNotFound is returned when no Primary-tagged user exists
type ErrPrimaryUserNotFound struct {
	*BaseError
}

func NewPrimaryUserNotFound() *ErrPrimaryUserNotFound {
	return &ErrPrimaryUserNotFound{
		BaseError: NewBaseError(ErrorTypeGraph, "no primary user found, has this database been initialized?", nil),
	}
}

// ErrGraphSetupFailed is returned when setup does not converge within its
// bounded attempt budget
type ErrGraphSetupFailed struct {
	*BaseError
	Attempts int
}

func NewGraphSetupFailed(attempts int, err error) *ErrGraphSetupFailed {
	return &ErrGraphSetupFailed{
		BaseError: NewBaseError(ErrorTypeGraph, fmt.Sprintf("setup did not converge after %d attempts", attempts), err),
		Attempts:  attempts,
	}
}

// ErrGraphQueryFailed is returned when a graph query fails
type ErrGraphQueryFailed struct {
	*BaseError
	Query string
}

func NewGraphQueryFailed(query string, err error) *ErrGraphQueryFailed {
	return &ErrGraphQueryFailed{
		BaseError: NewBaseError(ErrorTypeGraph, "query failed", err),
		Query:     query,
	}
}

// ErrVectorIndexTimeout is returned when a vector index never reports
// online within the configured timeout
type ErrVectorIndexTimeout struct {
	*BaseError
	IndexName string
	Timeout   time.Duration
}

func NewVectorIndexTimeout(indexName string, timeout time.Duration) *ErrVectorIndexTimeout {
	return &ErrVectorIndexTimeout{
		BaseError: NewBaseError(ErrorTypeGraph, fmt.Sprintf("vector index %s not online after %v", indexName, timeout), nil),
		IndexName: indexName,
		Timeout:   timeout,
	}
}

// Steam Errors

// ErrSteamAPI is the raised form of a Steam Web API fault. The client
// swallows these for expected fault classes and returns empty results;
// the type exists for the transport layer and tests.
type ErrSteamAPI struct {
	*BaseError
	StatusCode int
}

func NewSteamAPI(statusCode int, err error) *ErrSteamAPI {
	return &ErrSteamAPI{
		BaseError:  NewBaseError(ErrorTypeSteam, fmt.Sprintf("steam request failed with status %d", statusCode), err),
		StatusCode: statusCode,
	}
}

// Embedding Errors

// ErrEmbeddingModelUnavailable is returned when the configured embedding
// model cannot be pulled from the model store
type ErrEmbeddingModelUnavailable struct {
	*BaseError
	Model string
}

func NewEmbeddingModelUnavailable(model string, err error) *ErrEmbeddingModelUnavailable {
	return &ErrEmbeddingModelUnavailable{
		BaseError: NewBaseError(ErrorTypeEmbedding, fmt.Sprintf("embedding model unavailable: %s", model), err),
		Model:     model,
	}
}

// ErrEmbeddingFailed is returned when an embedding request fails
type ErrEmbeddingFailed struct {
	*BaseError
	Model string
}

func NewEmbeddingFailed(model string, err error) *ErrEmbeddingFailed {
	return &ErrEmbeddingFailed{
		BaseError: NewBaseError(ErrorTypeEmbedding, fmt.Sprintf("embedding request failed for model %s", model), err),
		Model:     model,
	}
}

// Agent Errors

// ErrAgentNoResponse is returned when the LLM returns no response
var ErrAgentNoResponse = NewBaseError(ErrorTypeAgent, "no response from LLM", nil)

// ErrAgentLLMFailed is returned when an LLM request fails
type ErrAgentLLMFailed struct {
	*BaseError
	Model    string
	Attempts int
}

func NewAgentLLMFailed(model string, attempts int, err error) *ErrAgentLLMFailed {
	return &ErrAgentLLMFailed{
		BaseError: NewBaseError(ErrorTypeAgent, fmt.Sprintf("LLM request failed after %d attempts", attempts), err),
		Model:     model,
		Attempts:  attempts,
	}
}

// Tool Errors

// ErrToolNotFound is returned when a requested tool is not found
type ErrToolNotFound struct {
	*BaseError
	ToolName string
}

func NewToolNotFound(toolName string) *ErrToolNotFound {
	return &ErrToolNotFound{
		BaseError: NewBaseError(ErrorTypeTool, fmt.Sprintf("tool not found: %s", toolName), nil),
		ToolName:  toolName,
	}
}

// ErrToolExecutionFailed is returned when tool execution fails
type ErrToolExecutionFailed struct {
	*BaseError
	ToolName string
}

func NewToolExecutionFailed(toolName string, err error) *ErrToolExecutionFailed {
	return &ErrToolExecutionFailed{
		BaseError: NewBaseError(ErrorTypeTool, fmt.Sprintf("tool execution failed: %s", toolName), err),
		ToolName:  toolName,
	}
}

// Config Errors

// ErrConfigMissingRequired is returned when a required config value is missing
type ErrConfigMissingRequired struct {
	*BaseError
	Field string
}

func NewConfigMissingRequired(field string) *ErrConfigMissingRequired {
	return &ErrConfigMissingRequired{
		BaseError: NewBaseError(ErrorTypeConfig, fmt.Sprintf("missing required config: %s", field), nil),
		Field:     field,
	}
}

// Helper functions

// IsErrorType checks if an error is of a specific category, anywhere in
// its unwrap chain
func IsErrorType(err error, errType ErrorType) bool {
	var typed interface{ ErrorType() ErrorType }
	if stderrors.As(err, &typed) {
		return typed.ErrorType() == errType
	}
	return false
}
