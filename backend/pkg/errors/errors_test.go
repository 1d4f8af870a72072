package errors

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBaseError_FormatsWithAndWithoutCause(t *testing.T) {
	bare := NewBaseError(ErrorTypeGraph, "something broke", nil)
	assert.Equal(t, "[graph] something broke", bare.Error())

	cause := fmt.Errorf("connection refused")
	wrapped := NewBaseError(ErrorTypeGraph, "something broke", cause)
	assert.Contains(t, wrapped.Error(), "connection refused")
	assert.Equal(t, cause, wrapped.Unwrap())
}

func TestTypedErrors_CarryContext(t *testing.T) {
	connErr := NewGraphConnectionFailed("bolt://localhost:7687", 5, nil)
	assert.Equal(t, 5, connErr.Attempts)
	assert.Contains(t, connErr.Error(), "bolt://localhost:7687")

	steamErr := NewSteamAPI(429, nil)
	assert.Equal(t, 429, steamErr.StatusCode)

	indexErr := NewVectorIndexTimeout("description_chunk_index", 60*time.Second)
	assert.Equal(t, "description_chunk_index", indexErr.IndexName)
}

func TestIsErrorType(t *testing.T) {
	assert.True(t, IsErrorType(NewGraphNotSetup("no primary user"), ErrorTypeGraph))
	assert.True(t, IsErrorType(NewSteamAPI(500, nil), ErrorTypeSteam))
	assert.True(t, IsErrorType(NewToolNotFound("nope"), ErrorTypeTool))
	assert.False(t, IsErrorType(NewSteamAPI(500, nil), ErrorTypeGraph))
	assert.False(t, IsErrorType(fmt.Errorf("plain error"), ErrorTypeGraph))
	assert.False(t, IsErrorType(nil, ErrorTypeGraph))
}

func TestIsErrorType_Wrapped(t *testing.T) {
	inner := NewEmbeddingModelUnavailable("embeddinggemma", nil)
	outer := fmt.Errorf("pull step: %w", inner)
	require.Error(t, outer)
	assert.True(t, IsErrorType(outer, ErrorTypeEmbedding))
}
