package embeddings

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_DefaultsModel(t *testing.T) {
	provider, err := New("http://localhost:11434", "")
	require.NoError(t, err)
	assert.Equal(t, DefaultModel, provider.Model())
}

func TestEmbeddingSize_KnownModels(t *testing.T) {
	cases := map[string]int{
		"embeddinggemma":    768,
		"nomic-embed-text":  768,
		"mxbai-embed-large": 1024,
	}
	for model, size := range cases {
		provider, err := New("http://localhost:11434", model)
		require.NoError(t, err)
		assert.Equal(t, size, provider.EmbeddingSize(), model)
	}
}

func TestEmbeddingSize_UnknownModelFallsBack(t *testing.T) {
	provider, err := New("http://localhost:11434", "some-new-model")
	require.NoError(t, err)
	assert.Equal(t, 768, provider.EmbeddingSize())
}
