package embeddings

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/ollama/ollama/api"
	"go.uber.org/zap"

	"github.com/bbrillhart19/vapor/backend/pkg/config"
	"github.com/bbrillhart19/vapor/backend/pkg/errors"
	"github.com/bbrillhart19/vapor/backend/pkg/logger"
)

// DefaultModel is the embedding model used when none is configured.
const DefaultModel = "embeddinggemma"

// modelParams carries the fixed properties of each supported embedding
// model. The vector index is sized from here, never from a hardcoded
// constant at the call site.
var modelParams = map[string]struct {
	embeddingSize int
}{
	"embeddinggemma":    {embeddingSize: 768},
	"nomic-embed-text":  {embeddingSize: 768},
	"mxbai-embed-large": {embeddingSize: 1024},
}

// Provider wraps the Ollama API client for text embedding. It is
// constructed once at process start and passed by reference; there is
// no package-level singleton.
type Provider struct {
	client *api.Client
	model  string
	logger *zap.Logger
}

// New returns a Provider for model served at host.
func New(host, model string) (*Provider, error) {
	if model == "" {
		model = DefaultModel
	}
	base, err := url.Parse(host)
	if err != nil {
		return nil, errors.NewEmbeddingModelUnavailable(model, err)
	}
	return &Provider{
		client: api.NewClient(base, http.DefaultClient),
		model:  model,
		logger: logger.Get(),
	}, nil
}

// FromConfig builds a Provider from application configuration.
func FromConfig(cfg *config.Config) (*Provider, error) {
	return New(cfg.OllamaHost, cfg.OllamaEmbeddingModel)
}

// Model returns the configured embedding model name.
func (p *Provider) Model() string {
	return p.model
}

// EmbeddingSize returns the fixed vector dimensionality of the
// configured model.
func (p *Provider) EmbeddingSize() int {
	if params, ok := modelParams[p.model]; ok {
		return params.embeddingSize
	}
	return modelParams[DefaultModel].embeddingSize
}

// Pull ensures the configured model is present in the local model
// store, pulling it if missing. A model that cannot be supplied is a
// fatal, typed error; nothing downstream can embed without it.
func (p *Provider) Pull(ctx context.Context) error {
	listResp, err := p.client.List(ctx)
	if err != nil {
		return errors.NewEmbeddingModelUnavailable(p.model, err)
	}
	for _, m := range listResp.Models {
		if strings.SplitN(m.Name, ":", 2)[0] == p.model {
			p.logger.Info("Embedding model found, skipping pull", zap.String("model", p.model))
			return nil
		}
	}

	p.logger.Info("Embedding model not found, pulling...", zap.String("model", p.model))
	req := &api.PullRequest{Model: p.model}
	err = p.client.Pull(ctx, req, func(resp api.ProgressResponse) error {
		return nil
	})
	if err != nil {
		return errors.NewEmbeddingModelUnavailable(p.model, err)
	}
	p.logger.Info("Pulled embedding model successfully", zap.String("model", p.model))
	return nil
}

// EmbedQuery embeds a single text into a fixed-length vector.
func (p *Provider) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	vectors, err := p.EmbedDocuments(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(vectors) == 0 {
		return nil, errors.NewEmbeddingFailed(p.model, nil)
	}
	return vectors[0], nil
}

// EmbedDocuments embeds each text into a fixed-length vector.
func (p *Provider) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	req := &api.EmbedRequest{
		Model: p.model,
		Input: texts,
	}
	resp, err := p.client.Embed(ctx, req)
	if err != nil {
		return nil, errors.NewEmbeddingFailed(p.model, err)
	}
	return resp.Embeddings, nil
}
