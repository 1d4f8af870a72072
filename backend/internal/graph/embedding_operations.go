package graph

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/bbrillhart19/vapor/backend/pkg/errors"
)

// DescriptionChunkIndex is the vector index over DescriptionChunk embeddings.
const DescriptionChunkIndex = "description_chunk_index"

const (
	indexOnlineTimeout  = 60 * time.Second
	indexOnlineInterval = time.Second
)

// SetGameDescriptionEmbeddings replaces the description chunks for a
// game: existing chunks are detach-deleted, then the validated input
// chunks are merged and attached with their embeddings. Repeated
// embedding runs therefore never accumulate stale chunks.
func (r *Repository) SetGameDescriptionEmbeddings(ctx context.Context, appID int64, chunks []map[string]any) error {
	deleteCypher := `
		MATCH (g:Game {appId: $appid})-[:HAS_DESCRIPTION_CHUNK]->(c:DescriptionChunk)
		DETACH DELETE c
	`
	if err := r.Write(ctx, deleteCypher, map[string]any{"appid": appID}); err != nil {
		return err
	}

	validated := ValidateFields(chunks, map[string]any{
		"chunkid":      Required,
		"source":       appID,
		"text":         Required,
		"start_index":  0,
		"total_length": 0,
		"embedding":    Required,
	})
	if dropped := len(chunks) - len(validated); dropped > 0 {
		r.logger.Debug("Dropped malformed description chunks",
			zap.Int64("appid", appID),
			zap.Int("dropped", dropped),
		)
	}

	cypher := `
		MATCH (g:Game {appId: $appid})
		UNWIND $chunks AS chunk
		MERGE (c:DescriptionChunk {chunkId: chunk.chunkid})
		SET c.source = chunk.source,
		    c.text = chunk.text,
		    c.startIndex = chunk.start_index,
		    c.totalLength = chunk.total_length,
		    c.embedding = chunk.embedding
		MERGE (g)-[:HAS_DESCRIPTION_CHUNK]->(c)
	`
	return r.Write(ctx, cypher, map[string]any{
		"appid":  appID,
		"chunks": validated,
	})
}

// SetVectorIndex declaratively creates a vector index and polls until it
// reports online, returning a timeout error if it never does.
func (r *Repository) SetVectorIndex(ctx context.Context, name, nodeLabel, property string, dimension int) error {
	cypher := fmt.Sprintf(`
		CREATE VECTOR INDEX %s IF NOT EXISTS
		FOR (n:%s) ON (n.%s)
		OPTIONS {indexConfig: {
			`+"`vector.dimensions`"+`: $dimension,
			`+"`vector.similarity_function`"+`: 'cosine'
		}}
	`, name, nodeLabel, property)
	if err := r.Write(ctx, cypher, map[string]any{"dimension": dimension}); err != nil {
		return err
	}

	r.logger.Info("Waiting for vector index to come online",
		zap.String("index", name),
		zap.Int("dimension", dimension),
	)

	deadline := time.Now().Add(indexOnlineTimeout)
	for time.Now().Before(deadline) {
		rows, err := r.Read(ctx,
			"SHOW INDEXES YIELD name, state WHERE name = $name RETURN name, state",
			map[string]any{"name": name}, 1)
		if err != nil {
			return err
		}
		if len(rows) > 0 && rowString(rows[0], "state") == "ONLINE" {
			return nil
		}
		time.Sleep(indexOnlineInterval)
	}
	return errors.NewVectorIndexTimeout(name, indexOnlineTimeout)
}

// SetGameDescriptionVectorIndex creates the DescriptionChunk embedding
// index sized to the active embedding model's dimensionality.
func (r *Repository) SetGameDescriptionVectorIndex(ctx context.Context, dimension int) error {
	return r.SetVectorIndex(ctx, DescriptionChunkIndex, "DescriptionChunk", "embedding", dimension)
}

// GameDescriptionsSemanticSearch runs nearest-neighbor search over
// description chunk embeddings, filtered by a minimum similarity score,
// joining each chunk with its owning game. Best matches first.
func (r *Repository) GameDescriptionsSemanticSearch(ctx context.Context, embedding []float32, nNeighbors int, minScore float64) ([]ChunkMatch, error) {
	if nNeighbors < 1 {
		nNeighbors = 5
	}

	cypher := `
		CALL db.index.vector.queryNodes($index, $n, $embedding)
		YIELD node, score
		WHERE score >= $minScore
		MATCH (g:Game)-[:HAS_DESCRIPTION_CHUNK]->(node)
		RETURN g.appId as appid, g.name as name, node.text as text, score
		ORDER BY score DESC
	`
	rows, err := r.Read(ctx, cypher, map[string]any{
		"index":     DescriptionChunkIndex,
		"n":         nNeighbors,
		"embedding": embedding,
		"minScore":  minScore,
	}, 0)
	if err != nil {
		return nil, err
	}

	matches := make([]ChunkMatch, 0, len(rows))
	for _, row := range rows {
		matches = append(matches, ChunkMatch{
			AppID: rowInt64(row, "appid"),
			Name:  rowString(row, "name"),
			Text:  rowString(row, "text"),
			Score: rowFloat64(row, "score"),
		})
	}
	return matches, nil
}
