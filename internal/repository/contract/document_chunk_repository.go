package contract

import (
	"context"

	"ai-knowledge-be/internal/entity"
)

// ScoredDocumentChunk pairs a chunk with its cosine similarity to the query
type ScoredDocumentChunk struct {
	Chunk      *entity.DocumentChunk
	Similarity float64
}

// DocumentChunkRepository is read-only: chunks are written by the ingestion
// collaborator, this subsystem only searches them.
type DocumentChunkRepository interface {
	// SearchSimilarWithScore runs cosine-distance search inside one collection.
	// fileFilter, when non-empty, is an exact match on original_file_name.
	SearchSimilarWithScore(ctx context.Context, collection string, embedding []float32, limit int, fileFilter string) ([]*ScoredDocumentChunk, error)

	// FindCollectionsByFileNames resolves the distinct collections holding
	// chunks of the named source files.
	FindCollectionsByFileNames(ctx context.Context, fileNames []string) ([]string, error)
}
