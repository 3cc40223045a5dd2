package implementation

import (
	"context"

	"ai-knowledge-be/internal/mapper"
	"ai-knowledge-be/internal/model"
	"ai-knowledge-be/internal/repository/contract"

	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

type DocumentChunkRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.DocumentChunkMapper
}

func NewDocumentChunkRepository(db *gorm.DB) contract.DocumentChunkRepository {
	return &DocumentChunkRepositoryImpl{
		db:     db,
		mapper: mapper.NewDocumentChunkMapper(),
	}
}

// SearchSimilarWithScore returns chunks with similarity scores within one collection.
// Cosine distance in pgvector is: 1 - cosine_similarity, so we compute
// 1 - (embedding <=> query_vector) = cosine_similarity.
func (r *DocumentChunkRepositoryImpl) SearchSimilarWithScore(ctx context.Context, collection string, embedding []float32, limit int, fileFilter string) ([]*contract.ScoredDocumentChunk, error) {
	if limit <= 0 {
		limit = 10
	}

	type result struct {
		model.DocumentChunk
		Similarity float64
	}
	var results []result

	queryVector := pgvector.NewVector(embedding)

	query := r.db.WithContext(ctx).
		Table("document_chunks").
		Select("document_chunks.*, 1 - (embedding <=> ?) as similarity", queryVector).
		Where("collection = ?", collection)

	if fileFilter != "" {
		query = query.Where("original_file_name = ?", fileFilter)
	}

	err := query.
		Order("similarity DESC").
		Limit(limit).
		Scan(&results).Error
	if err != nil {
		return nil, err
	}

	scored := make([]*contract.ScoredDocumentChunk, len(results))
	for i, res := range results {
		scored[i] = &contract.ScoredDocumentChunk{
			Chunk:      r.mapper.ToEntity(&res.DocumentChunk),
			Similarity: res.Similarity,
		}
	}
	return scored, nil
}

func (r *DocumentChunkRepositoryImpl) FindCollectionsByFileNames(ctx context.Context, fileNames []string) ([]string, error) {
	if len(fileNames) == 0 {
		return nil, nil
	}

	var collections []string
	err := r.db.WithContext(ctx).
		Model(&model.DocumentChunk{}).
		Distinct("collection").
		Where("original_file_name IN ?", fileNames).
		Pluck("collection", &collections).Error
	if err != nil {
		return nil, err
	}
	return collections, nil
}
