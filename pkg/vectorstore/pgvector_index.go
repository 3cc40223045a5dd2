package vectorstore

import (
	"context"

	"ai-knowledge-be/internal/repository/unitofwork"
)

// PgVectorIndex implements Index on top of the pgvector-backed
// document_chunks repository.
type PgVectorIndex struct {
	uowFactory unitofwork.RepositoryFactory
}

var _ Index = &PgVectorIndex{}

func NewPgVectorIndex(uowFactory unitofwork.RepositoryFactory) *PgVectorIndex {
	return &PgVectorIndex{
		uowFactory: uowFactory,
	}
}

func (x *PgVectorIndex) Search(ctx context.Context, collection string, vector []float32, limit int, fileFilter string) ([]ScoredChunk, error) {
	uow := x.uowFactory.NewUnitOfWork(ctx)

	scored, err := uow.DocumentChunkRepository().SearchSimilarWithScore(ctx, collection, vector, limit, fileFilter)
	if err != nil {
		return nil, err
	}

	chunks := make([]ScoredChunk, 0, len(scored))
	for _, s := range scored {
		chunks = append(chunks, ScoredChunk{
			Text: s.Chunk.Text,
			Payload: Payload{
				Title:            s.Chunk.Title,
				HierarchyPath:    s.Chunk.HierarchyPath,
				OriginalFileName: s.Chunk.OriginalFileName,
				DepartmentId:     s.Chunk.DepartmentId,
				CommonDoc:        s.Chunk.CommonDoc,
			},
			Score: s.Similarity,
		})
	}
	return chunks, nil
}

func (x *PgVectorIndex) CollectionsForFiles(ctx context.Context, fileNames []string) ([]string, error) {
	uow := x.uowFactory.NewUnitOfWork(ctx)
	return uow.DocumentChunkRepository().FindCollectionsByFileNames(ctx, fileNames)
}
