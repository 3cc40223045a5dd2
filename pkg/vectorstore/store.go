package vectorstore

import (
	"context"
	"fmt"
)

// Payload is the metadata stored alongside each chunk, written by the
// ingestion collaborator.
type Payload struct {
	Title            string
	HierarchyPath    string
	OriginalFileName string
	DepartmentId     *int
	CommonDoc        bool
}

// ScoredChunk is one similarity-search hit
type ScoredChunk struct {
	Text    string
	Payload Payload
	Score   float64
}

// Index performs nearest-neighbor search against named collections.
// A chunk belongs to exactly one collection; collection choice is fully
// determined by its department/common flag at write time.
type Index interface {
	// Search runs a similarity search inside one collection.
	// fileFilter, when non-empty, is an exact match on the source file name.
	Search(ctx context.Context, collection string, vector []float32, limit int, fileFilter string) ([]ScoredChunk, error)

	// CollectionsForFiles resolves the collections owning the named documents.
	CollectionsForFiles(ctx context.Context, fileNames []string) ([]string, error)
}

// Naming is the deterministic collection naming scheme: one shared/common
// collection plus one collection per department.
type Naming struct {
	Prefix string
}

func (n Naming) CommonCollection() string {
	return fmt.Sprintf("%s_common", n.Prefix)
}

func (n Naming) DepartmentCollection(departmentId int) string {
	return fmt.Sprintf("%s_dept_%d", n.Prefix, departmentId)
}
