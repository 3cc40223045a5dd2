package entity

import (
	"time"

	"github.com/google/uuid"
)

// DocumentChunk is a retrieval unit owned by the ingestion collaborator.
// This subsystem only reads it.
type DocumentChunk struct {
	Id               uuid.UUID
	Collection       string
	Text             string
	Embedding        []float32
	Title            string
	HierarchyPath    string
	OriginalFileName string
	DepartmentId     *int
	CommonDoc        bool
	CreatedAt        time.Time
}
