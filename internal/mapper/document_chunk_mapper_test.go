package mapper

import (
	"testing"

	"ai-knowledge-be/internal/model"

	"github.com/pgvector/pgvector-go"
	"github.com/stretchr/testify/assert"
	"gorm.io/datatypes"
)

func TestDocumentChunkToEntity(t *testing.T) {
	m := NewDocumentChunkMapper()

	chunk := &model.DocumentChunk{
		Collection:       "docs_dept_3",
		Text:             "chunk body",
		Embedding:        pgvector.NewVector([]float32{0.1, 0.2}),
		OriginalFileName: "policy.pdf",
		Metadata: datatypes.JSONMap{
			"title":          "Travel Expenses",
			"hierarchy_path": "Policy > Travel Expenses",
			"common_doc":     false,
			"department_id":  float64(3),
		},
	}

	e := m.ToEntity(chunk)

	assert.Equal(t, "docs_dept_3", e.Collection)
	assert.Equal(t, "chunk body", e.Text)
	assert.Equal(t, []float32{0.1, 0.2}, e.Embedding)
	assert.Equal(t, "Travel Expenses", e.Title)
	assert.Equal(t, "Policy > Travel Expenses", e.HierarchyPath)
	assert.False(t, e.CommonDoc)
	if assert.NotNil(t, e.DepartmentId) {
		assert.Equal(t, 3, *e.DepartmentId)
	}
}

func TestDocumentChunkToEntityMissingMetadata(t *testing.T) {
	m := NewDocumentChunkMapper()

	e := m.ToEntity(&model.DocumentChunk{
		Collection: "docs_common",
		Text:       "chunk body",
	})

	assert.Equal(t, "", e.Title)
	assert.Nil(t, e.DepartmentId)
	assert.False(t, e.CommonDoc)
}

func TestDocumentChunkToEntityNil(t *testing.T) {
	m := NewDocumentChunkMapper()
	assert.Nil(t, m.ToEntity(nil))
}
