package mapper

import (
	"ai-knowledge-be/internal/entity"
	"ai-knowledge-be/internal/model"
)

type DocumentChunkMapper struct{}

func NewDocumentChunkMapper() *DocumentChunkMapper {
	return &DocumentChunkMapper{}
}

func (m *DocumentChunkMapper) ToEntity(c *model.DocumentChunk) *entity.DocumentChunk {
	if c == nil {
		return nil
	}

	e := &entity.DocumentChunk{
		Id:               c.Id,
		Collection:       c.Collection,
		Text:             c.Text,
		Embedding:        c.Embedding.Slice(),
		OriginalFileName: c.OriginalFileName,
		CreatedAt:        c.CreatedAt,
	}

	if c.Metadata == nil {
		return e
	}

	if title, ok := c.Metadata["title"].(string); ok {
		e.Title = title
	}
	if path, ok := c.Metadata["hierarchy_path"].(string); ok {
		e.HierarchyPath = path
	}
	if common, ok := c.Metadata["common_doc"].(bool); ok {
		e.CommonDoc = common
	}
	// JSONB numbers decode as float64
	if dept, ok := c.Metadata["department_id"].(float64); ok {
		d := int(dept)
		e.DepartmentId = &d
	}

	return e
}
