package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
)

type DocumentChunk struct {
	Id         uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Collection string          `gorm:"type:varchar(255);not null;index"`
	Text       string          `gorm:"type:text;not null"`
	Embedding  pgvector.Vector `gorm:"type:vector(768)"`
	// Payload metadata: title, hierarchy_path, department_id, common_doc.
	// original_file_name is promoted to a column for exact-match filtering.
	Metadata         datatypes.JSONMap `gorm:"type:jsonb"`
	OriginalFileName string            `gorm:"type:varchar(512);index"`
	CreatedAt        time.Time         `gorm:"autoCreateTime"`
}

func (DocumentChunk) TableName() string {
	return "document_chunks"
}
