package models

import "time"

// EmbeddingRecord is the persisted vector for one subject under one model.
// Uniqueness is enforced on (subject_id, model): recomputing an embedding
// overwrites the previous row, never partially updates it.
//
// The raw vector is kept out of GORM's automatic mapping. All drivers persist
// it as JSON in vector_json; on PostgreSQL an additional pgvector column
// (embedding) is maintained via raw SQL for the native similarity operator.
type EmbeddingRecord struct {
	ID         uint      `gorm:"primaryKey" json:"-"`
	SubjectID  string    `gorm:"size:255;not null;uniqueIndex:idx_subject_model" json:"subject_id"`
	Model      string    `gorm:"size:100;not null;uniqueIndex:idx_subject_model" json:"model"`
	Dimension  int       `gorm:"not null" json:"dimension"`
	VectorJSON string    `gorm:"type:text;not null" json:"-"`
	Vector     []float32 `gorm:"-" json:"-"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// TableName overrides GORM's default pluralization.
func (EmbeddingRecord) TableName() string {
	return "word_embeddings"
}

// EmbeddingResult is the output of one embedding generation call.
type EmbeddingResult struct {
	Vector    []float32 `json:"vector"`
	Dimension int       `json:"dimension"`
	Model     string    `json:"model"`
}
