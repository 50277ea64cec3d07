// Package vectorstore persists word embeddings and exposes the two search
// contracts the similarity engine consumes: a native pgvector nearest-
// neighbor query and a bounded full scan for the brute-force fallback.
package vectorstore

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/wordlens/wordlens/internal/models"
	"github.com/wordlens/wordlens/internal/services/database"

	fiberlog "github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm/clause"
)

// maxScanVectors caps how many stored vectors the fallback scan will load
// per model. Beyond the cap the scan truncates deterministically by
// primary-key order.
const maxScanVectors = 10000

// nativeRetryInterval is how long a failed availability probe is remembered
// before the native path is probed again.
const nativeRetryInterval = time.Minute

// Store wraps the database for embedding persistence and vector queries.
type Store struct {
	db *database.DB

	probeMu      sync.Mutex
	probedAt     time.Time
	nativeUsable bool
}

func New(db *database.DB) *Store {
	return &Store{db: db}
}

// Upsert writes the embedding for (subjectID, model), overwriting any
// previous row. The vector is stored as JSON for every driver; on PostgreSQL
// the pgvector column is additionally refreshed via raw SQL because GORM
// cannot map the vector type.
func (s *Store) Upsert(ctx context.Context, subjectID, model string, vector []float32) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("vector store not configured")
	}

	data, err := json.Marshal(vector)
	if err != nil {
		return fmt.Errorf("failed to encode vector: %w", err)
	}

	record := models.EmbeddingRecord{
		SubjectID:  subjectID,
		Model:      model,
		Dimension:  len(vector),
		VectorJSON: string(data),
	}

	err = s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "subject_id"}, {Name: "model"}},
			DoUpdates: clause.AssignmentColumns([]string{"dimension", "vector_json", "updated_at"}),
		}).
		Create(&record).Error
	if err != nil {
		return fmt.Errorf("failed to upsert embedding for %s/%s: %w", subjectID, model, err)
	}

	if s.db.IsPostgres() && s.NativeAvailable(ctx) {
		if err := s.updateNativeColumn(ctx, subjectID, model, vector); err != nil {
			// The JSON column is authoritative; a stale native column only
			// degrades the native path, which the engine falls back from.
			fiberlog.Warnf("vectorstore: native column update failed for %s/%s: %v", subjectID, model, err)
		}
	}

	return nil
}

// StoredVector is one row of the fallback scan.
type StoredVector struct {
	SubjectID string
	Vector    []float32
}

// ListAll returns up to cap stored vectors for model, primary-key ordered.
// cap <= 0 or cap > maxScanVectors uses maxScanVectors.
func (s *Store) ListAll(ctx context.Context, model string, limit int) ([]StoredVector, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("vector store not configured")
	}
	if limit <= 0 || limit > maxScanVectors {
		limit = maxScanVectors
	}

	var records []models.EmbeddingRecord
	err := s.db.WithContext(ctx).
		Where("model = ?", model).
		Order("id").
		Limit(limit).
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list embeddings for model %s: %w", model, err)
	}

	vectors := make([]StoredVector, 0, len(records))
	for _, rec := range records {
		var vec []float32
		if err := json.Unmarshal([]byte(rec.VectorJSON), &vec); err != nil {
			fiberlog.Warnf("vectorstore: skipping unreadable vector for %s/%s: %v", rec.SubjectID, rec.Model, err)
			continue
		}
		vectors = append(vectors, StoredVector{SubjectID: rec.SubjectID, Vector: vec})
	}
	return vectors, nil
}

// QueryNearest ranks stored vectors for model against the query vector using
// pgvector's cosine distance operator. Similarity is computed in SQL as
// 1 - (embedding <=> query); pgvector's cosine distance is bounded, so the
// conversion is exact for this operator and no unbounded-metric conversion
// is ever applied.
func (s *Store) QueryNearest(ctx context.Context, vector []float32, model string, limit int, threshold float64) ([]models.SemanticSearchResult, error) {
	if s == nil || s.db == nil || !s.db.IsPostgres() {
		return nil, fmt.Errorf("native vector query requires PostgreSQL")
	}

	query := vectorLiteral(vector)

	var results []models.SemanticSearchResult
	err := s.db.WithContext(ctx).Raw(`
		SELECT subject_id, 1 - (embedding <=> ?::vector) AS similarity
		FROM word_embeddings
		WHERE model = ?
		  AND embedding IS NOT NULL
		  AND 1 - (embedding <=> ?::vector) >= ?
		ORDER BY embedding <=> ?::vector
		LIMIT ?`,
		query, model, query, threshold, query, limit,
	).Scan(&results).Error
	if err != nil {
		s.markNativeUnusable()
		return nil, fmt.Errorf("native vector query failed: %w", err)
	}

	return results, nil
}

// NativeAvailable reports whether the pgvector path is currently usable:
// the driver is PostgreSQL and the vector extension is installed. The probe
// result is cached and re-checked after nativeRetryInterval.
func (s *Store) NativeAvailable(ctx context.Context) bool {
	if s == nil || s.db == nil || !s.db.IsPostgres() {
		return false
	}

	s.probeMu.Lock()
	defer s.probeMu.Unlock()

	if time.Since(s.probedAt) < nativeRetryInterval {
		return s.nativeUsable
	}

	var installed int64
	err := s.db.WithContext(ctx).
		Raw(`SELECT count(*) FROM pg_extension WHERE extname = 'vector'`).
		Scan(&installed).Error

	s.probedAt = time.Now()
	s.nativeUsable = err == nil && installed > 0
	if err != nil {
		fiberlog.Warnf("vectorstore: native availability probe failed: %v", err)
	} else if !s.nativeUsable {
		fiberlog.Debug("vectorstore: pgvector extension not installed, native path disabled")
	}
	return s.nativeUsable
}

// EnsureNativeColumn adds the pgvector column and index when the extension
// is present. Safe to call on every startup.
func (s *Store) EnsureNativeColumn(ctx context.Context, dimension int) error {
	if !s.NativeAvailable(ctx) {
		return nil
	}

	stmts := []string{
		fmt.Sprintf(`ALTER TABLE word_embeddings ADD COLUMN IF NOT EXISTS embedding vector(%d)`, dimension),
		`CREATE INDEX IF NOT EXISTS idx_word_embeddings_embedding ON word_embeddings USING hnsw (embedding vector_cosine_ops)`,
	}
	for _, stmt := range stmts {
		if err := s.db.WithContext(ctx).Exec(stmt).Error; err != nil {
			return fmt.Errorf("failed to prepare native vector column: %w", err)
		}
	}
	return nil
}

// Count returns the number of stored embeddings, optionally for one model.
func (s *Store) Count(ctx context.Context, model string) (int64, error) {
	if s == nil || s.db == nil {
		return 0, nil
	}

	q := s.db.WithContext(ctx).Model(&models.EmbeddingRecord{})
	if model != "" {
		q = q.Where("model = ?", model)
	}
	var count int64
	err := q.Count(&count).Error
	return count, err
}

func (s *Store) updateNativeColumn(ctx context.Context, subjectID, model string, vector []float32) error {
	return s.db.WithContext(ctx).Exec(
		`UPDATE word_embeddings SET embedding = ?::vector WHERE subject_id = ? AND model = ?`,
		vectorLiteral(vector), subjectID, model,
	).Error
}

func (s *Store) markNativeUnusable() {
	s.probeMu.Lock()
	defer s.probeMu.Unlock()
	s.nativeUsable = false
	s.probedAt = time.Now()
}

// vectorLiteral renders a vector in pgvector's input format: [1,2,3].
func vectorLiteral(vector []float32) string {
	var b strings.Builder
	b.WriteByte('[')
	for i, v := range vector {
		if i > 0 {
			b.WriteByte(',')
		}
		fmt.Fprintf(&b, "%g", v)
	}
	b.WriteByte(']')
	return b.String()
}
