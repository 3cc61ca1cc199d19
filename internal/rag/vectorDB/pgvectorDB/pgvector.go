package pgvectorDB

import (
	"context"
	"fmt"

	"github.com/akolanti/DocChat/internal/domain/commonModels"
	"github.com/akolanti/DocChat/pkg/logger_i"
	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var logger = logger_i.NewLogger("pgvector")

type chunkMeta struct {
	Segment  int    `json:"segment"`
	Filename string `json:"filename"`
}

type chunkRow struct {
	ID        string                        `gorm:"primaryKey"`
	FileID    int64                         `gorm:"not null;index"`
	Ordinal   int                           `gorm:"not null"`
	Content   string                        `gorm:"not null"`
	Metadata  datatypes.JSONType[chunkMeta] `gorm:"type:jsonb"`
	Embedding pgvector.Vector               `gorm:"type:vector(1536);not null"`
}

func (chunkRow) TableName() string { return "document_chunks" }

type Store struct {
	db *gorm.DB
}

// NewStore enables the vector extension and migrates the chunk table on db.
func NewStore(ctx context.Context, db *gorm.DB) (*Store, error) {
	if err := db.WithContext(ctx).Exec("CREATE EXTENSION IF NOT EXISTS vector").Error; err != nil {
		return nil, fmt.Errorf("enabling pgvector: %w", err)
	}
	if err := db.WithContext(ctx).AutoMigrate(&chunkRow{}); err != nil {
		return nil, fmt.Errorf("migrating document_chunks: %w", err)
	}
	logger.Info("pgvector ready")
	return &Store{db: db}, nil
}

func (s *Store) Upsert(ctx context.Context, entries []commonModels.VectorEntry) error {
	if len(entries) == 0 {
		return nil
	}
	rows := make([]chunkRow, len(entries))
	for i, e := range entries {
		rows[i] = chunkRow{
			ID:        e.Id,
			FileID:    e.FileId,
			Ordinal:   e.Ordinal,
			Content:   e.Content,
			Metadata:  datatypes.NewJSONType(chunkMeta{Segment: e.Segment, Filename: e.Filename}),
			Embedding: pgvector.NewVector(e.Embedding),
		}
	}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Create(&rows).Error
	if err != nil {
		return fmt.Errorf("pgvector upsert failed: %w", err)
	}
	return nil
}

type scoredRow struct {
	chunkRow
	Score float32
}

func (s *Store) Search(ctx context.Context, vector []float32, limit int) ([]commonModels.ScoredChunk, error) {
	if limit <= 0 {
		return []commonModels.ScoredChunk{}, nil
	}
	v := pgvector.NewVector(vector)
	var rows []scoredRow
	err := s.db.WithContext(ctx).Raw(
		`SELECT id, file_id, ordinal, content, metadata, 1 - (embedding <=> ?) AS score
		 FROM document_chunks ORDER BY embedding <=> ? LIMIT ?`, v, v, limit).Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("pgvector search failed: %w", err)
	}

	hits := make([]commonModels.ScoredChunk, 0, len(rows))
	for _, r := range rows {
		meta := r.Metadata.Data()
		hits = append(hits, commonModels.ScoredChunk{
			Entry: commonModels.VectorEntry{
				Id:       r.ID,
				FileId:   r.FileID,
				Ordinal:  r.Ordinal,
				Segment:  meta.Segment,
				Content:  r.Content,
				Filename: meta.Filename,
			},
			Score: r.Score,
		})
	}
	return hits, nil
}

func (s *Store) CountByFile(ctx context.Context, fileId int64) (int, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&chunkRow{}).Where("file_id = ?", fileId).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("pgvector count failed: %w", err)
	}
	return int(n), nil
}

func (s *Store) DeleteByFile(ctx context.Context, fileId int64) error {
	if err := s.db.WithContext(ctx).Where("file_id = ?", fileId).Delete(&chunkRow{}).Error; err != nil {
		return fmt.Errorf("pgvector delete failed: %w", err)
	}
	return nil
}

func (s *Store) ListFileIds(ctx context.Context) ([]int64, error) {
	var ids []int64
	if err := s.db.WithContext(ctx).Model(&chunkRow{}).Distinct().Pluck("file_id", &ids).Error; err != nil {
		return nil, fmt.Errorf("pgvector list failed: %w", err)
	}
	return ids, nil
}

// Close is a no-op; the gorm handle is owned by the metadata store.
func (s *Store) Close() error { return nil }
