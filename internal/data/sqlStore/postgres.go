package sqlStore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/akolanti/DocChat/internal/domain/commonModels"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

// OpenPostgres returns a gorm handle shared by the Postgres metadata store and the pgvector index.
func OpenPostgres(uri string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(uri), &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("opening postgres: %w", err)
	}
	return db, nil
}

type documentRow struct {
	ID         int64     `gorm:"primaryKey;autoIncrement"`
	Filename   string    `gorm:"not null"`
	UploadedAt time.Time `gorm:"not null;index"`
}

func (documentRow) TableName() string { return "documents" }

func (r documentRow) record() commonModels.DocumentRecord {
	return commonModels.DocumentRecord{Id: r.ID, Filename: r.Filename, UploadedAt: r.UploadedAt.UTC()}
}

// PostgresMetadataStore keeps the document catalogue in Postgres. Ids come from a
// sequence, so they are never reused.
type PostgresMetadataStore struct {
	db *gorm.DB
}

func NewPostgresMetadataStore(db *gorm.DB) (*PostgresMetadataStore, error) {
	if err := db.AutoMigrate(&documentRow{}); err != nil {
		return nil, fmt.Errorf("migrating documents: %w", err)
	}
	return &PostgresMetadataStore{db: db}, nil
}

func (p *PostgresMetadataStore) Insert(ctx context.Context, filename string, uploadedAt time.Time) (commonModels.DocumentRecord, error) {
	row := documentRow{Filename: filename, UploadedAt: uploadedAt.UTC()}
	if err := p.db.WithContext(ctx).Create(&row).Error; err != nil {
		return commonModels.DocumentRecord{}, commonModels.FileError(commonModels.ErrStore, "metadata.insert", 0, err)
	}
	return row.record(), nil
}

func (p *PostgresMetadataStore) Get(ctx context.Context, id int64) (commonModels.DocumentRecord, error) {
	var row documentRow
	err := p.db.WithContext(ctx).First(&row, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return commonModels.DocumentRecord{}, commonModels.FileError(commonModels.ErrNotFound, "metadata.get", id, nil)
	}
	if err != nil {
		return commonModels.DocumentRecord{}, commonModels.FileError(commonModels.ErrStore, "metadata.get", id, err)
	}
	return row.record(), nil
}

func (p *PostgresMetadataStore) List(ctx context.Context) ([]commonModels.DocumentRecord, error) {
	var rows []documentRow
	if err := p.db.WithContext(ctx).Order("uploaded_at DESC, id DESC").Find(&rows).Error; err != nil {
		return nil, commonModels.FileError(commonModels.ErrStore, "metadata.list", 0, err)
	}
	records := make([]commonModels.DocumentRecord, 0, len(rows))
	for _, r := range rows {
		records = append(records, r.record())
	}
	return records, nil
}

func (p *PostgresMetadataStore) Delete(ctx context.Context, id int64) (bool, error) {
	res := p.db.WithContext(ctx).Delete(&documentRow{}, id)
	if res.Error != nil {
		return false, commonModels.FileError(commonModels.ErrStore, "metadata.delete", id, res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (p *PostgresMetadataStore) Close() error {
	sqlDB, err := p.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
