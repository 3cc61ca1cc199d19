package sqlStore

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/akolanti/DocChat/internal/domain/commonModels"
)

func (s *SQLiteStore) Insert(ctx context.Context, filename string, uploadedAt time.Time) (commonModels.DocumentRecord, error) {
	uploadedAt = uploadedAt.UTC()
	res, err := s.db.ExecContext(ctx,
		"INSERT INTO documents (filename, uploaded_at) VALUES (?, ?)", filename, uploadedAt.UnixNano())
	if err != nil {
		return commonModels.DocumentRecord{}, commonModels.FileError(commonModels.ErrStore, "metadata.insert", 0, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return commonModels.DocumentRecord{}, commonModels.FileError(commonModels.ErrStore, "metadata.insert", 0, err)
	}
	return commonModels.DocumentRecord{Id: id, Filename: filename, UploadedAt: uploadedAt}, nil
}

func (s *SQLiteStore) Get(ctx context.Context, id int64) (commonModels.DocumentRecord, error) {
	var (
		record commonModels.DocumentRecord
		at     int64
	)
	err := s.db.QueryRowContext(ctx,
		"SELECT id, filename, uploaded_at FROM documents WHERE id = ?", id).Scan(&record.Id, &record.Filename, &at)
	if errors.Is(err, sql.ErrNoRows) {
		return record, commonModels.FileError(commonModels.ErrNotFound, "metadata.get", id, nil)
	}
	if err != nil {
		return record, commonModels.FileError(commonModels.ErrStore, "metadata.get", id, err)
	}
	record.UploadedAt = time.Unix(0, at).UTC()
	return record, nil
}

func (s *SQLiteStore) List(ctx context.Context) ([]commonModels.DocumentRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, filename, uploaded_at FROM documents ORDER BY uploaded_at DESC, id DESC")
	if err != nil {
		return nil, commonModels.FileError(commonModels.ErrStore, "metadata.list", 0, err)
	}
	defer rows.Close()

	records := make([]commonModels.DocumentRecord, 0)
	for rows.Next() {
		var (
			record commonModels.DocumentRecord
			at     int64
		)
		if err := rows.Scan(&record.Id, &record.Filename, &at); err != nil {
			return nil, commonModels.FileError(commonModels.ErrStore, "metadata.list", 0, err)
		}
		record.UploadedAt = time.Unix(0, at).UTC()
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, commonModels.FileError(commonModels.ErrStore, "metadata.list", 0, err)
	}
	return records, nil
}

func (s *SQLiteStore) Delete(ctx context.Context, id int64) (bool, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM documents WHERE id = ?", id)
	if err != nil {
		return false, commonModels.FileError(commonModels.ErrStore, "metadata.delete", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, commonModels.FileError(commonModels.ErrStore, "metadata.delete", id, err)
	}
	return n > 0, nil
}
