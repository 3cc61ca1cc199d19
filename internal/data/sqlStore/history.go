package sqlStore

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/akolanti/DocChat/internal/domain/chatModel"
	"github.com/akolanti/DocChat/internal/domain/commonModels"
)

// SQLiteHistoryStore exposes the same database as a chatModel.HistoryStore.
type SQLiteHistoryStore struct {
	store *SQLiteStore
	now   func() time.Time
}

func (s *SQLiteStore) History() *SQLiteHistoryStore {
	return &SQLiteHistoryStore{store: s, now: time.Now}
}

func (h *SQLiteHistoryStore) GetHistory(ctx context.Context, sessionId string) ([]chatModel.Turn, error) {
	rows, err := h.store.db.QueryContext(ctx,
		"SELECT ordinal, question, answer, model, at FROM history_turns WHERE session_id = ? ORDER BY ordinal", sessionId)
	if err != nil {
		return nil, commonModels.SessionError(commonModels.ErrStore, "history.get", sessionId, err)
	}
	defer rows.Close()

	turns := make([]chatModel.Turn, 0)
	for rows.Next() {
		turn, err := scanTurn(rows)
		if err != nil {
			return nil, commonModels.SessionError(commonModels.ErrStore, "history.get", sessionId, err)
		}
		turns = append(turns, turn)
	}
	if err := rows.Err(); err != nil {
		return nil, commonModels.SessionError(commonModels.ErrStore, "history.get", sessionId, err)
	}
	return turns, nil
}

func (h *SQLiteHistoryStore) AppendTurn(ctx context.Context, sessionId string, turn chatModel.Turn) (chatModel.Turn, error) {
	tx, err := h.store.db.BeginTx(ctx, nil)
	if err != nil {
		return chatModel.Turn{}, commonModels.SessionError(commonModels.ErrStore, "history.append", sessionId, err)
	}
	defer func() { _ = tx.Rollback() }()

	var last *chatModel.Turn
	row := tx.QueryRowContext(ctx,
		"SELECT ordinal, question, answer, model, at FROM history_turns WHERE session_id = ? ORDER BY ordinal DESC LIMIT 1", sessionId)
	prev, err := scanTurn(row)
	switch {
	case errors.Is(err, sql.ErrNoRows):
	case err != nil:
		return chatModel.Turn{}, commonModels.SessionError(commonModels.ErrStore, "history.append", sessionId, err)
	default:
		last = &prev
	}

	stored := chatModel.NextTurn(last, turn, h.now())
	_, err = tx.ExecContext(ctx,
		"INSERT INTO history_turns (session_id, ordinal, question, answer, model, at) VALUES (?, ?, ?, ?, ?, ?)",
		sessionId, stored.Ordinal, stored.Question, stored.Answer, stored.Model, stored.At.UnixNano())
	if err != nil {
		return chatModel.Turn{}, commonModels.SessionError(commonModels.ErrStore, "history.append", sessionId, err)
	}
	if err := tx.Commit(); err != nil {
		return chatModel.Turn{}, commonModels.SessionError(commonModels.ErrStore, "history.append", sessionId, err)
	}
	return stored, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTurn(row scanner) (chatModel.Turn, error) {
	var (
		turn chatModel.Turn
		at   int64
	)
	if err := row.Scan(&turn.Ordinal, &turn.Question, &turn.Answer, &turn.Model, &at); err != nil {
		return turn, err
	}
	turn.At = time.Unix(0, at).UTC()
	return turn, nil
}
