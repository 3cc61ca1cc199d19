package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/akolanti/DocChat/internal/config"
	"github.com/akolanti/DocChat/internal/data/redisStore"
	"github.com/akolanti/DocChat/internal/domain/chatModel"
	"github.com/akolanti/DocChat/internal/domain/commonModels"
	"github.com/akolanti/DocChat/pkg/logger_i"
)

const historyKeyPrefix = "history:"

// RedisHistoryStore keeps each session as a redis list of JSON turns.
type RedisHistoryStore struct {
	store  *redisStore.Store
	ttl    time.Duration
	now    func() time.Time
	logger *logger_i.Logger
}

func NewRedisHistoryStore(store *redisStore.Store, ttl time.Duration) *RedisHistoryStore {
	return &RedisHistoryStore{
		store:  store,
		ttl:    ttl,
		now:    time.Now,
		logger: logger_i.NewLogger("HistoryStore"),
	}
}

func (s *RedisHistoryStore) GetHistory(ctx context.Context, sessionId string) ([]chatModel.Turn, error) {
	raw, err := s.store.ListGetAll(ctx, historyKeyPrefix+sessionId)
	if err != nil && !s.store.IsNil(err) {
		return nil, commonModels.SessionError(commonModels.ErrStore, "history.get", sessionId, err)
	}

	turns := make([]chatModel.Turn, 0, len(raw))
	for _, item := range raw {
		var turn chatModel.Turn
		if err := json.Unmarshal([]byte(item), &turn); err != nil {
			return nil, commonModels.SessionError(commonModels.ErrStore, "history.get", sessionId, err)
		}
		turns = append(turns, turn)
	}
	return turns, nil
}

func (s *RedisHistoryStore) AppendTurn(ctx context.Context, sessionId string, turn chatModel.Turn) (chatModel.Turn, error) {
	log := s.logger.WithTrace(ctx, config.TRACE_ID_KEY).With("sessionId", sessionId)

	var stored chatModel.Turn
	_, err := s.store.ListAppendAfterLast(ctx, historyKeyPrefix+sessionId, s.ttl, func(last string) (string, error) {
		var prev *chatModel.Turn
		if last != "" {
			prev = new(chatModel.Turn)
			if err := json.Unmarshal([]byte(last), prev); err != nil {
				return "", err
			}
		}
		stored = chatModel.NextTurn(prev, turn, s.now())
		data, err := json.Marshal(stored)
		return string(data), err
	})
	if err != nil {
		log.Error("error appending turn", "error", err)
		return chatModel.Turn{}, commonModels.SessionError(commonModels.ErrStore, "history.append", sessionId, err)
	}
	log.Debug("appended turn", "ordinal", stored.Ordinal)
	return stored, nil
}
