package chatModel

import (
	"context"
	"time"

	"github.com/akolanti/DocChat/internal/domain/commonModels"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Turn is one completed question/answer exchange within a session.
type Turn struct {
	Ordinal  int       `json:"ordinal"`
	Question string    `json:"question"`
	Answer   string    `json:"answer"`
	Model    string    `json:"model"`
	At       time.Time `json:"at"`
}

func (t Turn) Messages() []Message {
	return []Message{
		{Role: RoleUser, Content: t.Question},
		{Role: RoleAssistant, Content: t.Answer},
	}
}

// Flatten renders turns as the alternating message log a model sees.
func Flatten(turns []Turn) []Message {
	messages := make([]Message, 0, len(turns)*2)
	for _, t := range turns {
		messages = append(messages, t.Messages()...)
	}
	return messages
}

// NextTurn stamps turn with the ordinal and time that follow last. At is forced strictly
// after last.At so ordering survives clock skew and same-instant appends.
func NextTurn(last *Turn, turn Turn, now time.Time) Turn {
	turn.Ordinal = 0
	turn.At = now.UTC()
	if last != nil {
		turn.Ordinal = last.Ordinal + 1
		if !turn.At.After(last.At) {
			turn.At = last.At.Add(time.Microsecond)
		}
	}
	return turn
}

type Answer struct {
	Answer    string                     `json:"answer"`
	SessionId string                     `json:"session_id"`
	Model     string                     `json:"model"`
	Sources   []commonModels.ScoredChunk `json:"sources,omitempty"`
}

// HistoryStore is the append-only, per-session turn log.
type HistoryStore interface {
	// GetHistory returns turns in append order; an unknown session yields an empty slice.
	GetHistory(ctx context.Context, sessionId string) ([]Turn, error)
	// AppendTurn persists turn after the session's last one and returns it as stored.
	AppendTurn(ctx context.Context, sessionId string, turn Turn) (Turn, error)
}
