package commonModels

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrValidation    = errors.New("validation error")
	ErrParse         = errors.New("parse error")
	ErrEmptyDocument = errors.New("empty document")
	ErrEmbedding     = errors.New("embedding error")
	ErrIndexWrite    = errors.New("index write error")
	ErrIndexDelete   = errors.New("index delete error")
	ErrRetrieval     = errors.New("retrieval error")
	ErrGeneration    = errors.New("generation error")
	ErrNotFound      = errors.New("not found")
	ErrStore         = errors.New("store error")
)

// RagError carries the failure kind plus the ids an operator needs to correlate it.
// errors.Is matches both the Kind sentinel and anything in the wrapped cause.
type RagError struct {
	Kind      error
	Op        string
	FileId    int64
	SessionId string
	Err       error
}

func (e *RagError) Error() string {
	var b strings.Builder
	b.WriteString(e.Op)
	if e.FileId != 0 {
		fmt.Fprintf(&b, " file_id=%d", e.FileId)
	}
	if e.SessionId != "" {
		fmt.Fprintf(&b, " session_id=%s", e.SessionId)
	}
	b.WriteString(": ")
	b.WriteString(e.Kind.Error())
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *RagError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func FileError(kind error, op string, fileId int64, err error) error {
	return &RagError{Kind: kind, Op: op, FileId: fileId, Err: err}
}

func SessionError(kind error, op string, sessionId string, err error) error {
	return &RagError{Kind: kind, Op: op, SessionId: sessionId, Err: err}
}

func Invalid(op string, format string, args ...any) error {
	return &RagError{Kind: ErrValidation, Op: op, Err: fmt.Errorf(format, args...)}
}

// KindOf returns the taxonomy sentinel err belongs to, or nil for foreign errors.
func KindOf(err error) error {
	var re *RagError
	if errors.As(err, &re) {
		return re.Kind
	}
	for _, k := range []error{ErrValidation, ErrParse, ErrEmptyDocument, ErrEmbedding, ErrIndexWrite,
		ErrIndexDelete, ErrRetrieval, ErrGeneration, ErrNotFound, ErrStore} {
		if errors.Is(err, k) {
			return k
		}
	}
	return nil
}
