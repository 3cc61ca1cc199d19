package ingest

import (
	"context"
	"fmt"

	"github.com/akolanti/DocChat/internal/domain/commonModels"
)

// Segment is a unit of parsed text with its position in the source (page number for PDFs).
type Segment struct {
	Number  int    `json:"number"`
	Content string `json:"content"`
}

type Parser interface {
	Parse(ctx context.Context, path string) ([]Segment, error)
}

type ParserFunc func(ctx context.Context, path string) ([]Segment, error)

func (f ParserFunc) Parse(ctx context.Context, path string) ([]Segment, error) {
	return f(ctx, path)
}

// DefaultParsers is the extension-to-parser dispatch table for every allow-listed format.
func DefaultParsers() map[commonModels.DocType]Parser {
	return map[commonModels.DocType]Parser{
		commonModels.PDF:  ParserFunc(extractPDF),
		commonModels.DOCX: ParserFunc(extractDocx),
		commonModels.HTML: ParserFunc(extractHTML),
	}
}

// parse dispatches on docType; a type without a parser is a parse failure, never a silent skip.
func parse(ctx context.Context, parsers map[commonModels.DocType]Parser, docType commonModels.DocType, path string) (segments []Segment, err error) {
	p, ok := parsers[docType]
	if !ok {
		return nil, fmt.Errorf("no parser registered for %s", docType)
	}
	defer func() {
		if r := recover(); r != nil {
			segments, err = nil, fmt.Errorf("parser panicked: %v", r)
		}
	}()
	return p.Parse(ctx, path)
}
