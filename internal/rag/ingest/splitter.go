package ingest

import (
	"fmt"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/akolanti/DocChat/internal/config"
	"github.com/pkoukk/tiktoken-go"
	tiktoken_loader "github.com/pkoukk/tiktoken-go-loader"
)

func init() {
	tiktoken.SetBpeLoader(tiktoken_loader.NewOfflineLoader())
}

var (
	encodingOnce sync.Once
	encoding     *tiktoken.Tiktoken
	encodingErr  error
)

func tokenCounter() (func(string) int, error) {
	encodingOnce.Do(func() {
		encoding, encodingErr = tiktoken.GetEncoding("cl100k_base")
	})
	if encodingErr != nil {
		return nil, encodingErr
	}
	return func(s string) int {
		if s == "" {
			return 0
		}
		return len(encoding.Encode(s, nil, nil))
	}, nil
}

// Separators are tried in order: paragraphs, lines, sentences, words, then single characters.
var defaultSeparators = []string{"\n\n", "\n", ". ", " ", ""}

// Splitter is a recursive separator splitter: it splits on the coarsest separator present,
// recurses into pieces that are still too long, and merges small pieces back into windows
// of at most size units that share up to overlap units with their predecessor.
type Splitter struct {
	size       int
	overlap    int
	length     func(string) int
	separators []string
}

func NewSplitter(size, overlap int, unit string) (*Splitter, error) {
	if size <= 0 {
		return nil, fmt.Errorf("chunk size must be positive, got %d", size)
	}
	if overlap < 0 || overlap >= size {
		return nil, fmt.Errorf("chunk overlap must be in [0, %d), got %d", size, overlap)
	}

	length := utf8.RuneCountInString
	switch unit {
	case "", config.ChunkUnitChars:
	case config.ChunkUnitTokens:
		counter, err := tokenCounter()
		if err != nil {
			return nil, fmt.Errorf("loading tokenizer: %w", err)
		}
		length = counter
	default:
		return nil, fmt.Errorf("unknown chunk unit %q", unit)
	}

	return &Splitter{size: size, overlap: overlap, length: length, separators: defaultSeparators}, nil
}

func (s *Splitter) Split(text string) []string {
	return s.split(text, s.separators)
}

func (s *Splitter) split(text string, separators []string) []string {
	separator := separators[len(separators)-1]
	var rest []string
	for i, sep := range separators {
		if sep == "" || strings.Contains(text, sep) {
			separator = sep
			rest = separators[i+1:]
			break
		}
	}

	var pieces []string
	if separator == "" {
		pieces = strings.Split(text, "")
	} else {
		pieces = strings.Split(text, separator)
	}

	var final, good []string
	for _, piece := range pieces {
		if piece == "" {
			continue
		}
		if s.length(piece) < s.size {
			good = append(good, piece)
			continue
		}
		if len(good) > 0 {
			final = append(final, s.merge(good, separator)...)
			good = nil
		}
		if len(rest) == 0 {
			final = append(final, piece)
		} else {
			final = append(final, s.split(piece, rest)...)
		}
	}
	if len(good) > 0 {
		final = append(final, s.merge(good, separator)...)
	}
	return final
}

func (s *Splitter) merge(pieces []string, separator string) []string {
	sepLen := s.length(separator)
	joinCost := func(n int) int {
		if n > 0 {
			return sepLen
		}
		return 0
	}

	var (
		docs    []string
		current []string
		total   int
	)
	for _, piece := range pieces {
		l := s.length(piece)
		if total+l+joinCost(len(current)) > s.size && len(current) > 0 {
			if doc := strings.TrimSpace(strings.Join(current, separator)); doc != "" {
				docs = append(docs, doc)
			}
			// drop from the front until what is left fits as overlap and leaves room for piece
			for total > s.overlap || (total > 0 && total+l+joinCost(len(current)) > s.size) {
				total -= s.length(current[0]) + joinCost(len(current)-1)
				current = current[1:]
			}
		}
		current = append(current, piece)
		total += l + joinCost(len(current)-1)
	}
	if doc := strings.TrimSpace(strings.Join(current, separator)); doc != "" {
		docs = append(docs, doc)
	}
	return docs
}
