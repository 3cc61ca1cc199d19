package ingest

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/dslipak/pdf"
	"github.com/lu4p/cat"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

const pageExtractTimeout = 10 * time.Second

func extractPDF(ctx context.Context, path string) ([]Segment, error) {
	f, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open pdf: %w", err)
	}

	var (
		pages  []Segment
		failed int
	)
	numPages := f.NumPage()
	for i := 1; i <= numPages; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		page := f.Page(i)
		if page.V.IsNull() {
			continue
		}

		content, err := protectExtract(ctx, page)
		if err != nil {
			logger.Warn("Error parsing page content", "page", i, "error", err)
			failed++
			continue
		}
		if strings.TrimSpace(content) == "" {
			continue
		}
		pages = append(pages, Segment{Number: i, Content: content})
	}
	if numPages > 0 && failed == numPages {
		return nil, fmt.Errorf("all %d pages failed to extract", numPages)
	}
	return pages, nil
}

// protectExtract bounds a single page's text extraction, which can hang or panic on malformed streams.
func protectExtract(ctx context.Context, page pdf.Page) (string, error) {
	type result struct {
		content string
		err     error
	}
	resChan := make(chan result, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				resChan <- result{err: fmt.Errorf("page extraction panicked: %v", r)}
			}
		}()
		content, err := page.GetPlainText(nil)
		resChan <- result{content, err}
	}()

	select {
	case r := <-resChan:
		return r.content, r.err
	case <-ctx.Done():
		return "", ctx.Err()
	case <-time.After(pageExtractTimeout):
		return "", errors.New("page extraction timed out")
	}
}

// extractDocx returns the whole document as one segment; docx carries no reliable page breaks.
func extractDocx(ctx context.Context, path string) ([]Segment, error) {
	text, err := cat.File(path)
	if err != nil {
		return nil, fmt.Errorf("failed to extract docx: %w", err)
	}
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}
	return []Segment{{Number: 1, Content: text}}, nil
}

func extractHTML(ctx context.Context, path string) ([]Segment, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	doc, err := html.Parse(f)
	if err != nil {
		return nil, fmt.Errorf("failed to parse html: %w", err)
	}

	var b strings.Builder
	walkHTML(doc, &b)

	text := collapseLines(b.String())
	if text == "" {
		return nil, nil
	}
	return []Segment{{Number: 1, Content: text}}, nil
}

var skippedElements = map[atom.Atom]bool{
	atom.Script:   true,
	atom.Style:    true,
	atom.Noscript: true,
	atom.Svg:      true,
	atom.Template: true,
	atom.Head:     true,
}

var blockElements = map[atom.Atom]bool{
	atom.P: true, atom.Div: true, atom.Br: true, atom.Hr: true, atom.Li: true, atom.Tr: true,
	atom.H1: true, atom.H2: true, atom.H3: true, atom.H4: true, atom.H5: true, atom.H6: true,
	atom.Blockquote: true, atom.Pre: true, atom.Table: true, atom.Section: true, atom.Article: true,
	atom.Title: true,
}

func walkHTML(n *html.Node, b *strings.Builder) {
	switch n.Type {
	case html.ElementNode:
		if skippedElements[n.DataAtom] {
			// <title> lives in <head> but is worth keeping
			if n.DataAtom == atom.Head {
				for c := n.FirstChild; c != nil; c = c.NextSibling {
					if c.Type == html.ElementNode && c.DataAtom == atom.Title {
						walkHTML(c, b)
					}
				}
			}
			return
		}
		if blockElements[n.DataAtom] {
			b.WriteString("\n")
			defer b.WriteString("\n")
		}
	case html.TextNode:
		b.WriteString(n.Data)
	case html.CommentNode:
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walkHTML(c, b)
	}
}

func collapseLines(s string) string {
	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.Join(strings.Fields(line), " ")
		if line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}
