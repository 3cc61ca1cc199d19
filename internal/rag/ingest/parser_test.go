package ingest

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/akolanti/DocChat/internal/domain/commonModels"
)

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestExtractHTML(t *testing.T) {
	path := writeTemp(t, "page.html", `<!doctype html>
<html><head><title>Quarterly Report</title><style>body{color:red}</style>
<script>var secret = "do not index";</script></head>
<body><h1>Revenue</h1><p>Revenue grew   by 12%.</p><!-- hidden --><ul><li>one</li><li>two</li></ul></body></html>`)

	segments, err := extractHTML(context.Background(), path)
	if err != nil {
		t.Fatal(err)
	}
	if len(segments) != 1 {
		t.Fatalf("want 1 segment, got %d", len(segments))
	}
	text := segments[0].Content
	for _, want := range []string{"Quarterly Report", "Revenue", "Revenue grew by 12%.", "one\ntwo"} {
		if !strings.Contains(text, want) {
			t.Errorf("missing %q in %q", want, text)
		}
	}
	for _, bad := range []string{"secret", "color:red", "hidden"} {
		if strings.Contains(text, bad) {
			t.Errorf("unexpected %q in %q", bad, text)
		}
	}
}

func TestExtractHTML_NoTextIsEmpty(t *testing.T) {
	path := writeTemp(t, "blank.html", "<html><body><script>x()</script></body></html>")
	segments, err := extractHTML(context.Background(), path)
	if err != nil || len(segments) != 0 {
		t.Fatalf("want no segments, got %v %v", segments, err)
	}
}

func TestExtractPDF_CorruptFileFails(t *testing.T) {
	path := writeTemp(t, "bad.pdf", "this is not a pdf")
	if _, err := extractPDF(context.Background(), path); err == nil {
		t.Fatal("expected an error for a corrupt pdf")
	}
}

func TestParseDispatch(t *testing.T) {
	parsers := map[commonModels.DocType]Parser{
		commonModels.PDF: ParserFunc(func(ctx context.Context, path string) ([]Segment, error) {
			panic("malformed xref")
		}),
		commonModels.DOCX: ParserFunc(func(ctx context.Context, path string) ([]Segment, error) {
			return nil, errors.New("bad zip")
		}),
	}

	if _, err := parse(context.Background(), parsers, commonModels.PDF, "x.pdf"); err == nil || !strings.Contains(err.Error(), "panicked") {
		t.Errorf("panic should become an error, got %v", err)
	}
	if _, err := parse(context.Background(), parsers, commonModels.DOCX, "x.docx"); err == nil {
		t.Error("parser error should surface")
	}
	if _, err := parse(context.Background(), parsers, commonModels.HTML, "x.html"); err == nil {
		t.Error("allow-listed type without a parser must fail, not skip")
	}
}

func TestDefaultParsersCoverAllowList(t *testing.T) {
	parsers := DefaultParsers()
	for ext, docType := range commonModels.AllowedExtensions {
		if _, ok := parsers[docType]; !ok {
			t.Errorf("no parser for %s", ext)
		}
	}
}
