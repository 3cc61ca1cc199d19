package openaiEmbedding

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/openai/openai-go/option"
)

func fakeServer(t *testing.T, handler func(inputs []string) []map[string]any) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Input []string `json:"input"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"object": "list",
			"model":  "text-embedding-3-small",
			"data":   handler(body.Input),
			"usage":  map[string]any{"prompt_tokens": 1, "total_tokens": 1},
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestBatchEmbedding_ReordersByIndex(t *testing.T) {
	srv := fakeServer(t, func(inputs []string) []map[string]any {
		// reversed on purpose
		out := make([]map[string]any, 0, len(inputs))
		for i := len(inputs) - 1; i >= 0; i-- {
			out = append(out, map[string]any{"object": "embedding", "index": i, "embedding": []float64{float64(i), 1}})
		}
		return out
	})

	e := NewOpenAIEmbedder("text-embedding-3-small", "test", option.WithBaseURL(srv.URL+"/"), option.WithHTTPClient(srv.Client()))
	vectors, err := e.BatchEmbedding(context.Background(), []string{"a", "b", "c"})
	if err != nil {
		t.Fatal(err)
	}
	for i, v := range vectors {
		if v[0] != float32(i) {
			t.Fatalf("vector %d out of order: %v", i, v)
		}
	}
}

func TestBatchEmbedding_ShortResponseFails(t *testing.T) {
	srv := fakeServer(t, func(inputs []string) []map[string]any {
		return []map[string]any{{"object": "embedding", "index": 0, "embedding": []float64{1}}}
	})

	e := NewOpenAIEmbedder("text-embedding-3-small", "test", option.WithBaseURL(srv.URL+"/"), option.WithHTTPClient(srv.Client()))
	if _, err := e.BatchEmbedding(context.Background(), []string{"a", "b"}); err == nil {
		t.Fatal("expected an error for a short response")
	}
}
