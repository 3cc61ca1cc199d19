package googleEmbedding

import (
	"errors"
	"fmt"
	"testing"

	"github.com/akolanti/DocChat/pkg/logger_i"
	"google.golang.org/genai"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestGetContentKeepsOrder(t *testing.T) {
	contents := getContent([]string{"a", "b"})
	if len(contents) != 2 || contents[0].Parts[0].Text != "a" || contents[1].Parts[0].Text != "b" {
		t.Fatalf("unexpected contents %+v", contents)
	}
}

func TestDoRetry(t *testing.T) {
	log := logger_i.NewLogger("test")
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"no error", nil, false},
		{"quota over rest", genai.APIError{Code: 429, Status: "RESOURCE_EXHAUSTED"}, true},
		{"wrapped unavailable over rest", fmt.Errorf("embed: %w", genai.APIError{Code: 503}), true},
		{"bad request over rest", genai.APIError{Code: 400, Status: "INVALID_ARGUMENT"}, false},
		{"resource exhausted over grpc", status.Error(codes.ResourceExhausted, "quota"), true},
		{"unavailable over grpc", status.Error(codes.Unavailable, "down"), true},
		{"invalid argument over grpc", status.Error(codes.InvalidArgument, "bad"), false},
		{"plain error", errors.New("boom"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := doRetry(tt.err, log); got != tt.want {
				t.Errorf("doRetry() = %v, want %v", got, tt.want)
			}
		})
	}
}
