package googleEmbedding

import (
	"errors"
	"net/http"

	"github.com/akolanti/DocChat/pkg/logger_i"
	"google.golang.org/genai"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func getContent(chunks []string) []*genai.Content {
	contentsToSend := make([]*genai.Content, 0, len(chunks))
	for _, chunk := range chunks {
		contentsToSend = append(contentsToSend, &genai.Content{
			Parts: []*genai.Part{{Text: chunk}},
		})
	}
	return contentsToSend
}

// doRetry reports whether a failed embed call is worth one more attempt: quota and
// availability errors are, anything about the request itself is not.
func doRetry(err error, log *logger_i.Logger) bool {
	if err == nil {
		return false
	}
	if code, ok := apiStatus(err); ok {
		if code == http.StatusTooManyRequests || code == http.StatusServiceUnavailable {
			log.Warn("Rate limit hit", "status", code, "error", err)
			return true
		}
		return false
	}
	if s, ok := status.FromError(err); ok {
		if s.Code() == codes.ResourceExhausted || s.Code() == codes.Unavailable {
			log.Warn("Rate limit hit", "code", s.Code().String(), "error", err)
			return true
		}
	}
	return false
}

// apiStatus extracts the HTTP status from a Gemini REST error.
func apiStatus(err error) (int, bool) {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code, true
	}
	return 0, false
}
