package customHttpClient

import (
	"net/http"
	"sync"

	"github.com/akolanti/DocChat/internal/config"
)

var (
	once   sync.Once
	client *http.Client
)

// Shared is the pooled client handed to the model SDKs so embedder and LLM calls reuse connections.
func Shared() *http.Client {
	once.Do(func() {
		client = &http.Client{
			Transport: &http.Transport{
				Proxy:               http.ProxyFromEnvironment,
				MaxIdleConns:        config.MaxIdleConns,
				MaxIdleConnsPerHost: config.MaxIdleConnsPerHost,
				IdleConnTimeout:     config.IdleConnTimeout,
				ForceAttemptHTTP2:   true,
			},
		}
	})
	return client
}
