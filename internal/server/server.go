package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/akolanti/DocChat/internal/adapter/utils"
	"github.com/akolanti/DocChat/internal/config"
	"github.com/akolanti/DocChat/internal/handlers"
	"github.com/akolanti/DocChat/internal/middleware"
	"github.com/akolanti/DocChat/pkg/logger_i"
	"github.com/go-chi/chi/v5"
)

var (
	server  *http.Server
	_logger = logger_i.NewLogger("Server")
)

type ShutdownParams struct {
	GracefulShutdown chan os.Signal
	StopExecution    chan bool
	WorkerStop       chan bool
	Group            *sync.WaitGroup
	CloseServices    context.CancelFunc
}

// NewRouter mounts every route behind the middleware chain. mcp may be nil.
func NewRouter(h *handlers.Handlers, mw *middleware.Chain, mcp http.Handler) *chi.Mux {
	r := utils.NewRouter()

	r.Get("/health", handlers.GetHandler)
	r.Post("/chat", mw.Wrap(h.ChatHandler))
	r.Post("/upload_doc", mw.Wrap(h.UploadHandler))
	r.Get("/list_documents", mw.Wrap(h.ListDocumentsHandler))
	r.Post("/delete-doc", mw.Wrap(h.DeleteDocumentHandler))
	r.Get("/history/{sessionId}", mw.Wrap(h.HistoryHandler))
	r.Post("/ingest", mw.Wrap(h.PostIngestHandler))
	r.Get("/status/{id}", mw.Wrap(h.GetStatusHandler))
	if mcp != nil {
		r.Handle("/mcp", mw.Handler(mcp))
	}
	return r
}

// CreateServer blocks serving handler. A zero writeTimeout falls back to config.WriteTimeout.
func CreateServer(listenAddr string, handler http.Handler, writeTimeout time.Duration) {
	if writeTimeout <= 0 {
		writeTimeout = config.WriteTimeout
	}
	server = &http.Server{
		Addr:         listenAddr,
		Handler:      handler,
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: writeTimeout,
		IdleTimeout:  config.IdleTimeout,
	}

	_logger.Info("Server is listening", "address", listenAddr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		_logger.Error("Server crashed", "error", err, "addr", listenAddr)
	}
}

func ShutDownHandler(shutdownParams ShutdownParams) {
	state := <-shutdownParams.GracefulShutdown
	_logger.Info("Server is shutting down", "signal", state.String())

	ctx, cancel := context.WithTimeout(context.Background(), config.ShutdownContextTimeout)
	defer cancel()

	done := make(chan struct{})

	go func() {
		if server != nil {
			server.SetKeepAlivesEnabled(false)
			if err := server.Shutdown(ctx); err != nil {
				_logger.Error("Could not shutdown gracefully", "error", err)
			}
		}

		//close workers
		close(shutdownParams.WorkerStop)
		shutdownParams.Group.Wait()
		shutdownParams.CloseServices()
		close(shutdownParams.StopExecution)
		close(done)
	}()

	select {
	case <-done:
		_logger.Info("Gracefully shut down")
	case <-ctx.Done():
		_logger.Error("Forced shut down")
		os.Exit(1)
	}
}
