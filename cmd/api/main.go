// @title           DocChat API
// @version         1.0
// @description     Upload documents, then chat with them. Answers are grounded in the indexed chunks.
// @termsOfService  http://swagger.io/terms/

// @contact.name    me lol
// @contact.url
// @contact.email

// @license.name    Apache 2.0
// @license.url     http://www.apache.org/licenses/LICENSE-2.0.html

// @host      localhost:3000
// @BasePath  /
// @schemes   http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/akolanti/DocChat/internal/bootstrap"
	"github.com/akolanti/DocChat/internal/config"
	"github.com/akolanti/DocChat/internal/domain/jobModel"
	"github.com/akolanti/DocChat/internal/handlers"
	"github.com/akolanti/DocChat/internal/job"
	"github.com/akolanti/DocChat/internal/mcpServer"
	"github.com/akolanti/DocChat/internal/middleware"
	"github.com/akolanti/DocChat/internal/server"
	"github.com/akolanti/DocChat/internal/worker"
	"github.com/akolanti/DocChat/pkg/logger_i"
)

var (
	configPath        string
	listenAddr        string
	stopWorkerChannel chan bool
	workerWaitGroup   sync.WaitGroup
)

func main() {
	flag.StringVar(&configPath, "config", os.Getenv("RAG_CONFIG"), "optional yaml config file")
	flag.StringVar(&listenAddr, "listen-addr", "", "server listen address, overrides LISTEN_ADDR")
	flag.Parse()

	settings, err := config.Load(configPath)
	logger_i.Init(settings.IsProd, settings.LogLevel)
	var logger = logger_i.NewLogger("main")
	if err != nil {
		logger.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}
	if listenAddr != "" {
		settings.ListenAddr = listenAddr
	}

	serviceContext, closeExternalServices := context.WithCancel(context.Background())
	defer closeExternalServices()

	app, err := bootstrap.Build(serviceContext, settings)
	if err != nil {
		logger.Error("One or more backends failed to initialize. Shutting down.", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := app.Close(); err != nil {
			logger.Error("Error closing backends", "error", err)
		}
	}()

	//init buffered job channel
	jobChannel := make(chan jobModel.Job, config.BufferLimit)
	dispatcherChannel := make(chan bool, 1)
	stopWorkerChannel = make(chan bool, 1)

	logger.Info("Starting job service")
	jobService := job.InitJobService(job.ServiceConfig{
		JobChannel:        jobChannel,
		DispatcherChannel: dispatcherChannel,
		JobStore:          app.JobStore,
	})

	//init worker pool
	worker.NewPool(jobService, app.Service, stopWorkerChannel, &workerWaitGroup).Start()

	mw := middleware.New(middleware.Options{
		AuthToken:    settings.AuthToken,
		NoAuthBypass: settings.NoAuthBypass,
		RateLimit:    true,
	})
	router := server.NewRouter(
		handlers.NewHandlers(app.Service, jobService),
		mw,
		mcpServer.NewServer(app.Service).Handler(),
	)

	//server handling
	gracefulShutdown := make(chan os.Signal, 1)
	signal.Notify(gracefulShutdown, syscall.SIGINT, syscall.SIGTERM)
	stopExecution := make(chan bool, 1)

	shutdownParams := server.ShutdownParams{
		GracefulShutdown: gracefulShutdown,
		StopExecution:    stopExecution,
		WorkerStop:       stopWorkerChannel,
		Group:            &workerWaitGroup,
		CloseServices:    closeExternalServices,
	}
	go server.ShutDownHandler(shutdownParams)
	go server.CreateServer(settings.ListenAddr, router, settings.ServerWriteTimeout())

	<-stopExecution
	logger.Info("Server stopped")
}
