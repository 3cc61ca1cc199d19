package cli

import (
	"context"
	"errors"
	"os"

	"github.com/akolanti/DocChat/internal/bootstrap"
	"github.com/akolanti/DocChat/internal/config"
	"github.com/akolanti/DocChat/internal/rag"
	"github.com/akolanti/DocChat/pkg/logger_i"
	"github.com/spf13/cobra"
)

var (
	configPath string
	logLevel   string

	// ragService is built lazily from the config unless a test injects one.
	ragService   rag.Service
	closeService func() error
)

var rootCmd = &cobra.Command{
	Use:   "ragctl",
	Short: "Operate the document chat service from the terminal",
	Long: `ragctl talks to the same stores and index as the API server. Use it to ingest
documents, inspect or delete them, chat, and repair drift between the index and the catalogue.`,
	SilenceUsage:       true,
	PersistentPreRunE:  openService,
	PersistentPostRunE: closeOpenedService,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", os.Getenv("RAG_CONFIG"), "Optional yaml config file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func openService(cmd *cobra.Command, args []string) error {
	if ragService != nil {
		return nil
	}
	settings, err := config.Load(configPath)
	if err != nil {
		return err
	}
	logger_i.Init(settings.IsProd, logLevel)

	ctx, cancel := context.WithCancel(context.Background())
	app, err := bootstrap.Build(ctx, settings)
	if err != nil {
		cancel()
		return err
	}
	ragService = app.Service
	closeService = func() error {
		defer cancel()
		return app.Close()
	}
	return nil
}

func closeOpenedService(cmd *cobra.Command, args []string) error {
	if closeService == nil {
		return nil
	}
	err := closeService()
	ragService, closeService = nil, nil
	return err
}

func service() (rag.Service, error) {
	if ragService == nil {
		return nil, errors.New("rag service not configured")
	}
	return ragService, nil
}
