package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/spf13/cobra"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [path...]",
	Short: "Parse, chunk and index documents",
	Long:  `Ingests each file in turn. A file that fails leaves no record and no chunks behind.`,
	Args:  cobra.MinimumNArgs(1),
	RunE:  runIngest,
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List ingested documents, newest first",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

var deleteCmd = &cobra.Command{
	Use:   "delete [file-id]",
	Short: "Remove a document and its chunks",
	Args:  cobra.ExactArgs(1),
	RunE:  runDelete,
}

func init() {
	rootCmd.AddCommand(ingestCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(deleteCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	svc, err := service()
	if err != nil {
		return err
	}

	failed := 0
	for _, path := range args {
		raw, err := os.ReadFile(path)
		if err != nil {
			cmd.PrintErrf("  %s: %v\n", path, err)
			failed++
			continue
		}
		id, err := svc.Ingest(cmd.Context(), filepath.Base(path), raw)
		if err != nil {
			cmd.PrintErrf("  %s: %v\n", path, err)
			failed++
			continue
		}
		cmd.Printf("  %s -> file %d\n", filepath.Base(path), id)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d documents failed to ingest", failed, len(args))
	}
	return nil
}

func runList(cmd *cobra.Command, args []string) error {
	svc, err := service()
	if err != nil {
		return err
	}

	docs, err := svc.List(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list documents: %w", err)
	}
	if len(docs) == 0 {
		cmd.Println("No documents ingested")
		return nil
	}

	for _, d := range docs {
		cmd.Printf("  %-6d %-40s %s\n", d.Id, d.Filename, d.UploadedAt.Format(time.RFC3339))
	}
	cmd.Printf("\nTotal: %d documents\n", len(docs))
	return nil
}

func runDelete(cmd *cobra.Command, args []string) error {
	svc, err := service()
	if err != nil {
		return err
	}

	fileId, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid file id %q", args[0])
	}

	outcome, err := svc.Delete(cmd.Context(), fileId)
	if err != nil {
		return fmt.Errorf("failed to delete file %d: %w", fileId, err)
	}
	cmd.Printf("file %d: %s\n", fileId, outcome)
	return nil
}
