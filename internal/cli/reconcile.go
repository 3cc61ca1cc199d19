package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Remove orphaned chunks and records",
	Long: `Deletes index entries whose document record is gone, then records older than the
grace period that have no index entries. Safe to run while the server is up.`,
	Args: cobra.NoArgs,
	RunE: runReconcile,
}

func init() {
	rootCmd.AddCommand(reconcileCmd)
}

func runReconcile(cmd *cobra.Command, args []string) error {
	svc, err := service()
	if err != nil {
		return err
	}

	report, err := svc.Reconcile(cmd.Context())
	if err != nil {
		return fmt.Errorf("reconcile failed: %w", err)
	}
	cmd.Printf("Orphaned index entries removed for files: %v\n", report.OrphanEntries)
	cmd.Printf("Orphaned records removed: %v\n", report.OrphanRecords)
	return nil
}
