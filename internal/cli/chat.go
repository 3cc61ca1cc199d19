package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var (
	chatSession     string
	chatModelName   string
	chatShowSources bool
)

var chatCmd = &cobra.Command{
	Use:   "chat [question]",
	Short: "Ask a question about the ingested documents",
	Long:  `Starts a new session unless --session names an existing one. The session id is printed after the answer.`,
	Args:  cobra.MinimumNArgs(1),
	RunE:  runChat,
}

var historyCmd = &cobra.Command{
	Use:   "history [session-id]",
	Short: "Print a session's turns in order",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistory,
}

func init() {
	chatCmd.Flags().StringVarP(&chatSession, "session", "s", "", "Continue this session")
	chatCmd.Flags().StringVarP(&chatModelName, "model", "m", "", "Chat model, defaults to the configured one")
	chatCmd.Flags().BoolVar(&chatShowSources, "sources", false, "Print the chunks the answer was grounded in")

	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(historyCmd)
}

func runChat(cmd *cobra.Command, args []string) error {
	svc, err := service()
	if err != nil {
		return err
	}

	answer, err := svc.Chat(cmd.Context(), strings.Join(args, " "), chatSession, chatModelName)
	if err != nil {
		return fmt.Errorf("chat failed: %w", err)
	}

	cmd.Println(answer.Answer)
	if chatShowSources {
		cmd.Println()
		for _, s := range answer.Sources {
			cmd.Printf("  [%.3f] %s #%d", s.Score, s.Entry.Filename, s.Entry.Ordinal)
			if s.Entry.Segment > 0 {
				cmd.Printf(" (page %d)", s.Entry.Segment)
			}
			cmd.Println()
		}
	}
	cmd.Printf("\nsession: %s\n", answer.SessionId)
	return nil
}

func runHistory(cmd *cobra.Command, args []string) error {
	svc, err := service()
	if err != nil {
		return err
	}

	turns, err := svc.History(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to load history: %w", err)
	}
	if len(turns) == 0 {
		cmd.Printf("No turns for session: %s\n", args[0])
		return nil
	}

	for _, t := range turns {
		cmd.Printf("#%d  %s  (%s)\n", t.Ordinal, t.At.Format("2006-01-02 15:04:05"), t.Model)
		cmd.Printf("  Q: %s\n", t.Question)
		cmd.Printf("  A: %s\n\n", t.Answer)
	}
	return nil
}
