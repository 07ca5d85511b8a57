package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"unicode/utf8"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/diogo/chatview/internal/history"
)

var (
	exportFormatFlag string
	exportOutputFlag string
	importTitleFlag  string
	importPathFlag   string
	searchContent    bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Manage conversation history",
	Long:  "View and manage your local conversation history.\n\n" + history.ListAliases(),
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all conversations",
	Args:  cobra.NoArgs,
	RunE:  runHistoryList,
}

var historyShowCmd = &cobra.Command{
	Use:   "show <ref>",
	Short: "Show a conversation",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryShow,
}

var historyDeleteCmd = &cobra.Command{
	Use:   "delete <ref>",
	Short: "Delete a conversation",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryDelete,
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete all conversations",
	Args:  cobra.NoArgs,
	RunE:  runHistoryClear,
}

var historyRenameCmd = &cobra.Command{
	Use:   "rename <ref> <title>",
	Short: "Rename a conversation",
	Args:  cobra.ExactArgs(2),
	RunE:  runHistoryRename,
}

var historyExportCmd = &cobra.Command{
	Use:   "export <ref>",
	Short: "Export a conversation as markdown or JSON",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryExport,
}

var historyImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import a JSON transcript as a new conversation",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryImport,
}

var historySearchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search conversation titles and messages",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runHistorySearch,
}

func init() {
	historyExportCmd.Flags().StringVarP(&exportFormatFlag, "format", "f", "markdown", "Export format (markdown, json)")
	historyExportCmd.Flags().StringVarP(&exportOutputFlag, "output", "o", "", "Write to file instead of stdout")
	historyImportCmd.Flags().StringVarP(&importTitleFlag, "title", "t", "", "Conversation title (default first user message)")
	historyImportCmd.Flags().StringVar(&importPathFlag, "path", "", "GJSON path of the message array")
	historySearchCmd.Flags().BoolVarP(&searchContent, "content", "c", true, "Also search message content")

	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyShowCmd)
	historyCmd.AddCommand(historyDeleteCmd)
	historyCmd.AddCommand(historyClearCmd)
	historyCmd.AddCommand(historyRenameCmd)
	historyCmd.AddCommand(historyExportCmd)
	historyCmd.AddCommand(historyImportCmd)
	historyCmd.AddCommand(historySearchCmd)
}

func resolve(ref string) (*history.Store, *history.Conversation, error) {
	store, err := openStore()
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to open history")
	}
	conv, err := history.NewResolver(store).Resolve(ref)
	if err != nil {
		return nil, nil, err
	}
	return store, conv, nil
}

func runHistoryList(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return errors.Wrap(err, "failed to open history")
	}

	conversations, err := store.ListConversations()
	if err != nil {
		return errors.Wrap(err, "failed to list conversations")
	}

	out := cmd.OutOrStdout()
	if len(conversations) == 0 {
		_, _ = fmt.Fprintln(out, "No conversations found.")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "#\tID\tTITLE\tMESSAGES\tUPDATED")
	_, _ = fmt.Fprintln(w, "-\t--\t-----\t--------\t-------")

	for i, conv := range conversations {
		_, _ = fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%s\n",
			i+1, conv.ID, truncate(conv.Title, 40), len(conv.Messages), history.FormatRelativeTime(conv.UpdatedAt))
	}

	return w.Flush()
}

func runHistoryShow(cmd *cobra.Command, args []string) error {
	_, conv, err := resolve(args[0])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(out, "ID: %s\n", conv.ID)
	_, _ = fmt.Fprintf(out, "Title: %s\n", conv.Title)
	_, _ = fmt.Fprintf(out, "Created: %s\n", conv.CreatedAt.Format("2006-01-02 15:04:05"))
	_, _ = fmt.Fprintf(out, "Updated: %s\n", conv.UpdatedAt.Format("2006-01-02 15:04:05"))
	_, _ = fmt.Fprintf(out, "Messages: %d\n\n", len(conv.Messages))

	for i, msg := range conv.Messages {
		role := "You"
		if msg.Role.IsAI() {
			role = "Assistant"
		}
		_, _ = fmt.Fprintf(out, "[%d] %s (%s):\n", i+1, role, msg.Timestamp.Format("15:04"))
		_, _ = fmt.Fprintf(out, "  %s\n\n", truncate(msg.Content, 500))
	}

	return nil
}

func runHistoryDelete(cmd *cobra.Command, args []string) error {
	store, conv, err := resolve(args[0])
	if err != nil {
		return err
	}

	if err := store.DeleteConversation(conv.ID); err != nil {
		return errors.Wrap(err, "failed to delete")
	}

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Deleted conversation: %s\n", conv.ID)
	return nil
}

func runHistoryClear(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return errors.Wrap(err, "failed to open history")
	}

	if err := store.ClearAll(); err != nil {
		return errors.Wrap(err, "failed to clear history")
	}

	_, _ = fmt.Fprintln(cmd.OutOrStdout(), "All conversations deleted.")
	return nil
}

func runHistoryRename(cmd *cobra.Command, args []string) error {
	store, conv, err := resolve(args[0])
	if err != nil {
		return err
	}

	title := strings.TrimSpace(args[1])
	if title == "" {
		return errors.New("title cannot be empty")
	}
	if err := store.UpdateTitle(conv.ID, title); err != nil {
		return errors.Wrap(err, "failed to rename")
	}

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Renamed %s to %q\n", conv.ID, title)
	return nil
}

func runHistoryExport(cmd *cobra.Command, args []string) error {
	format, err := history.ParseExportFormat(exportFormatFlag)
	if err != nil {
		return err
	}
	store, conv, err := resolve(args[0])
	if err != nil {
		return err
	}

	data, err := store.Export(conv.ID, format)
	if err != nil {
		return errors.Wrap(err, "failed to export")
	}

	if exportOutputFlag == "" {
		_, err = cmd.OutOrStdout().Write(data)
		return err
	}
	if err := os.MkdirAll(filepath.Dir(exportOutputFlag), 0o755); err != nil {
		return errors.Wrap(err, "failed to create output directory")
	}
	if err := os.WriteFile(exportOutputFlag, data, 0o644); err != nil {
		return errors.Wrap(err, "failed to write export")
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Exported %s to %s\n", conv.ID, exportOutputFlag)
	return nil
}

func runHistoryImport(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return errors.Wrapf(err, "failed to read %s", args[0])
	}
	records, err := history.ImportRecords(data, importPathFlag)
	if err != nil {
		return err
	}

	store, err := openStore()
	if err != nil {
		return errors.Wrap(err, "failed to open history")
	}
	conv, err := store.ImportConversation(importTitleFlag, records)
	if err != nil {
		return errors.Wrap(err, "failed to import")
	}

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Imported %d messages as %s (%s)\n", len(conv.Messages), conv.ID, conv.Title)
	return nil
}

func runHistorySearch(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return errors.Wrap(err, "failed to open history")
	}

	query := strings.Join(args, " ")
	results, err := store.SearchConversations(query, searchContent)
	if err != nil {
		return errors.Wrap(err, "failed to search")
	}

	out := cmd.OutOrStdout()
	if len(results) == 0 {
		_, _ = fmt.Fprintf(out, "No conversations match %q.\n", query)
		return nil
	}
	for _, r := range results {
		_, _ = fmt.Fprintf(out, "%s  %s\n", r.Conversation.ID, r.Conversation.Title)
		if r.MatchField == "content" {
			_, _ = fmt.Fprintf(out, "    %s\n", r.MatchSnippet)
		}
	}
	return nil
}

// truncate shortens s to n runes, marking the cut with "..."
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n]) + "..."
}
