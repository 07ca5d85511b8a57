package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/diogo/chatview/internal/history"
	"github.com/diogo/chatview/internal/models"
	"github.com/diogo/chatview/internal/transcript"
)

var (
	renderPathFlag  string
	renderWidthFlag int
	renderPlainFlag bool
)

var renderCmd = &cobra.Command{
	Use:   "render <file|ref>",
	Short: "Print a transcript as message bubbles",
	Long: `Print a conversation with the same bubbles, avatars and names the chat
uses, then exit.

The argument is a JSON export ("-" reads stdin) or, when no such file exists,
a saved conversation reference. Exports from other tools work when their
messages carry a role and text; --path selects the message array with a
GJSON path such as "data.turns".

` + history.ListAliases(),
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		records, err := loadRecords(cmd.InOrStdin(), args[0])
		if err != nil {
			return err
		}

		width := renderWidthFlag
		if width <= 0 {
			width = terminalWidth()
		}

		tcfg := transcriptConfig(cfg)
		tcfg.SpeechOutput = false
		tcfg.InitMessages = records
		tcfg.Width = width
		if renderPlainFlag {
			tcfg.Markdown = false
		}

		_, err = fmt.Fprint(cmd.OutOrStdout(), transcript.New(tcfg).Render())
		return err
	},
}

func init() {
	renderCmd.Flags().StringVar(&renderPathFlag, "path", "", "GJSON path of the message array")
	renderCmd.Flags().IntVarP(&renderWidthFlag, "width", "w", 0, "Output width (default terminal width)")
	renderCmd.Flags().BoolVar(&renderPlainFlag, "plain", false, "Print assistant replies without markdown rendering")
}

// loadRecords reads the transcript named by arg
func loadRecords(stdin io.Reader, arg string) ([]models.MessageRecord, error) {
	var (
		data []byte
		err  error
	)
	switch {
	case arg == "-":
		data, err = io.ReadAll(stdin)
	case fileExists(arg):
		data, err = os.ReadFile(arg)
	default:
		return loadSavedRecords(arg)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read %s", arg)
	}
	return history.ImportRecords(data, renderPathFlag)
}

func loadSavedRecords(ref string) ([]models.MessageRecord, error) {
	if !cfg.History.Enabled {
		return nil, errors.Errorf("%s: no such file", ref)
	}
	store, err := openStore()
	if err != nil {
		return nil, err
	}
	conv, err := history.NewResolver(store).Resolve(ref)
	if err != nil {
		return nil, errors.Wrapf(err, "%s is neither a file nor a saved conversation", ref)
	}
	return conv.Records(), nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// terminalWidth returns the width of stdout, or 80 when it is not a terminal
func terminalWidth() int {
	fd := int(os.Stdout.Fd())
	if !term.IsTerminal(fd) {
		return 80
	}
	w, _, err := term.GetSize(fd)
	if err != nil || w <= 0 {
		return 80
	}
	return w
}
