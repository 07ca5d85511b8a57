package commands

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/diogo/chatview/internal/config"
	"github.com/diogo/chatview/internal/events"
	"github.com/diogo/chatview/internal/history"
	"github.com/diogo/chatview/internal/models"
	"github.com/diogo/chatview/internal/transcript"
	"github.com/diogo/chatview/internal/tui"
)

var (
	resumeFlag   string
	pickFlag     bool
	noStreamFlag bool
	timeoutFlag  time.Duration
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive chat session",
	Long: `Start an interactive chat session.

Replies come from the built-in echo responder, which repeats your message
back as a quote. "/fail <text>" and "/timeout" produce the two error kinds.
Type 'exit', 'quit', or press Ctrl+C to end the session.

` + history.ListAliases(),
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runChat(cmd.Context(), deps)
	},
}

func init() {
	chatCmd.Flags().StringVarP(&resumeFlag, "resume", "r", "", "Resume a saved conversation (ID, index, alias or title)")
	chatCmd.Flags().BoolVarP(&pickFlag, "pick", "p", false, "Choose a saved conversation to resume")
	chatCmd.Flags().BoolVar(&noStreamFlag, "no-stream", false, "Show replies only once they are complete")
	chatCmd.Flags().DurationVar(&timeoutFlag, "timeout", 2*time.Minute, "Give up on a reply after this long (0 disables)")
	chatCmd.MarkFlagsMutuallyExclusive("resume", "pick")
}

func runChat(ctx context.Context, d *Dependencies) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	logger := log.Logger
	tcfg := transcriptConfig(cfg)
	title := "chatview"

	conv, store, err := openConversation(d)
	if err != nil {
		return err
	}
	if conv == nil && (resumeFlag != "" || pickFlag) {
		return nil
	}
	if store != nil {
		if len(conv.Messages) > 0 {
			tcfg.InitMessages = conv.Records()
			title = conv.Title
		}
		tcfg.OnNewMessage = store.Recorder(conv.ID, logger)
		defer discardIfEmpty(store, conv.ID, logger)
	}

	if cfg.SpeechOutput {
		speaker, err := d.NewSpeaker(cfg.SpeechCommand, logger)
		if err != nil {
			logger.Warn().Err(err).Msg("speech output disabled")
			tcfg.SpeechOutput = false
		} else {
			tcfg.Speaker = speaker
			defer func() { _ = speaker.Close() }()
		}
	}

	bus, err := events.NewBus(cfg.Events, logger)
	if err != nil {
		return err
	}
	if bus != nil {
		defer func() {
			if err := bus.Close(); err != nil {
				logger.Warn().Err(err).Msg("failed to close event bus")
			}
		}()
		tcfg.Dispatcher = events.NewDispatcher(bus.Publisher, logger)
		go auditEvents(ctx, bus, logger)
	}

	logger.Info().
		Str("events", cfg.Events.Backend).
		Bool("history", store != nil).
		Bool("speech", tcfg.SpeechOutput).
		Int("seeded", len(tcfg.InitMessages)).
		Msg("starting chat")

	return d.RunChat(tui.Options{
		Transcript:      tcfg,
		Stream:          cfg.Stream && !noStreamFlag,
		CopyToClipboard: cfg.CopyToClipboard,
		Timeout:         timeoutFlag,
		Title:           title,
		Logger:          logger,
	})
}

// openConversation returns the conversation new messages are saved into. It
// is nil when history is disabled, or when the user backed out of the picker.
func openConversation(d *Dependencies) (*history.Conversation, *history.Store, error) {
	if !cfg.History.Enabled {
		if resumeFlag != "" || pickFlag {
			return nil, nil, errors.New("history is disabled; enable it to resume conversations")
		}
		return nil, nil, nil
	}

	store, err := openStore()
	if err != nil {
		return nil, nil, err
	}

	switch {
	case resumeFlag != "":
		conv, err := history.NewResolver(store).Resolve(resumeFlag)
		if err != nil {
			return nil, nil, err
		}
		return conv, store, nil
	case pickFlag:
		conv, confirmed, err := d.PickConversation(store)
		if err != nil {
			return nil, nil, errors.Wrap(err, "conversation picker failed")
		}
		if !confirmed {
			return nil, nil, nil
		}
		if conv != nil {
			return conv, store, nil
		}
	}

	conv, err := store.CreateConversation()
	if err != nil {
		return nil, nil, err
	}
	return conv, store, nil
}

// discardIfEmpty removes a conversation the user never wrote into
func discardIfEmpty(store *history.Store, id string, logger zerolog.Logger) {
	conv, err := store.GetConversation(id)
	if err != nil || len(conv.Messages) > 0 {
		return
	}
	if err := store.DeleteConversation(id); err != nil {
		logger.Warn().Err(err).Str("conversation", id).Msg("failed to remove empty conversation")
	}
}

// auditEvents logs every event seen on the bus
func auditEvents(ctx context.Context, bus *events.Bus, logger zerolog.Logger) {
	err := events.Follow(ctx, bus.Subscriber, models.EventNewMessage, logger, func(ev transcript.Event) error {
		logger.Debug().
			Str("event", ev.Name).
			Str("role", string(ev.Detail.Message.Role)).
			Bool("initial", ev.Detail.IsInitial).
			Int("length", len(ev.Detail.Message.Content)).
			Msg("event observed")
		return nil
	})
	if err != nil {
		logger.Warn().Err(err).Msg("event audit stopped")
	}
}

// transcriptConfig maps the user configuration onto the transcript
func transcriptConfig(c config.Config) transcript.Config {
	loading := c.DisplayLoadingMessage
	return transcript.Config{
		MessageStyles:         c.MessageStyles,
		Avatars:               c.Avatars,
		Names:                 c.Names,
		ErrorMessages:         c.ErrorMessages,
		SpeechOutput:          c.SpeechOutput,
		DisplayLoadingMessage: &loading,
		InitMessages:          c.InitMessages,
		Markdown:              c.Markdown.Enabled,
	}
}

func openStore() (*history.Store, error) {
	dir, err := cfg.HistoryDir()
	if err != nil {
		return nil, err
	}
	return history.NewStore(dir)
}
