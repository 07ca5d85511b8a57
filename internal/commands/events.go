package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/diogo/chatview/internal/config"
	"github.com/diogo/chatview/internal/events"
	"github.com/diogo/chatview/internal/models"
	"github.com/diogo/chatview/internal/transcript"
)

var (
	tailJSONFlag    bool
	tailInitialFlag bool
)

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Inspect the new-message event stream",
}

var eventsTailCmd = &cobra.Command{
	Use:   "tail",
	Short: "Print new messages published by running chats",
	Long: `Print every new-message event published by chats sharing the redis
event backend, until interrupted.

The gochannel backend lives inside a single process and cannot be followed.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return tailEvents(ctx, cfg.Events, cmd.OutOrStdout())
	},
}

func init() {
	eventsTailCmd.Flags().BoolVar(&tailJSONFlag, "json", false, "Print raw JSON payloads")
	eventsTailCmd.Flags().BoolVar(&tailInitialFlag, "initial", false, "Include seeded messages")
	eventsCmd.AddCommand(eventsTailCmd)
}

func tailEvents(ctx context.Context, ec config.EventsConfig, out io.Writer) error {
	if ec.Backend != config.EventsBackendRedis {
		return errors.Errorf("events backend %q cannot be followed from another process; use redis", ec.Backend)
	}

	bus, err := events.NewBus(ec, log.Logger)
	if err != nil {
		return err
	}
	defer func() { _ = bus.Close() }()

	return events.Follow(ctx, bus.Subscriber, models.EventNewMessage, log.Logger, func(ev transcript.Event) error {
		return printEvent(out, ev)
	})
}

// printEvent writes one event as a line of text or JSON
func printEvent(out io.Writer, ev transcript.Event) error {
	if ev.Detail.IsInitial && !tailInitialFlag {
		return nil
	}
	if tailJSONFlag {
		data, err := json.Marshal(ev.Detail)
		if err != nil {
			return errors.Wrap(err, "failed to encode event")
		}
		_, err = fmt.Fprintln(out, string(data))
		return err
	}
	_, err := fmt.Fprintf(out, "[%s] %s\n", ev.Detail.Message.Role, ev.Detail.Message.Content)
	return err
}
