// Package speech reads transcript text aloud through a system text-to-speech
// program.
package speech

import (
	"context"
	"os/exec"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// ErrNoCommand is returned when no text-to-speech program can be found
var ErrNoCommand = errors.New("no text-to-speech command found")

// candidates are tried in order when no command is configured.
// spd-say needs -w to block until the utterance ends.
var candidates = [][]string{
	{"say"},
	{"espeak-ng"},
	{"espeak"},
	{"spd-say", "-w"},
}

// queueSize bounds the utterances waiting behind the one being spoken
const queueSize = 16

// Runner executes one utterance
type Runner func(ctx context.Context, name string, args ...string) error

func execRunner(ctx context.Context, name string, args ...string) error {
	out, err := exec.CommandContext(ctx, name, args...).CombinedOutput()
	if err != nil {
		return errors.Wrapf(err, "%s: %s", name, strings.TrimSpace(string(out)))
	}
	return nil
}

// Speaker speaks queued utterances one at a time in the background
type Speaker struct {
	argv   []string
	run    Runner
	logger zerolog.Logger

	queue  chan string
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu     sync.Mutex
	closed bool
}

// Option configures a Speaker
type Option func(*Speaker)

// WithRunner replaces the process runner
func WithRunner(run Runner) Option {
	return func(s *Speaker) { s.run = run }
}

// WithLogger sets the logger used to report failed utterances
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Speaker) { s.logger = logger }
}

// New starts a speaker for command, a program name optionally followed by
// arguments. An empty command picks the first available system program.
func New(command string, opts ...Option) (*Speaker, error) {
	argv, err := resolveCommand(command, exec.LookPath)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Speaker{
		argv:   argv,
		run:    execRunner,
		logger: zerolog.Nop(),
		queue:  make(chan string, queueSize),
		ctx:    ctx,
		cancel: cancel,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.wg.Add(1)
	go s.loop()
	return s, nil
}

func resolveCommand(command string, lookPath func(string) (string, error)) ([]string, error) {
	if fields := strings.Fields(command); len(fields) > 0 {
		return fields, nil
	}
	for _, c := range candidates {
		if _, err := lookPath(c[0]); err == nil {
			return c, nil
		}
	}
	return nil, ErrNoCommand
}

// Command returns the program and arguments text is appended to
func (s *Speaker) Command() []string {
	return append([]string(nil), s.argv...)
}

// Speak queues text. It never blocks; text is dropped when the queue is full
// or the speaker is closed.
func (s *Speaker) Speak(text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	select {
	case s.queue <- text:
	default:
		s.logger.Warn().Int("queued", len(s.queue)).Msg("speech queue full, dropping utterance")
	}
}

func (s *Speaker) loop() {
	defer s.wg.Done()
	for text := range s.queue {
		if s.ctx.Err() != nil {
			continue
		}
		args := append(s.Command()[1:], text)
		if err := s.run(s.ctx, s.argv[0], args...); err != nil && s.ctx.Err() == nil {
			s.logger.Error().Err(err).Str("command", s.argv[0]).Msg("speech output failed")
		}
	}
}

// Close stops the current utterance, drops queued ones and waits for the
// worker to exit
func (s *Speaker) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	close(s.queue)
	s.mu.Unlock()

	s.cancel()
	s.wg.Wait()
	return nil
}

// Drain waits for queued utterances to finish, then closes the speaker
func (s *Speaker) Drain() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	close(s.queue)
	s.mu.Unlock()

	s.wg.Wait()
	s.cancel()
}
