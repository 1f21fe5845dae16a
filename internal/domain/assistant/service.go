package assistant

import (
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/rpggio/codepad/internal/clock"
)

// DefaultReplyDelay is the pause before a reply lands in the transcript.
const DefaultReplyDelay = 600 * time.Millisecond

// Service keeps the assistant transcript and panel visibility. Replies are
// appended after a delay on the service clock and are never cancelled.
type Service struct {
	clock  clock.Clock
	delay  time.Duration
	logger *slog.Logger

	mu         sync.Mutex
	visible    bool
	transcript []Message
	pending    int
	onMessage  func(Message)
}

// Option configures a Service.
type Option func(*Service)

// WithClock sets the clock used for timestamps and reply delays.
func WithClock(clk clock.Clock) Option {
	return func(s *Service) { s.clock = clk }
}

// WithReplyDelay sets the reply delay. Zero delivers replies immediately.
func WithReplyDelay(d time.Duration) Option {
	return func(s *Service) { s.delay = d }
}

// WithVisible sets the initial panel visibility.
func WithVisible(visible bool) Option {
	return func(s *Service) { s.visible = visible }
}

// WithOnMessage registers fn to run after each message is appended. fn may
// run on a timer goroutine.
func WithOnMessage(fn func(Message)) Option {
	return func(s *Service) { s.onMessage = fn }
}

// NewService creates an assistant with an empty transcript.
func NewService(logger *slog.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	s := &Service{
		clock:   clock.Real(),
		delay:   DefaultReplyDelay,
		logger:  logger,
		visible: true,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Ask appends the query to the transcript and schedules the reply. It
// returns the reply that will be delivered.
func (s *Service) Ask(query string) (string, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return "", ErrEmptyQuery
	}
	reply := Respond(query)

	s.mu.Lock()
	s.pending++
	s.mu.Unlock()
	s.append(SenderUser, query)

	s.clock.AfterFunc(s.delay, func() {
		s.mu.Lock()
		s.pending--
		s.mu.Unlock()
		s.append(SenderBot, reply)
	})
	s.logger.Debug("assistant query", "query", query, "delay", s.delay)
	return reply, nil
}

// Toggle flips panel visibility and returns the new value.
func (s *Service) Toggle() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.visible = !s.visible
	return s.visible
}

// Visible reports whether the panel is shown.
func (s *Service) Visible() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.visible
}

// Transcript returns a copy of the messages so far.
func (s *Service) Transcript() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Message, len(s.transcript))
	copy(out, s.transcript)
	return out
}

// Pending returns the number of replies not yet delivered.
func (s *Service) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending
}

func (s *Service) append(sender Sender, text string) {
	msg := Message{Sender: sender, Text: text, At: s.clock.Now()}
	s.mu.Lock()
	s.transcript = append(s.transcript, msg)
	fn := s.onMessage
	s.mu.Unlock()
	if fn != nil {
		fn(msg)
	}
}
