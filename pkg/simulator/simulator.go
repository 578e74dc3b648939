// Package simulator is an approximate test console for the chatbot.
//
// It does not walk the graph: replies come from keyword matching against a fixed
// bilingual table and a canned reply per topic. Only the greeting reads the
// flow, from its Welcome node.
package simulator

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/aretw0/flowbuilder/internal/logging"
	"github.com/aretw0/flowbuilder/pkg/domain"
	"github.com/aretw0/flowbuilder/pkg/observability"
)

// Language of a reply.
type Language string

const (
	English Language = "en"
	Swedish Language = "sv"
)

// DefaultTypingDelay simulates the bot typing.
const DefaultTypingDelay = time.Second

const fallbackGreeting = "Hi! How can we help you today?"

// Reply is one simulated bot answer.
type Reply struct {
	Category Category `json:"category"`
	Language Language `json:"language"`
	Text     string   `json:"text"`
}

// Simulator holds the remembered language preference of one console session.
// Safe for concurrent use.
type Simulator struct {
	delay   time.Duration
	logger  *slog.Logger
	metrics *observability.Metrics

	mu        sync.Mutex
	preferred Language
}

// Option configures the Simulator.
type Option func(*Simulator)

// WithTypingDelay sets the delay before each reply. Zero disables it.
func WithTypingDelay(d time.Duration) Option {
	return func(s *Simulator) {
		s.delay = d
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Simulator) {
		s.logger = logger
	}
}

// WithMetrics counts replies per category.
func WithMetrics(m *observability.Metrics) Option {
	return func(s *Simulator) {
		s.metrics = m
	}
}

// New creates a simulator.
func New(opts ...Option) *Simulator {
	s := &Simulator{
		delay:  DefaultTypingDelay,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetLanguage records a language preference. An empty value clears it.
func (s *Simulator) SetLanguage(l Language) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.preferred = l
}

// Greeting returns the text of the flow's Welcome node.
func (s *Simulator) Greeting(flow domain.Flow) string {
	welcome := flow.NodesOfKind(domain.KindWelcome)
	if len(welcome) == 0 {
		return fallbackGreeting
	}
	text := welcome[0].Payload.Messages.Bilingual()
	if text == "" {
		return fallbackGreeting
	}
	return text
}

// Reply sanitizes msg and answers it after the typing delay.
// It returns ctx.Err() if cancelled while typing.
func (s *Simulator) Reply(ctx context.Context, msg string) (Reply, error) {
	clean, err := Sanitize(msg)
	if err != nil {
		s.logger.Warn("message rejected", "err", err, "size", len(msg))
		return Reply{}, err
	}
	r := s.Answer(clean)
	if s.delay > 0 {
		t := time.NewTimer(s.delay)
		defer t.Stop()
		select {
		case <-ctx.Done():
			return Reply{}, ctx.Err()
		case <-t.C:
		}
	}
	s.metrics.SimulatorReply(string(r.Category))
	return r, nil
}

// Answer computes the reply without delay.
func (s *Simulator) Answer(msg string) Reply {
	lang := s.language(msg)
	cat := Classify(msg)
	tpl := templates[cat]

	text := tpl.English
	if lang == Swedish {
		text = tpl.Swedish
	}
	s.logger.Debug("simulated reply", "category", cat, "language", lang)
	return Reply{Category: cat, Language: lang, Text: text}
}

func (s *Simulator) language(msg string) Language {
	if DetectSwedish(msg) {
		return Swedish
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.preferred != "" {
		return s.preferred
	}
	return English
}

// Classify returns the first topic whose keywords occur in msg, or general.
func Classify(msg string) Category {
	norm, words := tokenize(msg)
	for _, cat := range Categories {
		for _, kw := range keywords[cat] {
			if matches(norm, words, kw) {
				return cat
			}
		}
	}
	return CategoryGeneral
}

// DetectSwedish reports whether msg contains a Swedish marker.
func DetectSwedish(msg string) bool {
	norm, words := tokenize(msg)
	for _, m := range swedishMarkers {
		if len([]rune(m)) == 1 {
			if strings.Contains(norm, m) {
				return true
			}
			continue
		}
		if matches(norm, words, m) {
			return true
		}
	}
	return false
}

func matches(norm string, words map[string]bool, kw string) bool {
	if strings.Contains(kw, " ") {
		return strings.Contains(norm, kw)
	}
	return words[kw]
}

func tokenize(msg string) (string, map[string]bool) {
	norm := strings.ToLower(msg)
	words := make(map[string]bool)
	for _, w := range strings.FieldsFunc(norm, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}) {
		words[w] = true
	}
	return strings.Join(strings.Fields(norm), " "), words
}
