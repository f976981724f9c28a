package semantic

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgallion1/doccheck/internal/retry"
)

// Completer sends one prompt to a language model and returns its reply.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
	Model() string
}

// Outcomes passed to Matcher.Observe.
const (
	OutcomeMatch   = "match"
	OutcomeNoMatch = "no_match"
	OutcomeError   = "error"
)

// Matcher asks a language model whether any chapter title belongs to a
// category. Each model call is retried under Policy.
type Matcher struct {
	completer Completer
	policy    retry.Policy
	stats     *Stats
	log       *slog.Logger

	// Observe, if set, is called once per Matches call with its outcome.
	Observe func(outcome string)
}

func NewMatcher(c Completer, policy retry.Policy, log *slog.Logger) *Matcher {
	if log == nil {
		log = slog.Default()
	}
	if policy.Operation == "" {
		policy.Operation = "semantic_match"
	}
	return &Matcher{
		completer: c,
		policy:    policy,
		stats:     NewStats(time.Hour),
		log:       log,
	}
}

func (m *Matcher) Model() string { return m.completer.Model() }

func (m *Matcher) Stats() *Stats { return m.stats }

// Matches reports whether any of titles belongs to category. An empty title
// list never matches and makes no model call.
func (m *Matcher) Matches(ctx context.Context, category string, titles []string) (bool, error) {
	if len(titles) == 0 {
		return false, nil
	}
	prompt := BuildCategoryPrompt(category, titles)

	reply, err := retry.Do(ctx, m.policy, func(ctx context.Context) (string, error) {
		start := time.Now()
		out, err := m.completer.Complete(ctx, prompt)
		m.stats.Record(time.Since(start), err)
		return out, err
	})
	if err != nil {
		m.observe(OutcomeError)
		return false, fmt.Errorf("semantic match %q: %w", category, err)
	}

	ok, err := ParseVerdict(reply)
	if err != nil {
		m.observe(OutcomeError)
		return false, fmt.Errorf("semantic match %q: %w", category, err)
	}

	m.log.Debug("semantic match", "category", category, "titles", len(titles), "match", ok)
	if ok {
		m.observe(OutcomeMatch)
	} else {
		m.observe(OutcomeNoMatch)
	}
	return ok, nil
}

func (m *Matcher) observe(outcome string) {
	if m.Observe != nil {
		m.Observe(outcome)
	}
}
