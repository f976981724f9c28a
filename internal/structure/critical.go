package structure

import (
	"context"
	"log/slog"
	"strings"
)

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_semantic_matcher.go -package=mocks github.com/dgallion1/doccheck/internal/structure SemanticMatcher

// DefaultCriticalChapters is the required top-level set when none is configured.
var DefaultCriticalChapters = []string{"reliability", "safety"}

// SemanticMatcher answers whether any of titles belongs to category. It is
// consulted only when no title literally contains the category name.
type SemanticMatcher interface {
	Matches(ctx context.Context, category string, titles []string) (bool, error)
}

// CriticalValidator checks that every required chapter is present among a
// document's top-level titles.
type CriticalValidator struct {
	Matcher    SemanticMatcher // Optional
	Normalizer Normalizer
	Log        *slog.Logger
}

// NewCriticalValidator returns a validator using DefaultNormalizer.
func NewCriticalValidator(matcher SemanticMatcher, log *slog.Logger) *CriticalValidator {
	if log == nil {
		log = slog.Default()
	}
	return &CriticalValidator{Matcher: matcher, Normalizer: DefaultNormalizer, Log: log}
}

// Validate returns the required names found by neither the literal nor the
// semantic tier, in required order. Matcher errors count as not found and
// never abort the run.
func (v *CriticalValidator) Validate(ctx context.Context, titles, required []string) []string {
	cleaned := make([]string, len(titles))
	for i, t := range titles {
		cleaned[i] = v.Normalizer.Clean(t)
	}

	missing := []string{}
	for _, name := range required {
		if v.literalMatch(cleaned, v.Normalizer.Clean(name)) {
			continue
		}
		if v.semanticMatch(ctx, name, titles) {
			continue
		}
		missing = append(missing, name)
	}
	return missing
}

func (v *CriticalValidator) literalMatch(cleanedTitles []string, name string) bool {
	if name == "" {
		return false
	}
	for _, t := range cleanedTitles {
		if strings.Contains(t, name) {
			return true
		}
	}
	return false
}

func (v *CriticalValidator) semanticMatch(ctx context.Context, name string, titles []string) bool {
	if v.Matcher == nil || len(titles) == 0 {
		return false
	}
	ok, err := v.Matcher.Matches(ctx, name, titles)
	if err != nil {
		v.logger().Warn("semantic match unavailable, treating chapter as missing",
			"chapter", name, "error", err)
		return false
	}
	if ok {
		v.logger().Debug("critical chapter matched semantically", "chapter", name)
	}
	return ok
}

func (v *CriticalValidator) logger() *slog.Logger {
	if v.Log == nil {
		return slog.Default()
	}
	return v.Log
}
