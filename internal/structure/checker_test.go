package structure_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/dgallion1/doccheck/internal/doctree"
	"github.com/dgallion1/doccheck/internal/structure"
	"github.com/dgallion1/doccheck/internal/structure/mocks"

	"go.uber.org/mock/gomock"
)

func chapters(titles ...string) []doctree.ChapterInfo {
	out := make([]doctree.ChapterInfo, len(titles))
	for i, title := range titles {
		level := 1
		if strings.HasPrefix(title, "  ") {
			level = 2
			title = strings.TrimSpace(title)
		}
		out[i] = doctree.ChapterInfo{Title: title, Level: level, Position: i}
	}
	return out
}

var fiveChapterTemplate = chapters("Overview", "Reliability", "Safety", "Interfaces", "Testing")

func TestChecker_PassRule(t *testing.T) {
	tests := []struct {
		name       string
		target     []doctree.ChapterInfo
		wantPassed bool
		wantIssues int
	}{
		{
			name:       "two ordinary missing",
			target:     chapters("Overview", "Reliability", "Safety"),
			wantPassed: true,
		},
		{
			name:       "three ordinary missing",
			target:     chapters("Reliability", "Safety"),
			wantPassed: true,
		},
		{
			name:       "four missing including critical",
			target:     chapters("Reliability"),
			wantPassed: false,
			wantIssues: 1,
		},
		{
			name:       "critical satisfied by substring",
			target:     chapters("Overview", "Reliability", "Interfaces", "Testing", "Safety Case"),
			wantPassed: true,
			wantIssues: 0,
		},
		{
			name:       "critical missing only",
			target:     chapters("Overview", "Reliability", "Interfaces", "Testing"),
			wantPassed: false,
			wantIssues: 1,
		},
	}

	c := structure.NewChecker(nil, discardLogger())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := c.Check(context.Background(), fiveChapterTemplate, tt.target, structure.DefaultCriticalChapters)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if res.Passed != tt.wantPassed {
				t.Errorf("expected passed=%v, got %v (missing=%v issues=%v)",
					tt.wantPassed, res.Passed, res.MissingChapters, res.StructureIssues)
			}
			if len(res.StructureIssues) != tt.wantIssues {
				t.Errorf("expected %d issues, got %v", tt.wantIssues, res.StructureIssues)
			}
		})
	}
}

func TestChecker_FourOrdinaryMissingFails(t *testing.T) {
	tmpl := chapters("Overview", "Reliability", "Safety", "Interfaces", "Testing", "Deployment", "Glossary")
	target := chapters("Reliability", "Safety", "Glossary")

	res, err := structure.NewChecker(nil, discardLogger()).Check(context.Background(), tmpl, target, structure.DefaultCriticalChapters)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.MissingChapters) != 4 {
		t.Fatalf("expected 4 missing, got %v", res.MissingChapters)
	}
	if len(res.StructureIssues) != 0 {
		t.Errorf("expected no critical issues, got %v", res.StructureIssues)
	}
	if res.Passed {
		t.Error("expected check to fail with 4 missing chapters")
	}
}

func TestChecker_CriticalIssueFormat(t *testing.T) {
	res, err := structure.NewChecker(nil, discardLogger()).Check(context.Background(),
		fiveChapterTemplate, chapters("Overview", "Reliability", "Interfaces", "Testing"), structure.DefaultCriticalChapters)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "missing critical top-level chapter: safety"
	if len(res.StructureIssues) != 1 || res.StructureIssues[0] != want {
		t.Errorf("expected [%q], got %v", want, res.StructureIssues)
	}
	if structure.ViolationCount(res) != 2 {
		t.Errorf("expected 2 violations, got %d", structure.ViolationCount(res))
	}
}

func TestChecker_CriticalOnlyAtTopLevel(t *testing.T) {
	target := chapters("Overview", "Reliability", "Interfaces", "  Safety", "Testing")
	res, err := structure.NewChecker(nil, discardLogger()).Check(context.Background(), fiveChapterTemplate, target, structure.DefaultCriticalChapters)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.StructureIssues) != 1 {
		t.Errorf("expected nested Safety to not satisfy the critical check, got %v", res.StructureIssues)
	}
	if len(res.MissingChapters) != 0 {
		t.Errorf("expected no ordinary missing chapters, got %v", res.MissingChapters)
	}
}

func TestChecker_ConfigurableTolerance(t *testing.T) {
	c := structure.NewChecker(nil, discardLogger())
	c.MaxMissing = 0

	res, err := c.Check(context.Background(), fiveChapterTemplate, chapters("Overview", "Reliability", "Safety", "Interfaces"), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Passed {
		t.Error("expected a single missing chapter to fail with zero tolerance")
	}
}

func TestChecker_SemanticFallbackFailureFailsCheck(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	m := mocks.NewMockSemanticMatcher(ctrl)
	m.EXPECT().Matches(gomock.Any(), "safety", gomock.Any()).Return(false, errors.New("timeout"))

	c := structure.NewChecker(structure.NewCriticalValidator(m, discardLogger()), discardLogger())
	res, err := c.Check(context.Background(), fiveChapterTemplate, chapters("Overview", "Reliability", "Hazard Analysis", "Interfaces", "Testing"), structure.DefaultCriticalChapters)
	if err != nil {
		t.Fatalf("matcher failures must not surface as errors: %v", err)
	}
	if res.Passed {
		t.Error("expected check to fail when the semantic tier is unavailable")
	}
}

func TestChecker_InvalidLevel(t *testing.T) {
	bad := []doctree.ChapterInfo{{Title: "Broken", Level: -1}}
	_, err := structure.NewChecker(nil, discardLogger()).Check(context.Background(), fiveChapterTemplate, bad, nil)
	if !errors.Is(err, doctree.ErrInvalidLevel) {
		t.Errorf("expected ErrInvalidLevel, got %v", err)
	}
}

func TestChecker_ResultCarriesTrees(t *testing.T) {
	target := chapters("Overview", "  Scope", "Reliability", "Safety")
	res, err := structure.NewChecker(nil, discardLogger()).Check(context.Background(), fiveChapterTemplate, target, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.TargetStructure == nil || res.TemplateStructure == nil {
		t.Fatal("expected both trees in the result")
	}
	if n := len(res.TargetStructure.Children); n != 3 {
		t.Errorf("expected 3 top-level target chapters, got %d", n)
	}
	if res.Warnings == nil {
		t.Error("expected non-nil warnings")
	}
}

func TestViolationCountNil(t *testing.T) {
	if got := structure.ViolationCount(nil); got != 0 {
		t.Errorf("expected 0 for a disabled check, got %d", got)
	}
}
