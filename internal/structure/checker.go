package structure

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dgallion1/doccheck/internal/doctree"
)

// DefaultMaxMissing is the number of ordinary missing chapters a passing
// target may have.
const DefaultMaxMissing = 3

// Result is the verdict of one structure check.
type Result struct {
	Passed            bool                   `json:"passed"`
	MissingChapters   []string               `json:"missing_chapters"`
	ExtraChapters     []string               `json:"extra_chapters"`
	MissingDetails    []ChapterRef           `json:"missing_details"`
	ExtraDetails      []ChapterRef           `json:"extra_details"`
	SimilarityScore   float64                `json:"similarity_score"`
	StructureIssues   []string               `json:"structure_issues"`
	Warnings          []string               `json:"warnings"`
	TargetStructure   *doctree.StructureNode `json:"target_structure"`
	TemplateStructure *doctree.StructureNode `json:"template_structure"`
}

// ViolationCount is the number of findings in r. A nil result, from a
// disabled check, has none.
func ViolationCount(r *Result) int {
	if r == nil {
		return 0
	}
	return len(r.MissingChapters) + len(r.StructureIssues)
}

// Checker composes tree building, diffing and critical-chapter validation.
type Checker struct {
	Validator  *CriticalValidator
	MaxMissing int
	Normalizer Normalizer
	Log        *slog.Logger
}

// NewChecker returns a Checker with the default tolerance and normalizer.
func NewChecker(validator *CriticalValidator, log *slog.Logger) *Checker {
	if log == nil {
		log = slog.Default()
	}
	if validator == nil {
		validator = NewCriticalValidator(nil, log)
	}
	return &Checker{
		Validator:  validator,
		MaxMissing: DefaultMaxMissing,
		Normalizer: DefaultNormalizer,
		Log:        log,
	}
}

// Check compares target against template. Structural defects are reported
// in the result; only malformed input returns an error.
//
// The target passes when at most MaxMissing template chapters are missing
// and no critical chapter is missing. The two conditions are independent.
func (c *Checker) Check(ctx context.Context, templateChapters, targetChapters []doctree.ChapterInfo, required []string) (*Result, error) {
	templateTree, err := doctree.Build(templateChapters)
	if err != nil {
		return nil, fmt.Errorf("build template tree: %w", err)
	}
	targetTree, err := doctree.Build(targetChapters)
	if err != nil {
		return nil, fmt.Errorf("build target tree: %w", err)
	}

	diff := Differ{Normalizer: c.Normalizer}.Diff(templateTree, targetTree)

	issues := []string{}
	if c.Validator != nil {
		for _, name := range c.Validator.Validate(ctx, doctree.TopLevelTitles(targetTree), required) {
			issues = append(issues, fmt.Sprintf("missing critical top-level chapter: %s", name))
		}
	}

	warnings := doctree.LevelWarnings(targetTree)
	if warnings == nil {
		warnings = []string{}
	}

	res := &Result{
		Passed:            len(diff.Missing) <= c.MaxMissing && len(issues) == 0,
		MissingChapters:   diff.Missing,
		ExtraChapters:     diff.Extra,
		MissingDetails:    diff.MissingDetails,
		ExtraDetails:      diff.ExtraDetails,
		SimilarityScore:   diff.Similarity,
		StructureIssues:   issues,
		Warnings:          warnings,
		TargetStructure:   targetTree,
		TemplateStructure: templateTree,
	}

	c.logger().Info("structure check complete",
		"passed", res.Passed,
		"missing", len(res.MissingChapters),
		"extra", len(res.ExtraChapters),
		"critical_missing", len(issues),
		"similarity", fmt.Sprintf("%.2f", res.SimilarityScore),
	)
	return res, nil
}

func (c *Checker) logger() *slog.Logger {
	if c.Log == nil {
		return slog.Default()
	}
	return c.Log
}
