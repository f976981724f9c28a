package structure_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"reflect"
	"testing"

	"github.com/dgallion1/doccheck/internal/structure"
	"github.com/dgallion1/doccheck/internal/structure/mocks"

	"go.uber.org/mock/gomock"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestCriticalValidator_LiteralMatch(t *testing.T) {
	v := structure.NewCriticalValidator(nil, discardLogger())
	required := []string{"reliability", "safety"}

	got := v.Validate(context.Background(), []string{"reliability design", "safety requirements"}, required)
	if len(got) != 0 {
		t.Errorf("expected no missing chapters, got %v", got)
	}

	got = v.Validate(context.Background(), []string{"reliability design"}, required)
	if !reflect.DeepEqual(got, []string{"safety"}) {
		t.Errorf("expected [safety], got %v", got)
	}
}

func TestCriticalValidator_LiteralMatchIsNormalized(t *testing.T) {
	v := structure.NewCriticalValidator(nil, discardLogger())
	got := v.Validate(context.Background(), []string{"3. Reliability-Engineering", "4. SAFETY"}, []string{"Reliability", "safety"})
	if len(got) != 0 {
		t.Errorf("expected no missing chapters, got %v", got)
	}
}

func TestCriticalValidator_SemanticFallback(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	titles := []string{"reliability design", "hazard analysis"}
	m := mocks.NewMockSemanticMatcher(ctrl)
	m.EXPECT().Matches(gomock.Any(), "safety", titles).Return(true, nil)

	v := structure.NewCriticalValidator(m, discardLogger())
	got := v.Validate(context.Background(), titles, []string{"reliability", "safety"})
	if len(got) != 0 {
		t.Errorf("expected semantic match to satisfy safety, got %v", got)
	}
}

func TestCriticalValidator_SemanticNo(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	m := mocks.NewMockSemanticMatcher(ctrl)
	m.EXPECT().Matches(gomock.Any(), "safety", gomock.Any()).Return(false, nil)

	v := structure.NewCriticalValidator(m, discardLogger())
	got := v.Validate(context.Background(), []string{"reliability design", "appendix"}, []string{"reliability", "safety"})
	if !reflect.DeepEqual(got, []string{"safety"}) {
		t.Errorf("expected [safety], got %v", got)
	}
}

func TestCriticalValidator_MatcherErrorIsNotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	m := mocks.NewMockSemanticMatcher(ctrl)
	m.EXPECT().Matches(gomock.Any(), "reliability", gomock.Any()).Return(true, errors.New("model unavailable"))
	m.EXPECT().Matches(gomock.Any(), "safety", gomock.Any()).Return(false, errors.New("model unavailable"))
	m.EXPECT().Matches(gomock.Any(), "security", gomock.Any()).Return(true, nil)

	v := structure.NewCriticalValidator(m, discardLogger())
	got := v.Validate(context.Background(), []string{"introduction"}, []string{"reliability", "safety", "security"})
	if !reflect.DeepEqual(got, []string{"reliability", "safety"}) {
		t.Errorf("expected errors to count as missing and the run to continue, got %v", got)
	}
}

func TestCriticalValidator_LiteralHitSkipsMatcher(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	m := mocks.NewMockSemanticMatcher(ctrl)
	m.EXPECT().Matches(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	v := structure.NewCriticalValidator(m, discardLogger())
	got := v.Validate(context.Background(), []string{"Safety", "Reliability"}, []string{"reliability", "safety"})
	if len(got) != 0 {
		t.Errorf("expected no missing chapters, got %v", got)
	}
}

func TestCriticalValidator_CustomRequiredOrder(t *testing.T) {
	v := structure.NewCriticalValidator(nil, discardLogger())
	got := v.Validate(context.Background(), []string{"Security"}, []string{"testing", "security", "maintenance"})
	if !reflect.DeepEqual(got, []string{"testing", "maintenance"}) {
		t.Errorf("expected required order preserved, got %v", got)
	}

	got = v.Validate(context.Background(), nil, nil)
	if len(got) != 0 {
		t.Errorf("expected nothing missing for empty required set, got %v", got)
	}
}
