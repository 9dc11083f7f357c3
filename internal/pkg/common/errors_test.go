package common

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
)

func TestPipelineErrorSamplesTenDetails(t *testing.T) {
	details := make([]string, 0, 14)
	for i := 0; i < 14; i++ {
		details = append(details, fmt.Sprintf("problem %d", i))
	}
	err := NewPipelineError(KindNutritionInvalid, "nutrition validation failed", details...)

	if err.Total() != 14 {
		t.Fatalf("Total() = %d, want 14", err.Total())
	}
	if got := len(err.SampleDetails()); got != 10 {
		t.Fatalf("len(SampleDetails()) = %d, want 10", got)
	}
	msg := err.Error()
	if !strings.Contains(msg, "showing 10 of 14 errors") {
		t.Errorf("message missing totals: %q", msg)
	}
	if strings.Contains(msg, "problem 11") {
		t.Errorf("message should not include details past the sample: %q", msg)
	}
}

func TestPipelineErrorStatus(t *testing.T) {
	tests := []struct {
		kind PipelineKind
		want int
	}{
		{KindPreconditionMissing, http.StatusUnprocessableEntity},
		{KindExternalFormat, http.StatusInternalServerError},
		{KindStructuralInvalid, http.StatusInternalServerError},
		{KindIngredientInvalid, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := NewPipelineError(tt.kind, "x").Status(); got != tt.want {
			t.Errorf("%s: Status() = %d, want %d", tt.kind, got, tt.want)
		}
	}
}

func TestAsPipelineErrorThroughWrap(t *testing.T) {
	inner := WrapPipelineError(KindExternalFormat, "invalid model output", errors.New("eof"))
	wrapped := fmt.Errorf("generate plan: %w", inner)

	if !IsPipelineKind(wrapped, KindExternalFormat) {
		t.Fatal("expected wrapped error to match EXTERNAL_FORMAT_ERROR")
	}
	if IsPipelineKind(wrapped, KindStructuralInvalid) {
		t.Fatal("kind mismatch should not match")
	}
	if _, ok := AsPipelineError(errors.New("plain")); ok {
		t.Fatal("plain error should not be a pipeline error")
	}
}
