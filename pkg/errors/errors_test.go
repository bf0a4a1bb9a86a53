package errors

import (
	"math"
	"testing"
)

func TestTypedErrors(t *testing.T) {
	err := NewNotFittedError("TermImputer", "Predict")
	var nf *NotFittedError
	if !As(err, &nf) {
		t.Fatalf("expected NotFittedError in chain, got %v", err)
	}
	if nf.ModelName != "TermImputer" {
		t.Errorf("ModelName = %q, want TermImputer", nf.ModelName)
	}

	err = Wrap(NewSchemaError("train", "loan_amount"), "loading")
	var se *SchemaError
	if !As(err, &se) {
		t.Fatalf("expected SchemaError in wrapped chain, got %v", err)
	}
	if se.Column != "loan_amount" {
		t.Errorf("Column = %q, want loan_amount", se.Column)
	}

	err = NewDimensionError("ROCAUC", 10, 9, 0)
	var de *DimensionError
	if !As(err, &de) {
		t.Fatalf("expected DimensionError in chain, got %v", err)
	}
}

func TestWarnHandler(t *testing.T) {
	var captured error
	SetWarningHandler(func(w error) { captured = w })
	defer SetWarningHandler(func(error) {})

	Warn(NewUnseenCategoryWarning("grade_subgrade", "Z9", 0.8))

	var ucw *UnseenCategoryWarning
	if !As(captured, &ucw) {
		t.Fatalf("expected UnseenCategoryWarning, got %v", captured)
	}
	if ucw.Category != "Z9" {
		t.Errorf("Category = %q, want Z9", ucw.Category)
	}
}

func TestSafeDivide(t *testing.T) {
	tests := []struct {
		name       string
		num, denom float64
		want       float64
	}{
		{"normal", 10, 2, 5},
		{"zero denominator", 1, 0, 0},
		{"zero numerator", 0, 3, 0},
		{"inf result", math.MaxFloat64, 1e-310, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SafeDivide(tt.num, tt.denom); got != tt.want {
				t.Errorf("SafeDivide(%g, %g) = %g, want %g", tt.num, tt.denom, got, tt.want)
			}
		})
	}
}

func TestClipProbability(t *testing.T) {
	if got := ClipProbability(0, 1e-15); got != 1e-15 {
		t.Errorf("ClipProbability(0) = %g", got)
	}
	if got := ClipProbability(1, 1e-15); got != 1-1e-15 {
		t.Errorf("ClipProbability(1) = %g", got)
	}
	if got := ClipProbability(0.5, 1e-15); got != 0.5 {
		t.Errorf("ClipProbability(0.5) = %g", got)
	}
}
