package stacking

import (
	"math/rand/v2"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/riskfold/riskfold/boosting"
	"github.com/riskfold/riskfold/core/model"
	"github.com/riskfold/riskfold/validation"
)

func separableData(n int, seed uint64) (*mat.Dense, []float64) {
	r := rand.New(rand.NewPCG(seed, seed+1))
	X := mat.NewDense(n, 2, nil)
	y := make([]float64, n)
	for i := 0; i < n; i++ {
		x0, x1 := r.Float64(), r.Float64()
		X.Set(i, 0, x0)
		X.Set(i, 1, x1)
		if x0+x1 > 1 {
			y[i] = 1
		}
	}
	return X, y
}

func TestCrossValidateProducesFullOOF(t *testing.T) {
	X, y := separableData(250, 3)
	folds, err := validation.NewStratifiedKFold(5, true, 3).Split(y)
	if err != nil {
		t.Fatalf("Split: %v", err)
	}

	XTest, _ := separableData(60, 99)
	src := Source{
		Name: "gbt",
		New: func() model.ProbabilityClassifier {
			return boosting.NewClassifier("gbt", boosting.Params{
				NumRounds:     20,
				NumLeaves:     7,
				MaxDepth:      3,
				MinDataInLeaf: 5,
			})
		},
		Train: X,
		Test:  XTest,
	}

	result, err := CrossValidate(src, y, folds)
	if err != nil {
		t.Fatalf("CrossValidate: %v", err)
	}
	if len(result.OOF) != 250 {
		t.Fatalf("OOF length = %d, want 250", len(result.OOF))
	}
	for i, p := range result.OOF {
		if p < 0 || p > 1 {
			t.Fatalf("OOF[%d] = %v out of [0,1]", i, p)
		}
	}
	if len(result.Test) != 60 {
		t.Fatalf("Test length = %d, want 60", len(result.Test))
	}
	for i, p := range result.Test {
		if p < 0 || p > 1 {
			t.Fatalf("Test[%d] = %v out of [0,1]", i, p)
		}
	}

	// The OOF predictions should still separate this easy problem.
	if a := auc(t, y, result.OOF); a < 0.85 {
		t.Errorf("OOF AUC = %.4f, want >= 0.85", a)
	}
}

func TestCrossValidateWithoutTestMatrix(t *testing.T) {
	X, y := separableData(120, 8)
	folds, err := validation.NewKFold(3, true, 8).Split(y)
	if err != nil {
		t.Fatalf("Split: %v", err)
	}

	src := Source{
		Name: "gbt",
		New: func() model.ProbabilityClassifier {
			return boosting.NewClassifier("gbt", boosting.Params{
				NumRounds: 10, NumLeaves: 7, MaxDepth: 3, MinDataInLeaf: 5,
			})
		},
		Train: X,
	}
	result, err := CrossValidate(src, y, folds)
	if err != nil {
		t.Fatalf("CrossValidate: %v", err)
	}
	if result.Test != nil {
		t.Error("Test predictions should be nil without a test matrix")
	}
}

func TestCrossValidateDimensionMismatch(t *testing.T) {
	X, y := separableData(50, 1)
	folds, _ := validation.NewKFold(2, false, 0).Split(y)

	src := Source{
		Name:  "bad",
		New:   func() model.ProbabilityClassifier { return boosting.NewClassifier("bad", boosting.Params{}) },
		Train: X,
	}
	if _, err := CrossValidate(src, y[:40], folds[:2]); err == nil {
		t.Error("expected dimension error for label/matrix mismatch")
	}
}
