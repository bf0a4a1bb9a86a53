// Package stacking combines the out-of-fold predictions of several
// probability classifiers into one final score. Blend weights are fit
// exclusively on out-of-fold predictions; in-fold predictions never reach
// the combiner.
package stacking

import (
	"gonum.org/v1/gonum/mat"

	"github.com/riskfold/riskfold/core/model"
	"github.com/riskfold/riskfold/pkg/errors"
	"github.com/riskfold/riskfold/pkg/log"
	"github.com/riskfold/riskfold/validation"
)

// Source is one constituent model: a constructor for fresh unfitted
// instances plus the train and test feature matrices it consumes. Sources
// may see different matrices (target-encoded versus raw categorical codes)
// while sharing the same fold assignment.
type Source struct {
	Name  string
	New   func() model.ProbabilityClassifier
	Train mat.Matrix
	Test  mat.Matrix

	// OnFoldDone, when non-nil, is called after each fold finishes.
	OnFoldDone func(fold int)
}

// CVResult holds one source's cross-validation output.
type CVResult struct {
	Name string
	// OOF has one out-of-fold probability per training row.
	OOF []float64
	// Test has the fold-averaged probability per test row; nil when the
	// source has no test matrix.
	Test []float64
}

// CrossValidate trains a fresh instance of the source per fold, collecting
// out-of-fold predictions for training rows and fold-averaged predictions
// for test rows.
func CrossValidate(src Source, y []float64, folds []validation.Fold) (*CVResult, error) {
	rows, _ := src.Train.Dims()
	if rows != len(y) {
		return nil, errors.NewDimensionError("CrossValidate", len(y), rows, 0)
	}

	logger := log.GetLoggerWithName("stacking").With("model", src.Name)
	oof := make([]float64, rows)

	var testSum []float64
	var testRows int
	if src.Test != nil {
		testRows, _ = src.Test.Dims()
		testSum = make([]float64, testRows)
	}

	for f, fold := range folds {
		clf := src.New()

		XTrain, yTrain := subsetMatrix(src.Train, fold.TrainIndices), subsetLabels(y, fold.TrainIndices)
		if err := clf.Fit(XTrain, yTrain); err != nil {
			return nil, errors.Wrapf(err, "fold %d: fitting %q", f, src.Name)
		}

		heldOut, err := clf.PredictProba(subsetMatrix(src.Train, fold.TestIndices))
		if err != nil {
			return nil, errors.Wrapf(err, "fold %d: predicting held-out rows for %q", f, src.Name)
		}
		for i, idx := range fold.TestIndices {
			oof[idx] = heldOut.AtVec(i)
		}

		if src.Test != nil {
			testPred, err := clf.PredictProba(src.Test)
			if err != nil {
				return nil, errors.Wrapf(err, "fold %d: predicting test rows for %q", f, src.Name)
			}
			for i := 0; i < testRows; i++ {
				testSum[i] += testPred.AtVec(i)
			}
		}
		logger.Debug("fold complete", "fold", f, "train_rows", len(fold.TrainIndices))
		if src.OnFoldDone != nil {
			src.OnFoldDone(f)
		}
	}

	result := &CVResult{Name: src.Name, OOF: oof}
	if src.Test != nil {
		result.Test = make([]float64, testRows)
		for i := range testSum {
			result.Test[i] = testSum[i] / float64(len(folds))
		}
	}
	return result, nil
}

func subsetMatrix(X mat.Matrix, indices []int) *mat.Dense {
	_, cols := X.Dims()
	out := mat.NewDense(len(indices), cols, nil)
	for i, idx := range indices {
		for j := 0; j < cols; j++ {
			out.Set(i, j, X.At(idx, j))
		}
	}
	return out
}

func subsetLabels(y []float64, indices []int) *mat.Dense {
	out := mat.NewDense(len(indices), 1, nil)
	for i, idx := range indices {
		out.Set(i, 0, y[idx])
	}
	return out
}
