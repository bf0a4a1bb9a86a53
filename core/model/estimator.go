// Package model defines the estimator capabilities shared across the
// pipeline. The three gradient-boosting trainers, the term imputer and the
// stacking meta-learner all expose their behavior through these interfaces,
// so the stacker can treat any probability source uniformly.
package model

import "gonum.org/v1/gonum/mat"

// Fitter is a model that can be trained on a feature matrix and target.
type Fitter interface {
	Fit(X, y mat.Matrix) error
}

// Predictor produces point predictions for a feature matrix.
type Predictor interface {
	Predict(X mat.Matrix) (*mat.VecDense, error)
}

// ProbabilityClassifier is the single capability the stacking combiner
// depends on: given features and binary labels, produce calibrated
// positive-class probabilities.
type ProbabilityClassifier interface {
	Fitter
	// PredictProba returns the positive-class probability for each row.
	PredictProba(X mat.Matrix) (*mat.VecDense, error)
}

// Regressor is a model producing continuous predictions.
type Regressor interface {
	Fitter
	Predictor
}
