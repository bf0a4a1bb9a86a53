package boosting

import (
	"math"

	"github.com/riskfold/riskfold/pkg/errors"
)

// Objective names accepted in Params.Objective.
const (
	ObjectiveBinary     = "binary"
	ObjectiveRegression = "regression"
)

// Objective supplies the first- and second-order gradients that drive tree
// growth, plus the raw-score initialization and the transform from raw score
// to output space.
type Objective interface {
	// Gradient returns dL/dscore for one sample.
	Gradient(rawScore, target float64) float64
	// Hessian returns d²L/dscore² for one sample.
	Hessian(rawScore, target float64) float64
	// Loss returns the per-sample loss, for progress logging.
	Loss(rawScore, target float64) float64
	// InitScore returns the constant raw score the ensemble starts from.
	InitScore(targets []float64) float64
	// Transform maps a raw ensemble score into the output space
	// (identity for regression, sigmoid for binary).
	Transform(rawScore float64) float64
	// Name returns the objective identifier.
	Name() string
}

// NewObjective constructs the named objective.
func NewObjective(name string) (Objective, error) {
	switch name {
	case ObjectiveBinary:
		return &binaryLogLoss{}, nil
	case ObjectiveRegression:
		return &l2Loss{}, nil
	default:
		return nil, errors.Newf("unknown objective %q", name)
	}
}

// binaryLogLoss is the binary cross-entropy objective on sigmoid-transformed
// raw scores.
type binaryLogLoss struct{}

func sigmoid(x float64) float64 {
	return 1.0 / (1.0 + math.Exp(-x))
}

func (o *binaryLogLoss) Gradient(rawScore, target float64) float64 {
	return sigmoid(rawScore) - target
}

func (o *binaryLogLoss) Hessian(rawScore, target float64) float64 {
	p := sigmoid(rawScore)
	h := p * (1 - p)
	if h < 1e-16 {
		h = 1e-16
	}
	return h
}

func (o *binaryLogLoss) Loss(rawScore, target float64) float64 {
	p := errors.ClipProbability(sigmoid(rawScore), 1e-15)
	return -(target*math.Log(p) + (1-target)*math.Log(1-p))
}

// InitScore starts from the log-odds of the base rate, so a constant-only
// ensemble already predicts the prior.
func (o *binaryLogLoss) InitScore(targets []float64) float64 {
	if len(targets) == 0 {
		return 0
	}
	pos := 0.0
	for _, t := range targets {
		pos += t
	}
	p := errors.ClipProbability(pos/float64(len(targets)), 1e-12)
	return math.Log(p / (1 - p))
}

func (o *binaryLogLoss) Transform(rawScore float64) float64 { return sigmoid(rawScore) }
func (o *binaryLogLoss) Name() string                       { return ObjectiveBinary }

// l2Loss is squared error, used by the term-imputation regressor.
type l2Loss struct{}

func (o *l2Loss) Gradient(rawScore, target float64) float64 { return rawScore - target }
func (o *l2Loss) Hessian(rawScore, target float64) float64  { return 1.0 }

func (o *l2Loss) Loss(rawScore, target float64) float64 {
	d := rawScore - target
	return 0.5 * d * d
}

func (o *l2Loss) InitScore(targets []float64) float64 {
	if len(targets) == 0 {
		return 0
	}
	sum := 0.0
	for _, t := range targets {
		sum += t
	}
	return sum / float64(len(targets))
}

func (o *l2Loss) Transform(rawScore float64) float64 { return rawScore }
func (o *l2Loss) Name() string                       { return ObjectiveRegression }
