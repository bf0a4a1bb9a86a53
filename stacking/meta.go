package stacking

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/riskfold/riskfold/core/model"
	"github.com/riskfold/riskfold/pkg/errors"
)

// MetaLearner is a binary logistic regression fit on the out-of-fold
// prediction matrix, the learned alternative to fixed blend weights. Solved
// by full-batch gradient descent with L2 regularization.
type MetaLearner struct {
	LearningRate float64
	MaxIter      int
	L2           float64
	Tol          float64

	state     *model.StateManager
	coef      []float64
	intercept float64
}

var _ model.ProbabilityClassifier = (*MetaLearner)(nil)

// NewMetaLearner creates a meta-learner with sensible defaults for inputs
// that are already probabilities in [0,1].
func NewMetaLearner() *MetaLearner {
	return &MetaLearner{
		LearningRate: 0.5,
		MaxIter:      500,
		L2:           1e-4,
		Tol:          1e-7,
		state:        model.NewStateManager(),
	}
}

// Fit estimates the logistic coefficients on X (one column per constituent
// model) and binary labels y.
func (ml *MetaLearner) Fit(X, y mat.Matrix) error {
	rows, cols := X.Dims()
	yRows, yCols := y.Dims()
	if yCols != 1 {
		return errors.NewValueError("MetaLearner.Fit", "y must be a column vector")
	}
	if yRows != rows {
		return errors.NewDimensionError("MetaLearner.Fit", rows, yRows, 0)
	}
	if rows == 0 {
		return errors.NewValueError("MetaLearner.Fit", "empty training set")
	}

	ml.coef = make([]float64, cols)
	ml.intercept = 0

	gradW := make([]float64, cols)
	prevLoss := math.Inf(1)
	for iter := 0; iter < ml.MaxIter; iter++ {
		for j := range gradW {
			gradW[j] = 0
		}
		gradB := 0.0
		loss := 0.0

		for i := 0; i < rows; i++ {
			z := ml.intercept
			for j := 0; j < cols; j++ {
				z += ml.coef[j] * X.At(i, j)
			}
			p := 1.0 / (1.0 + math.Exp(-z))
			target := y.At(i, 0)
			diff := p - target
			for j := 0; j < cols; j++ {
				gradW[j] += diff * X.At(i, j)
			}
			gradB += diff

			pc := errors.ClipProbability(p, 1e-15)
			loss += -(target*math.Log(pc) + (1-target)*math.Log(1-pc))
		}

		scale := ml.LearningRate / float64(rows)
		for j := 0; j < cols; j++ {
			ml.coef[j] -= scale * (gradW[j] + ml.L2*ml.coef[j]*float64(rows))
		}
		ml.intercept -= scale * gradB

		loss /= float64(rows)
		if math.Abs(prevLoss-loss) < ml.Tol {
			break
		}
		prevLoss = loss
	}

	ml.state.SetFitted(cols, rows)
	return nil
}

// PredictProba returns the positive-class probability per row.
func (ml *MetaLearner) PredictProba(X mat.Matrix) (*mat.VecDense, error) {
	if err := ml.state.RequireFitted("MetaLearner", "PredictProba"); err != nil {
		return nil, err
	}
	rows, cols := X.Dims()
	if cols != len(ml.coef) {
		return nil, errors.NewDimensionError("MetaLearner.PredictProba", len(ml.coef), cols, 1)
	}

	out := mat.NewVecDense(rows, nil)
	for i := 0; i < rows; i++ {
		z := ml.intercept
		for j := 0; j < cols; j++ {
			z += ml.coef[j] * X.At(i, j)
		}
		out.SetVec(i, 1.0/(1.0+math.Exp(-z)))
	}
	return out, nil
}

// Coefficients returns the fitted weights and intercept.
func (ml *MetaLearner) Coefficients() (coef []float64, intercept float64) {
	return append([]float64(nil), ml.coef...), ml.intercept
}
