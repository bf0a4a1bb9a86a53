package boosting

import (
	"gonum.org/v1/gonum/mat"

	"github.com/riskfold/riskfold/core/model"
	"github.com/riskfold/riskfold/pkg/errors"
)

// Classifier is a binary gradient-boosting classifier exposing the
// ProbabilityClassifier capability the stacking combiner consumes.
type Classifier struct {
	Name   string
	params Params

	state *model.StateManager
	model *Model
}

var _ model.ProbabilityClassifier = (*Classifier)(nil)

// NewClassifier creates a classifier with the given hyperparameters. The
// objective is forced to binary.
func NewClassifier(name string, params Params) *Classifier {
	params.Objective = ObjectiveBinary
	return &Classifier{Name: name, params: params, state: model.NewStateManager()}
}

// Clone returns an unfitted copy with the same hyperparameters, for per-fold
// retraining.
func (c *Classifier) Clone() *Classifier {
	return NewClassifier(c.Name, c.params)
}

// Fit trains the ensemble on binary labels in y.
func (c *Classifier) Fit(X, y mat.Matrix) error {
	rows, cols := X.Dims()
	trainer := NewTrainer(c.params)
	if err := trainer.Fit(X, y); err != nil {
		return errors.Wrapf(err, "fitting classifier %q", c.Name)
	}
	c.model = trainer.Model()
	c.state.SetFitted(cols, rows)
	return nil
}

// PredictProba returns the positive-class probability per row.
func (c *Classifier) PredictProba(X mat.Matrix) (*mat.VecDense, error) {
	if err := c.state.RequireFitted(c.Name, "PredictProba"); err != nil {
		return nil, err
	}
	return c.model.Predict(X)
}

// FeatureImportance returns normalized split-gain importance per feature.
func (c *Classifier) FeatureImportance() ([]float64, error) {
	if err := c.state.RequireFitted(c.Name, "FeatureImportance"); err != nil {
		return nil, err
	}
	return c.model.FeatureImportance(), nil
}

// Regressor is a gradient-boosting regressor. The term imputer uses one to
// learn loan terms from the external reference table.
type Regressor struct {
	Name   string
	params Params

	state *model.StateManager
	model *Model
}

var _ model.Regressor = (*Regressor)(nil)

// NewRegressor creates a regressor with the given hyperparameters. The
// objective is forced to L2 regression.
func NewRegressor(name string, params Params) *Regressor {
	params.Objective = ObjectiveRegression
	return &Regressor{Name: name, params: params, state: model.NewStateManager()}
}

// Fit trains the ensemble on continuous targets in y.
func (r *Regressor) Fit(X, y mat.Matrix) error {
	rows, cols := X.Dims()
	trainer := NewTrainer(r.params)
	if err := trainer.Fit(X, y); err != nil {
		return errors.Wrapf(err, "fitting regressor %q", r.Name)
	}
	r.model = trainer.Model()
	r.state.SetFitted(cols, rows)
	return nil
}

// Predict returns continuous predictions per row.
func (r *Regressor) Predict(X mat.Matrix) (*mat.VecDense, error) {
	if err := r.state.RequireFitted(r.Name, "Predict"); err != nil {
		return nil, err
	}
	return r.model.Predict(X)
}
