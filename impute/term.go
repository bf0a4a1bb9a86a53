// Package impute fills the loan_term column, which is absent from the
// competition table. A small regressor is fit on an external reference
// dataset where terms are known, then applied to the target table, so every
// row carries a term before amortization features are derived.
package impute

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/riskfold/riskfold/boosting"
	"github.com/riskfold/riskfold/core/model"
	"github.com/riskfold/riskfold/dataset"
	"github.com/riskfold/riskfold/pkg/errors"
	"github.com/riskfold/riskfold/pkg/log"
)

// featureColumns are the attributes the imputation model maps to a term.
var featureColumns = []string{dataset.ColLoanAmount, dataset.ColInterestRate}

// TermImputer learns loan_term from {loan_amount, interest_rate} on a
// reference table and predicts a term for every target row. Predictions are
// snapped to the nearest term observed during fitting, so the imputer never
// fabricates a term and never fails on out-of-distribution rows.
type TermImputer struct {
	params boosting.Params

	state     *model.StateManager
	regressor *boosting.Regressor
	terms     []float64 // sorted distinct terms seen in the reference table
}

// NewTermImputer creates an imputer backed by a small boosting regressor.
// Zero-valued params fall back to compact defaults suited to the two-feature
// mapping.
func NewTermImputer(params boosting.Params) *TermImputer {
	if params.NumRounds == 0 {
		params.NumRounds = 50
	}
	if params.NumLeaves == 0 {
		params.NumLeaves = 7
	}
	if params.MaxDepth == 0 {
		params.MaxDepth = 3
	}
	if params.MinDataInLeaf == 0 {
		params.MinDataInLeaf = 5
	}
	return &TermImputer{params: params, state: model.NewStateManager()}
}

// Fit trains the imputation model on the external reference table. The target
// table's labels are never consulted.
func (ti *TermImputer) Fit(reference *dataset.Table) error {
	required := append(append([]string{}, featureColumns...), dataset.ColLoanTerm)
	if err := reference.RequireColumns(required...); err != nil {
		return errors.Wrap(err, "fitting term imputer")
	}

	X, err := reference.Matrix(featureColumns...)
	if err != nil {
		return err
	}
	termCol, err := reference.Column(dataset.ColLoanTerm)
	if err != nil {
		return err
	}

	seen := make(map[float64]bool)
	for _, v := range termCol {
		seen[v] = true
	}
	ti.terms = make([]float64, 0, len(seen))
	for v := range seen {
		ti.terms = append(ti.terms, v)
	}
	sort.Float64s(ti.terms)
	if len(ti.terms) == 0 {
		return errors.NewValueError("TermImputer.Fit", "reference table has no term values")
	}

	y := mat.NewDense(len(termCol), 1, nil)
	for i, v := range termCol {
		y.Set(i, 0, v)
	}

	ti.regressor = boosting.NewRegressor("term_imputer", ti.params)
	if err := ti.regressor.Fit(X, y); err != nil {
		return err
	}
	ti.state.SetFitted(len(featureColumns), reference.NumRows())

	log.GetLoggerWithName("impute").Info("term imputer fitted",
		"reference_rows", reference.NumRows(),
		"distinct_terms", len(ti.terms))
	return nil
}

// Terms returns the sorted distinct terms learned from the reference table.
func (ti *TermImputer) Terms() []float64 {
	out := make([]float64, len(ti.terms))
	copy(out, ti.terms)
	return out
}

// Predict returns one term per target row, each snapped to the nearest
// learned term value.
func (ti *TermImputer) Predict(target *dataset.Table) ([]float64, error) {
	if err := ti.state.RequireFitted("TermImputer", "Predict"); err != nil {
		return nil, err
	}
	if err := target.RequireColumns(featureColumns...); err != nil {
		return nil, errors.Wrap(err, "imputing terms")
	}

	X, err := target.Matrix(featureColumns...)
	if err != nil {
		return nil, err
	}
	raw, err := ti.regressor.Predict(X)
	if err != nil {
		return nil, err
	}

	out := make([]float64, raw.Len())
	for i := range out {
		out[i] = ti.nearestTerm(raw.AtVec(i))
	}
	return out, nil
}

// Impute predicts terms and appends them as the loan_term column.
func (ti *TermImputer) Impute(target *dataset.Table) error {
	terms, err := ti.Predict(target)
	if err != nil {
		return err
	}
	return target.AddColumn(dataset.ColLoanTerm, terms)
}

func (ti *TermImputer) nearestTerm(v float64) float64 {
	best := ti.terms[0]
	bestDist := math.Abs(v - best)
	for _, term := range ti.terms[1:] {
		if d := math.Abs(v - term); d < bestDist {
			best = term
			bestDist = d
		}
	}
	return best
}
