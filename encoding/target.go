// Package encoding turns the high-cardinality categorical columns into
// model inputs: leakage-free out-of-fold target encoding for the numeric
// trainers, and stable integer codes for the trainer that consumes raw
// categories through native categorical splits.
package encoding

import (
	"github.com/riskfold/riskfold/core/model"
	"github.com/riskfold/riskfold/pkg/errors"
	"github.com/riskfold/riskfold/pkg/log"
	"github.com/riskfold/riskfold/validation"
)

// DefaultSmoothing is the additive smoothing weight blending a category's
// mean with the global mean. Rare categories shrink toward the prior.
const DefaultSmoothing = 20.0

// categoryStat accumulates the label sum and count for one category level.
type categoryStat struct {
	sum   float64
	count float64
}

// TargetEncoder replaces a categorical column with the smoothed mean of the
// binary label conditioned on the category. During training the statistic
// for a row is computed without that row's fold, so no row's encoding ever
// derives from its own label. The per-fold mappings are materialized once at
// FitTransform and looked up thereafter.
type TargetEncoder struct {
	Column    string
	Smoothing float64

	state      *model.StateManager
	globalMean float64
	full       map[string]float64   // statistics over the whole training set
	perFold    []map[string]float64 // fold i: statistics excluding fold i
	foldMeans  []float64            // fold i: global mean excluding fold i
}

// NewTargetEncoder creates an encoder for the named column. A non-positive
// smoothing falls back to DefaultSmoothing.
func NewTargetEncoder(column string, smoothing float64) *TargetEncoder {
	if smoothing <= 0 {
		smoothing = DefaultSmoothing
	}
	return &TargetEncoder{Column: column, Smoothing: smoothing, state: model.NewStateManager()}
}

// FitTransform fits the per-fold and full-train statistics and returns the
// out-of-fold encoded value for every training row.
func (te *TargetEncoder) FitTransform(categories []string, labels []float64, folds []validation.Fold) ([]float64, error) {
	n := len(categories)
	if n == 0 {
		return nil, errors.NewValueError("TargetEncoder.FitTransform", "empty input")
	}
	if len(labels) != n {
		return nil, errors.NewDimensionError("TargetEncoder.FitTransform", n, len(labels), 0)
	}
	if len(folds) < 2 {
		return nil, errors.NewValueError("TargetEncoder.FitTransform", "need at least 2 folds")
	}

	// Full-train statistics, used at inference time.
	te.globalMean = mean(labels)
	te.full = te.smoothedStats(categories, labels, allIndices(n), te.globalMean)

	// Per-fold statistics from each fold's training rows only.
	te.perFold = make([]map[string]float64, len(folds))
	te.foldMeans = make([]float64, len(folds))
	encoded := make([]float64, n)
	for f, fold := range folds {
		foldMean := meanAt(labels, fold.TrainIndices)
		stats := te.smoothedStats(categories, labels, fold.TrainIndices, foldMean)
		te.perFold[f] = stats
		te.foldMeans[f] = foldMean

		for _, idx := range fold.TestIndices {
			if idx < 0 || idx >= n {
				return nil, errors.Newf("fold %d: index %d out of range [0,%d)", f, idx, n)
			}
			if v, ok := stats[categories[idx]]; ok {
				encoded[idx] = v
			} else {
				// Category absent from this fold's training rows.
				encoded[idx] = foldMean
			}
		}
	}

	te.state.SetFitted(1, n)
	log.GetLoggerWithName("encoding").Debug("target encoder fitted",
		"column", te.Column,
		"levels", len(te.full),
		"folds", len(folds))
	return encoded, nil
}

// Transform encodes inference rows using the full-train statistics. Unseen
// categories map to the global mean and raise an UnseenCategoryWarning.
func (te *TargetEncoder) Transform(categories []string) ([]float64, error) {
	if err := te.state.RequireFitted("TargetEncoder", "Transform"); err != nil {
		return nil, err
	}
	out := make([]float64, len(categories))
	warned := make(map[string]bool)
	for i, cat := range categories {
		if v, ok := te.full[cat]; ok {
			out[i] = v
			continue
		}
		out[i] = te.globalMean
		if !warned[cat] {
			warned[cat] = true
			errors.Warn(errors.NewUnseenCategoryWarning(te.Column, cat, te.globalMean))
		}
	}
	return out, nil
}

// FoldStatistic returns the materialized statistic for a (fold, category)
// pair, with ok=false when the category was absent from that fold's
// training rows.
func (te *TargetEncoder) FoldStatistic(fold int, category string) (float64, bool) {
	if fold < 0 || fold >= len(te.perFold) {
		return 0, false
	}
	v, ok := te.perFold[fold][category]
	return v, ok
}

// GlobalMean returns the full-train label mean.
func (te *TargetEncoder) GlobalMean() float64 { return te.globalMean }

// smoothedStats computes additive-smoothed category means over the given
// row indices: (sum + smoothing*prior) / (count + smoothing).
func (te *TargetEncoder) smoothedStats(categories []string, labels []float64, indices []int, prior float64) map[string]float64 {
	acc := make(map[string]*categoryStat)
	for _, idx := range indices {
		s, ok := acc[categories[idx]]
		if !ok {
			s = &categoryStat{}
			acc[categories[idx]] = s
		}
		s.sum += labels[idx]
		s.count++
	}
	out := make(map[string]float64, len(acc))
	for cat, s := range acc {
		out[cat] = (s.sum + te.Smoothing*prior) / (s.count + te.Smoothing)
	}
	return out
}

func allIndices(n int) []int {
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	return idx
}

func mean(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}

func meanAt(vals []float64, indices []int) float64 {
	if len(indices) == 0 {
		return 0
	}
	sum := 0.0
	for _, idx := range indices {
		sum += vals[idx]
	}
	return sum / float64(len(indices))
}
