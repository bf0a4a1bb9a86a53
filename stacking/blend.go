package stacking

import (
	"gonum.org/v1/gonum/mat"

	"github.com/riskfold/riskfold/metrics"
	"github.com/riskfold/riskfold/pkg/errors"
	"github.com/riskfold/riskfold/pkg/log"
)

// DefaultBlendIterations is the number of greedy selection rounds used when
// fitting blend weights.
const DefaultBlendIterations = 100

// Blend is a fixed convex combination of constituent predictions.
type Blend struct {
	Names   []string
	Weights []float64
}

// FitBlend learns non-negative blend weights summing to one by greedy
// ensemble selection with replacement: start from the single model with the
// lowest out-of-fold log-loss, then repeatedly add whichever model most
// improves the blended loss. Because the search starts at the best
// constituent and only accepts improvements, the blend never scores worse
// than the best single model on the data it is fit on.
func FitBlend(names []string, oof [][]float64, labels []float64, iterations int) (*Blend, error) {
	m := len(oof)
	if m == 0 {
		return nil, errors.NewValueError("FitBlend", "no constituent predictions")
	}
	if len(names) != m {
		return nil, errors.NewDimensionError("FitBlend", m, len(names), 0)
	}
	n := len(labels)
	for i, preds := range oof {
		if len(preds) != n {
			return nil, errors.NewDimensionError("FitBlend", n, len(preds), i)
		}
	}
	if iterations <= 0 {
		iterations = DefaultBlendIterations
	}

	yVec := mat.NewVecDense(n, append([]float64(nil), labels...))
	lossOf := func(preds []float64) (float64, error) {
		return metrics.LogLoss(yVec, mat.NewVecDense(n, append([]float64(nil), preds...)), 0)
	}

	// Seed with the best single model.
	best := 0
	bestLoss, err := lossOf(oof[0])
	if err != nil {
		return nil, err
	}
	for i := 1; i < m; i++ {
		loss, err := lossOf(oof[i])
		if err != nil {
			return nil, err
		}
		if loss < bestLoss {
			best, bestLoss = i, loss
		}
	}

	counts := make([]int, m)
	counts[best] = 1
	blended := append([]float64(nil), oof[best]...)
	total := 1

	candidate := make([]float64, n)
	for iter := 0; iter < iterations; iter++ {
		bestAdd := -1
		bestAddLoss := bestLoss
		for i := 0; i < m; i++ {
			// Blend of (total) current picks plus one pick of model i.
			for r := 0; r < n; r++ {
				candidate[r] = (blended[r]*float64(total) + oof[i][r]) / float64(total+1)
			}
			loss, err := lossOf(candidate)
			if err != nil {
				return nil, err
			}
			if loss < bestAddLoss {
				bestAdd, bestAddLoss = i, loss
			}
		}
		if bestAdd == -1 {
			break
		}
		for r := 0; r < n; r++ {
			blended[r] = (blended[r]*float64(total) + oof[bestAdd][r]) / float64(total+1)
		}
		counts[bestAdd]++
		total++
		bestLoss = bestAddLoss
	}

	weights := make([]float64, m)
	for i, c := range counts {
		weights[i] = float64(c) / float64(total)
	}
	log.GetLoggerWithName("stacking").Info("blend fitted",
		"weights", weights, "oof_logloss", bestLoss)
	return &Blend{Names: append([]string(nil), names...), Weights: weights}, nil
}

// Apply combines constituent predictions with the learned weights.
func (b *Blend) Apply(preds [][]float64) ([]float64, error) {
	if len(preds) != len(b.Weights) {
		return nil, errors.NewDimensionError("Blend.Apply", len(b.Weights), len(preds), 0)
	}
	if len(preds) == 0 {
		return nil, errors.NewValueError("Blend.Apply", "no predictions")
	}
	n := len(preds[0])
	out := make([]float64, n)
	for i, p := range preds {
		if len(p) != n {
			return nil, errors.NewDimensionError("Blend.Apply", n, len(p), i)
		}
		w := b.Weights[i]
		for r := 0; r < n; r++ {
			out[r] += w * p[r]
		}
	}
	return out, nil
}
