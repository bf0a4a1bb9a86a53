// Package metrics implements the binary-classification evaluation metrics
// used by the pipeline: ROC-AUC, log-loss, accuracy and the ROC curve points
// exposed as a reporting artifact.
package metrics

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/riskfold/riskfold/pkg/errors"
)

// ROCAUC computes the area under the ROC curve by the rank statistic
// (Mann-Whitney U), with average ranks for tied scores. When only one class
// is present the metric is undefined; 0.5 is returned along with an
// UndefinedMetricWarning.
func ROCAUC(yTrue, yScore *mat.VecDense) (float64, error) {
	n, err := checkPair("ROCAUC", yTrue, yScore)
	if err != nil {
		return 0, err
	}

	nPos := 0
	for i := 0; i < n; i++ {
		switch yTrue.AtVec(i) {
		case 0:
		case 1:
			nPos++
		default:
			return 0, errors.NewValueError("ROCAUC", "labels must be 0 or 1")
		}
	}
	nNeg := n - nPos
	if nPos == 0 || nNeg == 0 {
		errors.Warn(errors.NewUndefinedMetricWarning("ROCAUC", "only one class is present", 0.5))
		return 0.5, nil
	}

	type scored struct {
		score float64
		label float64
	}
	pairs := make([]scored, n)
	for i := 0; i < n; i++ {
		pairs[i] = scored{score: yScore.AtVec(i), label: yTrue.AtVec(i)}
	}
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].score < pairs[j].score })

	// Average ranks over tied score groups, then Mann-Whitney U.
	rankSumPos := 0.0
	i := 0
	for i < n {
		j := i
		for j < n && pairs[j].score == pairs[i].score {
			j++
		}
		avgRank := float64(i+j+1) / 2 // ranks are 1-based
		for k := i; k < j; k++ {
			if pairs[k].label == 1 {
				rankSumPos += avgRank
			}
		}
		i = j
	}

	u := rankSumPos - float64(nPos)*float64(nPos+1)/2
	return u / (float64(nPos) * float64(nNeg)), nil
}

// LogLoss computes the mean binary cross-entropy. Probabilities are clipped
// to [eps, 1-eps] so zero and one predictions stay finite; pass eps <= 0 for
// the default 1e-15.
func LogLoss(yTrue, yProb *mat.VecDense, eps float64) (float64, error) {
	n, err := checkPair("LogLoss", yTrue, yProb)
	if err != nil {
		return 0, err
	}
	if eps <= 0 {
		eps = 1e-15
	}

	sum := 0.0
	for i := 0; i < n; i++ {
		y := yTrue.AtVec(i)
		if y != 0 && y != 1 {
			return 0, errors.NewValueError("LogLoss", "labels must be 0 or 1")
		}
		p := errors.ClipProbability(yProb.AtVec(i), eps)
		sum += -(y*math.Log(p) + (1-y)*math.Log(1-p))
	}
	return sum / float64(n), nil
}

// Accuracy computes the fraction of correct binary decisions after
// thresholding the probabilities.
func Accuracy(yTrue, yProb *mat.VecDense, threshold float64) (float64, error) {
	n, err := checkPair("Accuracy", yTrue, yProb)
	if err != nil {
		return 0, err
	}

	correct := 0
	for i := 0; i < n; i++ {
		pred := 0.0
		if yProb.AtVec(i) >= threshold {
			pred = 1.0
		}
		if pred == yTrue.AtVec(i) {
			correct++
		}
	}
	return float64(correct) / float64(n), nil
}

func checkPair(op string, yTrue, yPred *mat.VecDense) (int, error) {
	if yTrue == nil || yPred == nil || yTrue.Len() == 0 {
		return 0, errors.NewValueError(op, "empty input vector")
	}
	n := yTrue.Len()
	if yPred.Len() != n {
		return 0, errors.NewDimensionError(op, n, yPred.Len(), 0)
	}
	return n, nil
}
