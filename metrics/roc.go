package metrics

import (
	"sort"

	"gonum.org/v1/gonum/mat"
)

// ROCPoint is one operating point of the ROC curve.
type ROCPoint struct {
	Threshold float64
	FPR       float64
	TPR       float64
}

// ROCCurve returns the ROC operating points in decreasing-threshold order,
// one point per distinct score, bracketed by the (0,0) and (1,1) endpoints.
// The points are a reporting artifact; the modeling logic only consumes the
// scalar AUC.
func ROCCurve(yTrue, yScore *mat.VecDense) ([]ROCPoint, error) {
	n, err := checkPair("ROCCurve", yTrue, yScore)
	if err != nil {
		return nil, err
	}

	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	sort.Slice(idx, func(a, b int) bool {
		return yScore.AtVec(idx[a]) > yScore.AtVec(idx[b])
	})

	nPos, nNeg := 0.0, 0.0
	for i := 0; i < n; i++ {
		if yTrue.AtVec(i) == 1 {
			nPos++
		} else {
			nNeg++
		}
	}

	points := []ROCPoint{{Threshold: 1.0, FPR: 0, TPR: 0}}
	tp, fp := 0.0, 0.0
	for i := 0; i < n; {
		threshold := yScore.AtVec(idx[i])
		for i < n && yScore.AtVec(idx[i]) == threshold {
			if yTrue.AtVec(idx[i]) == 1 {
				tp++
			} else {
				fp++
			}
			i++
		}
		points = append(points, ROCPoint{
			Threshold: threshold,
			FPR:       safeRate(fp, nNeg),
			TPR:       safeRate(tp, nPos),
		})
	}
	last := points[len(points)-1]
	if last.FPR != 1 || last.TPR != 1 {
		points = append(points, ROCPoint{Threshold: 0, FPR: 1, TPR: 1})
	}
	return points, nil
}

func safeRate(num, denom float64) float64 {
	if denom == 0 {
		return 0
	}
	return num / denom
}
