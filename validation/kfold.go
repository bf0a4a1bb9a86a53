// Package validation provides the cross-validation splitters that drive the
// out-of-fold discipline: target encoding, per-model OOF predictions and the
// stacking combiner all share one fold assignment produced here.
package validation

import (
	"math/rand/v2"

	"github.com/riskfold/riskfold/pkg/errors"
)

// Fold holds the train/test index partition for one cross-validation fold.
// TestIndices are the held-out rows; TrainIndices are everything else.
type Fold struct {
	TrainIndices []int
	TestIndices  []int
}

// Splitter assigns every row to exactly one held-out fold.
type Splitter interface {
	Split(y []float64) ([]Fold, error)
	NSplits() int
}

// KFold is a plain k-fold splitter with optional shuffling.
type KFold struct {
	nSplits int
	shuffle bool
	seed    int
}

// NewKFold creates a k-fold splitter. Fewer than 2 splits is rejected at
// Split time.
func NewKFold(nSplits int, shuffle bool, seed int) *KFold {
	return &KFold{nSplits: nSplits, shuffle: shuffle, seed: seed}
}

// NSplits returns the number of folds.
func (kf *KFold) NSplits() int { return kf.nSplits }

// Split partitions indices [0, len(y)) into folds. y is accepted for
// interface symmetry; plain k-fold ignores the values.
func (kf *KFold) Split(y []float64) ([]Fold, error) {
	n := len(y)
	if err := checkSplitArgs(kf.nSplits, n); err != nil {
		return nil, err
	}

	indices := make([]int, n)
	for i := range indices {
		indices[i] = i
	}
	if kf.shuffle {
		r := rand.New(rand.NewPCG(uint64(kf.seed), uint64(kf.seed)))
		r.Shuffle(n, func(i, j int) { indices[i], indices[j] = indices[j], indices[i] })
	}

	folds := make([]Fold, kf.nSplits)
	foldSize := n / kf.nSplits
	remainder := n % kf.nSplits

	cur := 0
	for i := 0; i < kf.nSplits; i++ {
		testSize := foldSize
		if i < remainder {
			testSize++
		}
		folds[i].TestIndices = append([]int(nil), indices[cur:cur+testSize]...)
		cur += testSize
	}
	fillTrainIndices(folds, n)
	return folds, nil
}

// StratifiedKFold preserves the label distribution within every fold.
// Training rows are stratified on the binary repayment label so each fold
// sees the same positive rate.
type StratifiedKFold struct {
	nSplits int
	shuffle bool
	seed    int
}

// NewStratifiedKFold creates a stratified k-fold splitter.
func NewStratifiedKFold(nSplits int, shuffle bool, seed int) *StratifiedKFold {
	return &StratifiedKFold{nSplits: nSplits, shuffle: shuffle, seed: seed}
}

// NSplits returns the number of folds.
func (skf *StratifiedKFold) NSplits() int { return skf.nSplits }

// Split partitions rows into folds, distributing each label class evenly.
func (skf *StratifiedKFold) Split(y []float64) ([]Fold, error) {
	n := len(y)
	if err := checkSplitArgs(skf.nSplits, n); err != nil {
		return nil, err
	}

	classIndices := make(map[float64][]int)
	var classOrder []float64
	for i, label := range y {
		if _, seen := classIndices[label]; !seen {
			classOrder = append(classOrder, label)
		}
		classIndices[label] = append(classIndices[label], i)
	}

	if skf.shuffle {
		r := rand.New(rand.NewPCG(uint64(skf.seed), uint64(skf.seed)))
		for _, label := range classOrder {
			indices := classIndices[label]
			r.Shuffle(len(indices), func(i, j int) {
				indices[i], indices[j] = indices[j], indices[i]
			})
		}
	}

	folds := make([]Fold, skf.nSplits)
	for _, label := range classOrder {
		indices := classIndices[label]
		nClass := len(indices)
		foldSize := nClass / skf.nSplits
		remainder := nClass % skf.nSplits

		cur := 0
		for i := 0; i < skf.nSplits; i++ {
			testSize := foldSize
			if i < remainder {
				testSize++
			}
			for j := 0; j < testSize && cur < nClass; j++ {
				folds[i].TestIndices = append(folds[i].TestIndices, indices[cur])
				cur++
			}
		}
	}
	fillTrainIndices(folds, n)
	return folds, nil
}

// FoldOf returns, for each row, the index of the fold holding it out.
// This is the materialized fold assignment the target encoder looks up.
func FoldOf(folds []Fold, n int) ([]int, error) {
	assignment := make([]int, n)
	for i := range assignment {
		assignment[i] = -1
	}
	for f, fold := range folds {
		for _, idx := range fold.TestIndices {
			if idx < 0 || idx >= n {
				return nil, errors.Newf("fold %d: index %d out of range [0,%d)", f, idx, n)
			}
			if assignment[idx] != -1 {
				return nil, errors.Newf("row %d assigned to folds %d and %d", idx, assignment[idx], f)
			}
			assignment[idx] = f
		}
	}
	for i, f := range assignment {
		if f == -1 {
			return nil, errors.Newf("row %d is not held out by any fold", i)
		}
	}
	return assignment, nil
}

func checkSplitArgs(nSplits, n int) error {
	if nSplits < 2 {
		return errors.NewValueError("Split", "number of splits must be at least 2")
	}
	if n < nSplits {
		return errors.NewValueError("Split", "fewer samples than splits")
	}
	return nil
}

func fillTrainIndices(folds []Fold, n int) {
	for i := range folds {
		testSet := make(map[int]bool, len(folds[i].TestIndices))
		for _, idx := range folds[i].TestIndices {
			testSet[idx] = true
		}
		train := make([]int, 0, n-len(folds[i].TestIndices))
		for j := 0; j < n; j++ {
			if !testSet[j] {
				train = append(train, j)
			}
		}
		folds[i].TrainIndices = train
	}
}
