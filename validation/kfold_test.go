package validation

import (
	"math"
	"testing"
)

func labels(n int, positiveRate float64) []float64 {
	y := make([]float64, n)
	nPos := int(float64(n) * positiveRate)
	for i := 0; i < nPos; i++ {
		y[i] = 1
	}
	return y
}

func TestKFoldPartition(t *testing.T) {
	y := labels(103, 0.3)
	kf := NewKFold(5, true, 42)

	folds, err := kf.Split(y)
	if err != nil {
		t.Fatalf("Split: %v", err)
	}
	if len(folds) != 5 {
		t.Fatalf("got %d folds, want 5", len(folds))
	}

	assignment, err := FoldOf(folds, len(y))
	if err != nil {
		t.Fatalf("FoldOf: %v", err)
	}
	for i, f := range assignment {
		if f < 0 || f >= 5 {
			t.Errorf("row %d assigned to fold %d", i, f)
		}
	}

	for i, fold := range folds {
		if len(fold.TrainIndices)+len(fold.TestIndices) != len(y) {
			t.Errorf("fold %d: train+test = %d, want %d",
				i, len(fold.TrainIndices)+len(fold.TestIndices), len(y))
		}
	}
}

func TestStratifiedKFoldBalance(t *testing.T) {
	y := labels(200, 0.25)
	skf := NewStratifiedKFold(4, true, 7)

	folds, err := skf.Split(y)
	if err != nil {
		t.Fatalf("Split: %v", err)
	}

	for i, fold := range folds {
		pos := 0
		for _, idx := range fold.TestIndices {
			if y[idx] == 1 {
				pos++
			}
		}
		rate := float64(pos) / float64(len(fold.TestIndices))
		if math.Abs(rate-0.25) > 0.05 {
			t.Errorf("fold %d: positive rate %.3f, want ~0.25", i, rate)
		}
	}
}

func TestStratifiedKFoldDeterministic(t *testing.T) {
	y := labels(60, 0.5)
	a, err := NewStratifiedKFold(3, true, 11).Split(y)
	if err != nil {
		t.Fatalf("Split: %v", err)
	}
	b, err := NewStratifiedKFold(3, true, 11).Split(y)
	if err != nil {
		t.Fatalf("Split: %v", err)
	}
	for i := range a {
		if len(a[i].TestIndices) != len(b[i].TestIndices) {
			t.Fatalf("fold %d sizes differ", i)
		}
		for j := range a[i].TestIndices {
			if a[i].TestIndices[j] != b[i].TestIndices[j] {
				t.Fatalf("fold %d differs at position %d", i, j)
			}
		}
	}
}

func TestSplitArgValidation(t *testing.T) {
	if _, err := NewKFold(1, false, 0).Split(labels(10, 0.5)); err == nil {
		t.Error("expected error for nSplits < 2")
	}
	if _, err := NewStratifiedKFold(5, false, 0).Split(labels(3, 0.5)); err == nil {
		t.Error("expected error for n < nSplits")
	}
}
