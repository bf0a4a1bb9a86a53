package boosting

import (
	"math"
	"math/rand/v2"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/riskfold/riskfold/metrics"
)

// syntheticBinary builds a linearly separable-ish problem: label is 1 when
// x0 + x1 exceeds a threshold, with mild noise on the features.
func syntheticBinary(n int, seed uint64) (*mat.Dense, *mat.Dense) {
	r := rand.New(rand.NewPCG(seed, seed+1))
	X := mat.NewDense(n, 3, nil)
	y := mat.NewDense(n, 1, nil)
	for i := 0; i < n; i++ {
		x0 := r.Float64()
		x1 := r.Float64()
		x2 := r.Float64() // pure noise feature
		X.Set(i, 0, x0)
		X.Set(i, 1, x1)
		X.Set(i, 2, x2)
		if x0+x1 > 1.0 {
			y.Set(i, 0, 1)
		}
	}
	return X, y
}

func TestClassifierLearnsSeparableProblem(t *testing.T) {
	X, y := syntheticBinary(400, 5)

	clf := NewClassifier("test", Params{
		NumRounds:     50,
		LearningRate:  0.1,
		NumLeaves:     15,
		MaxDepth:      4,
		MinDataInLeaf: 10,
		Seed:          5,
	})
	if err := clf.Fit(X, y); err != nil {
		t.Fatalf("Fit: %v", err)
	}

	probs, err := clf.PredictProba(X)
	if err != nil {
		t.Fatalf("PredictProba: %v", err)
	}
	for i := 0; i < probs.Len(); i++ {
		p := probs.AtVec(i)
		if p < 0 || p > 1 || math.IsNaN(p) {
			t.Fatalf("probability out of range at row %d: %v", i, p)
		}
	}

	yTrue := mat.NewVecDense(400, nil)
	for i := 0; i < 400; i++ {
		yTrue.SetVec(i, y.At(i, 0))
	}
	auc, err := metrics.ROCAUC(yTrue, probs)
	if err != nil {
		t.Fatalf("ROCAUC: %v", err)
	}
	if auc < 0.95 {
		t.Errorf("training AUC = %.4f, want >= 0.95", auc)
	}
}

func TestRegressorRecoversMean(t *testing.T) {
	// Two clusters in feature space with targets 36 and 60.
	n := 200
	X := mat.NewDense(n, 2, nil)
	y := mat.NewDense(n, 1, nil)
	for i := 0; i < n; i++ {
		if i < n/2 {
			X.Set(i, 0, float64(i%50))
			X.Set(i, 1, 5)
			y.Set(i, 0, 36)
		} else {
			X.Set(i, 0, 1000+float64(i%50))
			X.Set(i, 1, 15)
			y.Set(i, 0, 60)
		}
	}

	reg := NewRegressor("term", Params{
		NumRounds:     30,
		LearningRate:  0.2,
		NumLeaves:     7,
		MaxDepth:      3,
		MinDataInLeaf: 5,
	})
	if err := reg.Fit(X, y); err != nil {
		t.Fatalf("Fit: %v", err)
	}

	preds, err := reg.Predict(X)
	if err != nil {
		t.Fatalf("Predict: %v", err)
	}
	for i := 0; i < n; i++ {
		want := y.At(i, 0)
		if math.Abs(preds.AtVec(i)-want) > 6 {
			t.Fatalf("row %d: predicted %.2f, want near %v", i, preds.AtVec(i), want)
		}
	}
}

func TestCategoricalSplits(t *testing.T) {
	// Feature 0 is a categorical code; codes 0 and 1 are positive-heavy,
	// codes 2 and 3 negative-heavy. Feature 1 is noise.
	n := 240
	r := rand.New(rand.NewPCG(9, 10))
	X := mat.NewDense(n, 2, nil)
	y := mat.NewDense(n, 1, nil)
	for i := 0; i < n; i++ {
		code := i % 4
		X.Set(i, 0, float64(code))
		X.Set(i, 1, r.Float64())
		if code < 2 {
			y.Set(i, 0, 1)
		}
	}

	clf := NewClassifier("cat", Params{
		NumRounds:           20,
		LearningRate:        0.3,
		NumLeaves:           7,
		MaxDepth:            3,
		MinDataInLeaf:       10,
		CategoricalFeatures: []int{0},
	})
	if err := clf.Fit(X, y); err != nil {
		t.Fatalf("Fit: %v", err)
	}

	probs, err := clf.PredictProba(X)
	if err != nil {
		t.Fatalf("PredictProba: %v", err)
	}
	for i := 0; i < n; i++ {
		p := probs.AtVec(i)
		if y.At(i, 0) == 1 && p < 0.7 {
			t.Fatalf("row %d (positive category): p = %.3f, want > 0.7", i, p)
		}
		if y.At(i, 0) == 0 && p > 0.3 {
			t.Fatalf("row %d (negative category): p = %.3f, want < 0.3", i, p)
		}
	}
}

func TestPredictBeforeFit(t *testing.T) {
	clf := NewClassifier("unfit", Params{})
	if _, err := clf.PredictProba(mat.NewDense(1, 2, []float64{1, 2})); err == nil {
		t.Error("expected NotFittedError")
	}
}

func TestFeatureImportanceNormalized(t *testing.T) {
	X, y := syntheticBinary(300, 21)
	clf := NewClassifier("imp", Params{
		NumRounds:     20,
		NumLeaves:     7,
		MaxDepth:      3,
		MinDataInLeaf: 10,
	})
	if err := clf.Fit(X, y); err != nil {
		t.Fatalf("Fit: %v", err)
	}

	imp, err := clf.FeatureImportance()
	if err != nil {
		t.Fatalf("FeatureImportance: %v", err)
	}
	sum := 0.0
	for _, v := range imp {
		if v < 0 {
			t.Fatalf("negative importance: %v", imp)
		}
		sum += v
	}
	if math.Abs(sum-1.0) > 1e-9 {
		t.Errorf("importance sum = %v, want 1", sum)
	}
	// The informative features must outrank the noise column.
	if imp[2] > imp[0] || imp[2] > imp[1] {
		t.Errorf("noise feature ranked above informative features: %v", imp)
	}
}
