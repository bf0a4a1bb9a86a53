package boosting

import (
	"math"
	"testing"
)

func TestBinaryLogLossGradients(t *testing.T) {
	obj, err := NewObjective(ObjectiveBinary)
	if err != nil {
		t.Fatalf("NewObjective: %v", err)
	}

	// At raw score 0 the probability is 0.5.
	if g := obj.Gradient(0, 1); math.Abs(g-(-0.5)) > 1e-12 {
		t.Errorf("gradient(0, 1) = %v, want -0.5", g)
	}
	if g := obj.Gradient(0, 0); math.Abs(g-0.5) > 1e-12 {
		t.Errorf("gradient(0, 0) = %v, want 0.5", g)
	}
	if h := obj.Hessian(0, 1); math.Abs(h-0.25) > 1e-12 {
		t.Errorf("hessian(0) = %v, want 0.25", h)
	}

	// Hessian stays positive even at extreme scores.
	if h := obj.Hessian(100, 1); h <= 0 {
		t.Errorf("hessian(100) = %v, want > 0", h)
	}
}

func TestBinaryInitScoreIsLogOdds(t *testing.T) {
	obj, _ := NewObjective(ObjectiveBinary)
	targets := []float64{1, 1, 1, 0} // base rate 0.75
	got := obj.InitScore(targets)
	want := math.Log(0.75 / 0.25)
	if math.Abs(got-want) > 1e-12 {
		t.Errorf("InitScore = %v, want %v", got, want)
	}
	if p := obj.Transform(got); math.Abs(p-0.75) > 1e-12 {
		t.Errorf("Transform(InitScore) = %v, want 0.75", p)
	}
}

func TestL2Objective(t *testing.T) {
	obj, err := NewObjective(ObjectiveRegression)
	if err != nil {
		t.Fatalf("NewObjective: %v", err)
	}
	if g := obj.Gradient(3, 1); g != 2 {
		t.Errorf("gradient = %v, want 2", g)
	}
	if h := obj.Hessian(3, 1); h != 1 {
		t.Errorf("hessian = %v, want 1", h)
	}
	if s := obj.InitScore([]float64{36, 60}); s != 48 {
		t.Errorf("InitScore = %v, want 48", s)
	}
	if v := obj.Transform(48); v != 48 {
		t.Errorf("Transform must be identity, got %v", v)
	}
}

func TestUnknownObjective(t *testing.T) {
	if _, err := NewObjective("poisson"); err == nil {
		t.Error("expected error for unknown objective")
	}
}
