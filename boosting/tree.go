package boosting

import (
	"gonum.org/v1/gonum/mat"

	"github.com/riskfold/riskfold/pkg/errors"
)

// NodeKind distinguishes leaf, numeric-split and categorical-split nodes.
type NodeKind int

const (
	// Leaf is a terminal node carrying a value.
	Leaf NodeKind = iota
	// NumericSplit routes on featureValue <= Threshold.
	NumericSplit
	// CategoricalSplit routes left when the integer feature code is in
	// LeftCategories.
	CategoricalSplit
)

// TreeNode is a single node in a regression tree. Children are indices into
// the owning tree's node slice, -1 for none.
type TreeNode struct {
	Kind           NodeKind
	Feature        int
	Threshold      float64
	LeftCategories []int
	LeftChild      int
	RightChild     int
	LeafValue      float64
	Gain           float64
	Count          int
}

// Tree is one regression tree of the ensemble. Leaf values already include
// the learning-rate shrinkage.
type Tree struct {
	Nodes []TreeNode
}

// Predict routes one feature row through the tree.
func (t *Tree) Predict(row []float64) float64 {
	nodeIdx := 0
	for nodeIdx >= 0 && nodeIdx < len(t.Nodes) {
		node := &t.Nodes[nodeIdx]
		if node.Kind == Leaf {
			return node.LeafValue
		}

		value := row[node.Feature]
		switch node.Kind {
		case NumericSplit:
			if value <= node.Threshold {
				nodeIdx = node.LeftChild
			} else {
				nodeIdx = node.RightChild
			}
		case CategoricalSplit:
			code := int(value)
			left := false
			for _, cat := range node.LeftCategories {
				if cat == code {
					left = true
					break
				}
			}
			if left {
				nodeIdx = node.LeftChild
			} else {
				nodeIdx = node.RightChild
			}
		default:
			return 0
		}
	}
	return 0
}

// NumLeaves returns the number of leaf nodes.
func (t *Tree) NumLeaves() int {
	count := 0
	for i := range t.Nodes {
		if t.Nodes[i].Kind == Leaf {
			count++
		}
	}
	return count
}

// Model is a fitted gradient-boosted ensemble.
type Model struct {
	Trees       []Tree
	InitScore   float64
	NumFeatures int
	objective   Objective
}

// RawScores accumulates untransformed ensemble scores for each row of X.
func (m *Model) RawScores(X mat.Matrix) (*mat.VecDense, error) {
	rows, cols := X.Dims()
	if cols != m.NumFeatures {
		return nil, errors.NewDimensionError("RawScores", m.NumFeatures, cols, 1)
	}

	out := mat.NewVecDense(rows, nil)
	row := make([]float64, cols)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			row[j] = X.At(i, j)
		}
		score := m.InitScore
		for t := range m.Trees {
			score += m.Trees[t].Predict(row)
		}
		out.SetVec(i, score)
	}
	return out, nil
}

// Predict returns predictions in output space: probabilities for the binary
// objective, raw values for regression.
func (m *Model) Predict(X mat.Matrix) (*mat.VecDense, error) {
	raw, err := m.RawScores(X)
	if err != nil {
		return nil, err
	}
	for i := 0; i < raw.Len(); i++ {
		raw.SetVec(i, m.objective.Transform(raw.AtVec(i)))
	}
	return raw, nil
}

// FeatureImportance returns total split gain accumulated per feature,
// normalized to sum to 1 when any split exists.
func (m *Model) FeatureImportance() []float64 {
	gains := make([]float64, m.NumFeatures)
	total := 0.0
	for t := range m.Trees {
		for i := range m.Trees[t].Nodes {
			node := &m.Trees[t].Nodes[i]
			if node.Kind != Leaf && node.Gain > 0 {
				gains[node.Feature] += node.Gain
				total += node.Gain
			}
		}
	}
	if total > 0 {
		for i := range gains {
			gains[i] /= total
		}
	}
	return gains
}
