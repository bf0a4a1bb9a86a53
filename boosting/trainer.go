package boosting

import (
	"math"
	"math/rand/v2"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/riskfold/riskfold/pkg/errors"
	"github.com/riskfold/riskfold/pkg/log"
)

// Trainer grows a gradient-boosted tree ensemble round by round. A Trainer
// is single-use: construct, Fit, then take the Model.
type Trainer struct {
	params Params

	X *mat.Dense
	y []float64

	rawScores []float64
	gradients []float64
	hessians  []float64

	trees     []Tree
	objective Objective
	initScore float64
	rng       *rand.Rand
	logger    log.Logger
}

// splitCandidate describes the best split found for one node.
type splitCandidate struct {
	feature        int
	threshold      float64
	leftCategories []int
	categorical    bool
	gain           float64
	leftCount      int
	rightCount     int
}

// NewTrainer creates a trainer with defaults applied.
func NewTrainer(params Params) *Trainer {
	params.ApplyDefaults()
	return &Trainer{
		params: params,
		rng:    rand.New(rand.NewPCG(uint64(params.Seed), uint64(params.Seed)+1)),
		logger: log.GetLoggerWithName("boosting.trainer"),
	}
}

// Fit trains the ensemble on X and the column vector y.
func (t *Trainer) Fit(X, y mat.Matrix) error {
	rows, cols := X.Dims()
	yRows, yCols := y.Dims()
	if yCols != 1 {
		return errors.NewValueError("Fit", "y must be a column vector")
	}
	if yRows != rows {
		return errors.NewDimensionError("Fit", rows, yRows, 0)
	}
	if rows == 0 {
		return errors.NewValueError("Fit", "empty training set")
	}

	t.X = mat.DenseCopyOf(X)
	t.y = make([]float64, rows)
	for i := 0; i < rows; i++ {
		t.y[i] = y.At(i, 0)
	}

	obj, err := NewObjective(t.params.Objective)
	if err != nil {
		return err
	}
	t.objective = obj
	t.initScore = obj.InitScore(t.y)

	t.rawScores = make([]float64, rows)
	for i := range t.rawScores {
		t.rawScores[i] = t.initScore
	}
	t.gradients = make([]float64, rows)
	t.hessians = make([]float64, rows)

	for round := 0; round < t.params.NumRounds; round++ {
		t.computeGradients()

		rootIndices := t.bagIndices(rows)
		features := t.sampleFeatures(cols)

		tree := Tree{}
		t.growNode(&tree, rootIndices, features, 0)
		t.trees = append(t.trees, tree)
		t.applyTree(&tree)

		if t.params.Verbosity > 0 && round%10 == 0 {
			t.logger.Debug("boosting round",
				"round", round,
				"loss", t.currentLoss(),
				"leaves", tree.NumLeaves())
		}
	}
	return nil
}

// Model returns the fitted ensemble.
func (t *Trainer) Model() *Model {
	return &Model{
		Trees:       t.trees,
		InitScore:   t.initScore,
		NumFeatures: t.X.RawMatrix().Cols,
		objective:   t.objective,
	}
}

func (t *Trainer) computeGradients() {
	for i := range t.y {
		t.gradients[i] = t.objective.Gradient(t.rawScores[i], t.y[i])
		t.hessians[i] = t.objective.Hessian(t.rawScores[i], t.y[i])
	}
}

// bagIndices samples rows without replacement at the bagging fraction.
func (t *Trainer) bagIndices(rows int) []int {
	indices := make([]int, rows)
	for i := range indices {
		indices[i] = i
	}
	if t.params.BaggingFraction >= 1.0 {
		return indices
	}
	t.rng.Shuffle(rows, func(i, j int) { indices[i], indices[j] = indices[j], indices[i] })
	n := int(float64(rows) * t.params.BaggingFraction)
	if n < 1 {
		n = 1
	}
	return indices[:n]
}

// sampleFeatures selects the feature subset considered by this round's tree.
func (t *Trainer) sampleFeatures(cols int) []int {
	features := make([]int, cols)
	for j := range features {
		features[j] = j
	}
	if t.params.FeatureFraction >= 1.0 {
		return features
	}
	t.rng.Shuffle(cols, func(i, j int) { features[i], features[j] = features[j], features[i] })
	n := int(float64(cols) * t.params.FeatureFraction)
	if n < 1 {
		n = 1
	}
	return features[:n]
}

// growNode recursively builds the tree and returns the new node's index.
func (t *Trainer) growNode(tree *Tree, indices, features []int, depth int) int {
	nodeIdx := len(tree.Nodes)

	if t.shouldStop(tree, indices, depth) {
		tree.Nodes = append(tree.Nodes, t.makeLeaf(indices))
		return nodeIdx
	}

	best := t.findBestSplit(indices, features)
	if best.gain <= t.params.MinGainToSplit ||
		best.leftCount < t.params.MinDataInLeaf ||
		best.rightCount < t.params.MinDataInLeaf {
		tree.Nodes = append(tree.Nodes, t.makeLeaf(indices))
		return nodeIdx
	}

	node := TreeNode{
		Feature:    best.feature,
		Threshold:  best.threshold,
		Gain:       best.gain,
		Count:      len(indices),
		LeftChild:  -1,
		RightChild: -1,
	}
	var left, right []int
	if best.categorical {
		node.Kind = CategoricalSplit
		node.LeftCategories = best.leftCategories
		left, right = t.partitionCategorical(indices, best.feature, best.leftCategories)
	} else {
		node.Kind = NumericSplit
		left, right = t.partitionNumeric(indices, best.feature, best.threshold)
	}
	tree.Nodes = append(tree.Nodes, node)

	leftIdx := t.growNode(tree, left, features, depth+1)
	rightIdx := t.growNode(tree, right, features, depth+1)
	tree.Nodes[nodeIdx].LeftChild = leftIdx
	tree.Nodes[nodeIdx].RightChild = rightIdx
	return nodeIdx
}

func (t *Trainer) shouldStop(tree *Tree, indices []int, depth int) bool {
	if t.params.MaxDepth > 0 && depth >= t.params.MaxDepth {
		return true
	}
	if len(indices) < 2*t.params.MinDataInLeaf {
		return true
	}
	return tree.NumLeaves() >= t.params.NumLeaves-1
}

// makeLeaf computes the shrunken optimal leaf value with L1/L2
// regularization, as in the LightGBM leaf formula.
func (t *Trainer) makeLeaf(indices []int) TreeNode {
	sumGrad, sumHess := 0.0, 0.0
	for _, idx := range indices {
		sumGrad += t.gradients[idx]
		sumHess += t.hessians[idx]
	}
	value := -thresholdL1(sumGrad, t.params.Alpha) / (sumHess + t.params.Lambda + 1e-10)
	return TreeNode{
		Kind:       Leaf,
		LeafValue:  value * t.params.LearningRate,
		LeftChild:  -1,
		RightChild: -1,
		Count:      len(indices),
	}
}

func thresholdL1(grad, alpha float64) float64 {
	if alpha <= 0 {
		return grad
	}
	if grad > alpha {
		return grad - alpha
	}
	if grad < -alpha {
		return grad + alpha
	}
	return 0
}

func (t *Trainer) findBestSplit(indices, features []int) splitCandidate {
	best := splitCandidate{gain: math.Inf(-1)}
	for _, feature := range features {
		var cand splitCandidate
		if t.params.IsCategorical(feature) {
			cand = t.bestCategoricalSplit(indices, feature)
		} else {
			cand = t.bestNumericSplit(indices, feature)
		}
		if cand.gain > best.gain {
			best = cand
		}
	}
	return best
}

// bestNumericSplit scans sorted feature values and evaluates every distinct
// split point by second-order gain.
func (t *Trainer) bestNumericSplit(indices []int, feature int) splitCandidate {
	type entry struct {
		value float64
		idx   int
	}
	values := make([]entry, len(indices))
	for i, idx := range indices {
		values[i] = entry{value: t.X.At(idx, feature), idx: idx}
	}
	sort.Slice(values, func(i, j int) bool { return values[i].value < values[j].value })

	totalGrad, totalHess := 0.0, 0.0
	for _, idx := range indices {
		totalGrad += t.gradients[idx]
		totalHess += t.hessians[idx]
	}

	best := splitCandidate{feature: feature, gain: math.Inf(-1)}
	leftGrad, leftHess := 0.0, 0.0
	for i := 0; i < len(values)-1; i++ {
		leftGrad += t.gradients[values[i].idx]
		leftHess += t.hessians[values[i].idx]
		if values[i].value == values[i+1].value {
			continue
		}

		leftCount := i + 1
		rightCount := len(values) - leftCount
		if leftCount < t.params.MinDataInLeaf || rightCount < t.params.MinDataInLeaf {
			continue
		}

		gain := t.splitGain(leftGrad, leftHess, totalGrad-leftGrad, totalHess-leftHess, totalGrad, totalHess)
		if gain > best.gain {
			best.gain = gain
			best.threshold = (values[i].value + values[i+1].value) / 2
			best.leftCount = leftCount
			best.rightCount = rightCount
		}
	}
	return best
}

// bestCategoricalSplit orders categories by gradient/hessian ratio and scans
// prefixes, the "ordered" statistics-based categorical algorithm. CatSmooth
// dampens the ratio of rare categories so they do not dominate the ordering.
func (t *Trainer) bestCategoricalSplit(indices []int, feature int) splitCandidate {
	type catStat struct {
		category int
		count    int
		sumGrad  float64
		sumHess  float64
	}
	stats := make(map[int]*catStat)
	totalGrad, totalHess := 0.0, 0.0
	for _, idx := range indices {
		code := int(t.X.At(idx, feature))
		s, ok := stats[code]
		if !ok {
			s = &catStat{category: code}
			stats[code] = s
		}
		s.count++
		s.sumGrad += t.gradients[idx]
		s.sumHess += t.hessians[idx]
		totalGrad += t.gradients[idx]
		totalHess += t.hessians[idx]
	}

	ordered := make([]*catStat, 0, len(stats))
	for _, s := range stats {
		ordered = append(ordered, s)
	}
	sort.Slice(ordered, func(i, j int) bool {
		ri := ordered[i].sumGrad / (ordered[i].sumHess + t.params.CatSmooth)
		rj := ordered[j].sumGrad / (ordered[j].sumHess + t.params.CatSmooth)
		if ri == rj {
			return ordered[i].category < ordered[j].category
		}
		return ri < rj
	})

	best := splitCandidate{feature: feature, categorical: true, gain: math.Inf(-1)}
	leftGrad, leftHess := 0.0, 0.0
	leftCount := 0
	for i := 0; i < len(ordered)-1; i++ {
		leftGrad += ordered[i].sumGrad
		leftHess += ordered[i].sumHess
		leftCount += ordered[i].count

		rightCount := len(indices) - leftCount
		if leftCount < t.params.MinDataInLeaf || rightCount < t.params.MinDataInLeaf {
			continue
		}

		gain := t.splitGain(leftGrad, leftHess, totalGrad-leftGrad, totalHess-leftHess, totalGrad, totalHess)
		if gain > best.gain {
			cats := make([]int, i+1)
			for k := 0; k <= i; k++ {
				cats[k] = ordered[k].category
			}
			best.gain = gain
			best.leftCategories = cats
			best.leftCount = leftCount
			best.rightCount = rightCount
		}
	}
	return best
}

// splitGain is the second-order gain formula with L2 regularization.
func (t *Trainer) splitGain(leftGrad, leftHess, rightGrad, rightHess, totalGrad, totalHess float64) float64 {
	lambda := t.params.Lambda
	left := leftGrad * leftGrad / (leftHess + lambda)
	right := rightGrad * rightGrad / (rightHess + lambda)
	total := totalGrad * totalGrad / (totalHess + lambda)
	return 0.5 * (left + right - total)
}

func (t *Trainer) partitionNumeric(indices []int, feature int, threshold float64) ([]int, []int) {
	var left, right []int
	for _, idx := range indices {
		if t.X.At(idx, feature) <= threshold {
			left = append(left, idx)
		} else {
			right = append(right, idx)
		}
	}
	return left, right
}

func (t *Trainer) partitionCategorical(indices []int, feature int, leftCategories []int) ([]int, []int) {
	leftSet := make(map[int]bool, len(leftCategories))
	for _, cat := range leftCategories {
		leftSet[cat] = true
	}
	var left, right []int
	for _, idx := range indices {
		if leftSet[int(t.X.At(idx, feature))] {
			left = append(left, idx)
		} else {
			right = append(right, idx)
		}
	}
	return left, right
}

// applyTree folds the new tree into the cached raw scores, so gradients for
// the next round reflect the whole ensemble without re-walking every tree.
func (t *Trainer) applyTree(tree *Tree) {
	rows, cols := t.X.Dims()
	row := make([]float64, cols)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			row[j] = t.X.At(i, j)
		}
		t.rawScores[i] += tree.Predict(row)
	}
}

func (t *Trainer) currentLoss() float64 {
	sum := 0.0
	for i := range t.y {
		sum += t.objective.Loss(t.rawScores[i], t.y[i])
	}
	return sum / float64(len(t.y))
}
