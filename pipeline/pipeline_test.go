package pipeline

import (
	"bytes"
	"fmt"
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/riskfold/riskfold/boosting"
	"github.com/riskfold/riskfold/dataset"
	"github.com/riskfold/riskfold/features"
	rferrors "github.com/riskfold/riskfold/pkg/errors"
)

// syntheticTables builds a reference table with two term clusters and
// train/test applicant tables whose label depends on credit score and
// debt-to-income, so the trained models have real signal to find.
func syntheticTables(t *testing.T, nTrain, nTest int) (train, test, reference *dataset.Table) {
	t.Helper()
	rng := rand.New(rand.NewPCG(7, 0))

	reference = dataset.NewTable("reference", 200)
	refAmount := make([]float64, 200)
	refRate := make([]float64, 200)
	refTerm := make([]float64, 200)
	for i := range refAmount {
		if i%2 == 0 {
			refAmount[i] = 4000 + rng.Float64()*3000
			refRate[i] = 5 + rng.Float64()*4
			refTerm[i] = 36
		} else {
			refAmount[i] = 18000 + rng.Float64()*8000
			refRate[i] = 12 + rng.Float64()*5
			refTerm[i] = 60
		}
	}
	require.NoError(t, reference.AddColumn(dataset.ColLoanAmount, refAmount))
	require.NoError(t, reference.AddColumn(dataset.ColInterestRate, refRate))
	require.NoError(t, reference.AddColumn(dataset.ColLoanTerm, refTerm))

	statuses := []string{"employed", "self_employed", "unemployed"}
	grades := []string{"A1", "B2", "C3", "D4"}

	build := func(name string, n int, withLabel, withID bool) *dataset.Table {
		tbl := dataset.NewTable(name, n)
		amount := make([]float64, n)
		rate := make([]float64, n)
		income := make([]float64, n)
		dti := make([]float64, n)
		score := make([]float64, n)
		status := make([]string, n)
		grade := make([]string, n)
		label := make([]float64, n)
		ids := make([]float64, n)
		for i := 0; i < n; i++ {
			amount[i] = 2000 + rng.Float64()*25000
			rate[i] = 4 + rng.Float64()*14
			income[i] = 25000 + rng.Float64()*90000
			dti[i] = rng.Float64() * 0.6
			score[i] = 450 + rng.Float64()*400
			status[i] = statuses[rng.IntN(len(statuses))]
			grade[i] = grades[rng.IntN(len(grades))]
			ids[i] = float64(i + 1)

			signal := (score[i]-650)/400 - dti[i] + 0.1*rng.NormFloat64()
			if signal > 0 {
				label[i] = 1
			}
		}
		require.NoError(t, tbl.AddColumn(dataset.ColLoanAmount, amount))
		require.NoError(t, tbl.AddColumn(dataset.ColInterestRate, rate))
		require.NoError(t, tbl.AddColumn(dataset.ColAnnualIncome, income))
		require.NoError(t, tbl.AddColumn(dataset.ColDebtToIncome, dti))
		require.NoError(t, tbl.AddColumn(dataset.ColCreditScore, score))
		require.NoError(t, tbl.AddStringColumn(dataset.ColEmploymentStatus, status))
		require.NoError(t, tbl.AddStringColumn(dataset.ColGradeSubgrade, grade))
		if withLabel {
			require.NoError(t, tbl.AddColumn(dataset.ColLabel, label))
		}
		if withID {
			require.NoError(t, tbl.AddColumn(dataset.ColID, ids))
		}
		return tbl
	}

	train = build("train", nTrain, true, false)
	test = build("test", nTest, false, true)
	return train, test, reference
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.Folds = 3
	small := boosting.Params{
		NumRounds:     40,
		LearningRate:  0.1,
		NumLeaves:     7,
		MaxDepth:      4,
		MinDataInLeaf: 5,
	}
	cfg.TrainerA = small
	cfg.TrainerB = small
	cfg.TrainerB.Lambda = 2
	cfg.TrainerB.Seed = 9
	cfg.TrainerC = small
	cfg.TrainerC.Seed = 11
	return cfg
}

func TestRunEndToEnd(t *testing.T) {
	train, test, reference := syntheticTables(t, 300, 80)
	cfg := testConfig()

	var foldsSeen int
	cfg.OnFoldDone = func(string, int) { foldsSeen++ }

	res, err := Run(train, test, reference, cfg)
	require.NoError(t, err)

	assert.Equal(t, 3*cfg.Folds, foldsSeen)
	assert.Len(t, res.TestIDs, 80)
	assert.Len(t, res.TestProbs, 80)
	assert.Len(t, res.Decisions, 80)
	for i, p := range res.TestProbs {
		assert.GreaterOrEqual(t, p, 0.0)
		assert.LessOrEqual(t, p, 1.0)
		want := 0
		if p >= cfg.Threshold {
			want = 1
		}
		assert.Equal(t, want, res.Decisions[i])
	}

	require.Len(t, res.OOF, 3)
	for name, oof := range res.OOF {
		assert.Len(t, oof, 300, "oof length for %s", name)
	}

	// Constituents plus the blend.
	require.Len(t, res.Scores, 4)
	byName := map[string]float64{}
	for _, s := range res.Scores {
		byName[s.Name] = s.AUC
	}
	assert.Greater(t, byName[ModelBlend], 0.7, "blend OOF AUC")

	// The blend must not trail its best constituent.
	best := 0.0
	for _, name := range []string{ModelEncodedA, ModelEncodedB, ModelRawCat} {
		if byName[name] > best {
			best = byName[name]
		}
	}
	assert.GreaterOrEqual(t, byName[ModelBlend], best-1e-9)

	assert.NotEmpty(t, res.ROC)
	wantFeatures := len(dataset.ApplicantColumns) + 1 + len(features.DerivedColumns) + len(dataset.CategoricalColumns)
	assert.Len(t, res.Importance, wantFeatures)
}

func TestRunWithMetaLearner(t *testing.T) {
	train, test, reference := syntheticTables(t, 300, 40)
	cfg := testConfig()
	cfg.UseMetaLearner = true

	res, err := Run(train, test, reference, cfg)
	require.NoError(t, err)

	assert.Empty(t, res.Weights)
	assert.Len(t, res.TestProbs, 40)
	for _, p := range res.TestProbs {
		assert.GreaterOrEqual(t, p, 0.0)
		assert.LessOrEqual(t, p, 1.0)
	}
}

func TestRunRejectsMissingColumns(t *testing.T) {
	train, test, reference := syntheticTables(t, 60, 10)

	bad := dataset.NewTable("train", 60)
	cols, _ := train.Column(dataset.ColLoanAmount)
	require.NoError(t, bad.AddColumn(dataset.ColLoanAmount, cols))

	_, err := Run(bad, test, reference, testConfig())
	require.Error(t, err)
	var schemaErr *rferrors.SchemaError
	assert.True(t, rferrors.As(err, &schemaErr))
}

func TestWriteSubmission(t *testing.T) {
	res := &Result{
		TestIDs:   []string{"10", "11", "12"},
		TestProbs: []float64{0.91, 0.32, 0.65},
		Decisions: []int{1, 0, 1},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteSubmission(&buf, res))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, fmt.Sprintf("%s,%s,decision", dataset.ColID, dataset.ColLabel), lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "10,0.91"))

	res.Decisions = res.Decisions[:2]
	require.Error(t, WriteSubmission(&buf, res))
}
