// Package pipeline wires the full loan repayment workflow: term imputation,
// feature derivation, fold-aware target encoding, three gradient-boosting
// trainers under a shared stratified split, and the stacking combiner. Each
// stage is a deterministic batch transform; a run either completes a stage
// or fails it, with no retries.
package pipeline

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/riskfold/riskfold/boosting"
	"github.com/riskfold/riskfold/core/model"
	"github.com/riskfold/riskfold/dataset"
	"github.com/riskfold/riskfold/encoding"
	"github.com/riskfold/riskfold/features"
	"github.com/riskfold/riskfold/impute"
	"github.com/riskfold/riskfold/metrics"
	"github.com/riskfold/riskfold/pkg/errors"
	"github.com/riskfold/riskfold/pkg/log"
	"github.com/riskfold/riskfold/stacking"
	"github.com/riskfold/riskfold/validation"
)

// Model names used in results and logs.
const (
	ModelEncodedA = "gbt_encoded_a"
	ModelEncodedB = "gbt_encoded_b"
	ModelRawCat   = "gbt_raw_categorical"
	ModelBlend    = "blend"
)

// Config controls one pipeline run.
type Config struct {
	Folds           int     `mapstructure:"folds"`
	Seed            int     `mapstructure:"seed"`
	Smoothing       float64 `mapstructure:"smoothing"`
	Threshold       float64 `mapstructure:"threshold"`
	BlendIterations int     `mapstructure:"blend_iterations"`
	UseMetaLearner  bool    `mapstructure:"use_meta_learner"`

	TrainerA boosting.Params `mapstructure:"trainer_a"`
	TrainerB boosting.Params `mapstructure:"trainer_b"`
	TrainerC boosting.Params `mapstructure:"trainer_c"`

	// OnFoldDone, when set, is invoked after every (model, fold) unit of
	// work; the CLI uses it to advance a progress bar.
	OnFoldDone func(modelName string, fold int) `mapstructure:"-"`
}

// DefaultConfig returns the tuned configuration: trainer A shallow with many
// rounds, trainer B deeper with stronger regularization, trainer C on raw
// categorical codes with native categorical splits.
func DefaultConfig() Config {
	return Config{
		Folds:           5,
		Seed:            42,
		Smoothing:       encoding.DefaultSmoothing,
		Threshold:       0.5,
		BlendIterations: stacking.DefaultBlendIterations,
		TrainerA: boosting.Params{
			NumRounds:     200,
			LearningRate:  0.05,
			NumLeaves:     31,
			MaxDepth:      5,
			MinDataInLeaf: 20,
			Seed:          42,
		},
		TrainerB: boosting.Params{
			NumRounds:       300,
			LearningRate:    0.03,
			NumLeaves:       63,
			MaxDepth:        8,
			MinDataInLeaf:   40,
			Lambda:          5.0,
			Alpha:           1.0,
			FeatureFraction: 0.8,
			BaggingFraction: 0.8,
			Seed:            43,
		},
		TrainerC: boosting.Params{
			NumRounds:     200,
			LearningRate:  0.05,
			NumLeaves:     31,
			MaxDepth:      6,
			MinDataInLeaf: 20,
			CatSmooth:     10,
			Seed:          44,
		},
	}
}

// ModelScore is one constituent's out-of-fold evaluation.
type ModelScore struct {
	Name string
	AUC  float64
}

// FeatureImportance pairs a feature name with its normalized gain.
type FeatureImportance struct {
	Name string
	Gain float64
}

// Result is the output of a pipeline run.
type Result struct {
	// TestIDs and TestProbs form the submission, probabilities in [0,1].
	TestIDs   []string
	TestProbs []float64
	// Decisions are the thresholded binary calls for the test rows.
	Decisions []int

	// OOF holds each constituent's out-of-fold predictions, keyed by
	// model name.
	OOF map[string][]float64
	// Scores holds per-model and blended OOF ROC-AUC.
	Scores []ModelScore
	// Weights are the fitted blend weights (empty with the meta-learner).
	Weights []float64

	// Reporting artifacts.
	Importance []FeatureImportance
	ROC        []metrics.ROCPoint
}

// Run executes the pipeline. train must carry the applicant schema plus the
// label; test the applicant schema plus the row identifier; reference the
// imputer's {loan_amount, interest_rate, loan_term} schema. The imputed term,
// derived features and encoded columns are appended to train and test in
// place.
func Run(train, test, reference *dataset.Table, cfg Config) (*Result, error) {
	logger := log.GetLoggerWithName("pipeline")

	if err := validateSchemas(train, test); err != nil {
		return nil, err
	}

	// Stage 1: term imputation from the external reference table.
	imputer := impute.NewTermImputer(boosting.Params{Seed: cfg.Seed})
	if err := imputer.Fit(reference); err != nil {
		return nil, errors.Wrap(err, "stage 1: term imputation")
	}
	for _, tbl := range []*dataset.Table{train, test} {
		if tbl.HasColumn(dataset.ColLoanTerm) {
			continue
		}
		if err := imputer.Impute(tbl); err != nil {
			return nil, errors.Wrap(err, "stage 1: term imputation")
		}
	}

	// Stage 2: derived financial features, identical for both tables.
	if err := features.Derive(train); err != nil {
		return nil, errors.Wrap(err, "stage 2: feature derivation")
	}
	if err := features.Derive(test); err != nil {
		return nil, errors.Wrap(err, "stage 2: feature derivation")
	}

	labels, err := train.Column(dataset.ColLabel)
	if err != nil {
		return nil, err
	}

	// Stage 3: shared stratified fold assignment.
	folds, err := validation.NewStratifiedKFold(cfg.Folds, true, cfg.Seed).Split(labels)
	if err != nil {
		return nil, errors.Wrap(err, "stage 3: fold assignment")
	}

	// Stage 4: fold-aware target encoding and categorical codes.
	encodedCols, codeCols, err := encodeCategoricals(train, test, labels, folds, cfg.Smoothing)
	if err != nil {
		return nil, errors.Wrap(err, "stage 4: categorical encoding")
	}

	baseCols := append(append([]string{}, dataset.ApplicantColumns...), dataset.ColLoanTerm)
	baseCols = append(baseCols, features.DerivedColumns...)

	numericCols := append(append([]string{}, baseCols...), encodedCols...)
	rawCatCols := append(append([]string{}, baseCols...), codeCols...)
	catIndices := make([]int, len(codeCols))
	for i := range codeCols {
		catIndices[i] = len(baseCols) + i
	}

	XNumTrain, err := train.Matrix(numericCols...)
	if err != nil {
		return nil, err
	}
	XNumTest, err := test.Matrix(numericCols...)
	if err != nil {
		return nil, err
	}
	XCatTrain, err := train.Matrix(rawCatCols...)
	if err != nil {
		return nil, err
	}
	XCatTest, err := test.Matrix(rawCatCols...)
	if err != nil {
		return nil, err
	}

	paramsC := cfg.TrainerC
	paramsC.CategoricalFeatures = catIndices

	sources := []stacking.Source{
		{
			Name:  ModelEncodedA,
			New:   classifierFactory(ModelEncodedA, cfg.TrainerA),
			Train: XNumTrain,
			Test:  XNumTest,
		},
		{
			Name:  ModelEncodedB,
			New:   classifierFactory(ModelEncodedB, cfg.TrainerB),
			Train: XNumTrain,
			Test:  XNumTest,
		},
		{
			Name:  ModelRawCat,
			New:   classifierFactory(ModelRawCat, paramsC),
			Train: XCatTrain,
			Test:  XCatTest,
		},
	}

	// Stage 5: per-model cross-validated training.
	result := &Result{OOF: make(map[string][]float64, len(sources))}
	yVec := mat.NewVecDense(len(labels), append([]float64(nil), labels...))
	oofMatrix := make([][]float64, 0, len(sources))
	testMatrix := make([][]float64, 0, len(sources))
	names := make([]string, 0, len(sources))

	for _, src := range sources {
		src.OnFoldDone = foldCallback(cfg, src.Name)
		cv, err := stacking.CrossValidate(src, labels, folds)
		if err != nil {
			return nil, errors.Wrap(err, "stage 5: cross-validated training")
		}
		auc, err := metrics.ROCAUC(yVec, mat.NewVecDense(len(cv.OOF), append([]float64(nil), cv.OOF...)))
		if err != nil {
			return nil, err
		}
		logger.Info("constituent trained", "model", src.Name, "oof_auc", auc)

		result.OOF[src.Name] = cv.OOF
		result.Scores = append(result.Scores, ModelScore{Name: src.Name, AUC: auc})
		oofMatrix = append(oofMatrix, cv.OOF)
		testMatrix = append(testMatrix, cv.Test)
		names = append(names, src.Name)
	}

	// Stage 6: stacking on out-of-fold predictions only.
	blendedOOF, blendedTest, weights, err := combine(cfg, names, oofMatrix, testMatrix, labels)
	if err != nil {
		return nil, errors.Wrap(err, "stage 6: stacking")
	}
	result.Weights = weights

	blendAUC, err := metrics.ROCAUC(yVec, mat.NewVecDense(len(blendedOOF), append([]float64(nil), blendedOOF...)))
	if err != nil {
		return nil, err
	}
	result.Scores = append(result.Scores, ModelScore{Name: ModelBlend, AUC: blendAUC})
	logger.Info("blend evaluated", "oof_auc", blendAUC)

	// Stage 7: reporting artifacts and submission rows.
	result.ROC, err = metrics.ROCCurve(yVec, mat.NewVecDense(len(blendedOOF), append([]float64(nil), blendedOOF...)))
	if err != nil {
		return nil, err
	}
	result.Importance, err = fullTrainImportance(cfg, XNumTrain, labels, numericCols)
	if err != nil {
		return nil, err
	}

	result.TestIDs, err = rowIdentifiers(test)
	if err != nil {
		return nil, err
	}
	result.TestProbs = blendedTest
	result.Decisions = make([]int, len(blendedTest))
	for i, p := range blendedTest {
		if p >= cfg.Threshold {
			result.Decisions[i] = 1
		}
	}
	return result, nil
}

func validateSchemas(train, test *dataset.Table) error {
	trainCols := append(append([]string{}, dataset.ApplicantColumns...), dataset.CategoricalColumns...)
	trainCols = append(trainCols, dataset.ColLabel)
	if err := train.RequireColumns(trainCols...); err != nil {
		return err
	}
	testCols := append(append([]string{}, dataset.ApplicantColumns...), dataset.CategoricalColumns...)
	testCols = append(testCols, dataset.ColID)
	return test.RequireColumns(testCols...)
}

// encodeCategoricals appends, per categorical column, an OOF target-encoded
// column to both tables and an integer-code column for the raw-categorical
// trainer. It returns the new column names.
func encodeCategoricals(train, test *dataset.Table, labels []float64, folds []validation.Fold, smoothing float64) (encodedCols, codeCols []string, err error) {
	for _, col := range dataset.CategoricalColumns {
		trainCats, err := train.StringColumn(col)
		if err != nil {
			return nil, nil, err
		}
		testCats, err := test.StringColumn(col)
		if err != nil {
			return nil, nil, err
		}

		te := encoding.NewTargetEncoder(col, smoothing)
		trainEnc, err := te.FitTransform(trainCats, labels, folds)
		if err != nil {
			return nil, nil, err
		}
		testEnc, err := te.Transform(testCats)
		if err != nil {
			return nil, nil, err
		}
		encName := col + "_target_enc"
		if err := train.AddColumn(encName, trainEnc); err != nil {
			return nil, nil, err
		}
		if err := test.AddColumn(encName, testEnc); err != nil {
			return nil, nil, err
		}
		encodedCols = append(encodedCols, encName)

		ci := encoding.NewCategoryIndexer(col)
		trainCodes, err := ci.FitTransform(trainCats)
		if err != nil {
			return nil, nil, err
		}
		testCodes, err := ci.Transform(testCats)
		if err != nil {
			return nil, nil, err
		}
		codeName := col + "_code"
		if err := train.AddColumn(codeName, trainCodes); err != nil {
			return nil, nil, err
		}
		if err := test.AddColumn(codeName, testCodes); err != nil {
			return nil, nil, err
		}
		codeCols = append(codeCols, codeName)
	}
	return encodedCols, codeCols, nil
}

func classifierFactory(name string, params boosting.Params) func() model.ProbabilityClassifier {
	return func() model.ProbabilityClassifier {
		return boosting.NewClassifier(name, params)
	}
}

func foldCallback(cfg Config, name string) func(int) {
	if cfg.OnFoldDone == nil {
		return nil
	}
	return func(fold int) { cfg.OnFoldDone(name, fold) }
}

// combine fits either the greedy blend or the logistic meta-learner on the
// OOF predictions and applies it to both OOF and test predictions.
func combine(cfg Config, names []string, oof, test [][]float64, labels []float64) (blendedOOF, blendedTest, weights []float64, err error) {
	if cfg.UseMetaLearner {
		n, m := len(labels), len(oof)
		X := mat.NewDense(n, m, nil)
		y := mat.NewDense(n, 1, nil)
		for i := 0; i < n; i++ {
			for j := 0; j < m; j++ {
				X.Set(i, j, oof[j][i])
			}
			y.Set(i, 0, labels[i])
		}
		ml := stacking.NewMetaLearner()
		if err := ml.Fit(X, y); err != nil {
			return nil, nil, nil, err
		}

		oofProbs, err := ml.PredictProba(X)
		if err != nil {
			return nil, nil, nil, err
		}
		nTest := len(test[0])
		XTest := mat.NewDense(nTest, m, nil)
		for i := 0; i < nTest; i++ {
			for j := 0; j < m; j++ {
				XTest.Set(i, j, test[j][i])
			}
		}
		testProbs, err := ml.PredictProba(XTest)
		if err != nil {
			return nil, nil, nil, err
		}
		return vecToSlice(oofProbs), vecToSlice(testProbs), nil, nil
	}

	blend, err := stacking.FitBlend(names, oof, labels, cfg.BlendIterations)
	if err != nil {
		return nil, nil, nil, err
	}
	blendedOOF, err = blend.Apply(oof)
	if err != nil {
		return nil, nil, nil, err
	}
	blendedTest, err = blend.Apply(test)
	if err != nil {
		return nil, nil, nil, err
	}
	return blendedOOF, blendedTest, blend.Weights, nil
}

// fullTrainImportance fits trainer A on the whole training set to extract
// the feature-importance ranking exposed in reports.
func fullTrainImportance(cfg Config, X *mat.Dense, labels []float64, cols []string) ([]FeatureImportance, error) {
	clf := boosting.NewClassifier(ModelEncodedA, cfg.TrainerA)
	y := mat.NewDense(len(labels), 1, append([]float64(nil), labels...))
	if err := clf.Fit(X, y); err != nil {
		return nil, err
	}
	gains, err := clf.FeatureImportance()
	if err != nil {
		return nil, err
	}
	out := make([]FeatureImportance, len(cols))
	for i, col := range cols {
		out[i] = FeatureImportance{Name: col, Gain: gains[i]}
	}
	return out, nil
}

func rowIdentifiers(test *dataset.Table) ([]string, error) {
	if ids, err := test.StringColumn(dataset.ColID); err == nil {
		return ids, nil
	}
	vals, err := test.Column(dataset.ColID)
	if err != nil {
		return nil, err
	}
	out := make([]string, len(vals))
	for i, v := range vals {
		out[i] = fmt.Sprintf("%d", int64(v))
	}
	return out, nil
}

func vecToSlice(v *mat.VecDense) []float64 {
	out := make([]float64, v.Len())
	for i := range out {
		out[i] = v.AtVec(i)
	}
	return out
}
