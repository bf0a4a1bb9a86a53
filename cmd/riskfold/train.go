package main

import (
	"fmt"
	"os"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/riskfold/riskfold/dataset"
	"github.com/riskfold/riskfold/pipeline"
	"github.com/riskfold/riskfold/pkg/log"
	"github.com/riskfold/riskfold/report"
)

func trainCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "train",
		Short: "Train the model stack and score the test set",
		Long: `Train runs the full pipeline: loan-term imputation from the reference
table, feature derivation, fold-aware target encoding, three boosters under
one stratified split, and the out-of-fold blend. The scored test rows are
written as a submission CSV.`,
		RunE: runTrain,
	}

	cmd.Flags().String("train", "", "training CSV with applicant columns and the label (required)")
	cmd.Flags().String("test", "", "test CSV with applicant columns and the row identifier (required)")
	cmd.Flags().String("reference", "", "reference CSV with loan_amount, interest_rate and loan_term (required)")
	cmd.Flags().String("out", "submission.csv", "output path for the submission CSV")
	cmd.Flags().Int("folds", 5, "number of stratified folds")
	cmd.Flags().Float64("threshold", 0.5, "probability threshold for the binary decision column")
	cmd.Flags().Float64("smoothing", 20, "additive smoothing strength for target encoding")
	cmd.Flags().Int("seed", 42, "random seed for fold shuffling and bagging")
	cmd.Flags().Bool("meta", false, "stack with a logistic meta-learner instead of the greedy blend")
	cmd.Flags().String("roc-plot", "", "optional path for a ROC curve image of the blended OOF predictions")
	cmd.Flags().String("importance-plot", "", "optional path for a feature-importance bar chart")
	cmd.Flags().Bool("no-progress", false, "disable the progress bar")

	_ = cmd.MarkFlagRequired("train")
	_ = cmd.MarkFlagRequired("test")
	_ = cmd.MarkFlagRequired("reference")

	_ = viper.BindPFlag("train.folds", cmd.Flags().Lookup("folds"))
	_ = viper.BindPFlag("train.threshold", cmd.Flags().Lookup("threshold"))
	_ = viper.BindPFlag("train.smoothing", cmd.Flags().Lookup("smoothing"))
	_ = viper.BindPFlag("train.seed", cmd.Flags().Lookup("seed"))

	return cmd
}

func runTrain(cmd *cobra.Command, _ []string) error {
	logger := log.GetLoggerWithName("cli")

	trainPath, _ := cmd.Flags().GetString("train")
	testPath, _ := cmd.Flags().GetString("test")
	refPath, _ := cmd.Flags().GetString("reference")
	outPath, _ := cmd.Flags().GetString("out")

	trainTbl, err := dataset.ReadCSVFile("train", trainPath)
	if err != nil {
		return err
	}
	testTbl, err := dataset.ReadCSVFile("test", testPath)
	if err != nil {
		return err
	}
	refTbl, err := dataset.ReadCSVFile("reference", refPath)
	if err != nil {
		return err
	}
	logger.Info("tables loaded",
		"train_rows", trainTbl.NumRows(),
		"test_rows", testTbl.NumRows(),
		"reference_rows", refTbl.NumRows())

	cfg := pipeline.DefaultConfig()
	cfg.Folds = viper.GetInt("train.folds")
	cfg.Threshold = viper.GetFloat64("train.threshold")
	cfg.Smoothing = viper.GetFloat64("train.smoothing")
	cfg.Seed = viper.GetInt("train.seed")
	cfg.UseMetaLearner, _ = cmd.Flags().GetBool("meta")

	if noProgress, _ := cmd.Flags().GetBool("no-progress"); !noProgress {
		bar := progressbar.NewOptions(3*cfg.Folds,
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionShowCount(),
			progressbar.OptionShowElapsedTimeOnFinish(),
			progressbar.OptionSetWidth(40),
			progressbar.OptionSetDescription("Training folds..."),
			progressbar.OptionOnCompletion(func() {
				fmt.Fprintln(os.Stderr)
			}),
		)
		cfg.OnFoldDone = func(string, int) { _ = bar.Add(1) }
	}

	res, err := pipeline.Run(trainTbl, testTbl, refTbl, cfg)
	if err != nil {
		return err
	}

	if err := report.WriteScores(cmd.OutOrStdout(), res.Scores); err != nil {
		return err
	}

	if err := pipeline.WriteSubmissionFile(outPath, res); err != nil {
		return err
	}
	logger.Info("submission written", "path", outPath, "rows", len(res.TestIDs))

	if rocPath, _ := cmd.Flags().GetString("roc-plot"); rocPath != "" {
		blendAUC := res.Scores[len(res.Scores)-1].AUC
		if err := report.SaveROCPlot(res.ROC, blendAUC, rocPath); err != nil {
			return err
		}
		logger.Info("ROC plot written", "path", rocPath)
	}
	if impPath, _ := cmd.Flags().GetString("importance-plot"); impPath != "" {
		ranked := report.RankImportance(res.Importance)
		names := make([]string, len(ranked))
		gains := make([]float64, len(ranked))
		for i, fi := range ranked {
			names[i] = fi.Name
			gains[i] = fi.Gain
		}
		if err := report.SaveImportancePlot(names, gains, impPath); err != nil {
			return err
		}
		logger.Info("importance plot written", "path", impPath)
	}

	return nil
}
