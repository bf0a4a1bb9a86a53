// Package riskfold predicts loan repayment probabilities with a stack of
// gradient-boosted decision trees.
//
// The pipeline has seven stages: loan-term imputation from an external
// reference table, derivation of payment and risk features, fold-aware
// target encoding of the categorical columns, three boosters trained under
// one shared stratified split, a blend fit only on out-of-fold predictions,
// evaluation, and submission writing.
//
// # Packages
//
//   - dataset: CSV loading and the column-oriented Table
//   - impute: loan-term regression from the reference table
//   - features: derived payment and risk features
//   - encoding: out-of-fold target encoding and categorical codes
//   - boosting: the gradient-boosted tree trainer
//   - validation: stratified K-fold splitting
//   - metrics: ROC-AUC, log loss and ROC curves
//   - stacking: cross-validated training and the OOF blend
//   - pipeline: end-to-end orchestration and submission output
//   - report: score tables, ROC and importance plots
//
// # Quick Start
//
// Train from the command line:
//
//	riskfold train --train train.csv --test test.csv \
//	    --reference lending.csv --out submission.csv
//
// Or drive the pipeline from Go:
//
//	train, _ := dataset.ReadCSVFile("train", "train.csv")
//	test, _ := dataset.ReadCSVFile("test", "test.csv")
//	ref, _ := dataset.ReadCSVFile("reference", "lending.csv")
//
//	res, err := pipeline.Run(train, test, ref, pipeline.DefaultConfig())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	pipeline.WriteSubmissionFile("submission.csv", res)
package riskfold
