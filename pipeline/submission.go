package pipeline

import (
	"io"
	"os"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"github.com/riskfold/riskfold/dataset"
	"github.com/riskfold/riskfold/pkg/errors"
)

// WriteSubmission writes the scored test rows as CSV: the row identifier,
// the repayment probability, and the thresholded binary decision.
func WriteSubmission(w io.Writer, res *Result) error {
	if len(res.TestIDs) != len(res.TestProbs) || len(res.TestIDs) != len(res.Decisions) {
		return errors.NewValueError("WriteSubmission", "id, probability and decision columns must have equal length")
	}
	df := dataframe.New(
		series.New(res.TestIDs, series.String, dataset.ColID),
		series.New(res.TestProbs, series.Float, dataset.ColLabel),
		series.New(res.Decisions, series.Int, "decision"),
	)
	if df.Err != nil {
		return errors.Wrap(df.Err, "building submission frame")
	}
	if err := df.WriteCSV(w); err != nil {
		return errors.Wrap(err, "writing submission")
	}
	return nil
}

// WriteSubmissionFile writes the submission to path, creating or truncating
// the file.
func WriteSubmissionFile(path string, res *Result) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "creating %s", path)
	}
	defer f.Close()

	if err := WriteSubmission(f, res); err != nil {
		return err
	}
	return errors.Wrapf(f.Close(), "closing %s", path)
}
