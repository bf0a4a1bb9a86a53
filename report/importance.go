package report

import (
	"fmt"
	"io"
	"sort"
	"text/tabwriter"

	"github.com/riskfold/riskfold/pipeline"
)

// RankImportance returns a copy of imp sorted by descending gain.
func RankImportance(imp []pipeline.FeatureImportance) []pipeline.FeatureImportance {
	ranked := append([]pipeline.FeatureImportance(nil), imp...)
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Gain > ranked[j].Gain })
	return ranked
}

// WriteImportance writes the ranked feature-importance table to w.
func WriteImportance(w io.Writer, imp []pipeline.FeatureImportance) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "rank\tfeature\tgain")
	for i, fi := range RankImportance(imp) {
		fmt.Fprintf(tw, "%d\t%s\t%.4f\n", i+1, fi.Name, fi.Gain)
	}
	return tw.Flush()
}

// WriteScores writes per-model and blended out-of-fold ROC-AUC to w.
func WriteScores(w io.Writer, scores []pipeline.ModelScore) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "model\toof_auc")
	for _, s := range scores {
		fmt.Fprintf(tw, "%s\t%.5f\n", s.Name, s.AUC)
	}
	return tw.Flush()
}
