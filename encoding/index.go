package encoding

import (
	"sort"

	"github.com/riskfold/riskfold/core/model"
	"github.com/riskfold/riskfold/pkg/errors"
)

// UnseenCode is the integer assigned to categories never observed during
// fitting. A categorical split never lists it among its left categories, so
// unseen levels route to the right child.
const UnseenCode = -1

// CategoryIndexer maps categorical string levels to stable integer codes for
// the trainer that splits on raw categories. Codes are assigned in sorted
// level order so the mapping is deterministic across runs.
type CategoryIndexer struct {
	Column string

	state *model.StateManager
	codes map[string]int
}

// NewCategoryIndexer creates an indexer for the named column.
func NewCategoryIndexer(column string) *CategoryIndexer {
	return &CategoryIndexer{Column: column, state: model.NewStateManager()}
}

// Fit assigns codes to every distinct level.
func (ci *CategoryIndexer) Fit(categories []string) error {
	if len(categories) == 0 {
		return errors.NewValueError("CategoryIndexer.Fit", "empty input")
	}
	seen := make(map[string]bool)
	var levels []string
	for _, cat := range categories {
		if !seen[cat] {
			seen[cat] = true
			levels = append(levels, cat)
		}
	}
	sort.Strings(levels)

	ci.codes = make(map[string]int, len(levels))
	for i, level := range levels {
		ci.codes[level] = i
	}
	ci.state.SetFitted(1, len(categories))
	return nil
}

// Transform returns one code per row, UnseenCode for unknown levels.
func (ci *CategoryIndexer) Transform(categories []string) ([]float64, error) {
	if err := ci.state.RequireFitted("CategoryIndexer", "Transform"); err != nil {
		return nil, err
	}
	out := make([]float64, len(categories))
	for i, cat := range categories {
		if code, ok := ci.codes[cat]; ok {
			out[i] = float64(code)
		} else {
			out[i] = UnseenCode
		}
	}
	return out, nil
}

// FitTransform fits the indexer and encodes the same rows.
func (ci *CategoryIndexer) FitTransform(categories []string) ([]float64, error) {
	if err := ci.Fit(categories); err != nil {
		return nil, err
	}
	return ci.Transform(categories)
}

// NumLevels returns the number of distinct levels seen during fitting.
func (ci *CategoryIndexer) NumLevels() int { return len(ci.codes) }
