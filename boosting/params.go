// Package boosting implements the gradient-boosted decision tree ensemble
// used by all three pipeline trainers. Trees are grown greedily with exact
// sorted-scan splits for numeric features and gradient-ratio ordered splits
// for categorical features, under first- and second-order gradients of a
// pluggable objective.
package boosting

// Params holds the training hyperparameters. Zero values fall back to the
// defaults applied in ApplyDefaults.
type Params struct {
	NumRounds     int     `json:"num_rounds" mapstructure:"num_rounds"`
	LearningRate  float64 `json:"learning_rate" mapstructure:"learning_rate"`
	NumLeaves     int     `json:"num_leaves" mapstructure:"num_leaves"`
	MaxDepth      int     `json:"max_depth" mapstructure:"max_depth"`
	MinDataInLeaf int     `json:"min_data_in_leaf" mapstructure:"min_data_in_leaf"`

	// Regularization.
	Lambda         float64 `json:"lambda_l2" mapstructure:"lambda_l2"`
	Alpha          float64 `json:"lambda_l1" mapstructure:"lambda_l1"`
	MinGainToSplit float64 `json:"min_gain_to_split" mapstructure:"min_gain_to_split"`

	// Sampling.
	BaggingFraction float64 `json:"bagging_fraction" mapstructure:"bagging_fraction"`
	FeatureFraction float64 `json:"feature_fraction" mapstructure:"feature_fraction"`

	// Objective: "binary" or "regression".
	Objective string `json:"objective" mapstructure:"objective"`

	// Categorical features, as column indices into the training matrix.
	// Values in those columns must be small integer codes.
	CategoricalFeatures []int   `json:"categorical_features" mapstructure:"categorical_features"`
	CatSmooth           float64 `json:"cat_smooth" mapstructure:"cat_smooth"`

	Seed      int `json:"seed" mapstructure:"seed"`
	Verbosity int `json:"verbosity" mapstructure:"verbosity"`
}

// ApplyDefaults fills unset fields with the library defaults.
func (p *Params) ApplyDefaults() {
	if p.NumRounds == 0 {
		p.NumRounds = 100
	}
	if p.LearningRate == 0 {
		p.LearningRate = 0.1
	}
	if p.NumLeaves == 0 {
		p.NumLeaves = 31
	}
	if p.MinDataInLeaf == 0 {
		p.MinDataInLeaf = 20
	}
	if p.BaggingFraction == 0 {
		p.BaggingFraction = 1.0
	}
	if p.FeatureFraction == 0 {
		p.FeatureFraction = 1.0
	}
	if p.Objective == "" {
		p.Objective = ObjectiveBinary
	}
	if p.CatSmooth == 0 {
		p.CatSmooth = 10.0
	}
}

// IsCategorical reports whether the feature index is declared categorical.
func (p *Params) IsCategorical(feature int) bool {
	for _, idx := range p.CategoricalFeatures {
		if idx == feature {
			return true
		}
	}
	return false
}
