package score

// FoldScore holds one evaluation fold's metric values.
type FoldScore struct {
	Fold    int                `json:"fold" yaml:"fold"`
	Size    int                `json:"size" yaml:"size"`
	Metrics map[string]float64 `json:"metrics" yaml:"metrics"`
}

// Report is the per-fold and aggregate score report of an evaluation run.
// The aggregate is the unweighted mean across folds: each fold contributes
// one observation regardless of its size.
type Report struct {
	Folds []FoldScore        `json:"folds" yaml:"folds"`
	Mean  map[string]float64 `json:"mean" yaml:"mean"`
}

// Aggregate builds a report from per-fold scores.
func Aggregate(folds []FoldScore) *Report {
	mean := make(map[string]float64)
	if len(folds) > 0 {
		for name := range folds[0].Metrics {
			var sum float64
			for _, f := range folds {
				sum += f.Metrics[name]
			}
			mean[name] = sum / float64(len(folds))
		}
	}
	return &Report{Folds: folds, Mean: mean}
}
