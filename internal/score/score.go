// Package score computes discrimination and accuracy metrics from predicted
// probabilities. Metrics implement a common interface so additional measures
// can be attached to an evaluation run.
package score

import "github.com/rotisserie/eris"

// Metric scores a vector of predicted probabilities against ground-truth
// binary labels.
type Metric interface {
	Name() string
	Score(probs, labels []float64) (float64, error)
}

// DefaultThreshold is the probability above which a record is classified
// positive.
const DefaultThreshold = 0.5

// Defaults returns the standard metric set: AUROC and accuracy at the
// default threshold.
func Defaults() []Metric {
	return []Metric{AUROC{}, Accuracy{Threshold: DefaultThreshold}}
}

func checkLengths(probs, labels []float64) error {
	if len(probs) != len(labels) {
		return eris.Errorf("score: %d predictions for %d labels", len(probs), len(labels))
	}
	if len(probs) == 0 {
		return eris.New("score: empty prediction set")
	}
	return nil
}
