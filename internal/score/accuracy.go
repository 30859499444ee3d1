package score

// Accuracy is the fraction of records whose thresholded class prediction
// matches the true label. A probability greater than or equal to the
// threshold predicts the positive class.
type Accuracy struct {
	Threshold float64
}

// Name implements Metric.
func (Accuracy) Name() string { return "accuracy" }

// Score implements Metric.
func (a Accuracy) Score(probs, labels []float64) (float64, error) {
	if err := checkLengths(probs, labels); err != nil {
		return 0, err
	}
	threshold := a.Threshold
	if threshold == 0 {
		threshold = DefaultThreshold
	}

	correct := 0
	for i, p := range probs {
		predicted := p >= threshold
		actual := labels[i] == 1
		if predicted == actual {
			correct++
		}
	}
	return float64(correct) / float64(len(probs)), nil
}
