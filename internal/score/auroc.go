package score

import (
	"github.com/rotisserie/eris"
	"gonum.org/v1/gonum/floats"
)

// AUROC is the area under the ROC curve: the probability that a randomly
// chosen positive record receives a higher predicted probability than a
// randomly chosen negative one, with ties contributing 0.5. It is computed
// as the normalized Mann-Whitney U statistic via average ranks.
type AUROC struct{}

// Name implements Metric.
func (AUROC) Name() string { return "auroc" }

// Score implements Metric. Both classes must be present in labels.
func (AUROC) Score(probs, labels []float64) (float64, error) {
	if err := checkLengths(probs, labels); err != nil {
		return 0, err
	}

	var nPos, nNeg int
	for _, l := range labels {
		if l == 1 {
			nPos++
		} else {
			nNeg++
		}
	}
	if nPos == 0 || nNeg == 0 {
		return 0, eris.Errorf("auroc: undefined with %d positive and %d negative records", nPos, nNeg)
	}

	n := len(probs)
	sorted := make([]float64, n)
	copy(sorted, probs)
	inds := make([]int, n)
	floats.Argsort(sorted, inds)

	// Average ranks over tie groups, then sum ranks of positives.
	ranks := make([]float64, n)
	for i := 0; i < n; {
		j := i
		for j < n && sorted[j] == sorted[i] {
			j++
		}
		// 1-based ranks i+1..j averaged over the tie group.
		avg := float64(i+j+1) / 2
		for k := i; k < j; k++ {
			ranks[inds[k]] = avg
		}
		i = j
	}

	var rankSum float64
	for i, l := range labels {
		if l == 1 {
			rankSum += ranks[i]
		}
	}

	u := rankSum - float64(nPos)*float64(nPos+1)/2
	return u / (float64(nPos) * float64(nNeg)), nil
}
