// Package resample partitions labeled samples into folds and runs
// cross-validated train/evaluate cycles.
package resample

import (
	"math/rand"

	"github.com/wasatch-geo/riskmodel/internal/errs"
)

// Assignment maps each record index to a fold number in [0, k). Every
// record belongs to exactly one fold and fold sizes differ by at most one.
type Assignment []int

// KFold assigns n records to k folds using a seeded pseudo-random
// permutation.
func KFold(n, k int, seed int64) (Assignment, error) {
	if err := checkFolds(n, k); err != nil {
		return nil, err
	}
	a := make(Assignment, n)
	for i, rec := range rand.New(rand.NewSource(seed)).Perm(n) {
		a[rec] = i % k
	}
	return a, nil
}

// StratifiedKFold assigns records to k folds so each fold preserves the
// overall class ratio within one unit of rounding. Each class is shuffled
// independently and dealt round-robin across folds.
func StratifiedKFold(labels []float64, k int, seed int64) (Assignment, error) {
	n := len(labels)
	if err := checkFolds(n, k); err != nil {
		return nil, err
	}

	var pos, neg []int
	for i, l := range labels {
		if l == 1 {
			pos = append(pos, i)
		} else {
			neg = append(neg, i)
		}
	}

	rng := rand.New(rand.NewSource(seed))
	rng.Shuffle(len(pos), func(i, j int) { pos[i], pos[j] = pos[j], pos[i] })
	rng.Shuffle(len(neg), func(i, j int) { neg[i], neg[j] = neg[j], neg[i] })

	a := make(Assignment, n)
	c := 0
	for _, class := range [][]int{pos, neg} {
		for _, rec := range class {
			a[rec] = c % k
			c++
		}
	}
	return a, nil
}

// Split returns the train and test record indices for the given fold.
func (a Assignment) Split(fold int) (train, test []int) {
	for i, f := range a {
		if f == fold {
			test = append(test, i)
		} else {
			train = append(train, i)
		}
	}
	return train, test
}

// FoldSizes returns the number of records in each of the k folds.
func (a Assignment) FoldSizes(k int) []int {
	sizes := make([]int, k)
	for _, f := range a {
		sizes[f]++
	}
	return sizes
}

func checkFolds(n, k int) error {
	if k < 2 {
		return errs.Resamplingf("fold count %d is below the minimum of 2", k)
	}
	if k > n {
		return errs.Resamplingf("fold count %d exceeds %d records", k, n)
	}
	return nil
}
